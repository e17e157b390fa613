package persona_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamepilot/gamepilot/internal/app/persona"
	"github.com/gamepilot/gamepilot/internal/domain"
)

func rpgSignals() domain.RawPlayerSignals {
	return domain.RawPlayerSignals{
		PlaytimeByGenre:             map[string]float64{"RPG": 80},
		AverageSessionLengthMinutes: 100,
		SessionsPerWeek:             4,
		DifficultyPreference:        domain.DifficultyHard,
		MultiplayerRatio:            0.2,
		LateNightRatio:              0.1,
		CompletionRate:              0.6,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Trait Extractor
// ═══════════════════════════════════════════════════════════════════════════

func TestDerivePersonaTraits_Pacing(t *testing.T) {
	tests := []struct {
		avg  float64
		want domain.Pacing
	}{
		{0, domain.PacingBurst},
		{44, domain.PacingBurst},
		{45, domain.PacingFlow},
		{120, domain.PacingFlow},
		{121, domain.PacingMarathon},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.avg), func(t *testing.T) {
			s := rpgSignals()
			s.AverageSessionLengthMinutes = tt.avg
			assert.Equal(t, tt.want, persona.DerivePersonaTraits(s).Pacing)
		})
	}
}

func TestDerivePersonaTraits_Risk(t *testing.T) {
	tests := []struct {
		name       string
		difficulty domain.DifficultyPreference
		completion float64
		genres     map[string]float64
		want       domain.RiskProfile
	}{
		{"relaxed", domain.DifficultyRelaxed, 0.5, map[string]float64{"RPG": 10}, domain.RiskComfort},
		{"normal finisher", domain.DifficultyNormal, 0.9, map[string]float64{"RPG": 10}, domain.RiskComfort},
		{"normal", domain.DifficultyNormal, 0.5, map[string]float64{"RPG": 10}, domain.RiskBalanced},
		{"hard", domain.DifficultyHard, 0.6, map[string]float64{"RPG": 10}, domain.RiskBalanced},
		{"hard quitter", domain.DifficultyHard, 0.3, map[string]float64{"RPG": 10}, domain.RiskExperimental},
		{"hard wide", domain.DifficultyHard, 0.6, map[string]float64{"A": 1, "B": 1, "C": 1, "D": 1}, domain.RiskExperimental},
		{"brutal", domain.DifficultyBrutal, 0.9, map[string]float64{"RPG": 10}, domain.RiskExperimental},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := rpgSignals()
			s.DifficultyPreference = tt.difficulty
			s.CompletionRate = tt.completion
			s.PlaytimeByGenre = tt.genres
			assert.Equal(t, tt.want, persona.DerivePersonaTraits(s).RiskProfile)
		})
	}
}

func TestDerivePersonaTraits_Archetype(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.RawPlayerSignals)
		want   domain.ArchetypeID
	}{
		{"no playtime", func(s *domain.RawPlayerSignals) { s.PlaytimeByGenre = map[string]float64{} }, domain.ArchetypeCasual},
		{"socialite", func(s *domain.RawPlayerSignals) { s.MultiplayerRatio = 0.8 }, domain.ArchetypeSocialite},
		{"competitor", func(s *domain.RawPlayerSignals) { s.MultiplayerRatio = 0.6 }, domain.ArchetypeCompetitor},
		{"socializer", func(s *domain.RawPlayerSignals) {
			s.MultiplayerRatio = 0.6
			s.DifficultyPreference = domain.DifficultyNormal
		}, domain.ArchetypeSocializer},
		{"specialist", func(s *domain.RawPlayerSignals) {}, domain.ArchetypeSpecialist},
		{"achiever", func(s *domain.RawPlayerSignals) {
			s.PlaytimeByGenre = map[string]float64{"RPG": 50, "Action": 50}
			s.CompletionRate = 0.9
		}, domain.ArchetypeAchiever},
		{"strategist", func(s *domain.RawPlayerSignals) {
			s.PlaytimeByGenre = map[string]float64{"Strategy": 60, "Action": 40}
		}, domain.ArchetypeStrategist},
		{"creative", func(s *domain.RawPlayerSignals) {
			s.PlaytimeByGenre = map[string]float64{"Sandbox": 60, "Action": 40}
		}, domain.ArchetypeCreative},
		{"explorer", func(s *domain.RawPlayerSignals) {
			s.PlaytimeByGenre = map[string]float64{"RPG": 30, "Action": 30, "Racing": 20, "Horror": 20}
		}, domain.ArchetypeExplorer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := rpgSignals()
			tt.mutate(&s)
			assert.Equal(t, tt.want, persona.DerivePersonaTraits(s).ArchetypeID)
		})
	}
}

func TestDerivePersonaTraits_DominantGenreTieIsDeterministic(t *testing.T) {
	s := rpgSignals()
	s.PlaytimeByGenre = map[string]float64{"Strategy": 50, "Action": 50}
	first := persona.DerivePersonaTraits(s)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, persona.DerivePersonaTraits(s))
	}
}

func TestDerivePersonaTraits_ConfidenceMonotoneInGenres(t *testing.T) {
	s := rpgSignals()
	s.PlaytimeByGenre = map[string]float64{}
	prev := persona.DerivePersonaTraits(s).Confidence

	for i, genre := range []string{"RPG", "Action", "Puzzle", "Racing", "Horror", "Sports", "Music"} {
		s.PlaytimeByGenre[genre] = float64(10 * (i + 1))
		got := persona.DerivePersonaTraits(s).Confidence
		assert.GreaterOrEqualf(t, got, prev, "adding %s lowered confidence", genre)
		prev = got
	}
}

func TestDerivePersonaTraits_ConfidenceGrowsWithCadence(t *testing.T) {
	s := rpgSignals()
	s.SessionsPerWeek = 1
	low := persona.DerivePersonaTraits(s).Confidence
	s.SessionsPerWeek = 7
	high := persona.DerivePersonaTraits(s).Confidence
	assert.Greater(t, high, low)
}

func TestDerivePersonaTraits_ConfidenceBounds(t *testing.T) {
	empty := domain.RawPlayerSignals{DifficultyPreference: domain.DifficultyNormal}
	assert.InDelta(t, 0.2, persona.DerivePersonaTraits(empty).Confidence, 1e-9)

	full := domain.RawPlayerSignals{
		PlaytimeByGenre:             map[string]float64{"A": 1, "B": 1, "C": 1, "D": 1, "E": 1},
		AverageSessionLengthMinutes: 60,
		SessionsPerWeek:             10,
		DifficultyPreference:        domain.DifficultyNormal,
		CompletionRate:              0.5,
	}
	assert.InDelta(t, 1.0, persona.DerivePersonaTraits(full).Confidence, 1e-9)
}

// ═══════════════════════════════════════════════════════════════════════════
// Mood Mapper
// ═══════════════════════════════════════════════════════════════════════════

func TestCreateMoodState_ClampsIntensity(t *testing.T) {
	for n := -20; n <= 20; n++ {
		m := persona.CreateMoodState(domain.MoodChill, n, time.Time{})
		assert.Equal(t, max(1, min(10, n)), m.Intensity, "n=%d", n)
		assert.False(t, m.Timestamp.IsZero())
	}
}

func TestIsMoodRecent_Boundary(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	atLimit := domain.MoodState{MoodID: domain.MoodChill, Intensity: 5, Timestamp: now.Add(-24 * time.Hour)}
	assert.True(t, persona.IsMoodRecentAt(atLimit, 24, now))

	past := atLimit
	past.Timestamp = atLimit.Timestamp.Add(-time.Millisecond)
	assert.False(t, persona.IsMoodRecentAt(past, 24, now))

	assert.True(t, persona.IsMoodRecent(domain.MoodState{Timestamp: time.Now()}, 24))
}

func TestMoodIntensityCategory(t *testing.T) {
	want := map[int]string{1: "Low", 3: "Low", 4: "Medium", 7: "Medium", 8: "High", 10: "High"}
	for n, cat := range want {
		assert.Equal(t, cat, persona.MoodIntensityCategory(n), "intensity %d", n)
	}
}

func TestMapMoodToPersonaContext(t *testing.T) {
	traits := persona.DerivePersonaTraits(rpgSignals())

	ctx, err := persona.MapMoodToPersonaContext(traits, nil)
	require.NoError(t, err)
	assert.Nil(t, ctx.Mood)
	assert.Equal(t, traits, ctx.Traits)

	mood := persona.CreateMoodState(domain.MoodFocused, 6, time.Time{})
	ctx, err = persona.MapMoodToPersonaContext(traits, &mood)
	require.NoError(t, err)
	require.NotNil(t, ctx.Mood)
	assert.Equal(t, mood, *ctx.Mood)

	_, err = persona.MapMoodToPersonaContext(traits, &domain.MoodState{MoodID: domain.MoodFocused, Intensity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidMood)
}

// ═══════════════════════════════════════════════════════════════════════════
// Narrative Builder
// ═══════════════════════════════════════════════════════════════════════════

func TestBuildPersonaNarrative_Tone(t *testing.T) {
	traits := persona.DerivePersonaTraits(rpgSignals())
	tests := []struct {
		mood domain.MoodID
		want domain.Tone
	}{
		{domain.MoodChill, domain.ToneCalm},
		{domain.MoodStory, domain.ToneCalm},
		{domain.MoodCreative, domain.ToneCalm},
		{domain.MoodEnergetic, domain.ToneHyped},
		{domain.MoodSocial, domain.ToneHyped},
		{domain.MoodExploratory, domain.ToneHyped},
		{domain.MoodCompetitive, domain.ToneCompetitive},
		{domain.MoodFocused, domain.ToneCompetitive},
		{domain.MoodCozy, domain.ToneComfort},
		{"grumpy", domain.ToneComfort},
	}
	for _, tt := range tests {
		t.Run(string(tt.mood), func(t *testing.T) {
			mood := domain.MoodState{MoodID: tt.mood, Intensity: 5}
			n := persona.BuildPersonaNarrative(domain.PersonaMoodContext{Traits: traits, Mood: &mood})
			assert.Equal(t, tt.want, n.Tone)
		})
	}

	n := persona.BuildPersonaNarrative(domain.PersonaMoodContext{Traits: traits})
	assert.Equal(t, domain.ToneReflective, n.Tone)
}

func TestBuildPersonaNarrative_UnknownValuesDegrade(t *testing.T) {
	mood := domain.MoodState{MoodID: "grumpy", Intensity: 9}
	n := persona.BuildPersonaNarrative(domain.PersonaMoodContext{
		Traits: domain.PersonaTraits{ArchetypeID: "Wizard", Pacing: "Glacial", RiskProfile: "YOLO"},
		Mood:   &mood,
	})
	assert.Contains(t, n.Summary, "a versatile player")
	assert.Contains(t, n.Summary, "a rhythm all their own")
	assert.Contains(t, n.Summary, "keeps an open mind")
	assert.Contains(t, n.Summary, "in a mood of your own")
	assert.Contains(t, n.Summary, "high intensity")
}

// ═══════════════════════════════════════════════════════════════════════════
// Snapshot Orchestrator
// ═══════════════════════════════════════════════════════════════════════════

func TestBuildPersonaSnapshot_RequiresSignals(t *testing.T) {
	_, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "signals is required")
}

func TestBuildPersonaSnapshot_NamesMissingField(t *testing.T) {
	in := rpgSignals().Input()
	in.MultiplayerRatio = nil

	_, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{Signals: in})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "multiplayerRatio", verr.Field)
	assert.Contains(t, err.Error(), "multiplayerRatio")
}

func TestBuildPersonaSnapshot_ValidationOrder(t *testing.T) {
	neg := -1.0
	over := 1.5
	bad := "Nightmare"

	tests := []struct {
		name   string
		mutate func(*domain.SignalsInput)
		field  string
	}{
		{"missing playtime wins over bad ratio", func(in *domain.SignalsInput) {
			in.PlaytimeByGenre = nil
			in.MultiplayerRatio = &over
		}, "playtimeByGenre"},
		{"negative average", func(in *domain.SignalsInput) { in.AverageSessionLengthMinutes = &neg }, "averageSessionLengthMinutes"},
		{"negative sessions", func(in *domain.SignalsInput) { in.SessionsPerWeek = &neg }, "sessionsPerWeek"},
		{"unknown difficulty", func(in *domain.SignalsInput) { in.DifficultyPreference = &bad }, "difficultyPreference"},
		{"ratio over one", func(in *domain.SignalsInput) { in.MultiplayerRatio = &over }, "multiplayerRatio"},
		{"completion negative", func(in *domain.SignalsInput) { in.CompletionRate = &neg }, "completionRate"},
		{"late night over one", func(in *domain.SignalsInput) { in.LateNightRatio = &over }, "lateNightRatio"},
		{"difficulty before ratio", func(in *domain.SignalsInput) {
			in.DifficultyPreference = &bad
			in.CompletionRate = &over
		}, "difficultyPreference"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := rpgSignals().Input()
			tt.mutate(in)
			_, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{Signals: in})
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestBuildPersonaSnapshot_JSONTypeErrors(t *testing.T) {
	tests := []struct {
		body  string
		field string
	}{
		{`{"playtimeByGenre":[1,2],"averageSessionLengthMinutes":10,"sessionsPerWeek":1,"difficultyPreference":"Normal","multiplayerRatio":0.1,"completionRate":0.1}`, "playtimeByGenre"},
		{`{"playtimeByGenre":{},"averageSessionLengthMinutes":"long","sessionsPerWeek":1,"difficultyPreference":"Normal","multiplayerRatio":0.1,"completionRate":0.1}`, "averageSessionLengthMinutes"},
		{`{"playtimeByGenre":{},"averageSessionLengthMinutes":10,"sessionsPerWeek":1,"difficultyPreference":"Normal","completionRate":0.1}`, "multiplayerRatio"},
		{`{"playtimeByGenre":{},"averageSessionLengthMinutes":10,"sessionsPerWeek":1,"difficultyPreference":"Normal","multiplayerRatio":null,"completionRate":0.1}`, "multiplayerRatio"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			var in domain.SignalsInput
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			_, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{Signals: &in})
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestBuildPersonaSnapshot_NoMood(t *testing.T) {
	snap, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{Signals: rpgSignals().Input()})
	require.NoError(t, err)
	assert.Nil(t, snap.Mood)
	assert.Equal(t, domain.ToneReflective, snap.Narrative.Tone)
	assert.Equal(t, snap.Traits.Confidence, snap.Confidence)
}

func TestBuildPersonaSnapshot_WithMood(t *testing.T) {
	mood := persona.CreateMoodState(domain.MoodEnergetic, 8, time.Time{})
	snap, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{
		Signals:   rpgSignals().Input(),
		MoodEntry: &mood,
	})
	require.NoError(t, err)
	require.NotNil(t, snap.Mood)
	assert.Equal(t, domain.MoodEnergetic, snap.Mood.MoodID)
	assert.Equal(t, domain.ToneHyped, snap.Narrative.Tone)
	assert.Contains(t, snap.Narrative.Summary, "full of energy")
}

func TestBuildPersonaSnapshot_WrapsStageErrors(t *testing.T) {
	_, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{
		Signals:   rpgSignals().Input(),
		MoodEntry: &domain.MoodState{MoodID: "", Intensity: 5},
	})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to build persona snapshot: "))
	assert.True(t, errors.Is(err, domain.ErrInvalidMood))
	assert.False(t, errors.Is(err, domain.ErrValidation))
}

func TestCreateMinimalPersonaSnapshot(t *testing.T) {
	snap, err := persona.CreateMinimalPersonaSnapshot(persona.PartialSignals{})
	require.NoError(t, err)
	assert.Nil(t, snap.Mood)
	assert.Equal(t, domain.PacingFlow, snap.Traits.Pacing)

	brutal := domain.DifficultyBrutal
	snap, err = persona.CreateMinimalPersonaSnapshot(persona.PartialSignals{
		DifficultyPreference: &brutal,
		PlaytimeByGenre:      map[string]float64{"Soulslike": 300},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskExperimental, snap.Traits.RiskProfile)
	assert.Equal(t, domain.ArchetypeSpecialist, snap.Traits.ArchetypeID)
}

func TestIsHighConfidenceSnapshot(t *testing.T) {
	assert.True(t, persona.IsHighConfidenceSnapshot(domain.PersonaSnapshot{Confidence: 0.7}))
	assert.False(t, persona.IsHighConfidenceSnapshot(domain.PersonaSnapshot{Confidence: 0.69}))
}
