package persona

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gamepilot/gamepilot/internal/domain"
)

// HighConfidenceThreshold is the cut-off used by IsHighConfidenceSnapshot.
const HighConfidenceThreshold = 0.7

// SnapshotInput is what BuildPersonaSnapshot consumes. Signals is required;
// MoodEntry is optional.
type SnapshotInput struct {
	Signals   *domain.SignalsInput `json:"signals"`
	MoodEntry *domain.MoodState    `json:"moodEntry"`
}

// BuildPersonaSnapshot validates the signals, then runs trait extraction,
// mood mapping and narrative building in that order.
func BuildPersonaSnapshot(in SnapshotInput) (domain.PersonaSnapshot, error) {
	signals, err := ValidateSignals(in.Signals)
	if err != nil {
		return domain.PersonaSnapshot{}, err
	}

	traits := DerivePersonaTraits(signals)

	ctx, err := MapMoodToPersonaContext(traits, in.MoodEntry)
	if err != nil {
		return domain.PersonaSnapshot{}, fmt.Errorf("failed to build persona snapshot: %w", err)
	}

	return domain.PersonaSnapshot{
		Traits:     traits,
		Mood:       ctx.Mood,
		Narrative:  BuildPersonaNarrative(ctx),
		Confidence: traits.Confidence,
		CreatedAt:  time.Now(),
	}, nil
}

// PartialSignals carries caller overrides for CreateMinimalPersonaSnapshot.
// Nil fields take the defaults.
type PartialSignals struct {
	PlaytimeByGenre             map[string]float64
	AverageSessionLengthMinutes *float64
	SessionsPerWeek             *float64
	DifficultyPreference        *domain.DifficultyPreference
	MultiplayerRatio            *float64
	LateNightRatio              *float64
	CompletionRate              *float64
}

// DefaultSignals are the values CreateMinimalPersonaSnapshot starts from.
func DefaultSignals() domain.RawPlayerSignals {
	return domain.RawPlayerSignals{
		PlaytimeByGenre:             map[string]float64{},
		AverageSessionLengthMinutes: 60,
		SessionsPerWeek:             3,
		DifficultyPreference:        domain.DifficultyNormal,
		MultiplayerRatio:            0.3,
		LateNightRatio:              0,
		CompletionRate:              0.5,
	}
}

// CreateMinimalPersonaSnapshot merges overrides onto DefaultSignals and builds
// a snapshot without a mood.
func CreateMinimalPersonaSnapshot(p PartialSignals) (domain.PersonaSnapshot, error) {
	s := DefaultSignals()
	if p.PlaytimeByGenre != nil {
		s.PlaytimeByGenre = p.PlaytimeByGenre
	}
	if p.AverageSessionLengthMinutes != nil {
		s.AverageSessionLengthMinutes = *p.AverageSessionLengthMinutes
	}
	if p.SessionsPerWeek != nil {
		s.SessionsPerWeek = *p.SessionsPerWeek
	}
	if p.DifficultyPreference != nil {
		s.DifficultyPreference = *p.DifficultyPreference
	}
	if p.MultiplayerRatio != nil {
		s.MultiplayerRatio = *p.MultiplayerRatio
	}
	if p.LateNightRatio != nil {
		s.LateNightRatio = *p.LateNightRatio
	}
	if p.CompletionRate != nil {
		s.CompletionRate = *p.CompletionRate
	}
	return BuildPersonaSnapshot(SnapshotInput{Signals: s.Input()})
}

// IsHighConfidenceSnapshot reports confidence ≥ 0.7.
func IsHighConfidenceSnapshot(s domain.PersonaSnapshot) bool {
	return s.Confidence >= HighConfidenceThreshold
}

// ─── Validation ─────────────────────────────────────────────────────────────

const difficultyNames = "Relaxed, Normal, Hard, Brutal"

// ValidateSignals checks the boundary input in a fixed order and returns the
// first violation as a *domain.ValidationError naming the field.
func ValidateSignals(in *domain.SignalsInput) (domain.RawPlayerSignals, error) {
	if in == nil {
		return domain.RawPlayerSignals{}, domain.NewValidationError("signals", "is required")
	}

	required := []struct {
		name    string
		present bool
	}{
		{"playtimeByGenre", in.PlaytimeByGenre != nil},
		{"averageSessionLengthMinutes", in.AverageSessionLengthMinutes != nil},
		{"sessionsPerWeek", in.SessionsPerWeek != nil},
		{"difficultyPreference", in.DifficultyPreference != nil},
		{"multiplayerRatio", in.MultiplayerRatio != nil},
		{"completionRate", in.CompletionRate != nil},
	}
	for _, f := range required {
		if !f.present {
			return domain.RawPlayerSignals{}, domain.NewValidationError(f.name, "is required")
		}
	}

	if in.Malformed("playtimeByGenre") {
		return domain.RawPlayerSignals{}, domain.NewValidationError("playtimeByGenre", "must be a mapping of genre to minutes")
	}
	genres := make([]string, 0, len(in.PlaytimeByGenre))
	for g := range in.PlaytimeByGenre {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	for _, g := range genres {
		if strings.TrimSpace(g) == "" {
			return domain.RawPlayerSignals{}, domain.NewValidationError("playtimeByGenre", "must not contain an empty genre name")
		}
		if v := in.PlaytimeByGenre[g]; !finite(v) || v < 0 {
			return domain.RawPlayerSignals{}, domain.NewValidationError(
				fmt.Sprintf("playtimeByGenre[%s]", g), "must be a non-negative number")
		}
	}

	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"averageSessionLengthMinutes", in.AverageSessionLengthMinutes},
		{"sessionsPerWeek", in.SessionsPerWeek},
	} {
		if in.Malformed(f.name) || !finite(*f.v) {
			return domain.RawPlayerSignals{}, domain.NewValidationError(f.name, "must be a number")
		}
		if *f.v < 0 {
			return domain.RawPlayerSignals{}, domain.NewValidationError(f.name, "must be non-negative")
		}
	}

	difficulty := domain.DifficultyPreference(*in.DifficultyPreference)
	if in.Malformed("difficultyPreference") || !difficulty.Valid() {
		return domain.RawPlayerSignals{}, domain.NewValidationError("difficultyPreference", "must be one of "+difficultyNames)
	}

	ratios := []struct {
		name string
		v    *float64
	}{
		{"multiplayerRatio", in.MultiplayerRatio},
		{"completionRate", in.CompletionRate},
		{"lateNightRatio", in.LateNightRatio},
	}
	for _, f := range ratios {
		if f.v == nil {
			continue // only lateNightRatio is optional
		}
		if in.Malformed(f.name) || !finite(*f.v) || *f.v < 0 || *f.v > 1 {
			return domain.RawPlayerSignals{}, domain.NewValidationError(f.name, "must be between 0 and 1")
		}
	}

	out := domain.RawPlayerSignals{
		PlaytimeByGenre:             make(map[string]float64, len(in.PlaytimeByGenre)),
		AverageSessionLengthMinutes: *in.AverageSessionLengthMinutes,
		SessionsPerWeek:             *in.SessionsPerWeek,
		DifficultyPreference:        difficulty,
		MultiplayerRatio:            *in.MultiplayerRatio,
		CompletionRate:              *in.CompletionRate,
	}
	for g, v := range in.PlaytimeByGenre {
		out.PlaytimeByGenre[g] = v
	}
	if in.LateNightRatio != nil {
		out.LateNightRatio = *in.LateNightRatio
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
