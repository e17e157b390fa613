// Package domain holds the entities shared by the persona engine, the
// recommendation scorers and the storage/API adapters around them.
package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// ─── Signals ────────────────────────────────────────────────────────────────

// DifficultyPreference is the player's preferred challenge level.
type DifficultyPreference string

const (
	DifficultyRelaxed DifficultyPreference = "Relaxed"
	DifficultyNormal  DifficultyPreference = "Normal"
	DifficultyHard    DifficultyPreference = "Hard"
	DifficultyBrutal  DifficultyPreference = "Brutal"
)

// Rank orders difficulties Relaxed < Normal < Hard < Brutal.
// Unknown values rank -1.
func (d DifficultyPreference) Rank() int {
	switch d {
	case DifficultyRelaxed:
		return 0
	case DifficultyNormal:
		return 1
	case DifficultyHard:
		return 2
	case DifficultyBrutal:
		return 3
	}
	return -1
}

// Valid reports whether d is one of the four known levels.
func (d DifficultyPreference) Valid() bool { return d.Rank() >= 0 }

// RawPlayerSignals is per-user aggregate play telemetry.
// All ratio fields are in [0,1].
type RawPlayerSignals struct {
	PlaytimeByGenre             map[string]float64   `json:"playtimeByGenre"`
	AverageSessionLengthMinutes float64              `json:"averageSessionLengthMinutes"`
	SessionsPerWeek             float64              `json:"sessionsPerWeek"`
	DifficultyPreference        DifficultyPreference `json:"difficultyPreference"`
	MultiplayerRatio            float64              `json:"multiplayerRatio"`
	LateNightRatio              float64              `json:"lateNightRatio"`
	CompletionRate              float64              `json:"completionRate"`
}

// Input converts validated signals back into their boundary shape.
func (s RawPlayerSignals) Input() *SignalsInput {
	genres := make(map[string]float64, len(s.PlaytimeByGenre))
	for k, v := range s.PlaytimeByGenre {
		genres[k] = v
	}
	diff := string(s.DifficultyPreference)
	return &SignalsInput{
		PlaytimeByGenre:             genres,
		AverageSessionLengthMinutes: ptr(s.AverageSessionLengthMinutes),
		SessionsPerWeek:             ptr(s.SessionsPerWeek),
		DifficultyPreference:        &diff,
		MultiplayerRatio:            ptr(s.MultiplayerRatio),
		LateNightRatio:              ptr(s.LateNightRatio),
		CompletionRate:              ptr(s.CompletionRate),
	}
}

// SignalsInput is the unvalidated boundary form of RawPlayerSignals.
// Absent fields are nil. When decoded from JSON, fields whose value has the
// wrong type are remembered so validation can name them.
type SignalsInput struct {
	PlaytimeByGenre             map[string]float64 `json:"playtimeByGenre"`
	AverageSessionLengthMinutes *float64           `json:"averageSessionLengthMinutes,omitempty"`
	SessionsPerWeek             *float64           `json:"sessionsPerWeek,omitempty"`
	DifficultyPreference        *string            `json:"difficultyPreference,omitempty"`
	MultiplayerRatio            *float64           `json:"multiplayerRatio,omitempty"`
	LateNightRatio              *float64           `json:"lateNightRatio,omitempty"`
	CompletionRate              *float64           `json:"completionRate,omitempty"`

	malformed map[string]bool
}

// Malformed reports whether field was present in the decoded JSON with a
// value of the wrong type.
func (s *SignalsInput) Malformed(field string) bool {
	return s.malformed[field]
}

// UnmarshalJSON decodes field by field so a type mismatch on one field does
// not hide which field was wrong.
func (s *SignalsInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewValidationError("signals", "must be an object")
	}

	*s = SignalsInput{}
	if v, ok := presentField(raw, "playtimeByGenre"); ok {
		genres := map[string]float64{}
		if err := json.Unmarshal(v, &genres); err != nil {
			s.markMalformed("playtimeByGenre")
		}
		s.PlaytimeByGenre = genres
	}
	s.AverageSessionLengthMinutes = s.decodeNumber(raw, "averageSessionLengthMinutes")
	s.SessionsPerWeek = s.decodeNumber(raw, "sessionsPerWeek")
	s.MultiplayerRatio = s.decodeNumber(raw, "multiplayerRatio")
	s.LateNightRatio = s.decodeNumber(raw, "lateNightRatio")
	s.CompletionRate = s.decodeNumber(raw, "completionRate")
	if v, ok := presentField(raw, "difficultyPreference"); ok {
		var d string
		if err := json.Unmarshal(v, &d); err != nil {
			s.markMalformed("difficultyPreference")
		}
		s.DifficultyPreference = &d
	}
	return nil
}

func (s *SignalsInput) decodeNumber(raw map[string]json.RawMessage, field string) *float64 {
	v, ok := presentField(raw, field)
	if !ok {
		return nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		s.markMalformed(field)
	}
	return &f
}

func (s *SignalsInput) markMalformed(field string) {
	if s.malformed == nil {
		s.malformed = make(map[string]bool)
	}
	s.malformed[field] = true
}

// presentField treats an explicit JSON null the same as an absent key.
func presentField(raw map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

func ptr[T any](v T) *T { return &v }

// ─── Traits ─────────────────────────────────────────────────────────────────

// ArchetypeID is the dominant play motivation. Closed set.
type ArchetypeID string

const (
	ArchetypeAchiever   ArchetypeID = "Achiever"
	ArchetypeExplorer   ArchetypeID = "Explorer"
	ArchetypeSocializer ArchetypeID = "Socializer"
	ArchetypeCompetitor ArchetypeID = "Competitor"
	ArchetypeStrategist ArchetypeID = "Strategist"
	ArchetypeCreative   ArchetypeID = "Creative"
	ArchetypeCasual     ArchetypeID = "Casual"
	ArchetypeSpecialist ArchetypeID = "Specialist"
	ArchetypeSocialite  ArchetypeID = "Socialite"
)

// Pacing describes typical session rhythm.
type Pacing string

const (
	PacingBurst    Pacing = "Burst"
	PacingFlow     Pacing = "Flow"
	PacingMarathon Pacing = "Marathon"
)

// RiskProfile describes appetite for unfamiliar or hard experiences.
type RiskProfile string

const (
	RiskComfort      RiskProfile = "Comfort"
	RiskBalanced     RiskProfile = "Balanced"
	RiskExperimental RiskProfile = "Experimental"
)

// PersonaTraits is derived deterministically from RawPlayerSignals.
type PersonaTraits struct {
	ArchetypeID ArchetypeID `json:"archetypeId"`
	Pacing      Pacing      `json:"pacing"`
	RiskProfile RiskProfile `json:"riskProfile"`
	Confidence  float64     `json:"confidence"`
}

// ─── Narrative / Snapshot ───────────────────────────────────────────────────

// Tone labels the narrative register.
type Tone string

const (
	ToneReflective  Tone = "Reflective"
	ToneCalm        Tone = "Calm"
	ToneHyped       Tone = "Hyped"
	ToneCompetitive Tone = "Competitive"
	ToneComfort     Tone = "Comfort"
)

// PersonaNarrative is template-assembled prose plus a tone label.
type PersonaNarrative struct {
	Summary string `json:"summary"`
	Tone    Tone   `json:"tone"`
}

// PersonaMoodContext composes traits with an optional mood.
type PersonaMoodContext struct {
	Traits PersonaTraits `json:"traits"`
	Mood   *MoodState    `json:"mood"`
}

// PersonaSnapshot is the consolidated point-in-time persona of one user.
// Confidence is copied from Traits.Confidence.
type PersonaSnapshot struct {
	Traits     PersonaTraits    `json:"traits"`
	Mood       *MoodState       `json:"mood"`
	Narrative  PersonaNarrative `json:"narrative"`
	Confidence float64          `json:"confidence"`
	CreatedAt  time.Time        `json:"createdAt"`
}
