// Package persona derives persona traits from raw play signals, attaches the
// current mood, and assembles the narrative snapshot handed to the scorers.
// Every function here is pure; nothing in this package touches storage.
package persona

import (
	"math"
	"sort"
	"strings"

	"github.com/gamepilot/gamepilot/internal/domain"
)

// Pacing thresholds on average session length, in minutes.
const (
	burstMaxMinutes = 45
	flowMaxMinutes  = 120
)

// Genre families used when the dominant genre decides the archetype.
var (
	strategyGenres = map[string]bool{
		"strategy": true, "puzzle": true, "simulation": true, "tactics": true, "4x": true, "card": true,
	}
	creativeGenres = map[string]bool{
		"sandbox": true, "building": true, "crafting": true, "creative": true, "music": true,
	}
)

// DerivePersonaTraits maps signals to traits. Total and deterministic for any
// signals satisfying the RawPlayerSignals invariants.
func DerivePersonaTraits(s domain.RawPlayerSignals) domain.PersonaTraits {
	g := summarizeGenres(s.PlaytimeByGenre)
	return domain.PersonaTraits{
		ArchetypeID: deriveArchetype(s, g),
		Pacing:      derivePacing(s.AverageSessionLengthMinutes),
		RiskProfile: deriveRisk(s, g),
		Confidence:  deriveConfidence(s, g),
	}
}

// genreSummary is the part of playtimeByGenre the rules look at.
type genreSummary struct {
	distinct      int // entries with minutes > 0
	total         float64
	dominant      string
	dominantShare float64
}

// summarizeGenres walks genres in sorted order so ties on the dominant genre
// resolve the same way on every call.
func summarizeGenres(playtime map[string]float64) genreSummary {
	names := make([]string, 0, len(playtime))
	for name := range playtime {
		names = append(names, name)
	}
	sort.Strings(names)

	var g genreSummary
	var best float64
	for _, name := range names {
		minutes := playtime[name]
		if minutes <= 0 {
			continue
		}
		g.distinct++
		g.total += minutes
		if minutes > best {
			best = minutes
			g.dominant = name
		}
	}
	if g.total > 0 {
		g.dominantShare = best / g.total
	}
	return g
}

func derivePacing(avgMinutes float64) domain.Pacing {
	switch {
	case avgMinutes < burstMaxMinutes:
		return domain.PacingBurst
	case avgMinutes <= flowMaxMinutes:
		return domain.PacingFlow
	default:
		return domain.PacingMarathon
	}
}

func deriveRisk(s domain.RawPlayerSignals, g genreSummary) domain.RiskProfile {
	switch s.DifficultyPreference {
	case domain.DifficultyRelaxed:
		return domain.RiskComfort
	case domain.DifficultyNormal:
		if s.CompletionRate >= 0.8 && g.distinct <= 2 {
			return domain.RiskComfort
		}
		return domain.RiskBalanced
	case domain.DifficultyHard:
		if s.CompletionRate < 0.4 || g.distinct >= 4 {
			return domain.RiskExperimental
		}
		return domain.RiskBalanced
	case domain.DifficultyBrutal:
		return domain.RiskExperimental
	}
	return domain.RiskBalanced
}

// deriveArchetype applies the rules in priority order; the first match wins.
func deriveArchetype(s domain.RawPlayerSignals, g genreSummary) domain.ArchetypeID {
	hardcore := s.DifficultyPreference.Rank() >= domain.DifficultyHard.Rank()
	dominant := strings.ToLower(g.dominant)

	switch {
	case g.total == 0 || (s.SessionsPerWeek < 1 && s.AverageSessionLengthMinutes < 30):
		return domain.ArchetypeCasual
	case s.MultiplayerRatio >= 0.7:
		return domain.ArchetypeSocialite
	case s.MultiplayerRatio >= 0.5 && hardcore:
		return domain.ArchetypeCompetitor
	case s.MultiplayerRatio >= 0.5:
		return domain.ArchetypeSocializer
	case g.distinct >= 1 && g.dominantShare >= 0.7:
		return domain.ArchetypeSpecialist
	case s.CompletionRate >= 0.7:
		return domain.ArchetypeAchiever
	case strategyGenres[dominant]:
		return domain.ArchetypeStrategist
	case creativeGenres[dominant]:
		return domain.ArchetypeCreative
	case g.distinct >= 4:
		return domain.ArchetypeExplorer
	case s.AverageSessionLengthMinutes <= burstMaxMinutes && s.SessionsPerWeek <= 3:
		return domain.ArchetypeCasual
	}
	return domain.ArchetypeExplorer
}

// Confidence weights. They sum to 1.
const (
	confidenceBase        = 0.2
	confidenceGenreWeight = 0.35
	confidenceCadence     = 0.3
	confidenceConsistency = 0.15

	genreSaturation   = 5
	cadenceSaturation = 7
)

// deriveConfidence grows with genre coverage, weekly cadence and how many of
// the activity signals agree that the player actually plays. The genre term
// only depends on the count of nonzero genres, so adding a genre never lowers
// the result.
func deriveConfidence(s domain.RawPlayerSignals, g genreSummary) float64 {
	genres := math.Min(float64(g.distinct), genreSaturation) / genreSaturation
	cadence := math.Min(math.Max(s.SessionsPerWeek, 0), cadenceSaturation) / cadenceSaturation

	active := 0
	for _, v := range []float64{s.AverageSessionLengthMinutes, s.SessionsPerWeek, s.CompletionRate} {
		if v > 0 {
			active++
		}
	}
	consistency := float64(active) / 3

	c := confidenceBase +
		confidenceGenreWeight*genres +
		confidenceCadence*cadence +
		confidenceConsistency*consistency
	return clamp01(math.Round(c*100) / 100)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
