package persona

import (
	"fmt"
	"strings"

	"github.com/gamepilot/gamepilot/internal/domain"
)

var archetypeDescriptions = map[domain.ArchetypeID]string{
	domain.ArchetypeAchiever:   "a goal-driven achiever who loves seeing things through",
	domain.ArchetypeExplorer:   "a curious explorer who likes to wander off the beaten path",
	domain.ArchetypeSocializer: "a social player who games best with friends",
	domain.ArchetypeCompetitor: "a competitor who thrives on a real contest",
	domain.ArchetypeStrategist: "a strategist who enjoys thinking several moves ahead",
	domain.ArchetypeCreative:   "a creative builder who likes making things their own",
	domain.ArchetypeCasual:     "a laid-back player who games when it fits",
	domain.ArchetypeSpecialist: "a specialist with a clear favourite genre",
	domain.ArchetypeSocialite:  "a socialite for whom games are a place to hang out",
}

var pacingDescriptions = map[domain.Pacing]string{
	domain.PacingBurst:    "short, punchy bursts",
	domain.PacingFlow:     "steady, comfortable sessions",
	domain.PacingMarathon: "long marathon sittings",
}

var riskDescriptions = map[domain.RiskProfile]string{
	domain.RiskComfort:      "tends to stick with familiar comforts",
	domain.RiskBalanced:     "balances old favourites with new discoveries",
	domain.RiskExperimental: "actively hunts for fresh challenges",
}

var moodDescriptions = map[domain.MoodID]string{
	domain.MoodChill:       "in a chill mood",
	domain.MoodStory:       "in the mood for a good story",
	domain.MoodCreative:    "feeling creative",
	domain.MoodEnergetic:   "full of energy",
	domain.MoodSocial:      "up for some company",
	domain.MoodExploratory: "itching to explore",
	domain.MoodCompetitive: "feeling competitive",
	domain.MoodFocused:     "locked in and focused",
	domain.MoodRelaxed:     "relaxed",
	domain.MoodCozy:        "after something cozy",
	domain.MoodNostalgic:   "feeling nostalgic",
}

const (
	fallbackArchetype = "a versatile player"
	fallbackPacing    = "a rhythm all their own"
	fallbackRisk      = "keeps an open mind"
	fallbackMood      = "in a mood of your own"
)

var moodTones = map[domain.MoodID]domain.Tone{
	domain.MoodChill:       domain.ToneCalm,
	domain.MoodStory:       domain.ToneCalm,
	domain.MoodCreative:    domain.ToneCalm,
	domain.MoodEnergetic:   domain.ToneHyped,
	domain.MoodSocial:      domain.ToneHyped,
	domain.MoodExploratory: domain.ToneHyped,
	domain.MoodCompetitive: domain.ToneCompetitive,
	domain.MoodFocused:     domain.ToneCompetitive,
}

// BuildPersonaNarrative assembles the summary and tone. Unknown trait or mood
// values fall back to generic wording.
func BuildPersonaNarrative(ctx domain.PersonaMoodContext) domain.PersonaNarrative {
	base := fmt.Sprintf("You're %s. You play in %s and %s.",
		lookup(archetypeDescriptions, ctx.Traits.ArchetypeID, fallbackArchetype),
		lookup(pacingDescriptions, ctx.Traits.Pacing, fallbackPacing),
		lookup(riskDescriptions, ctx.Traits.RiskProfile, fallbackRisk),
	)

	if ctx.Mood == nil {
		return domain.PersonaNarrative{
			Summary: base + " Log how you feel to get picks tuned to your mood.",
			Tone:    domain.ToneReflective,
		}
	}

	return domain.PersonaNarrative{
		Summary: fmt.Sprintf("%s Right now you're %s (%s intensity), so we'll lean into that.",
			base,
			lookup(moodDescriptions, ctx.Mood.MoodID, fallbackMood),
			strings.ToLower(MoodIntensityCategory(ctx.Mood.Intensity)),
		),
		Tone: ToneForMood(ctx.Mood.MoodID),
	}
}

// ToneForMood is the tone lookup; moods outside the table map to Comfort.
func ToneForMood(id domain.MoodID) domain.Tone {
	if t, ok := moodTones[id]; ok {
		return t
	}
	return domain.ToneComfort
}

func lookup[K comparable](table map[K]string, key K, fallback string) string {
	if v, ok := table[key]; ok {
		return v
	}
	return fallback
}
