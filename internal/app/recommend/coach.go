package recommend

import (
	"fmt"
	"sort"

	"github.com/gamepilot/gamepilot/internal/domain"
)

// MaxAlternatives bounds CoachResult.Alternatives.
const MaxAlternatives = 3

// needPoints is awarded per requested need a game serves.
const needPoints = 20

// needTags maps each need to the mood or playstyle tags that serve it.
var needTags = map[domain.Need]struct {
	tags   []string
	reason string
}{
	domain.NeedUnwind:    {[]string{"relaxed", "chill", "cozy", "casual"}, "Helps you unwind"},
	domain.NeedChallenge: {[]string{"challenging", "competitive", "hardcore"}, "Gives you a real challenge"},
	domain.NeedConnect:   {[]string{"social", "coop", "multiplayer"}, "Lets you connect with others"},
	domain.NeedEscape:    {[]string{"story", "exploration", "exploratory", "immersive", "open-world"}, "A world to escape into"},
	domain.NeedAchieve:   {[]string{"achiever", "completionist", "progression"}, "Steady progress you can feel"},
}

var (
	calmTags      = []string{"relaxed", "chill", "cozy"}
	intenseTags   = []string{"energetic", "action", "competitive"}
	demandingTags = []string{"strategic", "tactical", "puzzle", "focused"}
	socialTags    = []string{"social", "coop", "multiplayer"}
)

// Coach ranks games against a directly entered EmotionalProfile.
type Coach struct{}

// NewCoach creates a Coach.
func NewCoach() *Coach { return &Coach{} }

// ValidateProfile checks every profile field and returns the first problem.
func ValidateProfile(p domain.EmotionalProfile) error {
	levels := []struct {
		field string
		level domain.Level
	}{
		{"energy", p.Energy},
		{"cognitiveLoad", p.CognitiveLoad},
		{"tolerance", p.ChallengeTolerance},
	}
	for _, l := range levels {
		if !l.level.Valid() {
			return domain.NewValidationError(l.field, "must be one of low, medium, high")
		}
	}
	switch p.SocialAppetite {
	case domain.SocialSolo, domain.SocialOpen, domain.SocialSocial:
	default:
		return domain.NewValidationError("socialAppetite", "must be one of solo, open, social")
	}
	for i, n := range p.Needs {
		if _, ok := needTags[n]; !ok {
			return domain.NewValidationError(fmt.Sprintf("needs[%d]", i), "must be one of unwind, challenge, connect, escape, achieve")
		}
	}
	if p.AvailableMinutes < 0 {
		return domain.NewValidationError("availableMinutes", "must be non-negative")
	}
	return nil
}

// Recommend validates the profile, scores every game, and returns the best
// one with up to MaxAlternatives runners-up. When no game scores above zero
// the first game in the pool is returned as a fallback scored FallbackScore.
func (c *Coach) Recommend(p domain.EmotionalProfile, games []domain.CandidateGame) (domain.CoachResult, error) {
	if err := ValidateProfile(p); err != nil {
		return domain.CoachResult{}, err
	}
	if len(games) == 0 {
		return domain.CoachResult{}, domain.ErrNoCandidates
	}

	ranked := c.Rank(p, games)
	if ranked[0].Score <= 0 {
		return domain.CoachResult{
			Primary:      domain.ScoredGame{Game: games[0], Score: FallbackScore},
			Alternatives: []domain.ScoredGame{},
			Explanation:  GenericExplanation,
			Fallback:     true,
		}, nil
	}

	alts := make([]domain.ScoredGame, 0, MaxAlternatives)
	for _, g := range ranked[1:] {
		if len(alts) == MaxAlternatives || g.Score <= 0 {
			break
		}
		alts = append(alts, g)
	}
	return domain.CoachResult{
		Primary:      ranked[0],
		Alternatives: alts,
		Explanation:  Explain(ranked[0]),
	}, nil
}

// Rank scores every game against p, highest first. The sort is stable.
func (c *Coach) Rank(p domain.EmotionalProfile, games []domain.CandidateGame) []domain.ScoredGame {
	ranked := make([]domain.ScoredGame, len(games))
	for i, g := range games {
		ranked[i] = scoreProfile(p, g)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func scoreProfile(p domain.EmotionalProfile, g domain.CandidateGame) domain.ScoredGame {
	tags := tagSet(append(append([]string(nil), g.MoodTags...), g.PlaystyleTags...))
	out := domain.ScoredGame{Game: g}
	add := func(f domain.FactorScore) {
		if f.Points == 0 {
			return
		}
		out.Factors = append(out.Factors, f)
		out.Score += f.Points
	}

	for _, n := range domain.Needs {
		if !wants(p.Needs, n) {
			continue
		}
		nt := needTags[n]
		if anyTag(tags, nt.tags) || (n == domain.NeedChallenge && g.Difficulty.Rank() >= 2) {
			add(domain.FactorScore{Factor: domain.FactorNeed, Points: needPoints, Reason: nt.reason})
		}
	}
	add(energyFit(p.Energy, tags))
	add(timeFit(p.AvailableMinutes, g.SessionSuitability))
	add(toleranceFit(p.ChallengeTolerance, g.Difficulty))
	add(loadFit(p.CognitiveLoad, tags))
	add(socialFit(p.SocialAppetite, tags))
	return out
}

func energyFit(energy domain.Level, tags map[string]bool) domain.FactorScore {
	f := domain.FactorScore{Factor: domain.FactorPacing}
	switch {
	case energy == domain.LevelLow && anyTag(tags, calmTags):
		f.Points, f.Reason = 10, "Gentle enough for a low-energy day"
	case energy == domain.LevelHigh && anyTag(tags, intenseTags):
		f.Points, f.Reason = 10, "Matches your energy"
	}
	return f
}

// timeFit compares available minutes to session suitability. Zero minutes
// means unknown and scores nothing.
func timeFit(minutes int, s domain.SessionSuitability) domain.FactorScore {
	f := domain.FactorScore{Factor: domain.FactorTime}
	if minutes == 0 {
		return f
	}
	var fits, tooShort bool
	switch s {
	case domain.SessionShort:
		fits = minutes >= 15
	case domain.SessionMedium:
		fits, tooShort = minutes >= 45, minutes < 30
	case domain.SessionLong:
		fits, tooShort = minutes >= 120, minutes < 60
	case domain.SessionFlexible:
		fits = true
	}
	switch {
	case fits:
		f.Points, f.Reason = 15, fmt.Sprintf("Fits in your %d minutes", minutes)
	case tooShort:
		f.Points = -10
	}
	return f
}

func toleranceFit(tol domain.Level, d domain.DifficultyPreference) domain.FactorScore {
	f := domain.FactorScore{Factor: domain.FactorDifficulty}
	r := d.Rank()
	if r < 0 {
		return f
	}
	switch tol {
	case domain.LevelLow:
		if r <= 1 {
			f.Points, f.Reason = 10, "Won't push you too hard"
		} else {
			f.Points = -10
		}
	case domain.LevelMedium:
		if r == 1 || r == 2 {
			f.Points, f.Reason = 10, "Just the right amount of challenge"
		}
	case domain.LevelHigh:
		if r >= 2 {
			f.Points, f.Reason = 10, "Tough enough to test you"
		} else {
			f.Points = -10
		}
	}
	return f
}

func loadFit(load domain.Level, tags map[string]bool) domain.FactorScore {
	f := domain.FactorScore{Factor: domain.FactorLoad}
	if !anyTag(tags, demandingTags) {
		return f
	}
	switch load {
	case domain.LevelHigh:
		f.Points = -10
	case domain.LevelLow:
		f.Points, f.Reason = 5, "You've got headroom for something that makes you think"
	}
	return f
}

func socialFit(a domain.SocialAppetite, tags map[string]bool) domain.FactorScore {
	f := domain.FactorScore{Factor: domain.FactorSocial}
	if !anyTag(tags, socialTags) {
		return f
	}
	switch a {
	case domain.SocialSolo:
		f.Points = -15
	case domain.SocialSocial:
		f.Points, f.Reason = 10, "Good company is part of the fun"
	}
	return f
}

func wants(needs []domain.Need, n domain.Need) bool {
	for _, x := range needs {
		if x == n {
			return true
		}
	}
	return false
}

func anyTag(tags map[string]bool, want []string) bool {
	for _, t := range want {
		if tags[t] {
			return true
		}
	}
	return false
}
