// Package recommend ranks candidate games for a player. Scorer works from a
// derived persona snapshot plus raw signals; Coach works from a directly
// entered emotional profile. Both are linear multi-factor scorers whose every
// point carries a readable reason.
package recommend

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/gamepilot/gamepilot/internal/domain"
)

// FallbackScore is reported whenever no factor could justify a pick.
const FallbackScore = 50

// GenericExplanation is used for fallback picks and reason-less results.
const GenericExplanation = "A solid pick from your library to dive into next."

const (
	maxExplanationReasons = 3
	reasonSeparator       = " • "
	popularPoolSize       = 3
)

// Scorer produces persona-driven recommendations. The zero value is not
// usable; construct with NewScorer.
type Scorer struct {
	intn  func(n int) int
	newID func() string
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithIntn sets the random source used by the no-persona fallback.
func WithIntn(intn func(n int) int) ScorerOption {
	return func(s *Scorer) { s.intn = intn }
}

// WithIDGenerator sets how recommendation ids are minted.
func WithIDGenerator(newID func() string) ScorerOption {
	return func(s *Scorer) { s.newID = newID }
}

// NewScorer creates a Scorer.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{intn: rand.IntN, newID: uuid.NewString}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Recommend picks one game.
//
// With no snapshot it picks at random among the three most popular games.
// Otherwise every game is scored, the list is sorted by score (ties keep pool
// order) and the entry at refreshIndex, clamped to the list, is returned. A
// selected game with score 0 is replaced by games[refreshIndex % len(games)]
// with the generic explanation.
func (s *Scorer) Recommend(snapshot *domain.PersonaSnapshot, games []domain.CandidateGame, signals *domain.RawPlayerSignals, refreshIndex int) (domain.Recommendation, error) {
	if len(games) == 0 {
		return domain.Recommendation{}, domain.ErrNoCandidates
	}
	if refreshIndex < 0 {
		refreshIndex = 0
	}

	if snapshot == nil {
		popular := topByPopularity(games, popularPoolSize)
		return s.fallback(popular[s.intn(len(popular))]), nil
	}

	ranked := s.Rank(snapshot, games, signals)
	chosen := ranked[min(refreshIndex, len(ranked)-1)]
	if chosen.Score == 0 {
		return s.fallback(games[refreshIndex%len(games)]), nil
	}

	return domain.Recommendation{
		ID:          s.newID(),
		Game:        chosen.Game,
		Explanation: Explain(chosen),
		Score:       chosen.Score,
		Factors:     chosen.Factors,
	}, nil
}

// Rank scores every game and sorts by score, descending. The sort is stable.
func (s *Scorer) Rank(snapshot *domain.PersonaSnapshot, games []domain.CandidateGame, signals *domain.RawPlayerSignals) []domain.ScoredGame {
	p := newProfile(snapshot, signals)
	ranked := make([]domain.ScoredGame, len(games))
	for i, g := range games {
		ranked[i] = p.score(g)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func (s *Scorer) fallback(g domain.CandidateGame) domain.Recommendation {
	return domain.Recommendation{
		ID:          s.newID(),
		Game:        g,
		Explanation: GenericExplanation,
		Score:       FallbackScore,
		Fallback:    true,
	}
}

// Explain joins up to the first three reasons of g.
func Explain(g domain.ScoredGame) string {
	reasons := g.Reasons()
	if len(reasons) == 0 {
		return GenericExplanation
	}
	if len(reasons) > maxExplanationReasons {
		reasons = reasons[:maxExplanationReasons]
	}
	return strings.Join(reasons, reasonSeparator)
}

func topByPopularity(games []domain.CandidateGame, n int) []domain.CandidateGame {
	sorted := append([]domain.CandidateGame(nil), games...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Popularity > sorted[j].Popularity
	})
	return sorted[:min(n, len(sorted))]
}

// ─── Factors ────────────────────────────────────────────────────────────────

// Genre affinity thresholds in minutes and their points. Points stack across
// every matching genre of a game.
var genreTiers = []struct {
	minutes float64
	points  int
	reason  string
}{
	{50, 30, "You love %s games"},
	{20, 20, "You enjoy %s games"},
	{5, 10, "You've been getting into %s"},
}

// archetypePairings lists playstyle tags that suit each archetype. The first
// tag the game carries wins.
var archetypePairings = map[domain.ArchetypeID][]struct {
	tag    string
	points int
	reason string
}{
	domain.ArchetypeSpecialist: {{"achiever", 20, "Deep mastery for a specialist like you"}},
	domain.ArchetypeSocialite:  {{"social", 20, "A great place to hang out with friends"}},
	domain.ArchetypeCasual:     {{"casual", 15, "Easy to pick up and put down"}},
	domain.ArchetypeAchiever:   {{"completionist", 20, "Plenty to complete and collect"}, {"achiever", 15, "Rewards your drive to finish things"}},
	domain.ArchetypeExplorer:   {{"exploration", 20, "A world that rewards your curiosity"}, {"open-world", 15, "Plenty of room to roam"}},
	domain.ArchetypeCompetitor: {{"competitive", 20, "Real competition for a competitor"}, {"pvp", 20, "Head-to-head play you'll thrive on"}},
	domain.ArchetypeStrategist: {{"strategic", 20, "Rewards your strategic thinking"}, {"tactical", 15, "Tactical depth to sink into"}},
	domain.ArchetypeCreative:   {{"creative", 20, "Room to express your creativity"}, {"sandbox", 15, "A sandbox to make your own"}},
	domain.ArchetypeSocializer: {{"coop", 20, "Built for playing together"}, {"social", 15, "Social play that suits you"}},
}

// profile is the per-call view of the player the factors read from.
type profile struct {
	archetype domain.ArchetypeID
	signals   *domain.RawPlayerSignals
	playtime  map[string]float64 // lowercased genre -> minutes
}

func newProfile(snapshot *domain.PersonaSnapshot, signals *domain.RawPlayerSignals) profile {
	p := profile{archetype: snapshot.Traits.ArchetypeID, signals: signals, playtime: map[string]float64{}}
	if signals != nil {
		for g, m := range signals.PlaytimeByGenre {
			p.playtime[strings.ToLower(strings.TrimSpace(g))] += m
		}
	}
	return p
}

func (p profile) score(g domain.CandidateGame) domain.ScoredGame {
	factors := []domain.FactorScore{
		p.genreAffinity(g),
		p.moodMatch(g),
		p.archetypeMatch(g),
		p.difficultyMatch(g),
		p.sessionFit(g),
	}
	out := domain.ScoredGame{Game: g}
	for _, f := range factors {
		if f.Points == 0 {
			continue
		}
		out.Factors = append(out.Factors, f)
		out.Score += f.Points
	}
	return out
}

func (p profile) genreAffinity(g domain.CandidateGame) domain.FactorScore {
	f := domain.FactorScore{Factor: domain.FactorGenre}
	for _, genre := range g.Genres {
		minutes := p.playtime[strings.ToLower(strings.TrimSpace(genre))]
		for _, tier := range genreTiers {
			if minutes > tier.minutes {
				f.Points += tier.points
				if f.Reason == "" {
					f.Reason = fmt.Sprintf(tier.reason, genre)
				}
				break
			}
		}
	}
	return f
}

func (p profile) moodMatch(g domain.CandidateGame) domain.FactorScore {
	f := domain.FactorScore{Factor: domain.FactorMood}
	add := func(points int, reason string) {
		f.Points += points
		if f.Reason == "" {
			f.Reason = reason
		}
	}

	tags := tagSet(g.MoodTags)
	if s := p.signals; s != nil {
		if tags["energetic"] && s.SessionsPerWeek > 5 {
			add(15, "Keeps pace with how often you play")
		}
		if tags["relaxed"] && s.SessionsPerWeek <= 3 {
			add(15, "A relaxed fit for your laid-back schedule")
		}
		if tags["focused"] && s.AverageSessionLengthMinutes > 90 {
			add(10, "Rewards your long, focused sessions")
		}
		if tags["social"] && s.MultiplayerRatio > 0.5 {
			add(10, "Great for your social play style")
		}
	}
	return f
}

func (p profile) archetypeMatch(g domain.CandidateGame) domain.FactorScore {
	f := domain.FactorScore{Factor: domain.FactorArchetype}
	tags := tagSet(g.PlaystyleTags)
	for _, pair := range archetypePairings[p.archetype] {
		if tags[pair.tag] {
			f.Points = pair.points
			f.Reason = pair.reason
			break
		}
	}
	return f
}

func (p profile) difficultyMatch(g domain.CandidateGame) domain.FactorScore {
	f := domain.FactorScore{Factor: domain.FactorDifficulty}
	if p.signals == nil || !g.Difficulty.Valid() || !p.signals.DifficultyPreference.Valid() {
		return f
	}
	switch diff := g.Difficulty.Rank() - p.signals.DifficultyPreference.Rank(); {
	case diff == 0:
		f.Points = 15
		f.Reason = fmt.Sprintf("Matches your preferred %s difficulty", string(g.Difficulty))
	case diff == 1 || diff == -1:
		f.Points = 8
		f.Reason = "Close to your preferred difficulty"
	}
	return f
}

func (p profile) sessionFit(g domain.CandidateGame) domain.FactorScore {
	f := domain.FactorScore{Factor: domain.FactorSession}
	if g.SessionSuitability == domain.SessionFlexible {
		f.Points = 5
		f.Reason = "Works for any session length"
		return f
	}
	if p.signals == nil {
		return f
	}
	avg := p.signals.AverageSessionLengthMinutes
	fits := false
	switch g.SessionSuitability {
	case domain.SessionShort:
		fits = avg <= 60
	case domain.SessionMedium:
		fits = avg > 60 && avg <= 120
	case domain.SessionLong:
		fits = avg > 120
	}
	if fits {
		f.Points = 10
		f.Reason = "Fits your usual session length"
	}
	return f
}

// tagSet lowercases tags for case-insensitive lookups.
func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return set
}
