package domain

// ─── Candidate Games ────────────────────────────────────────────────────────

// SessionSuitability is how long a game's natural play session runs.
type SessionSuitability string

const (
	SessionShort    SessionSuitability = "short"
	SessionMedium   SessionSuitability = "medium"
	SessionLong     SessionSuitability = "long"
	SessionFlexible SessionSuitability = "flexible"
)

// CandidateGame is a library or catalog entry as read by the scorers.
// Any field may be empty; empty fields simply never match.
type CandidateGame struct {
	ID                 string               `json:"id"`
	Title              string               `json:"title"`
	Genres             []string             `json:"genres"`
	MoodTags           []string             `json:"moodTags"`
	PlaystyleTags      []string             `json:"playstyleTags"`
	Difficulty         DifficultyPreference `json:"difficulty,omitempty"`
	SessionSuitability SessionSuitability   `json:"sessionSuitability,omitempty"`
	Popularity         float64              `json:"popularity"`
}

// ─── Scoring Output ─────────────────────────────────────────────────────────

// Factor names a scoring dimension.
type Factor string

const (
	FactorGenre      Factor = "genre"
	FactorMood       Factor = "mood"
	FactorArchetype  Factor = "archetype"
	FactorDifficulty Factor = "difficulty"
	FactorSession    Factor = "session"

	// Coach-only dimensions.
	FactorNeed   Factor = "need"
	FactorPacing Factor = "pacing"
	FactorTime   Factor = "time"
	FactorLoad   Factor = "cognitive_load"
	FactorSocial Factor = "social"
)

// FactorScore is one factor's contribution to a candidate's total.
type FactorScore struct {
	Factor Factor `json:"factor"`
	Points int    `json:"points"`
	Reason string `json:"reason,omitempty"`
}

// ScoredGame is a candidate annotated with its factor contributions.
type ScoredGame struct {
	Game    CandidateGame `json:"game"`
	Factors []FactorScore `json:"factors"`
	Score   int           `json:"score"`
}

// Reasons returns the nonempty reason strings in factor order.
func (g ScoredGame) Reasons() []string {
	var out []string
	for _, f := range g.Factors {
		if f.Reason != "" {
			out = append(out, f.Reason)
		}
	}
	return out
}

// Recommendation is the scorer's answer: one game plus a readable explanation.
type Recommendation struct {
	ID          string        `json:"id"`
	Game        CandidateGame `json:"game"`
	Explanation string        `json:"explanation"`
	Score       int           `json:"score"`
	Factors     []FactorScore `json:"factors,omitempty"`
	Fallback    bool          `json:"fallback"`
}

// ─── Emotional Profile ──────────────────────────────────────────────────────

// Level is a three-step self-reported scale.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Valid reports whether l is low, medium or high.
func (l Level) Valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

// SocialAppetite is how much company the player wants right now.
type SocialAppetite string

const (
	SocialSolo   SocialAppetite = "solo"
	SocialOpen   SocialAppetite = "open"
	SocialSocial SocialAppetite = "social"
)

// Need is one of the five need-alignment axes.
type Need string

const (
	NeedUnwind    Need = "unwind"
	NeedChallenge Need = "challenge"
	NeedConnect   Need = "connect"
	NeedEscape    Need = "escape"
	NeedAchieve   Need = "achieve"
)

// Needs lists the five axes in scoring order.
var Needs = []Need{NeedUnwind, NeedChallenge, NeedConnect, NeedEscape, NeedAchieve}

// EmotionalProfile is a directly entered emotional state.
type EmotionalProfile struct {
	Energy             Level          `json:"energy"`
	CognitiveLoad      Level          `json:"cognitiveLoad"`
	ChallengeTolerance Level          `json:"tolerance"`
	SocialAppetite     SocialAppetite `json:"socialAppetite"`
	Needs              []Need         `json:"needs"`
	AvailableMinutes   int            `json:"availableMinutes"`
}

// CoachResult is the emotional-profile scorer's answer.
type CoachResult struct {
	Primary      ScoredGame   `json:"primary"`
	Alternatives []ScoredGame `json:"alternatives"`
	Explanation  string       `json:"explanation"`
	Fallback     bool         `json:"fallback"`
}
