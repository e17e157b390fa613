package domain

import "time"

// ─── Mood Vocabulary ────────────────────────────────────────────────────────

// MoodID is a label from the fixed mood vocabulary. Values outside the
// vocabulary are carried through and described generically.
type MoodID string

const (
	MoodChill       MoodID = "chill"
	MoodStory       MoodID = "story"
	MoodCreative    MoodID = "creative"
	MoodEnergetic   MoodID = "energetic"
	MoodSocial      MoodID = "social"
	MoodExploratory MoodID = "exploratory"
	MoodCompetitive MoodID = "competitive"
	MoodFocused     MoodID = "focused"
	MoodRelaxed     MoodID = "relaxed"
	MoodCozy        MoodID = "cozy"
	MoodNostalgic   MoodID = "nostalgic"
)

// MoodVocabulary lists every known mood id.
var MoodVocabulary = []MoodID{
	MoodChill, MoodStory, MoodCreative, MoodEnergetic, MoodSocial, MoodExploratory,
	MoodCompetitive, MoodFocused, MoodRelaxed, MoodCozy, MoodNostalgic,
}

// Known reports whether m is part of MoodVocabulary.
func (m MoodID) Known() bool {
	for _, v := range MoodVocabulary {
		if v == m {
			return true
		}
	}
	return false
}

// Intensity bounds for MoodState.
const (
	MinMoodIntensity = 1
	MaxMoodIntensity = 10
)

// MoodState is a point-in-time mood reading. Intensity is in [1,10].
type MoodState struct {
	MoodID    MoodID    `json:"moodId"`
	Intensity int       `json:"intensity"`
	Timestamp time.Time `json:"timestamp"`
}

// ─── Mood Events ────────────────────────────────────────────────────────────

// TemporalContext is derived from an event timestamp.
type TemporalContext struct {
	HourOfDay  int `json:"hourOfDay"`  // 0..23
	DayOfWeek  int `json:"dayOfWeek"`  // 0 = Sunday
	WeekOfYear int `json:"weekOfYear"` // ISO week
}

// SessionContext ties a mood event to a play session.
type SessionContext struct {
	SessionID     string `json:"sessionId"`
	IsPreSession  bool   `json:"isPreSession"`
	IsPostSession bool   `json:"isPostSession"`
}

// MoodEvent is one entry of the mood history.
type MoodEvent struct {
	ID              string          `json:"id"`
	MoodID          MoodID          `json:"moodId"`
	Intensity       int             `json:"intensity"`
	Timestamp       time.Time       `json:"timestamp"`
	Context         string          `json:"context,omitempty"`
	GameID          string          `json:"gameId,omitempty"`
	MoodTags        []string        `json:"moodTags"`
	TemporalContext TemporalContext `json:"temporalContext"`
	SessionContext  *SessionContext `json:"sessionContext,omitempty"`
}

// State returns the event as a MoodState.
func (e MoodEvent) State() MoodState {
	return MoodState{MoodID: e.MoodID, Intensity: e.Intensity, Timestamp: e.Timestamp}
}

// ─── Sessions ───────────────────────────────────────────────────────────────

// SessionEvent is a play session. It is open while EndTime is nil and
// immutable once completed.
type SessionEvent struct {
	SessionID       string     `json:"sessionId"`
	UserID          string     `json:"userId,omitempty"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	GameID          string     `json:"gameId,omitempty"`
	PreMood         *MoodState `json:"preMood"`
	PostMood        *MoodState `json:"postMood"`
	DurationMinutes *float64   `json:"sessionDuration,omitempty"`
	MoodDelta       *int       `json:"moodDelta,omitempty"`
}

// Completed reports whether the session has ended.
func (s SessionEvent) Completed() bool { return s.EndTime != nil }

// ─── Recommendation Feedback ────────────────────────────────────────────────

// FeedbackKind is the user's verdict on a recommendation.
type FeedbackKind string

const (
	FeedbackMatched FeedbackKind = "matched"
	FeedbackPartial FeedbackKind = "partial"
	FeedbackMissed  FeedbackKind = "missed"
	FeedbackSkip    FeedbackKind = "skip"
)

// Valid reports whether k is a known verdict.
func (k FeedbackKind) Valid() bool {
	switch k {
	case FeedbackMatched, FeedbackPartial, FeedbackMissed, FeedbackSkip:
		return true
	}
	return false
}

// RecommendationFeedback is an append-only log entry.
type RecommendationFeedback struct {
	RecommendationID string       `json:"recommendationId"`
	MoodAtTime       *MoodState   `json:"moodAtTime"`
	Feedback         FeedbackKind `json:"feedback"`
	GameID           string       `json:"gameId,omitempty"`
	Timestamp        time.Time    `json:"timestamp"`
	Confidence       float64      `json:"confidence"`
}
