package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamepilot/gamepilot/internal/app/analytics"
	"github.com/gamepilot/gamepilot/internal/domain"
)

// fakeClock returns a clock that advances by step on every call.
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

func newEngine(t *testing.T, maxHistory int) *analytics.Engine {
	t.Helper()
	cfg := analytics.DefaultConfig()
	cfg.MaxHistorySize = maxHistory
	cfg.Now = fakeClock(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC), 30*time.Minute)
	return analytics.NewEngine(cfg)
}

func mood(id domain.MoodID, intensity int) *domain.MoodState {
	return &domain.MoodState{MoodID: id, Intensity: intensity}
}

// ═══════════════════════════════════════════════════════════════════════════
// History
// ═══════════════════════════════════════════════════════════════════════════

func TestEngine_MoodHistoryFIFO(t *testing.T) {
	e := newEngine(t, 3)
	for i, id := range []domain.MoodID{domain.MoodChill, domain.MoodFocused, domain.MoodSocial, domain.MoodCozy} {
		e.RecordMoodEvent(domain.MoodEvent{MoodID: id, Intensity: i + 1})
		assert.LessOrEqual(t, len(e.MoodHistory()), 3)
	}

	got := e.MoodHistory()
	require.Len(t, got, 3)
	assert.Equal(t, domain.MoodFocused, got[0].MoodID)
	assert.Equal(t, domain.MoodSocial, got[1].MoodID)
	assert.Equal(t, domain.MoodCozy, got[2].MoodID)
}

func TestEngine_RecordMoodEventFillsContext(t *testing.T) {
	e := newEngine(t, 10)
	ts := time.Date(2025, 7, 5, 22, 15, 0, 0, time.UTC) // Saturday
	ev := e.RecordMoodEvent(domain.MoodEvent{MoodID: domain.MoodChill, Intensity: 42, Timestamp: ts})

	assert.Equal(t, 10, ev.Intensity)
	assert.Equal(t, 22, ev.TemporalContext.HourOfDay)
	assert.Equal(t, int(time.Saturday), ev.TemporalContext.DayOfWeek)
	assert.Equal(t, 27, ev.TemporalContext.WeekOfYear)
	assert.NotNil(t, ev.MoodTags)

	latest, ok := e.LatestMood()
	require.True(t, ok)
	assert.Equal(t, domain.MoodChill, latest.MoodID)
}

func TestEngine_HistoryIsACopy(t *testing.T) {
	e := newEngine(t, 10)
	e.RecordMoodEvent(domain.MoodEvent{MoodID: domain.MoodChill, Intensity: 5})
	h := e.MoodHistory()
	h[0].MoodID = domain.MoodFocused
	assert.Equal(t, domain.MoodChill, e.MoodHistory()[0].MoodID)
}

// ═══════════════════════════════════════════════════════════════════════════
// Session lifecycle
// ═══════════════════════════════════════════════════════════════════════════

func TestEngine_SessionLifecycle(t *testing.T) {
	e := newEngine(t, 10)

	open, err := e.RecordSessionStart("s1", "g1", mood(domain.MoodChill, 4))
	require.NoError(t, err)
	assert.Nil(t, open.EndTime)
	assert.Nil(t, open.PostMood)
	require.NotNil(t, open.PreMood)

	done, err := e.RecordSessionEnd(open.SessionID, mood(domain.MoodEnergetic, 7))
	require.NoError(t, err)
	require.NotNil(t, done.EndTime)
	require.NotNil(t, done.MoodDelta)
	assert.Equal(t, 3, *done.MoodDelta)
	require.NotNil(t, done.DurationMinutes)
	assert.Greater(t, *done.DurationMinutes, 0.0)

	require.Len(t, e.SessionHistory(), 1)
	_, stillOpen := e.OpenSession("s1")
	assert.False(t, stillOpen)

	// pre and post moods were logged as session mood events
	history := e.MoodHistory()
	require.Len(t, history, 2)
	assert.True(t, history[0].SessionContext.IsPreSession)
	assert.True(t, history[1].SessionContext.IsPostSession)
	assert.Equal(t, "g1", history[1].GameID)
}

func TestEngine_SessionMoodsDefaultToSessionTimes(t *testing.T) {
	e := newEngine(t, 10)

	open, err := e.RecordSessionStart("s1", "g1", mood(domain.MoodChill, 4))
	require.NoError(t, err)
	require.NotNil(t, open.PreMood)
	assert.Equal(t, open.StartTime, open.PreMood.Timestamp)

	done, err := e.RecordSessionEnd("s1", mood(domain.MoodEnergetic, 7))
	require.NoError(t, err)
	require.NotNil(t, done.PostMood)
	assert.Equal(t, *done.EndTime, done.PostMood.Timestamp)

	history := e.MoodHistory()
	require.Len(t, history, 2)
	assert.Equal(t, open.PreMood.Timestamp, history[0].Timestamp)
	assert.Equal(t, done.PostMood.Timestamp, history[1].Timestamp)

	// an explicit timestamp is kept as given
	at := time.Date(2025, 6, 30, 20, 0, 0, 0, time.UTC)
	open, err = e.RecordSessionStart("s2", "", &domain.MoodState{MoodID: domain.MoodCozy, Intensity: 5, Timestamp: at})
	require.NoError(t, err)
	assert.Equal(t, at, open.PreMood.Timestamp)
}

func TestEngine_EndUnknownSession(t *testing.T) {
	e := newEngine(t, 10)
	_, err := e.RecordSessionEnd("ghost", mood(domain.MoodChill, 5))
	assert.ErrorIs(t, err, domain.ErrSessionNotOpen)
	assert.Empty(t, e.SessionHistory())
}

func TestEngine_EndTwice(t *testing.T) {
	e := newEngine(t, 10)
	_, err := e.RecordSessionStart("s1", "", nil)
	require.NoError(t, err)
	_, err = e.RecordSessionEnd("s1", nil)
	require.NoError(t, err)
	_, err = e.RecordSessionEnd("s1", nil)
	assert.ErrorIs(t, err, domain.ErrSessionNotOpen)
}

func TestEngine_StartTwice(t *testing.T) {
	e := newEngine(t, 10)
	_, err := e.RecordSessionStart("s1", "", nil)
	require.NoError(t, err)
	_, err = e.RecordSessionStart("s1", "", nil)
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)

	_, err = e.RecordSessionStart("", "", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEngine_SessionWithoutMoodsHasNoDelta(t *testing.T) {
	e := newEngine(t, 10)
	_, _ = e.RecordSessionStart("s1", "", nil)
	done, err := e.RecordSessionEnd("s1", mood(domain.MoodChill, 5))
	require.NoError(t, err)
	assert.Nil(t, done.MoodDelta)
}

// ═══════════════════════════════════════════════════════════════════════════
// Feedback
// ═══════════════════════════════════════════════════════════════════════════

func TestEngine_Feedback(t *testing.T) {
	e := newEngine(t, 2)
	for _, k := range []domain.FeedbackKind{domain.FeedbackMatched, domain.FeedbackMissed, domain.FeedbackPartial} {
		_, err := e.RecordFeedback(domain.RecommendationFeedback{RecommendationID: "r", Feedback: k})
		require.NoError(t, err)
	}
	got := e.FeedbackHistory()
	require.Len(t, got, 2)
	assert.Equal(t, domain.FeedbackMissed, got[0].Feedback)

	_, err := e.RecordFeedback(domain.RecommendationFeedback{RecommendationID: "r", Feedback: "meh"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stats := e.FeedbackStats()
	assert.Equal(t, 2, stats.Total)
	assert.InDelta(t, 0.25, stats.HitRate, 1e-9)
}

// ═══════════════════════════════════════════════════════════════════════════
// Restore
// ═══════════════════════════════════════════════════════════════════════════

func TestEngine_RestoreHonoursCap(t *testing.T) {
	e := newEngine(t, 2)
	end := time.Now()
	e.Restore(
		[]domain.MoodEvent{{MoodID: "a"}, {MoodID: "b"}, {MoodID: "c"}},
		[]domain.SessionEvent{
			{SessionID: "done", EndTime: &end},
			{SessionID: "open"},
		},
		nil,
	)

	moods := e.MoodHistory()
	require.Len(t, moods, 2)
	assert.Equal(t, domain.MoodID("b"), moods[0].MoodID)
	assert.Len(t, e.SessionHistory(), 1)

	_, err := e.RecordSessionEnd("open", nil)
	assert.NoError(t, err)
}

// ═══════════════════════════════════════════════════════════════════════════
// Patterns
// ═══════════════════════════════════════════════════════════════════════════

func eventAt(id domain.MoodID, intensity int, ts time.Time, tags ...string) domain.MoodEvent {
	return domain.MoodEvent{
		MoodID:          id,
		Intensity:       intensity,
		Timestamp:       ts,
		MoodTags:        tags,
		TemporalContext: analytics.TemporalContextFor(ts, time.UTC),
	}
}

func TestTemporalMoodPatterns_Empty(t *testing.T) {
	p := analytics.TemporalMoodPatterns(nil, 3)
	assert.Empty(t, p.BestHours)
	assert.Empty(t, p.WorstHours)
	assert.NotNil(t, p.DayTrends)
	assert.Empty(t, p.DayTrends)
}

func TestTemporalMoodPatterns(t *testing.T) {
	mon := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	events := []domain.MoodEvent{
		eventAt(domain.MoodEnergetic, 9, mon.Add(20*time.Hour)),
		eventAt(domain.MoodEnergetic, 7, mon.Add(20*time.Hour+time.Minute)),
		eventAt(domain.MoodChill, 2, mon.Add(8*time.Hour)),
		eventAt(domain.MoodFocused, 5, mon.Add(24*time.Hour+14*time.Hour)),
		eventAt(domain.MoodSocial, 5, mon.Add(24*time.Hour+16*time.Hour)),
	}

	p := analytics.TemporalMoodPatterns(events, 2)
	assert.Equal(t, []int{20, 14}, p.BestHours)
	assert.Equal(t, []int{8, 14}, p.WorstHours)
	assert.InDelta(t, 8.0, p.HourScores[20], 1e-9)
	assert.InDelta(t, 6.0, p.DayTrends["Monday"], 1e-9)
	assert.InDelta(t, 5.0, p.DayTrends["Tuesday"], 1e-9)
}

func TestEngine_TemporalFeatureFlag(t *testing.T) {
	cfg := analytics.DefaultConfig()
	cfg.EnableTemporal = false
	cfg.EnableCompound = false
	e := analytics.NewEngine(cfg)

	_, err := e.TemporalPatterns(3)
	assert.ErrorIs(t, err, domain.ErrFeatureDisabled)
	_, err = e.CompoundSuggestions()
	assert.ErrorIs(t, err, domain.ErrFeatureDisabled)
}

func TestCompoundMoodSuggestions(t *testing.T) {
	ts := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	events := []domain.MoodEvent{
		eventAt(domain.MoodChill, 4, ts, "cozy", "story"),
		eventAt(domain.MoodChill, 6, ts, "story", "chill"),
		eventAt(domain.MoodFocused, 8, ts, "competitive"),
		eventAt(domain.MoodChill, 2, ts, "cozy", "cozy"),
		eventAt(domain.MoodFocused, 6, ts, "competitive"),
	}

	got := analytics.CompoundMoodSuggestions(events)
	require.Len(t, got, 3)

	// all three pairs have frequency 2; first-encountered order is kept
	assert.Equal(t, "cozy", got[0].Secondary)
	assert.Equal(t, 2, got[0].Frequency)
	assert.InDelta(t, 3.0, got[0].AverageIntensity, 1e-9)
	assert.Equal(t, "story", got[1].Secondary)
	assert.InDelta(t, 5.0, got[1].AverageIntensity, 1e-9)
	assert.Equal(t, domain.MoodFocused, got[2].Primary)
	assert.InDelta(t, 7.0, got[2].AverageIntensity, 1e-9)
}

func TestCompoundMoodSuggestions_SortsByFrequency(t *testing.T) {
	ts := time.Now()
	events := []domain.MoodEvent{
		eventAt(domain.MoodChill, 5, ts, "story"),
		eventAt(domain.MoodFocused, 5, ts, "competitive"),
		eventAt(domain.MoodFocused, 5, ts, "competitive"),
	}
	got := analytics.CompoundMoodSuggestions(events)
	require.Len(t, got, 2)
	assert.Equal(t, "competitive", got[0].Secondary)
	assert.Equal(t, "story", got[1].Secondary)

	assert.Empty(t, analytics.CompoundMoodSuggestions(nil))
}

func TestSessionMoodDelta(t *testing.T) {
	assert.Equal(t, analytics.SessionMoodStats{}, analytics.SessionMoodDelta(nil))

	dur := func(m float64) *float64 { return &m }
	sessions := []domain.SessionEvent{
		{PreMood: mood(domain.MoodChill, 3), PostMood: mood(domain.MoodChill, 6), DurationMinutes: dur(90)},
		{PreMood: mood(domain.MoodChill, 5), PostMood: mood(domain.MoodChill, 4), DurationMinutes: dur(30)},
		{PreMood: mood(domain.MoodChill, 5), PostMood: mood(domain.MoodChill, 7), DurationMinutes: dur(60)},
		{PreMood: mood(domain.MoodChill, 5)}, // not completed with a post mood
	}
	st := analytics.SessionMoodDelta(sessions)
	assert.Equal(t, 3, st.Sessions)
	assert.InDelta(t, 1.33, st.AverageMoodDelta, 1e-9)
	assert.InDelta(t, 0.67, st.PositiveSessionRatio, 1e-9)
	assert.Greater(t, st.SessionDurationImpact, 0.9)
}
