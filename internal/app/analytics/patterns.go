package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/gamepilot/gamepilot/internal/domain"
)

// DefaultTopHours is the k used when callers pass k <= 0.
const DefaultTopHours = 3

// TemporalPatterns summarizes when a user's moods run highest and lowest.
// Scores are average mood intensity per bucket.
type TemporalPatterns struct {
	BestHours  []int              `json:"bestHours"`
	WorstHours []int              `json:"worstHours"`
	HourScores map[int]float64    `json:"hourScores"`
	DayTrends  map[string]float64 `json:"dayTrends"`
}

type bucket struct {
	sum   float64
	count int
}

func (b bucket) avg() float64 {
	if b.count == 0 {
		return 0
	}
	return b.sum / float64(b.count)
}

// TemporalMoodPatterns groups events by hour of day and weekday. BestHours are
// the k highest-scoring hours, WorstHours the k lowest; ties go to the earlier
// hour. Only hours with at least one event are ranked.
func TemporalMoodPatterns(events []domain.MoodEvent, k int) TemporalPatterns {
	if k <= 0 {
		k = DefaultTopHours
	}
	out := TemporalPatterns{
		BestHours:  []int{},
		WorstHours: []int{},
		HourScores: map[int]float64{},
		DayTrends:  map[string]float64{},
	}
	if len(events) == 0 {
		return out
	}

	var hours [24]bucket
	var days [7]bucket
	for _, ev := range events {
		h := ev.TemporalContext.HourOfDay
		d := ev.TemporalContext.DayOfWeek
		if h < 0 || h > 23 || d < 0 || d > 6 {
			continue
		}
		hours[h].sum += float64(ev.Intensity)
		hours[h].count++
		days[d].sum += float64(ev.Intensity)
		days[d].count++
	}

	var seen []int
	for h, b := range hours {
		if b.count > 0 {
			out.HourScores[h] = round2(b.avg())
			seen = append(seen, h)
		}
	}
	for d, b := range days {
		if b.count > 0 {
			out.DayTrends[time.Weekday(d).String()] = round2(b.avg())
		}
	}

	best := append([]int(nil), seen...)
	sort.SliceStable(best, func(i, j int) bool {
		return hours[best[i]].avg() > hours[best[j]].avg()
	})
	worst := append([]int(nil), seen...)
	sort.SliceStable(worst, func(i, j int) bool {
		return hours[worst[i]].avg() < hours[worst[j]].avg()
	})
	out.BestHours = best[:min(k, len(best))]
	out.WorstHours = worst[:min(k, len(worst))]
	return out
}

// CompoundMood is a (primary mood, secondary tag) pair seen together.
type CompoundMood struct {
	Primary          domain.MoodID `json:"primary"`
	Secondary        string        `json:"secondary"`
	Frequency        int           `json:"frequency"`
	AverageIntensity float64       `json:"averageIntensity"`
}

// CompoundMoodSuggestions counts (moodId, tag) co-occurrences across events'
// moodTags. Results are ordered by frequency, descending; equal frequencies
// keep first-encountered order. A tag equal to the mood id itself is ignored.
func CompoundMoodSuggestions(events []domain.MoodEvent) []CompoundMood {
	type key struct {
		primary   domain.MoodID
		secondary string
	}
	index := map[key]int{}
	var pairs []CompoundMood
	var sums []float64

	for _, ev := range events {
		seen := map[string]bool{}
		for _, tag := range ev.MoodTags {
			if tag == "" || tag == string(ev.MoodID) || seen[tag] {
				continue
			}
			seen[tag] = true
			k := key{ev.MoodID, tag}
			i, ok := index[k]
			if !ok {
				i = len(pairs)
				index[k] = i
				pairs = append(pairs, CompoundMood{Primary: ev.MoodID, Secondary: tag})
				sums = append(sums, 0)
			}
			pairs[i].Frequency++
			sums[i] += float64(ev.Intensity)
		}
	}

	for i := range pairs {
		pairs[i].AverageIntensity = round2(sums[i] / float64(pairs[i].Frequency))
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Frequency > pairs[j].Frequency
	})
	if pairs == nil {
		pairs = []CompoundMood{}
	}
	return pairs
}

// SessionMoodStats aggregates mood change across completed sessions.
// SessionDurationImpact is the Pearson correlation between session length and
// mood delta, 0 when it is undefined.
type SessionMoodStats struct {
	Sessions              int     `json:"sessions"`
	AverageMoodDelta      float64 `json:"averageMoodDelta"`
	PositiveSessionRatio  float64 `json:"positiveSessionRatio"`
	SessionDurationImpact float64 `json:"sessionDurationImpact"`
}

// SessionMoodDelta considers only sessions with both a pre and a post mood.
func SessionMoodDelta(sessions []domain.SessionEvent) SessionMoodStats {
	var deltas, durations []float64
	positive := 0
	for _, s := range sessions {
		if s.PreMood == nil || s.PostMood == nil {
			continue
		}
		d := float64(s.PostMood.Intensity - s.PreMood.Intensity)
		deltas = append(deltas, d)
		if d > 0 {
			positive++
		}
		dur := 0.0
		if s.DurationMinutes != nil {
			dur = *s.DurationMinutes
		}
		durations = append(durations, dur)
	}
	if len(deltas) == 0 {
		return SessionMoodStats{}
	}

	n := float64(len(deltas))
	return SessionMoodStats{
		Sessions:              len(deltas),
		AverageMoodDelta:      round2(mean(deltas)),
		PositiveSessionRatio:  round2(float64(positive) / n),
		SessionDurationImpact: round2(pearson(durations, deltas)),
	}
}

// FeedbackStats counts feedback verdicts. HitRate is matched plus half of
// partial over all non-skip verdicts.
type FeedbackStats struct {
	Total   int     `json:"total"`
	Matched int     `json:"matched"`
	Partial int     `json:"partial"`
	Missed  int     `json:"missed"`
	Skipped int     `json:"skipped"`
	HitRate float64 `json:"hitRate"`
}

// FeedbackSummary tallies a feedback log.
func FeedbackSummary(feedback []domain.RecommendationFeedback) FeedbackStats {
	var st FeedbackStats
	for _, f := range feedback {
		st.Total++
		switch f.Feedback {
		case domain.FeedbackMatched:
			st.Matched++
		case domain.FeedbackPartial:
			st.Partial++
		case domain.FeedbackMissed:
			st.Missed++
		case domain.FeedbackSkip:
			st.Skipped++
		}
	}
	if rated := st.Matched + st.Partial + st.Missed; rated > 0 {
		st.HitRate = round2((float64(st.Matched) + 0.5*float64(st.Partial)) / float64(rated))
	}
	return st
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func pearson(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
