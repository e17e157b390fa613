package persona

import (
	"fmt"
	"time"

	"github.com/gamepilot/gamepilot/internal/domain"
)

// DefaultMoodMaxAgeHours is how long a mood reading counts as current.
const DefaultMoodMaxAgeHours = 24

// CreateMoodState builds a mood reading, clamping intensity to [1,10].
// A zero timestamp means now.
func CreateMoodState(id domain.MoodID, intensity int, ts time.Time) domain.MoodState {
	if ts.IsZero() {
		ts = time.Now()
	}
	return domain.MoodState{
		MoodID:    id,
		Intensity: ClampIntensity(intensity),
		Timestamp: ts,
	}
}

// ClampIntensity returns max(1, min(10, n)).
func ClampIntensity(n int) int {
	return max(domain.MinMoodIntensity, min(domain.MaxMoodIntensity, n))
}

// MapMoodToPersonaContext pairs traits with the mood entry as given. A nil
// entry stays nil; it is never inferred.
func MapMoodToPersonaContext(traits domain.PersonaTraits, entry *domain.MoodState) (domain.PersonaMoodContext, error) {
	ctx := domain.PersonaMoodContext{Traits: traits}
	if entry == nil {
		return ctx, nil
	}
	if entry.MoodID == "" {
		return ctx, fmt.Errorf("%w: moodId is empty", domain.ErrInvalidMood)
	}
	if entry.Intensity < domain.MinMoodIntensity || entry.Intensity > domain.MaxMoodIntensity {
		return ctx, fmt.Errorf("%w: intensity %d outside [%d,%d]",
			domain.ErrInvalidMood, entry.Intensity, domain.MinMoodIntensity, domain.MaxMoodIntensity)
	}
	mood := *entry
	ctx.Mood = &mood
	return ctx, nil
}

// IsMoodRecent reports whether m was recorded within maxAgeHours of now.
func IsMoodRecent(m domain.MoodState, maxAgeHours float64) bool {
	return IsMoodRecentAt(m, maxAgeHours, time.Now())
}

// IsMoodRecentAt is IsMoodRecent against an explicit clock. An age exactly
// equal to maxAgeHours still counts as recent.
func IsMoodRecentAt(m domain.MoodState, maxAgeHours float64, now time.Time) bool {
	maxAge := time.Duration(maxAgeHours * float64(time.Hour))
	return now.Sub(m.Timestamp) <= maxAge
}

// MoodIntensityCategory buckets an intensity: ≤3 Low, ≤7 Medium, else High.
func MoodIntensityCategory(intensity int) string {
	switch {
	case intensity <= 3:
		return "Low"
	case intensity <= 7:
		return "Medium"
	default:
		return "High"
	}
}
