package mood

import (
	"sort"
	"time"

	"moodtrack/internal/models"
)

// DayGroup is one calendar-date bucket of entries. Groups keep the order in
// which their dates were first encountered; entries keep their input order.
type DayGroup struct {
	Date    string
	Entries []models.MoodEntry
}

const dayFormat = "2006-01-02"

// GroupByDay partitions entries by their local calendar date. Every entry
// lands in exactly one bucket.
func GroupByDay(entries []models.MoodEntry) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int)

	for _, e := range entries {
		day := e.Timestamp.Local().Format(dayFormat)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Date: day})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// CountByMood tallies entries per mood. The result always contains every
// mood value, zeros included.
func CountByMood(entries []models.MoodEntry) map[string]int64 {
	counts := make(map[string]int64, len(All))
	for _, m := range All {
		counts[m] = 0
	}
	for _, e := range entries {
		counts[e.Mood]++
	}
	return counts
}

// MostCommon returns the mood with the strictly largest count. A nil, empty
// or all-zero map yields no result. Ties resolve to the mood encountered
// first in the fixed All order.
func MostCommon(counts map[string]int64) (string, bool) {
	var best string
	var max int64
	for _, m := range All {
		if counts[m] > max {
			best = m
			max = counts[m]
		}
	}
	return best, max > 0
}

// FilterToday keeps the entries whose local calendar date matches now's.
func FilterToday(entries []models.MoodEntry, now time.Time) []models.MoodEntry {
	today := now.Local().Format(dayFormat)
	var out []models.MoodEntry
	for _, e := range entries {
		if e.Timestamp.Local().Format(dayFormat) == today {
			out = append(out, e)
		}
	}
	return out
}

// Timeline flattens entries into chart points sorted by timestamp ascending.
func Timeline(entries []models.MoodEntry) []models.TimelinePoint {
	points := make([]models.TimelinePoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, models.TimelinePoint{
			Date:      e.Timestamp.Local().Format(dayFormat),
			Mood:      e.Mood,
			Timestamp: e.Timestamp,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}
