package mood

import (
	"testing"
	"time"

	"moodtrack/internal/models"
)

func entryAt(mood string, t time.Time) models.MoodEntry {
	return models.MoodEntry{ID: mood + t.Format(time.RFC3339Nano), Mood: mood, Timestamp: t}
}

func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 22, 15, 0, 0, time.Local)
	day2 := time.Date(2025, 3, 9, 8, 0, 0, 0, time.Local)

	t.Run("every entry lands in exactly one bucket", func(t *testing.T) {
		entries := []models.MoodEntry{
			entryAt(Happy, day1),
			entryAt(Sad, day1.Add(-2*time.Hour)),
			entryAt(Neutral, day2),
		}

		groups := GroupByDay(entries)
		if len(groups) != 2 {
			t.Fatalf("got %d groups, want 2", len(groups))
		}

		seen := make(map[string]int)
		for _, g := range groups {
			for _, e := range g.Entries {
				seen[e.ID]++
				if got := e.Timestamp.Local().Format("2006-01-02"); got != g.Date {
					t.Errorf("entry %s in bucket %s, its date is %s", e.ID, g.Date, got)
				}
			}
		}
		for _, e := range entries {
			if seen[e.ID] != 1 {
				t.Errorf("entry %s appears %d times, want exactly 1", e.ID, seen[e.ID])
			}
		}
	})

	t.Run("groups keep encounter order", func(t *testing.T) {
		entries := []models.MoodEntry{
			entryAt(Happy, day1),
			entryAt(Neutral, day2),
			entryAt(Sad, day1),
		}

		groups := GroupByDay(entries)
		if len(groups) != 2 {
			t.Fatalf("got %d groups, want 2", len(groups))
		}
		if groups[0].Date != day1.Format("2006-01-02") {
			t.Errorf("first group is %s, want %s", groups[0].Date, day1.Format("2006-01-02"))
		}
		if len(groups[0].Entries) != 2 {
			t.Errorf("first group has %d entries, want 2", len(groups[0].Entries))
		}
	})

	t.Run("empty input yields no groups", func(t *testing.T) {
		if groups := GroupByDay(nil); len(groups) != 0 {
			t.Fatalf("got %d groups, want 0", len(groups))
		}
	})
}

func TestMostCommon(t *testing.T) {
	t.Run("nil map yields no result", func(t *testing.T) {
		if m, ok := MostCommon(nil); ok {
			t.Fatalf("got %q, want none", m)
		}
	})

	t.Run("all-zero counts yield no result", func(t *testing.T) {
		counts := map[string]int64{Happy: 0, Sad: 0, Angry: 0, Anxious: 0, Neutral: 0}
		if m, ok := MostCommon(counts); ok {
			t.Fatalf("got %q, want none", m)
		}
	})

	t.Run("strict maximum wins", func(t *testing.T) {
		counts := map[string]int64{Happy: 2, Sad: 5, Neutral: 1}
		m, ok := MostCommon(counts)
		if !ok || m != Sad {
			t.Fatalf("got %q ok=%v, want %q", m, ok, Sad)
		}
	})

	t.Run("ties resolve to the first mood in fixed order", func(t *testing.T) {
		counts := map[string]int64{Neutral: 3, Sad: 3}
		m, ok := MostCommon(counts)
		if !ok || m != Sad {
			t.Fatalf("got %q ok=%v, want %q (sad precedes neutral)", m, ok, Sad)
		}
	})
}

func TestCountByMood(t *testing.T) {
	counts := CountByMood([]models.MoodEntry{
		{Mood: Happy}, {Mood: Happy}, {Mood: Anxious},
	})

	if len(counts) != len(All) {
		t.Fatalf("got %d moods, want %d (zeros included)", len(counts), len(All))
	}
	if counts[Happy] != 2 || counts[Anxious] != 1 || counts[Sad] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestFilterToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	entries := []models.MoodEntry{
		entryAt(Happy, now.Add(-time.Hour)),
		entryAt(Sad, now.Add(-26*time.Hour)),
		entryAt(Neutral, time.Date(2025, 3, 10, 0, 0, 1, 0, time.Local)),
	}

	today := FilterToday(entries, now)
	if len(today) != 2 {
		t.Fatalf("got %d entries, want 2", len(today))
	}
	for _, e := range today {
		if e.Mood == Sad {
			t.Errorf("yesterday's entry included")
		}
	}
}

func TestTimeline(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []models.MoodEntry{
		entryAt(Happy, base.Add(2*time.Hour)),
		entryAt(Sad, base),
		entryAt(Neutral, base.Add(time.Hour)),
	}

	points := Timeline(entries)
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp.Before(points[i-1].Timestamp) {
			t.Fatalf("timeline not ascending at %d", i)
		}
	}
	if points[0].Mood != Sad {
		t.Errorf("earliest point is %q, want %q", points[0].Mood, Sad)
	}
}

func TestValid(t *testing.T) {
	for _, m := range All {
		if !Valid(m) {
			t.Errorf("Valid(%q) = false", m)
		}
	}
	for _, m := range []string{"", "ecstatic", "HAPPY"} {
		if Valid(m) {
			t.Errorf("Valid(%q) = true", m)
		}
	}
}
