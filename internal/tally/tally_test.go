package tally

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"moodtrack/internal/db"
	"moodtrack/internal/models"
	"moodtrack/internal/mood"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestNew(t *testing.T) {
	t.Run("empty database yields all zeros", func(t *testing.T) {
		tl, err := New(newTestDB(t))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		counts := tl.Snapshot()
		if len(counts) != len(mood.All) {
			t.Fatalf("got %d moods, want %d", len(counts), len(mood.All))
		}
		for m, n := range counts {
			if n != 0 {
				t.Errorf("counts[%s] = %d, want 0", m, n)
			}
		}
	})

	t.Run("seeds from stored entries", func(t *testing.T) {
		database := newTestDB(t)
		for _, m := range []string{mood.Happy, mood.Happy, mood.Sad} {
			e := models.MoodEntry{ID: uuid.New().String(), Mood: m, DetectionMethod: mood.MethodManual, Timestamp: time.Now().UTC()}
			if err := database.CreateEntry(&e); err != nil {
				t.Fatalf("CreateEntry() error = %v", err)
			}
		}

		tl, err := New(database)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		counts := tl.Snapshot()
		if counts[mood.Happy] != 2 || counts[mood.Sad] != 1 || counts[mood.Neutral] != 0 {
			t.Fatalf("unexpected counts: %v", counts)
		}
	})
}

func TestAddRemove(t *testing.T) {
	tl, err := New(newTestDB(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tl.Add(mood.Angry)
	tl.Add(mood.Angry)
	tl.Remove(mood.Angry)

	if got := tl.Snapshot()[mood.Angry]; got != 1 {
		t.Fatalf("counts[angry] = %d, want 1", got)
	}

	// Removing below zero must not underflow.
	tl.Remove(mood.Angry)
	tl.Remove(mood.Angry)
	if got := tl.Snapshot()[mood.Angry]; got != 0 {
		t.Fatalf("counts[angry] = %d, want 0", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tl, err := New(newTestDB(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	snap := tl.Snapshot()
	snap[mood.Happy] = 99

	if got := tl.Snapshot()[mood.Happy]; got != 0 {
		t.Fatalf("mutating a snapshot leaked into the tally: %d", got)
	}
}
