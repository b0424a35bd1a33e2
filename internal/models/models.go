package models

import "time"

type MoodEntry struct {
	ID              string    `json:"id"`
	Mood            string    `json:"mood"`
	Note            string    `json:"note,omitempty"`
	DetectionMethod string    `json:"detection_method"`
	Timestamp       time.Time `json:"timestamp"`
}

// MoodCreate is the POST /api/moods request body.
type MoodCreate struct {
	Mood            string `json:"mood"`
	Note            string `json:"note"`
	DetectionMethod string `json:"detection_method"`
}

// Detection is the result of emotion detection on an uploaded image.
// Emotion is already mapped onto one of the five mood values; AllEmotions
// carries the analyzer's raw per-label scores.
type Detection struct {
	Emotion     string             `json:"emotion"`
	Confidence  float64            `json:"confidence"`
	AllEmotions map[string]float64 `json:"all_emotions"`
}

type TimelinePoint struct {
	Date      string    `json:"date"`
	Mood      string    `json:"mood"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is the GET /api/moods/stats response. MoodCounts always contains
// every mood value, zeros included.
type Stats struct {
	MoodCounts map[string]int64 `json:"mood_counts"`
	Timeline   []TimelinePoint  `json:"timeline"`
}

type AuthToken struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
