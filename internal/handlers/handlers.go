package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"moodtrack/internal/auth"
	"moodtrack/internal/cache"
	"moodtrack/internal/db"
	"moodtrack/internal/detect"
	"moodtrack/internal/models"
	"moodtrack/internal/mood"
	"moodtrack/internal/tally"
)

// maxUploadBytes caps the size of an uploaded detection image.
const maxUploadBytes = 10 << 20

type Handlers struct {
	db          *db.DB
	tally       *tally.Tally
	cache       *cache.Cache
	detector    *detect.Client
	auth        *auth.Auth
	requireAuth bool
}

func New(database *db.DB, t *tally.Tally, c *cache.Cache, d *detect.Client, a *auth.Auth, requireAuth bool) *Handlers {
	return &Handlers{
		db:          database,
		tally:       t,
		cache:       c,
		detector:    d,
		auth:        a,
		requireAuth: requireAuth,
	}
}

func (h *Handlers) respond(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *Handlers) error(w http.ResponseWriter, message string, status int) {
	h.respond(w, map[string]string{"error": message}, status)
}

// canWrite reports whether the request may perform mutations.
func (h *Handlers) canWrite(r *http.Request) bool {
	return !h.requireAuth || auth.IsWriter(r)
}

// Root answers GET /api/ with the service banner.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/" && r.URL.Path != "/api" {
		h.error(w, "Not found", http.StatusNotFound)
		return
	}
	h.respond(w, map[string]string{"message": "Mood Tracker API"}, http.StatusOK)
}

// Moods

func (h *Handlers) GetMoods(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r.URL.Query().Get("start_date"))
	if err != nil {
		h.error(w, "Invalid start_date", http.StatusBadRequest)
		return
	}
	end, err := parseDateParam(r.URL.Query().Get("end_date"))
	if err != nil {
		h.error(w, "Invalid end_date", http.StatusBadRequest)
		return
	}

	entries, err := h.db.GetEntries(start, end, 0)
	if err != nil {
		slog.Error("listing mood entries failed", "error", err)
		h.error(w, "Failed to get mood entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.MoodEntry{}
	}

	h.respond(w, entries, http.StatusOK)
}

func (h *Handlers) CreateMood(w http.ResponseWriter, r *http.Request) {
	if !h.canWrite(r) {
		h.error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.MoodCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.DetectionMethod == "" {
		req.DetectionMethod = mood.MethodManual
	}
	if !mood.Valid(req.Mood) {
		h.error(w, "Invalid mood", http.StatusBadRequest)
		return
	}
	if !mood.ValidMethod(req.DetectionMethod) {
		h.error(w, "Invalid detection method", http.StatusBadRequest)
		return
	}

	entry := &models.MoodEntry{
		ID:              uuid.New().String(),
		Mood:            req.Mood,
		Note:            req.Note,
		DetectionMethod: req.DetectionMethod,
		Timestamp:       time.Now().UTC(),
	}

	if err := h.db.CreateEntry(entry); err != nil {
		slog.Error("creating mood entry failed", "error", err)
		h.error(w, "Failed to create mood entry", http.StatusInternalServerError)
		return
	}
	h.tally.Add(entry.Mood)

	h.respond(w, entry, http.StatusCreated)
}

func (h *Handlers) DeleteMood(w http.ResponseWriter, r *http.Request) {
	if !h.canWrite(r) {
		h.error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/moods/")
	if id == "" || strings.Contains(id, "/") {
		h.error(w, "Invalid mood entry ID", http.StatusBadRequest)
		return
	}

	entry, err := h.db.GetEntry(id)
	if errors.Is(err, db.ErrNotFound) {
		h.error(w, "Mood entry not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("loading mood entry failed", "error", err, "id", id)
		h.error(w, "Failed to delete mood entry", http.StatusInternalServerError)
		return
	}

	deleted, err := h.db.DeleteEntry(id)
	if err != nil {
		slog.Error("deleting mood entry failed", "error", err, "id", id)
		h.error(w, "Failed to delete mood entry", http.StatusInternalServerError)
		return
	}
	if !deleted {
		h.error(w, "Mood entry not found", http.StatusNotFound)
		return
	}
	h.tally.Remove(entry.Mood)

	h.respond(w, map[string]string{"message": "Mood entry deleted successfully"}, http.StatusOK)
}

// Detection

func (h *Handlers) DetectEmotion(w http.ResponseWriter, r *http.Request) {
	if !h.canWrite(r) {
		h.error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !h.detector.Enabled() {
		h.error(w, "Emotion detection is not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.error(w, "Image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.error(w, "Failed to read image", http.StatusBadRequest)
		return
	}
	if !strings.HasPrefix(http.DetectContentType(image), "image/") {
		h.error(w, "Invalid image file", http.StatusBadRequest)
		return
	}

	key := cache.Key(image)
	if detection, ok := h.cache.Get(key); ok {
		h.respond(w, detection, http.StatusOK)
		return
	}

	detection, err := h.detector.Detect(r.Context(), image, header.Filename)
	if err != nil {
		slog.Error("emotion detection failed", "error", err)
		h.error(w, "Error detecting emotion", http.StatusBadGateway)
		return
	}

	h.cache.Set(key, detection)
	h.respond(w, detection, http.StatusOK)
}

// Stats

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.GetEntries(nil, nil, 0)
	if err != nil {
		slog.Error("loading entries for stats failed", "error", err)
		h.error(w, "Failed to get mood stats", http.StatusInternalServerError)
		return
	}

	stats := models.Stats{
		MoodCounts: h.tally.Snapshot(),
		Timeline:   mood.Timeline(entries),
	}
	h.respond(w, stats, http.StatusOK)
}

// Export

func (h *Handlers) ExportMoods(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		h.error(w, "Invalid export format", http.StatusBadRequest)
		return
	}

	entries, err := h.db.GetEntries(nil, nil, 0)
	if err != nil {
		slog.Error("loading entries for export failed", "error", err)
		h.error(w, "Failed to export mood entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.MoodEntry{}
	}

	filename := fmt.Sprintf("mood_export_%s.%s", time.Now().Format("20060102"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			h.error(w, "Failed to export mood entries", http.StatusInternalServerError)
			return
		}
		w.Write(data)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	writer := csv.NewWriter(w)
	writer.Write([]string{"id", "mood", "note", "detection_method", "timestamp"})
	for _, e := range entries {
		writer.Write([]string{
			e.ID,
			e.Mood,
			e.Note,
			e.DetectionMethod,
			e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	writer.Flush()
}

// Auth

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.error(w, "Token is required", http.StatusBadRequest)
		return
	}

	jwt, err := h.auth.ValidateLoginToken(token)
	if err != nil {
		h.error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    jwt,
		Path:     "/",
		MaxAge:   90 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	h.respond(w, map[string]bool{"authenticated": auth.IsWriter(r)}, http.StatusOK)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	h.respond(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// parseDateParam accepts RFC 3339 timestamps or plain dates (taken as UTC
// midnight). Empty input means no bound.
func parseDateParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}
