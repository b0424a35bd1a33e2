// Package web renders the server-side pages: dashboard, add-mood form,
// history and stats. Pages talk to the REST API through the client and keep
// no state of their own; failures surface as transient flash notifications.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"moodtrack/internal/auth"
	"moodtrack/internal/client"
	"moodtrack/internal/models"
	"moodtrack/internal/mood"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookie = "mood_flash"

const maxUploadBytes = 10 << 20

type Web struct {
	api  *client.Client
	tmpl *template.Template
}

func New(api *client.Client) (*Web, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Web{api: api, tmpl: tmpl}, nil
}

// clientFor forwards the browser's session cookie to the API so mutations
// carry the writer role when auth is required.
func (wb *Web) clientFor(r *http.Request) *client.Client {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		return wb.api.WithToken(cookie.Value)
	}
	return wb.api
}

type countRow struct {
	Mood  string
	Count int64
}

type pageData struct {
	Title  string
	Active string
	Flash  string

	Moods []string

	// dashboard
	Latest     *models.MoodEntry
	TodayCount int
	Common     string
	Recent     []models.MoodEntry

	// history
	Groups []mood.DayGroup

	// stats
	Counts         []countRow
	TimelinePoints int
}

func (wb *Web) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := wb.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("rendering page failed", "page", name, "error", err)
	}
}

func setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	})
}

// takeFlash reads and clears the pending flash notification.
func takeFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return message
}

// Dashboard serves "/": today's latest mood, today's most common mood and
// the most recent entries.
func (wb *Web) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := pageData{Title: "Dashboard", Active: "dashboard", Flash: takeFlash(w, r)}

	entries, err := wb.clientFor(r).ListMoods(r.Context(), "", "")
	if err != nil {
		if data.Flash == "" {
			data.Flash = "Could not load mood entries: " + err.Error()
		}
		wb.render(w, "dashboard", data)
		return
	}

	today := mood.FilterToday(entries, time.Now())
	if len(today) > 0 {
		data.Latest = &today[0]
	}
	data.TodayCount = len(today)
	if common, ok := mood.MostCommon(mood.CountByMood(today)); ok {
		data.Common = common
	}

	data.Recent = entries
	if len(data.Recent) > 10 {
		data.Recent = data.Recent[:10]
	}

	wb.render(w, "dashboard", data)
}

// AddMood serves "/add". GET renders the form; POST records a mood either
// from the selection or from an uploaded webcam frame. An empty submission
// is rejected here without any API call.
func (wb *Web) AddMood(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Add mood", Active: "add", Moods: mood.All}

	if r.Method == http.MethodGet {
		data.Flash = takeFlash(w, r)
		wb.render(w, "add", data)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		data.Flash = "Invalid form submission"
		wb.render(w, "add", data)
		return
	}

	selected := r.FormValue("mood")
	note := r.FormValue("note")
	api := wb.clientFor(r)

	if image, filename, ok := formImage(r); ok {
		detection, err := api.Detect(r.Context(), image, filename)
		if err != nil {
			data.Flash = "Emotion detection failed: " + err.Error()
			wb.render(w, "add", data)
			return
		}
		if _, err := api.CreateMood(r.Context(), models.MoodCreate{
			Mood:            detection.Emotion,
			Note:            note,
			DetectionMethod: mood.MethodCamera,
		}); err != nil {
			data.Flash = "Could not save mood: " + err.Error()
			wb.render(w, "add", data)
			return
		}
		setFlash(w, fmt.Sprintf("Detected %s (%.0f%% confidence) and saved it.", detection.Emotion, detection.Confidence))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	// Rejected locally: no request leaves this handler for an empty selection.
	if selected == "" {
		data.Flash = "Select a mood first."
		wb.render(w, "add", data)
		return
	}
	if !mood.Valid(selected) {
		data.Flash = "Unknown mood value."
		wb.render(w, "add", data)
		return
	}

	if _, err := api.CreateMood(r.Context(), models.MoodCreate{
		Mood:            selected,
		Note:            note,
		DetectionMethod: mood.MethodManual,
	}); err != nil {
		data.Flash = "Could not save mood: " + err.Error()
		wb.render(w, "add", data)
		return
	}

	setFlash(w, "Mood saved.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// formImage extracts an optional uploaded frame from the add form.
func formImage(r *http.Request) ([]byte, string, bool) {
	file, header, err := r.FormFile("photo")
	if err != nil || header.Filename == "" {
		return nil, "", false
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil || len(image) == 0 {
		return nil, "", false
	}
	return image, header.Filename, true
}

// History serves "/history": all entries grouped by calendar date, with
// per-entry delete and export links.
func (wb *Web) History(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "History", Active: "history", Flash: takeFlash(w, r)}

	entries, err := wb.clientFor(r).ListMoods(r.Context(), "", "")
	if err != nil {
		if data.Flash == "" {
			data.Flash = "Could not load mood entries: " + err.Error()
		}
		wb.render(w, "history", data)
		return
	}

	data.Groups = mood.GroupByDay(entries)
	wb.render(w, "history", data)
}

// DeleteEntry handles the history page's delete form.
func (wb *Web) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.FormValue("id")
	if id == "" {
		setFlash(w, "Missing entry id.")
		http.Redirect(w, r, "/history", http.StatusSeeOther)
		return
	}

	if err := wb.clientFor(r).DeleteMood(r.Context(), id); err != nil {
		setFlash(w, "Could not delete entry: "+err.Error())
	} else {
		setFlash(w, "Entry deleted.")
	}
	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

// Stats serves "/stats": aggregate counts and the overall most common mood.
func (wb *Web) Stats(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Stats", Active: "stats", Flash: takeFlash(w, r)}

	stats, err := wb.clientFor(r).Stats(r.Context())
	if err != nil {
		if data.Flash == "" {
			data.Flash = "Could not load stats: " + err.Error()
		}
		wb.render(w, "stats", data)
		return
	}

	for _, m := range mood.All {
		data.Counts = append(data.Counts, countRow{Mood: m, Count: stats.MoodCounts[m]})
	}
	if common, ok := mood.MostCommon(stats.MoodCounts); ok {
		data.Common = common
	}
	data.TimelinePoints = len(stats.Timeline)

	wb.render(w, "stats", data)
}
