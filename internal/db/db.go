package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"moodtrack/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ListLimit caps how many entries a single list query returns.
const ListLimit = 1000

type DB struct {
	conn *sql.DB
}

func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, nil
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS mood_entries (
			id TEXT PRIMARY KEY,
			mood TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			detection_method TEXT NOT NULL DEFAULT 'manual',
			timestamp TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mood_entries_timestamp ON mood_entries(timestamp)`,
		`CREATE TABLE IF NOT EXISTS auth_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			token TEXT NOT NULL UNIQUE,
			used BOOLEAN DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := d.conn.Exec(q); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// Timestamps are stored as RFC 3339 UTC text so range queries compare
// lexically, the same way the entries sort.
const timeLayout = time.RFC3339Nano

// Mood entries

func (d *DB) CreateEntry(e *models.MoodEntry) error {
	_, err := d.conn.Exec(
		`INSERT INTO mood_entries (id, mood, note, detection_method, timestamp) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Mood, e.Note, e.DetectionMethod, e.Timestamp.UTC().Format(timeLayout),
	)
	return err
}

// GetEntries returns entries newest-first, optionally bounded by an
// inclusive timestamp range, capped at limit (ListLimit when limit <= 0).
func (d *DB) GetEntries(start, end *time.Time, limit int) ([]models.MoodEntry, error) {
	if limit <= 0 || limit > ListLimit {
		limit = ListLimit
	}

	q := `SELECT id, mood, note, detection_method, timestamp FROM mood_entries`
	var conds []string
	var args []any
	if start != nil {
		conds = append(conds, `timestamp >= ?`)
		args = append(args, start.UTC().Format(timeLayout))
	}
	if end != nil {
		conds = append(conds, `timestamp <= ?`)
		args = append(args, end.UTC().Format(timeLayout))
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	q += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.MoodEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (d *DB) GetEntry(id string) (*models.MoodEntry, error) {
	row := d.conn.QueryRow(`SELECT id, mood, note, detection_method, timestamp FROM mood_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEntry removes an entry and reports whether a row was deleted.
func (d *DB) DeleteEntry(id string) (bool, error) {
	result, err := d.conn.Exec(`DELETE FROM mood_entries WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByMood returns entry counts grouped by mood. Moods with no entries
// are absent from the map.
func (d *DB) CountByMood() (map[string]int64, error) {
	rows, err := d.conn.Query(`SELECT mood, COUNT(*) FROM mood_entries GROUP BY mood`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var m string
		var n int64
		if err := rows.Scan(&m, &n); err != nil {
			return nil, err
		}
		counts[m] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (models.MoodEntry, error) {
	var e models.MoodEntry
	var ts string
	if err := s.Scan(&e.ID, &e.Mood, &e.Note, &e.DetectionMethod, &ts); err != nil {
		return e, err
	}
	t, err := time.Parse(timeLayout, ts)
	if err != nil {
		return e, fmt.Errorf("failed to parse timestamp %q: %w", ts, err)
	}
	e.Timestamp = t
	return e, nil
}

// Auth tokens

func (d *DB) CreateAuthToken(token string, expiresAt time.Time) error {
	_, err := d.conn.Exec(`INSERT INTO auth_tokens (token, expires_at) VALUES (?, ?)`, token, expiresAt)
	return err
}

func (d *DB) GetAuthToken(token string) (*models.AuthToken, error) {
	var t models.AuthToken
	err := d.conn.QueryRow(`SELECT id, token, used, created_at, expires_at FROM auth_tokens WHERE token = ?`, token).
		Scan(&t.ID, &t.Token, &t.Used, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (d *DB) MarkTokenUsed(token string) error {
	_, err := d.conn.Exec(`UPDATE auth_tokens SET used = TRUE WHERE token = ?`, token)
	return err
}
