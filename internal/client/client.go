// Package client is a typed client for the mood-tracker REST API. The pages
// and the CLI go through it; nothing outside the handlers touches storage.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moodtrack/internal/models"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// WithToken returns a copy of the client that authenticates as the writer.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do runs the request and decodes a JSON body into out (when non-nil).
// Non-2xx responses become errors carrying the server's error message.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s", payload.Error)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}

func (c *Client) ListMoods(ctx context.Context, startDate, endDate string) ([]models.MoodEntry, error) {
	path := "/api/moods"
	query := url.Values{}
	if startDate != "" {
		query.Set("start_date", startDate)
	}
	if endDate != "" {
		query.Set("end_date", endDate)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var entries []models.MoodEntry
	if err := c.do(req, &entries); err != nil {
		return nil, fmt.Errorf("listing moods: %w", err)
	}
	return entries, nil
}

func (c *Client) CreateMood(ctx context.Context, create models.MoodCreate) (*models.MoodEntry, error) {
	body, err := json.Marshal(create)
	if err != nil {
		return nil, fmt.Errorf("encoding mood: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/moods", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var entry models.MoodEntry
	if err := c.do(req, &entry); err != nil {
		return nil, fmt.Errorf("creating mood: %w", err)
	}
	return &entry, nil
}

func (c *Client) DeleteMood(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/moods/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("deleting mood: %w", err)
	}
	return nil
}

// Detect uploads an image for emotion detection.
func (c *Client) Detect(ctx context.Context, image []byte, filename string) (*models.Detection, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/moods/detect", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var detection models.Detection
	if err := c.do(req, &detection); err != nil {
		return nil, fmt.Errorf("detecting emotion: %w", err)
	}
	return &detection, nil
}

func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/moods/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats models.Stats
	if err := c.do(req, &stats); err != nil {
		return nil, fmt.Errorf("fetching stats: %w", err)
	}
	return &stats, nil
}

// Export downloads the export file for the given format and returns its
// contents together with the server-chosen filename.
func (c *Client) Export(ctx context.Context, format string) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/moods/export?format="+url.QueryEscape(format), nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("exporting moods: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("exporting moods: %w", apiError(resp))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("exporting moods: %w", err)
	}

	filename := "mood_export." + format
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if name := params["filename"]; name != "" {
			filename = name
		}
	}
	return data, filename, nil
}
