// Package detect talks to the external emotion-analysis service and maps
// its labels onto the five mood values. The model itself never runs here.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"moodtrack/internal/models"
)

// emotionMap translates analyzer emotion labels to mood values. Unknown
// labels fall back to neutral.
var emotionMap = map[string]string{
	"happy":    "happy",
	"sad":      "sad",
	"angry":    "angry",
	"fear":     "anxious",
	"surprise": "neutral",
	"disgust":  "angry",
	"neutral":  "neutral",
}

type analyzeResponse struct {
	DominantEmotion string             `json:"dominant_emotion"`
	Emotion         map[string]float64 `json:"emotion"`
}

type Client struct {
	url        string
	httpClient *http.Client
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an analyzer service is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Detect uploads the image to the analyzer and returns the mapped result.
func (c *Client) Detect(ctx context.Context, image []byte, filename string) (*models.Detection, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("no analyzer configured")
	}
	if filename == "" {
		filename = "frame.jpg"
	}

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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("analyze request create failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("analyzer http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var ar analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("analyze decode failed: %w", err)
	}
	if ar.DominantEmotion == "" {
		return nil, fmt.Errorf("analyzer returned no dominant emotion")
	}

	dominant := strings.ToLower(ar.DominantEmotion)
	mapped, ok := emotionMap[dominant]
	if !ok {
		mapped = "neutral"
	}

	return &models.Detection{
		Emotion:     mapped,
		Confidence:  ar.Emotion[ar.DominantEmotion],
		AllEmotions: ar.Emotion,
	}, nil
}
