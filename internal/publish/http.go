package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// HTTPPublisher uploads each frame as a multipart form to <baseURL>/upload_image.
type HTTPPublisher struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewHTTPPublisher(baseURL, token string, timeout time.Duration) *HTTPPublisher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPPublisher{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPPublisher) Publish(ctx context.Context, f Frame) error {
	_, err := c.UploadFrame(ctx, f)
	return err
}

// UploadFrame sends one frame and returns the id assigned by the remote end.
func (c *HTTPPublisher) UploadFrame(ctx context.Context, f Frame) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("publish base URL is empty")
	}
	if strings.TrimSpace(f.Path) == "" {
		return "", fmt.Errorf("file path is required")
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return "", fmt.Errorf("open frame: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(f.Path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy frame: %w", err)
	}
	_ = writer.WriteField("frame_index", strconv.Itoa(f.Index))
	_ = writer.WriteField("timestamp", strconv.FormatFloat(f.Seconds(), 'f', -1, 64))
	if f.JobID != "" {
		_ = writer.WriteField("job_id", f.JobID)
	}
	if f.Source != "" {
		_ = writer.WriteField("video_path", f.Source)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload_image", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("publish failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode publish response: %w", err)
	}
	if payload.ID == "" {
		return "", fmt.Errorf("publish endpoint returned empty id")
	}
	return payload.ID, nil
}
