// Package analysis implements the HTTP client for the video analysis worker.
// The worker exposes a task-based async protocol: a multipart submit that
// returns 202 with a task id, and a poll endpoint that reports "completed"
// with the extracted profile fields once the task finishes.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go-matching-backend/internal/domain"
)

// ErrWorkerUnavailable marks a transient remote failure. The orchestrator
// retries within its attempt budget; it is never surfaced to clients.
var ErrWorkerUnavailable = errors.New("analysis worker unavailable")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type submitResponse struct {
	TaskID string `json:"task_id"`
}

// Submit uploads the video to POST {base}/process-video and returns the
// worker's task id. Anything other than a well-formed 202 is treated as
// ErrWorkerUnavailable.
func (c *Client) Submit(ctx context.Context, filename string, video io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("video", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, video); err != nil {
		return "", fmt.Errorf("failed to read video: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-video", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWorkerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("%w: submit returned status %d", ErrWorkerUnavailable, resp.StatusCode)
	}

	var accepted submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil || accepted.TaskID == "" {
		return "", fmt.Errorf("%w: submit response missing task_id", ErrWorkerUnavailable)
	}
	return accepted.TaskID, nil
}

type taskResponse struct {
	Status string      `json:"status"`
	Result *taskResult `json:"result"`
}

type taskResult struct {
	Name         *string         `json:"name"`
	Age          *string         `json:"age"`
	Hobbies      json.RawMessage `json:"hobbies"`
	Gender       *string         `json:"gender"`
	Introduction *string         `json:"introduction"`
}

// Poll checks GET {base}/tasks/{id}. It returns (nil, nil) while the task
// is not yet completed; transport failures map to ErrWorkerUnavailable.
func (c *Client) Poll(ctx context.Context, taskID string) (*domain.AnalysisOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks/"+taskID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: poll returned status %d", ErrWorkerUnavailable, resp.StatusCode)
	}

	var task taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("%w: malformed poll response", ErrWorkerUnavailable)
	}

	if task.Status != "completed" || task.Result == nil {
		return nil, nil
	}

	return &domain.AnalysisOutcome{
		Name:         task.Result.Name,
		Age:          task.Result.Age,
		Hobbies:      normalizeHobbies(task.Result.Hobbies),
		Gender:       task.Result.Gender,
		Introduction: task.Result.Introduction,
	}, nil
}

// normalizeHobbies keeps the hobbies payload as JSON-array text. The worker
// sometimes wraps the array in a JSON string; unwrap that case so the stored
// text is parseable downstream.
func normalizeHobbies(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	return string(raw)
}
