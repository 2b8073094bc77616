package dashscope

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	imagePath = "/api/v1/services/aigc/text2image/image-synthesis"
	taskPath  = "/api/v1/tasks/"

	DefaultImageModel = "flux-schnell"
	DefaultImageSize  = "576*1024"
	DefaultSteps      = 4
	DefaultGuidance   = 7.5

	DefaultNegativePrompt = "deformed, distorted, unrealistic proportions, extra limbs, missing body parts, blurry, low quality"
)

const (
	TaskPending   = "PENDING"
	TaskRunning   = "RUNNING"
	TaskSucceeded = "SUCCEEDED"
	TaskFailed    = "FAILED"
	TaskCanceled  = "CANCELED"
	TaskUnknown   = "UNKNOWN"
)

type ImageRequest struct {
	Prompt         string
	NegativePrompt string
	Model          string
	Size           string
	Steps          int
	Guidance       float64
}

type Task struct {
	ID      string
	Status  string
	URLs    []string
	Message string
}

// SubmitImage starts an asynchronous synthesis job and returns its task id.
func (c *Client) SubmitImage(ctx context.Context, req ImageRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}

	payload := imageRequest{
		Model: firstNonEmpty(req.Model, DefaultImageModel),
		Input: imageInput{
			Prompt:         prompt,
			NegativePrompt: strings.TrimSpace(req.NegativePrompt),
		},
		Parameters: imageParameters{
			Size:     firstNonEmpty(req.Size, DefaultImageSize),
			Steps:    req.Steps,
			Guidance: req.Guidance,
		},
	}
	if payload.Parameters.Steps <= 0 {
		payload.Parameters.Steps = DefaultSteps
	}
	if payload.Parameters.Guidance <= 0 {
		payload.Parameters.Guidance = DefaultGuidance
	}

	var resp taskResponse
	headers := map[string]string{"X-DashScope-Async": "enable"}
	if err := c.do(ctx, http.MethodPost, imagePath, payload, headers, &resp); err != nil {
		return "", err
	}
	if resp.Output.TaskID == "" {
		return "", errors.New("dashscope returned no task id")
	}

	c.logger.Debug("image task submitted", "task_id", resp.Output.TaskID, "model", payload.Model)
	return resp.Output.TaskID, nil
}

func (c *Client) GetTask(ctx context.Context, taskID string) (Task, error) {
	var resp taskResponse
	if err := c.do(ctx, http.MethodGet, taskPath+taskID, nil, nil, &resp); err != nil {
		return Task{}, err
	}

	task := Task{
		ID:      taskID,
		Status:  strings.ToUpper(resp.Output.TaskStatus),
		Message: resp.Output.Message,
	}
	for _, r := range resp.Output.Results {
		if u := strings.TrimSpace(r.URL); u != "" {
			task.URLs = append(task.URLs, u)
		}
	}
	return task, nil
}

// WaitTask polls until the task finishes or ctx is done.
func (c *Client) WaitTask(ctx context.Context, taskID string, interval time.Duration) (Task, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		task, err := c.GetTask(ctx, taskID)
		if err != nil {
			return Task{}, fmt.Errorf("poll task %s: %w", taskID, err)
		}

		switch task.Status {
		case TaskSucceeded:
			if len(task.URLs) == 0 {
				return task, fmt.Errorf("task %s succeeded without images", taskID)
			}
			return task, nil
		case TaskFailed, TaskCanceled, TaskUnknown:
			return task, fmt.Errorf("task %s %s: %s", taskID, strings.ToLower(task.Status), task.Message)
		}

		c.logger.Debug("image task pending", "task_id", taskID, "status", task.Status)

		select {
		case <-ctx.Done():
			return task, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GenerateImage submits one prompt and waits for the resulting URLs.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest, interval time.Duration) ([]string, error) {
	taskID, err := c.SubmitImage(ctx, req)
	if err != nil {
		return nil, err
	}
	task, err := c.WaitTask(ctx, taskID, interval)
	if err != nil {
		return nil, err
	}
	return task.URLs, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type imageRequest struct {
	Model      string          `json:"model"`
	Input      imageInput      `json:"input"`
	Parameters imageParameters `json:"parameters"`
}

type imageInput struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

type imageParameters struct {
	Size     string  `json:"size"`
	Steps    int     `json:"steps"`
	Guidance float64 `json:"guidance"`
}

type taskResponse struct {
	RequestID string `json:"request_id"`
	Output    struct {
		TaskID     string `json:"task_id"`
		TaskStatus string `json:"task_status"`
		Message    string `json:"message"`
		Results    []struct {
			URL string `json:"url"`
		} `json:"results"`
	} `json:"output"`
}
