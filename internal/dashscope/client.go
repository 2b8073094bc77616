// Package dashscope talks to the DashScope text-generation and
// image-synthesis REST APIs.
package dashscope

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	DefaultBaseURL   = "https://dashscope.aliyuncs.com"
	DefaultTextModel = "qwen-turbo"

	textPath = "/api/v1/services/aigc/text-generation/generation"
)

type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	textModel  string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := strings.TrimSpace(opts.TextModel)
	if model == "" {
		model = DefaultTextModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		textModel:  model,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Generate sends the combined system and user prompt and returns output.text.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	req := textRequest{
		Model: c.textModel,
		Input: textInput{Prompt: system + "\n" + user},
		Parameters: textParameters{
			ResultFormat: "text",
		},
	}

	var resp textResponse
	if err := c.do(ctx, http.MethodPost, textPath, req, nil, &resp); err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Output.Text)
	if text == "" {
		return "", errors.New("dashscope returned empty output text")
	}

	c.logger.Debug("dashscope text generated", "model", c.textModel, "request_id", resp.RequestID, "chars", len(text))
	return text, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, headers map[string]string, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("content-type", "application/json")
	}
	httpReq.Header.Set("authorization", "Bearer "+c.apiKey)
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return &APIError{Status: httpResp.StatusCode, Body: strings.TrimSpace(string(rawBody))}
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashscope API %d: %s", e.Status, e.Body)
}

type textRequest struct {
	Model      string         `json:"model"`
	Input      textInput      `json:"input"`
	Parameters textParameters `json:"parameters"`
}

type textInput struct {
	Prompt string `json:"prompt"`
}

type textParameters struct {
	ResultFormat string `json:"result_format"`
}

type textResponse struct {
	RequestID string `json:"request_id"`
	Output    struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"output"`
}
