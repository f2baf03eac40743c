// Package client talks to the tutoring server and drives the per-feature adapters used by the terminal client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"concept-booster/internal/api"
	"concept-booster/internal/models"
	"concept-booster/internal/services"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Is lets callers classify server failures with the services sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case services.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case services.ErrQuotaExhausted:
		return e.StatusCode == http.StatusPaymentRequired
	case services.ErrInvalidInput:
		return e.StatusCode == http.StatusBadRequest
	case services.ErrMalformedResponse:
		return e.StatusCode == http.StatusInternalServerError && e.Message == api.MessageMalformed
	case services.ErrAIUnavailable:
		return e.StatusCode == http.StatusInternalServerError && e.Message == api.MessageNotConfigured
	case services.ErrGateway:
		return e.StatusCode >= http.StatusInternalServerError &&
			e.Message != api.MessageMalformed && e.Message != api.MessageNotConfigured
	default:
		return false
	}
}

type DoubtRequest struct {
	Question         string `json:"question"`
	Language         string `json:"language"`
	ImageDescription string `json:"imageDescription,omitempty"`
	Image            string `json:"image,omitempty"`
}

type TopicRequest struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
	Count    int    `json:"count,omitempty"`
}

// Client calls the tutoring routes of a concept-booster server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) AskDoubt(ctx context.Context, req DoubtRequest) (models.TutorResponse, error) {
	var out models.TutorResponse
	err := c.post(ctx, "/api/ask-doubt", req, &out)
	return out, err
}

func (c *Client) LearnTopic(ctx context.Context, req TopicRequest) (models.TopicLesson, error) {
	var out models.TopicLesson
	err := c.post(ctx, "/api/learn-topic", req, &out)
	return out, err
}

func (c *Client) GenerateQuestions(ctx context.Context, req TopicRequest) (models.QuizSet, error) {
	var out struct {
		Questions models.QuizSet `json:"questions"`
	}
	if err := c.post(ctx, "/api/generate-questions", req, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", services.ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", services.ErrGateway, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", services.ErrMalformedResponse, err)
	}
	return nil
}
