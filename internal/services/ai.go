package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"concept-booster/internal/logger"
)

var (
	// ErrAIUnavailable is returned when no gateway key is configured.
	ErrAIUnavailable = errors.New("ai gateway api key is not configured")
	// ErrRateLimited maps a 429 from the gateway.
	ErrRateLimited = errors.New("ai gateway rate limited")
	// ErrQuotaExhausted maps a 402 from the gateway.
	ErrQuotaExhausted = errors.New("ai gateway credits exhausted")
	// ErrGateway covers every other gateway or transport failure.
	ErrGateway = errors.New("ai gateway error")
	// ErrMalformedResponse is returned when a reply cannot be decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed ai response")
	// ErrInvalidInput is returned for requests missing their question or topic.
	ErrInvalidInput = errors.New("invalid input")
)

// Gateway sends one prompt and returns the raw text of the first choice.
type Gateway interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// AIService talks to an OpenAI-compatible chat completions gateway.
type AIService struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

func NewAIService(apiKey, model, endpoint string, timeout time.Duration, log *logger.Logger) *AIService {
	if log == nil {
		log = logger.NewNop()
	}
	if apiKey == "" {
		return &AIService{model: model, log: log}
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	return &AIService{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		log:     log,
	}
}

func (s *AIService) disabled() bool {
	return s.client == nil || s.model == ""
}

// Complete makes exactly one chat completion call. Failures are classified
// into ErrRateLimited, ErrQuotaExhausted or ErrGateway.
func (s *AIService) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if s.disabled() {
		return "", ErrAIUnavailable
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
	})
	if err != nil {
		classified := classifyGatewayError(err)
		s.log.Warn("gateway call failed", "model", s.model, "elapsed", time.Since(started), "error", err)
		return "", classified
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrGateway)
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrGateway)
	}
	s.log.Debug("gateway call succeeded", "model", s.model, "elapsed", time.Since(started), "chars", len(content))
	return content, nil
}

func classifyGatewayError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %w", ErrQuotaExhausted, err)
	default:
		return fmt.Errorf("%w: %w", ErrGateway, err)
	}
}
