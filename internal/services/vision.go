package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"concept-booster/internal/logger"
)

const describePrompt = "Describe this image for a school tutor in 2-4 sentences. " +
	"Transcribe any question, equation, diagram labels or text it contains exactly."

// VisionService turns an uploaded image into a text description the tutor prompt can carry.
type VisionService struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

func NewVisionService(apiKey, baseURL, model string, log *logger.Logger) *VisionService {
	if baseURL == "" {
		baseURL = "https://open.bigmodel.cn/api/paas/v4/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if model == "" {
		model = "glm-4.5v"
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &VisionService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		log:        log,
	}
}

// Enabled reports whether a vision key is configured.
func (s *VisionService) Enabled() bool {
	return s != nil && s.apiKey != ""
}

type visionContent struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

type visionMessage struct {
	Role    string          `json:"role"`
	Content []visionContent `json:"content"`
}

type visionRequest struct {
	Model       string          `json:"model"`
	Messages    []visionMessage `json:"messages"`
	Stream      bool            `json:"stream"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Describe sends one image (URL or base64 data URI) and returns the model's description.
// It makes a single attempt.
func (s *VisionService) Describe(ctx context.Context, image string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("vision: %w", ErrAIUnavailable)
	}
	image = strings.TrimSpace(image)
	if image == "" {
		return "", fmt.Errorf("%w: empty image", ErrInvalidInput)
	}

	body, err := json.Marshal(visionRequest{
		Model: s.model,
		Messages: []visionMessage{{
			Role: "user",
			Content: []visionContent{
				{Type: "image_url", ImageURL: &visionImageURL{URL: image}},
				{Type: "text", Text: describePrompt},
			},
		}},
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("marshal vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create vision request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	s.log.Debug("vision request", "model", s.model, "payload_kb", len(body)/1024)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute vision request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read vision response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision api error: status=%d, body=%s", resp.StatusCode, sanitizeForPrompt(string(raw), 300))
	}

	var parsed visionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal vision response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("vision api returned no content")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
