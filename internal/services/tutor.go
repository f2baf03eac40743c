package services

import (
	"context"
	"fmt"
	"strings"

	"concept-booster/internal/logger"
	"concept-booster/internal/models"
)

// Shape binds a feature's prompt builder to its decoder and optional fallback.
// A nil Fallback means decode failures reach the caller as ErrMalformedResponse.
type Shape[T any] struct {
	Feature  Feature
	Build    func(models.RequestParams) Prompt
	Decode   func(raw string) (T, error)
	Fallback func(raw string) T
}

var (
	doubtShape = Shape[models.TutorResponse]{
		Feature:  FeatureDoubt,
		Build:    buildDoubtPrompt,
		Decode:   decodeTutorResponse,
		Fallback: fallbackTutorResponse,
	}
	lessonShape = Shape[models.TopicLesson]{
		Feature:  FeatureLesson,
		Build:    buildLessonPrompt,
		Decode:   decodeTopicLesson,
		Fallback: fallbackTopicLesson,
	}
	quizShape = Shape[models.QuizSet]{
		Feature: FeatureQuiz,
		Build:   buildQuizPrompt,
		Decode:  decodeQuizSet,
	}
)

// run builds the prompt, makes one gateway call and decodes the reply.
func run[T any](ctx context.Context, gateway Gateway, log *logger.Logger, shape Shape[T], params models.RequestParams) (T, error) {
	var zero T
	if log == nil {
		log = logger.NewNop()
	}
	raw, err := gateway.Complete(ctx, shape.Build(params))
	if err != nil {
		return zero, err
	}

	out, err := shape.Decode(raw)
	if err == nil {
		return out, nil
	}
	if shape.Fallback == nil {
		log.Warn("reply did not match shape", "feature", shape.Feature.String(), "error", err)
		return zero, err
	}
	log.Info("reply did not match shape, using fallback", "feature", shape.Feature.String(), "error", err)
	return shape.Fallback(raw), nil
}

// TutorService serves the three tutoring features over a Gateway.
type TutorService struct {
	gateway Gateway
	log     *logger.Logger
}

func NewTutorService(gateway Gateway, log *logger.Logger) *TutorService {
	if log == nil {
		log = logger.NewNop()
	}
	return &TutorService{gateway: gateway, log: log}
}

// AskDoubt answers a question. A question may be empty when an image description is present.
func (s *TutorService) AskDoubt(ctx context.Context, params models.RequestParams) (models.TutorResponse, error) {
	if strings.TrimSpace(params.Subject) == "" && strings.TrimSpace(params.ImageDescription) == "" {
		return models.TutorResponse{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	return run(ctx, s.gateway, s.log, doubtShape, params)
}

// TeachTopic produces a structured lesson for a topic.
func (s *TutorService) TeachTopic(ctx context.Context, params models.RequestParams) (models.TopicLesson, error) {
	if strings.TrimSpace(params.Subject) == "" {
		return models.TopicLesson{}, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	return run(ctx, s.gateway, s.log, lessonShape, params)
}

// GenerateQuiz produces multiple choice questions for a topic. There is no fallback.
func (s *TutorService) GenerateQuiz(ctx context.Context, params models.RequestParams) (models.QuizSet, error) {
	if strings.TrimSpace(params.Subject) == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	params.Count = QuizCount(params.Count)
	return run(ctx, s.gateway, s.log, quizShape, params)
}
