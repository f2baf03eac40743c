package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"concept-booster/internal/kv"
	"concept-booster/internal/models"
)

// ProgressService keeps each learner's StudentProgress in a kv.Store under progress_<learner>.
type ProgressService struct {
	store kv.Store
	mu    sync.Mutex
}

func NewProgressService(store kv.Store) *ProgressService {
	return &ProgressService{store: store}
}

func progressKey(learner string) string {
	return "progress_" + learner
}

// Get returns the stored record, or an empty one for an unknown learner.
func (s *ProgressService) Get(ctx context.Context, learner string) (models.StudentProgress, error) {
	learner = strings.TrimSpace(learner)
	if learner == "" {
		return models.StudentProgress{}, fmt.Errorf("%w: learner is required", ErrInvalidInput)
	}
	return s.load(ctx, learner)
}

func (s *ProgressService) load(ctx context.Context, learner string) (models.StudentProgress, error) {
	raw, err := s.store.Get(ctx, progressKey(learner))
	if errors.Is(err, kv.ErrNotFound) {
		return models.DefaultProgress(), nil
	}
	if err != nil {
		return models.StudentProgress{}, fmt.Errorf("load progress: %w", err)
	}

	progress := models.DefaultProgress()
	if err := json.Unmarshal(raw, &progress); err != nil {
		return models.StudentProgress{}, fmt.Errorf("decode progress: %w", err)
	}
	if progress.TopicsSearched == nil {
		progress.TopicsSearched = []string{}
	}
	if progress.WeakTopics == nil {
		progress.WeakTopics = []string{}
	}
	return progress, nil
}

func (s *ProgressService) update(ctx context.Context, learner string, mutate func(*models.StudentProgress)) (models.StudentProgress, error) {
	learner = strings.TrimSpace(learner)
	if learner == "" {
		return models.StudentProgress{}, fmt.Errorf("%w: learner is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	progress, err := s.load(ctx, learner)
	if err != nil {
		return models.StudentProgress{}, err
	}
	mutate(&progress)
	progress.MasteryLevel = progress.Mastery()

	raw, err := json.Marshal(progress)
	if err != nil {
		return models.StudentProgress{}, fmt.Errorf("encode progress: %w", err)
	}
	if err := s.store.Set(ctx, progressKey(learner), raw); err != nil {
		return models.StudentProgress{}, fmt.Errorf("save progress: %w", err)
	}
	return progress, nil
}

// RecordQuestion counts an answered doubt and remembers the question as a topic.
func (s *ProgressService) RecordQuestion(ctx context.Context, learner, question string) (models.StudentProgress, error) {
	return s.update(ctx, learner, func(p *models.StudentProgress) {
		p.QuestionsAsked++
		p.TopicsSearched = appendUnique(p.TopicsSearched, question)
	})
}

// RecordTopic remembers a topic the learner studied.
func (s *ProgressService) RecordTopic(ctx context.Context, learner, topic string) (models.StudentProgress, error) {
	return s.update(ctx, learner, func(p *models.StudentProgress) {
		p.TopicsSearched = appendUnique(p.TopicsSearched, topic)
	})
}

// RecordAnswer counts a quiz answer. Topics with wrong answers become weak topics.
func (s *ProgressService) RecordAnswer(ctx context.Context, learner, topic string, correct bool) (models.StudentProgress, error) {
	return s.update(ctx, learner, func(p *models.StudentProgress) {
		if correct {
			p.CorrectAnswers++
			return
		}
		p.WrongAnswers++
		p.WeakTopics = appendUnique(p.WeakTopics, topic)
	})
}

func (s *ProgressService) Reset(ctx context.Context, learner string) error {
	learner = strings.TrimSpace(learner)
	if learner == "" {
		return fmt.Errorf("%w: learner is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, progressKey(learner)); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}

func appendUnique(list []string, item string) []string {
	item = strings.TrimSpace(item)
	if item == "" {
		return list
	}
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}
