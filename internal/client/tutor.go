package client

import (
	"context"

	"concept-booster/internal/logger"
	"concept-booster/internal/models"
	"concept-booster/internal/services"
)

// Tutor wires the three features to a server and records progress locally.
type Tutor struct {
	Doubt  *Feature[DoubtRequest, models.TutorResponse]
	Lesson *Feature[TopicRequest, models.TopicLesson]
	Quiz   *Feature[TopicRequest, models.QuizSet]

	progress *services.ProgressService
	learner  string
}

func NewTutor(c *Client, progress *services.ProgressService, learner string, log *logger.Logger) *Tutor {
	t := &Tutor{progress: progress, learner: learner}
	t.Doubt = NewFeature(services.FeatureDoubt, c.AskDoubt, t.afterDoubt, log)
	t.Lesson = NewFeature(services.FeatureLesson, c.LearnTopic, t.afterLesson, log)
	t.Quiz = NewFeature[TopicRequest, models.QuizSet](services.FeatureQuiz, c.GenerateQuestions, nil, log)
	return t
}

func (t *Tutor) afterDoubt(ctx context.Context, req DoubtRequest, _ models.TutorResponse) error {
	_, err := t.progress.RecordQuestion(ctx, t.learner, req.Question)
	return err
}

func (t *Tutor) afterLesson(ctx context.Context, req TopicRequest, _ models.TopicLesson) error {
	_, err := t.progress.RecordTopic(ctx, t.learner, req.Topic)
	return err
}

// RecordAnswer stores the outcome of one quiz answer.
func (t *Tutor) RecordAnswer(ctx context.Context, topic string, correct bool) (models.StudentProgress, error) {
	return t.progress.RecordAnswer(ctx, t.learner, topic, correct)
}

func (t *Tutor) Progress(ctx context.Context) (models.StudentProgress, error) {
	return t.progress.Get(ctx, t.learner)
}

func (t *Tutor) ResetProgress(ctx context.Context) error {
	t.Doubt.Reset()
	t.Lesson.Reset()
	t.Quiz.Reset()
	return t.progress.Reset(ctx, t.learner)
}
