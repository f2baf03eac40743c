package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"

	"concept-booster/internal/models"
)

// ReviewService schedules topic revision with FSRS from quiz outcomes.
type ReviewService struct {
	db     *sql.DB
	params fsrs.Parameters
	now    func() time.Time
}

func NewReviewService(db *sql.DB) *ReviewService {
	return &ReviewService{db: db, params: fsrs.DefaultParam(), now: func() time.Time { return time.Now().UTC() }}
}

// normalizeTopic collapses whitespace and lowercases so "Photo  synthesis" and "photo synthesis" share a schedule.
func normalizeTopic(topic string) string {
	return strings.ToLower(strings.Join(strings.Fields(topic), " "))
}

// RecordAnswer rates the topic Good for a correct answer and Again for a wrong one.
func (s *ReviewService) RecordAnswer(ctx context.Context, learner, topic string, correct bool) (*models.TopicReview, error) {
	rating := fsrs.Again
	if correct {
		rating = fsrs.Good
	}
	return s.Review(ctx, learner, topic, rating)
}

// Review applies one rating to the learner's schedule for topic, creating it on first sight.
func (s *ReviewService) Review(ctx context.Context, learner, topic string, rating fsrs.Rating) (review *models.TopicReview, err error) {
	learner = strings.TrimSpace(learner)
	topic = normalizeTopic(topic)
	if learner == "" || topic == "" {
		return nil, fmt.Errorf("%w: learner and topic are required", ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.now()
	review, err = scanReview(tx.QueryRowContext(ctx, `
		SELECT learner, topic, due, stability, difficulty, elapsed_days, scheduled_days,
		       reps, lapses, state, last_review, updated_at
		FROM topic_reviews
		WHERE learner = ? AND topic = ?;
	`, learner, topic))
	if errors.Is(err, sql.ErrNoRows) {
		review = &models.TopicReview{Learner: learner, Topic: topic, Due: now, State: int(fsrs.New)}
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("load review %s/%s: %w", learner, topic, err)
	}

	scheduling := s.params.Repeat(review.ToFSRSCard(), now)
	info, ok := scheduling[rating]
	if !ok {
		err = fmt.Errorf("rating %d not supported", rating)
		return nil, err
	}
	review.ApplyFSRSCard(info.Card)
	review.UpdatedAt = now

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO topic_reviews (learner, topic, due, stability, difficulty, elapsed_days, scheduled_days,
		                           reps, lapses, state, last_review, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(learner, topic) DO UPDATE SET
			due = excluded.due, stability = excluded.stability, difficulty = excluded.difficulty,
			elapsed_days = excluded.elapsed_days, scheduled_days = excluded.scheduled_days,
			reps = excluded.reps, lapses = excluded.lapses, state = excluded.state,
			last_review = excluded.last_review, updated_at = excluded.updated_at;
	`,
		review.Learner, review.Topic, review.Due, review.Stability, review.Difficulty,
		review.ElapsedDays, review.ScheduledDays, review.Reps, review.Lapses, review.State,
		nullTime(review.LastReview), review.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert review %s/%s: %w", learner, topic, err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO topic_review_logs (learner, topic, rating, scheduled_days, elapsed_days, state, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);
	`, learner, topic, info.ReviewLog.Rating, info.ReviewLog.ScheduledDays, info.ReviewLog.ElapsedDays, info.ReviewLog.State, now); err != nil {
		return nil, fmt.Errorf("insert review log: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review: %w", err)
	}
	return review, nil
}

// DueTopics lists the learner's topics due at or before now, soonest first.
func (s *ReviewService) DueTopics(ctx context.Context, learner string, limit int) ([]models.TopicReview, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT learner, topic, due, stability, difficulty, elapsed_days, scheduled_days,
		       reps, lapses, state, last_review, updated_at
		FROM topic_reviews
		WHERE learner = ? AND due <= ?
		ORDER BY due ASC
		LIMIT ?;
	`, strings.TrimSpace(learner), s.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("query due topics: %w", err)
	}
	defer rows.Close()

	reviews := []models.TopicReview{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}
	return reviews, rows.Err()
}

// Forget drops every schedule of the learner.
func (s *ReviewService) Forget(ctx context.Context, learner string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM topic_reviews WHERE learner = ?;`, strings.TrimSpace(learner)); err != nil {
		return fmt.Errorf("delete reviews: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*models.TopicReview, error) {
	review := &models.TopicReview{}
	var lastReview sql.NullTime
	if err := row.Scan(
		&review.Learner,
		&review.Topic,
		&review.Due,
		&review.Stability,
		&review.Difficulty,
		&review.ElapsedDays,
		&review.ScheduledDays,
		&review.Reps,
		&review.Lapses,
		&review.State,
		&lastReview,
		&review.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastReview.Valid {
		review.LastReview = lastReview.Time
	}
	return review, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
