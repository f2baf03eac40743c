package api

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"concept-booster/internal/models"
)

const (
	SessionStatusActive   = "active"
	SessionStatusComplete = "complete"
)

var (
	ErrSessionNotFound  = errors.New("quiz session not found")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrAnswerOutOfRange = errors.New("answer out of range")
	ErrEmptyQuiz        = errors.New("quiz has no questions")
)

// QuizSession tracks one learner working through a delivered quiz.
type QuizSession struct {
	ID        string          `json:"sessionId"`
	Learner   string          `json:"learner,omitempty"`
	Topic     string          `json:"topic"`
	Status    string          `json:"status"`
	Questions models.QuizSet  `json:"questions"`
	Answers   []*AnswerRecord `json:"answers"`
	Answered  int             `json:"answered"`
	Correct   int             `json:"correct"`
	Wrong     int             `json:"wrong"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AnswerRecord is a learner's choice for one question. Answers is index-aligned with Questions.
type AnswerRecord struct {
	Index      int       `json:"index"`
	Selected   int       `json:"selected"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// Score is the rounded percentage of correct answers among delivered questions.
func (q *QuizSession) Score() int {
	if len(q.Questions) == 0 {
		return 0
	}
	return (q.Correct*100 + len(q.Questions)/2) / len(q.Questions)
}

type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*QuizSession
	now      func() time.Time
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*QuizSession),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *SessionManager) Create(learner, topic string, questions models.QuizSet) (*QuizSession, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	now := m.now()
	session := &QuizSession{
		ID:        uuid.NewString(),
		Learner:   strings.TrimSpace(learner),
		Topic:     strings.TrimSpace(topic),
		Status:    SessionStatusActive,
		Questions: append(models.QuizSet(nil), questions...),
		Answers:   make([]*AnswerRecord, len(questions)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session.clone(), nil
}

func (m *SessionManager) Get(id string) (*QuizSession, bool) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	var out *QuizSession
	if ok {
		out = session.clone()
	}
	m.mu.RUnlock()
	return out, ok
}

// Answer records the choice for question index. Each question can be answered once.
func (m *SessionManager) Answer(id string, index, selected int) (*QuizSession, AnswerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, AnswerRecord{}, ErrSessionNotFound
	}
	if index < 0 || index >= len(session.Questions) {
		return nil, AnswerRecord{}, ErrAnswerOutOfRange
	}
	question := session.Questions[index]
	if selected < 0 || selected >= len(question.Options) {
		return nil, AnswerRecord{}, ErrAnswerOutOfRange
	}
	if session.Answers[index] != nil {
		return nil, AnswerRecord{}, ErrAlreadyAnswered
	}

	now := m.now()
	record := &AnswerRecord{Index: index, Selected: selected, Correct: selected == question.Correct, AnsweredAt: now}
	session.Answers[index] = record
	session.Answered++
	if record.Correct {
		session.Correct++
	} else {
		session.Wrong++
	}
	if session.Answered == len(session.Questions) {
		session.Status = SessionStatusComplete
	}
	session.UpdatedAt = now

	return session.clone(), *record, nil
}

// Prune drops sessions untouched for longer than maxAge and reports how many were removed.
func (m *SessionManager) Prune(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, session := range m.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (q *QuizSession) clone() *QuizSession {
	if q == nil {
		return nil
	}
	copyQ := *q
	copyQ.Questions = append(models.QuizSet(nil), q.Questions...)
	copyQ.Answers = make([]*AnswerRecord, len(q.Answers))
	for i, a := range q.Answers {
		if a != nil {
			rec := *a
			copyQ.Answers[i] = &rec
		}
	}
	return &copyQ
}
