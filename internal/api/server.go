package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"concept-booster/internal/logger"
	"concept-booster/internal/models"
	"concept-booster/internal/services"
)

const maxBodyBytes = 10 << 20 // 10 MB, image data URIs included

// DescribeTimeout bounds the vision call made before an image doubt reaches the gateway.
const DescribeTimeout = 30 * time.Second

// Server exposes the tutoring features and learner state over HTTP.
type Server struct {
	mux      *http.ServeMux
	tutor    *services.TutorService
	vision   *services.VisionService
	progress *services.ProgressService
	reviews  *services.ReviewService
	sessions *SessionManager
	log      *logger.Logger

	describeTimeout time.Duration
}

func NewServer(
	tutor *services.TutorService,
	vision *services.VisionService,
	progress *services.ProgressService,
	reviews *services.ReviewService,
	log *logger.Logger,
) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		mux:      http.NewServeMux(),
		tutor:    tutor,
		vision:   vision,
		progress: progress,
		reviews:  reviews,
		sessions: NewSessionManager(),
		log:      log,

		describeTimeout: DescribeTimeout,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.requestLogger(corsMiddleware(s.mux))
}

// Sessions exposes the quiz session store so the caller can prune it.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/ask-doubt", s.handleAskDoubt)
	s.mux.HandleFunc("/api/learn-topic", s.handleLearnTopic)
	s.mux.HandleFunc("/api/generate-questions", s.handleGenerateQuestions)
	s.mux.HandleFunc("/api/progress/", s.handleProgress)
	s.mux.HandleFunc("/api/reviews/", s.handleReviews)
	s.mux.HandleFunc("/api/quiz-sessions", s.handleCreateSession)
	s.mux.HandleFunc("/api/quiz-sessions/", s.handleSessionActions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type doubtRequest struct {
	Question         string `json:"question"`
	Language         string `json:"language"`
	ImageDescription string `json:"imageDescription"`
	Image            string `json:"image"`
	Learner          string `json:"learner"`
}

type topicRequest struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
	Count    int    `json:"count"`
	Learner  string `json:"learner"`
}

func (s *Server) handleAskDoubt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req doubtRequest
	if !decodeBody(w, r, &req) {
		return
	}

	params := models.RequestParams{
		Language:         models.ParseLanguageMode(req.Language),
		Subject:          strings.TrimSpace(req.Question),
		ImageDescription: strings.TrimSpace(req.ImageDescription),
	}
	if params.ImageDescription == "" && strings.TrimSpace(req.Image) != "" {
		params.ImageDescription = s.describeImage(r.Context(), req.Image)
	}

	resp, err := s.tutor.AskDoubt(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if req.Learner != "" {
		if _, err := s.progress.RecordQuestion(r.Context(), req.Learner, params.Subject); err != nil {
			s.log.Warn("record question failed", "learner", req.Learner, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// describeImage returns "" when the image cannot be described; the doubt proceeds without it.
func (s *Server) describeImage(ctx context.Context, image string) string {
	if !s.vision.Enabled() {
		s.log.Warn("image attached but vision is not configured")
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, s.describeTimeout)
	defer cancel()
	desc, err := s.vision.Describe(ctx, image)
	if err != nil {
		s.log.Warn("describe image failed", "error", err)
		return ""
	}
	return desc
}

func (s *Server) handleLearnTopic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req topicRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lesson, err := s.tutor.TeachTopic(r.Context(), models.RequestParams{
		Language: models.ParseLanguageMode(req.Language),
		Subject:  strings.TrimSpace(req.Topic),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if req.Learner != "" {
		if _, err := s.progress.RecordTopic(r.Context(), req.Learner, req.Topic); err != nil {
			s.log.Warn("record topic failed", "learner", req.Learner, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req topicRequest
	if !decodeBody(w, r, &req) {
		return
	}

	questions, err := s.generateQuiz(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (s *Server) generateQuiz(ctx context.Context, req topicRequest) (models.QuizSet, error) {
	return s.tutor.GenerateQuiz(ctx, models.RequestParams{
		Language: models.ParseLanguageMode(req.Language),
		Subject:  strings.TrimSpace(req.Topic),
		Count:    req.Count,
	})
}

type progressView struct {
	models.StudentProgress
	Accuracy int `json:"accuracy"`
	Stars    int `json:"stars"`
}

func newProgressView(p models.StudentProgress) progressView {
	return progressView{StudentProgress: p, Accuracy: p.Accuracy(), Stars: p.Stars()}
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	learner := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/progress/"), "/")
	if learner == "" || strings.Contains(learner, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := s.progress.Get(r.Context(), learner)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newProgressView(p))
	case http.MethodDelete:
		if err := s.progress.Reset(r.Context(), learner); err != nil {
			s.writeServiceError(w, err)
			return
		}
		if err := s.reviews.Forget(r.Context(), learner); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newProgressView(models.DefaultProgress()))
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	learner := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/reviews/"), "/")
	if learner == "" || strings.Contains(learner, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	due, err := s.reviews.DueTopics(r.Context(), learner, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(due))
	for _, review := range due {
		out = append(out, map[string]any{
			"topic":     review.Topic,
			"due":       review.Due.Format(timeLayout),
			"reps":      review.Reps,
			"lapses":    review.Lapses,
			"state":     review.State,
			"stability": review.Stability,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"learner": learner, "due": out})
}

type createSessionRequest struct {
	Learner   string         `json:"learner"`
	Topic     string         `json:"topic"`
	Language  string         `json:"language"`
	Count     int            `json:"count"`
	Questions models.QuizSet `json:"questions"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req createSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	questions := make(models.QuizSet, 0, len(req.Questions))
	for _, q := range req.Questions {
		if q.Valid() {
			questions = append(questions, q)
		}
	}
	if len(req.Questions) == 0 {
		generated, err := s.generateQuiz(r.Context(), topicRequest{Topic: req.Topic, Language: req.Language, Count: req.Count})
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		questions = generated
	}

	session, err := s.sessions.Create(req.Learner, req.Topic, questions)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

type answerRequest struct {
	Index    *int `json:"index"`
	Selected *int `json:"selected"`
}

func (s *Server) handleSessionActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/quiz-sessions/"), "/")
	parts := strings.Split(rest, "/")
	if rest == "" || len(parts) > 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		session, ok := s.sessions.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, ErrSessionNotFound.Error())
			return
		}
		writeJSON(w, http.StatusOK, session)
		return
	}

	if parts[1] != "answers" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Index == nil || req.Selected == nil {
		writeError(w, http.StatusBadRequest, "index and selected are required")
		return
	}

	session, record, err := s.sessions.Answer(id, *req.Index, *req.Selected)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.recordAnswer(r.Context(), session, record)

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":  record,
		"correct": session.Questions[record.Index].Correct,
		"score":   session.Score(),
		"session": session,
	})
}

// recordAnswer feeds an answer into progress and revision scheduling. Failures are logged only.
func (s *Server) recordAnswer(ctx context.Context, session *QuizSession, record AnswerRecord) {
	if session.Learner == "" || session.Topic == "" {
		return
	}
	if _, err := s.progress.RecordAnswer(ctx, session.Learner, session.Topic, record.Correct); err != nil {
		s.log.Warn("record answer progress failed", "session", session.ID, "error", err)
	}
	if _, err := s.reviews.RecordAnswer(ctx, session.Learner, session.Topic, record.Correct); err != nil {
		s.log.Warn("record answer review failed", "session", session.ID, "error", err)
	}
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Error messages returned by the tutoring routes.
const (
	MessageRateLimited    = "Rate limit exceeded. Please try again in a moment."
	MessageQuotaExhausted = "AI credits exhausted. Please try later."
	MessageGateway        = "AI gateway error"
	MessageMalformed      = "Failed to parse AI response"
	MessageNotConfigured  = "AI gateway API key is not configured"
)

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, MessageRateLimited)
	case errors.Is(err, services.ErrQuotaExhausted):
		writeError(w, http.StatusPaymentRequired, MessageQuotaExhausted)
	case errors.Is(err, services.ErrAIUnavailable):
		s.log.Error("gateway key missing")
		writeError(w, http.StatusInternalServerError, MessageNotConfigured)
	case errors.Is(err, services.ErrMalformedResponse):
		writeError(w, http.StatusInternalServerError, MessageMalformed)
	case errors.Is(err, services.ErrGateway):
		writeError(w, http.StatusInternalServerError, MessageGateway)
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyAnswered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrAnswerOutOfRange), errors.Is(err, ErrEmptyQuiz):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
