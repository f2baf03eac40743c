package models

import (
	"math"
	"strings"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"
)

// LanguageMode selects how the tutor phrases its output.
type LanguageMode int

const (
	// LanguageSimpleTarget is simple English and the default for unknown input.
	LanguageSimpleTarget LanguageMode = iota
	// LanguagePrimaryScript is Hindi in Devanagari script.
	LanguagePrimaryScript
	// LanguageRomanizedMixed is Hinglish: Hindi in Roman script mixed with English.
	LanguageRomanizedMixed
)

// ParseLanguageMode maps the wire name to a mode. Unknown names fall back to simple English.
func ParseLanguageMode(raw string) LanguageMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hindi":
		return LanguagePrimaryScript
	case "hinglish":
		return LanguageRomanizedMixed
	default:
		return LanguageSimpleTarget
	}
}

func (m LanguageMode) String() string {
	switch m {
	case LanguagePrimaryScript:
		return "hindi"
	case LanguageRomanizedMixed:
		return "hinglish"
	default:
		return "english"
	}
}

// RequestParams is the caller-supplied input of one tutoring request.
type RequestParams struct {
	Language         LanguageMode
	Subject          string // question for doubts, topic for lessons and quizzes
	Count            int
	ImageDescription string
}

// TutorResponse answers a student's doubt.
type TutorResponse struct {
	Explanation string   `json:"explanation"`
	Steps       []string `json:"steps"`
	Example     string   `json:"example"`
	Tip         string   `json:"tip"`
}

// PracticeItem is a question/answer pair attached to a lesson.
type PracticeItem struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// TopicLesson teaches a topic end to end.
type TopicLesson struct {
	Definition string         `json:"definition"`
	Steps      []string       `json:"steps"`
	Mistakes   []string       `json:"mistakes"`
	Practice   []PracticeItem `json:"practice"`
}

// QuizQuestion is a single multiple choice question.
type QuizQuestion struct {
	Question    string   `json:"q"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// QuizOptionCount is the number of options every quiz question carries.
const QuizOptionCount = 4

// Valid reports whether the question has exactly four options and a correct index inside them.
func (q QuizQuestion) Valid() bool {
	return strings.TrimSpace(q.Question) != "" &&
		len(q.Options) == QuizOptionCount &&
		q.Correct >= 0 && q.Correct < len(q.Options)
}

// QuizSet is an ordered quiz. Its length is whatever the gateway delivered.
type QuizSet []QuizQuestion

// StudentProgress is the per-learner learning record.
type StudentProgress struct {
	TopicsSearched []string `json:"topicsSearched"`
	QuestionsAsked int      `json:"questionsAsked"`
	CorrectAnswers int      `json:"correctAnswers"`
	WrongAnswers   int      `json:"wrongAnswers"`
	WeakTopics     []string `json:"weakTopics"`
	MasteryLevel   int      `json:"masteryLevel"`
}

// DefaultProgress returns an empty record with non-nil slices.
func DefaultProgress() StudentProgress {
	return StudentProgress{TopicsSearched: []string{}, WeakTopics: []string{}}
}

// Mastery is min(100, round((topics*10 + correct*5) / 1.5)).
func (p StudentProgress) Mastery() int {
	raw := math.Round(float64(len(p.TopicsSearched)*10+p.CorrectAnswers*5) / 1.5)
	return int(math.Min(100, raw))
}

// Accuracy is the rounded percentage of correct answers, 0 when nothing was answered.
func (p StudentProgress) Accuracy() int {
	total := p.CorrectAnswers + p.WrongAnswers
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(p.CorrectAnswers) / float64(total) * 100))
}

// Stars converts mastery into a 0-3 star rating.
func (p StudentProgress) Stars() int {
	switch m := p.Mastery(); {
	case m >= 80:
		return 3
	case m >= 50:
		return 2
	case m >= 20:
		return 1
	default:
		return 0
	}
}

// TopicReview is the revision schedule of one topic for one learner.
type TopicReview struct {
	Learner       string
	Topic         string
	Due           time.Time
	Stability     float64
	Difficulty    float64
	ElapsedDays   int
	ScheduledDays int
	Reps          int
	Lapses        int
	State         int
	LastReview    time.Time
	UpdatedAt     time.Time
}

func (r *TopicReview) ToFSRSCard() fsrs.Card {
	return fsrs.Card{
		Due:           r.Due,
		Stability:     r.Stability,
		Difficulty:    r.Difficulty,
		ElapsedDays:   uint64(max(r.ElapsedDays, 0)),
		ScheduledDays: uint64(max(r.ScheduledDays, 0)),
		Reps:          uint64(max(r.Reps, 0)),
		Lapses:        uint64(max(r.Lapses, 0)),
		State:         fsrs.State(max(r.State, 0)),
		LastReview:    r.LastReview,
	}
}

func (r *TopicReview) ApplyFSRSCard(f fsrs.Card) {
	r.Due = f.Due
	r.Stability = f.Stability
	r.Difficulty = f.Difficulty
	r.ElapsedDays = int(f.ElapsedDays)
	r.ScheduledDays = int(f.ScheduledDays)
	r.Reps = int(f.Reps)
	r.Lapses = int(f.Lapses)
	r.State = int(f.State)
	r.LastReview = f.LastReview
}
