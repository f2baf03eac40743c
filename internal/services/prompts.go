package services

import (
	"fmt"
	"strings"

	"concept-booster/internal/models"
)

// Feature identifies one of the tutoring request types.
type Feature int

const (
	FeatureDoubt Feature = iota
	FeatureLesson
	FeatureQuiz
)

func (f Feature) String() string {
	switch f {
	case FeatureDoubt:
		return "ask-doubt"
	case FeatureLesson:
		return "learn-topic"
	case FeatureQuiz:
		return "generate-questions"
	default:
		return fmt.Sprintf("feature(%d)", int(f))
	}
}

// Prompt is the pair of messages sent to the gateway.
type Prompt struct {
	System string
	User   string
}

const (
	DefaultQuizCount = 5
	MaxQuizCount     = 20
)

// QuizCount clamps a requested question count into [1, MaxQuizCount], defaulting to DefaultQuizCount.
func QuizCount(requested int) int {
	switch {
	case requested <= 0:
		return DefaultQuizCount
	case requested > MaxQuizCount:
		return MaxQuizCount
	default:
		return requested
	}
}

func languageInstruction(feature Feature, mode models.LanguageMode) string {
	verb := "Answer"
	switch feature {
	case FeatureLesson:
		verb = "Respond"
	case FeatureQuiz:
		verb = "Generate"
	}

	switch mode {
	case models.LanguagePrimaryScript:
		if feature == FeatureQuiz {
			return "Generate everything in Hindi (Devanagari script). Keep language simple for school students."
		}
		return verb + " entirely in Hindi (Devanagari script). Use simple language suitable for school students."
	case models.LanguageRomanizedMixed:
		return verb + " in Hinglish (Hindi written in Roman script mixed with English). Keep it casual and student-friendly."
	case models.LanguageSimpleTarget:
		return verb + " in simple English suitable for school students."
	default:
		return verb + " in simple English suitable for school students."
	}
}

const doubtShapeContract = `Your response MUST be valid JSON with this exact structure:
{
  "explanation": "A clear 2-3 sentence explanation of the concept",
  "steps": ["Step 1", "Step 2", "Step 3", "Step 4"],
  "example": "A fun real-life example with an emoji",
  "tip": "A helpful tip starting with 💡"
}

Rules:
- Keep explanations very simple, use real-life analogies
- Steps should be clear and numbered (provide 3-5 steps)
- Examples should use emojis and be relatable to Indian students
- Tips should be memorable and practical
- ONLY return valid JSON, no markdown, no extra text`

const lessonShapeContract = `Your response MUST be valid JSON with this exact structure:
{
  "definition": "A clear 3-4 sentence definition/explanation of the topic with real-life context",
  "steps": ["Step 1 to learn this", "Step 2", "Step 3", "Step 4"],
  "mistakes": ["Common mistake 1", "Common mistake 2", "Common mistake 3"],
  "practice": [
    {"q": "A thought-provoking question about the topic", "a": "A clear, concise answer"},
    {"q": "Another question", "a": "Another answer"},
    {"q": "Third question", "a": "Third answer"}
  ]
}

Rules:
- Definition should use real-life Indian examples (cricket, chai, bazaar, etc.)
- Steps should be actionable learning steps
- Mistakes should be specific to this topic, not generic
- Practice questions should test understanding, not memorization
- Use emojis sparingly for friendliness
- ONLY return valid JSON, no markdown, no extra text`

const quizShapeContract = `Your response MUST be valid JSON array with this structure:
[
  {
    "q": "The question text",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correct": 0,
    "explanation": "Brief explanation of the correct answer with emoji"
  }
]

Rules:
- Every question has exactly 4 options
- "correct" is the 0-based index of the correct option
- Questions should range from easy to medium difficulty
- Explanations should be fun and memorable with emojis
- Mix conceptual and numerical questions if applicable
- ONLY return valid JSON array, no markdown, no extra text`

func buildDoubtPrompt(params models.RequestParams) Prompt {
	system := "You are a friendly, encouraging AI tutor for Indian school students (classes 5-10). " +
		languageInstruction(FeatureDoubt, params.Language) + "\n\n" + doubtShapeContract

	question := strings.TrimSpace(params.Subject)
	user := question
	if desc := strings.TrimSpace(params.ImageDescription); desc != "" {
		if question == "" {
			question = "Please explain this."
		}
		user = `The student uploaded an image described as: "` + desc + `". Their question: ` + question
	}
	return Prompt{System: system, User: user}
}

func buildLessonPrompt(params models.RequestParams) Prompt {
	topic := sanitizeForPrompt(params.Subject, 200)
	system := "You are an expert teacher for Indian school students (classes 5-10). " +
		languageInstruction(FeatureLesson, params.Language) + "\n\n" +
		fmt.Sprintf("Teach the topic %q in a comprehensive yet easy-to-understand way.", topic) + "\n\n" +
		lessonShapeContract
	return Prompt{System: system, User: "Teach me about: " + topic}
}

func buildQuizPrompt(params models.RequestParams) Prompt {
	topic := sanitizeForPrompt(params.Subject, 200)
	count := QuizCount(params.Count)
	system := "You are a quiz generator for Indian school students (classes 5-10). " +
		languageInstruction(FeatureQuiz, params.Language) + "\n\n" +
		fmt.Sprintf("Generate exactly %d multiple choice questions about %q.", count, topic) + "\n\n" +
		quizShapeContract
	return Prompt{System: system, User: fmt.Sprintf("Generate %d MCQ questions about: %s", count, topic)}
}

func sanitizeForPrompt(input string, limit int) string {
	collapsed := strings.Join(strings.Fields(strings.TrimSpace(input)), " ")
	if limit <= 0 {
		return collapsed
	}
	runes := []rune(collapsed)
	if len(runes) <= limit {
		return collapsed
	}
	if limit > 3 {
		return string(runes[:limit-3]) + "..."
	}
	return string(runes[:limit])
}
