package services

import "concept-booster/internal/models"

// fallbackTutorResponse wraps an unparseable reply so the student still sees it.
func fallbackTutorResponse(raw string) models.TutorResponse {
	return models.TutorResponse{
		Explanation: raw,
		Steps:       []string{"Read the explanation above carefully"},
		Example:     "🌟 Try to relate this to your daily life!",
		Tip:         "💡 Ask again if you need more clarity!",
	}
}

func fallbackTopicLesson(raw string) models.TopicLesson {
	return models.TopicLesson{
		Definition: raw,
		Steps:      []string{"Read the explanation above"},
		Mistakes:   []string{"Don't skip practicing"},
		Practice:   []models.PracticeItem{{Question: "What did you learn?", Answer: "Review the explanation above!"}},
	}
}
