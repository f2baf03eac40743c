package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"concept-booster/internal/models"
)

var fencedBlock = regexp.MustCompile("```(?i:json)?\\s*([\\s\\S]*?)```")

// extractJSON returns the contents of the first fenced code block in content,
// or the whole content when no fence is present. Surrounding whitespace is trimmed.
func extractJSON(content string) string {
	if m := fencedBlock.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(content)
}

func decodeReply[T any](content string) (T, error) {
	var out T
	candidate := extractJSON(content)
	if candidate == "" {
		return out, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

func decodeTutorResponse(content string) (models.TutorResponse, error) {
	resp, err := decodeReply[models.TutorResponse](content)
	if err != nil {
		return resp, err
	}
	if strings.TrimSpace(resp.Explanation) == "" || len(resp.Steps) == 0 {
		return resp, fmt.Errorf("%w: missing explanation or steps", ErrMalformedResponse)
	}
	return resp, nil
}

func decodeTopicLesson(content string) (models.TopicLesson, error) {
	lesson, err := decodeReply[models.TopicLesson](content)
	if err != nil {
		return lesson, err
	}
	if strings.TrimSpace(lesson.Definition) == "" || len(lesson.Practice) == 0 {
		return lesson, fmt.Errorf("%w: missing definition or practice", ErrMalformedResponse)
	}
	return lesson, nil
}

// decodeQuizSet accepts a bare array or an object wrapping it under "questions".
// Questions that do not decode or are not well formed are dropped.
func decodeQuizSet(content string) (models.QuizSet, error) {
	raw, err := decodeReply[[]json.RawMessage](content)
	if err != nil {
		wrapped, wrapErr := decodeReply[struct {
			Questions []json.RawMessage `json:"questions"`
		}](content)
		if wrapErr != nil || wrapped.Questions == nil {
			return nil, err
		}
		raw = wrapped.Questions
	}

	valid := make(models.QuizSet, 0, len(raw))
	for _, item := range raw {
		var q models.QuizQuestion
		if err := json.Unmarshal(item, &q); err != nil {
			continue
		}
		if q.Valid() {
			valid = append(valid, q)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no usable questions", ErrMalformedResponse)
	}
	return valid, nil
}
