package services

import (
	"strings"
	"testing"

	"concept-booster/internal/models"
)

func TestLanguageInstruction(t *testing.T) {
	tests := []struct {
		feature Feature
		mode    models.LanguageMode
		want    string
	}{
		{FeatureDoubt, models.LanguageSimpleTarget, "Answer in simple English"},
		{FeatureLesson, models.LanguageSimpleTarget, "Respond in simple English"},
		{FeatureQuiz, models.LanguageSimpleTarget, "Generate in simple English"},
		{FeatureDoubt, models.LanguagePrimaryScript, "Answer entirely in Hindi (Devanagari script)"},
		{FeatureLesson, models.LanguagePrimaryScript, "Respond entirely in Hindi"},
		{FeatureQuiz, models.LanguagePrimaryScript, "Generate everything in Hindi"},
		{FeatureDoubt, models.LanguageRomanizedMixed, "Answer in Hinglish"},
		{FeatureQuiz, models.LanguageRomanizedMixed, "Generate in Hinglish"},
		{FeatureLesson, models.LanguageMode(42), "Respond in simple English"},
	}
	for _, tt := range tests {
		t.Run(tt.feature.String()+"/"+tt.mode.String(), func(t *testing.T) {
			got := languageInstruction(tt.feature, tt.mode)
			if !strings.HasPrefix(got, tt.want) {
				t.Fatalf("languageInstruction() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestQuizCount(t *testing.T) {
	cases := map[int]int{-3: 5, 0: 5, 1: 1, 7: 7, 20: 20, 21: 20, 500: 20}
	for in, want := range cases {
		if got := QuizCount(in); got != want {
			t.Errorf("QuizCount(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBuildDoubtPrompt(t *testing.T) {
	p := buildDoubtPrompt(models.RequestParams{Subject: "  What is photosynthesis?  "})
	if p.User != "What is photosynthesis?" {
		t.Fatalf("user message = %q", p.User)
	}
	if !strings.Contains(p.System, `"explanation"`) || !strings.Contains(p.System, "Answer in simple English") {
		t.Fatalf("system prompt missing shape or language: %q", p.System)
	}
}

func TestBuildDoubtPromptWithImage(t *testing.T) {
	p := buildDoubtPrompt(models.RequestParams{ImageDescription: "a right triangle with sides 3 and 4"})
	want := `The student uploaded an image described as: "a right triangle with sides 3 and 4". Their question: Please explain this.`
	if p.User != want {
		t.Fatalf("user message = %q, want %q", p.User, want)
	}

	p = buildDoubtPrompt(models.RequestParams{Subject: "Label it", ImageDescription: "a leaf\nwith \"veins\""})
	want = "The student uploaded an image described as: \"a leaf\nwith \"veins\"\". Their question: Label it"
	if p.User != want {
		t.Fatalf("user message = %q, want %q", p.User, want)
	}

	p = buildDoubtPrompt(models.RequestParams{Subject: "Find the hypotenuse", ImageDescription: "a triangle"})
	if !strings.HasSuffix(p.User, "Their question: Find the hypotenuse") {
		t.Fatalf("user message = %q", p.User)
	}
}

func TestBuildLessonPrompt(t *testing.T) {
	p := buildLessonPrompt(models.RequestParams{Subject: "Fractions\n\nand decimals", Language: models.LanguageRomanizedMixed})
	if p.User != "Teach me about: Fractions and decimals" {
		t.Fatalf("user message = %q", p.User)
	}
	for _, want := range []string{"Respond in Hinglish", `"practice"`, `"Fractions and decimals"`} {
		if !strings.Contains(p.System, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestBuildQuizPrompt(t *testing.T) {
	p := buildQuizPrompt(models.RequestParams{Subject: "Gravity"})
	if p.User != "Generate 5 MCQ questions about: Gravity" {
		t.Fatalf("user message = %q", p.User)
	}
	if !strings.Contains(p.System, "Generate exactly 5 multiple choice questions") {
		t.Fatalf("system prompt missing count: %q", p.System)
	}

	p = buildQuizPrompt(models.RequestParams{Subject: "Gravity", Count: 3, Language: models.LanguagePrimaryScript})
	if p.User != "Generate 3 MCQ questions about: Gravity" {
		t.Fatalf("user message = %q", p.User)
	}
}

func TestSanitizeForPrompt(t *testing.T) {
	if got := sanitizeForPrompt("  a \n b\tc ", 0); got != "a b c" {
		t.Fatalf("got %q", got)
	}
	if got := sanitizeForPrompt("abcdefghij", 6); got != "abc..." {
		t.Fatalf("got %q", got)
	}
	if got := sanitizeForPrompt("अबकदख", 2); got != "अब" {
		t.Fatalf("got %q", got)
	}
}
