package client

import (
	"errors"

	"concept-booster/internal/models"
	"concept-booster/internal/services"
)

type localized struct {
	english, hindi, hinglish string
}

func (l localized) in(mode models.LanguageMode) string {
	switch mode {
	case models.LanguagePrimaryScript:
		return l.hindi
	case models.LanguageRomanizedMixed:
		return l.hinglish
	default:
		return l.english
	}
}

var (
	toastRateLimited = localized{
		english:  "Rate limit exceeded. Please try again in a moment.",
		hindi:    "बहुत ज़्यादा अनुरोध हो गए। कृपया थोड़ी देर बाद फिर से कोशिश करें।",
		hinglish: "Bahut zyada requests ho gayi. Thodi der baad phir try karo.",
	}
	toastQuota = localized{
		english:  "AI credits exhausted. Please try later.",
		hindi:    "AI क्रेडिट खत्म हो गए हैं। कृपया बाद में कोशिश करें।",
		hinglish: "AI credits khatam ho gaye. Baad mein try karo.",
	}
	toastNoQuestions = localized{
		english:  "Could not generate questions",
		hindi:    "प्रश्न नहीं बन सके",
		hinglish: "Questions generate nahi ho paaye",
	}
	toastInvalid = localized{
		english:  "Please type a question or topic first.",
		hindi:    "कृपया पहले अपना सवाल या विषय लिखें।",
		hinglish: "Pehle apna question ya topic likho.",
	}
	toastGeneric = localized{
		english:  "Something went wrong. Please try again.",
		hindi:    "कुछ गड़बड़ हो गई। कृपया फिर से कोशिश करें।",
		hinglish: "Kuch gadbad ho gayi. Dobara try karo.",
	}
)

// Toast picks the message shown to the learner for a failed request.
func Toast(feature services.Feature, mode models.LanguageMode, err error) string {
	switch {
	case errors.Is(err, services.ErrRateLimited):
		return toastRateLimited.in(mode)
	case errors.Is(err, services.ErrQuotaExhausted):
		return toastQuota.in(mode)
	case errors.Is(err, services.ErrInvalidInput):
		return toastInvalid.in(mode)
	case feature == services.FeatureQuiz:
		return toastNoQuestions.in(mode)
	default:
		return toastGeneric.in(mode)
	}
}
