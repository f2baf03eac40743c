package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText returns the plain text of a PDF worksheet with whitespace collapsed,
// truncated to limit runes when limit > 0.
func ExtractPDFText(path string, limit int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	if r.NumPage() == 0 {
		return "", fmt.Errorf("pdf %s has no pages", path)
	}

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	text := strings.Join(strings.Fields(string(raw)), " ")
	if limit > 0 {
		if runes := []rune(text); len(runes) > limit {
			text = string(runes[:limit])
		}
	}
	if text == "" {
		return "", fmt.Errorf("pdf %s has no extractable text", path)
	}
	return text, nil
}
