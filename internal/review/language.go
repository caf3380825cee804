package review

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// minDetectionLength is the minimum rune count required before language
// detection is attempted; shorter texts produce unreliable results and are
// accepted as-is.
const minDetectionLength = 20

// LanguageCheck verifies that translated text is actually written in the
// target language. Building the underlying detector is expensive; construct
// one per job and share it.
type LanguageCheck struct {
	det lingua.LanguageDetector
}

func NewLanguageCheck() *LanguageCheck {
	det := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()
	return &LanguageCheck{det: det}
}

// Matches reports whether text appears to be written in target, which may
// be a language name ("Spanish") or an ISO 639-1 code ("es"). Short texts
// and texts whose language cannot be determined pass without complaint.
func (c *LanguageCheck) Matches(text, target string) (bool, string) {
	if target == "" {
		return true, ""
	}
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < minDetectionLength {
		return true, ""
	}

	detected, ok := c.det.DetectLanguageOf(trimmed)
	if !ok {
		return true, ""
	}

	name := detected.String()
	iso := detected.IsoCode639_1().String()
	if strings.EqualFold(name, target) || strings.EqualFold(iso, target) {
		return true, name
	}
	return false, name
}
