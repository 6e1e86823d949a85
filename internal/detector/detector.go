// Package detector identifies the language of a text with lingua-go.
package detector

import (
	"fmt"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// minCheckLength is the rune count below which detection is too unreliable
// to reject a text.
const minCheckLength = 20

// Detector wraps a lingua detector. Building one is expensive; reuse it.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Matches reports whether text appears to be written in lang, a language
// code with an optional region ("pt-BR"). Short and undetectable texts
// match.
func (d *Detector) Matches(text, lang string) (bool, error) {
	text = strings.TrimSpace(text)
	parts := strings.FieldsFunc(lang, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) == 0 || len([]rune(text)) < minCheckLength {
		return true, nil
	}
	want := strings.ToLower(parts[0])

	detected, ok := d.DetectISO(text)
	if !ok {
		return true, nil
	}
	if detected != want {
		return false, fmt.Errorf("expected %s but detected %s", want, detected)
	}
	return true, nil
}
