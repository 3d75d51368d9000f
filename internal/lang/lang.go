// Package lang maps the human-facing language choices to the code spaces of
// each backend. Recognition backends take BCP-47 locales ("en-IN"), synthesis
// and translation backends take ISO-639-1 codes ("en"). The two are distinct
// types so one cannot be passed where the other is expected.
package lang

import (
	"fmt"
	"strings"
)

// Locale is a recognition locale such as "en-IN".
type Locale string

// VoiceCode is a synthesis / translation language code such as "en".
type VoiceCode string

// Base returns the ISO-639-1 part of the locale ("hi-IN" -> "hi").
func (l Locale) Base() string {
	s := string(l)
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

// Language is one supported spoken language.
type Language struct {
	Name        string    `json:"name"`
	Recognition Locale    `json:"recognition_locale"`
	Synthesis   VoiceCode `json:"synthesis_code"`
}

var (
	English = Language{Name: "English", Recognition: "en-IN", Synthesis: "en"}
	Hindi   = Language{Name: "Hindi", Recognition: "hi-IN", Synthesis: "hi"}
)

// Supported lists the selectable languages in display order.
func Supported() []Language {
	return []Language{English, Hindi}
}

// Parse resolves a language from its display name, recognition locale, or
// synthesis code, case-insensitively. An empty string selects English.
func Parse(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return English, nil
	}
	for _, l := range Supported() {
		if strings.EqualFold(s, l.Name) ||
			strings.EqualFold(s, string(l.Recognition)) ||
			strings.EqualFold(s, string(l.Synthesis)) {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("unsupported language %q", s)
}

// TranslationTarget validates a translation target. Supported language names
// resolve to their synthesis code; any other two-letter ISO-639-1 code is
// accepted as-is.
func TranslationTarget(s string) (VoiceCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("missing target language")
	}
	if l, err := Parse(s); err == nil {
		return l.Synthesis, nil
	}
	if len(s) == 2 && isASCIILetters(s) {
		return VoiceCode(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("unsupported target language %q", s)
}

// DisplayName returns a human-readable name for a code, falling back to the
// code itself for languages outside the supported set.
func DisplayName(code VoiceCode) string {
	for _, l := range Supported() {
		if l.Synthesis == code {
			return l.Name
		}
	}
	if name, ok := isoNames[string(code)]; ok {
		return name
	}
	return string(code)
}

var isoNames = map[string]string{
	"ar": "Arabic", "bn": "Bengali", "de": "German", "es": "Spanish", "fr": "French",
	"gu": "Gujarati", "it": "Italian", "ja": "Japanese", "kn": "Kannada", "ko": "Korean",
	"ml": "Malayalam", "mr": "Marathi", "pa": "Punjabi", "pt": "Portuguese", "ru": "Russian",
	"ta": "Tamil", "te": "Telugu", "ur": "Urdu", "zh": "Chinese",
}

func isASCIILetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
