package convert

import (
	"fmt"
	"strings"
	"unicode"
)

// Mode is a text-to-text transform.
type Mode string

const (
	ModeUppercase Mode = "uppercase"
	ModeLowercase Mode = "lowercase"
	ModeReverse   Mode = "reverse"
	ModeTitle     Mode = "title"
	ModeTranslate Mode = "translate"
)

// Modes lists every mode in display order, with its UI label.
var Modes = []struct {
	Mode  Mode   `json:"mode"`
	Label string `json:"label"`
}{
	{ModeUppercase, "UPPERCASE"},
	{ModeLowercase, "lowercase"},
	{ModeReverse, "Reverse text"},
	{ModeTitle, "Capitalize Each Word"},
	{ModeTranslate, "Translate"},
}

// ParseMode accepts a canonical mode name or its UI label, case-insensitively.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	for _, m := range Modes {
		if strings.EqualFold(s, string(m.Mode)) || strings.EqualFold(s, m.Label) {
			return m.Mode, nil
		}
	}
	switch strings.ToLower(s) {
	case "upper":
		return ModeUppercase, nil
	case "lower":
		return ModeLowercase, nil
	case "title-case", "titlecase", "capitalize":
		return ModeTitle, nil
	}
	return "", fmt.Errorf("unknown transform mode %q", s)
}

// IsLocal reports whether the mode runs without a remote call.
func (m Mode) IsLocal() bool {
	switch m {
	case ModeUppercase, ModeLowercase, ModeReverse, ModeTitle:
		return true
	}
	return false
}

// Apply runs a local transform. It is total: unknown or remote modes return
// the input unchanged. Text is treated as UTF-8; for reverse, each invalid
// byte becomes U+FFFD, so the output is always valid UTF-8 and reversing it
// again restores it.
func Apply(m Mode, text string) string {
	switch m {
	case ModeUppercase:
		return strings.ToUpper(text)
	case ModeLowercase:
		return strings.ToLower(text)
	case ModeReverse:
		return reverse(text)
	case ModeTitle:
		return title(text)
	}
	return text
}

// reverse reverses by code point.
func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// title upper-cases the first letter of every run of letters and lower-cases
// the rest ("they're bill's" -> "They'Re Bill'S").
func title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(unicode.ToTitle(r))
		case isLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
