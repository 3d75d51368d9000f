package convert

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTexts = []string{
	"",
	"Hello World",
	"hello, they're bill's friends",
	"  leading and trailing  ",
	"नमस्ते दुनिया",
	"MiXeD 123 cAsE",
	"emoji 🎤 and tabs\tnewline\n",
}

var localModes = []Mode{ModeUppercase, ModeLowercase, ModeReverse, ModeTitle}

func TestApply_DeterministicAndTotal(t *testing.T) {
	for _, m := range localModes {
		for _, text := range sampleTexts {
			assert.Equal(t, Apply(m, text), Apply(m, text), "mode=%s text=%q", m, text)
		}
		assert.Equal(t, "", Apply(m, ""), "mode=%s", m)
	}
}

func TestApply_ReverseIsInvolution(t *testing.T) {
	for _, text := range sampleTexts {
		assert.Equal(t, text, Apply(ModeReverse, Apply(ModeReverse, text)), "text=%q", text)
	}
}

func TestApply_ReverseInvalidUTF8(t *testing.T) {
	text := "ab\xffc\xc3"
	got := Apply(ModeReverse, text)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "\uFFFDc\uFFFDba", got)
	assert.Equal(t, got, Apply(ModeReverse, Apply(ModeReverse, got)))
}

func TestApply_CaseIdempotent(t *testing.T) {
	for _, text := range sampleTexts {
		up := Apply(ModeUppercase, text)
		assert.Equal(t, up, Apply(ModeUppercase, up), "text=%q", text)
		low := Apply(ModeLowercase, text)
		assert.Equal(t, low, Apply(ModeLowercase, low), "text=%q", text)
	}
}

func TestApply_Scenarios(t *testing.T) {
	tests := []struct {
		mode Mode
		in   string
		want string
	}{
		{ModeReverse, "Hello World", "dlroW olleH"},
		{ModeUppercase, "Hello", "HELLO"},
		{ModeLowercase, "HeLLo", "hello"},
		{ModeTitle, "hello wORLD", "Hello World"},
		{ModeTitle, "they're bill's", "They'Re Bill'S"},
		{ModeTitle, "abc123def", "Abc123Def"},
		{ModeReverse, "नमस्ते", string([]rune{'े', 'त', '्', 'स', 'म', 'न'})},
		{ModeTranslate, "untouched", "untouched"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.mode, tt.in))
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"uppercase":            ModeUppercase,
		"UPPERCASE":            ModeUppercase,
		"lowercase":            ModeLowercase,
		"Reverse text":         ModeReverse,
		"reverse":              ModeReverse,
		"Capitalize Each Word": ModeTitle,
		"title-case":           ModeTitle,
		"translate":            ModeTranslate,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("rot13")
	assert.Error(t, err)
}

func TestModeIsLocal(t *testing.T) {
	for _, m := range localModes {
		assert.True(t, m.IsLocal(), m)
	}
	assert.False(t, ModeTranslate.IsLocal())
}
