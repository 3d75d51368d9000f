package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"English", English},
		{"english", English},
		{"en-IN", English},
		{"EN", English},
		{"", English},
		{"Hindi", Hindi},
		{"hi-in", Hindi},
		{"hi", Hindi},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Parse("Klingon")
	assert.Error(t, err)
}

func TestCodeSpacesAreDistinct(t *testing.T) {
	for _, l := range Supported() {
		assert.NotEqual(t, string(l.Recognition), string(l.Synthesis), l.Name)
		assert.Equal(t, string(l.Synthesis), l.Recognition.Base(), l.Name)
	}
}

func TestLocaleBase(t *testing.T) {
	assert.Equal(t, "hi", Locale("hi-IN").Base())
	assert.Equal(t, "en", Locale("en_US").Base())
	assert.Equal(t, "fr", Locale("FR").Base())
}

func TestTranslationTarget(t *testing.T) {
	code, err := TranslationTarget("Hindi")
	require.NoError(t, err)
	assert.Equal(t, VoiceCode("hi"), code)

	code, err = TranslationTarget("FR")
	require.NoError(t, err)
	assert.Equal(t, VoiceCode("fr"), code)

	for _, bad := range []string{"", "french!", "x1", "deu"} {
		_, err := TranslationTarget(bad)
		assert.Error(t, err, bad)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Hindi", DisplayName("hi"))
	assert.Equal(t, "French", DisplayName("fr"))
	assert.Equal(t, "xx", DisplayName("xx"))
}
