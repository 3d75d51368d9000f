package synth

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/snarg/voxconvert/internal/lang"
)

// MaxChunkRunes is the longest text the translate_tts endpoint accepts per request.
const MaxChunkRunes = 100

const gttsUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// GTTSClient speaks text through the Google Translate translate_tts endpoint,
// the same backend the gTTS library uses. Long text is split into chunks and
// the MP3 responses are concatenated.
type GTTSClient struct {
	baseURL string
	client  *http.Client
}

// NewGTTSClient creates a client for host (e.g. "translate.google.com").
func NewGTTSClient(host string) *GTTSClient {
	return &GTTSClient{
		baseURL: "https://" + host + "/translate_tts",
		client:  &http.Client{},
	}
}

func (g *GTTSClient) Name() string  { return "gtts" }
func (g *GTTSClient) Model() string { return "translate_tts" }

func (g *GTTSClient) Synthesize(ctx context.Context, text string, code lang.VoiceCode) ([]byte, error) {
	chunks := SplitText(text, MaxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("gtts: nothing to speak")
	}

	var out bytes.Buffer
	for i, chunk := range chunks {
		data, err := g.fetch(ctx, chunk, code, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("gtts chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out.Write(data)
	}
	return out.Bytes(), nil
}

func (g *GTTSClient) fetch(ctx context.Context, chunk string, code lang.VoiceCode, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", string(code))
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", gttsUserAgent)
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gtts request: %w", err)
	}
	defer resp.Body.Close()
	return readAudio("gtts", resp)
}

// SplitText breaks text into chunks of at most max runes. It cuts after the
// last punctuation mark inside the window, else the last space, else hard at
// max. Chunks are trimmed and empty chunks dropped.
func SplitText(text string, max int) []string {
	var chunks []string
	runes := []rune(strings.TrimSpace(text))
	for len(runes) > 0 {
		if len(runes) <= max {
			chunks = appendChunk(chunks, runes)
			break
		}
		cut := splitPoint(runes[:max])
		chunks = appendChunk(chunks, runes[:cut])
		runes = trimLeftSpace(runes[cut:])
	}
	return chunks
}

func splitPoint(window []rune) int {
	lastSpace := -1
	for i := len(window) - 1; i > 0; i-- {
		r := window[i]
		if isBreakPunct(r) {
			return i + 1
		}
		if lastSpace < 0 && unicode.IsSpace(r) {
			lastSpace = i
		}
	}
	if lastSpace > 0 {
		return lastSpace + 1
	}
	return len(window)
}

func isBreakPunct(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '।', '॥', '—', '\n':
		return true
	}
	return false
}

func trimLeftSpace(r []rune) []rune {
	for len(r) > 0 && unicode.IsSpace(r[0]) {
		r = r[1:]
	}
	return r
}

func appendChunk(chunks []string, r []rune) []string {
	if s := strings.TrimSpace(string(r)); s != "" {
		return append(chunks, s)
	}
	return chunks
}
