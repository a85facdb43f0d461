package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"newsVoice/worker/pipeline"
)

// maxChunkRunes is the per-request text limit of the translate TTS
// endpoint; longer texts are synthesized chunk by chunk and the MP3
// frames concatenated.
const maxChunkRunes = 200

// GoogleSynthesizer renders text to MP3 through the public Google
// Translate text-to-speech endpoint, the same backend the original
// platform used.
type GoogleSynthesizer struct {
	endpoint string
	client   *http.Client
}

var _ pipeline.Synthesizer = (*GoogleSynthesizer)(nil)

func NewGoogleSynthesizer(endpoint string, client *http.Client) *GoogleSynthesizer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GoogleSynthesizer{endpoint: endpoint, client: client}
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text, lang string, progress pipeline.ProgressFunc) ([]byte, error) {
	chunks := SplitText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text to synthesize")
	}

	var audio []byte
	for i, chunk := range chunks {
		data, err := s.fetchChunk(ctx, chunk, lang)
		if err != nil {
			return nil, fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio = append(audio, data...)

		if progress != nil {
			progress((i + 1) * 100 / len(chunks))
		}
	}

	return audio, nil
}

func (s *GoogleSynthesizer) fetchChunk(ctx context.Context, text, lang string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", lang)
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("tts endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	return io.ReadAll(resp.Body)
}

// SplitText cuts text into chunks of at most maxRunes, breaking on
// sentence punctuation where possible so speech pauses sound natural.
func SplitText(text string, maxRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []string

	for len(runes) > 0 {
		if len(runes) <= maxRunes {
			chunks = append(chunks, strings.TrimSpace(string(runes)))
			break
		}

		cut := maxRunes
		for i := maxRunes; i > maxRunes/2; i-- {
			if isSentenceBreak(runes[i-1]) {
				cut = i
				break
			}
		}
		if cut == maxRunes {
			// No sentence break in range; fall back to whitespace.
			for i := maxRunes; i > maxRunes/2; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
		}

		chunk := strings.TrimSpace(string(runes[:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
	}

	return chunks
}

func isSentenceBreak(r rune) bool {
	switch r {
	case '.', '!', '?', ';', '。', '！', '？', '；':
		return true
	}
	return false
}
