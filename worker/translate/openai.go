package translate

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"newsVoice/worker/pipeline"
)

// chunkRunes bounds how much body text goes into one completion request.
const chunkRunes = 2000

var languageNames = map[string]string{
	"zh": "Simplified Chinese",
	"en": "English",
	"ja": "Japanese",
	"ko": "Korean",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
}

// OpenAITranslator translates articles through an OpenAI-compatible chat
// API. Long bodies are translated paragraph-chunk by paragraph-chunk so
// the coordinator can surface fractional progress; only the fully
// assembled translation is ever returned.
type OpenAITranslator struct {
	client         *openai.Client
	model          string
	targetLanguage string
}

var _ pipeline.Translator = (*OpenAITranslator)(nil)

func NewOpenAITranslator(apiKey, baseURL, model, targetLanguage string) *OpenAITranslator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAITranslator{
		client:         openai.NewClientWithConfig(cfg),
		model:          model,
		targetLanguage: targetLanguage,
	}
}

func (t *OpenAITranslator) Translate(ctx context.Context, title, body string, progress pipeline.ProgressFunc) (string, string, error) {
	chunks := splitChunks(body, chunkRunes)
	total := len(chunks) + 1 // +1 for the title

	titleCN, err := t.translateChunk(ctx, title)
	if err != nil {
		return "", "", fmt.Errorf("translate title: %w", err)
	}
	report(progress, 1, total)

	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		chunkCN, err := t.translateChunk(ctx, chunk)
		if err != nil {
			return "", "", fmt.Errorf("translate chunk %d/%d: %w", i+1, len(chunks), err)
		}
		translated = append(translated, chunkCN)
		report(progress, i+2, total)
	}

	return titleCN, strings.Join(translated, "\n\n"), nil
}

func (t *OpenAITranslator) translateChunk(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	language := languageNames[t.targetLanguage]
	if language == "" {
		language = t.targetLanguage
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"You are a professional news translator. Translate the user's text into %s. Preserve paragraph breaks. Output only the translation.",
					language),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func report(progress pipeline.ProgressFunc, done, total int) {
	if progress == nil || total == 0 {
		return
	}
	progress(done * 100 / total)
}

// splitChunks breaks text into chunks of at most maxRunes, preferring
// paragraph boundaries. A single oversized paragraph becomes its own
// chunk rather than being split mid-sentence.
func splitChunks(text string, maxRunes int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, paragraph := range paragraphs {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		plen := len([]rune(paragraph))
		if currentLen > 0 && currentLen+plen+2 > maxRunes {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(paragraph)
		currentLen += plen
	}
	flush()

	if len(chunks) == 0 {
		chunks = []string{""}
	}
	return chunks
}
