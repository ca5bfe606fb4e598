package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shouni/go-ai-client/v2/pkg/ai/gemini"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiTranslator translates through the Gemini API
type GeminiTranslator struct {
	client gemini.GenerativeModel
	model  string
	log    zerolog.Logger
}

// NewGeminiTranslator creates a GeminiTranslator
func NewGeminiTranslator(ctx context.Context, apiKey, model string, log zerolog.Logger) (*GeminiTranslator, error) {
	temperature := float32(0)
	client, err := gemini.NewClient(ctx, gemini.Config{APIKey: apiKey, Temperature: &temperature})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return newGeminiTranslator(client, model, log), nil
}

func newGeminiTranslator(client gemini.GenerativeModel, model string, log zerolog.Logger) *GeminiTranslator {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiTranslator{
		client: client,
		model:  model,
		log:    log.With().Str("provider", "gemini").Logger(),
	}
}

// Translate implements Translator
func (t *GeminiTranslator) Translate(ctx context.Context, text string, dir Direction) (string, error) {
	prompt, err := systemPrompt(dir)
	if err != nil {
		return "", err
	}

	resp, err := t.client.GenerateContent(ctx, prompt+"\n\n"+text, t.model)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	out := strings.TrimSpace(resp.Text)
	if out == "" {
		return "", ErrEmptyTranslation
	}

	t.log.Debug().Str("direction", string(dir)).Int("chars", len(out)).Msg("translated")
	return out, nil
}
