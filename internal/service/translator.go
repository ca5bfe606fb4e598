package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
)

// Direction selects the translation prompt
type Direction string

const (
	JapaneseToEnglish       Direction = "ja-en"
	EnglishToPlainJapanese  Direction = "en-ja-plain"
	JapaneseToPlainJapanese Direction = "ja-ja-plain"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// ErrEmptyTranslation is returned when the model answers with no text
var ErrEmptyTranslation = errors.New("translator returned an empty response")

// Translator turns text into text. Output has no guaranteed structure.
type Translator interface {
	Translate(ctx context.Context, text string, dir Direction) (string, error)
}

var systemPrompts = map[Direction]string{
	JapaneseToEnglish: "You translate Japanese medical search terms into English for a ClinicalTrials.gov query. " +
		"Reply with the English term only, without explanation.",
	EnglishToPlainJapanese: "以下の英文を、医学の専門知識がない人にもわかりやすい自然な日本語に翻訳してください。" +
		"専門用語には簡単な説明を添えてください。翻訳文のみを出力してください。",
	JapaneseToPlainJapanese: "以下の文章を、医学の専門知識がない人にもわかりやすい日本語に言い換えてください。" +
		"言い換えた文章のみを出力してください。",
}

func systemPrompt(dir Direction) (string, error) {
	p, ok := systemPrompts[dir]
	if !ok {
		return "", fmt.Errorf("unknown translation direction %q", dir)
	}
	return p, nil
}

// OpenAITranslator translates through the OpenAI chat completions API
type OpenAITranslator struct {
	client openai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAITranslator creates an OpenAITranslator. baseURL may be empty.
func NewOpenAITranslator(apiKey, baseURL, model string, log zerolog.Logger) *OpenAITranslator {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAITranslator{
		client: openai.NewClient(opts...),
		model:  model,
		log:    log.With().Str("provider", "openai").Logger(),
	}
}

// Translate implements Translator
func (t *OpenAITranslator) Translate(ctx context.Context, text string, dir Direction) (string, error) {
	prompt, err := systemPrompt(dir)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: t.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyTranslation
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyTranslation
	}

	t.log.Debug().Str("direction", string(dir)).Int("chars", len(out)).Msg("translated")
	return out, nil
}

// TranslationCache stores translator output keyed by direction and text
type TranslationCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// CachingTranslator consults a TranslationCache before calling the wrapped Translator
type CachingTranslator struct {
	next  Translator
	cache TranslationCache
	log   zerolog.Logger
}

// NewCachingTranslator wraps next with cache
func NewCachingTranslator(next Translator, cache TranslationCache, log zerolog.Logger) *CachingTranslator {
	return &CachingTranslator{next: next, cache: cache, log: log}
}

// CacheKey returns the cache key for a text and direction
func CacheKey(text string, dir Direction) string {
	hash := md5.Sum([]byte(text))
	return string(dir) + ":" + hex.EncodeToString(hash[:])
}

// Translate implements Translator. Cache failures are logged and bypassed.
func (t *CachingTranslator) Translate(ctx context.Context, text string, dir Direction) (string, error) {
	key := CacheKey(text, dir)

	if cached, ok, err := t.cache.Get(ctx, key); err != nil {
		t.log.Warn().Err(err).Msg("translation cache read failed")
	} else if ok {
		return cached, nil
	}

	out, err := t.next.Translate(ctx, text, dir)
	if err != nil {
		return "", err
	}

	if err := t.cache.Set(ctx, key, out); err != nil {
		t.log.Warn().Err(err).Msg("translation cache write failed")
	}
	return out, nil
}
