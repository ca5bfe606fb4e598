package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletionJSON(content string) string {
	body, _ := json.Marshal(content)
	return fmt.Sprintf(`{
  "id": "chatcmpl-test",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %s}}]
}`, body)
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestOpenAITranslator(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionJSON("  英語では「EGFR」と訳されます \n"))
	}))
	defer srv.Close()

	tr := NewOpenAITranslator("sk-test", srv.URL+"/", "test-model", zerolog.Nop())
	out, err := tr.Translate(context.Background(), "EGFR遺伝子", JapaneseToEnglish)
	require.NoError(t, err)
	assert.Equal(t, "英語では「EGFR」と訳されます", out)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "EGFR遺伝子", got.Messages[1].Content)
}

func TestOpenAITranslatorErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error": {"message": "boom", "type": "server_error"}}`)
		}))
		defer srv.Close()

		tr := NewOpenAITranslator("sk-test", srv.URL+"/", "", zerolog.Nop())
		_, err := tr.Translate(context.Background(), "肺がん", JapaneseToEnglish)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("empty content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, chatCompletionJSON("   "))
		}))
		defer srv.Close()

		tr := NewOpenAITranslator("sk-test", srv.URL+"/", "", zerolog.Nop())
		_, err := tr.Translate(context.Background(), "肺がん", JapaneseToEnglish)
		assert.ErrorIs(t, err, ErrEmptyTranslation)
	})

	t.Run("unknown direction", func(t *testing.T) {
		tr := NewOpenAITranslator("sk-test", "http://127.0.0.1:1/", "", zerolog.Nop())
		_, err := tr.Translate(context.Background(), "肺がん", Direction("xx"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown translation direction")
	})
}

// fakeTranslator answers from a table and counts calls
type fakeTranslator struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     int
}

func (f *fakeTranslator) Translate(_ context.Context, text string, _ Direction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.responses[text], nil
}

type mapCache struct {
	data   map[string]string
	getErr error
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string) error {
	c.data[key] = value
	return nil
}

func TestCachingTranslator(t *testing.T) {
	next := &fakeTranslator{responses: map[string]string{"肺がん": "lung cancer"}}
	cache := &mapCache{data: map[string]string{}}
	tr := NewCachingTranslator(next, cache, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out, err := tr.Translate(ctx, "肺がん", JapaneseToEnglish)
		require.NoError(t, err)
		assert.Equal(t, "lung cancer", out)
	}
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, "lung cancer", cache.data[CacheKey("肺がん", JapaneseToEnglish)])

	// Different direction is a different key
	_, err := tr.Translate(ctx, "肺がん", EnglishToPlainJapanese)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachingTranslatorBypassesBrokenCache(t *testing.T) {
	next := &fakeTranslator{responses: map[string]string{"乳がん": "breast cancer"}}
	cache := &mapCache{data: map[string]string{}, getErr: errors.New("connection refused")}
	tr := NewCachingTranslator(next, cache, zerolog.Nop())

	out, err := tr.Translate(context.Background(), "乳がん", JapaneseToEnglish)
	require.NoError(t, err)
	assert.Equal(t, "breast cancer", out)
}

func TestCachingTranslatorDoesNotCacheErrors(t *testing.T) {
	next := &fakeTranslator{err: errors.New("quota exceeded")}
	cache := &mapCache{data: map[string]string{}}
	tr := NewCachingTranslator(next, cache, zerolog.Nop())

	_, err := tr.Translate(context.Background(), "乳がん", JapaneseToEnglish)
	require.Error(t, err)
	assert.Empty(t, cache.data)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey("a", JapaneseToEnglish), CacheKey("a", JapaneseToEnglish))
	assert.NotEqual(t, CacheKey("a", JapaneseToEnglish), CacheKey("b", JapaneseToEnglish))
	assert.True(t, strings.HasPrefix(CacheKey("a", JapaneseToEnglish), "ja-en:"))
}
