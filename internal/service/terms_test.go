package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestTermTranslatorTerms(t *testing.T) {
	fake := &fakeTranslator{responses: map[string]string{
		"肺がん":  "The disease is called 「lung cancer」 in English.",
		"ＥＧＦＲ": "英語では「ＥＧＦＲ」と訳されます",
		"東京":   "Tokyo",
	}}
	tt := NewTermTranslator(fake, nil, zerolog.Nop())

	terms, notices := tt.Terms(context.Background(), model.Criteria{
		Condition: "肺がん",
		Keyword:   "ＥＧＦＲ",
		Location:  " 東京 ",
	})

	assert.Empty(t, notices)
	assert.Equal(t, "lung cancer", terms.Condition)
	assert.Equal(t, "EGFR", terms.Keyword)
	assert.Equal(t, "Tokyo", terms.Location)
	assert.Equal(t, "英語では「ＥＧＦＲ」と訳されます", terms.RawKeyword)
	assert.Equal(t, 3, fake.calls)
}

func TestTermTranslatorSkipsBlankFields(t *testing.T) {
	fake := &fakeTranslator{responses: map[string]string{"肺がん": "lung cancer"}}
	tt := NewTermTranslator(fake, nil, zerolog.Nop())

	terms, notices := tt.Terms(context.Background(), model.Criteria{Condition: "肺がん", Keyword: "  "})
	assert.Empty(t, notices)
	assert.Equal(t, "lung cancer", terms.Condition)
	assert.Empty(t, terms.Keyword)
	assert.Empty(t, terms.Location)
	assert.Equal(t, 1, fake.calls)
}

func TestTermTranslatorFallsBackOnFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	fake := &fakeTranslator{err: errors.New("401 unauthorized")}
	tt := NewTermTranslator(fake, metrics, zerolog.Nop())

	term, raw, notice := tt.Term(context.Background(), "疾患名", "肺がん")
	assert.Equal(t, "肺がん", term)
	assert.Empty(t, raw)
	assert.Contains(t, notice, "疾患名")
	assert.Contains(t, notice, "肺がん")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Translations.WithLabelValues(string(JapaneseToEnglish), "error")))
}

func TestTermTranslatorFallsBackOnEmptyExtraction(t *testing.T) {
	fake := &fakeTranslator{responses: map[string]string{"肺がん": "   "}}
	tt := NewTermTranslator(fake, nil, zerolog.Nop())

	term, _, notice := tt.Term(context.Background(), "疾患名", "肺がん")
	assert.Equal(t, "肺がん", term)
	assert.NotEmpty(t, notice)
}
