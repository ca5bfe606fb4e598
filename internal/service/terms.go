package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/rs/zerolog"
)

// TermTranslator turns Japanese form input into English query terms
type TermTranslator struct {
	translator Translator
	metrics    *Metrics
	log        zerolog.Logger
}

// NewTermTranslator creates a TermTranslator
func NewTermTranslator(translator Translator, metrics *Metrics, log zerolog.Logger) *TermTranslator {
	return &TermTranslator{translator: translator, metrics: metrics, log: log}
}

// Term translates one field. Blank input never reaches the translator.
// A failed or empty translation falls back to the original text and
// returns a notice describing what happened.
func (t *TermTranslator) Term(ctx context.Context, label, text string) (term, raw, notice string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", ""
	}

	raw, err := t.translator.Translate(ctx, text, JapaneseToEnglish)
	if err != nil {
		t.metrics.translation(JapaneseToEnglish, "error")
		t.log.Warn().Err(err).Str("field", label).Msg("translation failed, using original text")
		return text, "", fmt.Sprintf("%sの英訳に失敗したため、入力値「%s」をそのまま検索に使用しました。", label, text)
	}
	t.metrics.translation(JapaneseToEnglish, "ok")

	term = strings.TrimSpace(ExtractPhrase(NormalizeTranslation(raw)))
	if term == "" {
		return text, raw, fmt.Sprintf("%sの英訳が空だったため、入力値「%s」をそのまま検索に使用しました。", label, text)
	}
	return term, raw, ""
}

// Terms translates every field of criteria in sequence
func (t *TermTranslator) Terms(ctx context.Context, criteria model.Criteria) (model.TranslatedTerms, []string) {
	var terms model.TranslatedTerms
	var notices []string

	add := func(n string) {
		if n != "" {
			notices = append(notices, n)
		}
	}

	var n string
	terms.Condition, terms.RawCondition, n = t.Term(ctx, "疾患名", criteria.Condition)
	add(n)
	terms.Keyword, terms.RawKeyword, n = t.Term(ctx, "キーワード", criteria.Keyword)
	add(n)
	terms.Location, terms.RawLocation, n = t.Term(ctx, "地域", criteria.Location)
	add(n)

	return terms, notices
}
