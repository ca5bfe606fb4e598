package service

import (
	"context"
	"fmt"

	"github.com/jjenkins/trialfinder/internal/model"
)

// RowTranslator renders result rows into plain Japanese on demand
type RowTranslator struct {
	translator Translator
	metrics    *Metrics
}

// NewRowTranslator creates a RowTranslator
func NewRowTranslator(translator Translator, metrics *Metrics) *RowTranslator {
	return &RowTranslator{translator: translator, metrics: metrics}
}

// CTGov translates an English study's title and summary
func (r *RowTranslator) CTGov(ctx context.Context, trial model.CTGovTrial) (model.RowTranslation, error) {
	return r.translate(ctx, trial.OfficialTitle, trial.BriefSummary, EnglishToPlainJapanese)
}

// JRCT rewrites a jRCT row's title and condition in plain Japanese
func (r *RowTranslator) JRCT(ctx context.Context, trial model.JRCTTrial) (model.RowTranslation, error) {
	return r.translate(ctx, trial.Title, trial.Condition, JapaneseToPlainJapanese)
}

func (r *RowTranslator) translate(ctx context.Context, title, summary string, dir Direction) (model.RowTranslation, error) {
	var out model.RowTranslation
	var err error

	if title != "" {
		if out.Title, err = r.translator.Translate(ctx, title, dir); err != nil {
			r.metrics.translation(dir, "error")
			return model.RowTranslation{}, fmt.Errorf("failed to translate title: %w", err)
		}
		r.metrics.translation(dir, "ok")
	}
	if summary != "" {
		if out.Summary, err = r.translator.Translate(ctx, summary, dir); err != nil {
			r.metrics.translation(dir, "error")
			return model.RowTranslation{}, fmt.Errorf("failed to translate summary: %w", err)
		}
		r.metrics.translation(dir, "ok")
	}
	return out, nil
}
