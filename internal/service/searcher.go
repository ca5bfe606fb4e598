package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/rs/zerolog"
)

// StudySearcher queries ClinicalTrials.gov with English terms
type StudySearcher interface {
	Search(ctx context.Context, terms model.TranslatedTerms, recruitingOnly bool) ([]model.CTGovTrial, error)
}

// Searcher runs the search pipeline: jRCT, term translation, then
// ClinicalTrials.gov, strictly in that order
type Searcher struct {
	registry Registry
	terms    *TermTranslator
	studies  StudySearcher
	metrics  *Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// NewSearcher creates a new Searcher
func NewSearcher(registry Registry, terms *TermTranslator, studies StudySearcher, metrics *Metrics, log zerolog.Logger) *Searcher {
	return &Searcher{
		registry: registry,
		terms:    terms,
		studies:  studies,
		metrics:  metrics,
		log:      log.With().Str("component", "searcher").Logger(),
		now:      time.Now,
	}
}

// Search runs one search. jRCT failures degrade to an empty jRCT list
// with a notice; a ClinicalTrials.gov failure aborts the search.
func (s *Searcher) Search(ctx context.Context, criteria model.Criteria) (*model.SearchResult, error) {
	start := s.now()
	criteria = criteria.Trimmed()
	if criteria.IsEmpty() {
		s.metrics.search("invalid", 0)
		return nil, ErrEmptyCriteria
	}

	result := &model.SearchResult{Criteria: criteria, SearchedAt: start}

	s.log.Info().
		Str("condition", criteria.Condition).
		Str("keyword", criteria.Keyword).
		Str("location", criteria.Location).
		Bool("recruiting_only", criteria.RecruitingOnly).
		Msg("starting search")

	jrct, err := s.registry.Search(ctx, criteria)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.metrics.upstreamError("jrct")
		s.log.Error().Err(err).Msg("jRCT search failed")
		result.AddNotice(fmt.Sprintf("jRCTの検索中にエラーが発生しました: %v", err))
		jrct = nil
	}
	result.JRCT = jrct
	s.metrics.rows(string(model.SourceJRCT), len(jrct))

	terms, notices := s.terms.Terms(ctx, criteria)
	result.Terms = terms
	for _, n := range notices {
		result.AddNotice(n)
	}

	s.log.Info().
		Str("condition", terms.Condition).
		Str("keyword", terms.Keyword).
		Str("location", terms.Location).
		Msg("translated search terms")

	studies, err := s.studies.Search(ctx, terms, criteria.RecruitingOnly)
	if err != nil {
		s.metrics.upstreamError("ctgov")
		s.metrics.search("error", s.now().Sub(start).Seconds())
		return nil, fmt.Errorf("ClinicalTrials.gov search failed: %w", err)
	}
	result.CTGov = studies
	s.metrics.rows(string(model.SourceCTGov), len(studies))

	s.metrics.search("ok", s.now().Sub(start).Seconds())
	s.log.Info().
		Int("jrct_rows", len(result.JRCT)).
		Int("ctgov_rows", len(result.CTGov)).
		Dur("elapsed", s.now().Sub(start)).
		Msg("search complete")

	return result, nil
}
