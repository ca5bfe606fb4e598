package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	trials []model.JRCTTrial
	err    error
	got    model.Criteria
	order  *[]string
}

func (f *fakeRegistry) Search(_ context.Context, c model.Criteria) ([]model.JRCTTrial, error) {
	f.got = c
	if f.order != nil {
		*f.order = append(*f.order, "jrct")
	}
	return f.trials, f.err
}

type fakeStudies struct {
	trials     []model.CTGovTrial
	err        error
	got        model.TranslatedTerms
	recruiting bool
	order      *[]string
}

func (f *fakeStudies) Search(_ context.Context, terms model.TranslatedTerms, recruitingOnly bool) ([]model.CTGovTrial, error) {
	f.got = terms
	f.recruiting = recruitingOnly
	if f.order != nil {
		*f.order = append(*f.order, "ctgov")
	}
	return f.trials, f.err
}

type orderedTranslator struct {
	fakeTranslator
	order *[]string
}

func (o *orderedTranslator) Translate(ctx context.Context, text string, dir Direction) (string, error) {
	*o.order = append(*o.order, "translate")
	return o.fakeTranslator.Translate(ctx, text, dir)
}

func newTestSearcher(reg Registry, tr Translator, studies StudySearcher, metrics *Metrics) *Searcher {
	s := NewSearcher(reg, NewTermTranslator(tr, metrics, zerolog.Nop()), studies, metrics, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestSearcherRunsPipelineInOrder(t *testing.T) {
	var order []string
	reg := &fakeRegistry{trials: []model.JRCTTrial{{ID: "jRCT1", Title: "肺がんの研究"}}, order: &order}
	tr := &orderedTranslator{
		fakeTranslator: fakeTranslator{responses: map[string]string{"肺がん": "「lung cancer」", "東京": "Tokyo"}},
		order:          &order,
	}
	studies := &fakeStudies{trials: []model.CTGovTrial{{NCTID: "NCT1"}}, order: &order}
	metrics := NewMetrics(prometheus.NewRegistry())

	s := newTestSearcher(reg, tr, studies, metrics)
	result, err := s.Search(context.Background(), model.Criteria{
		Condition:      " 肺がん ",
		Location:       "東京",
		RecruitingOnly: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"jrct", "translate", "translate", "ctgov"}, order)
	assert.Equal(t, "肺がん", reg.got.Condition)
	assert.Equal(t, model.TranslatedTerms{
		Condition:    "lung cancer",
		Location:     "Tokyo",
		RawCondition: "「lung cancer」",
		RawLocation:  "Tokyo",
	}, studies.got)
	assert.True(t, studies.recruiting)

	assert.Len(t, result.JRCT, 1)
	assert.Len(t, result.CTGov, 1)
	assert.Empty(t, result.Notices)
	assert.Equal(t, "肺がん", result.Criteria.Condition)
	assert.Equal(t, 2025, result.SearchedAt.Year())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Searches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rows.WithLabelValues("jrct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rows.WithLabelValues("ctgov")))
}

func TestSearcherRejectsEmptyCriteria(t *testing.T) {
	reg := &fakeRegistry{}
	studies := &fakeStudies{}
	s := newTestSearcher(reg, &fakeTranslator{}, studies, nil)

	_, err := s.Search(context.Background(), model.Criteria{Condition: "  ", RecruitingOnly: true})
	assert.ErrorIs(t, err, ErrEmptyCriteria)
	assert.Empty(t, reg.got.Condition)
}

func TestSearcherJRCTFailureIsRecoverable(t *testing.T) {
	reg := &fakeRegistry{err: errors.New("results table not found")}
	tr := &fakeTranslator{responses: map[string]string{"乳がん": "breast cancer"}}
	studies := &fakeStudies{trials: []model.CTGovTrial{{NCTID: "NCT9"}}}
	metrics := NewMetrics(prometheus.NewRegistry())

	s := newTestSearcher(reg, tr, studies, metrics)
	result, err := s.Search(context.Background(), model.Criteria{Condition: "乳がん"})
	require.NoError(t, err)

	assert.Empty(t, result.JRCT)
	assert.Len(t, result.CTGov, 1)
	require.Len(t, result.Notices, 1)
	assert.Contains(t, result.Notices[0], "results table not found")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamErrors.WithLabelValues("jrct")))
}

func TestSearcherCTGovStatusAborts(t *testing.T) {
	reg := &fakeRegistry{trials: []model.JRCTTrial{{ID: "jRCT1"}}}
	tr := &fakeTranslator{responses: map[string]string{"乳がん": "breast cancer"}}
	studies := &fakeStudies{err: &StatusError{Service: "ClinicalTrials.gov", StatusCode: http.StatusTooManyRequests}}
	metrics := NewMetrics(prometheus.NewRegistry())

	s := newTestSearcher(reg, tr, studies, metrics)
	result, err := s.Search(context.Background(), model.Criteria{Condition: "乳がん"})
	require.Error(t, err)
	assert.Nil(t, result)

	se, ok := AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Searches.WithLabelValues("error")))
}

func TestSearcherEmptyResultsAreNotErrors(t *testing.T) {
	reg := &fakeRegistry{trials: []model.JRCTTrial{}}
	tr := &fakeTranslator{responses: map[string]string{"希少疾患": "rare disease"}}
	studies := &fakeStudies{}

	s := newTestSearcher(reg, tr, studies, nil)
	result, err := s.Search(context.Background(), model.Criteria{Keyword: "希少疾患"})
	require.NoError(t, err)
	assert.Empty(t, result.JRCT)
	assert.Empty(t, result.CTGov)
	assert.Empty(t, result.Notices)
}

func TestRowTranslator(t *testing.T) {
	tr := &fakeTranslator{responses: map[string]string{
		"Osimertinib Study":   "オシメルチニブの研究",
		"A phase 3 study.":    "第3相の研究です。",
		"非小細胞肺癌を対象とした試験": "肺がんの一種を調べる研究",
	}}
	rt := NewRowTranslator(tr, nil)

	out, err := rt.CTGov(context.Background(), model.CTGovTrial{OfficialTitle: "Osimertinib Study", BriefSummary: "A phase 3 study."})
	require.NoError(t, err)
	assert.Equal(t, model.RowTranslation{Title: "オシメルチニブの研究", Summary: "第3相の研究です。"}, out)

	out, err = rt.JRCT(context.Background(), model.JRCTTrial{Title: "非小細胞肺癌を対象とした試験"})
	require.NoError(t, err)
	assert.Equal(t, "肺がんの一種を調べる研究", out.Title)
	assert.Empty(t, out.Summary)
	assert.Equal(t, 3, tr.calls)

	_, err = NewRowTranslator(&fakeTranslator{err: errors.New("down")}, nil).CTGov(context.Background(), model.CTGovTrial{OfficialTitle: "x"})
	assert.Error(t, err)
}
