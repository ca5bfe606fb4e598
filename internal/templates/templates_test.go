package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowMap map[model.Source]map[int]model.RowTranslation

func (m rowMap) Get(source model.Source, index int) (model.RowTranslation, bool) {
	t, ok := m[source][index]
	return t, ok
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestHomeRendersForm(t *testing.T) {
	html := render(t, Home())
	assert.Contains(t, html, `<form class="search" method="post" action="/search">`)
	assert.Contains(t, html, `name="condition"`)
	assert.Contains(t, html, `name="keyword"`)
	assert.Contains(t, html, `name="location"`)
	assert.Contains(t, html, `name="recruiting" value="1" checked`)
}

func TestSearchRendersResults(t *testing.T) {
	result := &model.SearchResult{
		Terms: model.TranslatedTerms{Condition: "lung cancer", Location: "Tokyo"},
		JRCT: []model.JRCTTrial{{
			ID:        "jRCT2031230001",
			Title:     "肺癌<script>alert(1)</script>",
			DetailURL: "https://jrct.mhlw.go.jp/latest-detail/jRCT2031230001",
		}},
		CTGov: []model.CTGovTrial{
			{NCTID: "NCT01234567", OfficialTitle: "Study A", Locations: []string{"Tokyo Hospital", "Osaka Clinic"}, DetailURL: "https://clinicaltrials.gov/ct2/show/NCT01234567"},
			{NCTID: "NCT07654321", OfficialTitle: "Study B", DetailURL: "javascript:alert(1)"},
		},
		Notices: []string{"キーワードの英訳に失敗しました"},
	}
	rows := rowMap{model.SourceCTGov: {0: {Title: "研究A", Summary: "やさしい説明"}}}

	html := render(t, Search(SearchPage{
		Criteria: model.Criteria{Condition: "肺がん", RecruitingOnly: false},
		Result:   result,
		Rows:     rows,
	}))

	assert.Contains(t, html, `value="肺がん"`)
	assert.NotContains(t, html, `value="1" checked`)
	assert.Contains(t, html, "キーワードの英訳に失敗しました")
	assert.Contains(t, html, "検索件数: 1 件")
	assert.Contains(t, html, "検索件数: 2 件")
	assert.Contains(t, html, "疾患名=lung cancer / 地域=Tokyo")
	assert.Contains(t, html, "Tokyo Hospital, Osaka Clinic")
	assert.Contains(t, html, `href="https://clinicaltrials.gov/ct2/show/NCT01234567"`)
	assert.NotContains(t, html, "javascript:alert")
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")

	// Cached row shows its translation, others show a button
	assert.Contains(t, html, "研究A")
	assert.Contains(t, html, `hx-post="/translate/ctgov/1"`)
	assert.NotContains(t, html, `hx-post="/translate/ctgov/0"`)
	assert.Contains(t, html, `hx-post="/translate/jrct/0"`)
	assert.Contains(t, html, `href="/export/ctgov.csv"`)
}

func TestSearchRendersNotFound(t *testing.T) {
	html := render(t, Search(SearchPage{Result: &model.SearchResult{}}))
	assert.Contains(t, html, "jRCTで該当する試験は見つかりませんでした。")
	assert.Contains(t, html, "ClinicalTrials.gov で該当する試験は見つかりませんでした。")
	assert.NotContains(t, html, `class="error"`)
}

func TestSearchRendersError(t *testing.T) {
	html := render(t, Search(SearchPage{Error: "ClinicalTrials.gov returned HTTP 503"}))
	assert.Contains(t, html, `<div class="error" role="alert">ClinicalTrials.gov returned HTTP 503</div>`)
	assert.NotContains(t, html, "検索件数")
}

func TestRowTranslationAndFragment(t *testing.T) {
	html := render(t, RowTranslation(model.RowTranslation{Title: "題名"}))
	assert.Equal(t, `<div class="plain"><p><strong>題名</strong></p></div>`, html)

	html = render(t, Fragment("error", "翻訳に失敗しました"))
	assert.Equal(t, `<div class="error">翻訳に失敗しました</div>`, html)
}

func TestLayoutWrapsChildren(t *testing.T) {
	var sb strings.Builder
	ctx := templ.WithChildren(context.Background(), Fragment("notice", "本文"))
	require.NoError(t, Layout("題<名>").Render(ctx, &sb))

	html := sb.String()
	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "<title>題&lt;名&gt;</title>")
	assert.Contains(t, html, `<h1>臨床試験検索 (jRCT / ClinicalTrials.gov)</h1><div class="notice">本文</div></body>`)
}

func TestTermsSummarySkipsEmptyTerms(t *testing.T) {
	assert.Equal(t, "", termsSummary(model.TranslatedTerms{}))
	assert.Equal(t, "キーワード=EGFR", termsSummary(model.TranslatedTerms{Keyword: "EGFR"}))
}
