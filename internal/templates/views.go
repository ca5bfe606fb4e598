// Package templates renders the trialfinder pages as templ components.
package templates

//go:generate templ generate

import (
	"fmt"
	"strings"

	"github.com/jjenkins/trialfinder/internal/model"
)

// RowLookup returns cached plain-Japanese translations for result rows
type RowLookup interface {
	Get(source model.Source, index int) (model.RowTranslation, bool)
}

// SearchPage is the view model for the search form and its results
type SearchPage struct {
	Criteria model.Criteria
	Result   *model.SearchResult
	Rows     RowLookup
	Error    string
}

func rowID(source model.Source, index int) string {
	return fmt.Sprintf("%s-row-%d", source, index)
}

func translatePath(source model.Source, index int) string {
	return fmt.Sprintf("/translate/%s/%d", source, index)
}

func cachedRow(rows RowLookup, source model.Source, index int) (model.RowTranslation, bool) {
	if rows == nil {
		return model.RowTranslation{}, false
	}
	return rows.Get(source, index)
}

// termsSummary lists the non-empty English search terms
func termsSummary(t model.TranslatedTerms) string {
	var parts []string
	for _, p := range [][2]string{{"疾患名", t.Condition}, {"キーワード", t.Keyword}, {"地域", t.Location}} {
		if p[1] != "" {
			parts = append(parts, p[0]+"="+p[1])
		}
	}
	return strings.Join(parts, " / ")
}
