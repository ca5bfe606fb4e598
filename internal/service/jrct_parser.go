package service

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jjenkins/trialfinder/internal/model"
)

// resultsRowSelector locates data rows of the jRCT search results table
const resultsRowSelector = "table.table-search tbody tr"

// jRCT results have six fixed columns
const resultsColumns = 6

// ParseResultsTable extracts trial rows from a jRCT search results page.
// A page with no results table, or an empty one, yields no rows and no error.
func ParseResultsTable(r io.Reader, base *url.URL) ([]model.JRCTTrial, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	trials := []model.JRCTTrial{}
	doc.Find(resultsRowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < resultsColumns {
			return
		}

		trial := model.JRCTTrial{
			ID:            cellText(cells.Eq(0)),
			Title:         cellText(cells.Eq(1)),
			Condition:     cellText(cells.Eq(2)),
			Status:        cellText(cells.Eq(3)),
			PublishedDate: cellText(cells.Eq(4)),
		}

		href, ok := cells.Eq(5).Find("a[href]").First().Attr("href")
		if !ok {
			href, ok = row.Find("a[href]").First().Attr("href")
		}
		if ok {
			trial.DetailURL = resolveURL(base, href)
		}

		if trial.ID == "" && trial.Title == "" {
			return
		}
		trials = append(trials, trial)
	})

	return trials, nil
}

// cellText returns the cell's text with internal whitespace collapsed
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
