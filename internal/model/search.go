package model

import (
	"strings"
	"time"
)

// Source identifies which registry a record came from
type Source string

const (
	SourceJRCT  Source = "jrct"
	SourceCTGov Source = "ctgov"
)

// ParseSource maps a route segment to a Source
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceJRCT, SourceCTGov:
		return Source(s), true
	default:
		return "", false
	}
}

// Criteria holds the user's search form input (Japanese free text)
type Criteria struct {
	Condition      string
	Keyword        string
	Location       string
	RecruitingOnly bool
}

// Trimmed returns a copy with surrounding whitespace removed from every field
func (c Criteria) Trimmed() Criteria {
	c.Condition = strings.TrimSpace(c.Condition)
	c.Keyword = strings.TrimSpace(c.Keyword)
	c.Location = strings.TrimSpace(c.Location)
	return c
}

// IsEmpty reports whether every text field is blank
func (c Criteria) IsEmpty() bool {
	t := c.Trimmed()
	return t.Condition == "" && t.Keyword == "" && t.Location == ""
}

// TranslatedTerms holds the English query terms derived from Criteria
type TranslatedTerms struct {
	Condition string
	Keyword   string
	Location  string

	// Raw translator responses before phrase extraction
	RawCondition string
	RawKeyword   string
	RawLocation  string
}

// SearchResult is the outcome of one search click
type SearchResult struct {
	Criteria   Criteria
	Terms      TranslatedTerms
	JRCT       []JRCTTrial
	CTGov      []CTGovTrial
	Notices    []string
	SearchedAt time.Time
}

// AddNotice records a user-visible warning
func (r *SearchResult) AddNotice(msg string) {
	r.Notices = append(r.Notices, msg)
}

// RowTranslation is a plain-Japanese rendering of one result row
type RowTranslation struct {
	Title   string
	Summary string
}
