package model

import "fmt"

// CTGovDetailBase is the public detail page prefix for ClinicalTrials.gov studies
const CTGovDetailBase = "https://clinicaltrials.gov/ct2/show/"

// JRCTTrial represents one row of the jRCT search results table
type JRCTTrial struct {
	ID            string
	Title         string
	Condition     string
	Status        string
	PublishedDate string
	DetailURL     string
}

// CTGovTrial represents a study returned by the ClinicalTrials.gov API
type CTGovTrial struct {
	NCTID            string
	OfficialTitle    string
	BriefSummary     string
	Eligibility      string
	Locations        []string
	OverallStatus    string
	LastUpdatePosted string
	DetailURL        string
}

// CTGovDetailURL derives the detail page for an NCT ID
func CTGovDetailURL(nctID string) string {
	if nctID == "" {
		return ""
	}
	return fmt.Sprintf("%s%s", CTGovDetailBase, nctID)
}
