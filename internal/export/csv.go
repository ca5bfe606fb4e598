// Package export serializes search results for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jjenkins/trialfinder/internal/model"
)

// locationSeparator joins facility names inside one cell. Facility names
// routinely contain commas, so line breaks inside a name are folded to
// spaces before joining.
const locationSeparator = "\n"

// lineBreaks normalizes CR and CRLF to LF, which is what encoding/csv
// hands back for a quoted field
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

var (
	JRCTHeader  = []string{"試験ID", "試験名", "対象疾患", "募集状況", "公表日", "詳細URL"}
	CTGovHeader = []string{"試験ID", "試験名", "Brief Summary", "Eligibility", "Locations", "ステータス", "Last Update Posted", "詳細URL"}
)

func cells(values ...string) []string {
	for i, v := range values {
		values[i] = lineBreaks.Replace(v)
	}
	return values
}

// joinLocations folds whitespace inside each facility name and drops blank
// names so the cell splits back into the same list
func joinLocations(locations []string) string {
	names := make([]string, 0, len(locations))
	for _, l := range locations {
		if name := strings.Join(strings.Fields(l), " "); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, locationSeparator)
}

func jrctRow(t model.JRCTTrial) []string {
	return cells(t.ID, t.Title, t.Condition, t.Status, t.PublishedDate, t.DetailURL)
}

func ctgovRow(t model.CTGovTrial) []string {
	return cells(
		t.NCTID,
		t.OfficialTitle,
		t.BriefSummary,
		t.Eligibility,
		joinLocations(t.Locations),
		t.OverallStatus,
		t.LastUpdatePosted,
		t.DetailURL,
	)
}

// WriteJRCTCSV writes jRCT records as UTF-8 CSV with a header row
func WriteJRCTCSV(w io.Writer, trials []model.JRCTTrial) error {
	rows := make([][]string, 0, len(trials))
	for _, t := range trials {
		rows = append(rows, jrctRow(t))
	}
	return writeCSV(w, JRCTHeader, rows)
}

// WriteCTGovCSV writes ClinicalTrials.gov records as UTF-8 CSV with a header row
func WriteCTGovCSV(w io.Writer, trials []model.CTGovTrial) error {
	rows := make([][]string, 0, len(trials))
	for _, t := range trials {
		rows = append(rows, ctgovRow(t))
	}
	return writeCSV(w, CTGovHeader, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// ReadJRCTCSV parses a file produced by WriteJRCTCSV
func ReadJRCTCSV(r io.Reader) ([]model.JRCTTrial, error) {
	records, err := readCSV(r, JRCTHeader)
	if err != nil {
		return nil, err
	}

	trials := make([]model.JRCTTrial, 0, len(records))
	for _, rec := range records {
		trials = append(trials, model.JRCTTrial{
			ID:            rec[0],
			Title:         rec[1],
			Condition:     rec[2],
			Status:        rec[3],
			PublishedDate: rec[4],
			DetailURL:     rec[5],
		})
	}
	return trials, nil
}

// ReadCTGovCSV parses a file produced by WriteCTGovCSV
func ReadCTGovCSV(r io.Reader) ([]model.CTGovTrial, error) {
	records, err := readCSV(r, CTGovHeader)
	if err != nil {
		return nil, err
	}

	trials := make([]model.CTGovTrial, 0, len(records))
	for _, rec := range records {
		var locations []string
		if rec[4] != "" {
			locations = strings.Split(rec[4], locationSeparator)
		}
		trials = append(trials, model.CTGovTrial{
			NCTID:            rec[0],
			OfficialTitle:    rec[1],
			BriefSummary:     rec[2],
			Eligibility:      rec[3],
			Locations:        locations,
			OverallStatus:    rec[5],
			LastUpdatePosted: rec[6],
			DetailURL:        rec[7],
		})
	}
	return trials, nil
}

func readCSV(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	got, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if !slices.Equal(got, header) {
		return nil, fmt.Errorf("unexpected csv header %v", got)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv rows: %w", err)
	}
	return records, nil
}
