package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jjenkins/trialfinder/internal/export"
	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/spf13/cobra"
)

const (
	titleColumnWidth   = 60
	summaryColumnWidth = 50
)

var (
	searchCondition   string
	searchKeyword     string
	searchLocation    string
	searchAllStatuses bool
	searchCSVDir      string
	searchXLSX        string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search from the command line",
	Long: `Search jRCT with the Japanese terms, translate them to English and
search ClinicalTrials.gov. Results are printed as tables.

Examples:
  # Recruiting lung cancer trials in Tokyo
  trialfinder search --condition 肺がん --location 東京

  # Include trials in every status and save CSV files
  trialfinder search --condition 乳がん --all-statuses --csv-dir ./out`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchCondition, "condition", "c", "", "Disease name (Japanese)")
	searchCmd.Flags().StringVarP(&searchKeyword, "keyword", "k", "", "Free keyword (Japanese)")
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "Location (Japanese)")
	searchCmd.Flags().BoolVar(&searchAllStatuses, "all-statuses", false, "Include trials that are not recruiting")
	searchCmd.Flags().StringVar(&searchCSVDir, "csv-dir", "", "Write jrct_trials.csv and clinical_trials.csv to this directory")
	searchCmd.Flags().StringVar(&searchXLSX, "xlsx", "", "Write both result sets to this .xlsx file")
}

func runSearch(cmd *cobra.Command, args []string) error {
	deps, err := buildComponents(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	result, err := deps.searcher.Search(cmd.Context(), model.Criteria{
		Condition:      searchCondition,
		Keyword:        searchKeyword,
		Location:       searchLocation,
		RecruitingOnly: !searchAllStatuses,
	})
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), result)
	return writeExports(result, searchCSVDir, searchXLSX)
}

func printResult(w io.Writer, r *model.SearchResult) {
	for _, n := range r.Notices {
		fmt.Fprintf(w, "! %s\n", n)
	}

	fmt.Fprintf(w, "\njRCT: %d 件\n", len(r.JRCT))
	if len(r.JRCT) > 0 {
		t := newTable(w)
		t.AppendHeader(table.Row{"試験ID", "試験名", "対象疾患", "募集状況", "公表日"})
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: titleColumnWidth}})
		for _, trial := range r.JRCT {
			t.AppendRow(table.Row{trial.ID, trial.Title, trial.Condition, trial.Status, trial.PublishedDate})
		}
		t.Render()
	}

	fmt.Fprintf(w, "\nClinicalTrials.gov: %d 件 (%s)\n", len(r.CTGov), termsLine(r.Terms))
	if len(r.CTGov) > 0 {
		t := newTable(w)
		t.AppendHeader(table.Row{"NCT ID", "Title", "Status", "Last Update", "Locations"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, WidthMax: titleColumnWidth},
			{Number: 5, WidthMax: summaryColumnWidth},
		})
		for _, trial := range r.CTGov {
			t.AppendRow(table.Row{
				trial.NCTID,
				trial.OfficialTitle,
				trial.OverallStatus,
				trial.LastUpdatePosted,
				strings.Join(trial.Locations, "\n"),
			})
		}
		t.Render()
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = true
	return t
}

func termsLine(terms model.TranslatedTerms) string {
	var parts []string
	for _, p := range []struct{ label, value string }{
		{"condition", terms.Condition},
		{"keyword", terms.Keyword},
		{"location", terms.Location},
	} {
		if p.value != "" {
			parts = append(parts, p.label+"="+p.value)
		}
	}
	if len(parts) == 0 {
		return "no terms"
	}
	return strings.Join(parts, ", ")
}

func writeExports(r *model.SearchResult, csvDir, xlsxPath string) error {
	if csvDir != "" {
		if err := os.MkdirAll(csvDir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", csvDir, err)
		}
		if err := writeFile(filepath.Join(csvDir, "jrct_trials.csv"), func(w io.Writer) error {
			return export.WriteJRCTCSV(w, r.JRCT)
		}); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(csvDir, "clinical_trials.csv"), func(w io.Writer) error {
			return export.WriteCTGovCSV(w, r.CTGov)
		}); err != nil {
			return err
		}
	}

	if xlsxPath != "" {
		return writeFile(xlsxPath, func(w io.Writer) error {
			return export.WriteXLSX(w, r)
		})
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
