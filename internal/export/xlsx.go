package export

import (
	"fmt"
	"io"

	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	JRCTSheet  = "jRCT"
	CTGovSheet = "ClinicalTrials.gov"
)

// WriteXLSX writes both result sets into one workbook, one sheet per registry
func WriteXLSX(w io.Writer, result *model.SearchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", JRCTSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(CTGovSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	jrct := make([][]string, 0, len(result.JRCT))
	for _, t := range result.JRCT {
		jrct = append(jrct, jrctRow(t))
	}
	if err := writeSheet(f, JRCTSheet, JRCTHeader, jrct); err != nil {
		return err
	}

	ctgov := make([][]string, 0, len(result.CTGov))
	for _, t := range result.CTGov {
		ctgov = append(ctgov, ctgovRow(t))
	}
	if err := writeSheet(f, CTGovSheet, CTGovHeader, ctgov); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
