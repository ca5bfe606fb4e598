package handlers

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/trialfinder/internal/export"
	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/jjenkins/trialfinder/internal/store"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxFile        = "results.xlsx"
)

var csvFilenames = map[model.Source]string{
	model.SourceJRCT:  "jrct_trials.csv",
	model.SourceCTGov: "clinical_trials.csv",
}

// ExportHandler serves the session's last result as jrct.csv, ctgov.csv
// or results.xlsx
func ExportHandler(sessions *store.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file := c.Params("file")

		var source model.Source
		if file != xlsxFile {
			name, ok := strings.CutSuffix(file, ".csv")
			if !ok {
				return c.Status(fiber.StatusNotFound).SendString("Unknown export")
			}
			if source, ok = model.ParseSource(name); !ok {
				return c.Status(fiber.StatusNotFound).SendString("Unknown export")
			}
		}

		sess, ok := existingSession(c, sessions)
		if !ok || sess.Result() == nil {
			return c.Status(fiber.StatusNotFound).SendString("No search results to export")
		}
		result := sess.Result()

		var buf bytes.Buffer
		var err error
		switch {
		case file == xlsxFile:
			err = export.WriteXLSX(&buf, result)
		case source == model.SourceJRCT:
			err = export.WriteJRCTCSV(&buf, result.JRCT)
		default:
			err = export.WriteCTGovCSV(&buf, result.CTGov)
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error exporting results")
		}

		if file == xlsxFile {
			c.Attachment("clinical_trials.xlsx")
			c.Set(fiber.HeaderContentType, xlsxContentType)
		} else {
			c.Attachment(csvFilenames[source])
			c.Set(fiber.HeaderContentType, csvContentType)
		}
		return c.Send(buf.Bytes())
	}
}
