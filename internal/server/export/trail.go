// Package export renders a durable position trail as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	sheetName = "Trail"
)

var header = []string{"Recorded at (UTC)", "Latitude", "Longitude", "Accuracy (m)"}

// ContentType returns the MIME type for a supported format.
func ContentType(format string) (string, bool) {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8", true
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true
	}
	return "", false
}

// FileName is the download name for a trail exported at t.
func FileName(format string, t time.Time) string {
	return fmt.Sprintf("trail_%s.%s", t.UTC().Format("20060102_1504"), format)
}

// Write renders trail in format to w.
func Write(w io.Writer, format string, trail []models.Position) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, trail)
	case FormatXLSX:
		return WriteXLSX(w, trail)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func row(p models.Position) []string {
	acc := ""
	if p.Accuracy != nil {
		acc = strconv.FormatFloat(*p.Accuracy, 'f', 1, 64)
	}
	return []string{
		p.RecordedAt.UTC().Format(time.RFC3339),
		strconv.FormatFloat(p.Latitude, 'f', 6, 64),
		strconv.FormatFloat(p.Longitude, 'f', 6, 64),
		acc,
	}
}

// WriteCSV writes a UTF-8 CSV with a BOM so spreadsheet tools detect the
// encoding.
func WriteCSV(w io.Writer, trail []models.Position) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range trail {
		if err := cw.Write(row(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook with numeric coordinates.
func WriteXLSX(w io.Writer, trail []models.Position) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for i, p := range trail {
		r := i + 2
		values := []any{p.RecordedAt.UTC().Format(time.RFC3339), p.Latitude, p.Longitude, nil}
		if p.Accuracy != nil {
			values[3] = *p.Accuracy
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "C", 12)
	_ = f.SetColWidth(sheetName, "D", "D", 14)

	return f.Write(w)
}
