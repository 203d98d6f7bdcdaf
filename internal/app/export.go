package app

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"estate_dashboard/internal/domain"
)

const (
	CSVFileName  = "filtered_listings.csv"
	XLSXFileName = "filtered_listings.xlsx"
	xlsxSheet    = "Listings"
)

// ExportHeader is the fixed column order of every export.
var ExportHeader = []string{"Title", "Price (€)", "Rooms", "Bathrooms", "Surface (m²)", "City"}

func exportRecord(r domain.ListingRow) []string {
	return []string{
		r.Title,
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		strconv.Itoa(r.Rooms),
		strconv.Itoa(r.Bathrooms),
		strconv.FormatFloat(r.Surface, 'f', -1, 64),
		r.City,
	}
}

// ExportCSV renders rows as UTF-8 comma-separated text with a header row.
func ExportCSV(rows []domain.ListingRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ExportHeader); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(exportRecord(r)); err != nil {
			return nil, fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders the same table as ExportCSV into a single-sheet workbook.
func ExportXLSX(rows []domain.ListingRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(ExportHeader), 1)
	if err != nil {
		return nil, fmt.Errorf("xlsx: header range: %w", err)
	}
	header := make([]any, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: write header: %w", err)
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("xlsx: style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx: row %d: %w", i+1, err)
		}
		values := []any{r.Title, r.Price, r.Rooms, r.Bathrooms, r.Surface, r.City}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 48); err != nil {
		return nil, fmt.Errorf("xlsx: title width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: encode: %w", err)
	}
	return buf.Bytes(), nil
}
