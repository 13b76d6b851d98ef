// Package export writes the filtered department table as CSV, XLSX or JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"anggaran/internal/core"
	"anggaran/internal/dataset"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// Sheet names of the XLSX workbook.
const (
	SheetDepartments = "Departments"
	SheetCategories  = "Categories"
	SheetTrend       = "Trend"
)

var departmentHeader = []string{"code", "name", "category", "amount", "amount_billions"}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("unknown export format %q: must be one of csv, xlsx, json", s)
	}
	return f, nil
}

func (f Format) IsValid() bool {
	switch f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return true
	}
	return false
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// FileName is the download name, e.g. anggaran_2025.csv.
func (f Format) FileName() string {
	return fmt.Sprintf("anggaran_%d.%s", dataset.Year, f)
}

// Write renders the export in format f. Filtered departments always form
// the main table; the XLSX workbook also carries the category and trend
// tables.
func Write(w io.Writer, f Format, t core.Tables, filtered []core.Department) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, filtered)
	case FormatXLSX:
		return WriteXLSX(w, t, filtered)
	case FormatJSON:
		return WriteJSON(w, filtered)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func departmentRecord(d core.Department) []string {
	return []string{d.Code, d.Name, d.Category, d.Amount.String(), d.AmountBillions.String()}
}

// WriteCSV writes a header row and one row per department. Invalid amounts
// are empty cells.
func WriteCSV(w io.Writer, rows []core.Department) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(departmentHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, d := range rows {
		if err := cw.Write(departmentRecord(d)); err != nil {
			return fmt.Errorf("write csv row %s: %w", d.Code, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteJSON writes the departments as a JSON array. Invalid amounts are null.
func WriteJSON(w io.Writer, rows []core.Department) error {
	if rows == nil {
		rows = []core.Department{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with the filtered departments, the category
// table and the trend table. Valid amounts are numeric cells.
func WriteXLSX(w io.Writer, t core.Tables, filtered []core.Department) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDepartments); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	deptRows := make([][]any, 0, len(filtered))
	for _, d := range filtered {
		deptRows = append(deptRows, []any{d.Code, d.Name, d.Category, cellAmount(d.Amount), cellAmount(d.AmountBillions)})
	}
	if err := writeSheet(f, SheetDepartments, departmentHeader, deptRows); err != nil {
		return err
	}

	catRows := make([][]any, 0, len(t.Categories))
	for _, c := range t.Categories {
		catRows = append(catRows, []any{c.Code, c.Label, cellAmount(c.Amount), cellAmount(c.AmountBillions)})
	}
	if _, err := f.NewSheet(SheetCategories); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetCategories, err)
	}
	if err := writeSheet(f, SheetCategories, []string{"code", "category", "amount", "amount_billions"}, catRows); err != nil {
		return err
	}

	trendRows := make([][]any, 0, len(t.Trend))
	for _, r := range t.Trend {
		trendRows = append(trendRows, []any{r.Year, r.Category, cellAmount(r.Amount), cellAmount(r.AmountBillions)})
	}
	if _, err := f.NewSheet(SheetTrend); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetTrend, err)
	}
	if err := writeSheet(f, SheetTrend, []string{"year", "category", "amount", "amount_billions"}, trendRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// cellAmount is a float for valid amounts and nil (an empty cell) otherwise.
func cellAmount(a core.Amount) any {
	if !a.Valid() {
		return nil
	}
	v, err := strconv.ParseFloat(a.String(), 64)
	if err != nil {
		return a.String()
	}
	return v
}
