package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"anggaran/internal/core"
	"anggaran/internal/dataset"
)

func fixtureRows() []core.Department {
	return core.DeriveDepartments([]core.Department{
		{Code: "1.02.0.00.0.00.01.0000", Name: "Dinas Kesehatan", Category: core.CategoryMandatoryService, Amount: core.NewAmount(165156847795)},
		{Code: "9.01", Name: "Dinas, \"Uji\"", Category: core.CategoryOther, Amount: core.InvalidAmount()},
	})
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": FormatCSV, "XLSX": FormatXLSX, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}

func TestFormatMetadata(t *testing.T) {
	tests := []struct {
		f        Format
		name     string
		mimePart string
	}{
		{FormatCSV, "anggaran_2025.csv", "text/csv"},
		{FormatXLSX, "anggaran_2025.xlsx", "spreadsheetml"},
		{FormatJSON, "anggaran_2025.json", "application/json"},
	}
	for _, tt := range tests {
		if tt.f.FileName() != tt.name {
			t.Errorf("%s: FileName() = %s", tt.f, tt.f.FileName())
		}
		if !strings.Contains(tt.f.ContentType(), tt.mimePart) {
			t.Errorf("%s: ContentType() = %s", tt.f, tt.f.ContentType())
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, fixtureRows()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "code,name,category,amount,amount_billions" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][3] != "165156847795" || records[1][4] != "165.156847795" {
		t.Errorf("unexpected amounts %v", records[1])
	}
	if records[2][1] != "Dinas, \"Uji\"" || records[2][3] != "" || records[2][4] != "" {
		t.Errorf("invalid amounts should be empty cells, got %v", records[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "code,name,category,amount,amount_billions" {
		t.Errorf("expected only the header, got %q", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, fixtureRows()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(got))
	}
	if got[0]["name"] != "Dinas Kesehatan" || got[0]["amount"] != float64(165156847795) {
		t.Errorf("unexpected first object %v", got[0])
	}
	if got[1]["amount"] != nil || got[1]["amount_billions"] != nil {
		t.Errorf("invalid amounts should be null, got %v", got[1])
	}

	buf.Reset()
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON(nil): %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty export should be [], got %q", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	tables := dataset.Static()
	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, tables, fixtureRows()); err != nil {
		t.Fatalf("Write xlsx: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if strings.Join(sheets, ",") != "Departments,Categories,Trend" {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows(SheetDepartments)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "code" || rows[1][1] != "Dinas Kesehatan" {
		t.Fatalf("unexpected department rows %v", rows)
	}

	cats, _ := f.GetRows(SheetCategories)
	if len(cats) != 1+len(tables.Categories) {
		t.Errorf("expected %d category rows, got %d", 1+len(tables.Categories), len(cats))
	}
	trend, _ := f.GetRows(SheetTrend)
	if len(trend) != 1+len(tables.Trend) || trend[1][0] != "2023" {
		t.Errorf("unexpected trend rows %v", trend)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Format("pdf"), core.Tables{}, nil); err == nil {
		t.Error("expected error")
	}
}
