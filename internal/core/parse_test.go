package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParse_CSV(t *testing.T) {
	data := []byte("Component Code,Component Name,Component Category\n" +
		"ME-601,Main Engine,Main Engine\n" +
		"AE-101,Aux Engine No.1,Auxiliary Engine\n")

	headers, rows, err := Parse(data, "components.csv", 0)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"Component Code", "Component Name", "Component Category"}
	if len(headers) != len(want) {
		t.Fatalf("headers = %v, want %v", headers, want)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("headers[%d] = %q, want %q", i, headers[i], want[i])
		}
	}

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Number != 1 || rows[1].Number != 2 {
		t.Errorf("row numbers = %d, %d, want 1, 2", rows[0].Number, rows[1].Number)
	}
	if rows[1].Values["Component Code"] != "AE-101" {
		t.Errorf("row 2 code = %q, want %q", rows[1].Values["Component Code"], "AE-101")
	}
}

func TestParse_HeadersVerbatim(t *testing.T) {
	// Case and whitespace in headers are preserved; matching against the
	// template is the validator's job.
	data := []byte("component code , Component Name\nME-601,Main Engine\n")

	headers, _, err := Parse(data, "f.csv", 0)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if headers[0] != "component code " {
		t.Errorf("headers[0] = %q, want verbatim %q", headers[0], "component code ")
	}
}

func TestParse_BOMStripped(t *testing.T) {
	data := []byte("\uFEFFComponent Code,Component Name\nME-601,Main Engine\n")

	headers, _, err := Parse(data, "f.csv", 0)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if headers[0] != "Component Code" {
		t.Errorf("headers[0] = %q, want BOM stripped", headers[0])
	}
}

func TestParse_EmptyRowsSkipped(t *testing.T) {
	data := []byte("Component Code,Component Name\n" +
		"ME-601,Main Engine\n" +
		",\n" +
		"   ,\n" +
		"AE-101,Aux Engine\n")

	_, rows, err := Parse(data, "f.csv", 0)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	// Numbers count surviving data rows, so they stay stable from
	// preview through commit.
	if rows[0].Number != 1 || rows[1].Number != 2 {
		t.Errorf("row numbers = %d, %d, want 1, 2", rows[0].Number, rows[1].Number)
	}
}

func TestParse_ShortRowPadded(t *testing.T) {
	data := []byte("Component Code,Component Name,Maker\nME-601,Main Engine\n")

	_, rows, err := Parse(data, "f.csv", 0)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	v, ok := rows[0].Values["Maker"]
	if !ok || v != "" {
		t.Errorf("missing trailing cell = %q (present=%v), want empty string", v, ok)
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"data.xls", "data.pdf", "data", "data.txt"} {
		_, _, err := Parse([]byte("a,b\n1,2\n"), name, 0)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Parse(%q) error = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestParse_EmptyFile(t *testing.T) {
	_, _, err := Parse([]byte(""), "f.csv", 0)
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Parse() error = %v, want ErrEmptyFile", err)
	}
}

func TestParse_FileTooLarge(t *testing.T) {
	_, _, err := Parse([]byte(strings.Repeat("x", 17)), "f.csv", 16)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Parse() error = %v, want ErrFileTooLarge", err)
	}

	// At the cap exactly is still accepted.
	if _, _, err := Parse([]byte(strings.Repeat("x", 16)), "f.csv", 16); errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Parse() at cap returned ErrFileTooLarge")
	}
}

func TestParse_DuplicateHeader(t *testing.T) {
	data := []byte("Item Code,Item Name,Item Code\nST-0033,Cotton Rags,ST-0034\n")
	_, _, err := Parse(data, "stores.csv", 0)
	if !errors.Is(err, ErrDuplicateHeader) {
		t.Fatalf("Parse() error = %v, want ErrDuplicateHeader", err)
	}
	if !strings.Contains(err.Error(), "Item Code") {
		t.Errorf("error %q does not name the duplicated column", err)
	}
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Sheet1"
	rows := [][]string{
		{"Item Code", "Item Name", "Category"},
		{"ST-0033", "Cotton Rags", "Engine Stores"},
		{"", "", ""},
		{"ST-0034", "Grease Gun", "Deck Stores"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	headers, parsed, err := Parse(buf.Bytes(), "stores.xlsx", 0)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if headers[0] != "Item Code" {
		t.Errorf("headers[0] = %q, want %q", headers[0], "Item Code")
	}
	if len(parsed) != 2 {
		t.Fatalf("len(rows) = %d, want 2 (empty row skipped)", len(parsed))
	}
	if parsed[1].Values["Item Name"] != "Grease Gun" {
		t.Errorf("row 2 Item Name = %q, want %q", parsed[1].Values["Item Name"], "Grease Gun")
	}
}

func TestParse_XLSXGarbage(t *testing.T) {
	_, _, err := Parse([]byte("this is not a zip archive"), "f.xlsx", 0)
	if err == nil {
		t.Fatal("Parse() expected error for corrupt workbook")
	}
}
