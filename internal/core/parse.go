package core

// parse.go converts uploaded bytes into ordered raw rows. The format
// is dispatched on file extension: .csv for delimited text and .xlsx
// for spreadsheet workbooks. Header strings are preserved verbatim
// (case and whitespace) because the validator matches on exact header
// names; only a leading BOM is stripped.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultMaxUploadSize caps uploaded files to bound dry-run latency
// (20 MB) when the caller does not supply a limit.
const DefaultMaxUploadSize int64 = 20 * 1024 * 1024

// Parse converts file bytes into the verbatim header list and the
// ordered data rows. Rows that are entirely empty are dropped; row
// numbers count every remaining data row starting at 1 and stay
// stable through preview and commit. A maxSize of zero or less falls
// back to DefaultMaxUploadSize.
func Parse(fileData []byte, fileName string, maxSize int64) ([]string, []RawRow, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if int64(len(fileData)) > maxSize {
		return nil, nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(fileData), maxSize)
	}

	var records [][]string
	var err error

	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv":
		records, err = parseCSV(fileData)
	case ".xlsx":
		records, err = parseXLSX(fileData)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, nil, err
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: no header row", ErrEmptyFile)
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = stripBOM(headers[0])
	}

	// Duplicate headers would silently collapse into one value per row,
	// so they are rejected up front.
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if h == "" {
			continue
		}
		if seen[h] {
			return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, h)
		}
		seen[h] = true
	}

	rows := make([]RawRow, 0, len(records)-1)
	n := 0
	for _, rec := range records[1:] {
		if isEmptyRow(rec) {
			continue
		}
		n++
		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(rec) {
				values[h] = rec[i]
			} else {
				values[h] = ""
			}
		}
		rows = append(rows, RawRow{Number: n, Values: values})
	}

	return headers, rows, nil
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func parseXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrEmptyFile)
	}

	// Data always comes from the first sheet; any metadata sheets from
	// our own template are ignored.
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return records, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
