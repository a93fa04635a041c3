package core

// convert.go handles the messy reality of user-provided spreadsheet
// data: currency symbols and thousands separators in numbers, assorted
// Yes/No spellings, Excel formula prefixes (="value"), and files that
// are not valid UTF-8.

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// numericRegex validates a numeric string after cleanup. Matches
// integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes, and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// ToNumber parses a cell as a number, tolerating currency symbols,
// thousands separators, and accounting-style negatives "(123.45)".
// Returns ok=false for anything that is not numeric.
func ToNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ToYesNo canonicalizes a flag cell to "Yes" or "No". Accepts
// true/false, t/f, y/n, and 1/0 in any casing.
func ToYesNo(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "t", "1":
		return "Yes", true
	case "no", "n", "false", "f", "0":
		return "No", true
	}
	return "", false
}

// CanonicalEnum matches value case-insensitively against a closed
// domain and returns the canonical casing.
func CanonicalEnum(value string, domain []string) (string, bool) {
	for _, d := range domain {
		if strings.EqualFold(d, value) {
			return d, true
		}
	}
	return "", false
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode
// replacement character so the CSV reader never chokes on legacy
// encodings.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

// stripBOM removes a leading UTF-8 byte order mark from a header cell.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
