package core

import (
	"testing"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain value", input: "ME-601", want: "ME-601"},
		{name: "surrounding whitespace", input: "  ME-601  ", want: "ME-601"},
		{name: "excel formula wrapper", input: `="ME-601"`, want: "ME-601"},
		{name: "leading equals", input: "=ME-601", want: "ME-601"},
		{name: "double quotes", input: `"Main Engine"`, want: "Main Engine"},
		{name: "single quotes", input: "'PCS'", want: "PCS"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{name: "integer", input: "4", want: 4, wantOK: true},
		{name: "decimal", input: "2.5", want: 2.5, wantOK: true},
		{name: "negative", input: "-3", want: -3, wantOK: true},
		{name: "thousands separator", input: "1,250", want: 1250, wantOK: true},
		{name: "dollar sign", input: "$12.50", want: 12.5, wantOK: true},
		{name: "euro sign", input: "€99", want: 99, wantOK: true},
		{name: "accounting negative", input: "(15)", want: -15, wantOK: true},
		{name: "scientific notation", input: "1e3", want: 1000, wantOK: true},
		{name: "leading decimal point", input: ".5", want: 0.5, wantOK: true},
		{name: "empty", input: "", wantOK: false},
		{name: "text", input: "four", wantOK: false},
		{name: "mixed", input: "12 pcs", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ToNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ToNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestToYesNo(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "yes", input: "yes", want: "Yes", wantOK: true},
		{name: "uppercase YES", input: "YES", want: "Yes", wantOK: true},
		{name: "y", input: "y", want: "Yes", wantOK: true},
		{name: "true", input: "true", want: "Yes", wantOK: true},
		{name: "one", input: "1", want: "Yes", wantOK: true},
		{name: "no", input: "No", want: "No", wantOK: true},
		{name: "n", input: "n", want: "No", wantOK: true},
		{name: "false", input: "FALSE", want: "No", wantOK: true},
		{name: "zero", input: "0", want: "No", wantOK: true},
		{name: "padded", input: "  yes ", want: "Yes", wantOK: true},
		{name: "maybe", input: "maybe", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToYesNo(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ToYesNo(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ToYesNo(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalEnum(t *testing.T) {
	domain := []string{"Main Engine", "Electrical", "Safety"}

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "exact match", input: "Electrical", want: "Electrical", wantOK: true},
		{name: "lowercase", input: "main engine", want: "Main Engine", wantOK: true},
		{name: "uppercase", input: "SAFETY", want: "Safety", wantOK: true},
		{name: "not in domain", input: "Unknown", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalEnum(tt.input, domain)
			if ok != tt.wantOK {
				t.Fatalf("CanonicalEnum(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("CanonicalEnum(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	valid := []byte("Item Code,Item Name\nST-01,Rags")
	if got := sanitizeUTF8(valid); string(got) != string(valid) {
		t.Errorf("sanitizeUTF8 changed valid input: %q", got)
	}

	// 0xFF is never valid UTF-8.
	invalid := []byte{'a', 0xFF, 'b'}
	got := sanitizeUTF8(invalid)
	if string(got) != "a\uFFFDb" {
		t.Errorf("sanitizeUTF8(%v) = %q, want %q", invalid, got, "a\uFFFDb")
	}
}

func TestStripBOM(t *testing.T) {
	if got := stripBOM("\uFEFFComponent Code"); got != "Component Code" {
		t.Errorf("stripBOM = %q, want %q", got, "Component Code")
	}
	if got := stripBOM("Component Code"); got != "Component Code" {
		t.Errorf("stripBOM changed clean input: %q", got)
	}
}
