package normalize

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		want   float64
		wantOK bool
	}{
		{"shekel with thousands separator", "₪1,234", 1234, true},
		{"plain number string", "12500", 12500, true},
		{"decimal string", "1234.50", 1234.50, true},
		{"decimal comma", "1234,50", 1234.50, true},
		{"thousands and decimal", "1,234.50", 1234.50, true},
		{"float value", 1999.0, 1999, true},
		{"int value", 450, 450, true},
		{"zero is absent", "0", 0, false},
		{"zero float is absent", 0.0, 0, false},
		{"negative is absent", "-10", 0, false},
		{"contact us placeholder", "צור קשר", 0, false},
		{"n/a placeholder", "N/A", 0, false},
		{"empty string", "", 0, false},
		{"nil value", nil, 0, false},
		{"currency only", "₪", 0, false},
		{"price with spaces", " ₪ 3,490 ", 3490, true},
		{"merged values", "₪1,234 / ₪5,678", 0, false},
		{"quantity times amount", "2 x 450", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParsePrice(%v) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		want   int
		wantOK bool
	}{
		{"numeric string", "2024", 2024, true},
		{"int value", 2021, 2021, true},
		{"json float", 2023.0, 2023, true},
		{"lower bound", 1900, 1900, true},
		{"upper bound", 2100, 2100, true},
		{"below bounds", 1899, 0, false},
		{"above bounds", 2101, 0, false},
		{"non-year token", "not-a-year", 0, false},
		{"undefined token", "undefined", 0, false},
		{"fractional year", 2024.5, 0, false},
		{"empty string", "", 0, false},
		{"nil value", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseYear(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseYear(%v) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Shimano Deore XT", "Shimano Deore XT"},
		{"double quotes", `29" wheels`, "29' wheels"},
		{"backslash", `front\rear`, "front/rear"},
		{"semicolon", "black; red", "black, red"},
		{"control characters", "a\x00b\x1fc", "abc"},
		{"newlines and tabs", "line1\n\tline2", "line1 line2"},
		{"whitespace runs", "too   many    spaces", "too many spaces"},
		{"surrounding whitespace", "  trimmed  ", "trimmed"},
		{"hebrew text", " שיכוך מלא ", "שיכוך מלא"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.input)
			if got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
			// Re-applying must not change the output.
			if again := CleanText(got); again != got {
				t.Errorf("CleanText is not idempotent: %q -> %q", got, again)
			}
		})
	}
}
