package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer rupees", "1500", 150000, false},
		{"two decimals", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"one decimal", "12.3", 1230, false},
		{"three decimals round up", "12.346", 1235, false},
		{"three decimals round down", "12.344", 1234, false},
		{"half rounds up", "12.345", 1235, false},
		{"zero", "0", 0, false},
		{"zero with decimals", "0.00", 0, false},
		{"leading dot", ".50", 50, false},
		{"trailing dot", "12.", 1200, false},
		{"surrounding whitespace", "  42.00  ", 4200, false},
		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"negative", "-5", 0, true},
		{"explicit plus", "+5", 0, true},
		{"letters", "abc", 0, true},
		{"mixed", "12a.50", 0, true},
		{"two separators", "1.2.3", 0, true},
		{"overflow", "99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimal(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimal(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoney_Sub(t *testing.T) {
	tests := []struct {
		name  string
		m     Money
		other Money
		want  int64
	}{
		{"normal subtraction", Money{Paise: 150000}, Money{Paise: 50000}, 100000},
		{"exact zero", Money{Paise: 50000}, Money{Paise: 50000}, 0},
		{"clamped at zero", Money{Paise: 50000}, Money{Paise: 150000}, 0},
		{"subtract zero", Money{Paise: 1234}, Money{}, 1234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Sub(tt.other); got.Paise != tt.want {
				t.Errorf("Sub() = %d, want %d", got.Paise, tt.want)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		paise int64
		want  string
	}{
		{150000, "1500.00"},
		{1234, "12.34"},
		{50, "0.50"},
		{5, "0.05"},
		{0, "0.00"},
		{-1234, "-12.34"},
	}

	for _, tt := range tests {
		if got := (Money{Paise: tt.paise}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.paise, got, tt.want)
		}
	}
}

func TestMoney_JSON(t *testing.T) {
	t.Run("marshal as decimal string", func(t *testing.T) {
		b, err := json.Marshal(Money{Paise: 150000})
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(b) != `"1500.00"` {
			t.Errorf("Marshal() = %s, want %q", b, `"1500.00"`)
		}
	})

	t.Run("unmarshal decimal string", func(t *testing.T) {
		var m Money
		if err := json.Unmarshal([]byte(`"12.34"`), &m); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if m.Paise != 1234 {
			t.Errorf("Unmarshal() paise = %d, want 1234", m.Paise)
		}
	})

	t.Run("unmarshal bare number", func(t *testing.T) {
		var m Money
		if err := json.Unmarshal([]byte(`1500`), &m); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if m.Paise != 150000 {
			t.Errorf("Unmarshal() paise = %d, want 150000", m.Paise)
		}
	})

	t.Run("unmarshal rejects negative", func(t *testing.T) {
		var m Money
		if err := json.Unmarshal([]byte(`"-5"`), &m); err == nil {
			t.Error("Unmarshal() error = nil, want error for negative amount")
		}
	})
}

func TestMoney_Rupees(t *testing.T) {
	if got := (Money{Paise: 1234}).Rupees(); got != 12.34 {
		t.Errorf("Rupees() = %v, want 12.34", got)
	}
}
