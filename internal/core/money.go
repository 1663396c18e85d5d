// Package core holds the domain model of the apartment ledger:
// entities, monetary arithmetic and the derived dashboard projections.
//
// All amounts are fixed-point rupees stored as int64 paise. Parsing from
// decimal strings happens once at the input boundary; every computation
// after that is integer arithmetic.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a monetary amount in paise (1/100 rupee).
type Money struct {
	Paise int64
}

// ParseDecimal converts a decimal string to paise with half-up rounding
// on the third decimal place. It accepts both dot (12.34) and comma
// (12,34) separators. Negative values are rejected; zero is allowed so
// that balances can be parsed, callers that need a strictly positive
// amount validate separately.
//
// Examples:
//
//	ParseDecimal("1500")   -> 150000, nil
//	ParseDecimal("12,34")  -> 1234, nil
//	ParseDecimal("12.346") -> 1235, nil (rounds up)
func ParseDecimal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracPaise int64
	if len(fracPart) > 0 {
		fracPaise = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracPaise += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPaise++
			}
		}
	}
	return iv*100 + fracPaise, nil
}

// ParseMoney is ParseDecimal wrapped into a Money value.
func ParseMoney(s string) (Money, error) {
	p, err := ParseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Paise: p}, nil
}

// Rupees returns the rupee value as a float64 for display purposes only.
// Use paise for calculations.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Paise == 0
}

// Sub returns m minus other, clamped at zero. Room balances never go
// negative, so this is the only subtraction the ledger uses.
func (m Money) Sub(other Money) Money {
	p := m.Paise - other.Paise
	if p < 0 {
		p = 0
	}
	return Money{Paise: p}
}

// Add returns the sum of the two amounts.
func (m Money) Add(other Money) Money {
	return Money{Paise: m.Paise + other.Paise}
}

// String formats the amount as a plain decimal, e.g. "1500.00".
func (m Money) String() string {
	p := m.Paise
	neg := p < 0
	if neg {
		p = -p
	}
	s := fmt.Sprintf("%d.%02d", p/100, p%100)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON emits the amount as a decimal string, matching the wire
// shape of the numeric-text columns the API always exposed.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a decimal string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = str
	}
	p, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	m.Paise = p
	return nil
}
