package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Currency is a lowercase ISO 4217 code, the form the processor uses on the wire.
type Currency string

const (
	USD Currency = "usd"
	EUR Currency = "eur"
	GBP Currency = "gbp"
	CAD Currency = "cad"
	JPY Currency = "jpy"
)

var symbols = map[Currency]string{
	USD: "$",
	CAD: "CA$",
	EUR: "€",
	GBP: "£",
	JPY: "¥",
}

// ParseCurrency normalizes and validates an ISO 4217 code.
func ParseCurrency(code string) (Currency, error) {
	code = strings.TrimSpace(code)
	if len(code) != 3 {
		return "", fmt.Errorf("invalid currency %q", code)
	}
	if _, err := currency.ParseISO(strings.ToUpper(code)); err != nil {
		return "", fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return Currency(strings.ToLower(code)), nil
}

// Scale returns the number of minor-unit digits for the currency (2 for usd, 0 for jpy).
func (c Currency) Scale() int32 {
	unit, err := currency.ParseISO(strings.ToUpper(string(c)))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// Symbol returns a display prefix for the currency.
func (c Currency) Symbol() string {
	if s, ok := symbols[c]; ok {
		return s
	}
	return strings.ToUpper(string(c)) + " "
}

// Money is an amount in integer minor units (cents for usd) with its currency.
// It is immutable; arithmetic returns new values.
type Money struct {
	minor    int64
	currency Currency
}

// NewMoney creates Money from minor units.
func NewMoney(minor int64, currency Currency) Money {
	return Money{minor: minor, currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{currency: currency}
}

// ParseMoney converts a decimal string such as "85.50" into minor units.
// More fractional digits than the currency allows is an error, never a rounding.
func ParseMoney(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return FromDecimal(d, currency)
}

// FromDecimal converts a major-unit decimal into Money.
func FromDecimal(d decimal.Decimal, currency Currency) (Money, error) {
	scale := currency.Scale()
	shifted := d.Shift(scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return Money{}, fmt.Errorf("amount %s has more than %d decimal places", d.String(), scale)
	}
	if !shifted.Abs().LessThan(decimal.NewFromInt(1 << 53)) {
		return Money{}, errors.New("amount out of range")
	}
	return Money{minor: shifted.IntPart(), currency: currency}, nil
}

// Minor returns the amount in minor units.
func (m Money) Minor() int64 {
	return m.minor
}

// Currency returns the currency code.
func (m Money) Currency() Currency {
	return m.currency
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minor, -m.currency.Scale())
}

func (m Money) IsZero() bool     { return m.minor == 0 }
func (m Money) IsPositive() bool { return m.minor > 0 }
func (m Money) IsNegative() bool { return m.minor < 0 }

// Add returns the sum. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{minor: m.minor + other.minor, currency: m.currency}, nil
}

// Subtract returns the difference. Currencies must match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{minor: m.minor - other.minor, currency: m.currency}, nil
}

// ClampZero returns m, or zero when m is negative.
func (m Money) ClampZero() Money {
	if m.minor < 0 {
		return Zero(m.currency)
	}
	return m
}

// Negate returns the additive inverse.
func (m Money) Negate() Money {
	return Money{minor: -m.minor, currency: m.currency}
}

// Equals compares amount and currency.
func (m Money) Equals(other Money) bool {
	return m.minor == other.minor && m.currency == other.currency
}

// String formats as a plain decimal, e.g. "4050.00".
func (m Money) String() string {
	scale := m.currency.Scale()
	return m.Decimal().StringFixed(scale)
}

// Display formats for humans, e.g. "$4,050.00".
func (m Money) Display() string {
	s := m.String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := m.currency.Symbol() + b.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// MarshalJSON emits minor units alongside a display string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   int64    `json:"amount"`
		Currency Currency `json:"currency"`
		Display  string   `json:"display"`
	}{
		Amount:   m.minor,
		Currency: m.currency,
		Display:  m.Display(),
	})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON; display is ignored.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   int64    `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.minor = v.Amount
	m.currency = v.Currency
	return nil
}
