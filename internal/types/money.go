// README: Money value object; fares stay unrounded until formatted for display.
package types

import (
	"encoding/json"
	"fmt"
	"math"
)

type Money struct {
	Amount   float64
	Currency string
}

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
}

// Rounded returns the amount rounded half away from zero to two decimals.
func (m Money) Rounded() float64 {
	return math.Round(m.Amount*100) / 100
}

func (m Money) String() string {
	if sym, ok := currencySymbols[m.Currency]; ok {
		return fmt.Sprintf("%s%.2f", sym, m.Rounded())
	}
	return fmt.Sprintf("%.2f %s", m.Rounded(), m.Currency)
}

// MarshalJSON keeps the raw amount and adds the formatted display string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		Display  string  `json:"display"`
	}{m.Amount, m.Currency, m.String()})
}
