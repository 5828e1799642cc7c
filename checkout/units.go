package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// toBaseUnits renders a display amount as an integer base-unit string,
// truncating anything below the exponent. 84210.526999 with exponent 6
// becomes "84210526999".
func toBaseUnits(amount float64, exponent int32) string {
	return decimal.NewFromFloat(amount).Shift(exponent).Truncate(0).String()
}

// fromBaseUnits parses an integer base-unit string into a display amount.
func fromBaseUnits(amount string, exponent int32) (float64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}
	f, _ := d.Shift(-exponent).Float64()
	return f, nil
}
