package normalize

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DollarsToCents converts a nullable float64 dollar amount to nullable int64 cents.
// Uses math.Round to avoid truncation bias.
func DollarsToCents(v *float64) *int64 {
	if v == nil {
		return nil
	}
	c := int64(math.Round(*v * 100))
	return &c
}

// FormatCents renders cents as a dollar string, e.g. 150000 -> "$1,500.00".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	whole := fmt.Sprintf("%d", c/100)
	var grouped []byte
	for i := 0; i < len(whole); i++ {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, whole[i])
	}
	return fmt.Sprintf("%s$%s.%02d", sign, grouped, c%100)
}

// ApplyRate multiplies cents by a fractional rate (0.20 for 20%) and rounds
// half away from zero to a whole cent, without float drift.
func ApplyRate(cents int64, rate float64) int64 {
	return decimal.NewFromInt(cents).Mul(decimal.NewFromFloat(rate)).Round(0).IntPart()
}

// ApplyPercent is ApplyRate for a percentage (20 for 20%).
func ApplyPercent(cents int64, pct float64) int64 {
	return decimal.NewFromInt(cents).Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100)).Round(0).IntPart()
}
