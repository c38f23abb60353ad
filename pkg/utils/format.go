// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// FormatPrice formats a price as rupees with a thousands separator and two
// decimals, or "N/A" when absent.
func FormatPrice(price *float64) string {
	if price == nil {
		return "N/A"
	}
	return FormatRupees(*price)
}

// FormatRupees formats an amount like ₹1,234.50. Negative amounts keep the
// sign after the currency symbol: ₹-12.00.
func FormatRupees(amount float64) string {
	return "₹" + humanize.FormatFloat("#,###.##", amount)
}

// FormatPercent formats a percentage change with an explicit sign: +1.25%.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%+.2f%%", value)
}

// FormatRaw renders an optional number the way it was parsed, or "N/A".
func FormatRaw(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
