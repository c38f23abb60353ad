package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var rupeePattern = regexp.MustCompile(`^₹-?\d{1,3}(,\d{3})*\.\d{2}$`)

// Property 1: Rupee formatting uses western thousands grouping
//
// For any amount, FormatRupees should:
// 1. Start with ₹
// 2. Group the integer part in threes
// 3. Have exactly 2 decimal places
// 4. Preserve the value to the paisa
func TestProperty1_RupeeFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatRupees produces grouped two-decimal output", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatRupees(amount)
			if !rupeePattern.MatchString(formatted) {
				t.Logf("Invalid format for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("FormatRupees preserves value", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatRupees(amount)
			parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(formatted, "₹"), ",", ""), 64)
			if err != nil {
				t.Logf("Unparsable output for %f: %s", amount, formatted)
				return false
			}
			if math.Abs(parsed-amount) > 0.01 {
				t.Logf("Value not preserved: original=%f, formatted=%s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("FormatPercent is signed with two decimals", prop.ForAll(
		func(value float64) bool {
			formatted := FormatPercent(value)
			if !strings.HasSuffix(formatted, "%") {
				return false
			}
			if value >= 0 && !strings.HasPrefix(formatted, "+") {
				t.Logf("Expected + prefix for %f, got %s", value, formatted)
				return false
			}
			parts := strings.Split(strings.TrimSuffix(formatted, "%"), ".")
			return len(parts) == 2 && len(parts[1]) == 2
		},
		gen.Float64Range(-100, 100),
	))

	properties.TestingRun(t)
}

func TestFormatPriceExamples(t *testing.T) {
	price := func(v float64) *float64 { return &v }
	testCases := []struct {
		price    *float64
		expected string
	}{
		{nil, "N/A"},
		{price(0), "₹0.00"},
		{price(999.5), "₹999.50"},
		{price(1234.5), "₹1,234.50"},
		{price(3105.5), "₹3,105.50"},
		{price(1234567.891), "₹1,234,567.89"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FormatPrice(tc.price); got != tc.expected {
				t.Errorf("FormatPrice() = %s, want %s", got, tc.expected)
			}
		})
	}
}

func TestFormatPercentExamples(t *testing.T) {
	testCases := []struct {
		value    float64
		expected string
	}{
		{0, "+0.00%"},
		{1.5, "+1.50%"},
		{-2.5, "-2.50%"},
		{8, "+8.00%"},
		{-100, "-100.00%"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FormatPercent(tc.value); got != tc.expected {
				t.Errorf("FormatPercent(%f) = %s, want %s", tc.value, got, tc.expected)
			}
		})
	}
}

func TestFormatRaw(t *testing.T) {
	v := 4012.1
	if got := FormatRaw(&v); got != "4012.1" {
		t.Errorf("FormatRaw = %s", got)
	}
	w := 4020.0
	if got := FormatRaw(&w); got != "4020" {
		t.Errorf("FormatRaw = %s", got)
	}
	if got := FormatRaw(nil); got != "N/A" {
		t.Errorf("FormatRaw(nil) = %s", got)
	}
}
