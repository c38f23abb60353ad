package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSymbols(t *testing.T) {
	dir := testDirectory()

	testCases := []struct {
		name string
		text string
		want []string
	}{
		{"tickers in order", "TCS and INFY look strong", []string{"TCS", "INFY"}},
		{"case insensitive tickers", "how is wipro vs tcs", []string{"WIPRO", "TCS"}},
		{"duplicates removed", "TCS tcs Tcs?", []string{"TCS"}},
		{"company names ordered by name", "tata consultancy services limited and infosys limited",
			[]string{"INFY", "TCS"}},
		{"tickers beat names", "INFY vs Tata Consultancy Services Limited", []string{"INFY"}},
		{"ordinary word that is a ticker", "Reliance Industries Limited today", []string{"RELIANCE"}},
		{"partial name does not match", "what about HCL", []string{}},
		{"nothing", "markets look calm today", []string{}},
		{"blank", "   ", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveSymbols(tc.text, dir))
		})
	}
}

func TestResolveSymbolsEmptyDirectory(t *testing.T) {
	assert.Equal(t, []string{}, ResolveSymbols("TCS", NewDirectory(nil)))
}
