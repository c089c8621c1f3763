package billing

import (
	"github.com/dustin/go-humanize"
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// FormatTokens formats a token allowance: "Custom" when there is none,
// millions as "1.5M", thousands separators otherwise.
func FormatTokens(tokens *int64) string {
	if tokens == nil {
		return "Custom"
	}

	t := *tokens
	if t >= 1000000 {
		return humanize.CommafWithDigits(float64(t)/1000000, 2) + "M"
	}
	return humanize.Comma(t)
}

// FormatCurrency formats a price in its currency, "Custom" when there is
// none. The currency defaults to USD.
func FormatCurrency(amount *float64, currency string) string {
	if amount == nil {
		return "Custom"
	}
	if currency == "" {
		currency = "USD"
	}

	value := humanize.FormatFloat("#,###.##", *amount)
	if symbol, ok := symbols[currency]; ok {
		return symbol + value
	}
	return value + " " + currency
}
