package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// priceLanguage drives digit grouping: Spanish groups thousands with dots
var priceLanguage = language.Spanish

// FormatPrice formats a net price as a string like "$1.250.000".
// Prices carry no minor units, so no decimals are printed.
func FormatPrice(amount int64) string {
	p := message.NewPrinter(priceLanguage)
	if amount < 0 {
		return p.Sprintf("-$%d", -amount)
	}
	return p.Sprintf("$%d", amount)
}

// SumLines adds up line totals for quote sheets
func SumLines(totals ...int64) int64 {
	var sum int64
	for _, t := range totals {
		sum += t
	}
	return sum
}
