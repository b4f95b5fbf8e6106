package costs

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// symbol returns the display prefix for a currency. Codes without a common
// single-glyph symbol keep the ISO code.
func symbol(c Currency) string {
	switch c {
	case USD:
		return "$"
	case AUD:
		return "A$"
	case GBP:
		return "£"
	case CAD:
		return "C$"
	case EUR:
		return "€"
	case HKD:
		return "HK$"
	case MOP:
		return "MOP "
	case SGD:
		return "S$"
	}
	return string(c) + " "
}

// Format renders an amount with a currency symbol and thousands separators,
// e.g. Format(USD, 45000) == "$45,000".
func Format(c Currency, amount int) string {
	return printer.Sprintf("%s%d", symbol(c), amount)
}

// FormatRange renders a range as "min - max" in the given currency.
func FormatRange(c Currency, r Range) string {
	return printer.Sprintf("%s%d - %s%d", symbol(c), r.Min, symbol(c), r.Max)
}
