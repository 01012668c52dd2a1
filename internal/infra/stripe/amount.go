package stripe

import "strings"

// Stripe charges these currencies in whole units and the three-decimal ones
// in thousandths. Everything else is in hundredths.
var currencyExponents = map[string]int{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "JPY": 0, "KMF": 0, "KRW": 0, "MGA": 0,
	"PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,

	"BHD": 3, "JOD": 3, "KWD": 3, "OMR": 3, "TND": 3,
}

func exponent(currency string) int {
	if e, ok := currencyExponents[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return e
	}
	return 2
}

func pow10(n int) int64 {
	out := int64(1)
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}

// MajorAmount converts a Stripe amount to major units of its currency.
func MajorAmount(amount int64, currency string) float64 {
	return float64(amount) / float64(pow10(exponent(currency)))
}

// toStripeAmount converts hundredths of a major unit to Stripe's smallest unit.
func toStripeAmount(hundredths int64, currency string) int64 {
	switch e := exponent(currency); {
	case e < 2:
		div := pow10(2 - e)
		return (hundredths + div/2) / div
	default:
		return hundredths * pow10(e-2)
	}
}

// fromStripeAmount converts Stripe's smallest unit back to hundredths.
func fromStripeAmount(amount int64, currency string) int64 {
	switch e := exponent(currency); {
	case e < 2:
		return amount * pow10(2-e)
	default:
		div := pow10(e - 2)
		return (amount + div/2) / div
	}
}
