// Package commission mirrors the marketplace fee rules so pages can show a
// creator what a sale earns before the backend settles it. Amounts are cents.
package commission

import (
	"fmt"
	"math"
)

const (
	PlatformPercent         = 5.0
	PlatformFixedPerProduct = 25

	StripePercent = 1.5
	StripeFixed   = 25
)

type Breakdown struct {
	Price              int64   `json:"price"`
	PlatformCommission int64   `json:"platform_commission"`
	StripeCommission   int64   `json:"stripe_commission"`
	TotalCommission    int64   `json:"total_commission"`
	CreatorEarnings    int64   `json:"creator_earnings"`
	CommissionPercent  float64 `json:"commission_percent"`
}

// ForProduct computes the fee breakdown for a single product sale.
func ForProduct(price int64) Breakdown {
	platform := price*int64(PlatformPercent*10)/1000 + PlatformFixedPerProduct
	stripe := price*int64(StripePercent*10)/1000 + StripeFixed

	total := platform + stripe
	var pct float64
	if price > 0 {
		// Rounded to two decimals for display.
		pct = math.Round(float64(total)/float64(price)*10000) / 100
	}

	return Breakdown{
		Price:              price,
		PlatformCommission: platform,
		StripeCommission:   stripe,
		TotalCommission:    total,
		CreatorEarnings:    price - total,
		CommissionPercent:  pct,
	}
}

// FormatPrice renders cents as a euro display string, e.g. "12.50 €".
func FormatPrice(cents int64) string {
	return fmt.Sprintf("%.2f €", float64(cents)/100)
}
