package comparator

import (
	"github.com/shopspring/decimal"

	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// Summary is derived from the selected offers of one comparison.
type Summary struct {
	TotalOffers   int               `json:"totalOffers"`
	BestOffer     *bamboo.BankOffer `json:"bestOffer,omitempty"`
	BestRate      *float64          `json:"bestRate,omitempty"`
	LowestPayment *decimal.Decimal  `json:"lowestPayment,omitempty"`
	// Savings is the spread between the most and least expensive total cost.
	Savings decimal.Decimal `json:"savings"`
}

// Summarize computes the summary of offers. It never fails: with no offers
// the optional figures are nil and Savings is zero.
func Summarize(offers []bamboo.BankOffer) Summary {
	s := Summary{TotalOffers: len(offers), Savings: decimal.Zero}
	if len(offers) == 0 {
		return s
	}

	best := offers[0]
	lowest := offers[0].MonthlyPayment
	minCost, maxCost := offers[0].TotalCost, offers[0].TotalCost
	for _, o := range offers[1:] {
		if o.Product.Rate < best.Product.Rate {
			best = o
		}
		if o.MonthlyPayment.LessThan(lowest) {
			lowest = o.MonthlyPayment
		}
		if o.TotalCost.LessThan(minCost) {
			minCost = o.TotalCost
		}
		if o.TotalCost.GreaterThan(maxCost) {
			maxCost = o.TotalCost
		}
	}

	rate := best.Product.Rate
	s.BestOffer = &best
	s.BestRate = &rate
	s.LowestPayment = &lowest
	if len(offers) > 1 {
		s.Savings = maxCost.Sub(minCost)
	}
	return s
}
