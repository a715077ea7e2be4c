package comparator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// FormatXAF renders an amount in francs CFA without decimals, grouped by
// thousands: "2 000 000 FCFA".
func FormatXAF(amount decimal.Decimal) string {
	s := amount.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String() + " FCFA"
	}
	return b.String() + " FCFA"
}

// FormatPercent renders a rate with one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// ProcessingTimeText renders a processing delay given in hours.
func ProcessingTimeText(hours int) string {
	if hours <= 24 {
		return fmt.Sprintf("%dh", hours)
	}
	days := (hours + 23) / 24
	if days > 1 {
		return fmt.Sprintf("%d jours", days)
	}
	return fmt.Sprintf("%d jour", days)
}

// EligibilityText renders the eligibility flag.
func EligibilityText(eligible bool) string {
	if eligible {
		return "Éligible"
	}
	return "Non éligible"
}

// ShareText is the text shared for a result.
func ShareText(r *Result) string {
	best := r.Summary.BestOffer
	if best == nil {
		return "Comparaison de crédits"
	}
	return fmt.Sprintf("Comparaison de crédits - Meilleur taux: %s%% chez %s",
		decimal.NewFromFloat(best.Product.Rate).String(), best.Bank.Name)
}

// OfferView is an offer with its display strings.
type OfferView struct {
	bamboo.BankOffer
	MonthlyPaymentText string `json:"monthly_payment_text"`
	TotalCostText      string `json:"total_cost_text"`
	RateText           string `json:"rate_text"`
	ProcessingTimeText string `json:"processing_time_text"`
	EligibilityText    string `json:"eligibility_text"`
}

// Views decorates offers for display, keeping their order.
func Views(offers []bamboo.BankOffer) []OfferView {
	out := make([]OfferView, 0, len(offers))
	for _, o := range offers {
		out = append(out, OfferView{
			BankOffer:          o,
			MonthlyPaymentText: FormatXAF(o.MonthlyPayment),
			TotalCostText:      FormatXAF(o.TotalCost),
			RateText:           FormatPercent(o.Product.Rate),
			ProcessingTimeText: ProcessingTimeText(o.Product.ProcessingTime),
			EligibilityText:    EligibilityText(o.Eligible),
		})
	}
	return out
}
