package comparator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatXAF(t *testing.T) {
	assert.Equal(t, "2 000 000 FCFA", FormatXAF(decimal.NewFromInt(2_000_000)))
	assert.Equal(t, "91 667 FCFA", FormatXAF(decimal.RequireFromString("91666.67")))
	assert.Equal(t, "500 FCFA", FormatXAF(decimal.NewFromInt(500)))
	assert.Equal(t, "-1 500 FCFA", FormatXAF(decimal.NewFromInt(-1500)))
}

func TestProcessingTimeText(t *testing.T) {
	assert.Equal(t, "24h", ProcessingTimeText(24))
	assert.Equal(t, "2 jours", ProcessingTimeText(48))
	assert.Equal(t, "3 jours", ProcessingTimeText(49))
	assert.Equal(t, "6h", ProcessingTimeText(6))
}

func TestShareText(t *testing.T) {
	res := &Result{Summary: Summarize(sampleOffers())}
	assert.Equal(t, "Comparaison de crédits - Meilleur taux: 7.9% chez ugb", ShareText(res))
	assert.Equal(t, "Comparaison de crédits", ShareText(&Result{}))
}

func TestViews(t *testing.T) {
	v := Views(sampleOffers()[:1])[0]
	assert.Equal(t, "8.5%", v.RateText)
	assert.Equal(t, "3 jours", v.ProcessingTimeText)
	assert.Equal(t, "Éligible", v.EligibilityText)
	assert.Equal(t, "92 000 FCFA", v.MonthlyPaymentText)
}
