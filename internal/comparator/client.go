package comparator

import (
	"context"
	"fmt"
	"time"

	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// DefaultCompareTimeout bounds one comparison call.
const DefaultCompareTimeout = 15 * time.Second

// OfferSource is the backend comparison endpoint.
type OfferSource interface {
	CompareCreditOffers(ctx context.Context, req bamboo.CompareRequest) (*bamboo.CompareResponse, error)
}

// Quote is the selected part of one comparison answer.
type Quote struct {
	Offers []bamboo.BankOffer
	// ServerBest is the API's best-rate offer when it belongs to the selection.
	ServerBest *bamboo.BankOffer
	// ServerLowest is the API's lowest-payment offer when it belongs to the selection.
	ServerLowest *bamboo.BankOffer
}

// Client issues comparisons and keeps only the selected banks' offers.
type Client struct {
	source  OfferSource
	timeout time.Duration
}

// NewClient creates a comparison client. A non-positive timeout uses the default.
func NewClient(source OfferSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultCompareTimeout
	}
	return &Client{source: source, timeout: timeout}
}

// Compare issues one network call and filters the answer to selected, in
// server order. It does not retry.
func (c *Client) Compare(ctx context.Context, req bamboo.CompareRequest, selected map[string]struct{}) (*Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.source.CompareCreditOffers(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("compare credit offers: %w", err)
	}

	q := &Quote{Offers: FilterOffers(resp.Comparisons, selected)}
	if resp.BestRate != nil && inSelection(*resp.BestRate, selected) {
		q.ServerBest = resp.BestRate
	}
	if resp.LowestPayment != nil && inSelection(*resp.LowestPayment, selected) {
		q.ServerLowest = resp.LowestPayment
	}
	return q, nil
}

// FilterOffers keeps the offers whose bank is selected, in input order.
func FilterOffers(offers []bamboo.BankOffer, selected map[string]struct{}) []bamboo.BankOffer {
	out := make([]bamboo.BankOffer, 0, len(offers))
	for _, o := range offers {
		if inSelection(o, selected) {
			out = append(out, o)
		}
	}
	return out
}

func inSelection(o bamboo.BankOffer, selected map[string]struct{}) bool {
	_, ok := selected[o.Bank.ID]
	return ok
}
