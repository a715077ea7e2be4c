package bamboo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// ProductKind selects one of the three product catalogs.
type ProductKind string

const (
	ProductCredit    ProductKind = "credit"
	ProductSavings   ProductKind = "savings"
	ProductInsurance ProductKind = "insurance"
)

// Valid reports whether k is a known product kind.
func (k ProductKind) Valid() bool {
	switch k {
	case ProductCredit, ProductSavings, ProductInsurance:
		return true
	}
	return false
}

func (k ProductKind) segment() string {
	return string(k) + "-products"
}

// GetBanks lists the banks available to the comparator.
func (c *Client) GetBanks(ctx context.Context) ([]Bank, error) {
	var banks []Bank
	if err := c.get(ctx, "/api/banks", nil, &banks); err != nil {
		return nil, err
	}
	return banks, nil
}

// CompareCreditOffers runs a multi-bank credit comparison.
func (c *Client) CompareCreditOffers(ctx context.Context, req CompareRequest) (*CompareResponse, error) {
	var resp CompareResponse
	if err := c.post(ctx, "/api/simulations/credit/compare", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListProducts returns a product catalog as raw JSON.
func (c *Client) ListProducts(ctx context.Context, kind ProductKind, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/admin/"+kind.segment(), query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetProduct returns one product as raw JSON.
func (c *Client) GetProduct(ctx context.Context, kind ProductKind, id string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("/api/admin/%s/%s", kind.segment(), url.PathEscape(id)), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// CreateProduct creates a product from a raw JSON body.
func (c *Client) CreateProduct(ctx context.Context, kind ProductKind, body json.RawMessage) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/api/admin/"+kind.segment(), body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UpdateProduct replaces a product.
func (c *Client) UpdateProduct(ctx context.Context, kind ProductKind, id string, body json.RawMessage) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.put(ctx, fmt.Sprintf("/api/admin/%s/%s", kind.segment(), url.PathEscape(id)), body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, kind ProductKind, id string) error {
	return c.delete(ctx, fmt.Sprintf("/api/admin/%s/%s", kind.segment(), url.PathEscape(id)), nil)
}

// GetBank returns one bank for administration.
func (c *Client) GetBank(ctx context.Context, id string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/admin/banks/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// CreateBank creates a bank.
func (c *Client) CreateBank(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/api/admin/banks", body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UpdateBank replaces a bank.
func (c *Client) UpdateBank(ctx context.Context, id string, body json.RawMessage) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.put(ctx, "/api/admin/banks/"+url.PathEscape(id), body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ListSimulations returns simulations for administrators.
func (c *Client) ListSimulations(ctx context.Context, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/admin/simulations", query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ListApplications returns applications for administrators.
func (c *Client) ListApplications(ctx context.Context, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/admin/applications", query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UpdateApplicationStatus changes the review status of an application.
func (c *Client) UpdateApplicationStatus(ctx context.Context, kind ProductKind, id string, update ApplicationStatusUpdate) (json.RawMessage, error) {
	var raw json.RawMessage
	path := fmt.Sprintf("/api/admin/applications/%s/%s", kind, url.PathEscape(id))
	if err := c.put(ctx, path, update, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func pageQuery(skip, limit *int) url.Values {
	q := url.Values{}
	if skip != nil {
		q.Set("skip", strconv.Itoa(*skip))
	}
	if limit != nil {
		q.Set("limit", strconv.Itoa(*limit))
	}
	return q
}
