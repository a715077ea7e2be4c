package bamboo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"})
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[{"id":"bgfi","name":"BGFI Bank","is_active":true}]`))
	})

	banks, err := c.GetBanks(WithToken(context.Background(), "tok-123"))

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	require.Len(t, banks, 1)
	assert.Equal(t, "bgfi", banks[0].ID)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.GetBanks(context.Background())

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_CompareDecodesOffers(t *testing.T) {
	var got CompareRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/simulations/credit/compare", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{
			"comparisons": [
				{"bank":{"id":"bgfi","name":"BGFI","logo":"bgfi.png"},
				 "product":{"id":"p1","name":"Conso","rate":8.5,"processing_time":24},
				 "monthly_payment":91000.5,"total_cost":2184012,"total_interest":184012,
				 "debt_ratio":12.1,"eligible":true}
			],
			"best_rate": {"bank":{"id":"bgfi"},"product":{"rate":8.5}}
		}`))
	})

	req := CompareRequest{CreditType: "consommation", Amount: 2000000, Duration: 24, MonthlyIncome: 750000}
	resp, err := c.CompareCreditOffers(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, req, got)
	require.Len(t, resp.Comparisons, 1)
	offer := resp.Comparisons[0]
	assert.True(t, offer.MonthlyPayment.Equal(decimal.RequireFromString("91000.5")))
	assert.Equal(t, 24, offer.Product.ProcessingTime)
	require.NotNil(t, resp.BestRate)
	assert.Equal(t, "bgfi", resp.BestRate.Bank.ID)
	assert.Nil(t, resp.LowestPayment)
}

func TestClient_UnauthorizedFiresHook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token expiré"}`))
	})
	var rejected []string
	c.OnUnauthorized(func(ctx context.Context, token string) {
		rejected = append(rejected, token)
	})

	_, err := c.GetProfile(WithToken(context.Background(), "stale"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, []string{"stale"}, rejected)
	assert.Equal(t, "Token expiré", ErrorMessage(err, "fallback"))
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		is      error
		message string
	}{
		{"forbidden", http.StatusForbidden, `{}`, ErrForbidden, "Accès non autorisé"},
		{"not found", http.StatusNotFound, `not json`, ErrNotFound, "Ressource introuvable"},
		{"message field", http.StatusBadRequest, `{"message":"Montant invalide"}`, nil, "Montant invalide"},
		{"validation detail list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body"]}]}`, nil, "Erreur serveur"},
		{"server error", http.StatusInternalServerError, ``, nil, "Erreur serveur"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.GetBanks(context.Background())

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.Equal(t, tt.message, ErrorMessage(err, "fallback"))
		})
	}
}

func TestClient_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewClient(Config{BaseURL: srv.URL})

	_, err := c.GetBanks(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "Impossible de se connecter au serveur", ErrorMessage(err, "fallback"))
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetBanks(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ListAdminsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/management/admins", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "bank_admin", r.URL.Query().Get("role"))
		assert.Equal(t, "false", r.URL.Query().Get("is_active"))
		assert.Empty(t, r.URL.Query().Get("skip"))
		_, _ = w.Write([]byte(`{"admins":[{"id":"a1","username":"jdoe","role":"bank_admin","permissions":{"banks":["read"]}}],"total":1,"skip":0,"limit":10}`))
	})
	limit, active := 10, false

	resp, err := c.ListAdmins(context.Background(), AdminListParams{Limit: &limit, Role: "bank_admin", IsActive: &active})

	require.NoError(t, err)
	require.Len(t, resp.Admins, 1)
	assert.JSONEq(t, `{"banks":["read"]}`, string(resp.Admins[0].Permissions))
}
