package comparator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) CompareCreditOffers(ctx context.Context, req bamboo.CompareRequest) (*bamboo.CompareResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*bamboo.CompareResponse)
	return resp, args.Error(1)
}

func TestCompareFiltersToSelection(t *testing.T) {
	all := sampleOffers()
	src := new(mockSource)
	src.On("CompareCreditOffers", mock.Anything, mock.Anything).Return(&bamboo.CompareResponse{
		Comparisons:   all,
		BestRate:      &all[1],
		LowestPayment: &all[2],
	}, nil).Once()

	b := NewBuilder()
	req, err := b.Build(validForm())
	require.NoError(t, err)

	sel := NewSelection(catalog)
	q, err := NewClient(src, time.Second).Compare(context.Background(), req, sel.Set())
	require.NoError(t, err)

	assert.Equal(t, []string{"bgfi", "ugb", "bicig"}, bankIDs(q.Offers))
	require.NotNil(t, q.ServerBest)
	assert.Equal(t, "ugb", q.ServerBest.Bank.ID)

	s := Summarize(q.Offers)
	minRate := q.Offers[0].Product.Rate
	for _, o := range q.Offers {
		if o.Product.Rate < minRate {
			minRate = o.Product.Rate
		}
	}
	assert.Equal(t, minRate, s.BestOffer.Product.Rate)
	src.AssertExpectations(t)
}

func TestCompareDropsHintsOutsideSelection(t *testing.T) {
	all := sampleOffers()
	src := new(mockSource)
	src.On("CompareCreditOffers", mock.Anything, mock.Anything).Return(&bamboo.CompareResponse{
		Comparisons:   all,
		BestRate:      &all[3],
		LowestPayment: &all[3],
	}, nil)

	q, err := NewClient(src, 0).Compare(context.Background(), bamboo.CompareRequest{}, map[string]struct{}{"bgfi": {}})
	require.NoError(t, err)
	assert.Len(t, q.Offers, 1)
	assert.Nil(t, q.ServerBest)
	assert.Nil(t, q.ServerLowest)
}

func TestCompareWrapsSourceError(t *testing.T) {
	src := new(mockSource)
	src.On("CompareCreditOffers", mock.Anything, mock.Anything).Return(nil, bamboo.ErrUnavailable)

	_, err := NewClient(src, 0).Compare(context.Background(), bamboo.CompareRequest{}, nil)
	assert.ErrorIs(t, err, bamboo.ErrUnavailable)
}

func TestCompareAppliesTimeout(t *testing.T) {
	src := new(mockSource)
	src.On("CompareCreditOffers", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.DeadlineExceeded)

	_, err := NewClient(src, 20*time.Millisecond).Compare(context.Background(), bamboo.CompareRequest{}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkspaceDiscardsStaleResult(t *testing.T) {
	ws := NewWorkspace("ws-1", catalog)

	firstCtx, first := ws.Begin(context.Background(), validForm())
	_, second := ws.Begin(context.Background(), validForm())

	assert.ErrorIs(t, firstCtx.Err(), context.Canceled)

	_, err := ws.Finish(first, bamboo.CompareRequest{}, &Quote{Offers: sampleOffers()})
	assert.ErrorIs(t, err, ErrStale)
	assert.Nil(t, ws.Result())
	assert.True(t, ws.Snapshot().Loading)

	res, err := ws.Finish(second, bamboo.CompareRequest{Amount: 2_000_000}, &Quote{Offers: sampleOffers()[:3]})
	require.NoError(t, err)
	assert.Equal(t, []string{"bgfi", "ugb", "bicig"}, res.Banks)
	assert.Equal(t, 3, res.Summary.TotalOffers)
	assert.Same(t, res, ws.Result())
	assert.False(t, ws.Snapshot().Loading)
}

func TestWorkspaceFailRecordsError(t *testing.T) {
	ws := NewWorkspace("ws-1", catalog)

	_, tk := ws.Begin(context.Background(), validForm())
	require.NoError(t, ws.Fail(tk, "Une erreur est survenue lors de la comparaison"))

	st := ws.Snapshot()
	assert.Equal(t, "Une erreur est survenue lors de la comparaison", st.Error)
	assert.Nil(t, st.Result)

	_, tk2 := ws.Begin(context.Background(), validForm())
	assert.Empty(t, ws.Snapshot().Error)
	assert.ErrorIs(t, ws.Fail(tk, "late"), ErrStale)
	_ = tk2
}

func TestWorkspaceApplyAndReset(t *testing.T) {
	ws := NewWorkspace("ws-1", catalog)

	_, err := ws.Apply("bgfi")
	assert.ErrorIs(t, err, ErrNoResult)

	_, tk := ws.Begin(context.Background(), validForm())
	_, err = ws.Finish(tk, bamboo.CompareRequest{}, &Quote{Offers: sampleOffers()[:3]})
	require.NoError(t, err)

	o, err := ws.Apply("ugb")
	require.NoError(t, err)
	assert.Equal(t, "ugb", o.Bank.ID)
	_, _ = ws.Apply("ugb")
	assert.Equal(t, []string{"ugb"}, ws.Snapshot().Applied)

	_, err = ws.Apply("ecobank")
	assert.ErrorIs(t, err, ErrOfferNotFound)

	ws.ToggleAll()
	ws.Reset()
	st := ws.Snapshot()
	assert.Nil(t, st.Result)
	assert.Empty(t, st.Applied)
	assert.Equal(t, DefaultForm(), st.Form)
	assert.Equal(t, []string{"bgfi", "ugb", "bicig"}, st.Selected)
}

func TestWorkspaceOffersUseSortKey(t *testing.T) {
	ws := NewWorkspace("ws-1", catalog)
	_, err := ws.Offers()
	assert.ErrorIs(t, err, ErrNoResult)

	_, tk := ws.Begin(context.Background(), validForm())
	_, err = ws.Finish(tk, bamboo.CompareRequest{}, &Quote{Offers: sampleOffers()})
	require.NoError(t, err)

	ws.SetSort(SortByTime)
	rk, err := ws.Offers()
	require.NoError(t, err)
	assert.Equal(t, SortByTime, rk.SortBy)
	assert.Equal(t, "bicig", rk.Offers[0].Bank.ID)
	assert.Equal(t, 4, rk.Summary.TotalOffers)
	assert.Equal(t, []string{"bgfi", "ugb", "bicig", "ecobank"}, bankIDs(ws.Result().Offers))
}

func TestRegistrySweep(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.SetKnownBanks(catalog)

	ws := r.Get("")
	require.NotEmpty(t, ws.ID)
	assert.Same(t, ws, r.Get(ws.ID))
	assert.Equal(t, []string{"bgfi", "ugb", "bicig"}, ws.SelectedBanks())

	assert.Zero(t, r.Sweep(time.Now()))
	assert.Equal(t, 1, r.Sweep(time.Now().Add(2*time.Minute)))
	_, ok := r.Lookup(ws.ID)
	assert.False(t, ok)
}

func TestRegistryDropCancelsInFlight(t *testing.T) {
	r := NewRegistry(time.Minute)
	ws := r.Get("abc")
	assert.Equal(t, "abc", ws.ID)

	ctx, tk := ws.Begin(context.Background(), validForm())
	r.Drop("abc")

	assert.True(t, errors.Is(ctx.Err(), context.Canceled))
	_, err := ws.Finish(tk, bamboo.CompareRequest{}, &Quote{})
	assert.ErrorIs(t, err, ErrStale)
	assert.Zero(t, r.Len())
}

func TestRegistryLimitEvictsLongestIdle(t *testing.T) {
	r := NewRegistry(time.Hour)
	r.SetLimit(2)

	a := r.Get("a")
	b := r.Get("b")
	a.now = func() time.Time { return time.Now().Add(time.Minute) }
	a.Touch()
	b.now = func() time.Time { return time.Now().Add(-time.Minute) }
	b.Touch()
	ctx, _ := b.Begin(context.Background(), validForm())

	c := r.Get("c")
	assert.Equal(t, "c", c.ID)
	assert.Equal(t, 2, r.Len())
	_, ok := r.Lookup("b")
	assert.False(t, ok)
	_, ok = r.Lookup("a")
	assert.True(t, ok)
	assert.True(t, errors.Is(ctx.Err(), context.Canceled))
}

func TestRegistryLookupDoesNotCreate(t *testing.T) {
	r := NewRegistry(time.Hour)

	_, ok := r.Lookup("unknown")
	assert.False(t, ok)
	_, ok = r.Lookup("")
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}
