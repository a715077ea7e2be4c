package comparator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

var (
	// ErrStale is returned when a comparison finishes after a newer one started.
	ErrStale = errors.New("STALE_COMPARISON")
	// ErrNoResult is returned by operations that need a completed comparison.
	ErrNoResult = errors.New("NO_COMPARISON_RESULT")
	// ErrOfferNotFound is returned when the current result has no offer for a bank.
	ErrOfferNotFound = errors.New("OFFER_NOT_FOUND")
)

// Result is one completed comparison. It is replaced, never mutated.
type Result struct {
	ID           string                `json:"id"`
	Form         Form                  `json:"form"`
	Request      bamboo.CompareRequest `json:"request"`
	Banks        []string              `json:"banks"`
	Offers       []bamboo.BankOffer    `json:"offers"`
	Summary      Summary               `json:"summary"`
	ServerBest   *bamboo.BankOffer     `json:"serverBest,omitempty"`
	ServerLowest *bamboo.BankOffer     `json:"serverLowest,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
}

// Offer returns the result's offer for bankID.
func (r *Result) Offer(bankID string) (bamboo.BankOffer, bool) {
	for _, o := range r.Offers {
		if o.Bank.ID == bankID {
			return o, true
		}
	}
	return bamboo.BankOffer{}, false
}

// Ticket identifies one in-flight comparison.
type Ticket struct {
	Generation uint64
	Form       Form
	Banks      map[string]struct{}
}

// State is a read-only snapshot of a workspace.
type State struct {
	ID          string    `json:"id"`
	Form        Form      `json:"form"`
	KnownBanks  []string  `json:"knownBanks"`
	Selected    []string  `json:"selectedBanks"`
	AllSelected bool      `json:"allSelected"`
	SortBy      SortKey   `json:"sortBy"`
	Loading     bool      `json:"loading"`
	Error       string    `json:"error,omitempty"`
	Result      *Result   `json:"result,omitempty"`
	Applied     []string  `json:"appliedBanks"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Workspace is the comparison state of one visitor.
type Workspace struct {
	ID string

	mu         sync.Mutex
	form       Form
	selection  *Selection
	result     *Result
	sortKey    SortKey
	errMsg     string
	generation uint64
	inFlight   context.CancelFunc
	applied    []string
	touched    time.Time
	now        func() time.Time
}

// NewWorkspace creates a workspace over the known bank ids.
func NewWorkspace(id string, known []string) *Workspace {
	w := &Workspace{
		ID:        id,
		form:      DefaultForm(),
		selection: NewSelection(known),
		sortKey:   SortByRate,
		now:       time.Now,
	}
	w.touched = w.now()
	return w
}

// Touch marks the workspace as used.
func (w *Workspace) Touch() {
	w.mu.Lock()
	w.touched = w.now()
	w.mu.Unlock()
}

// IdleSince reports the last time the workspace was used.
func (w *Workspace) IdleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.touched
}

// Form returns the last submitted form, or the defaults.
func (w *Workspace) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// SetKnownBanks refreshes the catalog behind the selection.
func (w *Workspace) SetKnownBanks(known []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selection.SetKnown(known)
}

// Toggle flips one bank in the selection.
func (w *Workspace) Toggle(bankID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched = w.now()
	return w.selection.Toggle(bankID)
}

// ToggleAll selects every bank, or goes back to the default bank.
func (w *Workspace) ToggleAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched = w.now()
	w.selection.ToggleAll()
}

// ResetSelection restores the default banks.
func (w *Workspace) ResetSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched = w.now()
	w.selection.Reset()
}

// SelectedBanks returns the selected ids in catalog order.
func (w *Workspace) SelectedBanks() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.IDs()
}

// Begin starts a comparison for f. Any in-flight comparison is cancelled and
// its result will be rejected by Finish. The returned context must be used
// for the network call.
func (w *Workspace) Begin(ctx context.Context, f Form) (context.Context, Ticket) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inFlight != nil {
		w.inFlight()
	}
	ctx, cancel := context.WithCancel(ctx)
	w.inFlight = cancel
	w.generation++
	w.form = f
	w.result = nil
	w.errMsg = ""
	w.touched = w.now()

	return ctx, Ticket{Generation: w.generation, Form: f, Banks: w.selection.Set()}
}

// Finish stores the quote of ticket as the current result.
func (w *Workspace) Finish(t Ticket, req bamboo.CompareRequest, q *Quote) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t.Generation != w.generation {
		return nil, ErrStale
	}
	w.release()

	banks := make([]string, 0, len(t.Banks))
	for _, id := range w.selection.Known() {
		if _, ok := t.Banks[id]; ok {
			banks = append(banks, id)
		}
	}
	res := &Result{
		ID:           uuid.New().String(),
		Form:         t.Form,
		Request:      req,
		Banks:        banks,
		Offers:       q.Offers,
		Summary:      Summarize(q.Offers),
		ServerBest:   q.ServerBest,
		ServerLowest: q.ServerLowest,
		CreatedAt:    w.now(),
	}
	w.result = res
	w.applied = nil
	return res, nil
}

// Fail records msg as the error state of ticket.
func (w *Workspace) Fail(t Ticket, msg string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t.Generation != w.generation {
		return ErrStale
	}
	w.release()
	w.errMsg = msg
	return nil
}

// Cancel aborts the in-flight comparison, if any.
func (w *Workspace) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight != nil {
		w.generation++
		w.release()
	}
}

func (w *Workspace) release() {
	if w.inFlight != nil {
		w.inFlight()
		w.inFlight = nil
	}
}

// Result returns the current result, or nil.
func (w *Workspace) Result() *Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// SetSort changes the sort key of the offer list.
func (w *Workspace) SetSort(key SortKey) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sortKey = key
}

// Ranking is the current result ordered by the workspace's sort key.
type Ranking struct {
	SortBy  SortKey
	Offers  []bamboo.BankOffer
	Summary Summary
}

// Offers ranks the current result under a single lock.
func (w *Workspace) Offers() (Ranking, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return Ranking{}, ErrNoResult
	}
	return Ranking{
		SortBy:  w.sortKey,
		Offers:  Rank(w.result.Offers, w.sortKey),
		Summary: w.result.Summary,
	}, nil
}

// Apply marks the offer of bankID as applied to and returns it.
func (w *Workspace) Apply(bankID string) (bamboo.BankOffer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return bamboo.BankOffer{}, ErrNoResult
	}
	offer, ok := w.result.Offer(bankID)
	if !ok {
		return bamboo.BankOffer{}, ErrOfferNotFound
	}
	for _, id := range w.applied {
		if id == bankID {
			return offer, nil
		}
	}
	w.applied = append(w.applied, bankID)
	return offer, nil
}

// Reset restores the default form and banks and clears the result.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight != nil {
		w.generation++
		w.release()
	}
	w.form = DefaultForm()
	w.result = nil
	w.errMsg = ""
	w.applied = nil
	w.selection.Reset()
	w.touched = w.now()
}

// Snapshot returns the current state.
func (w *Workspace) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		ID:          w.ID,
		Form:        w.form,
		KnownBanks:  w.selection.Known(),
		Selected:    w.selection.IDs(),
		AllSelected: w.selection.AllSelected(),
		SortBy:      w.sortKey,
		Loading:     w.inFlight != nil,
		Error:       w.errMsg,
		Result:      w.result,
		Applied:     append([]string{}, w.applied...),
		UpdatedAt:   w.touched,
	}
}
