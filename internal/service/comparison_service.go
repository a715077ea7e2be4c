package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bamboofin/bamboo_portal/internal/comparator"
	"github.com/bamboofin/bamboo_portal/internal/models"
	"github.com/bamboofin/bamboo_portal/internal/notify"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// User facing messages of the comparator.
const (
	MsgInvalidForm      = "Veuillez corriger les erreurs du formulaire"
	MsgNoBankSelected   = "Vous devez sélectionner au moins une banque"
	MsgCompareFailed    = "Une erreur est survenue lors de la comparaison"
	MsgCompareDone      = "Comparaison terminée avec succès !"
	MsgComparisonSaved  = "Comparaison sauvegardée avec succès"
	MsgLinkCopied       = "Lien copié dans le presse-papier"
	ComparatorPageName  = "multi_bank_comparator"
	savedComparisonsMax = 50
)

var (
	// ErrNotCustomer is returned when a customer-only action has no customer session.
	ErrNotCustomer = errors.New("CUSTOMER_SESSION_REQUIRED")
	// ErrNoBankSelected is returned by Compare before the catalog is loaded.
	ErrNoBankSelected = errors.New("NO_BANK_SELECTED")
)

// BankCatalog returns the bank list.
type BankCatalog interface {
	Banks(ctx context.Context) ([]bamboo.Bank, error)
	Refresh(ctx context.Context) ([]bamboo.Bank, error)
}

// ComparisonStore persists saved comparisons.
type ComparisonStore interface {
	Create(ctx context.Context, sc *models.SavedComparison) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.SavedComparison, error)
	GetByID(ctx context.Context, userID, id string) (*models.SavedComparison, error)
	Delete(ctx context.Context, userID, id string) error
}

// ComparisonService runs the multi-bank comparison workflow of a workspace.
type ComparisonService struct {
	builder   *comparator.Builder
	client    *comparator.Client
	registry  *comparator.Registry
	banks     BankCatalog
	saved     ComparisonStore
	analytics *AnalyticsService
	notifier  notify.Notifier
}

// NewComparisonService constructs a ComparisonService.
func NewComparisonService(
	builder *comparator.Builder,
	client *comparator.Client,
	registry *comparator.Registry,
	banks BankCatalog,
	saved ComparisonStore,
	analytics *AnalyticsService,
	notifier notify.Notifier,
) *ComparisonService {
	return &ComparisonService{
		builder:   builder,
		client:    client,
		registry:  registry,
		banks:     banks,
		saved:     saved,
		analytics: analytics,
		notifier:  notifier,
	}
}

// Workspace returns the workspace for id, creating it when needed.
func (s *ComparisonService) Workspace(id string) *comparator.Workspace {
	return s.registry.Get(id)
}

// LoadBanks returns the catalog and refreshes the known banks of every
// workspace. It records a comparator page view.
func (s *ComparisonService) LoadBanks(ctx context.Context, ws *comparator.Workspace, userID string) ([]bamboo.Bank, error) {
	banks, err := s.banks.Banks(ctx)
	if err != nil {
		s.notifier.Error(ws.ID, bamboo.ErrorMessage(err, "Impossible de charger les banques"))
		return nil, err
	}
	s.SyncBanks(banks)
	s.analytics.TrackPageView(ctx, ComparatorPageName, ws.ID, userID)
	return banks, nil
}

// RefreshBanks reloads the catalog from the API and pushes it to the registry.
func (s *ComparisonService) RefreshBanks(ctx context.Context) (int, error) {
	banks, err := s.banks.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	s.SyncBanks(banks)
	return len(banks), nil
}

// SyncBanks pushes a catalog to the registry.
func (s *ComparisonService) SyncBanks(banks []bamboo.Bank) {
	ids := make([]string, 0, len(banks))
	for _, b := range banks {
		ids = append(ids, b.ID)
	}
	s.registry.SetKnownBanks(ids)
}

// Validate checks a form without comparing.
func (s *ComparisonService) Validate(f comparator.Form) comparator.FieldErrors {
	return s.builder.Validate(f)
}

// Toggle flips a bank in the selection. Removing the last bank is refused
// with a warning.
func (s *ComparisonService) Toggle(ws *comparator.Workspace, bankID string) error {
	err := ws.Toggle(bankID)
	if errors.Is(err, comparator.ErrLastBank) {
		s.notifier.Warning(ws.ID, MsgNoBankSelected)
	}
	return err
}

// Compare validates f, queries the API for the selected banks and stores
// the result. A comparison overtaken by a newer one returns
// comparator.ErrStale and changes nothing.
func (s *ComparisonService) Compare(ctx context.Context, ws *comparator.Workspace, f comparator.Form, userID string) (*comparator.Result, error) {
	req, err := s.builder.Build(f)
	if err != nil {
		s.notifier.Error(ws.ID, MsgInvalidForm)
		return nil, err
	}
	if len(ws.SelectedBanks()) == 0 {
		s.notifier.Error(ws.ID, MsgNoBankSelected)
		return nil, ErrNoBankSelected
	}

	cctx, ticket := ws.Begin(ctx, f)
	quote, err := s.client.Compare(cctx, req, ticket.Banks)
	if err != nil {
		msg := bamboo.ErrorMessage(err, MsgCompareFailed)
		ferr := ws.Fail(ticket, msg)
		// A 401 tears down the session and its workspace before Fail runs,
		// so the expired session wins over the stale ticket.
		if errors.Is(err, bamboo.ErrUnauthorized) {
			return nil, err
		}
		if ferr != nil {
			return nil, ferr
		}
		log.Warn().Err(err).Str("workspace_id", ws.ID).Msg("Comparison failed")
		s.notifier.Error(ws.ID, msg)
		return nil, err
	}

	res, err := ws.Finish(ticket, req, quote)
	if err != nil {
		return nil, err
	}

	s.notifier.Success(ws.ID, MsgCompareDone)
	props := map[string]any{"offers_received": res.Summary.TotalOffers}
	if best := res.Summary.BestOffer; best != nil {
		props["best_rate"] = best.Product.Rate
		props["best_bank"] = best.Bank.ID
	}
	s.analytics.Track(ctx, models.EventSimulationDone, ws.ID, userID, props)
	return res, nil
}

// Apply records the start of an application to one bank's offer.
func (s *ComparisonService) Apply(ctx context.Context, ws *comparator.Workspace, bankID, userID string) (bamboo.BankOffer, error) {
	offer, err := ws.Apply(bankID)
	if err != nil {
		return offer, err
	}

	s.analytics.Track(ctx, models.EventApplicationStarted, ws.ID, userID, map[string]any{
		"bank_id":         offer.Bank.ID,
		"bank_name":       offer.Bank.Name,
		"interest_rate":   offer.Product.Rate,
		"monthly_payment": offer.MonthlyPayment,
	})
	s.notifier.Success(ws.ID, fmt.Sprintf("Demande transmise à %s. Vous serez contacté sous 48h.", offer.Bank.Name))
	return offer, nil
}

// Share returns the share text of the current result.
func (s *ComparisonService) Share(ws *comparator.Workspace) (string, error) {
	res := ws.Result()
	if res == nil {
		return "", comparator.ErrNoResult
	}
	s.notifier.Success(ws.ID, MsgLinkCopied)
	return comparator.ShareText(res), nil
}

// Reset restores the workspace defaults.
func (s *ComparisonService) Reset(ws *comparator.Workspace) {
	ws.Reset()
}

// Save keeps the current result for a logged in customer.
func (s *ComparisonService) Save(ctx context.Context, ws *comparator.Workspace, sess *models.Session, name string) (*models.SavedComparison, error) {
	if sess == nil || sess.Kind != models.SessionCustomer {
		return nil, ErrNotCustomer
	}
	res := ws.Result()
	if res == nil {
		return nil, comparator.ErrNoResult
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode comparison: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Comparaison %s - %s", res.Request.CreditType, comparator.FormatXAF(decimal.NewFromInt(res.Request.Amount)))
	}

	sc := &models.SavedComparison{
		ID:          uuid.New().String(),
		UserID:      sess.UserID(),
		Name:        name,
		CreditType:  res.Request.CreditType,
		Amount:      res.Request.Amount,
		Duration:    res.Request.Duration,
		Savings:     res.Summary.Savings,
		TotalOffers: res.Summary.TotalOffers,
		Result:      raw,
	}
	if best := res.Summary.BestOffer; best != nil {
		bank, rate := best.Bank.ID, best.Product.Rate
		sc.BestBankID = &bank
		sc.BestRate = &rate
	}

	if err := s.saved.Create(ctx, sc); err != nil {
		return nil, fmt.Errorf("save comparison: %w", err)
	}
	s.analytics.Track(ctx, models.EventComparisonSaved, ws.ID, sc.UserID, map[string]any{"comparison_id": sc.ID})
	s.notifier.Success(ws.ID, MsgComparisonSaved)
	return sc, nil
}

// SavedList lists the comparisons of a customer.
func (s *ComparisonService) SavedList(ctx context.Context, sess *models.Session) ([]models.SavedComparison, error) {
	if sess == nil || sess.Kind != models.SessionCustomer {
		return nil, ErrNotCustomer
	}
	return s.saved.ListByUser(ctx, sess.UserID(), savedComparisonsMax)
}

// SavedGet returns one saved comparison of a customer.
func (s *ComparisonService) SavedGet(ctx context.Context, sess *models.Session, id string) (*models.SavedComparison, error) {
	if sess == nil || sess.Kind != models.SessionCustomer {
		return nil, ErrNotCustomer
	}
	return s.saved.GetByID(ctx, sess.UserID(), id)
}

// SavedDelete removes one saved comparison of a customer.
func (s *ComparisonService) SavedDelete(ctx context.Context, sess *models.Session, id string) error {
	if sess == nil || sess.Kind != models.SessionCustomer {
		return ErrNotCustomer
	}
	return s.saved.Delete(ctx, sess.UserID(), id)
}

// DropWorkspace forgets a workspace, aborting its in-flight comparison.
func (s *ComparisonService) DropWorkspace(id string) {
	if id != "" {
		s.registry.Drop(id)
	}
}
