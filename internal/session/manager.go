package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bamboofin/bamboo_portal/internal/cache"
	"github.com/bamboofin/bamboo_portal/internal/models"
	"github.com/bamboofin/bamboo_portal/internal/notify"
	"github.com/bamboofin/bamboo_portal/internal/permission"
	"github.com/bamboofin/bamboo_portal/internal/utils"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// ExpiredMessage is shown when the backend rejects a session token.
const ExpiredMessage = "Session expirée, veuillez vous reconnecter"

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, s *models.Session) error
	IDs(ctx context.Context) ([]string, error)
	Forget(ctx context.Context, id string) error
}

// Backend is the part of the Bamboo API that owns authentication.
type Backend interface {
	AdminLogin(ctx context.Context, req bamboo.AdminLoginRequest) (*bamboo.AdminLoginResponse, error)
	AdminLogout(ctx context.Context) error
	ValidateAdminToken(ctx context.Context) (bool, error)
	UserLogin(ctx context.Context, req bamboo.UserLoginRequest) (*bamboo.UserLoginResponse, error)
	Verify(ctx context.Context, req bamboo.VerificationRequest) (*bamboo.UserLoginResponse, error)
	UserLogout(ctx context.Context) error
	ValidateUserToken(ctx context.Context) (bool, error)
}

// TeardownFunc runs when a session ends, by logout or invalidation.
type TeardownFunc func(ctx context.Context, s *models.Session)

// Login is the outcome of a successful login.
type Login struct {
	Session *models.Session
	// Token is the portal JWT handed to the browser.
	Token string
}

// Manager owns the lifecycle of portal sessions.
type Manager struct {
	store    Store
	backend  Backend
	notifier notify.Notifier
	secret   string
	ttl      time.Duration

	mu       sync.RWMutex
	teardown []TeardownFunc
}

// NewManager creates a session manager.
func NewManager(store Store, backend Backend, notifier notify.Notifier, secret string, ttl time.Duration) *Manager {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Manager{
		store:    store,
		backend:  backend,
		notifier: notifier,
		secret:   secret,
		ttl:      ttl,
	}
}

// OnTeardown registers fn to run whenever a session ends.
func (m *Manager) OnTeardown(fn TeardownFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardown = append(m.teardown, fn)
}

// AdminLogin authenticates an administrator against the backend.
func (m *Manager) AdminLogin(ctx context.Context, username, password, workspaceID string) (*Login, error) {
	resp, err := m.backend.AdminLogin(ctx, bamboo.AdminLoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("admin login: %w", utils.ErrInvalidToken)
	}
	if !resp.User.IsActive {
		return nil, utils.ErrInactiveAccount
	}

	grants, err := permission.Parse(resp.User.Permissions)
	if err != nil {
		log.Warn().Err(err).Str("admin_id", resp.User.ID).Msg("Unreadable admin permissions, using role defaults")
	}
	if len(grants) == 0 {
		grants = permission.DefaultFor(resp.User.Role)
	}

	user := resp.User
	return m.open(ctx, &models.Session{
		Kind:        models.SessionAdmin,
		Token:       resp.Token,
		Role:        user.Role,
		Permissions: grants,
		Admin:       &user,
		WorkspaceID: workspaceID,
	})
}

// CustomerLogin authenticates a customer by email or phone number.
func (m *Manager) CustomerLogin(ctx context.Context, identifier, password string, remember bool, workspaceID string) (*Login, error) {
	req := bamboo.UserLoginRequest{Password: password, RememberMe: remember}
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		req.Email = identifier
	} else {
		req.Phone = identifier
	}

	resp, err := m.backend.UserLogin(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("customer login: %w", err)
	}
	return m.openCustomer(ctx, resp, workspaceID)
}

// Verify confirms a registration code. The backend logs the customer in.
func (m *Manager) Verify(ctx context.Context, req bamboo.VerificationRequest, workspaceID string) (*Login, error) {
	resp, err := m.backend.Verify(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("verify account: %w", err)
	}
	return m.openCustomer(ctx, resp, workspaceID)
}

func (m *Manager) openCustomer(ctx context.Context, resp *bamboo.UserLoginResponse, workspaceID string) (*Login, error) {
	if resp.Token == "" {
		return nil, utils.ErrInvalidToken
	}
	if !resp.User.IsActive {
		return nil, utils.ErrInactiveAccount
	}
	user := resp.User
	return m.open(ctx, &models.Session{
		Kind:        models.SessionCustomer,
		Token:       resp.Token,
		Customer:    &user,
		WorkspaceID: workspaceID,
	})
}

func (m *Manager) open(ctx context.Context, s *models.Session) (*Login, error) {
	id, err := utils.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	now := time.Now()
	s.ID = id
	s.CreatedAt = now
	s.ExpiresAt = now.Add(m.ttl)

	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	token, err := utils.GenerateJWT(m.secret, s.ID, string(s.Kind), m.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	log.Info().Str("session_id", s.ID).Str("kind", string(s.Kind)).Str("user_id", s.UserID()).Msg("Session opened")
	return &Login{Session: s, Token: token}, nil
}

// Hydrate resolves a portal token into its live session.
func (m *Manager) Hydrate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := utils.ValidateJWT(m.secret, token)
	if err != nil {
		return nil, err
	}

	s, err := m.store.Get(ctx, claims.SessionID)
	if errors.Is(err, cache.ErrMiss) {
		return nil, utils.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if s.Expired(time.Now()) {
		m.end(ctx, s)
		return nil, utils.ErrSessionExpired
	}
	if !s.Active() {
		m.end(ctx, s)
		return nil, utils.ErrInactiveAccount
	}
	return s, nil
}

// Logout ends s locally, then tells the backend. A backend failure is logged
// and does not fail the logout.
func (m *Manager) Logout(ctx context.Context, s *models.Session) {
	m.end(ctx, s)

	bctx := bamboo.WithToken(ctx, s.Token)
	var err error
	if s.Kind == models.SessionAdmin {
		err = m.backend.AdminLogout(bctx)
	} else {
		err = m.backend.UserLogout(bctx)
	}
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Msg("Backend logout failed")
	}
}

// Invalidate ends the session owning a backend token the API rejected.
// It is safe to call for unknown tokens.
func (m *Manager) Invalidate(ctx context.Context, token string) {
	if token == "" {
		return
	}
	s, err := m.store.GetByToken(ctx, token)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Error().Err(err).Msg("Failed to look up rejected session")
		}
		return
	}

	m.end(ctx, s)
	m.notifier.Warning(s.WorkspaceID, ExpiredMessage)
	log.Info().Str("session_id", s.ID).Msg("Session invalidated by backend")
}

// Revalidation counts the outcome of RevalidateAll.
type Revalidation struct {
	Checked int
	Dropped int
}

// RevalidateAll checks every stored session against the backend and ends
// those it no longer accepts. Sessions are kept when the backend is down.
func (m *Manager) RevalidateAll(ctx context.Context) (Revalidation, error) {
	var out Revalidation
	ids, err := m.store.IDs(ctx)
	if err != nil {
		return out, fmt.Errorf("list sessions: %w", err)
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		s, err := m.store.Get(ctx, id)
		if errors.Is(err, cache.ErrMiss) {
			_ = m.store.Forget(ctx, id)
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("session_id", id).Msg("Failed to load session")
			continue
		}

		out.Checked++
		if s.Expired(time.Now()) {
			m.end(ctx, s)
			out.Dropped++
			continue
		}

		valid, err := m.validate(ctx, s)
		switch {
		case errors.Is(err, bamboo.ErrUnauthorized):
			// No-op when the unauthorized hook already ran.
			m.Invalidate(ctx, s.Token)
			out.Dropped++
		case err != nil:
			log.Warn().Err(err).Str("session_id", s.ID).Msg("Session validation skipped")
		case !valid:
			m.end(ctx, s)
			m.notifier.Warning(s.WorkspaceID, ExpiredMessage)
			out.Dropped++
		}
	}
	return out, nil
}

func (m *Manager) validate(ctx context.Context, s *models.Session) (bool, error) {
	bctx := bamboo.WithToken(ctx, s.Token)
	if s.Kind == models.SessionAdmin {
		return m.backend.ValidateAdminToken(bctx)
	}
	return m.backend.ValidateUserToken(bctx)
}

func (m *Manager) end(ctx context.Context, s *models.Session) {
	if err := m.store.Delete(ctx, s); err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("Failed to delete session")
	}

	m.mu.RLock()
	hooks := append([]TeardownFunc(nil), m.teardown...)
	m.mu.RUnlock()
	for _, fn := range hooks {
		fn(ctx, s)
	}
}
