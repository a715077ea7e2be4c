package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bamboofin/bamboo_portal/internal/cache"
	"github.com/bamboofin/bamboo_portal/internal/models"
	"github.com/bamboofin/bamboo_portal/internal/permission"
	"github.com/bamboofin/bamboo_portal/internal/utils"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

const secret = "test-secret"

type memStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*models.Session{}}
}

func (s *memStore) Save(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return nil, cache.ErrMiss
}

func (s *memStore) GetByToken(_ context.Context, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.Token == token {
			return sess, nil
		}
	}
	return nil, cache.ErrMiss
}

func (s *memStore) Delete(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess.ID)
	return nil
}

func (s *memStore) IDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memStore) Forget(context.Context, string) error { return nil }

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) AdminLogin(ctx context.Context, req bamboo.AdminLoginRequest) (*bamboo.AdminLoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*bamboo.AdminLoginResponse)
	return resp, args.Error(1)
}

func (m *mockBackend) AdminLogout(ctx context.Context) error {
	return m.Called(bamboo.TokenFrom(ctx)).Error(0)
}

func (m *mockBackend) ValidateAdminToken(ctx context.Context) (bool, error) {
	args := m.Called(bamboo.TokenFrom(ctx))
	return args.Bool(0), args.Error(1)
}

func (m *mockBackend) UserLogin(ctx context.Context, req bamboo.UserLoginRequest) (*bamboo.UserLoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*bamboo.UserLoginResponse)
	return resp, args.Error(1)
}

func (m *mockBackend) Verify(ctx context.Context, req bamboo.VerificationRequest) (*bamboo.UserLoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*bamboo.UserLoginResponse)
	return resp, args.Error(1)
}

func (m *mockBackend) UserLogout(ctx context.Context) error {
	return m.Called(bamboo.TokenFrom(ctx)).Error(0)
}

func (m *mockBackend) ValidateUserToken(ctx context.Context) (bool, error) {
	args := m.Called(bamboo.TokenFrom(ctx))
	return args.Bool(0), args.Error(1)
}

type recordingNotifier struct {
	mu       sync.Mutex
	warnings map[string][]string
}

func (n *recordingNotifier) Success(string, string) {}
func (n *recordingNotifier) Error(string, string)   {}
func (n *recordingNotifier) Info(string, string)    {}
func (n *recordingNotifier) Warning(channel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.warnings == nil {
		n.warnings = map[string][]string{}
	}
	n.warnings[channel] = append(n.warnings[channel], message)
}

func customerResponse(token string, active bool) *bamboo.UserLoginResponse {
	return &bamboo.UserLoginResponse{
		Success: true,
		Token:   token,
		User:    bamboo.User{ID: "u-1", Email: "awa@bamboo.ga", IsActive: active},
	}
}

func TestCustomerLoginByEmailOrPhone(t *testing.T) {
	backend := new(mockBackend)
	m := NewManager(newMemStore(), backend, nil, secret, time.Hour)

	backend.On("UserLogin", mock.Anything, bamboo.UserLoginRequest{Email: "awa@bamboo.ga", Password: "pw"}).
		Return(customerResponse("tok-email", true), nil).Once()
	backend.On("UserLogin", mock.Anything, bamboo.UserLoginRequest{Phone: "07123456", Password: "pw", RememberMe: true}).
		Return(customerResponse("tok-phone", true), nil).Once()

	login, err := m.CustomerLogin(context.Background(), " awa@bamboo.ga ", "pw", false, "ws-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCustomer, login.Session.Kind)
	assert.Equal(t, "ws-1", login.Session.WorkspaceID)

	s, err := m.Hydrate(context.Background(), login.Token)
	require.NoError(t, err)
	assert.Equal(t, "tok-email", s.Token)

	_, err = m.CustomerLogin(context.Background(), "07123456", "pw", true, "ws-1")
	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestCustomerLoginRejectsInactive(t *testing.T) {
	backend := new(mockBackend)
	store := newMemStore()
	m := NewManager(store, backend, nil, secret, time.Hour)
	backend.On("UserLogin", mock.Anything, mock.Anything).Return(customerResponse("tok", false), nil)

	_, err := m.CustomerLogin(context.Background(), "awa@bamboo.ga", "pw", false, "")
	assert.ErrorIs(t, err, utils.ErrInactiveAccount)
	ids, _ := store.IDs(context.Background())
	assert.Empty(t, ids)
}

func TestAdminLoginDecodesPermissions(t *testing.T) {
	backend := new(mockBackend)
	m := NewManager(newMemStore(), backend, nil, secret, time.Hour)

	backend.On("AdminLogin", mock.Anything, bamboo.AdminLoginRequest{Username: "moussa", Password: "pw"}).Return(&bamboo.AdminLoginResponse{
		Success: true,
		Token:   "admin-tok",
		User: bamboo.AdminUser{
			ID:          "a-1",
			Role:        permission.RoleBankAdmin,
			IsActive:    true,
			Permissions: json.RawMessage(`{"products":{"read":true,"delete":false}}`),
		},
	}, nil)

	login, err := m.AdminLogin(context.Background(), "moussa", "pw", "ws-a")
	require.NoError(t, err)
	assert.True(t, login.Session.Permissions.Has("products", "read"))
	assert.False(t, login.Session.Permissions.Has("products", "delete"))
	assert.Equal(t, permission.RoleBankAdmin, login.Session.Role)
}

func TestAdminLoginFallsBackToRoleDefaults(t *testing.T) {
	backend := new(mockBackend)
	m := NewManager(newMemStore(), backend, nil, secret, time.Hour)

	backend.On("AdminLogin", mock.Anything, mock.Anything).Return(&bamboo.AdminLoginResponse{
		Token: "admin-tok",
		User:  bamboo.AdminUser{ID: "a-2", Role: permission.RoleModerator, IsActive: true},
	}, nil)

	login, err := m.AdminLogin(context.Background(), "mod", "pw", "")
	require.NoError(t, err)
	assert.True(t, login.Session.Permissions.Has("simulations", "read"))
}

func TestLogoutClearsLocalStateEvenWhenBackendFails(t *testing.T) {
	backend := new(mockBackend)
	store := newMemStore()
	m := NewManager(store, backend, nil, secret, time.Hour)

	backend.On("UserLogin", mock.Anything, mock.Anything).Return(customerResponse("tok", true), nil)
	backend.On("UserLogout", "tok").Return(bamboo.ErrUnavailable)

	var tornDown []string
	m.OnTeardown(func(_ context.Context, s *models.Session) { tornDown = append(tornDown, s.ID) })

	login, err := m.CustomerLogin(context.Background(), "awa@bamboo.ga", "pw", false, "ws-1")
	require.NoError(t, err)

	m.Logout(context.Background(), login.Session)

	_, err = m.Hydrate(context.Background(), login.Token)
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)
	assert.Equal(t, []string{login.Session.ID}, tornDown)
	backend.AssertExpectations(t)
}

func TestInvalidateOnRejectedToken(t *testing.T) {
	backend := new(mockBackend)
	notifier := &recordingNotifier{}
	m := NewManager(newMemStore(), backend, notifier, secret, time.Hour)
	backend.On("UserLogin", mock.Anything, mock.Anything).Return(customerResponse("tok", true), nil)

	var dropped []string
	m.OnTeardown(func(_ context.Context, s *models.Session) { dropped = append(dropped, s.WorkspaceID) })

	login, err := m.CustomerLogin(context.Background(), "awa@bamboo.ga", "pw", false, "ws-9")
	require.NoError(t, err)

	m.Invalidate(context.Background(), "tok")
	m.Invalidate(context.Background(), "tok")
	m.Invalidate(context.Background(), "")

	_, err = m.Hydrate(context.Background(), login.Token)
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)
	assert.Equal(t, []string{"ws-9"}, dropped)
	assert.Equal(t, []string{ExpiredMessage}, notifier.warnings["ws-9"])
}

func TestHydrateRejectsBadToken(t *testing.T) {
	m := NewManager(newMemStore(), new(mockBackend), nil, secret, time.Hour)

	_, err := m.Hydrate(context.Background(), "garbage")
	assert.ErrorIs(t, err, utils.ErrInvalidToken)

	token, err := utils.GenerateJWT("other-secret", "ses_x", "customer", time.Hour)
	require.NoError(t, err)
	_, err = m.Hydrate(context.Background(), token)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestRevalidateAll(t *testing.T) {
	backend := new(mockBackend)
	store := newMemStore()
	m := NewManager(store, backend, nil, secret, time.Hour)

	store.sessions["ok"] = &models.Session{ID: "ok", Kind: models.SessionCustomer, Token: "t-ok", Customer: &bamboo.User{IsActive: true}, ExpiresAt: time.Now().Add(time.Hour)}
	store.sessions["bad"] = &models.Session{ID: "bad", Kind: models.SessionAdmin, Token: "t-bad", Admin: &bamboo.AdminUser{IsActive: true}, ExpiresAt: time.Now().Add(time.Hour)}
	store.sessions["gone"] = &models.Session{ID: "gone", Kind: models.SessionCustomer, Token: "t-gone", Customer: &bamboo.User{IsActive: true}, ExpiresAt: time.Now().Add(time.Hour)}
	store.sessions["down"] = &models.Session{ID: "down", Kind: models.SessionCustomer, Token: "t-down", Customer: &bamboo.User{IsActive: true}, ExpiresAt: time.Now().Add(time.Hour)}
	store.sessions["old"] = &models.Session{ID: "old", Kind: models.SessionCustomer, Token: "t-old", ExpiresAt: time.Now().Add(-time.Minute)}

	backend.On("ValidateUserToken", "t-ok").Return(true, nil)
	backend.On("ValidateAdminToken", "t-bad").Return(false, nil)
	backend.On("ValidateUserToken", "t-gone").Return(false, &bamboo.APIError{StatusCode: 401})
	backend.On("ValidateUserToken", "t-down").Return(false, bamboo.ErrUnavailable)

	res, err := m.RevalidateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Checked)
	assert.Equal(t, 3, res.Dropped)

	ids, _ := store.IDs(context.Background())
	assert.ElementsMatch(t, []string{"ok", "down"}, ids)
}
