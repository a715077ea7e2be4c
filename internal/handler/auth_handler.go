package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bamboofin/bamboo_portal/internal/middleware"
	"github.com/bamboofin/bamboo_portal/internal/models"
	"github.com/bamboofin/bamboo_portal/internal/notify"
	"github.com/bamboofin/bamboo_portal/internal/permission"
	"github.com/bamboofin/bamboo_portal/internal/session"
	"github.com/bamboofin/bamboo_portal/internal/utils"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// RegistrationAPI is the unauthenticated part of the customer account API.
type RegistrationAPI interface {
	Register(ctx context.Context, req bamboo.RegisterRequest) (*bamboo.RegistrationResponse, error)
	ResendVerification(ctx context.Context, req bamboo.ContactRequest) error
	RequestPasswordReset(ctx context.Context, req bamboo.ContactRequest) error
	ConfirmPasswordReset(ctx context.Context, req bamboo.PasswordResetConfirmRequest) error
}

// AuthHandler handles customer and admin authentication.
type AuthHandler struct {
	sessions *session.Manager
	api      RegistrationAPI
	limiter  *middleware.LoginLimiter
	notifier notify.Notifier
	secure   bool
	ttl      time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *session.Manager, api RegistrationAPI, limiter *middleware.LoginLimiter, notifier notify.Notifier, secureCookie bool, ttl time.Duration) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		api:      api,
		limiter:  limiter,
		notifier: notifier,
		secure:   secureCookie,
		ttl:      ttl,
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Password   string `json:"password" binding:"required"`
		RememberMe bool   `json:"remember_me"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c)
		return
	}
	identifier := firstNonEmpty(req.Identifier, req.Email, req.Phone)
	if identifier == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "Email ou téléphone requis")
		return
	}

	login, err := h.sessions.CustomerLogin(c.Request.Context(), identifier, req.Password, req.RememberMe, c.GetString("workspace_id"))
	if err != nil {
		h.loginFailed(c, err)
		return
	}
	h.loggedIn(c, login, "Connexion réussie")
}

// AdminLogin handles POST /api/admin/auth/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c)
		return
	}

	login, err := h.sessions.AdminLogin(c.Request.Context(), req.Username, req.Password, c.GetString("workspace_id"))
	if err != nil {
		h.loginFailed(c, err)
		return
	}
	h.loggedIn(c, login, "Connexion réussie")
}

// Verify handles POST /api/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req bamboo.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" || (req.Email == "" && req.Phone == "") {
		bindError(c)
		return
	}

	login, err := h.sessions.Verify(c.Request.Context(), req, c.GetString("workspace_id"))
	if err != nil {
		respondError(c, h.notifier, err, "Code de vérification invalide")
		return
	}
	h.loggedIn(c, login, "Compte vérifié")
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req bamboo.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c)
		return
	}
	if req.RegistrationMethod == "" {
		req.RegistrationMethod = "email"
		if req.Email == "" {
			req.RegistrationMethod = "phone"
		}
	}

	resp, err := h.api.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.notifier, err, "Inscription impossible")
		return
	}
	utils.Success(c, 201, firstNonEmpty(resp.Message, "Inscription réussie"), resp)
}

// ResendVerification handles POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	req, ok := bindContact(c)
	if !ok {
		return
	}
	if err := h.api.ResendVerification(c.Request.Context(), req); err != nil {
		respondError(c, h.notifier, err, "Envoi du code impossible")
		return
	}
	utils.Success(c, 200, "Code de vérification renvoyé", nil)
}

// RequestPasswordReset handles POST /api/auth/reset-password
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	req, ok := bindContact(c)
	if !ok {
		return
	}
	if err := h.api.RequestPasswordReset(c.Request.Context(), req); err != nil {
		respondError(c, h.notifier, err, "Réinitialisation impossible")
		return
	}
	utils.Success(c, 200, "Code de réinitialisation envoyé", nil)
}

// ConfirmPasswordReset handles POST /api/auth/reset-password/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req bamboo.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" || req.NewPassword == "" {
		bindError(c)
		return
	}
	if err := h.api.ConfirmPasswordReset(c.Request.Context(), req); err != nil {
		respondError(c, h.notifier, err, "Réinitialisation impossible")
		return
	}
	utils.Success(c, 200, "Mot de passe réinitialisé", nil)
}

// Logout handles POST /api/auth/logout and /api/admin/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if s := middleware.GetSession(c); s != nil {
		h.sessions.Logout(c.Request.Context(), s)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secure, true)
	utils.Success(c, 200, "Déconnexion réussie", nil)
}

// Me handles GET /api/auth/me and /api/admin/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	utils.Success(c, 200, "Session retrieved", sessionView(middleware.GetSession(c)))
}

func (h *AuthHandler) loggedIn(c *gin.Context, login *session.Login, message string) {
	h.limiter.Reset(c.Request.Context(), c.ClientIP())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, login.Token, int(h.ttl.Seconds()), "/", "", h.secure, true)

	data := sessionView(login.Session)
	data["token"] = login.Token
	utils.Success(c, 200, message, data)
}

func (h *AuthHandler) loginFailed(c *gin.Context, err error) {
	var apiErr *bamboo.APIError
	errors.As(err, &apiErr)
	switch {
	case errors.Is(err, bamboo.ErrUnauthorized), apiErr != nil && apiErr.StatusCode == 400:
		h.limiter.Fail(c.Request.Context(), c.ClientIP())
		msg := "Identifiants invalides"
		if apiErr != nil && apiErr.Detail != "" {
			msg = apiErr.Detail
		}
		utils.Error(c, 401, "INVALID_CREDENTIALS", msg)
	case errors.Is(err, utils.ErrInactiveAccount):
		utils.Error(c, 403, "INACTIVE_ACCOUNT", "Compte désactivé")
	default:
		respondError(c, h.notifier, err, "Connexion impossible")
	}
}

func sessionView(s *models.Session) gin.H {
	if s == nil {
		return gin.H{"authenticated": false}
	}
	view := gin.H{
		"authenticated": true,
		"kind":          s.Kind,
		"expiresAt":     s.ExpiresAt,
	}
	switch s.Kind {
	case models.SessionAdmin:
		view["user"] = s.Admin
		view["role"] = s.Role
		view["roleLabel"] = permission.RoleLabel(s.Role)
		view["permissions"] = s.Permissions
		view["permissionLabels"] = permission.Labels(s.Permissions)
	default:
		view["user"] = s.Customer
	}
	return view
}

func bindContact(c *gin.Context) (bamboo.ContactRequest, bool) {
	var req bamboo.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Email == "" && req.Phone == "") {
		bindError(c)
		return req, false
	}
	return req, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
