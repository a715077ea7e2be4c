package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bamboofin/bamboo_portal/internal/models"
	"github.com/bamboofin/bamboo_portal/internal/permission"
	"github.com/bamboofin/bamboo_portal/internal/session"
	"github.com/bamboofin/bamboo_portal/internal/utils"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// SessionCookie carries the portal JWT for browsers.
const SessionCookie = "bamboo_session"

// LoginRedirect is where the UI sends a visitor whose session ended.
const LoginRedirect = "/auth/login"

// AuthMiddleware resolves the portal session of a request.
type AuthMiddleware struct {
	sessions *session.Manager
}

// NewAuthMiddleware constructs a new AuthMiddleware.
func NewAuthMiddleware(sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Optional attaches the session when the request carries a valid token.
// Anonymous requests go through.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := requestToken(c); token != "" {
			if s, err := m.sessions.Hydrate(c.Request.Context(), token); err == nil {
				attach(c, s)
			}
		}
		c.Next()
	}
}

// Require rejects requests without a live session.
func (m *AuthMiddleware) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := requestToken(c)
		if token == "" {
			Unauthorized(c, "UNAUTHORIZED", "Authentification requise")
			return
		}

		s, err := m.sessions.Hydrate(c.Request.Context(), token)
		if err != nil {
			code := "INVALID_TOKEN"
			switch {
			case errors.Is(err, utils.ErrSessionExpired), errors.Is(err, utils.ErrSessionNotFound):
				code = "SESSION_EXPIRED"
			case errors.Is(err, utils.ErrInactiveAccount):
				code = "INACTIVE_ACCOUNT"
			}
			Unauthorized(c, code, session.ExpiredMessage)
			return
		}

		attach(c, s)
		c.Next()
	}
}

// RequireKind rejects sessions of another kind. Use after Require.
func RequireKind(kind models.SessionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := GetSession(c)
		if s == nil || s.Kind != kind {
			utils.Error(c, 403, "FORBIDDEN", "Accès non autorisé")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission rejects admins lacking action on resource. Use after Require.
func RequirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := GetSession(c)
		if s == nil || s.Kind != models.SessionAdmin || !permission.Allows(s.Role, s.Permissions, resource, action) {
			utils.Error(c, 403, "FORBIDDEN", "Accès non autorisé")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin restricts a route to super administrators.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := GetSession(c)
		if s == nil || s.Kind != models.SessionAdmin || s.Role != permission.RoleSuperAdmin {
			utils.Error(c, 403, "FORBIDDEN", "Accès réservé aux super administrateurs")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Unauthorized clears the session cookie and answers 401 with the login redirect.
func Unauthorized(c *gin.Context, code, message string) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	utils.ErrorWithData(c, 401, code, message, gin.H{"redirect": LoginRedirect})
	c.Abort()
}

// GetSession returns the session attached to the request, or nil.
func GetSession(c *gin.Context) *models.Session {
	v, ok := c.Get("session")
	if !ok {
		return nil
	}
	s, _ := v.(*models.Session)
	return s
}

// UserID returns the id of the logged in user, or "".
func UserID(c *gin.Context) string {
	if s := GetSession(c); s != nil {
		return s.UserID()
	}
	return ""
}

func attach(c *gin.Context, s *models.Session) {
	c.Set("session", s)
	c.Set("session_id", s.ID)
	c.Request = c.Request.WithContext(bamboo.WithToken(c.Request.Context(), s.Token))
}

func requestToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	if token, err := c.Cookie(SessionCookie); err == nil {
		return token
	}
	return ""
}
