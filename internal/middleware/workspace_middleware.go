package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bamboofin/bamboo_portal/internal/comparator"
	"github.com/bamboofin/bamboo_portal/internal/utils"
)

// WorkspaceCookie identifies the comparison workspace of a browser.
const WorkspaceCookie = "bamboo_ws"

// WorkspaceMiddleware binds each request to its comparison workspace,
// issuing a signed cookie on first visit.
type WorkspaceMiddleware struct {
	registry *comparator.Registry
	secret   string
	secure   bool
	maxAge   int
}

// NewWorkspaceMiddleware constructs a new WorkspaceMiddleware.
func NewWorkspaceMiddleware(registry *comparator.Registry, secret string, secure bool, maxAge int) *WorkspaceMiddleware {
	return &WorkspaceMiddleware{registry: registry, secret: secret, secure: secure, maxAge: maxAge}
}

// cookieID returns the verified workspace id, or "" when the cookie is
// missing or tampered with.
func (m *WorkspaceMiddleware) cookieID(c *gin.Context) string {
	raw, err := c.Cookie(WorkspaceCookie)
	if err != nil {
		return ""
	}
	id, _ := utils.VerifySignedValue(raw, m.secret)
	return id
}

// Handle binds the request to its workspace, creating one when needed.
func (m *WorkspaceMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetWorkspace(c) != nil {
			c.Next()
			return
		}

		id := m.cookieID(c)
		ws := m.registry.Get(id)
		if ws.ID != id {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(WorkspaceCookie, utils.SignValue(ws.ID, m.secret), m.maxAge, "/", "", m.secure, true)
		}

		c.Set("workspace", ws)
		c.Set("workspace_id", ws.ID)
		c.Next()
	}
}

// Peek binds the request to an existing workspace only. Requests without a
// live workspace proceed with an empty workspace_id.
func (m *WorkspaceMiddleware) Peek() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := m.cookieID(c); id != "" {
			if ws, ok := m.registry.Lookup(id); ok {
				c.Set("workspace", ws)
				c.Set("workspace_id", ws.ID)
			}
		}
		c.Next()
	}
}

// GetWorkspace returns the workspace bound to the request.
func GetWorkspace(c *gin.Context) *comparator.Workspace {
	v, ok := c.Get("workspace")
	if !ok {
		return nil
	}
	ws, _ := v.(*comparator.Workspace)
	return ws
}
