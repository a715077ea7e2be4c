package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bamboofin/bamboo_portal/internal/notify"
	"github.com/bamboofin/bamboo_portal/internal/permission"
	"github.com/bamboofin/bamboo_portal/internal/utils"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// ManagementAPI is the admin account management part of the Bamboo API.
type ManagementAPI interface {
	ListAdmins(ctx context.Context, params bamboo.AdminListParams) (*bamboo.AdminListResponse, error)
	GetAdmin(ctx context.Context, id string) (*bamboo.AdminUser, error)
	CreateAdmin(ctx context.Context, req bamboo.AdminCreateRequest) (*bamboo.AdminUser, error)
	UpdateAdmin(ctx context.Context, id string, req bamboo.AdminUpdateRequest) (*bamboo.AdminUser, error)
	DeleteAdmin(ctx context.Context, id string) error
	ToggleAdminStatus(ctx context.Context, id string) (*bamboo.AdminUser, error)
	GetInstitutions(ctx context.Context) (*bamboo.InstitutionsResponse, error)
	GetAdminStats(ctx context.Context) (*bamboo.AdminStats, error)
	ValidateUsername(ctx context.Context, username string) (bool, error)
	ValidateEmail(ctx context.Context, email, excludeAdminID string) (bool, error)
}

// AdminView is an admin account with its decoded permissions.
type AdminView struct {
	bamboo.AdminUser
	Permissions      permission.Set `json:"permissions"`
	PermissionLabels []string       `json:"permission_labels"`
	RoleLabel        string         `json:"role_label"`
}

func newAdminView(u bamboo.AdminUser) AdminView {
	set, err := permission.Parse(u.Permissions)
	if err != nil || len(set) == 0 {
		set = permission.DefaultFor(u.Role)
	}
	return AdminView{
		AdminUser:        u,
		Permissions:      set,
		PermissionLabels: permission.Labels(set),
		RoleLabel:        permission.RoleLabel(u.Role),
	}
}

// ManagementHandler serves admin account management, restricted to super admins.
type ManagementHandler struct {
	api      ManagementAPI
	notifier notify.Notifier
}

// NewManagementHandler creates a new ManagementHandler.
func NewManagementHandler(api ManagementAPI, notifier notify.Notifier) *ManagementHandler {
	return &ManagementHandler{api: api, notifier: notifier}
}

// List handles GET /api/admin/management/admins
func (h *ManagementHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	skip := (page - 1) * limit

	params := bamboo.AdminListParams{
		Skip:            &skip,
		Limit:           &limit,
		Search:          c.Query("search"),
		Role:            c.Query("role"),
		InstitutionType: c.Query("institution_type"),
	}
	if v, err := strconv.ParseBool(c.Query("is_active")); err == nil {
		params.IsActive = &v
	}

	resp, err := h.api.ListAdmins(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger les administrateurs")
		return
	}
	views := make([]AdminView, 0, len(resp.Admins))
	for _, u := range resp.Admins {
		views = append(views, newAdminView(u))
	}
	utils.SuccessWithPagination(c, 200, "Admins retrieved", views, page, limit, resp.Total)
}

// Get handles GET /api/admin/management/admins/:id
func (h *ManagementHandler) Get(c *gin.Context) {
	u, err := h.api.GetAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Admin retrieved", newAdminView(*u))
}

// Create handles POST /api/admin/management/admins
func (h *ManagementHandler) Create(c *gin.Context) {
	var req bamboo.AdminCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Email == "" || len(req.Password) < 8 || req.Role == "" {
		bindError(c)
		return
	}
	switch req.Role {
	case permission.RoleBankAdmin:
		if req.AssignedBankID == "" {
			utils.Error(c, 400, "INVALID_REQUEST", "Une banque doit être assignée")
			return
		}
	case permission.RoleInsuranceAdmin:
		if req.AssignedInsuranceCompanyID == "" {
			utils.Error(c, 400, "INVALID_REQUEST", "Une compagnie d'assurance doit être assignée")
			return
		}
	}

	u, err := h.api.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.notifier, err, "Création impossible")
		return
	}
	h.notifier.Success(c.GetString("workspace_id"), "Administrateur créé")
	utils.Success(c, 201, "Administrateur créé", newAdminView(*u))
}

// Update handles PUT /api/admin/management/admins/:id
func (h *ManagementHandler) Update(c *gin.Context) {
	var req bamboo.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c)
		return
	}
	u, err := h.api.UpdateAdmin(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.notifier, err, "Mise à jour impossible")
		return
	}
	h.notifier.Success(c.GetString("workspace_id"), "Administrateur mis à jour")
	utils.Success(c, 200, "Administrateur mis à jour", newAdminView(*u))
}

// Delete handles DELETE /api/admin/management/admins/:id
func (h *ManagementHandler) Delete(c *gin.Context) {
	if err := h.api.DeleteAdmin(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.notifier, err, "Suppression impossible")
		return
	}
	h.notifier.Success(c.GetString("workspace_id"), "Administrateur supprimé")
	utils.Success(c, 200, "Administrateur supprimé", nil)
}

// ToggleStatus handles PATCH /api/admin/management/admins/:id/toggle-status
func (h *ManagementHandler) ToggleStatus(c *gin.Context) {
	u, err := h.api.ToggleAdminStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	msg := "Administrateur désactivé"
	if u.IsActive {
		msg = "Administrateur activé"
	}
	h.notifier.Success(c.GetString("workspace_id"), msg)
	utils.Success(c, 200, msg, newAdminView(*u))
}

// Institutions handles GET /api/admin/management/institutions
func (h *ManagementHandler) Institutions(c *gin.Context) {
	resp, err := h.api.GetInstitutions(c.Request.Context())
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Institutions retrieved", resp)
}

// Stats handles GET /api/admin/management/stats
func (h *ManagementHandler) Stats(c *gin.Context) {
	stats, err := h.api.GetAdminStats(c.Request.Context())
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Stats retrieved", stats)
}

// ValidateUsername handles GET /api/admin/management/validate-username?username=
func (h *ManagementHandler) ValidateUsername(c *gin.Context) {
	username := c.Query("username")
	if len(username) < 3 {
		utils.Success(c, 200, "Username checked", gin.H{"available": false})
		return
	}
	ok, err := h.api.ValidateUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Username checked", gin.H{"available": ok})
}

// ValidateEmail handles GET /api/admin/management/validate-email?email=&exclude_admin_id=
func (h *ManagementHandler) ValidateEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		bindError(c)
		return
	}
	ok, err := h.api.ValidateEmail(c.Request.Context(), email, c.Query("exclude_admin_id"))
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Email checked", gin.H{"available": ok})
}
