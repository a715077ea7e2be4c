package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/bamboofin/bamboo_portal/internal/notify"
	"github.com/bamboofin/bamboo_portal/internal/utils"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// AccountAPI is the customer area of the Bamboo API. Calls are made with
// the session token already attached to the context.
type AccountAPI interface {
	GetProfile(ctx context.Context) (*bamboo.User, error)
	UpdateProfile(ctx context.Context, fields map[string]any) (*bamboo.User, error)
	ChangePassword(ctx context.Context, req bamboo.ChangePasswordRequest) error
	GetDashboard(ctx context.Context) (*bamboo.UserDashboard, error)
	GetUserSimulations(ctx context.Context) ([]bamboo.UserSimulation, error)
	SaveSimulation(ctx context.Context, req bamboo.SaveSimulationRequest) error
	GetUserApplications(ctx context.Context) ([]bamboo.UserApplication, error)
	CreateApplication(ctx context.Context, kind bamboo.ProductKind, body json.RawMessage) (json.RawMessage, error)
	GetNotifications(ctx context.Context, unreadOnly bool, limit int) ([]bamboo.UserNotification, error)
	MarkNotificationsRead(ctx context.Context, ids []string) error
}

// editableProfileFields are the profile fields a customer may change.
var editableProfileFields = map[string]bool{
	"first_name":     true,
	"last_name":      true,
	"date_of_birth":  true,
	"gender":         true,
	"profession":     true,
	"monthly_income": true,
	"city":           true,
	"address":        true,
	"preferences":    true,
}

// AccountHandler serves the logged in customer area.
type AccountHandler struct {
	api      AccountAPI
	notifier notify.Notifier
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(api AccountAPI, notifier notify.Notifier) *AccountHandler {
	return &AccountHandler{api: api, notifier: notifier}
}

// Profile handles GET /api/me/profile
func (h *AccountHandler) Profile(c *gin.Context) {
	user, err := h.api.GetProfile(c.Request.Context())
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger le profil")
		return
	}
	utils.Success(c, 200, "Profile retrieved", user)
}

// UpdateProfile handles PUT /api/me/profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}
	fields := make(map[string]any, len(body))
	for k, v := range body {
		if editableProfileFields[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "Aucun champ modifiable")
		return
	}

	user, err := h.api.UpdateProfile(c.Request.Context(), fields)
	if err != nil {
		respondError(c, h.notifier, err, "Mise à jour impossible")
		return
	}
	h.notifier.Success(c.GetString("workspace_id"), "Profil mis à jour")
	utils.Success(c, 200, "Profil mis à jour", user)
}

// ChangePassword handles POST /api/me/change-password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req bamboo.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CurrentPassword == "" || len(req.NewPassword) < 8 {
		utils.Error(c, 400, "INVALID_REQUEST", "Le nouveau mot de passe doit contenir au moins 8 caractères")
		return
	}
	if err := h.api.ChangePassword(c.Request.Context(), req); err != nil {
		respondError(c, h.notifier, err, "Changement de mot de passe impossible")
		return
	}
	utils.Success(c, 200, "Mot de passe modifié", nil)
}

// Dashboard handles GET /api/me/dashboard
func (h *AccountHandler) Dashboard(c *gin.Context) {
	dash, err := h.api.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger le tableau de bord")
		return
	}
	utils.Success(c, 200, "Dashboard retrieved", dash)
}

// Simulations handles GET /api/me/simulations
func (h *AccountHandler) Simulations(c *gin.Context) {
	sims, err := h.api.GetUserSimulations(c.Request.Context())
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger les simulations")
		return
	}
	utils.Success(c, 200, "Simulations retrieved", sims)
}

// SaveSimulation handles POST /api/me/simulations
func (h *AccountHandler) SaveSimulation(c *gin.Context) {
	var req bamboo.SaveSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SimulationID == "" || req.SimulationType == "" {
		bindError(c)
		return
	}
	if err := h.api.SaveSimulation(c.Request.Context(), req); err != nil {
		respondError(c, h.notifier, err, "Sauvegarde impossible")
		return
	}
	h.notifier.Success(c.GetString("workspace_id"), "Simulation sauvegardée")
	utils.Success(c, 201, "Simulation sauvegardée", nil)
}

// Applications handles GET /api/me/applications
func (h *AccountHandler) Applications(c *gin.Context) {
	apps, err := h.api.GetUserApplications(c.Request.Context())
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger les demandes")
		return
	}
	utils.Success(c, 200, "Applications retrieved", apps)
}

// CreateApplication handles POST /api/me/applications/:kind
func (h *AccountHandler) CreateApplication(c *gin.Context) {
	kind := bamboo.ProductKind(c.Param("kind"))
	if !kind.Valid() {
		utils.Error(c, 400, "INVALID_PRODUCT_KIND", "Type de produit inconnu")
		return
	}
	var body json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c)
		return
	}

	raw, err := h.api.CreateApplication(c.Request.Context(), kind, body)
	if err != nil {
		respondError(c, h.notifier, err, "Envoi de la demande impossible")
		return
	}
	h.notifier.Success(c.GetString("workspace_id"), "Demande envoyée")
	utils.Success(c, 201, "Demande envoyée", raw)
}

// Notifications handles GET /api/me/notifications?unread=true&limit=20
func (h *AccountHandler) Notifications(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := h.api.GetNotifications(c.Request.Context(), c.Query("unread") == "true", limit)
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger les notifications")
		return
	}
	utils.Success(c, 200, "Notifications retrieved", list)
}

// MarkNotificationsRead handles POST /api/me/notifications/read
func (h *AccountHandler) MarkNotificationsRead(c *gin.Context) {
	var req struct {
		IDs []string `json:"notification_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c)
		return
	}
	if err := h.api.MarkNotificationsRead(c.Request.Context(), req.IDs); err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Notifications marked as read", nil)
}
