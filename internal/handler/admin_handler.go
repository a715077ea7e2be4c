package handler

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bamboofin/bamboo_portal/internal/middleware"
	"github.com/bamboofin/bamboo_portal/internal/models"
	"github.com/bamboofin/bamboo_portal/internal/notify"
	"github.com/bamboofin/bamboo_portal/internal/permission"
	"github.com/bamboofin/bamboo_portal/internal/utils"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// AdminAPI is the administration part of the Bamboo API.
type AdminAPI interface {
	GetBanks(ctx context.Context) ([]bamboo.Bank, error)
	GetBank(ctx context.Context, id string) (json.RawMessage, error)
	CreateBank(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
	UpdateBank(ctx context.Context, id string, body json.RawMessage) (json.RawMessage, error)

	ListProducts(ctx context.Context, kind bamboo.ProductKind, query url.Values) (json.RawMessage, error)
	GetProduct(ctx context.Context, kind bamboo.ProductKind, id string) (json.RawMessage, error)
	CreateProduct(ctx context.Context, kind bamboo.ProductKind, body json.RawMessage) (json.RawMessage, error)
	UpdateProduct(ctx context.Context, kind bamboo.ProductKind, id string, body json.RawMessage) (json.RawMessage, error)
	DeleteProduct(ctx context.Context, kind bamboo.ProductKind, id string) error

	ListSimulations(ctx context.Context, query url.Values) (json.RawMessage, error)
	ListApplications(ctx context.Context, query url.Values) (json.RawMessage, error)
	UpdateApplicationStatus(ctx context.Context, kind bamboo.ProductKind, id string, update bamboo.ApplicationStatusUpdate) (json.RawMessage, error)

	AdminProfile(ctx context.Context) (*bamboo.AdminUser, error)
}

// BankRefresher reloads the cached bank catalog.
type BankRefresher interface {
	RefreshBanks(ctx context.Context) (int, error)
}

// AdminHandler passes administrator requests through to the Bamboo API.
type AdminHandler struct {
	api      AdminAPI
	banks    BankRefresher
	notifier notify.Notifier
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(api AdminAPI, banks BankRefresher, notifier notify.Notifier) *AdminHandler {
	return &AdminHandler{api: api, banks: banks, notifier: notifier}
}

// Profile handles GET /api/admin/auth/profile
func (h *AdminHandler) Profile(c *gin.Context) {
	user, err := h.api.AdminProfile(c.Request.Context())
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger le profil")
		return
	}
	utils.Success(c, 200, "Profile retrieved", user)
}

// ListBanks handles GET /api/admin/banks
func (h *AdminHandler) ListBanks(c *gin.Context) {
	banks, err := h.api.GetBanks(c.Request.Context())
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger les banques")
		return
	}
	utils.Success(c, 200, "Banks retrieved", banks)
}

// GetBank handles GET /api/admin/banks/:id
func (h *AdminHandler) GetBank(c *gin.Context) {
	raw, err := h.api.GetBank(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Bank retrieved", raw)
}

// CreateBank handles POST /api/admin/banks
func (h *AdminHandler) CreateBank(c *gin.Context) {
	body, ok := bindRaw(c)
	if !ok {
		return
	}
	raw, err := h.api.CreateBank(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.notifier, err, "Création impossible")
		return
	}
	h.catalogChanged(c)
	utils.Success(c, 201, "Banque créée", raw)
}

// UpdateBank handles PUT /api/admin/banks/:id
func (h *AdminHandler) UpdateBank(c *gin.Context) {
	body, ok := bindRaw(c)
	if !ok {
		return
	}
	raw, err := h.api.UpdateBank(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		respondError(c, h.notifier, err, "Mise à jour impossible")
		return
	}
	h.catalogChanged(c)
	utils.Success(c, 200, "Banque mise à jour", raw)
}

func (h *AdminHandler) catalogChanged(c *gin.Context) {
	n, err := h.banks.RefreshBanks(c.Request.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Bank catalog refresh after admin change failed")
		return
	}
	log.Info().Int("banks", n).Msg("Bank catalog refreshed")
}

// ListProducts handles GET /api/admin/products/:kind
func (h *AdminHandler) ListProducts(c *gin.Context) {
	raw, err := h.api.ListProducts(c.Request.Context(), productKind(c), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger les produits")
		return
	}
	utils.Success(c, 200, "Products retrieved", raw)
}

// GetProduct handles GET /api/admin/products/:kind/:id
func (h *AdminHandler) GetProduct(c *gin.Context) {
	raw, err := h.api.GetProduct(c.Request.Context(), productKind(c), c.Param("id"))
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Product retrieved", raw)
}

// CreateProduct handles POST /api/admin/products/:kind
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	body, ok := bindRaw(c)
	if !ok {
		return
	}
	raw, err := h.api.CreateProduct(c.Request.Context(), productKind(c), body)
	if err != nil {
		respondError(c, h.notifier, err, "Création impossible")
		return
	}
	h.notifier.Success(c.GetString("workspace_id"), "Produit créé")
	utils.Success(c, 201, "Produit créé", raw)
}

// UpdateProduct handles PUT /api/admin/products/:kind/:id
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	body, ok := bindRaw(c)
	if !ok {
		return
	}
	raw, err := h.api.UpdateProduct(c.Request.Context(), productKind(c), c.Param("id"), body)
	if err != nil {
		respondError(c, h.notifier, err, "Mise à jour impossible")
		return
	}
	h.notifier.Success(c.GetString("workspace_id"), "Produit mis à jour")
	utils.Success(c, 200, "Produit mis à jour", raw)
}

// DeleteProduct handles DELETE /api/admin/products/:kind/:id
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	if err := h.api.DeleteProduct(c.Request.Context(), productKind(c), c.Param("id")); err != nil {
		respondError(c, h.notifier, err, "Suppression impossible")
		return
	}
	h.notifier.Success(c.GetString("workspace_id"), "Produit supprimé")
	utils.Success(c, 200, "Produit supprimé", nil)
}

// ListSimulations handles GET /api/admin/simulations
func (h *AdminHandler) ListSimulations(c *gin.Context) {
	raw, err := h.api.ListSimulations(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger les simulations")
		return
	}
	utils.Success(c, 200, "Simulations retrieved", raw)
}

// ListApplications handles GET /api/admin/applications
func (h *AdminHandler) ListApplications(c *gin.Context) {
	raw, err := h.api.ListApplications(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger les demandes")
		return
	}
	utils.Success(c, 200, "Applications retrieved", raw)
}

// UpdateApplicationStatus handles PUT /api/admin/applications/:kind/:id/status
func (h *AdminHandler) UpdateApplicationStatus(c *gin.Context) {
	if !productKind(c).Valid() {
		utils.Error(c, 400, "INVALID_PRODUCT_KIND", "Type de produit inconnu")
		return
	}
	var req bamboo.ApplicationStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		bindError(c)
		return
	}
	raw, err := h.api.UpdateApplicationStatus(c.Request.Context(), productKind(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.notifier, err, "Mise à jour impossible")
		return
	}
	h.notifier.Success(c.GetString("workspace_id"), "Statut de la demande mis à jour")
	utils.Success(c, 200, "Statut mis à jour", raw)
}

// RequireProductPermission guards the :kind product routes. A generic
// "products" grant covers every catalog.
func RequireProductPermission(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := bamboo.ProductKind(c.Param("kind"))
		if !kind.Valid() {
			utils.Error(c, 400, "INVALID_PRODUCT_KIND", "Type de produit inconnu")
			c.Abort()
			return
		}
		s := middleware.GetSession(c)
		if s == nil || s.Kind != models.SessionAdmin ||
			!(permission.Allows(s.Role, s.Permissions, string(kind)+"_products", action) ||
				permission.Allows(s.Role, s.Permissions, "products", action)) {
			utils.Error(c, 403, "FORBIDDEN", msgForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnyPermission allows admins holding at least one of actions on resource.
func RequireAnyPermission(resource string, actions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.GetSession(c)
		if s != nil && s.Kind == models.SessionAdmin {
			for _, a := range actions {
				if permission.Allows(s.Role, s.Permissions, resource, a) {
					c.Next()
					return
				}
			}
		}
		utils.Error(c, 403, "FORBIDDEN", msgForbidden)
		c.Abort()
	}
}

func productKind(c *gin.Context) bamboo.ProductKind {
	return bamboo.ProductKind(c.Param("kind"))
}

func bindRaw(c *gin.Context) (json.RawMessage, bool) {
	var body json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
		bindError(c)
		return nil, false
	}
	return body, true
}
