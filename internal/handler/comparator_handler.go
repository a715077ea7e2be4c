package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bamboofin/bamboo_portal/internal/comparator"
	"github.com/bamboofin/bamboo_portal/internal/middleware"
	"github.com/bamboofin/bamboo_portal/internal/notify"
	"github.com/bamboofin/bamboo_portal/internal/service"
	"github.com/bamboofin/bamboo_portal/internal/utils"
)

// ComparatorHandler serves the multi-bank credit comparator.
type ComparatorHandler struct {
	svc      *service.ComparisonService
	notifier notify.Notifier
}

// NewComparatorHandler creates a new ComparatorHandler.
func NewComparatorHandler(svc *service.ComparisonService, notifier notify.Notifier) *ComparatorHandler {
	return &ComparatorHandler{svc: svc, notifier: notifier}
}

// Banks handles GET /api/comparator/banks
func (h *ComparatorHandler) Banks(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	banks, err := h.svc.LoadBanks(c.Request.Context(), ws, middleware.UserID(c))
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de charger les banques")
		return
	}
	utils.Success(c, 200, "Banks retrieved", gin.H{
		"banks":         banks,
		"selectedBanks": ws.SelectedBanks(),
	})
}

// Options handles GET /api/comparator/options
func (h *ComparatorHandler) Options(c *gin.Context) {
	utils.Success(c, 200, "Options retrieved", gin.H{
		"creditTypes": comparator.CreditTypes,
		"durations":   comparator.Durations,
		"defaults":    comparator.DefaultForm(),
	})
}

// State handles GET /api/comparator/state
func (h *ComparatorHandler) State(c *gin.Context) {
	utils.Success(c, 200, "State retrieved", middleware.GetWorkspace(c).Snapshot())
}

// Validate handles POST /api/comparator/validate
func (h *ComparatorHandler) Validate(c *gin.Context) {
	var form comparator.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c)
		return
	}
	fields := h.svc.Validate(form)
	utils.Success(c, 200, "Form checked", gin.H{
		"valid":  len(fields) == 0,
		"fields": fields,
	})
}

// Toggle handles POST /api/comparator/banks/:id/toggle
func (h *ComparatorHandler) Toggle(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	if err := h.svc.Toggle(ws, c.Param("id")); err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	h.selection(c, ws)
}

// ToggleAll handles POST /api/comparator/banks/toggle-all
func (h *ComparatorHandler) ToggleAll(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	ws.ToggleAll()
	h.selection(c, ws)
}

// ResetSelection handles POST /api/comparator/banks/reset
func (h *ComparatorHandler) ResetSelection(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	ws.ResetSelection()
	h.selection(c, ws)
}

func (h *ComparatorHandler) selection(c *gin.Context, ws *comparator.Workspace) {
	state := ws.Snapshot()
	utils.Success(c, 200, "Selection updated", gin.H{
		"selectedBanks": state.Selected,
		"allSelected":   state.AllSelected,
	})
}

// Compare handles POST /api/comparator/compare
func (h *ComparatorHandler) Compare(c *gin.Context) {
	var form comparator.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c)
		return
	}

	ws := middleware.GetWorkspace(c)
	res, err := h.svc.Compare(c.Request.Context(), ws, form, middleware.UserID(c))
	if err != nil {
		respondError(c, h.notifier, err, service.MsgCompareFailed)
		return
	}
	utils.Success(c, 200, service.MsgCompareDone, gin.H{
		"result": res,
		"offers": comparator.Views(res.Offers),
	})
}

// Results handles GET /api/comparator/results?sort=rate|payment|time|approval
func (h *ComparatorHandler) Results(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	if raw, ok := c.GetQuery("sort"); ok {
		ws.SetSort(comparator.ParseSortKey(raw))
	}

	rk, err := ws.Offers()
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Results retrieved", gin.H{
		"sortBy":  rk.SortBy,
		"offers":  comparator.Views(rk.Offers),
		"summary": rk.Summary,
	})
}

// Share handles GET /api/comparator/share
func (h *ComparatorHandler) Share(c *gin.Context) {
	text, err := h.svc.Share(middleware.GetWorkspace(c))
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, service.MsgLinkCopied, gin.H{"text": text})
}

// Reset handles POST /api/comparator/reset
func (h *ComparatorHandler) Reset(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	h.svc.Reset(ws)
	utils.Success(c, 200, "Comparator reset", ws.Snapshot())
}

// Apply handles POST /api/comparator/offers/:id/apply
func (h *ComparatorHandler) Apply(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	offer, err := h.svc.Apply(c.Request.Context(), ws, c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Application started", gin.H{
		"offer":    offer,
		"redirect": "/credit/apply?bank=" + offer.Bank.ID + "&product=" + offer.Product.ID,
	})
}

// Save handles POST /api/comparator/save
func (h *ComparatorHandler) Save(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"max=120"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c)
			return
		}
	}

	sc, err := h.svc.Save(c.Request.Context(), middleware.GetWorkspace(c), middleware.GetSession(c), req.Name)
	if err != nil {
		respondError(c, h.notifier, err, "Impossible de sauvegarder la comparaison")
		return
	}
	utils.Success(c, 201, service.MsgComparisonSaved, sc)
}

// SavedList handles GET /api/comparator/saved
func (h *ComparatorHandler) SavedList(c *gin.Context) {
	list, err := h.svc.SavedList(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Saved comparisons retrieved", list)
}

// SavedGet handles GET /api/comparator/saved/:id
func (h *ComparatorHandler) SavedGet(c *gin.Context) {
	sc, err := h.svc.SavedGet(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Saved comparison retrieved", sc)
}

// SavedDelete handles DELETE /api/comparator/saved/:id
func (h *ComparatorHandler) SavedDelete(c *gin.Context) {
	if err := h.svc.SavedDelete(c.Request.Context(), middleware.GetSession(c), c.Param("id")); err != nil {
		respondError(c, h.notifier, err, "")
		return
	}
	utils.Success(c, 200, "Saved comparison deleted", nil)
}
