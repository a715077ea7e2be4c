package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bamboofin/bamboo_portal/internal/middleware"
	"github.com/bamboofin/bamboo_portal/internal/service"
	"github.com/bamboofin/bamboo_portal/internal/utils"
)

// AnalyticsHandler exposes the tracked portal events to administrators.
type AnalyticsHandler struct {
	svc *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Summary handles GET /api/admin/analytics/summary?hours=24
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	hours := queryInt(c, "hours", 24)
	if hours <= 0 || hours > 24*90 {
		hours = 24
	}
	counts, err := h.svc.Summary(c.Request.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		respondError(c, nil, err, "Impossible de charger les statistiques")
		return
	}
	utils.Success(c, 200, "Analytics summary retrieved", gin.H{
		"hours":  hours,
		"events": counts,
	})
}

// List handles GET /api/admin/analytics/events?name=&page=&limit=
func (h *AnalyticsHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)
	events, total, err := h.svc.List(c.Request.Context(), c.Query("name"), page, limit)
	if err != nil {
		respondError(c, nil, err, "Impossible de charger les événements")
		return
	}
	utils.SuccessWithPagination(c, 200, "Events retrieved", events, page, limit, total)
}

// Track handles POST /api/analytics/events for page views reported by the UI.
func (h *AnalyticsHandler) Track(c *gin.Context) {
	var req struct {
		Page string `json:"page" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c)
		return
	}
	h.svc.TrackPageView(c.Request.Context(), req.Page, c.GetString("workspace_id"), middleware.UserID(c))
	utils.Success(c, 202, "Event recorded", nil)
}
