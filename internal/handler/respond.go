package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bamboofin/bamboo_portal/internal/comparator"
	"github.com/bamboofin/bamboo_portal/internal/middleware"
	"github.com/bamboofin/bamboo_portal/internal/notify"
	"github.com/bamboofin/bamboo_portal/internal/service"
	"github.com/bamboofin/bamboo_portal/internal/session"
	"github.com/bamboofin/bamboo_portal/internal/utils"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

const msgForbidden = "Accès non autorisé"

// respondError maps an error to the response envelope. Upstream 401s end the
// session (the client hook already invalidated it); 403s notify the
// workspace without touching any state.
func respondError(c *gin.Context, n notify.Notifier, err error, fallback string) {
	var verr *comparator.ValidationError
	var apiErr *bamboo.APIError

	switch {
	case errors.As(err, &verr):
		utils.ErrorWithData(c, 400, "VALIDATION_ERROR", service.MsgInvalidForm, gin.H{"fields": verr.Fields})
	case errors.Is(err, bamboo.ErrUnauthorized):
		middleware.Unauthorized(c, "SESSION_EXPIRED", session.ExpiredMessage)
	case errors.Is(err, bamboo.ErrForbidden):
		if n != nil {
			n.Error(c.GetString("workspace_id"), msgForbidden)
		}
		utils.Error(c, 403, "FORBIDDEN", msgForbidden)
	case errors.Is(err, bamboo.ErrNotFound),
		errors.Is(err, utils.ErrComparisonNotFound),
		errors.Is(err, comparator.ErrOfferNotFound):
		utils.Error(c, 404, "NOT_FOUND", bamboo.ErrorMessage(err, "Ressource introuvable"))
	case errors.Is(err, comparator.ErrNoResult):
		utils.Error(c, 409, "NO_RESULT", "Aucune comparaison disponible")
	case errors.Is(err, comparator.ErrStale):
		utils.Error(c, 409, "STALE_COMPARISON", "Comparaison remplacée par une demande plus récente")
	case errors.Is(err, comparator.ErrLastBank), errors.Is(err, service.ErrNoBankSelected):
		utils.Error(c, 400, "NO_BANK_SELECTED", service.MsgNoBankSelected)
	case errors.Is(err, comparator.ErrUnknownBank):
		utils.Error(c, 400, "UNKNOWN_BANK", "Banque inconnue")
	case errors.Is(err, service.ErrNotCustomer):
		middleware.Unauthorized(c, "UNAUTHORIZED", "Connectez-vous pour continuer")
	case errors.Is(err, utils.ErrInactiveAccount):
		utils.Error(c, 403, "INACTIVE_ACCOUNT", "Compte désactivé")
	case errors.Is(err, bamboo.ErrUnavailable):
		utils.Error(c, 502, "UPSTREAM_UNAVAILABLE", bamboo.ErrorMessage(err, fallback))
	case errors.As(err, &apiErr) && apiErr.StatusCode < 500:
		utils.Error(c, apiErr.StatusCode, "UPSTREAM_ERROR", apiErr.Message())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		utils.Error(c, 500, "INTERNAL_ERROR", bamboo.ErrorMessage(err, fallback))
	}
}

func bindError(c *gin.Context) {
	utils.Error(c, 400, "INVALID_REQUEST", "Requête invalide")
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}
