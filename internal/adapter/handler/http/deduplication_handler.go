package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/reliefops/hope-engine/internal/domain/errors"
	"github.com/reliefops/hope-engine/internal/domain/repository"
	"github.com/reliefops/hope-engine/internal/middleware/auth"
	"github.com/reliefops/hope-engine/internal/usecase"
)

type DeduplicationHandler struct {
	service *usecase.DeduplicationService
	logger  *zap.Logger
}

func NewDeduplicationHandler(service *usecase.DeduplicationService, logger *zap.Logger) *DeduplicationHandler {
	return &DeduplicationHandler{
		service: service,
		logger:  logger,
	}
}

type resolveTicketRequest struct {
	SelectedIndividualIDs []int64 `json:"selected_individual_ids"`
}

// DeduplicateBatch handles POST /api/v1/registration-imports/:id/deduplicate
func (h *DeduplicationHandler) DeduplicateBatch(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	batchID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration import id"})
	}

	if err := h.service.ClassifyBatch(c.Request().Context(), batchID); err != nil {
		h.logger.Error("failed to deduplicate registration batch",
			zap.Int64("registration_data_import_id", batchID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deduplicate batch"})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "deduplicated"})
}

// ResolveTicket handles POST /api/v1/grievance-tickets/:id/resolve
func (h *DeduplicationHandler) ResolveTicket(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	ticketID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	var req resolveTicketRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	err = h.service.ResolvePossibleDuplicate(c.Request().Context(), ticketID, req.SelectedIndividualIDs)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case errors.Is(err, domainErrors.ErrTicketNotAdjudication),
			errors.Is(err, domainErrors.ErrTicketClosed):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		case errors.Is(err, domainErrors.ErrIndividualNotFlagged):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		h.logger.Error("failed to resolve adjudication ticket",
			zap.Int64("ticket_id", ticketID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve ticket"})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "resolved"})
}

// ListTargetableHouseholds handles GET /api/v1/households/targetable
func (h *DeduplicationHandler) ListTargetableHouseholds(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	filters := repository.TargetingFilters{
		ExcludeActiveAdjudicationTicket: c.QueryParam("exclude_active_adjudication_ticket") == "true",
		ExcludeSanctionListMatch:        c.QueryParam("exclude_sanction_list_match") == "true",
	}

	households, err := h.service.ListTargetableHouseholds(c.Request().Context(), user.BusinessArea, filters)
	if err != nil {
		h.logger.Error("failed to list targetable households",
			zap.String("business_area", user.BusinessArea),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list households"})
	}

	return c.JSON(http.StatusOK, households)
}
