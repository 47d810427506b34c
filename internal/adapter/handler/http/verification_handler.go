package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reliefops/hope-engine/internal/domain/dto"
	domainErrors "github.com/reliefops/hope-engine/internal/domain/errors"
	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/repository"
	"github.com/reliefops/hope-engine/internal/middleware/auth"
	"github.com/reliefops/hope-engine/internal/usecase"
)

type VerificationHandler struct {
	service     *usecase.VerificationService
	summaryRepo repository.SummaryRepository
	logger      *zap.Logger
}

func NewVerificationHandler(
	service *usecase.VerificationService,
	summaryRepo repository.SummaryRepository,
	logger *zap.Logger,
) *VerificationHandler {
	return &VerificationHandler{
		service:     service,
		summaryRepo: summaryRepo,
		logger:      logger,
	}
}

type createVerificationPlanRequest struct {
	Channel    string `json:"verification_channel" validate:"required,oneof=manual xlsx rapidpro"`
	Sampling   string `json:"sampling" validate:"required,oneof=full_list random"`
	SampleSize int    `json:"sample_size" validate:"gte=0"`
}

type updateReceivedRequest struct {
	Received       bool    `json:"received"`
	ReceivedAmount *string `json:"received_amount,omitempty"`
}

// CreatePlan handles POST /api/v1/payment-plans/:id/verification-plans
func (h *VerificationHandler) CreatePlan(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	paymentPlanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment plan id"})
	}

	var req createVerificationPlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "verification_channel and sampling are required"})
	}

	plan, err := h.service.CreatePlan(
		c.Request().Context(),
		paymentPlanID,
		model.VerificationChannel(req.Channel),
		model.SamplingMethod(req.Sampling),
		req.SampleSize,
	)
	if err != nil {
		h.logger.Error("failed to create verification plan",
			zap.Int64("payment_plan_id", paymentPlanID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create verification plan"})
	}

	return c.JSON(http.StatusCreated, dto.NewVerificationPlanDTO(plan))
}

// Activate handles POST /api/v1/verification-plans/:id/activate
func (h *VerificationHandler) Activate(c echo.Context) error {
	return h.transition(c, "activate", h.service.Activate)
}

// Discard handles POST /api/v1/verification-plans/:id/discard
func (h *VerificationHandler) Discard(c echo.Context) error {
	return h.transition(c, "discard", h.service.Discard)
}

// MarkInvalid handles POST /api/v1/verification-plans/:id/invalidate
func (h *VerificationHandler) MarkInvalid(c echo.Context) error {
	return h.transition(c, "invalidate", h.service.MarkInvalid)
}

// Finish handles POST /api/v1/verification-plans/:id/finish
func (h *VerificationHandler) Finish(c echo.Context) error {
	return h.transition(c, "finish", h.service.Finish)
}

// UpdateReceived handles PATCH /api/v1/verification-plans/:id/verifications/:verificationId
func (h *VerificationHandler) UpdateReceived(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid verification plan id"})
	}
	verificationID, err := strconv.ParseInt(c.Param("verificationId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid verification id"})
	}

	var req updateReceivedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	var receivedAmount *decimal.Decimal
	if req.ReceivedAmount != nil {
		amount, err := decimal.NewFromString(*req.ReceivedAmount)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid received_amount"})
		}
		receivedAmount = &amount
	}

	err = h.service.UpdateReceived(c.Request().Context(), planID, verificationID, req.Received, receivedAmount)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "verification not found"})
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		case errors.Is(err, domainErrors.ErrEditWindowExpired):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		h.logger.Error("failed to update verification",
			zap.Int64("verification_plan_id", planID),
			zap.Int64("verification_id", verificationID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update verification"})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "updated"})
}

// ExportXLSX handles POST /api/v1/verification-plans/:id/export-xlsx
func (h *VerificationHandler) ExportXLSX(c echo.Context) error {
	return h.transition(c, "export", h.service.ExportXLSX)
}

// MarkXLSXDownloaded handles POST /api/v1/verification-plans/:id/mark-downloaded
func (h *VerificationHandler) MarkXLSXDownloaded(c echo.Context) error {
	return h.transition(c, "mark-downloaded", h.service.MarkXLSXDownloaded)
}

// ImportXLSX handles POST /api/v1/verification-plans/:id/import-xlsx
func (h *VerificationHandler) ImportXLSX(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid verification plan id"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to open uploaded file"})
	}
	defer file.Close()

	if err := h.service.ImportXLSX(c.Request().Context(), planID, file); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "verification plan not found"})
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		h.logger.Error("failed to import verification xlsx",
			zap.Int64("verification_plan_id", planID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to import file"})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "imported"})
}

// GetSummary handles GET /api/v1/payment-plans/:id/verification-summary
func (h *VerificationHandler) GetSummary(c echo.Context) error {
	paymentPlanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment plan id"})
	}

	summary, err := h.summaryRepo.GetByPaymentPlanID(c.Request().Context(), paymentPlanID)
	if err != nil {
		h.logger.Error("failed to get verification summary",
			zap.Int64("payment_plan_id", paymentPlanID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get summary"})
	}
	if summary == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "summary not found"})
	}

	return c.JSON(http.StatusOK, dto.NewSummaryDTO(summary))
}

// transition runs one plan state transition and maps domain errors to
// HTTP status codes.
func (h *VerificationHandler) transition(c echo.Context, name string, fn func(ctx context.Context, planID int64) error) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid verification plan id"})
	}

	if err := fn(c.Request().Context(), planID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "verification plan not found"})
		case errors.Is(err, domainErrors.ErrInvalidTransition),
			errors.Is(err, domainErrors.ErrCannotDiscard),
			errors.Is(err, domainErrors.ErrCannotInvalidate),
			errors.Is(err, domainErrors.ErrAlreadyExporting):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		h.logger.Error("verification plan transition failed",
			zap.String("transition", name),
			zap.Int64("verification_plan_id", planID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to " + name + " verification plan"})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
