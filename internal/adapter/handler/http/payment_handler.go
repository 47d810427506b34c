package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reliefops/hope-engine/internal/domain/dto"
	domainErrors "github.com/reliefops/hope-engine/internal/domain/errors"
	"github.com/reliefops/hope-engine/internal/domain/provider"
	"github.com/reliefops/hope-engine/internal/domain/repository"
	"github.com/reliefops/hope-engine/internal/middleware/auth"
	"github.com/reliefops/hope-engine/internal/usecase"
)

type PaymentHandler struct {
	ledger      *usecase.LedgerService
	paymentRepo repository.PaymentRepository
	planRepo    repository.PaymentPlanRepository
	logger      *zap.Logger
}

func NewPaymentHandler(
	ledger *usecase.LedgerService,
	paymentRepo repository.PaymentRepository,
	planRepo repository.PaymentPlanRepository,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		ledger:      ledger,
		paymentRepo: paymentRepo,
		planRepo:    planRepo,
		logger:      logger,
	}
}

type revertForceFailedRequest struct {
	DeliveredQuantity string    `json:"delivered_quantity" validate:"required"`
	DeliveryDate      time.Time `json:"delivery_date" validate:"required"`
}

type recordDeliveryRequest struct {
	Status       string     `json:"status" validate:"required"`
	PayoutAmount *float64   `json:"payout_amount"`
	AuthCode     string     `json:"auth_code"`
	FSPCode      string     `json:"fsp_code"`
	Message      string     `json:"message"`
	Timestamp    *time.Time `json:"timestamp"`
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}

	payment, err := h.paymentRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		h.logger.Error("failed to get payment", zap.Int64("payment_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get payment"})
	}

	return c.JSON(http.StatusOK, dto.NewPaymentDTO(payment))
}

// ListPlanPayments handles GET /api/v1/payment-plans/:id/payments
func (h *PaymentHandler) ListPlanPayments(c echo.Context) error {
	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment plan id"})
	}

	payments, err := h.paymentRepo.ListByPlanID(c.Request().Context(), planID)
	if err != nil {
		h.logger.Error("failed to list plan payments",
			zap.Int64("payment_plan_id", planID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list payments"})
	}

	out := make([]dto.PaymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, dto.NewPaymentDTO(p))
	}
	return c.JSON(http.StatusOK, out)
}

// MarkFailed handles POST /api/v1/payments/:id/mark-failed
func (h *PaymentHandler) MarkFailed(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}

	ctx := c.Request().Context()
	payment, err := h.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get payment"})
	}

	if err := h.ledger.MarkFailed(ctx, payment); err != nil {
		if errors.Is(err, domainErrors.ErrInvalidStateTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		h.logger.Error("failed to force-fail payment",
			zap.Int64("payment_id", id),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark payment failed"})
	}

	h.logger.Info("payment force-failed",
		zap.Int64("payment_id", id),
		zap.String("user_id", user.UserID))
	return c.JSON(http.StatusOK, dto.NewPaymentDTO(payment))
}

// RevertMarkFailed handles POST /api/v1/payments/:id/revert-mark-failed
func (h *PaymentHandler) RevertMarkFailed(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}

	var req revertForceFailedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "delivered_quantity and delivery_date are required"})
	}

	delivered, err := decimal.NewFromString(req.DeliveredQuantity)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid delivered_quantity"})
	}

	ctx := c.Request().Context()
	payment, err := h.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get payment"})
	}

	if err := h.ledger.RevertForceFailed(ctx, payment, delivered, req.DeliveryDate); err != nil {
		var quantityErr *domainErrors.InvalidDeliveredQuantityError
		switch {
		case errors.Is(err, domainErrors.ErrInvalidStateTransition),
			errors.Is(err, domainErrors.ErrMissingEntitlement):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		case errors.As(err, &quantityErr):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		h.logger.Error("failed to revert force-failed payment",
			zap.Int64("payment_id", id),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to revert payment"})
	}

	return c.JSON(http.StatusOK, dto.NewPaymentDTO(payment))
}

// RecordDelivery handles POST /api/v1/payments/:id/record-delivery. It
// applies one gateway delivery record out of band, for callers that push
// confirmations instead of waiting for the next sync.
func (h *PaymentHandler) RecordDelivery(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}

	var req recordDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}

	ctx := c.Request().Context()
	payment, err := h.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get payment"})
	}

	rec := &provider.PaymentRecordData{
		RemoteID:     payment.UniversalID.String(),
		Status:       req.Status,
		PayoutAmount: req.PayoutAmount,
		AuthCode:     req.AuthCode,
		FSPCode:      req.FSPCode,
		Message:      req.Message,
		Timestamp:    req.Timestamp,
	}
	if err := h.ledger.RecordDelivery(ctx, payment, rec); err != nil {
		var quantityErr *domainErrors.InvalidDeliveredQuantityError
		var statusErr *domainErrors.InvalidPaymentStatusError
		switch {
		case errors.As(err, &quantityErr), errors.As(err, &statusErr):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, domainErrors.ErrMissingEntitlement):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		h.logger.Error("failed to record delivery",
			zap.Int64("payment_id", id),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record delivery"})
	}

	return c.JSON(http.StatusOK, dto.NewPaymentDTO(payment))
}

// SyncPlan handles POST /api/v1/payment-plans/:id/sync
func (h *PaymentHandler) SyncPlan(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment plan id"})
	}

	ctx := c.Request().Context()
	plan, err := h.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get payment plan"})
	}

	if err := h.ledger.SyncPlan(ctx, plan); err != nil {
		h.logger.Error("failed to sync payment plan",
			zap.Int64("payment_plan_id", planID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to sync payment plan"})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "synced"})
}
