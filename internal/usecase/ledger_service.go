package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/reliefops/hope-engine/internal/domain/errors"
	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/provider"
	"github.com/reliefops/hope-engine/internal/domain/repository"
)

// LedgerService maintains the authoritative delivery status of each
// payment and reconciles it against asynchronous confirmations from the
// payment gateway.
type LedgerService struct {
	paymentRepo repository.PaymentRepository
	planRepo    repository.PaymentPlanRepository
	gateway     provider.PaymentGatewayProvider
	logger      *zap.Logger
}

// NewLedgerService creates a new payment status ledger
func NewLedgerService(
	paymentRepo repository.PaymentRepository,
	planRepo repository.PaymentPlanRepository,
	gateway provider.PaymentGatewayProvider,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		paymentRepo: paymentRepo,
		planRepo:    planRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

// RecordDelivery applies one gateway delivery record to a payment. The
// internal status is derived by comparing the payout amount to the
// payment's entitlement quantity. A PENDING record is a no-op.
func (s *LedgerService) RecordDelivery(ctx context.Context, payment *model.Payment, rec *provider.PaymentRecordData) error {
	switch rec.Status {
	case provider.GatewayStatusPending:
		// Gateway has not processed the payment yet; picked up on the
		// next sync.
		s.logger.Debug("gateway record still pending",
			zap.String("remote_id", rec.RemoteID))
		return nil

	case provider.GatewayStatusError:
		return s.persistFailure(ctx, payment, model.PaymentStatusTransactionErroneous, rec)

	case provider.GatewayStatusCancelled:
		return s.persistFailure(ctx, payment, model.PaymentStatusManuallyCancelled, rec)

	case provider.GatewayStatusTransferredToFSP:
		if rec.PayoutAmount == nil {
			return domainErrors.NewInvalidDeliveredQuantityError(rec.RemoteID, rec.Status)
		}
		payment.Status = model.PaymentStatusSentToFSP
		payment.StatusDate = recordTime(rec)
		s.applyCodes(payment, rec)
		return s.update(ctx, payment)

	case provider.GatewayStatusRefund:
		if rec.PayoutAmount == nil {
			return domainErrors.NewInvalidDeliveredQuantityError(rec.RemoteID, rec.Status)
		}
		zero := decimal.Zero
		return s.persistDelivered(ctx, payment, zero, rec)

	case provider.GatewayStatusTransferredToBeneficiary:
		if rec.PayoutAmount == nil {
			return domainErrors.NewInvalidDeliveredQuantityError(rec.RemoteID, rec.Status)
		}
		payout := decimal.NewFromFloat(*rec.PayoutAmount)
		return s.persistDelivered(ctx, payment, payout, rec)

	default:
		return domainErrors.NewInvalidPaymentStatusError(rec.RemoteID, rec.Status)
	}
}

// MarkFailed force-fails a payment, zeroing its delivered quantities.
func (s *LedgerService) MarkFailed(ctx context.Context, payment *model.Payment) error {
	if payment.Status == model.PaymentStatusForceFailed {
		return fmt.Errorf("payment %d is already force-failed: %w", payment.ID, domainErrors.ErrInvalidStateTransition)
	}

	zero := decimal.Zero
	payment.Status = model.PaymentStatusForceFailed
	payment.StatusDate = time.Now()
	payment.DeliveredQuantity = &zero
	payment.DeliveredQuantityUSD = &zero
	payment.DeliveryDate = nil

	if err := s.paymentRepo.UpdateDelivery(ctx, payment); err != nil {
		return fmt.Errorf("failed to mark payment as failed: %w", err)
	}

	s.logger.Info("payment force-failed",
		zap.Int64("payment_id", payment.ID),
		zap.String("universal_id", payment.UniversalID.String()))
	return nil
}

// RevertForceFailed restores a force-failed payment to the terminal
// status implied by the provided delivered quantity.
func (s *LedgerService) RevertForceFailed(ctx context.Context, payment *model.Payment, delivered decimal.Decimal, deliveryDate time.Time) error {
	if payment.Status != model.PaymentStatusForceFailed {
		return fmt.Errorf("payment %d is not force-failed: %w", payment.ID, domainErrors.ErrInvalidStateTransition)
	}
	if payment.EntitlementQuantity == nil {
		return fmt.Errorf("cannot revert payment %d: %w", payment.ID, domainErrors.ErrMissingEntitlement)
	}

	status, err := deriveDeliveredStatus(*payment.EntitlementQuantity, delivered)
	if err != nil {
		return err
	}

	usd := s.toUSD(ctx, payment, delivered)
	payment.Status = status
	payment.StatusDate = time.Now()
	payment.DeliveredQuantity = &delivered
	payment.DeliveredQuantityUSD = &usd
	payment.DeliveryDate = &deliveryDate

	if err := s.paymentRepo.UpdateDelivery(ctx, payment); err != nil {
		return fmt.Errorf("failed to revert force-failed payment: %w", err)
	}

	s.logger.Info("force-failed payment reverted",
		zap.Int64("payment_id", payment.ID),
		zap.String("status", string(status)))
	return nil
}

// SyncPlan reconciles all payments of a plan against the gateway's
// records for the plan's payment instruction. A fully reconciled plan
// is skipped entirely; repeated calls produce zero writes.
func (s *LedgerService) SyncPlan(ctx context.Context, plan *model.PaymentPlan) error {
	pending, err := s.paymentRepo.CountPendingReconciliation(ctx, plan.ID, nil)
	if err != nil {
		return fmt.Errorf("failed to count unreconciled payments: %w", err)
	}
	if pending == 0 {
		s.logger.Debug("payment plan already reconciled, skipping sync",
			zap.Int64("payment_plan_id", plan.ID))
		return nil
	}

	payments, err := s.paymentRepo.ListByPlanID(ctx, plan.ID)
	if err != nil {
		return fmt.Errorf("failed to list plan payments: %w", err)
	}

	return s.syncRecords(ctx, plan.GatewayInstructionID(), payments)
}

// SyncSplit reconciles the payments of one plan split.
func (s *LedgerService) SyncSplit(ctx context.Context, split *model.PaymentPlanSplit) error {
	pending, err := s.paymentRepo.CountPendingReconciliation(ctx, split.PaymentPlanID, &split.ID)
	if err != nil {
		return fmt.Errorf("failed to count unreconciled payments: %w", err)
	}
	if pending == 0 {
		s.logger.Debug("plan split already reconciled, skipping sync",
			zap.Int64("split_id", split.ID))
		return nil
	}

	payments, err := s.paymentRepo.ListBySplitID(ctx, split.ID)
	if err != nil {
		return fmt.Errorf("failed to list split payments: %w", err)
	}

	return s.syncRecords(ctx, split.GatewayInstructionID(), payments)
}

// syncRecords fetches the gateway records for one instruction and
// applies them per payment. A malformed record aborts only that record;
// progress on the rest of the batch is retained.
func (s *LedgerService) syncRecords(ctx context.Context, instructionID string, payments []*model.Payment) error {
	records, err := s.gateway.GetRecordsForPaymentInstruction(ctx, instructionID)
	if err != nil {
		return fmt.Errorf("failed to fetch gateway records for instruction %s: %w", instructionID, err)
	}

	byRemoteID := make(map[string]*model.Payment, len(payments))
	for _, p := range payments {
		byRemoteID[p.UniversalID.String()] = p
	}

	applied, failed, skipped := 0, 0, 0
	for i := range records {
		rec := &records[i]
		payment, ok := byRemoteID[rec.RemoteID]
		if !ok {
			s.logger.Warn("gateway record has no matching payment",
				zap.String("instruction_id", instructionID),
				zap.String("remote_id", rec.RemoteID))
			continue
		}
		if payment.IsReconciled() {
			skipped++
			continue
		}
		if err := s.RecordDelivery(ctx, payment, rec); err != nil {
			failed++
			s.logger.Error("failed to apply gateway record",
				zap.String("instruction_id", instructionID),
				zap.String("remote_id", rec.RemoteID),
				zap.Error(err))
			continue
		}
		applied++
	}

	s.logger.Info("gateway reconciliation sync completed",
		zap.String("instruction_id", instructionID),
		zap.Int("records", len(records)),
		zap.Int("applied", applied),
		zap.Int("failed", failed),
		zap.Int("already_reconciled", skipped))
	return nil
}

// persistDelivered derives and persists a terminal delivered status.
func (s *LedgerService) persistDelivered(ctx context.Context, payment *model.Payment, payout decimal.Decimal, rec *provider.PaymentRecordData) error {
	if payment.EntitlementQuantity == nil {
		return fmt.Errorf("payment %d: %w", payment.ID, domainErrors.ErrMissingEntitlement)
	}

	status, err := deriveDeliveredStatus(*payment.EntitlementQuantity, payout)
	if err != nil {
		return err
	}

	now := recordTime(rec)
	usd := s.toUSD(ctx, payment, payout)
	payment.Status = status
	payment.StatusDate = now
	payment.DeliveredQuantity = &payout
	payment.DeliveredQuantityUSD = &usd
	payment.DeliveryDate = &now
	s.applyCodes(payment, rec)

	return s.update(ctx, payment)
}

// persistFailure persists an error or cancellation reported by the
// gateway. Payout amount is optional for these records.
func (s *LedgerService) persistFailure(ctx context.Context, payment *model.Payment, status model.PaymentStatus, rec *provider.PaymentRecordData) error {
	payment.Status = status
	payment.StatusDate = recordTime(rec)
	if rec.Message != "" {
		msg := rec.Message
		payment.ReasonForUnsuccessful = &msg
	}
	s.applyCodes(payment, rec)
	return s.update(ctx, payment)
}

func (s *LedgerService) applyCodes(payment *model.Payment, rec *provider.PaymentRecordData) {
	if rec.AuthCode != "" {
		code := rec.AuthCode
		payment.FSPAuthCode = &code
	}
	if rec.FSPCode != "" {
		code := rec.FSPCode
		payment.TransactionCode = &code
	}
}

func (s *LedgerService) update(ctx context.Context, payment *model.Payment) error {
	if err := s.paymentRepo.UpdateDelivery(ctx, payment); err != nil {
		return fmt.Errorf("failed to persist payment delivery state: %w", err)
	}
	return nil
}

// toUSD converts a local-currency amount using the plan's exchange
// rate (local units per USD). Falls back to the raw amount when the
// plan or rate is unavailable.
func (s *LedgerService) toUSD(ctx context.Context, payment *model.Payment, amount decimal.Decimal) decimal.Decimal {
	plan := payment.PaymentPlan
	if plan == nil {
		loaded, err := s.planRepo.GetByID(ctx, payment.PaymentPlanID)
		if err != nil {
			s.logger.Warn("failed to load payment plan for USD conversion",
				zap.Int64("payment_plan_id", payment.PaymentPlanID),
				zap.Error(err))
			return amount.Round(2)
		}
		plan = loaded
		payment.PaymentPlan = loaded
	}
	if plan.ExchangeRate.IsZero() {
		return amount.Round(2)
	}
	return amount.DivRound(plan.ExchangeRate, 2)
}

// deriveDeliveredStatus maps a delivered quantity against the
// entitlement: equal means fully distributed, zero means not
// distributed, anything in between is partial. A delivered quantity
// above the entitlement is an erroneous transaction.
func deriveDeliveredStatus(entitlement, delivered decimal.Decimal) (model.PaymentStatus, error) {
	switch {
	case delivered.IsNegative():
		return "", domainErrors.NewInvalidDeliveredQuantityError("", "negative delivered quantity")
	case delivered.IsZero():
		return model.PaymentStatusNotDistributed, nil
	case delivered.Equal(entitlement):
		return model.PaymentStatusDistributionSuccessful, nil
	case delivered.LessThan(entitlement):
		return model.PaymentStatusDistributionPartial, nil
	default:
		return model.PaymentStatusTransactionErroneous, nil
	}
}

func recordTime(rec *provider.PaymentRecordData) time.Time {
	if rec.Timestamp != nil {
		return *rec.Timestamp
	}
	return time.Now()
}
