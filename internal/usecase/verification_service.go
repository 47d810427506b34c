package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/reliefops/hope-engine/internal/domain/errors"
	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/provider"
	"github.com/reliefops/hope-engine/internal/domain/repository"
)

// Manual verification edits are allowed only within this window after a
// terminal status was set. The first transition out of Pending is
// always allowed.
const verificationEditWindow = 10 * time.Minute

// VerificationXLSXPort abstracts the XLSX file generation and parsing
// the surrounding system plugs in.
type VerificationXLSXPort interface {
	Export(ctx context.Context, plan *model.PaymentVerificationPlan) error
	Import(ctx context.Context, plan *model.PaymentVerificationPlan, file io.Reader) error
	Delete(ctx context.Context, plan *model.PaymentVerificationPlan) error
}

// VerificationService drives a payment verification plan through its
// lifecycle and keeps the per-payment-plan rollup summary consistent.
type VerificationService struct {
	planRepo         repository.VerificationPlanRepository
	verificationRepo repository.VerificationRepository
	summaryRepo      repository.SummaryRepository
	ticketRepo       repository.GrievanceTicketRepository
	paymentPlanRepo  repository.PaymentPlanRepository
	paymentRepo      repository.PaymentRepository
	rapidPro         provider.RapidProProvider
	notifier         GrievanceNotifier
	xlsx             VerificationXLSXPort
	logger           *zap.Logger
}

// NewVerificationService creates a new verification plan state machine
func NewVerificationService(
	planRepo repository.VerificationPlanRepository,
	verificationRepo repository.VerificationRepository,
	summaryRepo repository.SummaryRepository,
	ticketRepo repository.GrievanceTicketRepository,
	paymentPlanRepo repository.PaymentPlanRepository,
	paymentRepo repository.PaymentRepository,
	rapidPro provider.RapidProProvider,
	notifier GrievanceNotifier,
	xlsx VerificationXLSXPort,
	logger *zap.Logger,
) *VerificationService {
	return &VerificationService{
		planRepo:         planRepo,
		verificationRepo: verificationRepo,
		summaryRepo:      summaryRepo,
		ticketRepo:       ticketRepo,
		paymentPlanRepo:  paymentPlanRepo,
		paymentRepo:      paymentRepo,
		rapidPro:         rapidPro,
		notifier:         notifier,
		xlsx:             xlsx,
		logger:           logger,
	}
}

// CreatePlan builds a pending verification plan over a payment plan's
// delivered payments, sampling per the requested method.
func (s *VerificationService) CreatePlan(
	ctx context.Context,
	paymentPlanID int64,
	channel model.VerificationChannel,
	sampling model.SamplingMethod,
	sampleSize int,
) (*model.PaymentVerificationPlan, error) {
	payments, err := s.paymentRepo.ListByPlanID(ctx, paymentPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for sampling: %w", err)
	}

	delivered := make([]*model.Payment, 0, len(payments))
	for _, p := range payments {
		if p.Status.IsDelivered() && !p.Excluded {
			delivered = append(delivered, p)
		}
	}

	if sampling == model.SamplingRandom && sampleSize > 0 && sampleSize < len(delivered) {
		rand.Shuffle(len(delivered), func(i, j int) {
			delivered[i], delivered[j] = delivered[j], delivered[i]
		})
		delivered = delivered[:sampleSize]
	}

	plan := &model.PaymentVerificationPlan{
		UniversalID:   uuid.New(),
		PaymentPlanID: paymentPlanID,
		Status:        model.VerificationPlanStatusPending,
		Sampling:      sampling,
		Channel:       channel,
		SampleSize:    len(delivered),
	}
	for _, p := range delivered {
		plan.Verifications = append(plan.Verifications, model.PaymentVerification{
			UniversalID: uuid.New(),
			PaymentID:   p.ID,
			Status:      model.VerificationStatusPending,
			StatusDate:  time.Now(),
		})
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create verification plan: %w", err)
	}

	if err := s.RebuildSummary(ctx, paymentPlanID); err != nil {
		s.logger.Error("failed to rebuild verification summary",
			zap.Int64("payment_plan_id", paymentPlanID),
			zap.Error(err))
	}

	s.logger.Info("verification plan created",
		zap.Int64("verification_plan_id", plan.ID),
		zap.Int64("payment_plan_id", paymentPlanID),
		zap.Int("sample_size", plan.SampleSize))
	return plan, nil
}

// Activate transitions a pending plan to active. For the RapidPro
// channel the external flow is started first; a flow-start failure is
// persisted as RapidProError and re-raised so the operator can retry.
func (s *VerificationService) Activate(ctx context.Context, planID int64) error {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return fmt.Errorf("failed to load verification plan: %w", err)
	}
	if plan.Status != model.VerificationPlanStatusPending &&
		plan.Status != model.VerificationPlanStatusRapidProError {
		return fmt.Errorf("cannot activate plan %d in status %s: %w", plan.ID, plan.Status, domainErrors.ErrInvalidTransition)
	}

	if plan.Channel == model.ChannelRapidPro {
		if err := s.startRapidProFlows(ctx, plan); err != nil {
			return err
		}
	}

	now := time.Now()
	plan.Status = model.VerificationPlanStatusActive
	plan.ActivationDate = &now
	plan.Error = nil
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to activate verification plan: %w", err)
	}

	if err := s.RebuildSummary(ctx, plan.PaymentPlanID); err != nil {
		s.logger.Error("failed to rebuild verification summary",
			zap.Int64("payment_plan_id", plan.PaymentPlanID),
			zap.Error(err))
	}

	s.logger.Info("verification plan activated",
		zap.Int64("verification_plan_id", plan.ID),
		zap.String("channel", string(plan.Channel)))
	return nil
}

// startRapidProFlows starts the outreach flow for all heads of
// household not yet contacted. Successful flow-start UUIDs are recorded
// on the plan and their verifications marked as sent, including on the
// partial-failure path.
func (s *VerificationService) startRapidProFlows(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	phones, err := s.verificationRepo.ListPendingPhoneNumbers(ctx, plan.ID)
	if err != nil {
		return fmt.Errorf("failed to collect phone numbers: %w", err)
	}
	if len(phones) == 0 {
		return nil
	}

	results, flowErr := s.rapidPro.StartFlow(ctx, plan.RapidProFlowID, phones)

	if len(results) > 0 {
		uuids := make([]string, 0, len(results))
		started := make([]string, 0, len(phones))
		for _, r := range results {
			uuids = append(uuids, r.UUID)
			for _, urn := range r.URNs {
				// RapidPro echoes URNs in scheme form ("tel:+123");
				// verifications are keyed on the bare phone number.
				started = append(started, strings.TrimPrefix(urn, "tel:"))
			}
		}
		payload, err := json.Marshal(uuids)
		if err == nil {
			plan.RapidProFlowStartUUIDs = payload
		}
		if err := s.verificationRepo.MarkSentToRapidPro(ctx, plan.ID, started); err != nil {
			s.logger.Error("failed to mark verifications as sent to RapidPro",
				zap.Int64("verification_plan_id", plan.ID),
				zap.Error(err))
		}
	}

	if flowErr != nil {
		msg := flowErr.Error()
		plan.Status = model.VerificationPlanStatusRapidProError
		plan.Error = &msg
		if err := s.planRepo.Update(ctx, plan); err != nil {
			s.logger.Error("failed to persist RapidPro error state",
				zap.Int64("verification_plan_id", plan.ID),
				zap.Error(err))
		}
		return fmt.Errorf("failed to start RapidPro flow for plan %d: %w", plan.ID, flowErr)
	}

	return nil
}

// Discard resets an active plan back to pending, clearing campaign
// progress. XLSX plans whose export was already downloaded or imported
// cannot be discarded.
func (s *VerificationService) Discard(ctx context.Context, planID int64) error {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return fmt.Errorf("failed to load verification plan: %w", err)
	}
	if plan.Status != model.VerificationPlanStatusActive {
		return fmt.Errorf("cannot discard plan %d in status %s: %w", plan.ID, plan.Status, domainErrors.ErrInvalidTransition)
	}
	if plan.Channel == model.ChannelXLSX && (plan.XLSXFileDownloaded || plan.XLSXFileImported) {
		return fmt.Errorf("plan %d export file already downloaded or imported: %w", plan.ID, domainErrors.ErrCannotDiscard)
	}

	if plan.HasXLSXFile {
		if err := s.xlsx.Delete(ctx, plan); err != nil {
			return fmt.Errorf("failed to delete export file for plan %d: %w", plan.ID, err)
		}
	}

	resetPlanProgress(plan)
	plan.Status = model.VerificationPlanStatusPending

	if err := s.resetVerifications(ctx, plan.ID); err != nil {
		return err
	}
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to discard verification plan: %w", err)
	}

	if err := s.RebuildSummary(ctx, plan.PaymentPlanID); err != nil {
		s.logger.Error("failed to rebuild verification summary",
			zap.Int64("payment_plan_id", plan.PaymentPlanID),
			zap.Error(err))
	}

	s.logger.Info("verification plan discarded",
		zap.Int64("verification_plan_id", plan.ID))
	return nil
}

// MarkInvalid invalidates an active XLSX plan whose export left the
// system (downloaded or imported), resetting its verifications.
func (s *VerificationService) MarkInvalid(ctx context.Context, planID int64) error {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return fmt.Errorf("failed to load verification plan: %w", err)
	}
	if plan.Status != model.VerificationPlanStatusActive {
		return fmt.Errorf("cannot invalidate plan %d in status %s: %w", plan.ID, plan.Status, domainErrors.ErrInvalidTransition)
	}
	if plan.Channel != model.ChannelXLSX || (!plan.XLSXFileDownloaded && !plan.XLSXFileImported) {
		return fmt.Errorf("plan %d has no downloaded or imported export file: %w", plan.ID, domainErrors.ErrCannotInvalidate)
	}

	if plan.HasXLSXFile {
		if err := s.xlsx.Delete(ctx, plan); err != nil {
			return fmt.Errorf("failed to delete export file for plan %d: %w", plan.ID, err)
		}
	}

	resetPlanProgress(plan)
	plan.Status = model.VerificationPlanStatusInvalid

	if err := s.resetVerifications(ctx, plan.ID); err != nil {
		return err
	}
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to invalidate verification plan: %w", err)
	}

	if err := s.RebuildSummary(ctx, plan.PaymentPlanID); err != nil {
		s.logger.Error("failed to rebuild verification summary",
			zap.Int64("payment_plan_id", plan.PaymentPlanID),
			zap.Error(err))
	}

	s.logger.Info("verification plan invalidated",
		zap.Int64("verification_plan_id", plan.ID))
	return nil
}

// Finish closes out an active plan: every NotReceived or
// ReceivedWithIssues verification raises one grievance ticket, the
// remaining Pending verifications are dropped, and the plan becomes
// Finished. Calling Finish on an already finished plan fails and never
// creates tickets twice.
func (s *VerificationService) Finish(ctx context.Context, planID int64) error {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return fmt.Errorf("failed to load verification plan: %w", err)
	}
	if plan.Status != model.VerificationPlanStatusActive {
		return fmt.Errorf("cannot finish plan %d in status %s: %w", plan.ID, plan.Status, domainErrors.ErrInvalidTransition)
	}

	paymentPlan, err := s.paymentPlanRepo.GetByID(ctx, plan.PaymentPlanID)
	if err != nil {
		return fmt.Errorf("failed to load payment plan: %w", err)
	}

	problematic, err := s.verificationRepo.ListByPlanIDAndStatuses(ctx, plan.ID, []model.VerificationStatus{
		model.VerificationStatusNotReceived,
		model.VerificationStatusReceivedWithIssues,
	})
	if err != nil {
		return fmt.Errorf("failed to list problematic verifications: %w", err)
	}

	tickets := make([]*model.GrievanceTicket, 0, len(problematic))
	for _, v := range problematic {
		ticket := &model.GrievanceTicket{
			UniversalID:  uuid.New(),
			Category:     model.CategoryPaymentVerification,
			Status:       model.TicketStatusNew,
			BusinessArea: paymentPlan.BusinessArea,
			Description:  fmt.Sprintf("Payment verification %s", v.Status),
			VerificationDetails: &model.TicketPaymentVerificationDetails{
				PaymentVerificationID: v.ID,
				VerificationStatus:    v.Status,
			},
		}
		if v.Payment != nil {
			hhID := v.Payment.HouseholdID
			ticket.HouseholdID = &hhID
		}
		tickets = append(tickets, ticket)
	}

	if len(tickets) > 0 {
		if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
			return fmt.Errorf("failed to create verification grievance tickets: %w", err)
		}
	}

	now := time.Now()
	plan.Status = model.VerificationPlanStatusFinished
	plan.CompletionDate = &now

	dropped, err := s.verificationRepo.DeleteByPlanIDAndStatus(ctx, plan.ID, model.VerificationStatusPending)
	if err != nil {
		return fmt.Errorf("failed to drop pending verifications: %w", err)
	}
	if dropped > 0 {
		s.logger.Warn("pending verifications dropped at finish",
			zap.Int64("verification_plan_id", plan.ID),
			zap.Int64("dropped", dropped))
	}

	if err := s.recomputeCounts(ctx, plan); err != nil {
		return err
	}
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to finish verification plan: %w", err)
	}

	if err := s.RebuildSummary(ctx, plan.PaymentPlanID); err != nil {
		s.logger.Error("failed to rebuild verification summary",
			zap.Int64("payment_plan_id", plan.PaymentPlanID),
			zap.Error(err))
	}

	// Best effort: a notification failure never blocks the transition.
	s.notifier.SendAllNotifications(ctx, ActionVerificationTicketCreated, tickets)

	s.logger.Info("verification plan finished",
		zap.Int64("verification_plan_id", plan.ID),
		zap.Int("tickets_created", len(tickets)),
		zap.Int64("pending_dropped", dropped))
	return nil
}

// UpdateReceived records a manual verification outcome. The first
// transition out of Pending is always allowed; later edits only within
// the edit window after the last status change.
func (s *VerificationService) UpdateReceived(ctx context.Context, planID, verificationID int64, received bool, receivedAmount *decimal.Decimal) error {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return fmt.Errorf("failed to load verification plan: %w", err)
	}
	if plan.Status != model.VerificationPlanStatusActive {
		return fmt.Errorf("cannot edit verifications of plan %d in status %s: %w", plan.ID, plan.Status, domainErrors.ErrInvalidTransition)
	}

	verification, err := s.verificationRepo.GetByID(ctx, verificationID)
	if err != nil {
		return fmt.Errorf("failed to load verification: %w", err)
	}
	if verification.VerificationPlanID != plan.ID {
		return fmt.Errorf("verification %d does not belong to plan %d: %w", verificationID, planID, domainErrors.ErrInvalidTransition)
	}
	if verification.Status != model.VerificationStatusPending &&
		time.Since(verification.StatusDate) > verificationEditWindow {
		return fmt.Errorf("verification %d: %w", verificationID, domainErrors.ErrEditWindowExpired)
	}

	verification.Status = deriveVerificationStatus(verification, received, receivedAmount)
	verification.StatusDate = time.Now()
	verification.ReceivedAmount = receivedAmount

	if err := s.verificationRepo.Update(ctx, verification); err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}

	if err := s.recomputeCounts(ctx, plan); err != nil {
		return err
	}
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to update verification plan counts: %w", err)
	}
	return nil
}

// ExportXLSX starts an export for an active XLSX plan.
func (s *VerificationService) ExportXLSX(ctx context.Context, planID int64) error {
	plan, err := s.xlsxPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan.XLSXFileExporting || plan.HasXLSXFile {
		return fmt.Errorf("plan %d: %w", plan.ID, domainErrors.ErrAlreadyExporting)
	}

	plan.XLSXFileExporting = true
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to mark plan as exporting: %w", err)
	}

	if err := s.xlsx.Export(ctx, plan); err != nil {
		plan.XLSXFileExporting = false
		if updateErr := s.planRepo.Update(ctx, plan); updateErr != nil {
			s.logger.Error("failed to clear exporting flag",
				zap.Int64("verification_plan_id", plan.ID),
				zap.Error(updateErr))
		}
		return fmt.Errorf("failed to export verification plan: %w", err)
	}

	plan.XLSXFileExporting = false
	plan.HasXLSXFile = true
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to record generated export file: %w", err)
	}
	return nil
}

// ImportXLSX applies a filled verification file to an active XLSX plan
// and recomputes the derived counts.
func (s *VerificationService) ImportXLSX(ctx context.Context, planID int64, file io.Reader) error {
	plan, err := s.xlsxPlan(ctx, planID)
	if err != nil {
		return err
	}

	if err := s.xlsx.Import(ctx, plan, file); err != nil {
		return fmt.Errorf("failed to import verification file: %w", err)
	}

	plan.XLSXFileImported = true
	if err := s.recomputeCounts(ctx, plan); err != nil {
		return err
	}
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}

// MarkXLSXDownloaded records that the export file left the system.
func (s *VerificationService) MarkXLSXDownloaded(ctx context.Context, planID int64) error {
	plan, err := s.xlsxPlan(ctx, planID)
	if err != nil {
		return err
	}
	plan.XLSXFileDownloaded = true
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to record export download: %w", err)
	}
	return nil
}

// RebuildSummary recomputes the rollup summary of a payment plan from
// its verification plans: any active child makes the summary active;
// all finished (and none pending or active) makes it finished;
// otherwise it is pending with the dates cleared.
func (s *VerificationService) RebuildSummary(ctx context.Context, paymentPlanID int64) error {
	plans, err := s.planRepo.ListByPaymentPlanID(ctx, paymentPlanID)
	if err != nil {
		return fmt.Errorf("failed to list verification plans: %w", err)
	}

	summary, err := s.summaryRepo.GetByPaymentPlanID(ctx, paymentPlanID)
	if err != nil {
		return fmt.Errorf("failed to load verification summary: %w", err)
	}
	if summary == nil {
		summary = &model.PaymentVerificationSummary{PaymentPlanID: paymentPlanID}
	}

	anyActive := false
	anyPending := false
	allFinished := len(plans) > 0
	for _, p := range plans {
		switch p.Status {
		case model.VerificationPlanStatusActive:
			anyActive = true
			allFinished = false
		case model.VerificationPlanStatusPending, model.VerificationPlanStatusRapidProError:
			anyPending = true
			allFinished = false
		case model.VerificationPlanStatusFinished:
		default:
			allFinished = false
		}
	}

	now := time.Now()
	switch {
	case anyActive:
		summary.Status = model.SummaryStatusActive
		if summary.ActivationDate == nil {
			summary.ActivationDate = &now
		}
		summary.CompletionDate = nil
	case allFinished && !anyPending:
		summary.Status = model.SummaryStatusFinished
		if summary.CompletionDate == nil {
			summary.CompletionDate = &now
		}
	default:
		summary.Status = model.SummaryStatusPending
		summary.ActivationDate = nil
		summary.CompletionDate = nil
	}

	if err := s.summaryRepo.Upsert(ctx, summary); err != nil {
		return fmt.Errorf("failed to persist verification summary: %w", err)
	}
	return nil
}

func (s *VerificationService) xlsxPlan(ctx context.Context, planID int64) (*model.PaymentVerificationPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load verification plan: %w", err)
	}
	if plan.Status != model.VerificationPlanStatusActive || plan.Channel != model.ChannelXLSX {
		return nil, fmt.Errorf("plan %d is not an active XLSX plan: %w", plan.ID, domainErrors.ErrInvalidTransition)
	}
	return plan, nil
}

// resetVerifications computes the full Pending target state for every
// child verification in memory, then persists it in one bulk update so
// readers never observe a half-reset plan.
func (s *VerificationService) resetVerifications(ctx context.Context, planID int64) error {
	verifications, err := s.verificationRepo.ListByPlanID(ctx, planID)
	if err != nil {
		return fmt.Errorf("failed to list verifications: %w", err)
	}

	now := time.Now()
	for _, v := range verifications {
		v.Status = model.VerificationStatusPending
		v.StatusDate = now
		v.ReceivedAmount = nil
		v.SentToRapidPro = false
	}

	if err := s.verificationRepo.BulkUpdate(ctx, verifications); err != nil {
		return fmt.Errorf("failed to reset verifications: %w", err)
	}
	return nil
}

func (s *VerificationService) recomputeCounts(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	counts, err := s.verificationRepo.CountByStatus(ctx, plan.ID)
	if err != nil {
		return fmt.Errorf("failed to count verifications: %w", err)
	}
	plan.ReceivedCount = counts[model.VerificationStatusReceived]
	plan.NotReceivedCount = counts[model.VerificationStatusNotReceived]
	plan.ReceivedWithProblemsCount = counts[model.VerificationStatusReceivedWithIssues]
	plan.RespondedCount = plan.ReceivedCount + plan.NotReceivedCount + plan.ReceivedWithProblemsCount
	return nil
}

func resetPlanProgress(plan *model.PaymentVerificationPlan) {
	plan.RespondedCount = 0
	plan.ReceivedCount = 0
	plan.NotReceivedCount = 0
	plan.ReceivedWithProblemsCount = 0
	plan.ActivationDate = nil
	plan.RapidProFlowStartUUIDs = nil
	plan.Error = nil
	plan.XLSXFileExporting = false
	plan.HasXLSXFile = false
}

// deriveVerificationStatus maps an operator's answer onto the
// verification outcome: not received, received in full, or received
// with a mismatched amount.
func deriveVerificationStatus(v *model.PaymentVerification, received bool, receivedAmount *decimal.Decimal) model.VerificationStatus {
	if !received {
		return model.VerificationStatusNotReceived
	}
	if receivedAmount != nil && v.Payment != nil && v.Payment.DeliveredQuantity != nil &&
		!receivedAmount.Equal(*v.Payment.DeliveredQuantity) {
		return model.VerificationStatusReceivedWithIssues
	}
	return model.VerificationStatusReceived
}
