package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/repository"
)

// Exchange file column layout. Operators fill the last two columns.
var sheetHeader = []string{
	"verification_id",
	"payment_universal_id",
	"delivered_quantity",
	"received",
	"received_amount",
}

// FileStore exchanges verification plans with operators as CSV sheets
// on local disk.
type FileStore struct {
	dir              string
	verificationRepo repository.VerificationRepository
	logger           *zap.Logger
}

// NewFileStore creates a sheet store rooted at dir
func NewFileStore(dir string, verificationRepo repository.VerificationRepository, logger *zap.Logger) *FileStore {
	return &FileStore{
		dir:              dir,
		verificationRepo: verificationRepo,
		logger:           logger,
	}
}

// Export writes the plan's verifications to a sheet with empty outcome
// columns for the operator to fill.
func (s *FileStore) Export(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	verifications, err := s.verificationRepo.ListByPlanIDAndStatuses(ctx, plan.ID, []model.VerificationStatus{
		model.VerificationStatusPending,
		model.VerificationStatusReceived,
		model.VerificationStatusNotReceived,
		model.VerificationStatusReceivedWithIssues,
	})
	if err != nil {
		return fmt.Errorf("failed to list verifications for export: %w", err)
	}

	file, err := os.Create(s.path(plan.ID))
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(sheetHeader); err != nil {
		return fmt.Errorf("failed to write sheet header: %w", err)
	}
	for _, v := range verifications {
		delivered := ""
		if v.Payment != nil && v.Payment.DeliveredQuantity != nil {
			delivered = v.Payment.DeliveredQuantity.String()
		}
		row := []string{
			strconv.FormatInt(v.ID, 10),
			"",
			delivered,
			"",
			"",
		}
		if v.Payment != nil {
			row[1] = v.Payment.UniversalID.String()
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write sheet row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	s.logger.Info("verification sheet exported",
		zap.Int64("verification_plan_id", plan.ID),
		zap.Int("row_count", len(verifications)))
	return nil
}

// Import reads a filled sheet and applies the reported outcomes. Rows
// with an empty received column are left untouched.
func (s *FileStore) Import(ctx context.Context, plan *model.PaymentVerificationPlan, file io.Reader) error {
	r := csv.NewReader(file)
	r.FieldsPerRecord = len(sheetHeader)

	// Header row
	if _, err := r.Read(); err != nil {
		return fmt.Errorf("failed to read sheet header: %w", err)
	}

	applied := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read sheet row: %w", err)
		}

		received := strings.TrimSpace(strings.ToUpper(row[3]))
		if received == "" {
			continue
		}

		verificationID, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid verification id %q: %w", row[0], err)
		}

		verification, err := s.verificationRepo.GetByID(ctx, verificationID)
		if err != nil {
			return fmt.Errorf("failed to load verification %d: %w", verificationID, err)
		}
		if verification.VerificationPlanID != plan.ID {
			return fmt.Errorf("verification %d does not belong to plan %d", verificationID, plan.ID)
		}

		var receivedAmount *decimal.Decimal
		if amountStr := strings.TrimSpace(row[4]); amountStr != "" {
			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return fmt.Errorf("invalid received amount %q: %w", amountStr, err)
			}
			receivedAmount = &amount
		}

		verification.Status = deriveStatus(verification, received == "YES", receivedAmount)
		verification.StatusDate = time.Now()
		verification.ReceivedAmount = receivedAmount
		if err := s.verificationRepo.Update(ctx, verification); err != nil {
			return fmt.Errorf("failed to apply sheet row for verification %d: %w", verificationID, err)
		}
		applied++
	}

	s.logger.Info("verification sheet imported",
		zap.Int64("verification_plan_id", plan.ID),
		zap.Int("applied_count", applied))
	return nil
}

// Delete removes the plan's exported sheet. A sheet that was never
// exported is not an error.
func (s *FileStore) Delete(ctx context.Context, plan *model.PaymentVerificationPlan) error {
	if err := os.Remove(s.path(plan.ID)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete export file: %w", err)
	}

	s.logger.Info("verification sheet deleted",
		zap.Int64("verification_plan_id", plan.ID))
	return nil
}

func (s *FileStore) path(planID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("verification_plan_%d.csv", planID))
}

// deriveStatus mirrors the manual outcome rule: a reported amount that
// differs from the delivered quantity is an issue, not a clean receipt.
func deriveStatus(v *model.PaymentVerification, received bool, receivedAmount *decimal.Decimal) model.VerificationStatus {
	if !received {
		return model.VerificationStatusNotReceived
	}
	if receivedAmount != nil && v.Payment != nil && v.Payment.DeliveredQuantity != nil &&
		!receivedAmount.Equal(*v.Payment.DeliveredQuantity) {
		return model.VerificationStatusReceivedWithIssues
	}
	return model.VerificationStatusReceived
}
