package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/reliefops/hope-engine/internal/domain/model"
)

// VerificationPlanDTO represents a verification plan for API responses
type VerificationPlanDTO struct {
	ID                 int64     `json:"id"`
	UniversalID        uuid.UUID `json:"universal_id"`
	PaymentPlanID      int64     `json:"payment_plan_id"`
	Status             string    `json:"status"`
	Sampling           string    `json:"sampling"`
	Channel            string    `json:"channel"`
	SampleSize         int       `json:"sample_size"`
	RespondedCount     int       `json:"responded_count"`
	ReceivedCount      int       `json:"received_count"`
	NotReceivedCount   int       `json:"not_received_count"`
	ReceivedWithIssues int       `json:"received_with_issues_count"`
	Error              string    `json:"error,omitempty"`
	ActivationDate     *time.Time `json:"activation_date,omitempty"`
	CompletionDate     *time.Time `json:"completion_date,omitempty"`
}

// NewVerificationPlanDTO maps a verification plan model to its API shape
func NewVerificationPlanDTO(p *model.PaymentVerificationPlan) VerificationPlanDTO {
	d := VerificationPlanDTO{
		ID:                 p.ID,
		UniversalID:        p.UniversalID,
		PaymentPlanID:      p.PaymentPlanID,
		Status:             string(p.Status),
		Sampling:           string(p.Sampling),
		Channel:            string(p.Channel),
		SampleSize:         p.SampleSize,
		RespondedCount:     p.RespondedCount,
		ReceivedCount:      p.ReceivedCount,
		NotReceivedCount:   p.NotReceivedCount,
		ReceivedWithIssues: p.ReceivedWithProblemsCount,
		ActivationDate:     p.ActivationDate,
		CompletionDate:     p.CompletionDate,
	}
	if p.Error != nil {
		d.Error = *p.Error
	}
	return d
}

// SummaryDTO represents a payment plan's verification rollup for API
// responses
type SummaryDTO struct {
	PaymentPlanID  int64      `json:"payment_plan_id"`
	Status         string     `json:"status"`
	ActivationDate *time.Time `json:"activation_date,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

// NewSummaryDTO maps a summary model to its API shape
func NewSummaryDTO(s *model.PaymentVerificationSummary) SummaryDTO {
	return SummaryDTO{
		PaymentPlanID:  s.PaymentPlanID,
		Status:         string(s.Status),
		ActivationDate: s.ActivationDate,
		CompletionDate: s.CompletionDate,
	}
}
