package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/reliefops/hope-engine/internal/domain/model"
)

// PaymentDTO represents a payment ledger entry for API responses
type PaymentDTO struct {
	ID                    int64      `json:"id"`
	UniversalID           uuid.UUID  `json:"universal_id"`
	Status                string     `json:"status"`
	Currency              string     `json:"currency"`
	EntitlementQuantity   string     `json:"entitlement_quantity,omitempty"`
	DeliveredQuantity     string     `json:"delivered_quantity,omitempty"`
	DeliveredQuantityUSD  string     `json:"delivered_quantity_usd,omitempty"`
	DeliveryDate          *time.Time `json:"delivery_date,omitempty"`
	FSPAuthCode           string     `json:"fsp_auth_code,omitempty"`
	TransactionCode       string     `json:"transaction_code,omitempty"`
	ReasonForUnsuccessful string     `json:"reason_for_unsuccessful,omitempty"`
	Reconciled            bool       `json:"reconciled"`
}

// NewPaymentDTO maps a payment model to its API shape
func NewPaymentDTO(p *model.Payment) PaymentDTO {
	d := PaymentDTO{
		ID:           p.ID,
		UniversalID:  p.UniversalID,
		Status:       string(p.Status),
		Currency:     p.Currency,
		DeliveryDate: p.DeliveryDate,
		Reconciled:   p.IsReconciled(),
	}
	if p.EntitlementQuantity != nil {
		d.EntitlementQuantity = p.EntitlementQuantity.String()
	}
	if p.DeliveredQuantity != nil {
		d.DeliveredQuantity = p.DeliveredQuantity.String()
	}
	if p.DeliveredQuantityUSD != nil {
		d.DeliveredQuantityUSD = p.DeliveredQuantityUSD.String()
	}
	if p.FSPAuthCode != nil {
		d.FSPAuthCode = *p.FSPAuthCode
	}
	if p.TransactionCode != nil {
		d.TransactionCode = *p.TransactionCode
	}
	if p.ReasonForUnsuccessful != nil {
		d.ReasonForUnsuccessful = *p.ReasonForUnsuccessful
	}
	return d
}
