package provider

import (
	"context"
	"time"
)

// PaymentGatewayProvider is the external disbursement gateway contract.
// The ledger reconciles its records against internal payment state.
type PaymentGatewayProvider interface {
	// GetRecordsForPaymentInstruction fetches the gateway's delivery
	// records for one payment instruction (a plan or a plan split).
	GetRecordsForPaymentInstruction(ctx context.Context, instructionID string) ([]PaymentRecordData, error)
}

// PaymentRecordData is one delivery record as reported by the gateway.
type PaymentRecordData struct {
	RemoteID     string     `json:"remote_id"`
	Status       string     `json:"status"`
	PayoutAmount *float64   `json:"payout_amount"`
	AuthCode     string     `json:"auth_code"`
	FSPCode      string     `json:"fsp_code"`
	Message      string     `json:"message"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
}

// Gateway status codes. The ledger maps these plus the payout amount
// to internal payment statuses.
const (
	GatewayStatusTransferredToBeneficiary = "TRANSFERRED_TO_BENEFICIARY"
	GatewayStatusTransferredToFSP         = "TRANSFERRED_TO_FSP"
	GatewayStatusPending                  = "PENDING"
	GatewayStatusError                    = "ERROR"
	GatewayStatusCancelled                = "CANCELLED"
	GatewayStatusRefund                   = "REFUND"
)

// RapidProProvider is the external SMS/IVR flow engine contract used
// for verification outreach.
type RapidProProvider interface {
	// StartFlow starts the flow for the given phone numbers. Results
	// cover the batches started before any failure; a non-nil error
	// reports the failure that stopped the dispatch.
	StartFlow(ctx context.Context, flowID string, phoneNumbers []string) ([]FlowStartResult, error)
}

// FlowStartResult is one successful flow-start batch.
type FlowStartResult struct {
	UUID string   `json:"uuid"`
	URNs []string `json:"urns"`
}

// SimilaritySearchRequest scopes a fuzzy-match query over the
// similarity index.
type SimilaritySearchRequest struct {
	BusinessArea string     `json:"business_area"`
	FullName     string     `json:"full_name"`
	GivenName    string     `json:"given_name,omitempty"`
	FamilyName   string     `json:"family_name,omitempty"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	// Scope selects the population: "batch" restricts to the given
	// registration batch, "golden_record" excludes it.
	Scope                    string `json:"scope"`
	RegistrationDataImportID int64  `json:"registration_data_import_id"`
	// ExcludeID drops the queried individual itself from the hits.
	ExcludeID int64 `json:"exclude_id"`
}

// SimilarityHit is one ranked candidate returned by the index.
type SimilarityHit struct {
	HitID            int64   `json:"hit_id"`
	Score            float64 `json:"score"`
	ProximityToScore float64 `json:"proximity_to_score"`
	FullName         string  `json:"full_name"`
	BirthDate        string  `json:"birth_date,omitempty"`
	PhoneNumber      string  `json:"phone_number,omitempty"`
	HouseholdID      *int64  `json:"household_id,omitempty"`
}

// SimilarityProvider is the external fuzzy-match index contract.
type SimilarityProvider interface {
	Search(ctx context.Context, req *SimilaritySearchRequest) ([]SimilarityHit, error)
}

// ProviderError wraps a collaborator failure with the remote error code
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
