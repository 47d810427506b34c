package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/reliefops/hope-engine/internal/domain/provider"
)

// GatewayProvider talks to the external disbursement gateway over its
// REST API.
type GatewayProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewGatewayProvider creates a new payment gateway client
func NewGatewayProvider(baseURL, apiKey string, logger *zap.Logger) *GatewayProvider {
	return &GatewayProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// GetRecordsForPaymentInstruction fetches the gateway's delivery records
// for one payment instruction
// GET /payment_instructions/{id}/records/
func (g *GatewayProvider) GetRecordsForPaymentInstruction(ctx context.Context, instructionID string) ([]provider.PaymentRecordData, error) {
	url := fmt.Sprintf("%s/payment_instructions/%s/records/", g.baseURL, instructionID)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}
	httpReq.Header.Set("Authorization", "Token "+g.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Error("GatewayProvider: records request failed",
			zap.String("instruction_id", instructionID),
			zap.Error(err))
		return nil, &provider.ProviderError{
			Code:    "API_ERROR",
			Message: "Payment gateway request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    "RESPONSE_ERROR",
			Message: "Failed to read response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]interface{}
		json.Unmarshal(respBody, &errResp)

		g.logger.Error("GatewayProvider: records fetch failed",
			zap.String("instruction_id", instructionID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))

		code, _ := errResp["code"].(string)
		message, _ := errResp["message"].(string)
		if message == "" {
			message = "Payment gateway returned an error"
		}

		return nil, &provider.ProviderError{
			Code:    code,
			Message: message,
			Details: string(respBody),
		}
	}

	var records []provider.PaymentRecordData
	if err := json.Unmarshal(respBody, &records); err != nil {
		return nil, &provider.ProviderError{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse response",
			Details: err.Error(),
		}
	}

	g.logger.Info("GatewayProvider: fetched delivery records",
		zap.String("instruction_id", instructionID),
		zap.Int("record_count", len(records)))

	return records, nil
}
