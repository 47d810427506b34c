package rapidpro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/reliefops/hope-engine/internal/domain/provider"
)

// Flow starts are dispatched in batches; RapidPro caps the URN list per
// flow-start request.
const flowStartBatchSize = 100

// RapidProProvider talks to the RapidPro flow engine over its v2 API.
type RapidProProvider struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

// NewRapidProProvider creates a new RapidPro client
func NewRapidProProvider(baseURL, token string, logger *zap.Logger) *RapidProProvider {
	return &RapidProProvider{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// StartFlow starts the flow for the given phone numbers, batch by batch.
// The returned results cover every batch started before a failure; the
// error reports the failure that stopped the dispatch.
// POST /api/v2/flow_starts.json
func (r *RapidProProvider) StartFlow(ctx context.Context, flowID string, phoneNumbers []string) ([]provider.FlowStartResult, error) {
	var results []provider.FlowStartResult

	for start := 0; start < len(phoneNumbers); start += flowStartBatchSize {
		end := start + flowStartBatchSize
		if end > len(phoneNumbers) {
			end = len(phoneNumbers)
		}

		urns := make([]string, 0, end-start)
		for _, phone := range phoneNumbers[start:end] {
			urns = append(urns, "tel:"+phone)
		}

		result, err := r.startBatch(ctx, flowID, urns)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}

	r.logger.Info("RapidProProvider: flow started",
		zap.String("flow_id", flowID),
		zap.Int("phone_count", len(phoneNumbers)),
		zap.Int("batch_count", len(results)))

	return results, nil
}

func (r *RapidProProvider) startBatch(ctx context.Context, flowID string, urns []string) (*provider.FlowStartResult, error) {
	body := map[string]interface{}{
		"flow": flowID,
		"urns": urns,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    "MARSHAL_ERROR",
			Message: "Failed to prepare request",
			Details: err.Error(),
		}
	}

	url := fmt.Sprintf("%s/api/v2/flow_starts.json", r.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}
	httpReq.Header.Set("Authorization", "Token "+r.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		r.logger.Error("RapidProProvider: flow start request failed",
			zap.String("flow_id", flowID),
			zap.Error(err))
		return nil, &provider.ProviderError{
			Code:    "API_ERROR",
			Message: "RapidPro API request failed",
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

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		r.logger.Error("RapidProProvider: flow start rejected",
			zap.String("flow_id", flowID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return nil, &provider.ProviderError{
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: "RapidPro rejected the flow start",
			Details: string(respBody),
		}
	}

	var result provider.FlowStartResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &provider.ProviderError{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse response",
			Details: err.Error(),
		}
	}

	return &result, nil
}
