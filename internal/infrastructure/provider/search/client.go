package search

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

// SearchProvider talks to the similarity index used for duplicate
// detection.
type SearchProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewSearchProvider creates a new similarity search client
func NewSearchProvider(baseURL, apiKey string, logger *zap.Logger) *SearchProvider {
	return &SearchProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Search runs a fuzzy-match query and returns the ranked candidates
// POST /individuals/search
func (s *SearchProvider) Search(ctx context.Context, req *provider.SimilaritySearchRequest) ([]provider.SimilarityHit, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    "MARSHAL_ERROR",
			Message: "Failed to prepare request",
			Details: err.Error(),
		}
	}

	url := fmt.Sprintf("%s/individuals/search", s.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Error("SearchProvider: similarity search failed",
			zap.String("business_area", req.BusinessArea),
			zap.Error(err))
		return nil, &provider.ProviderError{
			Code:    "API_ERROR",
			Message: "Similarity index request failed",
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

		s.logger.Error("SearchProvider: similarity search rejected",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))

		code, _ := errResp["code"].(string)
		message, _ := errResp["message"].(string)
		if message == "" {
			message = "Similarity index returned an error"
		}

		return nil, &provider.ProviderError{
			Code:    code,
			Message: message,
			Details: string(respBody),
		}
	}

	var result struct {
		Hits []provider.SimilarityHit `json:"hits"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &provider.ProviderError{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse response",
			Details: err.Error(),
		}
	}

	return result.Hits, nil
}
