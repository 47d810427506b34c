package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/reliefops/hope-engine/internal/config"
	"github.com/reliefops/hope-engine/internal/domain/provider"
	gatewayProvider "github.com/reliefops/hope-engine/internal/infrastructure/provider/gateway"
	rapidproProvider "github.com/reliefops/hope-engine/internal/infrastructure/provider/rapidpro"
	searchProvider "github.com/reliefops/hope-engine/internal/infrastructure/provider/search"
)

// Factory creates the external collaborator clients from configuration
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// PaymentGateway returns the disbursement gateway client
func (f *Factory) PaymentGateway() (provider.PaymentGatewayProvider, error) {
	cfg := f.config.Service.Gateway
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("payment gateway base URL not configured")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("payment gateway API key not configured")
	}
	return gatewayProvider.NewGatewayProvider(cfg.BaseURL, cfg.APIKey, f.logger), nil
}

// RapidPro returns the flow engine client
func (f *Factory) RapidPro() (provider.RapidProProvider, error) {
	cfg := f.config.Service.RapidPro
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("RapidPro base URL not configured")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("RapidPro token not configured")
	}
	return rapidproProvider.NewRapidProProvider(cfg.BaseURL, cfg.Token, f.logger), nil
}

// SimilaritySearch returns the similarity index client
func (f *Factory) SimilaritySearch() (provider.SimilarityProvider, error) {
	cfg := f.config.Service.Search
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("similarity index base URL not configured")
	}
	return searchProvider.NewSearchProvider(cfg.BaseURL, cfg.APIKey, f.logger), nil
}
