package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/reliefops/hope-engine/internal/adapter/handler/http"
	"github.com/reliefops/hope-engine/internal/config"
	"github.com/reliefops/hope-engine/internal/infrastructure/database"
	"github.com/reliefops/hope-engine/internal/middleware/auth"
	"github.com/reliefops/hope-engine/internal/usecase"
)

// requestValidator adapts go-playground/validator to echo's Validator
// interface
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type Services struct {
	Ledger        *usecase.LedgerService
	Verification  *usecase.VerificationService
	Deduplication *usecase.DeduplicationService
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	repos    *database.Repositories
	services *Services
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories, services *Services) *Server {
	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PATCH, echo.DELETE},
	}))

	return &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		repos:    repos,
		services: services,
	}
}

func (s *Server) Start() error {
	// Setup routes
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(s.services.Ledger, s.repos.Payment, s.repos.PaymentPlan, s.logger)
	verificationHandler := handlers.NewVerificationHandler(s.services.Verification, s.repos.Summary, s.logger)
	deduplicationHandler := handlers.NewDeduplicationHandler(s.services.Deduplication, s.logger)

	// JWT middleware configuration
	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
		},
	}

	// API v1 routes, all protected
	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))

	// Payment ledger
	payments := v1.Group("/payments")
	payments.GET("/:id", paymentHandler.GetPayment)
	payments.POST("/:id/record-delivery", paymentHandler.RecordDelivery)
	payments.POST("/:id/mark-failed", paymentHandler.MarkFailed)
	payments.POST("/:id/revert-mark-failed", paymentHandler.RevertMarkFailed)

	// Payment plans
	plans := v1.Group("/payment-plans")
	plans.GET("/:id/payments", paymentHandler.ListPlanPayments)
	plans.POST("/:id/sync", paymentHandler.SyncPlan)
	plans.POST("/:id/verification-plans", verificationHandler.CreatePlan)
	plans.GET("/:id/verification-summary", verificationHandler.GetSummary)

	// Verification plan lifecycle
	verifications := v1.Group("/verification-plans")
	verifications.POST("/:id/activate", verificationHandler.Activate)
	verifications.POST("/:id/discard", verificationHandler.Discard)
	verifications.POST("/:id/invalidate", verificationHandler.MarkInvalid)
	verifications.POST("/:id/finish", verificationHandler.Finish)
	verifications.POST("/:id/export-xlsx", verificationHandler.ExportXLSX)
	verifications.POST("/:id/import-xlsx", verificationHandler.ImportXLSX)
	verifications.POST("/:id/mark-downloaded", verificationHandler.MarkXLSXDownloaded)
	verifications.PATCH("/:id/verifications/:verificationId", verificationHandler.UpdateReceived)

	// Deduplication and targeting
	v1.POST("/registration-imports/:id/deduplicate", deduplicationHandler.DeduplicateBatch)
	v1.POST("/grievance-tickets/:id/resolve", deduplicationHandler.ResolveTicket)
	v1.GET("/households/targetable", deduplicationHandler.ListTargetableHouseholds)
}
