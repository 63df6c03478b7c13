package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/wekeepgrowing/registripe/internal/adapter/handler/http"
	"github.com/wekeepgrowing/registripe/internal/config"
	"github.com/wekeepgrowing/registripe/internal/domain/provider"
	"github.com/wekeepgrowing/registripe/internal/domain/repository"
	"github.com/wekeepgrowing/registripe/internal/metrics"
	"github.com/wekeepgrowing/registripe/internal/middleware/auth"
	"github.com/wekeepgrowing/registripe/internal/usecase"
	"github.com/wekeepgrowing/registripe/pkg/logger"
	"github.com/wekeepgrowing/registripe/pkg/messaging"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	Store     repository.Store
	Gateway   provider.PaymentGateway
	Publisher messaging.Publisher
	Metrics   *metrics.Metrics
	Webhooks  *usecase.WebhookService
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	deps   Dependencies
}

func NewServer(cfg *config.Config, log *zap.Logger, deps Dependencies) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := handlers.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	e.Renderer = renderer

	logger.WithEchoLogger(e, log)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log))
	if cfg.Service.ClientURL != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{cfg.Service.ClientURL},
			AllowMethods: []string{http.MethodGet, http.MethodPost},
		}))
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret = cfg.JWT.Secret
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	s := &Server{
		config: cfg,
		logger: log,
		echo:   e,
		deps:   deps,
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
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
	s.echo.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))

	settings := usecase.PaymentSettings{
		ConferenceTitle: s.config.Conference.Title,
		Currency:        s.config.Conference.Currency,
		ChannelPrefix:   s.config.Redis.ChannelPrefix,
	}
	cardPayments := usecase.NewCardPaymentService(s.deps.Store, s.deps.Gateway, s.deps.Publisher, s.deps.Metrics, settings, s.logger)
	refunds := usecase.NewRefundService(s.deps.Store, s.deps.Gateway, s.deps.Publisher, s.deps.Metrics, s.config.Redis.ChannelPrefix, s.logger)

	cardHandler := handlers.NewCardHandler(
		usecase.NewInvoiceController(s.deps.Store),
		cardPayments,
		"/pubkey/",
		s.config.Service.InvoiceURL,
		s.logger,
	)
	refundHandler := handlers.NewRefundHandler(
		usecase.NewCreditNoteController(s.deps.Store),
		refunds,
		s.deps.Store.Payments(),
		s.config.Service.CreditNoteURL,
		s.logger,
	)
	paymentHandler := handlers.NewPaymentHandler(usecase.NewPaymentUsecase(s.deps.Store.Payments(), s.logger), s.logger)
	pubkeyHandler := handlers.NewPubkeyHandler(s.config.Service.StripePublicKey)
	webhookHandler := handlers.NewWebhookHandler(s.deps.Webhooks, s.logger)

	jwtConfig := auth.JWTConfig{
		Secret:     s.config.JWT.Secret,
		CookieName: s.config.JWT.CookieName,
		Logger:     s.logger,
	}

	// Pages resolve the caller when a token is present; the card pages also
	// accept an access code instead. Their POSTs need the page's CSRF token.
	pages := s.echo.Group("", auth.JWTMiddleware(jwtConfig), handlers.CSRFMiddleware(s.config.Session.Secure))
	methods := []string{http.MethodGet, http.MethodPost}
	pages.Match(methods, "/card/:invoice_id/", cardHandler.Card)
	pages.Match(methods, "/card/:invoice_id/:access_code/", cardHandler.Card)
	pages.Match(methods, "/refund/:credit_note_id/", refundHandler.Refund, auth.RequireStaff)

	s.echo.GET("/pubkey/", pubkeyHandler.Script)

	// API v1 routes
	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig), auth.RequireAuth)
	v1.GET("/payments", paymentHandler.GetUserPayments)

	// Webhook route (signature checked by the handler)
	s.echo.POST("/webhook/", webhookHandler.HandleWebhook)
}
