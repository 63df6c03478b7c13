package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/registripe/internal/domain/provider"
	"github.com/wekeepgrowing/registripe/internal/usecase"
	pkgerrors "github.com/wekeepgrowing/registripe/pkg/errors"
	"go.uber.org/zap"
)

// maxWebhookBody is the largest payload Stripe sends.
const maxWebhookBody = 65536

type WebhookHandler struct {
	service *usecase.WebhookService
	logger  *zap.Logger
}

func NewWebhookHandler(service *usecase.WebhookService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger,
	}
}

func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	if err := h.service.HandleWebhook(c.Request().Context(), body, sig); err != nil {
		if pe, ok := provider.AsProviderError(err); ok && pe.Code == provider.ErrCodeInvalidSignature {
			h.logger.Warn("Webhook signature verification failed",
				zap.Error(err),
				zap.String("remote_ip", c.RealIP()))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Webhook signature verification failed",
			})
		}

		pkgerrors.LogError(h.logger, err, "Failed to store webhook event")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to process webhook"})
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
