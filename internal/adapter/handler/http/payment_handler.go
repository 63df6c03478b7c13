package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/registripe/internal/middleware/auth"
	"github.com/wekeepgrowing/registripe/internal/usecase"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	usecase *usecase.PaymentUsecase
	logger  *zap.Logger
}

func NewPaymentHandler(usecase *usecase.PaymentUsecase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// GetUserPayments lists the caller's Stripe payments. The route requires
// an authenticated user.
func (h *PaymentHandler) GetUserPayments(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	// Parse limit query parameter
	limit := 0
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil {
			h.logger.Warn("Invalid limit parameter",
				zap.String("limit", limitStr),
				zap.Error(err))
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid limit parameter",
			})
		}
		limit = parsedLimit
	}

	payments, err := h.usecase.GetUserPayments(c.Request().Context(), user.ID, limit)
	if err != nil {
		h.logger.Error("Failed to get user payments",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to get payments",
		})
	}

	h.logger.Debug("Retrieved user payments",
		zap.String("user_id", user.ID.String()),
		zap.Int("payment_count", len(payments.Payments)),
	)

	return c.JSON(http.StatusOK, payments)
}
