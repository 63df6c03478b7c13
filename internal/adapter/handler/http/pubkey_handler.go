package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type PubkeyHandler struct {
	publishableKey string
}

func NewPubkeyHandler(publishableKey string) *PubkeyHandler {
	return &PubkeyHandler{publishableKey: publishableKey}
}

// Script sets the publishable key for Stripe.js.
func (h *PubkeyHandler) Script(c echo.Context) error {
	script := fmt.Sprintf("Stripe.setPublishableKey('%s');", h.publishableKey)
	return c.Blob(http.StatusOK, "text/javascript", []byte(script))
}
