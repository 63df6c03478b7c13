package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	// CSRFField is the form field carrying the CSRF token.
	CSRFField = "csrfmiddlewaretoken"
	// CSRFCookie holds the token the form field is checked against.
	CSRFCookie = "csrftoken"

	csrfContextKey = "csrf"
)

// CSRFMiddleware protects the cookie-authenticated form pages. Safe methods
// issue the token; a POST without a matching form field is rejected before
// the handler runs.
func CSRFMiddleware(secure bool) echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + CSRFField,
		ContextKey:     csrfContextKey,
		CookieName:     CSRFCookie,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// CSRFToken is the token to render into the page's forms.
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(csrfContextKey).(string)
	return token
}
