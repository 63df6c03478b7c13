package http

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FlashSession is the cookie session holding one-shot messages.
const FlashSession = "registripe"

// AddFlash queues msg for the next page the user sees. A missing session
// store only loses the message.
func AddFlash(c echo.Context, logger *zap.Logger, msg string) {
	sess, err := session.Get(FlashSession, c)
	if err != nil {
		logger.Warn("Flash message dropped", zap.Error(err))
		return
	}
	sess.AddFlash(msg)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		logger.Warn("Failed to save flash message", zap.Error(err))
	}
}

// Flashes pops the queued messages.
func Flashes(c echo.Context) []string {
	sess, err := session.Get(FlashSession, c)
	if err != nil {
		return nil
	}
	var messages []string
	for _, f := range sess.Flashes() {
		if m, ok := f.(string); ok {
			messages = append(messages, m)
		}
	}
	if len(messages) > 0 {
		_ = sess.Save(c.Request(), c.Response())
	}
	return messages
}
