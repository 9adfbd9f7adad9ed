package server

import (
	"errors"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
	apperrors "github.com/ShopStream-LLC/shopstream-app/internal/errors"
	"github.com/ShopStream-LLC/shopstream-app/internal/metrics"
	"github.com/ShopStream-LLC/shopstream-app/internal/mux"
)

// handleMuxWebhook verifies and processes a video platform notification.
// Verification fails closed: without a valid signature (or without a
// configured secret at all) nothing is parsed and nothing is mutated.
func (s *Server) handleMuxWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperrors.ValidationError("failed to read request body")
	}

	header := c.Request().Header.Get(mux.SignatureHeader)
	if err := mux.VerifySignature(header, body, s.config.MuxWebhookSecret, s.clock.Now(), mux.DefaultSignatureTolerance); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "unauthorized").Inc()
		return apperrors.UnauthorizedError("invalid webhook signature")
	}

	evt, err := mux.ParseEvent(body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "malformed").Inc()
		return apperrors.ValidationError("malformed webhook event")
	}

	timer := s.clock.Now()
	err = s.app.HandleWebhookEvent(c.Request().Context(), evt)
	metrics.WebhookProcessingDuration.WithLabelValues(evt.Type).Observe(s.clock.Since(timer).Seconds())

	switch {
	case errors.Is(err, domain.ErrUnknownSession):
		metrics.WebhookEventsTotal.WithLabelValues(evt.Type, "unknown_session").Inc()
		return apperrors.NotFoundError("unknown ingest session").WithField("session_id", evt.SessionID())
	case err != nil:
		metrics.WebhookEventsTotal.WithLabelValues(evt.Type, "error").Inc()
		return apperrors.InternalError("failed to process webhook event", err).WithField("event_type", evt.Type)
	}

	outcome := "processed"
	if !evt.Handled() {
		outcome = "ignored"
	}
	metrics.WebhookEventsTotal.WithLabelValues(evt.Type, outcome).Inc()
	if err := c.JSON(200, map[string]string{"status": "accepted"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
