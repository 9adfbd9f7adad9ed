package server

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
	apperrors "github.com/ShopStream-LLC/shopstream-app/internal/errors"
)

const shopContextKey = "shop"

// requireSessionToken authenticates the embedded-app session token from the
// Authorization header and stores the shop domain in the request context.
// Every merchant query downstream is scoped to that shop.
func (s *Server) requireSessionToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return apperrors.UnauthorizedError("missing session token")
		}

		shop, err := s.verifier.VerifySessionToken(token)
		if err != nil {
			return apperrors.UnauthorizedError("invalid session token")
		}

		if !s.limiter.Allow(shop) {
			return apperrors.RateLimitedError("too many requests").WithField("shop", shop)
		}

		c.Set(shopContextKey, shop)
		return next(c)
	}
}

// shopFrom extracts the authenticated shop domain set by requireSessionToken.
func shopFrom(c echo.Context) (string, error) {
	shop, ok := c.Get(shopContextKey).(string)
	if !ok || shop == "" {
		return "", apperrors.UnauthorizedError("no authenticated shop")
	}
	return shop, nil
}

// streamIDParam parses the :id path parameter.
func streamIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid stream id").WithField("id", c.Param("id"))
	}
	return id, nil
}

// mapDomainError translates domain sentinels into structured HTTP errors.
// Anything unrecognized is an internal error.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return apperrors.ValidationError(err.Error())
	case errors.Is(err, domain.ErrStreamNotFound):
		return apperrors.NotFoundError("stream not found")
	case errors.Is(err, domain.ErrProductNotFound):
		return apperrors.NotFoundError("product not found")
	case errors.Is(err, domain.ErrClipNotFound):
		return apperrors.NotFoundError("clip not found")
	case errors.Is(err, domain.ErrUnknownSession):
		return apperrors.NotFoundError("unknown ingest session")
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperrors.ConflictError(err.Error())
	case errors.Is(err, domain.ErrSessionExists):
		return apperrors.ConflictError("ingest session already provisioned")
	case errors.Is(err, domain.ErrEncoderNotReady):
		return apperrors.ConflictError("encoder is not connected yet")
	case errors.Is(err, domain.ErrNoRecording):
		return apperrors.ConflictError("stream has no recording yet")
	default:
		return apperrors.InternalError("request failed", err)
	}
}
