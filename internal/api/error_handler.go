package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/pkg/token"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors map to fixed HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrOrganizationNotFound):
		return http.StatusNotFound, "organization not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrAssessmentNotFound):
		return http.StatusNotFound, "assessment not found"
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, "question not found"
	case errors.Is(err, domain.ErrAssessmentNotEditable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidQuestion):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrPlanLimitReached):
		return http.StatusPaymentRequired, "plan limit reached"
	case errors.Is(err, domain.ErrInvitationNotFound):
		return http.StatusNotFound, "invitation not found"
	case errors.Is(err, domain.ErrInvitationExpired):
		return http.StatusGone, "invitation expired"
	case errors.Is(err, domain.ErrAlreadySubmitted):
		return http.StatusConflict, "invitation already submitted"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		return http.StatusNotFound, "subscription not found"
	case errors.Is(err, domain.ErrUnknownPlan):
		return http.StatusUnprocessableEntity, "unknown plan"
	case errors.Is(err, token.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, token.ErrWrongTokenKind):
		return http.StatusUnauthorized, "wrong token kind"
	case errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
