package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/directory"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/remote"
	"github.com/Domenick1991/flightdesk/internal/service"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/profile"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor maps use-case errors onto HTTP status codes.
func statusFor(err error) int {
	var apiErr *remote.APIError
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrDuplicateSubmission):
		return http.StatusConflict
	case errors.Is(err, remote.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, directory.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr),
		errors.Is(err, remote.ErrRequestFailed),
		errors.Is(err, profile.ErrProfileNotUpdated):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp.Error = service.ErrValidation.Error()
		resp.Fields = verr.Fields
	}
	var unavailable *directory.UnavailableError
	if errors.As(err, &unavailable) {
		resp.Error = unavailable.Message
	}

	if status >= http.StatusInternalServerError {
		logging.Error("request failed", "request_id", requestID(c), "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg})
}
