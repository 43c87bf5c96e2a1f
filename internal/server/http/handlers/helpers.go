package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
	"github.com/polkiloo/deliverydesk/internal/server/http/dto"
	"github.com/polkiloo/deliverydesk/internal/server/http/middleware"
	"github.com/polkiloo/deliverydesk/internal/session"
)

// CurrentPartnerID extracts the authenticated partner from context.
func CurrentPartnerID(c *gin.Context) string {
	return c.GetString(middleware.PartnerIDContextKey)
}

// errorResponse maps a domain error onto an HTTP status and body.
func errorResponse(err error) (int, dto.ErrorResponse) {
	var vErr *domainErrors.ValidationError
	switch {
	case errors.As(err, &vErr) && vErr.Unknown:
		return http.StatusUnprocessableEntity, dto.ErrorResponse{Code: dto.CodeUnknownStatus, Error: vErr.Error(), Status: vErr.Status}
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity, dto.ErrorResponse{Code: dto.CodeValidation, Error: vErr.Error(), Status: vErr.Status, Missing: vErr.Missing}
	case errors.Is(err, domainErrors.ErrInvalidOTP):
		return http.StatusUnprocessableEntity, dto.ErrorResponse{Code: dto.CodeInvalidOTP, Error: err.Error()}
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound, dto.ErrorResponse{Code: dto.CodeNotFound, Error: err.Error()}
	case errors.Is(err, domainErrors.ErrForbidden):
		return http.StatusForbidden, dto.ErrorResponse{Code: dto.CodeForbidden, Error: err.Error()}
	case errors.Is(err, domainErrors.ErrTransport):
		return http.StatusBadGateway, dto.ErrorResponse{Code: dto.CodeUnavailable, Error: err.Error()}
	case errors.Is(err, domainErrors.ErrSubmissionInFlight):
		return http.StatusConflict, dto.ErrorResponse{Code: dto.CodeInFlight, Error: err.Error()}
	case errors.Is(err, domainErrors.ErrDialogClosed):
		return http.StatusConflict, dto.ErrorResponse{Code: dto.CodeDialogClosed, Error: err.Error()}
	case errors.Is(err, domainErrors.ErrUnavailable):
		return http.StatusServiceUnavailable, dto.ErrorResponse{Code: dto.CodeDependency, Error: err.Error()}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Code: dto.CodeInternal, Error: "internal error"}
	}
}

func writeError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: dto.CodeBadRequest, Error: msg})
}

// ensureLoaded populates a fresh session on first use.
func ensureLoaded(ctx context.Context, sess *session.Session) error {
	if !sess.Queue().RefreshedAt().IsZero() {
		return nil
	}
	return sess.Refresh(ctx)
}

func advisoryStrings(advisories []model.Advisory) []string {
	if len(advisories) == 0 {
		return nil
	}
	out := make([]string, 0, len(advisories))
	for _, a := range advisories {
		out = append(out, string(a))
	}
	return out
}
