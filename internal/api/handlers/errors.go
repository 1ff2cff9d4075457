package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"pv-sizing/internal/api/models"
	"pv-sizing/internal/balance"
	"pv-sizing/internal/data"
	"pv-sizing/internal/finance"
	"pv-sizing/internal/model"
	"pv-sizing/internal/store"
	"pv-sizing/internal/tariff"
	"pv-sizing/internal/timeseries"

	"github.com/gin-gonic/gin"
)

var errStoreDisabled = errors.New("projection store is disabled")

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// respondError maps known errors to a status and code; anything else gets
// the fallback pair.
func respondError(c *gin.Context, fallbackStatus int, fallbackCode string, err error) {
	_ = c.Error(err)

	var pvErr *data.PVGISError
	if errors.As(err, &pvErr) {
		status := http.StatusBadGateway
		switch pvErr.StatusCode {
		case http.StatusTooManyRequests:
			status = http.StatusTooManyRequests
		case http.StatusBadRequest:
			status = http.StatusBadRequest
		}
		c.AbortWithStatusJSON(status, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    pvErr.Code,
				Message: pvErr.Message,
				Details: map[string]any{"status_code": pvErr.StatusCode},
			},
		})
		return
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		abortJSON(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, errStoreDisabled):
		abortJSON(c, http.StatusServiceUnavailable, "STORE_DISABLED", err.Error())
	case errors.Is(err, data.ErrUnsupportedSource),
		errors.Is(err, finance.ErrUnsupported),
		errors.Is(err, tariff.ErrUnsupported):
		abortJSON(c, http.StatusBadRequest, "UNSUPPORTED", err.Error())
	case errors.Is(err, timeseries.ErrIncompleteYear),
		errors.Is(err, timeseries.ErrIncompleteDay),
		errors.Is(err, timeseries.ErrMalformedIndex),
		errors.Is(err, timeseries.ErrUnordered),
		errors.Is(err, model.ErrTooManyColumns),
		errors.Is(err, tariff.ErrCurveLength),
		errors.Is(err, balance.ErrLengthMismatch),
		errors.Is(err, data.ErrMissingColumn):
		abortJSON(c, http.StatusUnprocessableEntity, "INVALID_INPUT_DATA", err.Error())
	case errors.Is(err, fs.ErrNotExist):
		abortJSON(c, http.StatusBadRequest, "DATA_NOT_FOUND", err.Error())
	default:
		abortJSON(c, fallbackStatus, fallbackCode, err.Error())
	}
}
