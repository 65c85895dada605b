// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vtcride/internal/maps"
	"vtcride/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeEstimateError maps route and pricing failures. Provider failures
// surface as 502 with no route.
func writeEstimateError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, pricing.ErrUnknownVehicleClass), errors.Is(err, pricing.ErrInvalidRoute):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, maps.ErrNotConfigured):
		writeError(c, http.StatusServiceUnavailable, "configuration required")
	case errors.Is(err, maps.ErrNoRoute):
		writeError(c, http.StatusBadGateway, "no route found")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "maps provider timeout")
	default:
		writeError(c, http.StatusBadGateway, "maps provider error")
	}
}
