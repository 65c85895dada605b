// README: Route lookup and fare estimate endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vtcride/internal/modules/trip"
	"vtcride/internal/types"
)

type RouteHandler struct {
	routes trip.RouteResolver
	trips  *trip.Service
}

func NewRouteHandler(routes trip.RouteResolver, trips *trip.Service) *RouteHandler {
	return &RouteHandler{routes: routes, trips: trips}
}

type routeReq struct {
	Pickup  *types.Point `json:"pickup"`
	Dropoff *types.Point `json:"dropoff"`
}

func (h *RouteHandler) Route(c *gin.Context) {
	var req routeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Pickup == nil || req.Dropoff == nil {
		writeError(c, http.StatusBadRequest, "pickup and dropoff are required")
		return
	}
	if !req.Pickup.Valid() || !req.Dropoff.Valid() {
		writeError(c, http.StatusBadRequest, "coordinates out of range")
		return
	}
	info, err := h.routes.Resolve(c.Request.Context(), *req.Pickup, *req.Dropoff)
	if err != nil {
		writeEstimateError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, info)
}

type estimateReq struct {
	Pickup         *types.Point `json:"pickup"`
	Dropoff        *types.Point `json:"dropoff"`
	VehicleClassID string       `json:"vehicle_class_id"`
}

func (h *RouteHandler) Estimate(c *gin.Context) {
	var req estimateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Pickup == nil || req.Dropoff == nil {
		writeError(c, http.StatusBadRequest, "pickup and dropoff are required")
		return
	}
	est, err := h.trips.Estimate(c.Request.Context(), trip.EstimateRequest{
		Pickup:         *req.Pickup,
		Dropoff:        *req.Dropoff,
		VehicleClassID: req.VehicleClassID,
	})
	if err != nil {
		writeEstimateError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, est)
}
