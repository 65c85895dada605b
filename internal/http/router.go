// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vtcride/internal/http/handlers"
	"vtcride/internal/http/middleware"
)

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(deps.Logger), middleware.Recovery(deps.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	configHandler := handlers.NewConfigHandler(deps.Maps, deps.Pricing)
	api := r.Group("/api")
	api.GET("/config", configHandler.Status)
	api.GET("/vehicle-classes", configHandler.VehicleClasses)

	mapsGate := middleware.RequireMapsConfigured(deps.Maps.Configured)

	placeHandler := handlers.NewPlaceHandler(deps.Places, deps.Logger)
	api.GET("/places", mapsGate, placeHandler.Search)

	routeHandler := handlers.NewRouteHandler(deps.Routes, deps.Trips)
	api.POST("/routes", mapsGate, routeHandler.Route)
	api.POST("/fares/estimate", mapsGate, routeHandler.Estimate)

	tripHandler := handlers.NewTripHandler(deps.Routes, deps.Pricing, deps.Places, deps.Search, deps.Logger)
	r.GET("/ws/trip", mapsGate, tripHandler.Serve)

	return r
}
