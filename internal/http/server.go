// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"vtcride/internal/http/handlers"
	"vtcride/internal/logger"
	"vtcride/internal/modules/geocoding"
	"vtcride/internal/modules/pricing"
	"vtcride/internal/modules/trip"
)

type ServerDeps struct {
	Maps    handlers.MapsStatus
	Pricing *pricing.Service
	// Places, Routes and Trips are nil when no maps credential is set.
	Places geocoding.Searcher
	Routes trip.RouteResolver
	Trips  *trip.Service
	Search geocoding.SessionConfig
	Logger logger.Logger
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	return NewRouter(s.deps)
}
