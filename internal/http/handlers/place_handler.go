// README: Place search endpoint.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vtcride/internal/logger"
	"vtcride/internal/maps"
	"vtcride/internal/modules/geocoding"
)

type PlaceHandler struct {
	places geocoding.Searcher
	log    logger.Logger
}

func NewPlaceHandler(places geocoding.Searcher, log logger.Logger) *PlaceHandler {
	return &PlaceHandler{places: places, log: log}
}

// Search never fails on provider errors; they are logged and an empty list
// is returned, matching what the suggestion panel shows.
func (h *PlaceHandler) Search(c *gin.Context) {
	q := c.Query("q")
	candidates, err := h.places.Search(c.Request.Context(), q)
	if err != nil {
		h.log.Warn("place search failed", logger.String("query", q), logger.Error(err))
		candidates = []maps.PlaceCandidate{}
	}
	writeJSON(c, http.StatusOK, gin.H{"query": q, "candidates": candidates})
}
