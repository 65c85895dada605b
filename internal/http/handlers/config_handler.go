// README: Client bootstrap: provider status and the vehicle-class catalog.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vtcride/internal/modules/pricing"
)

// MapsStatus describes whether map-backed features are usable.
type MapsStatus struct {
	Configured    bool   `json:"configured"`
	Provider      string `json:"provider"`
	CredentialEnv string `json:"credential_env,omitempty"`
	Message       string `json:"message,omitempty"`
}

type ConfigHandler struct {
	status  MapsStatus
	pricing *pricing.Service
}

func NewConfigHandler(status MapsStatus, pricingSvc *pricing.Service) *ConfigHandler {
	if !status.Configured && status.Message == "" {
		status.Message = "Configuration Required: set " + status.CredentialEnv + " to enable address search and routing."
	}
	return &ConfigHandler{status: status, pricing: pricingSvc}
}

func (h *ConfigHandler) Status(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.status)
}

type tariffResp struct {
	BaseFare    float64 `json:"base_fare"`
	PerKm       float64 `json:"per_km"`
	PerMin      float64 `json:"per_min"`
	MinimumFare float64 `json:"minimum_fare"`
	Currency    string  `json:"currency"`
}

func (h *ConfigHandler) VehicleClasses(c *gin.Context) {
	t := h.pricing.Tariff()
	writeJSON(c, http.StatusOK, gin.H{
		"default_vehicle_class_id": h.pricing.DefaultClassID(),
		"vehicle_classes":          h.pricing.Catalog(),
		"tariff": tariffResp{
			BaseFare:    t.BaseFare,
			PerKm:       t.PerKm,
			PerMin:      t.PerMin,
			MinimumFare: t.MinimumFare,
			Currency:    t.Currency,
		},
	})
}
