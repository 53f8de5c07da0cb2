package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/fleet"
	internalRedis "github.com/Omar1Ach/EcoRide-Backend-sub001/internal/redis"
)

// VehicleHandler handles HTTP requests for vehicles.
type VehicleHandler struct {
	fleet    fleet.Fleet
	vehicles internalRedis.VehicleStoreInterface
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(fleetData fleet.Fleet, vehicles internalRedis.VehicleStoreInterface) *VehicleHandler {
	return &VehicleHandler{fleet: fleetData, vehicles: vehicles}
}

// TelemetryRequest is the HTTP request body for a telemetry report.
type TelemetryRequest struct {
	BatteryPct int     `json:"battery_pct"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// VehicleResponse is the HTTP response for a vehicle snapshot.
type VehicleResponse struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Status     string  `json:"status"`
	BatteryPct int     `json:"battery_pct"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	UpdatedAt  string  `json:"updated_at"`
}

// NearbyVehicleResponse is one entry in the nearby vehicles listing.
type NearbyVehicleResponse struct {
	VehicleID  string  `json:"vehicle_id"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	DistanceKm float64 `json:"distance_km"`
}

// GetVehicle handles GET /v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.fleet.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, VehicleResponse{
		ID:         vehicle.ID,
		Code:       vehicle.Code,
		Status:     string(vehicle.Status),
		BatteryPct: vehicle.BatteryPct,
		Lat:        vehicle.Lat,
		Lng:        vehicle.Lng,
		UpdatedAt:  vehicle.UpdatedAt.Format(time.RFC3339),
	})
}

// UpdateTelemetry handles POST /v1/vehicles/:id/telemetry
func (h *VehicleHandler) UpdateTelemetry(c *gin.Context) {
	var req TelemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.BatteryPct < 0 || req.BatteryPct > 100 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "battery_pct must be between 0 and 100"})
		return
	}

	err := h.vehicles.UpdateTelemetry(c.Request.Context(), c.Param("id"), internalRedis.VehicleTelemetry{
		BatteryPct: req.BatteryPct,
		Lat:        req.Lat,
		Lng:        req.Lng,
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveTelemetry handles DELETE /v1/vehicles/:id/telemetry
//
// A vehicle going offline is dropped from the geo index so it stops
// appearing in nearby results.
func (h *VehicleHandler) RemoveTelemetry(c *gin.Context) {
	if err := h.vehicles.RemoveVehicle(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FindNearby handles GET /v1/vehicles/nearby?lat=..&lng=..&radius_km=..
func (h *VehicleHandler) FindNearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid lat"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid lng"})
		return
	}
	radiusKm := 2.0
	if raw := c.Query("radius_km"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusKm <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid radius_km"})
			return
		}
	}

	locations, err := h.vehicles.FindNearbyVehicles(c.Request.Context(), lat, lng, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]NearbyVehicleResponse, 0, len(locations))
	for _, loc := range locations {
		out = append(out, NearbyVehicleResponse{
			VehicleID:  loc.VehicleID,
			Lat:        loc.Lat,
			Lng:        loc.Lng,
			DistanceKm: loc.DistanceKm,
		})
	}

	respondJSON(c, http.StatusOK, out)
}
