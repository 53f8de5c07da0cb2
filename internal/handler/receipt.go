package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/service"
)

// ReceiptHandler handles HTTP requests for receipts.
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// ReceiptResponse is the HTTP response for a receipt.
type ReceiptResponse struct {
	ID              string  `json:"id"`
	Number          string  `json:"number"`
	TripID          string  `json:"trip_id"`
	UserID          string  `json:"user_id"`
	VehicleCode     string  `json:"vehicle_code"`
	StartedAt       string  `json:"started_at"`
	EndedAt         string  `json:"ended_at"`
	DurationMinutes int     `json:"duration_minutes"`
	DistanceKm      float64 `json:"distance_km"`
	StartLat        float64 `json:"start_lat"`
	StartLng        float64 `json:"start_lng"`
	EndLat          float64 `json:"end_lat"`
	EndLng          float64 `json:"end_lng"`
	BaseCost        float64 `json:"base_cost"`
	TimeCost        float64 `json:"time_cost"`
	TotalCost       float64 `json:"total_cost"`
	PaymentMethod   string  `json:"payment_method"`
	PaymentDetails  string  `json:"payment_details"`
	BalanceBefore   float64 `json:"balance_before"`
	BalanceAfter    float64 `json:"balance_after"`
	CreatedAt       string  `json:"created_at"`
}

func toReceiptResponse(r *domain.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:              r.ID,
		Number:          r.Number,
		TripID:          r.TripID,
		UserID:          r.UserID,
		VehicleCode:     r.VehicleCode,
		StartedAt:       r.StartedAt.Format(time.RFC3339),
		EndedAt:         r.EndedAt.Format(time.RFC3339),
		DurationMinutes: r.DurationMinutes,
		DistanceKm:      r.DistanceKm,
		StartLat:        r.StartLat,
		StartLng:        r.StartLng,
		EndLat:          r.EndLat,
		EndLng:          r.EndLng,
		BaseCost:        r.BaseCost,
		TimeCost:        r.TimeCost,
		TotalCost:       r.TotalCost,
		PaymentMethod:   string(r.PaymentMethod),
		PaymentDetails:  r.PaymentDetails,
		BalanceBefore:   r.BalanceBefore,
		BalanceAfter:    r.BalanceAfter,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}

// GetReceipt handles GET /v1/receipts/:id
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.receiptService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toReceiptResponse(receipt))
}

// GetTripReceipt handles GET /v1/trips/:id/receipt
func (h *ReceiptHandler) GetTripReceipt(c *gin.Context) {
	receipt, err := h.receiptService.GetByTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toReceiptResponse(receipt))
}

// ListUserReceipts handles GET /v1/users/:id/receipts
func (h *ReceiptHandler) ListUserReceipts(c *gin.Context) {
	receipts, err := h.receiptService.GetByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		out = append(out, toReceiptResponse(r))
	}

	respondJSON(c, http.StatusOK, out)
}
