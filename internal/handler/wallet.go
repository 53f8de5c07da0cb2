package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/service"
)

// WalletHandler handles HTTP requests for wallets.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// TopUpRequest is the HTTP request body for a wallet top-up.
type TopUpRequest struct {
	Amount float64 `json:"amount"`
}

// BalanceResponse is the HTTP response for a wallet balance.
type BalanceResponse struct {
	UserID  string  `json:"user_id"`
	Balance float64 `json:"balance"`
}

// TransactionResponse is the HTTP response for a wallet ledger entry.
type TransactionResponse struct {
	ID            string  `json:"id"`
	TripID        string  `json:"trip_id,omitempty"`
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	Method        string  `json:"method"`
	MethodDetails string  `json:"method_details"`
	BalanceBefore float64 `json:"balance_before"`
	BalanceAfter  float64 `json:"balance_after"`
	CreatedAt     string  `json:"created_at"`
}

func toTransactionResponse(tx *domain.WalletTransaction) TransactionResponse {
	return TransactionResponse{
		ID:            tx.ID,
		TripID:        tx.TripID,
		Amount:        tx.Amount,
		Type:          string(tx.Type),
		Method:        string(tx.Method),
		MethodDetails: tx.MethodDetails,
		BalanceBefore: tx.BalanceBefore,
		BalanceAfter:  tx.BalanceAfter,
		CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
	}
}

// GetBalance handles GET /v1/users/:id/wallet
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := c.Param("id")

	balance, err := h.walletService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
}

// TopUp handles POST /v1/users/:id/wallet/topup
func (h *WalletHandler) TopUp(c *gin.Context) {
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	entry, err := h.walletService.TopUp(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTransactionResponse(entry))
}

// ListTransactions handles GET /v1/users/:id/wallet/transactions
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	transactions, err := h.walletService.GetTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, toTransactionResponse(tx))
	}

	respondJSON(c, http.StatusOK, out)
}
