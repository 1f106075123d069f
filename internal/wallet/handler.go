package wallet

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/api"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/auth"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/logger"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
)

// Notifier is the slice of the email service the payout flow needs.
type Notifier interface {
	SendWithdrawalCompleted(ctx context.Context, to, name, amount string) error
	SendWithdrawalFailed(ctx context.Context, to, name, amount, reason string) error
}

// ContactLookup resolves the instructor behind a wallet so payout outcomes
// can be mailed. Defined here to keep this package decoupled from users.
type ContactLookup interface {
	ContactForWallet(ctx context.Context, walletID int) (email, name string, err error)
}

type Handler struct {
	service  Service
	contacts ContactLookup
	notifier Notifier
}

func NewHandler(service Service, contacts ContactLookup, notifier Notifier) *Handler {
	return &Handler{service: service, contacts: contacts, notifier: notifier}
}

type WithdrawalRequest struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required,len=3"`
}

type FailWithdrawalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// GetBalance godoc
// @Summary      Get wallet balance
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Wallet
// @Failure      404  {object}  api.ErrorResponse
// @Router       /wallet [get]
func (h *Handler) GetBalance(c *gin.Context) {
	instructorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	w, err := h.service.GetWalletBalance(c.Request.Context(), instructorID)
	if errors.Is(err, ErrWalletNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "wallet not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// ListTransactions godoc
// @Summary      Wallet transaction history
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query  int     false  "Page size"
// @Param        offset  query  int     false  "Offset"
// @Param        type    query  string  false  "Filter by type"
// @Param        status  query  string  false  "Filter by status"
// @Router       /wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	instructorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var filters TransactionFilters
	if raw := c.Query("type"); raw != "" {
		t := TransactionType(raw)
		filters.Type = &t
	}
	if raw := c.Query("status"); raw != "" {
		s := TransactionStatus(raw)
		filters.Status = &s
	}

	txs, hasMore, err := h.service.GetTransactionHistory(c.Request.Context(), instructorID, filters, limit, offset)
	if errors.Is(err, ErrWalletNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "wallet not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"has_more":     hasMore,
	})
}

// RequestWithdrawal godoc
// @Summary      Request a payout
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body  WithdrawalRequest  true  "Withdrawal amount"
// @Router       /wallet/withdrawals [post]
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	instructorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	amount, err := money.NewFromString(req.Amount, req.Currency)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	withdrawal, err := h.service.RequestWithdrawal(c.Request.Context(), instructorID, amount)
	switch {
	case errors.Is(err, ErrPendingWithdrawal):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "a withdrawal is already pending"})
		return
	case errors.Is(err, ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "insufficient wallet balance"})
		return
	case errors.Is(err, ErrWalletNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "wallet not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to request withdrawal"})
		return
	}

	c.JSON(http.StatusCreated, api.Result{
		Success: true,
		Message: "withdrawal requested",
		Data:    withdrawal,
	})
}

// CompleteWithdrawal is the payout operator's confirmation endpoint.
func (h *Handler) CompleteWithdrawal(c *gin.Context) {
	txID, err := strconv.Atoi(c.Param("transactionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid transaction id"})
		return
	}

	completed, err := h.service.CompleteWithdrawal(c.Request.Context(), txID)
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "transaction not found"})
		return
	case errors.Is(err, ErrNotPendingWithdraw):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "transaction is not a pending withdrawal"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to complete withdrawal"})
		return
	}

	if h.notifier != nil && h.contacts != nil {
		if to, name, err := h.contacts.ContactForWallet(c.Request.Context(), completed.WalletID); err != nil {
			logger.Error("Cannot resolve payout recipient", "wallet_id", completed.WalletID, "error", err)
		} else if err := h.notifier.SendWithdrawalCompleted(c.Request.Context(), to, name, completed.Amount.StringFixed(2)); err != nil {
			logger.Error("Failed to queue withdrawal email", "transaction_id", completed.ID, "error", err)
		}
	}

	c.JSON(http.StatusOK, api.Result{Success: true, Message: "withdrawal completed", Data: completed})
}

func (h *Handler) FailWithdrawal(c *gin.Context) {
	txID, err := strconv.Atoi(c.Param("transactionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid transaction id"})
		return
	}

	var req FailWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	failed, err := h.service.FailWithdrawal(c.Request.Context(), txID, req.Reason)
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "transaction not found"})
		return
	case errors.Is(err, ErrNotPendingWithdraw):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "transaction is not a pending withdrawal"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to mark withdrawal failed"})
		return
	}

	if h.notifier != nil && h.contacts != nil {
		if to, name, err := h.contacts.ContactForWallet(c.Request.Context(), failed.WalletID); err != nil {
			logger.Error("Cannot resolve payout recipient", "wallet_id", failed.WalletID, "error", err)
		} else if err := h.notifier.SendWithdrawalFailed(c.Request.Context(), to, name, failed.Amount.StringFixed(2), req.Reason); err != nil {
			logger.Error("Failed to queue withdrawal email", "transaction_id", failed.ID, "error", err)
		}
	}

	c.JSON(http.StatusOK, api.Result{Success: true, Message: "withdrawal marked failed", Data: failed})
}
