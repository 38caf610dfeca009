package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/toolshare/internal/security/audit"
	"github.com/yourorg/toolshare/internal/service"
)

// BorrowRequest carries the fields for borrowing a tool
type BorrowRequest struct {
	BorrowerID string `json:"borrowerId"`
	ToolID     string `json:"toolId"`
}

// TransactionsHandler serves the borrowing transaction endpoints
type TransactionsHandler struct {
	lending *service.LendingService
	audit   *audit.Logger
	logger  *slog.Logger
}

// NewTransactionsHandler creates a new transactions handler
func NewTransactionsHandler(lending *service.LendingService, auditLog *audit.Logger, logger *slog.Logger) *TransactionsHandler {
	return &TransactionsHandler{lending: lending, audit: auditLog, logger: logger}
}

// Create handles POST /api/transactions, the borrow operation
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, h.logger, "invalid request body")
		return
	}

	txn, err := h.lending.CreateTransaction(r.Context(), req.BorrowerID, req.ToolID)
	if err != nil {
		h.audit.LogBorrow(r.Context(), req.ToolID, "failed", err.Error())
		respondError(w, h.logger, err)
		return
	}
	h.audit.LogBorrow(r.Context(), req.ToolID, "success", txn.TransactionID)
	respondData(w, h.logger, http.StatusCreated, txn)
}

// Return handles POST /api/transactions/{id}/return
func (h *TransactionsHandler) Return(w http.ResponseWriter, r *http.Request) {
	transactionID := r.PathValue("id")
	message, err := h.lending.ReturnTool(r.Context(), transactionID)
	if err != nil {
		h.audit.LogReturn(r.Context(), transactionID, "failed", err.Error())
		respondError(w, h.logger, err)
		return
	}
	h.audit.LogReturn(r.Context(), transactionID, "success", "")
	respondData(w, h.logger, http.StatusOK, map[string]string{"message": message})
}

// Get handles GET /api/transactions/{id}
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.lending.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusOK, txn)
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	txns, err := h.lending.ListTransactions(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusOK, txns)
}

// Update handles PUT /api/transactions/{id}. Only the status field is
// mutable; identity and reference fields in the input are ignored.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update service.TransactionUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondBadRequest(w, h.logger, "invalid request body")
		return
	}

	txn, err := h.lending.UpdateTransaction(r.Context(), r.PathValue("id"), update)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusOK, txn)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	transactionID := r.PathValue("id")
	if err := h.lending.DeleteTransaction(r.Context(), transactionID); err != nil {
		h.audit.LogDeletion(r.Context(), "transaction", transactionID, "failed", err.Error())
		respondError(w, h.logger, err)
		return
	}
	h.audit.LogDeletion(r.Context(), "transaction", transactionID, "success", "")
	respondData(w, h.logger, http.StatusOK, map[string]string{"transactionId": transactionID})
}
