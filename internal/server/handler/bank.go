package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/suilfg/marketsim/internal/domain"
)

// BankEngine defines the engine methods the bank handler requires.
type BankEngine interface {
	Deposit(ctx context.Context, wallet string, amount float64) domain.Result
	Withdraw(ctx context.Context, wallet string, amount float64) domain.Result
}

// BankHandler serves the deposit and withdraw endpoints.
type BankHandler struct {
	engine BankEngine
	logger *slog.Logger
}

// NewBankHandler creates a BankHandler.
func NewBankHandler(engine BankEngine, logger *slog.Logger) *BankHandler {
	return &BankHandler{
		engine: engine,
		logger: logger,
	}
}

// bankRequest is the shared payload for deposits and withdrawals.
type bankRequest struct {
	Wallet string  `json:"wallet"`
	Amount float64 `json:"amount"`
}

// Deposit credits USDC to a bound account.
// POST /api/bank/deposit
func (h *BankHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "deposit", h.engine.Deposit)
}

// Withdraw debits USDC from a bound account, never below zero.
// POST /api/bank/withdraw
func (h *BankHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "withdraw", h.engine.Withdraw)
}

func (h *BankHandler) apply(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(ctx context.Context, wallet string, amount float64) domain.Result,
) {
	var req bankRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed "+op+" request")
		return
	}

	id, ok := identityFrom(w, req.Wallet)
	if !ok {
		return
	}

	res := fn(r.Context(), id, req.Amount)
	if res.OK {
		h.logger.InfoContext(r.Context(), "handler: "+op+" executed",
			slog.String("wallet", id),
			slog.Float64("amount", req.Amount),
		)
	}
	writeResult(w, res)
}
