package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/suilfg/marketsim/internal/domain"
)

// PortfolioEngine defines the engine methods the portfolio handler requires.
type PortfolioEngine interface {
	Snapshot() domain.Snapshot
	Bind(ctx context.Context, wallet string) (domain.Account, domain.Result)
}

// PortfolioHandler serves account state endpoints.
type PortfolioHandler struct {
	engine PortfolioEngine
	logger *slog.Logger
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(engine PortfolioEngine, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		engine: engine,
		logger: logger,
	}
}

// GetPortfolio returns the live account state for a wallet. The wallet must
// have been bound first.
// GET /api/portfolio?wallet=0x...
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(w, r.URL.Query().Get("wallet"))
	if !ok {
		return
	}

	acct, ok := h.engine.Snapshot().Account(id)
	if !ok {
		writeError(w, http.StatusNotFound, "wallet not bound")
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// bindRequest carries the wallet address to attach.
type bindRequest struct {
	Wallet string `json:"wallet"`
}

// Bind attaches a wallet identity, hydrating its account from the persisted
// record or default seed values, and returns the resulting account.
// POST /api/portfolio/bind
func (h *PortfolioHandler) Bind(w http.ResponseWriter, r *http.Request) {
	var req bindRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed bind request")
		return
	}

	id, ok := identityFrom(w, req.Wallet)
	if !ok {
		return
	}

	acct, res := h.engine.Bind(r.Context(), id)
	if !res.OK {
		writeResult(w, res)
		return
	}

	h.logger.InfoContext(r.Context(), "handler: wallet bound",
		slog.String("wallet", id),
	)
	writeJSON(w, http.StatusOK, acct)
}
