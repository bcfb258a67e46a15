package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/suilfg/marketsim/internal/domain"
)

// TradeEngine defines the engine methods the trade handler requires.
type TradeEngine interface {
	Buy(ctx context.Context, wallet, marketID string, o domain.Outcome, amount float64) domain.Result
	Sell(ctx context.Context, wallet, marketID string, o domain.Outcome, shares float64) domain.Result
}

// TradeHandler serves the buy and sell endpoints.
type TradeHandler struct {
	engine TradeEngine
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler.
func NewTradeHandler(engine TradeEngine, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{
		engine: engine,
		logger: logger,
	}
}

// buyRequest is the payload for a buy: Amount is USDC spent.
type buyRequest struct {
	Wallet   string         `json:"wallet"`
	MarketID string         `json:"marketId"`
	Outcome  domain.Outcome `json:"outcome"`
	Amount   float64        `json:"amount"`
}

// Buy spends USDC on outcome shares with price impact.
// POST /api/trade/buy
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed buy request")
		return
	}

	id, ok := identityFrom(w, req.Wallet)
	if !ok {
		return
	}

	res := h.engine.Buy(r.Context(), id, req.MarketID, req.Outcome, req.Amount)
	if res.OK {
		h.logger.InfoContext(r.Context(), "handler: buy executed",
			slog.String("wallet", id),
			slog.String("market_id", req.MarketID),
			slog.String("outcome", string(req.Outcome)),
			slog.Float64("amount", req.Amount),
		)
	}
	writeResult(w, res)
}

// sellRequest is the payload for a sell: Shares is the quantity sold.
type sellRequest struct {
	Wallet   string         `json:"wallet"`
	MarketID string         `json:"marketId"`
	Outcome  domain.Outcome `json:"outcome"`
	Shares   float64        `json:"shares"`
}

// Sell liquidates outcome shares at the current price.
// POST /api/trade/sell
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed sell request")
		return
	}

	id, ok := identityFrom(w, req.Wallet)
	if !ok {
		return
	}

	res := h.engine.Sell(r.Context(), id, req.MarketID, req.Outcome, req.Shares)
	if res.OK {
		h.logger.InfoContext(r.Context(), "handler: sell executed",
			slog.String("wallet", id),
			slog.String("market_id", req.MarketID),
			slog.String("outcome", string(req.Outcome)),
			slog.Float64("shares", req.Shares),
		)
	}
	writeResult(w, res)
}
