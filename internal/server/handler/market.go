package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/suilfg/marketsim/internal/catalog"
	"github.com/suilfg/marketsim/internal/domain"
)

// MarketEngine defines the engine methods the market handler requires.
type MarketEngine interface {
	Snapshot() domain.Snapshot
	ProposeMarket(ctx context.Context, spec catalog.ProposeSpec) (string, domain.Result)
	TransitionMarket(ctx context.Context, marketID string, to domain.MarketStatus) domain.Result
}

// MarketHandler serves market catalog HTTP endpoints.
type MarketHandler struct {
	engine MarketEngine
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(engine MarketEngine, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		engine: engine,
		logger: logger,
	}
}

// listMarketsResponse wraps the list endpoint output with metadata.
type listMarketsResponse struct {
	Markets []domain.Market `json:"markets"`
	Total   int             `json:"total"`
	AsOf    int64           `json:"asOf"`
}

// ListMarkets returns markets from the latest snapshot, optionally filtered
// by category.
// GET /api/markets?category=Crypto
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	filter := domain.FilterAll
	if v := r.URL.Query().Get("category"); v != "" {
		filter = domain.FilterCategory(v)
		if !filter.Valid() {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
	}

	snap := h.engine.Snapshot()
	markets := make([]domain.Market, 0, len(snap.Markets))
	for _, m := range snap.Markets {
		if filter.Matches(m.Category) {
			markets = append(markets, m)
		}
	}

	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets: markets,
		Total:   len(markets),
		AsOf:    snap.TakenAt,
	})
}

// GetMarket returns a single market by its ID.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	m, ok := h.engine.Snapshot().Market(id)
	if !ok {
		writeError(w, http.StatusNotFound, "market not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// proposeResponse carries the assigned ID of an accepted proposal.
type proposeResponse struct {
	OK       bool          `json:"ok"`
	Reason   domain.Reason `json:"reason,omitempty"`
	MarketID string        `json:"marketId,omitempty"`
}

// ProposeMarket submits a new community market proposal.
// POST /api/markets/propose
func (h *MarketHandler) ProposeMarket(w http.ResponseWriter, r *http.Request) {
	var spec catalog.ProposeSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, "malformed proposal")
		return
	}

	id, res := h.engine.ProposeMarket(r.Context(), spec)
	if !res.OK {
		writeResult(w, res)
		return
	}

	h.logger.InfoContext(r.Context(), "handler: market proposed",
		slog.String("market_id", id),
		slog.String("title", spec.Title),
	)
	writeJSON(w, http.StatusCreated, proposeResponse{OK: true, MarketID: id})
}

// transitionRequest names the target status for a market.
type transitionRequest struct {
	Status domain.MarketStatus `json:"status"`
}

// TransitionMarket moves a market along its lifecycle.
// POST /api/markets/{id}/status
func (h *MarketHandler) TransitionMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed transition request")
		return
	}

	writeResult(w, h.engine.TransitionMarket(r.Context(), id, req.Status))
}
