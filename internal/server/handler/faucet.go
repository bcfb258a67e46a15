package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/suilfg/marketsim/internal/domain"
	"github.com/suilfg/marketsim/internal/platform/sui"
)

// FaucetEngine defines the engine methods the faucet handler requires.
type FaucetEngine interface {
	ConfirmFaucetClaim(ctx context.Context, wallet string, claimedAt int64) domain.Result
}

// FaucetHandler serves faucet endpoints. The handler only builds the claim
// payload and records confirmed claims; signing and submission happen in the
// caller's wallet.
type FaucetHandler struct {
	engine FaucetEngine
	logger *slog.Logger
}

// NewFaucetHandler creates a FaucetHandler.
func NewFaucetHandler(engine FaucetEngine, logger *slog.Logger) *FaucetHandler {
	return &FaucetHandler{
		engine: engine,
		logger: logger,
	}
}

// ClaimTx returns the opaque Move-call payload for a faucet claim.
// GET /api/faucet/tx
func (h *FaucetHandler) ClaimTx(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sui.FaucetClaimTx())
}

// confirmRequest reports a claim the wallet successfully executed on chain.
type confirmRequest struct {
	Wallet    string `json:"wallet"`
	ClaimedAt int64  `json:"claimedAt"`
}

// Confirm records a completed faucet claim on the account.
// POST /api/faucet/confirm
func (h *FaucetHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed confirm request")
		return
	}

	id, ok := identityFrom(w, req.Wallet)
	if !ok {
		return
	}

	res := h.engine.ConfirmFaucetClaim(r.Context(), id, req.ClaimedAt)
	if res.OK {
		h.logger.InfoContext(r.Context(), "handler: faucet claim confirmed",
			slog.String("wallet", id),
		)
	}
	writeResult(w, res)
}
