package domain

// Reason identifies why an action was rejected. Rejections are ordinary
// outcomes, not errors: the engine leaves state untouched and reports the
// reason so callers can surface it.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonInvalidAmount       Reason = "invalid_amount"
	ReasonInvalidOutcome      Reason = "invalid_outcome"
	ReasonInvalidCategory     Reason = "invalid_category"
	ReasonInvalidPrice        Reason = "invalid_price"
	ReasonInsufficientBalance Reason = "insufficient_balance"
	ReasonInsufficientShares  Reason = "insufficient_shares"
	ReasonUnknownMarket       Reason = "unknown_market"
	ReasonUnknownAccount      Reason = "unknown_account"
	ReasonEngineClosed        Reason = "engine_closed"
)

// Result is the outcome of an engine action.
type Result struct {
	OK     bool   `json:"ok"`
	Reason Reason `json:"reason,omitempty"`
}

// Accepted is the successful action result.
func Accepted() Result { return Result{OK: true} }

// Rejected builds a rejection result with the given reason.
func Rejected(r Reason) Result { return Result{OK: false, Reason: r} }
