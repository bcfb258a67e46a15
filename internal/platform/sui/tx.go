// Package sui builds opaque Move-call payloads for the SuiLFG testnet
// contract. Nothing here signs or submits anything: the payloads are handed
// to a wallet, which signs and executes them, and the caller reports the
// outcome back separately.
package sui

// Object IDs from the Testnet deployment of the suilfg_testnet_v1 package.
const (
	PackageID    = "0xcf193485031382bafd1427d2e5c9f0d18c7d4bdda096b306964c34fb8136b06a"
	FaucetPoolID = "0x6cfe5955b9a0be3a85b6df032a196a9788b4b21f47cdde5052a6d77de3deb368"

	// ClockObjectID is the shared Clock object, always at address 0x6.
	ClockObjectID = "0x6"

	moduleName = "suilfg_testnet_v1"
)

// MoveCall describes one entry-function invocation. Object arguments are
// passed by ID; the wallet resolves them when it assembles the transaction
// block.
type MoveCall struct {
	Target    string   `json:"target"`
	ObjectIDs []string `json:"objectIds"`
}

func target(fn string) string {
	return PackageID + "::" + moduleName + "::" + fn
}

// FaucetClaimTx builds the call for claiming testnet funds. The contract
// signature is faucet(pool: &mut FaucetPool, clock: &Clock, ctx: &mut TxContext);
// the clock enforces the once-per-day limit on chain.
func FaucetClaimTx() MoveCall {
	return MoveCall{
		Target:    target("faucet"),
		ObjectIDs: []string{FaucetPoolID, ClockObjectID},
	}
}

// PaymentActionTx builds a do_action_with_payment call consuming the given
// coin object.
func PaymentActionTx(coinObjectID string) MoveCall {
	return MoveCall{
		Target:    target("do_action_with_payment"),
		ObjectIDs: []string{zeroObjectID, coinObjectID},
	}
}

// FreeActionTx builds the gas-only do_action_free call.
func FreeActionTx() MoveCall {
	return MoveCall{
		Target:    target("do_action_free"),
		ObjectIDs: []string{},
	}
}

const zeroObjectID = "0x000000000000000000000000000000000000000000000000000000000000000000"
