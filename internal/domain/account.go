package domain

// Account is the engine-side state for one wallet identity. Balance is a
// stable-value (USDC) amount rounded to 2 decimals on every mutation and
// never negative. LastClaimTimestamp is epoch milliseconds, nil until the
// first confirmed faucet claim.
type Account struct {
	Wallet             string     `json:"wallet"`
	Balance            float64    `json:"balance"`
	Positions          []Position `json:"positions"`
	HasClaimedToday    bool       `json:"hasClaimedToday"`
	LastClaimTimestamp *int64     `json:"lastClaimTimestamp"`
}

// Clone returns a deep copy of the account.
func (a Account) Clone() Account {
	out := a
	out.Positions = make([]Position, len(a.Positions))
	copy(out.Positions, a.Positions)
	if a.LastClaimTimestamp != nil {
		ts := *a.LastClaimTimestamp
		out.LastClaimTimestamp = &ts
	}
	return out
}

// Record converts the account to its persisted form.
func (a Account) Record() AccountRecord {
	c := a.Clone()
	return AccountRecord{
		USDCBalance:        c.Balance,
		Positions:          c.Positions,
		HasClaimedToday:    c.HasClaimedToday,
		LastClaimTimestamp: c.LastClaimTimestamp,
	}
}

// AccountRecord is the persistence layout for one identity: a single JSON
// record keyed by wallet address, no versioning. Absent or malformed data
// defaults every field.
type AccountRecord struct {
	USDCBalance        float64    `json:"usdcBalance"`
	Positions          []Position `json:"positions"`
	HasClaimedToday    bool       `json:"hasClaimedToday"`
	LastClaimTimestamp *int64     `json:"lastClaimTimestamp"`
}

// AccountFromRecord rebuilds an Account from its persisted form. A nil
// positions slice is normalised to empty so callers can append freely.
func AccountFromRecord(wallet string, rec AccountRecord) Account {
	positions := rec.Positions
	if positions == nil {
		positions = []Position{}
	}
	return Account{
		Wallet:             wallet,
		Balance:            rec.USDCBalance,
		Positions:          positions,
		HasClaimedToday:    rec.HasClaimedToday,
		LastClaimTimestamp: rec.LastClaimTimestamp,
	}
}
