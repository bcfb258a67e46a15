// Package wallet normalizes wallet identity strings before they are used as
// persistence keys. Both wallet families of the product are accepted: EVM
// addresses (20-byte hex, canonicalized to their EIP-55 checksum form) and
// Sui addresses (32-byte hex, canonicalized to lower case). Two spellings of
// the same wallet must always map to the same identity key, otherwise an
// identity would silently fork its persisted state.
package wallet

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/suilfg/marketsim/internal/domain"
)

const suiAddressHexLen = 64

// Normalize returns the canonical identity key for a wallet address string,
// or domain.ErrBadIdentity when the input is neither a valid EVM nor Sui
// address.
func Normalize(addr string) (string, error) {
	addr = strings.TrimSpace(addr)

	if common.IsHexAddress(addr) {
		return common.HexToAddress(addr).Hex(), nil
	}

	if id, ok := normalizeSui(addr); ok {
		return id, nil
	}

	return "", domain.ErrBadIdentity
}

func normalizeSui(addr string) (string, bool) {
	hexPart, ok := strings.CutPrefix(addr, "0x")
	if !ok {
		hexPart, ok = strings.CutPrefix(addr, "0X")
		if !ok {
			return "", false
		}
	}
	if len(hexPart) != suiAddressHexLen {
		return "", false
	}
	for _, r := range hexPart {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return "", false
		}
	}
	return "0x" + strings.ToLower(hexPart), true
}
