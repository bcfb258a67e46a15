package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suilfg/marketsim/internal/domain"
)

func TestNormalizeEVMChecksums(t *testing.T) {
	got, err := Normalize("0x52908400098527886e0f7030069857d2e4169ee7")
	require.NoError(t, err)
	assert.Equal(t, "0x52908400098527886E0F7030069857D2E4169EE7", got)

	// Mixed-case spelling of the same address maps to the same key.
	again, err := Normalize("0x52908400098527886E0f7030069857D2e4169EE7")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestNormalizeSuiLowercases(t *testing.T) {
	upper := "0x" + strings.Repeat("AB", 32)
	got, err := Normalize(upper)
	require.NoError(t, err)
	assert.Equal(t, "0x"+strings.Repeat("ab", 32), got)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, in := range []string{
		"",
		"not-an-address",
		"0x1234",                          // too short for either family
		"0x" + strings.Repeat("g", 64),    // bad hex
		"0x" + strings.Repeat("ab", 31),   // 62 hex chars
		strings.Repeat("ab", 32),          // missing 0x prefix
	} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, domain.ErrBadIdentity, "input %q", in)
	}
}
