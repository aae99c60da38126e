package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateToken_RoundTrip(t *testing.T) {
	token, err := GenerateStateToken(42, "state-secret", time.Minute, "xia-test")
	require.NoError(t, err)

	companyID, err := ParseStateToken(token, "state-secret", "xia-test")
	require.NoError(t, err)
	assert.Equal(t, int64(42), companyID)
}

func TestStateToken_Rejects(t *testing.T) {
	token, err := GenerateStateToken(42, "state-secret", time.Minute, "xia-test")
	require.NoError(t, err)

	_, err = ParseStateToken(token, "other-secret", "xia-test")
	assert.Error(t, err, "wrong secret")

	_, err = ParseStateToken(token, "state-secret", "someone-else")
	assert.Error(t, err, "wrong issuer")

	expired, err := GenerateStateToken(42, "state-secret", -time.Minute, "xia-test")
	require.NoError(t, err)
	_, err = ParseStateToken(expired, "state-secret", "xia-test")
	assert.Error(t, err, "expired")

	_, err = ParseStateToken("1", "state-secret", "xia-test")
	assert.Error(t, err, "raw company id is not a valid state")
}

func TestSecretSealer(t *testing.T) {
	sealer, err := NewSecretSealer("passphrase")
	require.NoError(t, err)

	sealed, err := sealer.Seal("xero-refresh-token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "xero-refresh-token")

	again, err := sealer.Seal("xero-refresh-token")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "xero-refresh-token", plain)

	other, err := NewSecretSealer("different")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)

	_, err = sealer.Open("not base64!")
	assert.Error(t, err)

	none, err := sealer.SealOptional(nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = NewSecretSealer("")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.35", FormatAmount(decimal.RequireFromString("12.3456")))
	assert.Equal(t, "5.00", FormatAmount(decimal.NewFromInt(5)))
	assert.Equal(t, "", FormatOptionalAmount(nil))
}
