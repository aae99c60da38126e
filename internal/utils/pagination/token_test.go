package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	date := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)

	token := EncodeToken(date, 1234)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedDate, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, date, decodedDate, "Date should match after decode")
	assert.Equal(t, int64(1234), decodedID, "ID should match after decode")

	// Time of day is dropped: rows are keyed by calendar date.
	withTime := time.Date(2025, 5, 15, 13, 45, 0, 0, time.UTC)
	decodedDate, _, err = DecodeToken(EncodeToken(withTime, 1))
	assert.NoError(t, err)
	assert.Equal(t, date, decodedDate)
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	noSeparator := base64.URLEncoding.EncodeToString([]byte("2025-05-15"))
	_, _, err = DecodeToken(noSeparator)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	badDate := base64.URLEncoding.EncodeToString([]byte("notadate|12"))
	_, _, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "date parse")

	badID := base64.URLEncoding.EncodeToString([]byte("2025-05-15|abc"))
	_, _, err = DecodeToken(badID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "id parse")
}
