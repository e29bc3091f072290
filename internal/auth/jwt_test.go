package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v, err := NewVerifier("s3cret", "unload")
	require.NoError(t, err)

	tok, err := v.Issue("user-42", time.Hour)
	require.NoError(t, err)

	sub, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", sub)
}

func TestVerifier_Rejects(t *testing.T) {
	v, err := NewVerifier("s3cret", "unload")
	require.NoError(t, err)
	other, err := NewVerifier("different", "unload")
	require.NoError(t, err)

	expired, err := v.Issue("u", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := other.Issue("u", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":   expired,
		"wrong key": wrongKey,
		"alg none":  none,
		"garbage":   "not.a.token",
	} {
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestExtractToken(t *testing.T) {
	tok, err := ExtractToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = ExtractToken("bearer  xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	_, err = ExtractToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = ExtractToken("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ExtractToken("Bearer ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier("", "")
	assert.Error(t, err)
}
