package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func generateKeypair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	pub, priv := generateKeypair(t)
	signer := NewSignerFromKey(priv)
	verifier := NewVerifierFromKey(pub, "anchor-test")

	t.Run("round-trips claims", func(t *testing.T) {
		token, err := signer.Sign(NewUserClaims("user-1", "Alice", "anchor-test", DefaultAccessTokenTTL, time.Now()))
		require.NoError(t, err)

		claims, err := verifier.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.Subject)
		require.Equal(t, "Alice", claims.DisplayName)
		require.Equal(t, "anchor-test", claims.Issuer)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		token, err := signer.Sign(NewUserClaims("user-1", "Alice", "anchor-test", time.Minute, time.Now().Add(-time.Hour)))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("rejects wrong issuer", func(t *testing.T) {
		token, err := signer.Sign(NewUserClaims("user-1", "Alice", "someone-else", DefaultAccessTokenTTL, time.Now()))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, ErrIssuer)
	})

	t.Run("rejects tokens signed by another key", func(t *testing.T) {
		_, otherPriv := generateKeypair(t)
		token, err := NewSignerFromKey(otherPriv).Sign(
			NewUserClaims("user-1", "Alice", "anchor-test", DefaultAccessTokenTTL, time.Now()))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("rejects malformed tokens", func(t *testing.T) {
		_, err := verifier.Verify("definitely.not.a-jwt")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty issuer disables enforcement", func(t *testing.T) {
		lax := NewVerifierFromKey(pub, "")
		token, err := signer.Sign(NewUserClaims("user-1", "Alice", "whatever", DefaultAccessTokenTTL, time.Now()))
		require.NoError(t, err)

		_, err = lax.Verify(token)
		require.NoError(t, err)
	})
}

func TestPEMRoundTrip(t *testing.T) {
	t.Parallel()

	pub, priv := generateKeypair(t)

	privPEM, err := MarshalPKCS8PEM(priv)
	require.NoError(t, err)
	pubPEM, err := MarshalPKIXPublicPEM(pub)
	require.NoError(t, err)

	signer, err := NewSignerEdDSA(privPEM)
	require.NoError(t, err)
	verifier, err := NewVerifierEdDSA(pubPEM, "anchor-test")
	require.NoError(t, err)

	token, err := signer.Sign(NewUserClaims("user-2", "Bob", "anchor-test", DefaultAccessTokenTTL, time.Now()))
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-2", claims.Subject)
}

func TestNewVerifierEdDSARejectsBadPEM(t *testing.T) {
	t.Parallel()

	_, err := NewVerifierEdDSA([]byte("not pem at all"), "")
	require.Error(t, err)
}
