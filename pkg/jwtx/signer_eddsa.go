package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSASigner signs access tokens with an Ed25519 key. In production signing
// happens at the identity provider; this signer exists for tests and local
// tooling that need to mint valid tokens.
type EdDSASigner struct {
	key ed25519.PrivateKey
}

// NewSignerEdDSA loads an Ed25519 private key from PEM bytes. The key must be
// PKCS8-encoded.
func NewSignerEdDSA(pemKey []byte) (*EdDSASigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}

	return &EdDSASigner{key: key}, nil
}

// NewSignerFromKey wraps a raw Ed25519 private key, skipping PEM decoding.
func NewSignerFromKey(key ed25519.PrivateKey) *EdDSASigner {
	return &EdDSASigner{key: key}
}

// Sign turns claims into a signed compact JWT.
func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	if len(s.key) != ed25519.PrivateKeySize {
		return "", errors.New("jwtx: invalid Ed25519 private key size")
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.key)
}

// MarshalPKCS8PEM encodes an Ed25519 private key as PKCS8 PEM, the format
// NewSignerEdDSA and deployment config expect.
func MarshalPKCS8PEM(key ed25519.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("jwtx: marshal PKCS8: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// MarshalPKIXPublicPEM encodes an Ed25519 public key as PKIX PEM, the format
// NewVerifierEdDSA expects.
func MarshalPKIXPublicPEM(key ed25519.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, fmt.Errorf("jwtx: marshal PKIX: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
