package jwt

// Verifier validates an opaque signed credential and returns the identity claims
// it carries. The WebSocket handshake consumes this interface so tests can inject
// a fake without minting real tokens.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// HMACVerifier is the production Verifier, validating HS256 tokens against a
// shared secret.
type HMACVerifier struct {
	secretKey string
}

// NewHMACVerifier returns a Verifier backed by the given signing secret.
func NewHMACVerifier(secretKey string) *HMACVerifier {
	return &HMACVerifier{secretKey: secretKey}
}

// Verify implements Verifier.
func (v *HMACVerifier) Verify(token string) (*Claims, error) {
	return ParseToken(token, v.secretKey)
}
