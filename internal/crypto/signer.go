package crypto

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// RequestSigner produces the authentication headers the gateway expects on
// private endpoints. The signature is ed25519 over
// "timestamp|METHOD|path|body".
type RequestSigner struct {
	keypair Keypair
}

// NewRequestSigner wraps a Keypair for request signing.
func NewRequestSigner(kp Keypair) *RequestSigner {
	return &RequestSigner{keypair: kp}
}

// Address returns the signing identity.
func (s *RequestSigner) Address() string {
	return s.keypair.Address().String()
}

// Headers returns the OB-PUBKEY / OB-TIMESTAMP / OB-SIGNATURE header set for
// a request with the given unix timestamp, method, path, and raw body.
func (s *RequestSigner) Headers(timestamp int64, method, path, body string) map[string]string {
	msg := signingMessage(timestamp, method, path, body)
	sig := s.keypair.Sign([]byte(msg))
	return map[string]string{
		"OB-PUBKEY":    s.Address(),
		"OB-TIMESTAMP": fmt.Sprintf("%d", timestamp),
		"OB-SIGNATURE": base64.StdEncoding.EncodeToString(sig),
	}
}

// Verify checks a signature produced by Headers against pub. Exposed for
// tests and for gateway-side tooling.
func Verify(pub ed25519.PublicKey, timestamp int64, method, path, body, sigB64 string) bool {
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, []byte(signingMessage(timestamp, method, path, body)), sig)
}

func signingMessage(timestamp int64, method, path, body string) string {
	return fmt.Sprintf("%d|%s|%s|%s", timestamp, method, path, body)
}
