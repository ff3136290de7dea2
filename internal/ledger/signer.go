package ledger

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
)

// Authority holds the resolver's signing credential. It is the only identity
// the prediction program accepts for resolution instructions.
type Authority struct {
	priv ed25519.PrivateKey
}

// LoadAuthority reads a base64 ed25519 seed or full private key from the
// named environment variable.
func LoadAuthority(envVar string) (*Authority, error) {
	raw := os.Getenv(envVar)
	if raw == "" {
		return nil, fmt.Errorf("authority key env %s is empty", envVar)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("authority key in %s is not base64: %w", envVar, err)
	}
	switch len(decoded) {
	case ed25519.SeedSize:
		return &Authority{priv: ed25519.NewKeyFromSeed(decoded)}, nil
	case ed25519.PrivateKeySize:
		return &Authority{priv: ed25519.PrivateKey(decoded)}, nil
	}
	return nil, fmt.Errorf("authority key in %s has invalid length %d", envVar, len(decoded))
}

// NewAuthority wraps an existing private key. Used by tests.
func NewAuthority(priv ed25519.PrivateKey) *Authority {
	return &Authority{priv: priv}
}

func (a *Authority) Sign(message []byte) []byte {
	return ed25519.Sign(a.priv, message)
}

func (a *Authority) PublicKey() []byte {
	return a.priv.Public().(ed25519.PublicKey)
}

// Address is the hex form of the authority public key, as used on chain.
func (a *Authority) Address() string {
	return hex.EncodeToString(a.PublicKey())
}
