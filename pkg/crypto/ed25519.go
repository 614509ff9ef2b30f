package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Ed25519Signer is the KeyManager for api keys registered under the venue's
// Ed25519 scheme. Signing is deterministic by construction, matching the
// byte-identical-output guarantee of the secp256k1 path.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

var _ KeyManager = (*Ed25519Signer)(nil)

// GenerateEd25519Key creates a new random Ed25519 key pair.
func GenerateEd25519Key() (*Ed25519Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}
	return &Ed25519Signer{priv: priv, pub: pub}, nil
}

// Ed25519FromSeedHex rebuilds a key from its hex-encoded 32-byte seed, with
// or without the 0x prefix.
func Ed25519FromSeedHex(hexSeed string) (*Ed25519Signer, error) {
	if len(hexSeed) >= 2 && hexSeed[:2] != "0x" {
		hexSeed = "0x" + hexSeed
	}
	seed, err := hexutil.Decode(hexSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ed25519 seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Ed25519Signer{priv: priv, pub: priv.Public().(ed25519.PublicKey)}, nil
}

func (s *Ed25519Signer) Scheme() Scheme { return SchemeEd25519 }

func (s *Ed25519Signer) PubKeyID() string {
	return hexutil.Encode(s.pub)
}

// SeedHex returns the private seed as hex WITHOUT the 0x prefix. Keep it
// secret; never log it.
func (s *Ed25519Signer) SeedHex() string {
	return fmt.Sprintf("%x", s.priv.Seed())
}

func (s *Ed25519Signer) Sign(digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	return ed25519.Sign(s.priv, digest), nil
}

// VerifyEd25519 verifies an Ed25519 signature against the key's public
// identifier as produced by PubKeyID.
func VerifyEd25519(pubKeyID string, digest, signature []byte) bool {
	pub, err := hexutil.Decode(pubKeyID)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), digest, signature)
}
