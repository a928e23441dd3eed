package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidKey is returned when key material is not a valid P-256 key.
var ErrInvalidKey = errors.New("invalid key")

const coordinateSize = 32

// PublicKey is a P-256 identity public key.
//
// It serializes as an EC JSON Web Key, the format browser clients export
// with WebCrypto.
type PublicKey struct {
	key *ecdh.PublicKey
}

// PrivateKey is a P-256 identity private key. It never leaves the process.
type PrivateKey struct {
	key *ecdh.PrivateKey
}

type jwk struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	D   string `json:"d,omitempty"`
}

// GenerateKey creates a fresh identity key pair.
func GenerateKey() (*PrivateKey, error) {
	k, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate P-256 key: %w", err)
	}
	return &PrivateKey{key: k}, nil
}

// NewPrivateKey builds a private key from a raw 32-byte scalar.
func NewPrivateKey(d []byte) (*PrivateKey, error) {
	k, err := ecdh.P256().NewPrivateKey(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &PrivateKey{key: k}, nil
}

// Bytes returns the raw private scalar. Callers own the returned slice.
func (k *PrivateKey) Bytes() []byte {
	return k.key.Bytes()
}

// PublicKey returns the public half.
func (k *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: k.key.PublicKey()}
}

// MarshalJWK encodes the key pair as a private JWK (with "d").
func (k *PrivateKey) MarshalJWK() ([]byte, error) {
	pub := k.PublicKey().jwk()
	pub.D = base64.RawURLEncoding.EncodeToString(k.key.Bytes())
	return json.Marshal(pub)
}

// ParsePrivateJWK decodes a private JWK produced by MarshalJWK or WebCrypto.
func ParsePrivateJWK(data []byte) (*PrivateKey, error) {
	var j jwk
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if j.D == "" {
		return nil, fmt.Errorf("%w: missing private component", ErrInvalidKey)
	}
	d, err := base64.RawURLEncoding.DecodeString(j.D)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	priv, err := NewPrivateKey(d)
	if err != nil {
		return nil, err
	}
	pub, err := j.publicKey()
	if err != nil {
		return nil, err
	}
	if !priv.PublicKey().Equal(pub) {
		return nil, fmt.Errorf("%w: public component does not match private key", ErrInvalidKey)
	}
	return priv, nil
}

// ParsePublicKey parses a public JWK given as JSON text.
func ParsePublicKey(s string) (*PublicKey, error) {
	var j jwk
	if err := json.Unmarshal([]byte(s), &j); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return j.publicKey()
}

// Equal reports whether both keys are the same point.
func (p *PublicKey) Equal(other *PublicKey) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.key.Equal(other.key)
}

// Fingerprint is a short hex digest of the key, for logs and display.
func (p *PublicKey) Fingerprint() string {
	sum := sha256.Sum256(p.key.Bytes())
	return hex.EncodeToString(sum[:8])
}

// String returns the JWK JSON text of the key.
func (p *PublicKey) String() string {
	b, _ := json.Marshal(p.jwk())
	return string(b)
}

// MarshalJSON encodes the key as a JWK object.
func (p *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.jwk())
}

// UnmarshalJSON accepts a JWK object or a string holding JWK JSON. Older
// directory entries stored the key as a string.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		data = []byte(s)
	}
	var j jwk
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	parsed, err := j.publicKey()
	if err != nil {
		return err
	}
	p.key = parsed.key
	return nil
}

func (p *PublicKey) jwk() jwk {
	raw := p.key.Bytes() // 0x04 || X || Y
	return jwk{
		Kty: "EC",
		Crv: "P-256",
		X:   base64.RawURLEncoding.EncodeToString(raw[1 : 1+coordinateSize]),
		Y:   base64.RawURLEncoding.EncodeToString(raw[1+coordinateSize:]),
	}
}

func (j jwk) publicKey() (*PublicKey, error) {
	if j.Kty != "EC" || j.Crv != "P-256" {
		return nil, fmt.Errorf("%w: unsupported key type %q/%q", ErrInvalidKey, j.Kty, j.Crv)
	}
	x, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil || len(x) != coordinateSize {
		return nil, fmt.Errorf("%w: bad x coordinate", ErrInvalidKey)
	}
	y, err := base64.RawURLEncoding.DecodeString(j.Y)
	if err != nil || len(y) != coordinateSize {
		return nil, fmt.Errorf("%w: bad y coordinate", ErrInvalidKey)
	}

	raw := make([]byte, 0, 1+2*coordinateSize)
	raw = append(raw, 0x04)
	raw = append(raw, x...)
	raw = append(raw, y...)

	k, err := ecdh.P256().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &PublicKey{key: k}, nil
}
