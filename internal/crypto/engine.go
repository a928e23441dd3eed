package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/hkdf"
)

// ErrDecrypt is returned when a ciphertext does not authenticate under the
// given key, or when its encoding is invalid.
var ErrDecrypt = errors.New("decryption failed")

const (
	// KeySize is the AES-256-GCM key length in bytes.
	KeySize = 32
	// IVSize is the AES-GCM nonce length in bytes.
	IVSize = 12
)

var hkdfInfo = []byte("gophchat/v1 aes-256-gcm session key")

// KDF selects how the ECDH output becomes an AES key.
type KDF string

const (
	// KDFHKDF expands the agreed secret with HKDF-SHA256.
	KDFHKDF KDF = "hkdf"
	// KDFWebCrypto uses the raw x-coordinate as the key, like
	// SubtleCrypto.deriveKey(ECDH -> AES-GCM-256) does.
	KDFWebCrypto KDF = "webcrypto"
)

// SharedKey is a symmetric session key for one conversation pair.
type SharedKey [KeySize]byte

// Wipe zeroes the key in place.
func (k *SharedKey) Wipe() {
	memguard.WipeBytes(k[:])
}

// Sealed is an encrypted payload in transport encoding (standard base64).
type Sealed struct {
	IV         string
	CipherText string
}

// Engine performs key agreement and authenticated encryption. It holds no
// per-conversation state and is safe for concurrent use.
type Engine struct {
	kdf  KDF
	rand io.Reader
}

// NewEngine creates an Engine using the given KDF.
func NewEngine(kdf KDF) (*Engine, error) {
	switch kdf {
	case KDFHKDF, KDFWebCrypto:
	case "":
		kdf = KDFHKDF
	default:
		return nil, fmt.Errorf("unknown kdf %q", kdf)
	}
	return &Engine{kdf: kdf, rand: rand.Reader}, nil
}

// DeriveSharedKey runs ECDH between local and peer and derives the AES key.
// Both sides of a pair compute the same key.
func (e *Engine) DeriveSharedKey(local *PrivateKey, peer *PublicKey) (SharedKey, error) {
	var key SharedKey
	if local == nil || peer == nil {
		return key, ErrInvalidKey
	}

	secret, err := local.key.ECDH(peer.key)
	if err != nil {
		return key, fmt.Errorf("ecdh: %w", err)
	}
	defer memguard.WipeBytes(secret)

	switch e.kdf {
	case KDFWebCrypto:
		copy(key[:], secret)
	default:
		r := hkdf.New(sha256.New, secret, nil, hkdfInfo)
		if _, err := io.ReadFull(r, key[:]); err != nil {
			return key, fmt.Errorf("hkdf: %w", err)
		}
	}
	return key, nil
}

// Encrypt seals plaintext under key with a fresh random IV.
func (e *Engine) Encrypt(plaintext string, key SharedKey) (Sealed, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return Sealed{}, err
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(e.rand, iv); err != nil {
		return Sealed{}, fmt.Errorf("failed to generate iv: %w", err)
	}

	ct := aead.Seal(nil, iv, []byte(plaintext), nil)
	return Sealed{
		IV:         base64.StdEncoding.EncodeToString(iv),
		CipherText: base64.StdEncoding.EncodeToString(ct),
	}, nil
}

// Decrypt opens a payload produced by Encrypt. Any failure yields ErrDecrypt
// and no plaintext.
func (e *Engine) Decrypt(iv, cipherText string, key SharedKey) (string, error) {
	rawIV, err := base64.StdEncoding.DecodeString(iv)
	if err != nil || len(rawIV) != IVSize {
		return "", fmt.Errorf("%w: malformed iv", ErrDecrypt)
	}
	ct, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", fmt.Errorf("%w: malformed ciphertext", ErrDecrypt)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}
	if len(ct) < aead.Overhead() {
		return "", fmt.Errorf("%w: truncated ciphertext", ErrDecrypt)
	}

	pt, err := aead.Open(nil, rawIV, ct, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(pt), nil
}

func newAEAD(key SharedKey) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	return cipher.NewGCM(block)
}
