// Package identity keeps the local user's key pair. The private scalar lives
// in a memguard enclave and is only decrypted for the duration of a callback.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/session"
)

var _ session.LocalIdentity = (*Identity)(nil)

// ErrUsernameMismatch is returned when a key file belongs to someone else.
var ErrUsernameMismatch = errors.New("key file belongs to another user")

type keyFile struct {
	Username   string          `json:"username"`
	PrivateKey json.RawMessage `json:"privateKey"`
}

// Identity is the local key pair bound to a username.
type Identity struct {
	username  string
	publicKey *crypto.PublicKey
	enclave   *memguard.Enclave
}

// Generate creates a fresh identity for username.
func Generate(username string) (*Identity, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return fromPrivateKey(username, priv), nil
}

func fromPrivateKey(username string, priv *crypto.PrivateKey) *Identity {
	// NewEnclave wipes the scalar copy it is given.
	return &Identity{
		username:  username,
		publicKey: priv.PublicKey(),
		enclave:   memguard.NewEnclave(priv.Bytes()),
	}
}

// Load reads an identity saved with Save.
func Load(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	defer memguard.WipeBytes(data)

	var f keyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode key file: %w", err)
	}
	defer memguard.WipeBytes(f.PrivateKey)

	priv, err := crypto.ParsePrivateJWK(f.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return fromPrivateKey(f.Username, priv), nil
}

// LoadOrGenerate loads the identity at path, or generates one for username
// and saves it there when the file does not exist yet.
func LoadOrGenerate(path, username string) (*Identity, bool, error) {
	id, err := Load(path)
	switch {
	case err == nil:
		if username != "" && id.username != username {
			return nil, false, fmt.Errorf("%w: %s holds %q", ErrUsernameMismatch, path, id.username)
		}
		return id, false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, false, err
	}

	if username == "" {
		return nil, false, errors.New("username is required to create a new identity")
	}
	id, err = Generate(username)
	if err != nil {
		return nil, false, err
	}
	if err := id.Save(path); err != nil {
		return nil, false, err
	}
	return id, true, nil
}

// Save writes the key pair as a private JWK readable only by the owner.
func (i *Identity) Save(path string) error {
	var jwk []byte
	err := i.WithPrivateKey(func(priv *crypto.PrivateKey) error {
		var err error
		jwk, err = priv.MarshalJWK()
		return err
	})
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(jwk)

	data, err := json.MarshalIndent(keyFile{Username: i.username, PrivateKey: jwk}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode key file: %w", err)
	}
	defer memguard.WipeBytes(data)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create key directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// Username returns the identity's name.
func (i *Identity) Username() string {
	return i.username
}

// PublicKey returns the public half, safe to publish.
func (i *Identity) PublicKey() *crypto.PublicKey {
	return i.publicKey
}

// WithPrivateKey decrypts the private key for the duration of fn.
func (i *Identity) WithPrivateKey(fn func(*crypto.PrivateKey) error) error {
	buf, err := i.enclave.Open()
	if err != nil {
		return fmt.Errorf("failed to open key enclave: %w", err)
	}
	defer buf.Destroy()

	priv, err := crypto.NewPrivateKey(buf.Bytes())
	if err != nil {
		return err
	}
	return fn(priv)
}
