// Package crypto seals marketplace credentials with AES-256-GCM under
// versioned keys so secrets can be rotated without re-encrypting at once.
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
	"strconv"

	"golang.org/x/crypto/hkdf"

	"github.com/sellerstats/backend/internal/domain/credential"
	"github.com/sellerstats/backend/internal/infrastructure/config"
)

// MinSecretLength is the shortest secret accepted for key derivation
const MinSecretLength = 32

const keySize = 32

var (
	hkdfSalt = []byte("sellerstats/vault")
	hkdfInfo = []byte("credential-aes-256-gcm")
)

var (
	ErrNoKeys              = errors.New("crypto: no vault keys configured")
	ErrInvalidVersion      = errors.New("crypto: key version must be between 1 and 255")
	ErrSecretTooShort      = errors.New("crypto: vault secret is too short")
	ErrActiveKeyNotDefined = errors.New("crypto: active key version is not configured")
)

// Compile-time interface satisfaction check
var _ credential.Cipher = (*Keyring)(nil)

// Keyring encrypts under the active key version and decrypts under any
// configured version.
//
// Envelope: base64url(version || nonce || ciphertext+tag). The version byte is
// bound as additional data, so relabelling a blob with another version fails
// authentication.
type Keyring struct {
	active byte
	aeads  map[byte]cipher.AEAD
}

// NewKeyring derives one AES-256 key per configured version
func NewKeyring(cfg config.VaultConfig) (*Keyring, error) {
	if len(cfg.Keys) == 0 {
		return nil, ErrNoKeys
	}

	k := &Keyring{aeads: make(map[byte]cipher.AEAD, len(cfg.Keys))}
	for label, secret := range cfg.Keys {
		version, err := parseVersion(label)
		if err != nil {
			return nil, err
		}
		if len(secret) < MinSecretLength {
			return nil, fmt.Errorf("%w: version %d", ErrSecretTooShort, version)
		}
		aead, err := deriveAEAD([]byte(secret))
		if err != nil {
			return nil, fmt.Errorf("derive key version %d: %w", version, err)
		}
		k.aeads[version] = aead
	}

	if cfg.ActiveVersion < 1 || cfg.ActiveVersion > 255 {
		return nil, ErrInvalidVersion
	}
	k.active = byte(cfg.ActiveVersion)
	if _, ok := k.aeads[k.active]; !ok {
		return nil, ErrActiveKeyNotDefined
	}
	return k, nil
}

// ActiveVersion returns the version new ciphertexts are sealed under
func (k *Keyring) ActiveVersion() int {
	return int(k.active)
}

// Encrypt seals plaintext under the active key
func (k *Keyring) Encrypt(plaintext []byte) (string, error) {
	aead := k.aeads[k.active]

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	header := []byte{k.active}
	out := make([]byte, 0, 1+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, header)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Decrypt opens a ciphertext produced by Encrypt under any configured
// version. Every failure is reported as credential.ErrDecryption.
func (k *Keyring) Decrypt(ciphertext string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed encoding", credential.ErrDecryption)
	}
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty ciphertext", credential.ErrDecryption)
	}

	version := data[0]
	aead, ok := k.aeads[version]
	if !ok {
		return nil, fmt.Errorf("%w: unknown key version %d", credential.ErrDecryption, version)
	}

	body := data[1:]
	if len(body) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", credential.ErrDecryption)
	}

	nonce, sealed := body[:aead.NonceSize()], body[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, data[:1])
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", credential.ErrDecryption)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

func parseVersion(label string) (byte, error) {
	v, err := strconv.Atoi(label)
	if err != nil || v < 1 || v > 255 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVersion, label)
	}
	return byte(v), nil
}

func deriveAEAD(secret []byte) (cipher.AEAD, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, hkdfSalt, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
