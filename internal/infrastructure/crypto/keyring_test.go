package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerstats/backend/internal/domain/credential"
	"github.com/sellerstats/backend/internal/infrastructure/config"
)

const (
	secretV1 = "first-secret-0123456789abcdefghijklmnop"
	secretV2 = "second-secret-0123456789abcdefghijklmno"
)

func newTestKeyring(t *testing.T, active int, keys map[string]string) *Keyring {
	t.Helper()
	k, err := NewKeyring(config.VaultConfig{ActiveVersion: active, Keys: keys})
	require.NoError(t, err)
	return k
}

func TestKeyring_RoundTrip(t *testing.T) {
	k := newTestKeyring(t, 1, map[string]string{"1": secretV1})

	inputs := [][]byte{
		{},
		[]byte("a"),
		[]byte("eyJhbGciOiJFUzI1NiIsImtpZCI6IjIwMjUwNTIwdjEiLCJ0eXAiOiJKV1QifQ"),
		{0x00, 0xff, 0x10, 0x80},
		make([]byte, 4096),
	}

	for _, in := range inputs {
		ct, err := k.Encrypt(in)
		require.NoError(t, err)

		out, err := k.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestKeyring_EncryptUsesFreshNonce(t *testing.T) {
	k := newTestKeyring(t, 1, map[string]string{"1": secretV1})

	a, err := k.Encrypt([]byte("same"))
	require.NoError(t, err)
	b, err := k.Encrypt([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestKeyring_DecryptFailsClosed(t *testing.T) {
	k := newTestKeyring(t, 1, map[string]string{"1": secretV1})
	ct, err := k.Encrypt([]byte("token-value"))
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(ct)
	require.NoError(t, err)

	flip := func(i int) string {
		b := append([]byte(nil), raw...)
		b[i] ^= 0x01
		return base64.RawURLEncoding.EncodeToString(b)
	}

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not base64", "%%%not-base64%%%"},
		{"truncated", base64.RawURLEncoding.EncodeToString(raw[:10])},
		{"tampered body", flip(len(raw) - 1)},
		{"tampered nonce", flip(3)},
		{"relabelled version", flip(0)},
		{"unknown version", base64.RawURLEncoding.EncodeToString(append([]byte{9}, raw[1:]...))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := k.Decrypt(tt.in)
			assert.ErrorIs(t, err, credential.ErrDecryption)
			assert.Nil(t, out)
		})
	}
}

func TestKeyring_ForeignCiphertext(t *testing.T) {
	a := newTestKeyring(t, 1, map[string]string{"1": secretV1})
	b := newTestKeyring(t, 1, map[string]string{"1": secretV2})

	ct, err := a.Encrypt([]byte("token"))
	require.NoError(t, err)

	_, err = b.Decrypt(ct)
	assert.ErrorIs(t, err, credential.ErrDecryption)
}

func TestKeyring_Rotation(t *testing.T) {
	old := newTestKeyring(t, 1, map[string]string{"1": secretV1})
	ct, err := old.Encrypt([]byte("legacy"))
	require.NoError(t, err)

	rotated := newTestKeyring(t, 2, map[string]string{"1": secretV1, "2": secretV2})
	assert.Equal(t, 2, rotated.ActiveVersion())

	out, err := rotated.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("legacy"), out)

	fresh, err := rotated.Encrypt([]byte("new"))
	require.NoError(t, err)
	_, err = old.Decrypt(fresh)
	assert.ErrorIs(t, err, credential.ErrDecryption)
}

func TestNewKeyring_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.VaultConfig
		wantErr error
	}{
		{"no keys", config.VaultConfig{ActiveVersion: 1}, ErrNoKeys},
		{"bad label", config.VaultConfig{ActiveVersion: 1, Keys: map[string]string{"v1": secretV1}}, ErrInvalidVersion},
		{"label out of range", config.VaultConfig{ActiveVersion: 1, Keys: map[string]string{"256": secretV1}}, ErrInvalidVersion},
		{"short secret", config.VaultConfig{ActiveVersion: 1, Keys: map[string]string{"1": "short"}}, ErrSecretTooShort},
		{"active out of range", config.VaultConfig{ActiveVersion: 0, Keys: map[string]string{"1": secretV1}}, ErrInvalidVersion},
		{"active missing", config.VaultConfig{ActiveVersion: 2, Keys: map[string]string{"1": secretV1}}, ErrActiveKeyNotDefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKeyring(tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
