package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveSealKey([]byte("install-secret"), []byte("0123456789abcdef"))

	in := record{Token: "tok", Email: "a@b.c"}
	ct, nonce, err := Seal(in, key)
	require.NoError(t, err)
	require.NotEmpty(t, ct)
	require.Len(t, nonce, 12)

	var out record
	require.NoError(t, Open(ct, nonce, key, &out))
	assert.Equal(t, in, out)
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	key := DeriveSealKey([]byte("install-secret"), NewSalt())

	ct, nonce, err := Seal(record{Token: "tok"}, key)
	require.NoError(t, err)

	ct[0] ^= 0xff
	var out record
	assert.Error(t, Open(ct, nonce, key, &out))
}

func TestOpen_WrongKey(t *testing.T) {
	keyA := DeriveSealKey([]byte("a"), NewSalt())
	keyB := DeriveSealKey([]byte("b"), NewSalt())

	ct, nonce, err := Seal(record{Token: "tok"}, keyA)
	require.NoError(t, err)

	var out record
	assert.Error(t, Open(ct, nonce, keyB, &out))
}

func TestLoadOrCreateSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")

	first, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	require.Len(t, first, 32)

	// second call returns the same value
	second, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
