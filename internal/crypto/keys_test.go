package crypto

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 8032 test vector seed.
const seedHex = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"

func TestNewKeypairFromHex_Seed(t *testing.T) {
	kp, err := NewKeypairFromHex(seedHex)
	require.NoError(t, err)
	assert.Len(t, kp.Public(), 32)
	assert.Equal(t, hex.EncodeToString(kp.Public()), kp.Address().String())
}

func TestNewKeypairFromHex_FullKeyAndPrefix(t *testing.T) {
	kp, err := NewKeypairFromHex(seedHex)
	require.NoError(t, err)

	// The 64-byte form is seed || pubkey; both forms must yield the same
	// identity, with or without a 0x prefix.
	full := seedHex + hex.EncodeToString(kp.Public())
	kp2, err := NewKeypairFromHex("0x" + full)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), kp2.Address())
}

func TestNewKeypairFromHex_Invalid(t *testing.T) {
	_, err := NewKeypairFromHex("zz")
	assert.Error(t, err)

	_, err = NewKeypairFromHex("abcd")
	assert.Error(t, err, "wrong length")
}

func TestEncryptDecryptKeyRoundTrip(t *testing.T) {
	blob, err := EncryptKey(seedHex, "hunter2")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(blob), `"version": 1`))

	got, err := DecryptKey(blob, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, seedHex, got)
}

func TestDecryptKey_WrongPassword(t *testing.T) {
	blob, err := EncryptKey(seedHex, "hunter2")
	require.NoError(t, err)

	_, err = DecryptKey(blob, "wrong")
	assert.Error(t, err)
}

func TestEncryptKey_Validation(t *testing.T) {
	_, err := EncryptKey(seedHex, "")
	assert.Error(t, err, "empty password")

	_, err = EncryptKey("abcd", "hunter2")
	assert.Error(t, err, "wrong key length")
}

func TestLoadKeypair_RawKeyWins(t *testing.T) {
	kp, err := LoadKeypair(KeyConfig{RawPrivateKey: seedHex, EncryptedKeyPath: "/nonexistent"})
	require.NoError(t, err)
	assert.NotEmpty(t, kp.Address())
}

func TestLoadKeypair_EncryptedFile(t *testing.T) {
	blob, err := EncryptKey(seedHex, "hunter2")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "owner.key.json")
	require.NoError(t, os.WriteFile(path, blob, 0o600))

	kp, err := LoadKeypair(KeyConfig{EncryptedKeyPath: path, KeyPassword: "hunter2"})
	require.NoError(t, err)

	want, err := NewKeypairFromHex(seedHex)
	require.NoError(t, err)
	assert.Equal(t, want.Address(), kp.Address())
}

func TestLoadKeypair_NoSource(t *testing.T) {
	_, err := LoadKeypair(KeyConfig{})
	assert.Error(t, err)
}
