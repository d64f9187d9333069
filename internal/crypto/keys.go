// Package crypto provides owner key management and ed25519 request signing
// for the DEX gateway API.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/openbookhq/flipper/internal/domain"
)

const (
	// pbkdf2Iterations is the OWASP-recommended minimum for HMAC-SHA256.
	pbkdf2Iterations = 480_000
	saltLen          = 16
	aesKeyLen        = 32
	// currentVersion is the encrypted-key JSON schema version.
	currentVersion = 1
)

// Keypair is the owner's ed25519 identity on the venue.
type Keypair struct {
	priv ed25519.PrivateKey
}

// NewKeypairFromHex builds a Keypair from a hex-encoded key. Both the
// 64-byte private key and the 32-byte seed form are accepted; an optional
// 0x prefix is stripped.
func NewKeypairFromHex(keyHex string) (Keypair, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return Keypair{}, fmt.Errorf("crypto: invalid key hex: %w", err)
	}
	switch len(raw) {
	case ed25519.PrivateKeySize:
		return Keypair{priv: ed25519.PrivateKey(raw)}, nil
	case ed25519.SeedSize:
		return Keypair{priv: ed25519.NewKeyFromSeed(raw)}, nil
	default:
		return Keypair{}, fmt.Errorf("crypto: expected %d- or %d-byte key, got %d bytes",
			ed25519.PrivateKeySize, ed25519.SeedSize, len(raw))
	}
}

// Address returns the owner identity derived from the public key.
func (k Keypair) Address() domain.AccountRef {
	pub := k.priv.Public().(ed25519.PublicKey)
	return domain.AccountRef(hex.EncodeToString(pub))
}

// Sign signs msg with the private key.
func (k Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

// Public returns the raw public key.
func (k Keypair) Public() ed25519.PublicKey {
	return k.priv.Public().(ed25519.PublicKey)
}

// encryptedKeyJSON is the on-disk format for an encrypted owner key.
type encryptedKeyJSON struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`       // base64 standard encoding
	Nonce      string `json:"nonce"`      // base64 standard encoding
	Ciphertext string `json:"ciphertext"` // base64 standard encoding
}

// KeyConfig carries the information LoadKeypair needs to resolve the owner
// key. Populate the fields from the [owner] config section.
type KeyConfig struct {
	// RawPrivateKey is the hex-encoded key (seed or full private key).
	// If non-empty, it is used directly.
	RawPrivateKey string

	// EncryptedKeyPath is the path to a JSON file produced by EncryptKey.
	EncryptedKeyPath string

	// KeyPassword decrypts the file at EncryptedKeyPath.
	KeyPassword string
}

// EncryptKey encrypts a hex-encoded owner key with a password using
// PBKDF2-HMAC-SHA256 key derivation and AES-256-GCM authenticated
// encryption, returning the JSON blob suitable for writing to disk.
func EncryptKey(keyHex, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("crypto: password must not be empty")
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid key hex: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize && len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("crypto: expected %d- or %d-byte key, got %d bytes",
			ed25519.PrivateKeySize, ed25519.SeedSize, len(raw))
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: generating salt: %w", err)
	}
	derivedKey := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, aesKeyLen, sha256.New)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generating nonce: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, raw, nil)

	out := encryptedKeyJSON{
		Version:    currentVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}
	return json.MarshalIndent(out, "", "  ")
}

// DecryptKey decrypts a JSON blob produced by EncryptKey, returning the
// hex-encoded owner key.
func DecryptKey(encryptedJSON []byte, password string) (string, error) {
	if password == "" {
		return "", errors.New("crypto: password must not be empty")
	}

	var stored encryptedKeyJSON
	if err := json.Unmarshal(encryptedJSON, &stored); err != nil {
		return "", fmt.Errorf("crypto: parsing encrypted key JSON: %w", err)
	}
	if stored.Version != currentVersion {
		return "", fmt.Errorf("crypto: unsupported version %d", stored.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(stored.Nonce)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(stored.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding ciphertext: %w", err)
	}

	derivedKey := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, aesKeyLen, sha256.New)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return "", fmt.Errorf("crypto: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("crypto: creating GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("crypto: decryption failed (wrong password?): %w", err)
	}
	return hex.EncodeToString(plaintext), nil
}

// LoadKeypair resolves the owner keypair from the provided configuration.
//
// Resolution order:
//  1. If RawPrivateKey is set, use it directly.
//  2. If EncryptedKeyPath is set, read the file and decrypt with KeyPassword.
//  3. Otherwise, return an error.
func LoadKeypair(cfg KeyConfig) (Keypair, error) {
	if cfg.RawPrivateKey != "" {
		return NewKeypairFromHex(cfg.RawPrivateKey)
	}

	if cfg.EncryptedKeyPath != "" {
		data, err := os.ReadFile(cfg.EncryptedKeyPath)
		if err != nil {
			return Keypair{}, fmt.Errorf("crypto: reading encrypted key file: %w", err)
		}
		keyHex, err := DecryptKey(data, cfg.KeyPassword)
		if err != nil {
			return Keypair{}, err
		}
		return NewKeypairFromHex(keyHex)
	}

	return Keypair{}, errors.New("crypto: no owner key source configured (set RawPrivateKey or EncryptedKeyPath)")
}
