// Package cryptox handles at-rest protection of the locally persisted
// credential record. The record is sealed with AES-GCM under a key derived
// from a per-install random secret, so a copied database file is useless
// without the companion secret file.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/eduterm/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	secretSize = 32
	saltSize   = 16
	keySize    = 32
)

// DeriveSealKey derives a 32-byte AES key from the install secret and salt
// using argon2id.
func DeriveSealKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, keySize)
}

// LoadOrCreateSecret reads the install secret from path, creating it with
// a fresh random value (mode 0600) on first use.
func LoadOrCreateSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil && len(secret) == secretSize {
		return secret, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read secret: %w", err)
	}

	secret = common.GenerateRandByteArray(secretSize)
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write secret: %w", err)
	}
	return secret, nil
}

// Seal serializes v to JSON and encrypts it using AES-GCM.
//
// A new random 12-byte nonce is generated for each call; ciphertext and
// nonce are returned separately so the caller can store them side by side.
func Seal(v any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Open decrypts ciphertext produced by Seal and unmarshals the resulting
// JSON into v. The key and nonce must match the ones used for sealing;
// any tampering makes the GCM open fail.
func Open(ciphertext, nonce, key []byte, v any) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}

// NewSalt returns a fresh random salt for DeriveSealKey.
func NewSalt() []byte {
	return common.GenerateRandByteArray(saltSize)
}
