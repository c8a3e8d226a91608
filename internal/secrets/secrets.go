// Package secrets provides transparent column encryption for credentials that
// must never be stored in plaintext, such as BuzzerBeater access keys.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql/driver"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var gcm cipher.AEAD

// Init derives the column cipher from the configured key. Must be called once
// at startup before any encrypted column is read or written.
func Init(key string) error {
	if key == "" {
		return errors.New("secrets: encryption key is empty")
	}
	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	gcm, err = cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	return nil
}

// Encrypt seals the plaintext and returns a base64 token with the nonce
// prepended.
func Encrypt(plaintext string) (string, error) {
	if gcm == nil {
		return "", errors.New("secrets: not initialized")
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secrets: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func Decrypt(token string) (string, error) {
	if gcm == nil {
		return "", errors.New("secrets: not initialized")
	}
	sealed, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("secrets: %w", err)
	}
	if len(sealed) < gcm.NonceSize() {
		return "", errors.New("secrets: token too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("secrets: %w", err)
	}
	return string(plain), nil
}

// String is a string column encrypted at rest. The Go value always holds the
// plaintext; encryption happens on the database boundary.
type String string

// Value implements driver.Valuer, encrypting on write.
func (s String) Value() (driver.Value, error) {
	if s == "" {
		return "", nil
	}
	return Encrypt(string(s))
}

// Scan implements sql.Scanner, decrypting on read.
func (s *String) Scan(src interface{}) error {
	var token string
	switch v := src.(type) {
	case nil:
		*s = ""
		return nil
	case string:
		token = v
	case []byte:
		token = string(v)
	default:
		return fmt.Errorf("secrets: cannot scan %T", src)
	}
	if token == "" {
		*s = ""
		return nil
	}
	plain, err := Decrypt(token)
	if err != nil {
		return err
	}
	*s = String(plain)
	return nil
}
