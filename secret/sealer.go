// Package secret encrypts provider API keys at rest.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	keySize = 32

	// prefix versions the payload layout.
	prefix = "v1."
)

var ErrMalformed = errors.New("sealed value is malformed")

// Sealer seals and opens API keys with AES-256-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// DeriveKey stretches the application secret into a dedicated 32 byte key
// so API key encryption never shares key material with token signing.
func DeriveKey(appSecret string) ([]byte, error) {
	if appSecret == "" {
		return nil, errors.New("derive key: empty secret")
	}
	key := make([]byte, keySize)
	r := hkdf.New(sha256.New, []byte(appSecret), nil, []byte("apex-defense ai api key"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// New builds a sealer from a raw AES key of 16, 24 or 32 bytes.
func New(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// FromSecret derives the key from appSecret and builds a sealer.
func FromSecret(appSecret string) (*Sealer, error) {
	key, err := DeriveKey(appSecret)
	if err != nil {
		return nil, err
	}
	return New(key)
}

// Seal encrypts value and returns "v1." followed by raw base64 of nonce||ciphertext.
func (s *Sealer) Seal(value string) (string, error) {
	if s == nil || s.aead == nil {
		return "", errors.New("sealer is not configured")
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	payload := s.aead.Seal(nonce, nonce, []byte(value), nil)
	return prefix + base64.RawStdEncoding.EncodeToString(payload), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	if s == nil || s.aead == nil {
		return "", errors.New("sealer is not configured")
	}

	encoded, ok := strings.CutPrefix(sealed, prefix)
	if !ok {
		return "", ErrMalformed
	}
	payload, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	n := s.aead.NonceSize()
	if len(payload) < n+s.aead.Overhead() {
		return "", ErrMalformed
	}
	plaintext, err := s.aead.Open(nil, payload[:n], payload[n:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypt sealed value: %w", err)
	}
	return string(plaintext), nil
}
