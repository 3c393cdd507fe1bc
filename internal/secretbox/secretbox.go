// Package secretbox provides authenticated encryption for provider API
// keys at rest. Every secret is sealed with AES-256-GCM under one
// process-wide key injected at construction time, and stored as a
// self-describing hex envelope "iv:tag:ciphertext".
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// KeySize is the required symmetric key length in bytes.
const KeySize = 32

// ivSize matches the envelope IV length in bytes.
const ivSize = 16

// envelopeDelimiter separates the IV, tag, and ciphertext fields.
const envelopeDelimiter = ":"

// ErrMalformedEnvelope indicates a ciphertext envelope that does not split
// into exactly three hex-encoded parts.
var ErrMalformedEnvelope = errors.New("secretbox: malformed envelope")

// ErrTampered indicates the authentication tag did not verify; the
// ciphertext was corrupted or tampered with.
var ErrTampered = errors.New("secretbox: ciphertext tampered or corrupt")

// Codec seals and opens secret envelopes with a fixed symmetric key.
type Codec struct {
	aead cipher.AEAD
}

// New constructs a Codec from a raw 32-byte key.
func New(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("secretbox: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secretbox: create cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("secretbox: create GCM: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// NewFromHex constructs a Codec from a hex-encoded 32-byte key.
func NewFromHex(encodedKey string) (*Codec, error) {
	trimmed := strings.TrimSpace(encodedKey)
	if trimmed == "" {
		return nil, errors.New("secretbox: encryption key is empty")
	}
	key, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("secretbox: decode hex key: %w", err)
	}
	return New(key)
}

// GenerateKey returns a fresh random key as a hex string.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("secretbox: generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// Encrypt seals the plaintext and returns the envelope. A fresh random IV
// is drawn on every call; reusing an IV under the same key breaks GCM.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("secretbox: generate iv: %w", err)
	}

	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	tagStart := len(sealed) - c.aead.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	return hex.EncodeToString(iv) +
		envelopeDelimiter +
		hex.EncodeToString(tag) +
		envelopeDelimiter +
		hex.EncodeToString(ciphertext), nil
}

// Decrypt opens an envelope produced by Encrypt. It returns
// ErrMalformedEnvelope when the envelope shape is wrong and ErrTampered
// when the authentication tag does not verify.
func (c *Codec) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, envelopeDelimiter)
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 parts, got %d", ErrMalformedEnvelope, len(parts))
	}

	iv, errIV := hex.DecodeString(parts[0])
	if errIV != nil || len(iv) != ivSize {
		return "", fmt.Errorf("%w: bad iv", ErrMalformedEnvelope)
	}
	tag, errTag := hex.DecodeString(parts[1])
	if errTag != nil || len(tag) != c.aead.Overhead() {
		return "", fmt.Errorf("%w: bad tag", ErrMalformedEnvelope)
	}
	ciphertext, errCT := hex.DecodeString(parts[2])
	if errCT != nil {
		return "", fmt.Errorf("%w: bad ciphertext", ErrMalformedEnvelope)
	}

	sealed := append(ciphertext, tag...)
	plaintext, errOpen := c.aead.Open(nil, iv, sealed, nil)
	if errOpen != nil {
		return "", ErrTampered
	}
	return string(plaintext), nil
}
