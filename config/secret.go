package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

// ErrDecrypt is returned when an encrypted setting cannot be opened with the configured key.
var ErrDecrypt = errors.New("ensure the setting was encrypted with the configured encryption key")

// ParseBytes parses dash separated hex bytes, e.g. "0A-FF-10".
func ParseBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty byte string")
	}
	parts := strings.Split(s, "-")
	out := make([]byte, len(parts))
	for i, p := range parts {
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q at position %d: %w", p, i, err)
		}
		out[i] = byte(b)
	}
	return out, nil
}

// FormatBytes renders bytes as dash separated upper-case hex.
func FormatBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, "-")
}

// NewKey generates a random encryption key in settings format.
func NewKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return FormatBytes(key), nil
}

// Encrypt seals plain with key and returns it in settings format.
func Encrypt(plain, key string) (string, error) {
	k, err := parseKey(key)
	if err != nil {
		return "", err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, k)
	return FormatBytes(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func Decrypt(encrypted, key string) (string, error) {
	k, err := parseKey(key)
	if err != nil {
		return "", err
	}

	data, err := ParseBytes(encrypted)
	if err != nil {
		return "", err
	}
	if len(data) < nonceSize+secretbox.Overhead {
		return "", ErrDecrypt
	}

	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])

	plain, ok := secretbox.Open(nil, data[nonceSize:], &nonce, k)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

func parseKey(key string) (*[keySize]byte, error) {
	raw, err := ParseBytes(key)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("invalid encryption key: want %d bytes, got %d", keySize, len(raw))
	}
	var k [keySize]byte
	copy(k[:], raw)
	return &k, nil
}
