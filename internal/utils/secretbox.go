package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// SecretSealer encrypts credential fields before they are written to the database.
type SecretSealer struct {
	key [32]byte
}

// NewSecretSealer derives a 256-bit key from passphrase.
func NewSecretSealer(passphrase string) (*SecretSealer, error) {
	if passphrase == "" {
		return nil, errors.New("secrets passphrase cannot be empty")
	}
	return &SecretSealer{key: sha256.Sum256([]byte(passphrase))}, nil
}

// Seal encrypts plaintext and returns base64(nonce || box).
func (s *SecretSealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

// Open reverses Seal.
func (s *SecretSealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("sealed value is not base64: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed value too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("sealed value failed authentication")
	}
	return string(plain), nil
}

// SealOptional seals a nullable column value.
func (s *SecretSealer) SealOptional(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	sealed, err := s.Seal(*v)
	if err != nil {
		return nil, err
	}
	return &sealed, nil
}

// OpenOptional opens a nullable column value.
func (s *SecretSealer) OpenOptional(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	plain, err := s.Open(*v)
	if err != nil {
		return nil, err
	}
	return &plain, nil
}
