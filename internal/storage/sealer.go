// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// SealedPrefix marks a sealed value (format: ENC:base64(nonce|ciphertext|tag)).
const SealedPrefix = "ENC:"

const (
	keyFileSize      = 64 // 32 bytes secret + 32 bytes salt
	sealerKeySize    = 32
	pbkdf2Iterations = 210000
)

var (
	// ErrInvalidSealed indicates the stored value is not in sealed format.
	ErrInvalidSealed = errors.New("invalid sealed value")
	// ErrUnsealFailed indicates the key does not match or the value was altered.
	ErrUnsealFailed = errors.New("unseal failed: authentication tag mismatch")
)

// Sealer encrypts short secrets with AES-256-GCM under a key derived from a
// per-install random secret.
type Sealer struct {
	aead cipher.AEAD
}

// LoadOrCreateSealer reads the key file at path, creating it with 0600
// permissions on first use.
func LoadOrCreateSealer(path string) (*Sealer, error) {
	material, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		material = make([]byte, keyFileSize)
		if _, err := io.ReadFull(rand.Reader, material); err != nil {
			return nil, fmt.Errorf("failed to generate key material: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, material, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write key file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	if len(material) != keyFileSize {
		return nil, fmt.Errorf("key file %s is corrupt (%d bytes)", path, len(material))
	}
	return NewSealer(material[:32], material[32:])
}

// NewSealer derives the sealing key from secret and salt.
func NewSealer(secret, salt []byte) (*Sealer, error) {
	key := pbkdf2.Key(secret, salt, pbkdf2Iterations, sealerKeySize, sha256.New)
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext and returns an ENC:-prefixed string.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, SealedPrefix) {
		return "", ErrInvalidSealed
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSealed, err)
	}
	ns := s.aead.NonceSize()
	if len(raw) < ns+s.aead.Overhead() {
		return "", ErrInvalidSealed
	}
	plain, err := s.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrUnsealFailed
	}
	return string(plain), nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
