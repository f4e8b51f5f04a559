// Package cryptox seals credential-store secrets at rest.
//
// A passphrase is stretched with argon2id into an AES-256 key. Every sealed
// value carries its own salt and GCM nonce, so a store file stays a flat list
// of records with no shared key material next to it.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/otvetbot/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of the per-value salt.
const SaltSize = 16

// Prefix marks sealed values so plaintext tokens written before a
// passphrase was configured are still readable.
const Prefix = "enc1:"

// ErrOpen is returned when a sealed value cannot be decrypted, either
// because it was tampered with or because the passphrase is wrong.
var ErrOpen = errors.New("cannot open sealed value")

// DeriveKey stretches passphrase with salt into a 32-byte key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// Sealer encrypts and decrypts short strings under one passphrase.
type Sealer struct {
	passphrase []byte
}

func NewSealer(passphrase []byte) *Sealer {
	return &Sealer{passphrase: append([]byte(nil), passphrase...)}
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	key := DeriveKey(s.passphrase, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext and returns Prefix + base64(salt || nonce || ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	aead, err := s.aead(salt)
	if err != nil {
		return "", err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	out := append(salt, nonce...)
	out = aead.Seal(out, nonce, []byte(plaintext), nil)
	return Prefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Values without Prefix are returned unchanged.
func (s *Sealer) Open(value string) (string, error) {
	encoded, ok := strings.CutPrefix(value, Prefix)
	if !ok {
		return value, nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if len(raw) < SaltSize {
		return "", fmt.Errorf("%w: value too short", ErrOpen)
	}

	aead, err := s.aead(raw[:SaltSize])
	if err != nil {
		return "", err
	}
	rest := raw[SaltSize:]
	n := aead.NonceSize()
	if len(rest) < n {
		return "", fmt.Errorf("%w: value too short", ErrOpen)
	}

	plaintext, err := aead.Open(nil, rest[:n], rest[n:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return string(plaintext), nil
}
