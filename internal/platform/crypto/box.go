package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

const keySize = 32

var ErrCiphertextShort = errors.New("ciphertext too short")

// Box seals small secrets (TOTP seeds) with AES-256-GCM. An empty key yields
// an unconfigured box that passes values through unchanged.
type Box struct {
	aead cipher.AEAD
}

func New(key string) (*Box, error) {
	if key == "" {
		return &Box{}, nil
	}
	raw, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must decode to %d bytes, got %d", keySize, len(raw))
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Box{aead: aead}, nil
}

func (b *Box) Configured() bool {
	return b != nil && b.aead != nil
}

// Seal returns nonce||ciphertext.
func (b *Box) Seal(plain []byte) ([]byte, error) {
	if len(plain) == 0 {
		return nil, nil
	}
	if !b.Configured() {
		return plain, nil
	}
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return b.aead.Seal(nonce, nonce, plain, nil), nil
}

func (b *Box) Open(sealed []byte) ([]byte, error) {
	if len(sealed) == 0 {
		return nil, nil
	}
	if !b.Configured() {
		return sealed, nil
	}
	n := b.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextShort
	}
	return b.aead.Open(nil, sealed[:n], sealed[n:], nil)
}

func (b *Box) EncryptString(value string) ([]byte, error) {
	return b.Seal([]byte(value))
}

func (b *Box) DecryptString(value []byte) (string, error) {
	plain, err := b.Open(value)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// decodeKey accepts 64 hex chars, padded or raw base64, or a literal 32-byte string.
func decodeKey(raw string) ([]byte, error) {
	if len(raw) == 2*keySize {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded, nil
		}
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding} {
		if decoded, err := enc.DecodeString(raw); err == nil && len(decoded) == keySize {
			return decoded, nil
		}
	}
	if len(raw) == keySize {
		return []byte(raw), nil
	}
	return nil, fmt.Errorf("DATA_ENCRYPTION_KEY: unsupported encoding")
}
