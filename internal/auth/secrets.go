package auth

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const secretBoxInfo = "brainiac totp secret sealing v1"

// ErrSealedSecret is returned when a sealed secret cannot be opened.
var ErrSealedSecret = errors.New("sealed secret is corrupt or was sealed with another key")

// SecretBox seals TOTP secrets at rest with XChaCha20-Poly1305. The key is
// derived from the server key with HKDF so it never equals the token key.
type SecretBox struct {
	aead cipher.AEAD
}

// NewSecretBox derives the sealing key from the 32-byte server key.
func NewSecretBox(serverKey []byte) (*SecretBox, error) {
	if len(serverKey) != keyBytesSize {
		return nil, fmt.Errorf("server key must be %d bytes, got %d", keyBytesSize, len(serverKey))
	}

	sealKey := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, serverKey, nil, []byte(secretBoxInfo)), sealKey); err != nil {
		return nil, fmt.Errorf("derive sealing key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(sealKey)
	if err != nil {
		return nil, fmt.Errorf("create aead: %w", err)
	}
	return &SecretBox{aead: aead}, nil
}

// Seal encrypts plaintext bound to associated (the owner's email). The random
// nonce is prepended to the ciphertext.
func (b *SecretBox) Seal(plaintext, associated []byte) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize(), b.aead.NonceSize()+len(plaintext)+b.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return b.aead.Seal(nonce, nonce, plaintext, associated), nil
}

// Open reverses Seal.
func (b *SecretBox) Open(sealed, associated []byte) ([]byte, error) {
	if len(sealed) < b.aead.NonceSize()+b.aead.Overhead() {
		return nil, ErrSealedSecret
	}
	nonce, ciphertext := sealed[:b.aead.NonceSize()], sealed[b.aead.NonceSize():]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, associated)
	if err != nil {
		return nil, ErrSealedSecret
	}
	return plaintext, nil
}
