// Package common holds the text encoding of ed25519 keys used by key files and the CLI.
package common

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// EncodeKey renders a public or private key as base58.
func EncodeKey(key []byte) string {
	return base58.Encode(key)
}

func DecodePrivateKey(s string) (ed25519.PrivateKey, error) {
	raw, err := decodeSized(s, ed25519.PrivateKeySize)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	return ed25519.PrivateKey(raw), nil
}

func DecodePublicKey(s string) (ed25519.PublicKey, error) {
	raw, err := decodeSized(s, ed25519.PublicKeySize)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	return ed25519.PublicKey(raw), nil
}

func decodeSized(s string, size int) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode base58: %w", err)
	}
	if len(raw) != size {
		return nil, fmt.Errorf("want %d bytes, got %d", size, len(raw))
	}
	return raw, nil
}
