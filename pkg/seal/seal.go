package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var ErrOpen = errors.New("sealed value could not be opened")

type Sealer struct {
	key [keySize]byte
}

// New derives the box key from secret: a 64-char hex string is used as-is,
// anything else is hashed with SHA-256.
func New(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("seal key is empty")
	}

	s := &Sealer{}
	if raw, err := hex.DecodeString(secret); err == nil && len(raw) == keySize {
		copy(s.key[:], raw)
		return s, nil
	}

	s.key = sha256.Sum256([]byte(secret))
	return s, nil
}

func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed value: %w", err)
	}
	if len(box) < nonceSize+secretbox.Overhead {
		return "", ErrOpen
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])

	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}
