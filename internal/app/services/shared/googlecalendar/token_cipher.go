package googlecalendar

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"praxis-service/internal/pkg/exceptions"

	"golang.org/x/crypto/chacha20poly1305"
)

// tokenCipher encrypts refresh tokens at rest. The key material is derived
// from the configured secret so operators can supply any non-empty string.
type tokenCipher struct {
	key []byte
}

func newTokenCipher(secret string) (*tokenCipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("token cipher key is empty")
	}
	sum := sha256.Sum256([]byte(secret))
	return &tokenCipher{key: sum[:]}, nil
}

func (c *tokenCipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", exceptions.ErrTokenCipher(err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", exceptions.ErrTokenCipher(err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *tokenCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", exceptions.ErrTokenCipher(err)
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", exceptions.ErrTokenCipher(err)
	}

	if len(raw) < aead.NonceSize() {
		return "", exceptions.ErrTokenCipher(fmt.Errorf("ciphertext shorter than nonce"))
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", exceptions.ErrTokenCipher(err)
	}
	return string(plain), nil
}
