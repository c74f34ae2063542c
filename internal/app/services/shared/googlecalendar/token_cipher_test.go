package googlecalendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCipherRoundTrip(t *testing.T) {
	cipher, err := newTokenCipher("cipher-key")
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("1//refresh-token-value")
	require.NoError(t, err)
	assert.NotEqual(t, "1//refresh-token-value", encrypted)

	decrypted, err := cipher.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "1//refresh-token-value", decrypted)
}

func TestTokenCipherProducesDistinctCiphertexts(t *testing.T) {
	cipher, err := newTokenCipher("cipher-key")
	require.NoError(t, err)

	first, err := cipher.Encrypt("same-plaintext")
	require.NoError(t, err)
	second, err := cipher.Encrypt("same-plaintext")
	require.NoError(t, err)

	// Random nonces keep identical tokens from leaking equality at rest.
	assert.NotEqual(t, first, second)
}

func TestTokenCipherRejectsWrongKey(t *testing.T) {
	cipher, err := newTokenCipher("cipher-key")
	require.NoError(t, err)
	other, err := newTokenCipher("different-key")
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("secret")
	require.NoError(t, err)

	_, err = other.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestTokenCipherRejectsGarbage(t *testing.T) {
	cipher, err := newTokenCipher("cipher-key")
	require.NoError(t, err)

	_, err = cipher.Decrypt("not-base64!!!")
	assert.Error(t, err)
}
