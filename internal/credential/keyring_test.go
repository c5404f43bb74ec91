package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyringTokenLifecycle(t *testing.T) {
	k := NewKeyring(keyring.NewArrayKeyring(nil))

	token, err := k.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "missing token is not an error")

	require.NoError(t, k.SetToken("sess-123"))
	token, err = k.Token()
	require.NoError(t, err)
	assert.Equal(t, "sess-123", token)

	require.NoError(t, k.Clear())
	require.NoError(t, k.Clear(), "clearing twice is fine")
	token, err = k.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestMemoryStore(t *testing.T) {
	var s Store = NewMemory("abc")
	token, _ := s.Token()
	assert.Equal(t, "abc", token)
	require.NoError(t, s.Clear())
	token, _ = s.Token()
	assert.Empty(t, token)
}
