package storage

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.SaveStream("brands/b1/profile.jpg", bytes.NewReader([]byte("jpeg")))
	require.NoError(t, err)
	assert.Equal(t, "brands/b1/profile.jpg", name)
	assert.True(t, store.Exists(name))

	f, err := store.Open(name)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, store.Delete(name))
	assert.False(t, store.Exists(name))
	require.NoError(t, store.Delete(name))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../secret", "/etc/passwd", "", "a/../../b"} {
		_, err := store.Save(name, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidPath, name)
	}
}
