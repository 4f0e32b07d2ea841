package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("brand-1", "brands/brand-1/profile.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	file, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "brand-1", file.OwnerID)
	require.Equal(t, "brands/brand-1/profile.jpg", file.Path)
	require.Equal(t, expiresAt, file.ExpiresAt)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("brand-1", "brands/brand-1/profile.jpg")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Parse(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestSignedURLSignerTampered(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("brand-1", "a.jpg")
	require.NoError(t, err)

	other := NewSignedURLSigner("other", time.Hour)
	_, err = other.Parse(token)
	require.ErrorIs(t, err, ErrTokenSignature)

	_, err = signer.Parse("not-a-token")
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestSignedURLSignerRequiresSecret(t *testing.T) {
	_, _, err := NewSignedURLSigner("", time.Hour).Generate("brand-1", "a.jpg")
	require.Error(t, err)
}
