package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("2026/batch-1.pdf", []byte("%PDF")))
	data, err := store.Read("2026/batch-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	require.NoError(t, store.Delete("2026/batch-1.pdf"))
	require.NoError(t, store.Delete("2026/batch-1.pdf"))
	_, err = store.Read("2026/batch-1.pdf")
	assert.Error(t, err)
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Save("../outside.pdf", nil), ErrOutsideRoot)
	_, err = store.Read("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestLocalStorageCleanup(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root)
	require.NoError(t, err)

	require.NoError(t, store.Save("old.pdf", []byte("x")))
	require.NoError(t, store.Save("fresh.pdf", []byte("y")))
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "old.pdf"), past, past))

	removed, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.pdf"}, removed)
}

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("batch-1", "2026/batch-1.pdf")
	require.NoError(t, err)

	decoded, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "batch-1", decoded.BatchID)
	assert.Equal(t, "2026/batch-1.pdf", decoded.Name)
	assert.True(t, expiresAt.Equal(decoded.ExpiresAt))
}

func TestSignerRejectsTampering(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, _, err := signer.Sign("batch-1", "a.pdf")
	require.NoError(t, err)

	_, err = NewSigner("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignerExpiry(t *testing.T) {
	signer := NewSigner("secret", time.Minute)
	token, _, err := signer.Sign("batch-1", "a.pdf")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	decoded, err := signer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, "batch-1", decoded.BatchID)
}
