package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zksuit/zksuit/x/suitability/types"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	names, err := s.List(ctx)
	require.NoError(t, err)
	require.Empty(t, names)

	_, err = s.Load(ctx, ProvingKeyFile)
	require.ErrorIs(t, err, types.ErrArtifactUnavailable)

	require.NoError(t, s.Store(ctx, ProvingKeyFile, []byte("pk-bytes")))
	require.NoError(t, s.Store(ctx, CircuitFile, []byte("ccs-bytes")))

	data, err := s.Load(ctx, ProvingKeyFile)
	require.NoError(t, err)
	require.Equal(t, []byte("pk-bytes"), data)

	// overwrite
	require.NoError(t, s.Store(ctx, ProvingKeyFile, []byte("pk-v2")))
	data, err = s.Load(ctx, ProvingKeyFile)
	require.NoError(t, err)
	require.Equal(t, []byte("pk-v2"), data)

	names, err = s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{CircuitFile, ProvingKeyFile}, names)

	require.NoError(t, s.Delete(ctx, ProvingKeyFile))
	require.NoError(t, s.Delete(ctx, ProvingKeyFile), "delete is idempotent")
	_, err = s.Load(ctx, ProvingKeyFile)
	require.ErrorIs(t, err, types.ErrArtifactUnavailable)

	require.Error(t, s.Store(ctx, "../escape", []byte("x")))
	require.Error(t, s.Store(ctx, "", []byte("x")))
}

func TestFileStore(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "artifacts")
	s := NewFileStore(dir)
	require.Equal(t, dir, s.Dir())

	exerciseStore(t, s)

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestMemStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemStore())
}

func TestMemStoreCopiesData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()

	buf := []byte("abc")
	require.NoError(t, s.Store(ctx, VerifyingKeyFile, buf))
	buf[0] = 'z'

	data, err := s.Load(ctx, VerifyingKeyFile)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), data)
}

func TestStoresHonourCancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, s := range []Store{NewMemStore(), NewFileStore(t.TempDir())} {
		require.ErrorIs(t, s.Store(ctx, CircuitFile, []byte("x")), context.Canceled)
		_, err := s.Load(ctx, CircuitFile)
		require.ErrorIs(t, err, context.Canceled)
	}
}

func TestMetadataRoundTripAndChecksum(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()

	m := &Metadata{
		KeyID:           "suitability-v1-v1-abcd",
		CircuitName:     "suitability-v1",
		Version:         1,
		CreatedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Algorithm:       "groth16",
		Curve:           "bn254",
		CalldataVersion: types.CalldataVersion,
		Checksums:       map[string]string{ProvingKeyFile: Checksum([]byte("pk"))},
	}
	require.NoError(t, WriteMetadata(ctx, s, m))

	got, err := ReadMetadata(ctx, s)
	require.NoError(t, err)
	require.Equal(t, m.KeyID, got.KeyID)
	require.True(t, m.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, got.VerifyChecksum(ProvingKeyFile, []byte("pk")))
	require.Error(t, got.VerifyChecksum(ProvingKeyFile, []byte("tampered")))
	require.NoError(t, got.VerifyChecksum(VerifyingKeyFile, []byte("anything")))
}
