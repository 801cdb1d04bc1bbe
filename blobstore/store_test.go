package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symtensor/internal/fs"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "psi.102", strings.NewReader("oei"), 3))
	require.NoError(t, s.Put(ctx, "psi.110", strings.NewReader("amplitudes"), -1))
	require.NoError(t, s.Put(ctx, "other", bytes.NewReader(nil), 0))

	rc, err := s.Get(ctx, "psi.110")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "amplitudes", string(b))

	// Overwrite.
	require.NoError(t, s.Put(ctx, "psi.110", strings.NewReader("t2"), 2))
	rc, err = s.Get(ctx, "psi.110")
	require.NoError(t, err)
	b, _ = io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "t2", string(b))

	assert.Error(t, s.Put(ctx, "short", strings.NewReader("ab"), 5))

	names, err := s.List(ctx, "psi.")
	require.NoError(t, err)
	assert.Equal(t, []string{"psi.102", "psi.110"}, names)

	require.NoError(t, s.Delete(ctx, "psi.102"))
	require.NoError(t, s.Delete(ctx, "psi.102"))
	_, err = s.Get(ctx, "psi.102")
	assert.ErrorIs(t, err, ErrNotFound)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.Put(cctx, "late", strings.NewReader("x"), 1), context.Canceled)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), nil)
	require.NoError(t, err)
	testStore(t, s)

	_, err = s.Get(context.Background(), "../escape")
	assert.Error(t, err)
}

func TestLocalStore_FailedPutLeavesNoBlob(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 2})
	s, err := NewLocalStore(t.TempDir(), ffs)
	require.NoError(t, err)

	ctx := context.Background()
	err = s.Put(ctx, "psi.106", strings.NewReader("integrals"), 9)
	assert.True(t, errors.Is(err, fs.ErrInjected))

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
