package psio

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symtensor/internal/fs"
)

func newManager(t *testing.T, dir string) *Manager {
	t.Helper()
	m, err := NewManager(Config{Dir: dir, Prefix: "test"})
	require.NoError(t, err)
	return m
}

func TestManager_Lifecycle(t *testing.T) {
	m := newManager(t, t.TempDir())

	assert.False(t, m.IsOpen(UnitCCTmp))
	require.NoError(t, m.Open(UnitCCTmp, ModeNew))
	assert.True(t, m.IsOpen(UnitCCTmp))

	err := m.Open(UnitCCTmp, ModeNew)
	assert.ErrorIs(t, err, ErrUnitOpen)
	assert.True(t, IsStateError(err))
	var ue *UnitError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, UnitCCTmp, ue.Unit)

	require.NoError(t, m.Close(UnitCCTmp, false))
	assert.False(t, m.IsOpen(UnitCCTmp))

	err = m.Close(UnitCCTmp, false)
	assert.ErrorIs(t, err, ErrUnitClosed)

	_, err = m.ReadEntry(context.Background(), UnitCCTmp, "x")
	assert.ErrorIs(t, err, ErrUnitClosed)

	assert.ErrorIs(t, m.Open(0, ModeNew), ErrInvalidUnit)
	assert.ErrorIs(t, m.Open(MaxUnit+1, ModeNew), ErrInvalidUnit)
}

func TestManager_EntriesSurviveKeep(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	m := newManager(t, dir)

	require.NoError(t, m.Open(UnitCCOEI, ModeNew))
	require.NoError(t, m.WriteEntry(ctx, UnitCCOEI, "fIJ", []byte("abcdef")))
	require.NoError(t, m.WriteEntry(ctx, UnitCCOEI, "fAB", []byte("xyz")))
	require.NoError(t, m.WriteEntry(ctx, UnitCCOEI, "empty", nil))
	require.NoError(t, m.Close(UnitCCOEI, true))

	_, err := os.Stat(m.Path(UnitCCOEI))
	require.NoError(t, err)

	m2 := newManager(t, dir)
	require.NoError(t, m2.Open(UnitCCOEI, ModeOld))
	keys, err := m2.Entries(UnitCCOEI)
	require.NoError(t, err)
	assert.Equal(t, []string{"empty", "fAB", "fIJ"}, keys)

	b, err := m2.ReadEntry(ctx, UnitCCOEI, "fIJ")
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(b))
	b, err = m2.ReadEntry(ctx, UnitCCOEI, "empty")
	require.NoError(t, err)
	assert.Empty(t, b)

	// Appends after reopen land after the old payload.
	require.NoError(t, m2.WriteEntry(ctx, UnitCCOEI, "new", []byte("123")))
	b, err = m2.ReadEntry(ctx, UnitCCOEI, "fAB")
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(b))
	require.NoError(t, m2.Close(UnitCCOEI, true))
}

func TestManager_ModeNewTruncates(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	m := newManager(t, dir)

	require.NoError(t, m.Open(UnitCCDInts, ModeNew))
	require.NoError(t, m.WriteEntry(ctx, UnitCCDInts, "D <ij|ab>", []byte("data")))
	require.NoError(t, m.Close(UnitCCDInts, true))

	require.NoError(t, m.Open(UnitCCDInts, ModeNew))
	keys, err := m.Entries(UnitCCDInts)
	require.NoError(t, err)
	assert.Empty(t, keys)
	require.NoError(t, m.Close(UnitCCDInts, true))
}

func TestManager_CloseWithoutKeepRemovesFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	m := newManager(t, dir)

	require.NoError(t, m.Open(UnitCCTmp0, ModeNew))
	require.NoError(t, m.WriteEntry(ctx, UnitCCTmp0, "Z", []byte("zz")))
	require.NoError(t, m.Close(UnitCCTmp0, false))

	_, err := os.Stat(m.Path(UnitCCTmp0))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, m.Open(UnitCCTmp0, ModeOld))
	size, err := m.Size(UnitCCTmp0)
	require.NoError(t, err)
	assert.Zero(t, size)
	ok, err := m.HasEntry(UnitCCTmp0, "Z")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, m.Close(UnitCCTmp0, false))
}

func TestManager_RewriteInPlace(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, t.TempDir())
	require.NoError(t, m.Open(UnitCCTAmps, ModeNew))
	defer m.Close(UnitCCTAmps, false)

	require.NoError(t, m.WriteEntry(ctx, UnitCCTAmps, "tIA", []byte("0123456789")))
	require.NoError(t, m.WriteEntry(ctx, UnitCCTAmps, "tIA", []byte("abc")))
	b, err := m.ReadEntry(ctx, UnitCCTAmps, "tIA")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))

	require.NoError(t, m.WriteEntry(ctx, UnitCCTAmps, "tIA", []byte("a much longer payload")))
	b, err = m.ReadEntry(ctx, UnitCCTAmps, "tIA")
	require.NoError(t, err)
	assert.Equal(t, "a much longer payload", string(b))

	size, err := m.Size(UnitCCTAmps)
	require.NoError(t, err)
	assert.Equal(t, int64(len("a much longer payload")), size)

	require.NoError(t, m.DeleteEntry(UnitCCTAmps, "tIA"))
	_, err = m.ReadEntry(ctx, UnitCCTAmps, "tIA")
	assert.ErrorIs(t, err, ErrNoEntry)
	assert.ErrorIs(t, m.DeleteEntry(UnitCCTAmps, "tIA"), ErrNoEntry)
}

func TestManager_CloseAll(t *testing.T) {
	dir := t.TempDir()
	m := newManager(t, dir)

	for _, u := range []Unit{UnitCCOEI, UnitCCTmp, UnitCCTmp11, UnitCCMax} {
		require.NoError(t, m.Open(u, ModeNew))
	}
	require.NoError(t, m.CloseAll())
	assert.Empty(t, m.OpenUnits())

	for u, kept := range map[Unit]bool{UnitCCOEI: true, UnitCCTmp: false, UnitCCTmp11: false, UnitCCMax: true} {
		_, err := os.Stat(m.Path(u))
		assert.Equal(t, kept, err == nil, "unit %d", u)
	}
}

func TestManager_CloseHooks(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, t.TempDir())

	var seen []bool
	m.OnClose(func(u Unit, keep bool) error {
		seen = append(seen, keep)
		// The unit still accepts I/O while hooks run.
		return m.WriteEntry(ctx, u, "flushed", []byte{1})
	})

	require.NoError(t, m.Open(UnitCCMisc, ModeNew))
	require.NoError(t, m.Close(UnitCCMisc, true))
	assert.Equal(t, []bool{true}, seen)

	require.NoError(t, m.Open(UnitCCMisc, ModeOld))
	ok, err := m.HasEntry(UnitCCMisc, "flushed")
	require.NoError(t, err)
	assert.True(t, ok)

	boom := errors.New("hook failed")
	m.OnClose(func(Unit, bool) error { return boom })
	err = m.Close(UnitCCMisc, true)
	assert.ErrorIs(t, err, boom)
	assert.False(t, m.IsOpen(UnitCCMisc), "closed despite hook failure")
}

func TestManager_CorruptTrailer(t *testing.T) {
	dir := t.TempDir()
	m := newManager(t, dir)
	require.NoError(t, os.WriteFile(m.Path(UnitCCInfo), []byte("this is not a unit file"), 0o644))

	err := m.Open(UnitCCInfo, ModeOld)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.False(t, m.IsOpen(UnitCCInfo))

	// ModeNew recovers by truncating.
	require.NoError(t, m.Open(UnitCCInfo, ModeNew))
	require.NoError(t, m.Close(UnitCCInfo, false))
}

func TestManager_ExclusiveAcrossManagers(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("advisory locks are unix only")
	}
	dir := t.TempDir()
	a := newManager(t, dir)
	b := newManager(t, dir)

	require.NoError(t, a.Open(UnitCCTmp, ModeNew))
	err := b.Open(UnitCCTmp, ModeOld)
	assert.ErrorIs(t, err, ErrUnitBusy)
	assert.True(t, IsStateError(err))

	require.NoError(t, a.Close(UnitCCTmp, true))
	require.NoError(t, b.Open(UnitCCTmp, ModeOld))
	require.NoError(t, b.Close(UnitCCTmp, false))
}

func TestManager_WriteFaultPropagates(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(".110", fs.Fault{FailAfterBytes: 4})
	m, err := NewManager(Config{Dir: t.TempDir(), FS: ffs})
	require.NoError(t, err)

	require.NoError(t, m.Open(UnitCCTAmps, ModeNew))
	err = m.WriteEntry(context.Background(), UnitCCTAmps, "t2", []byte("too long"))
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.False(t, IsStateError(err))
	require.NoError(t, m.Close(UnitCCTAmps, false))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryOEI, CategoryOf(UnitCCOEI))
	assert.Equal(t, CategoryOEI, CategoryOf(UnitCCTmp-1))
	assert.Equal(t, CategoryScratch, CategoryOf(UnitCCTmp))
	assert.Equal(t, CategoryScratch, CategoryOf(UnitCCTmp11))
	assert.Equal(t, CategoryOther, CategoryOf(UnitCCTmp11+1))
	assert.Equal(t, CategoryOther, CategoryOf(UnitCCInfo))
}
