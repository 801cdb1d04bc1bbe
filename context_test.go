package symtensor

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symtensor/blobstore"
	"github.com/hupe1980/symtensor/dpd"
	"github.com/hupe1980/symtensor/internal/fs"
	"github.com/hupe1980/symtensor/linalg"
	"github.com/hupe1980/symtensor/psio"
)

func newContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	opts = append([]Option{WithScratchDir(t.TempDir()), WithFilePrefix("test"), WithIrreps(2)}, opts...)
	c, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeFile2(t *testing.T, c *Context, u psio.Unit, label string, v float64) *dpd.File2[float64] {
	t.Helper()
	st := c.Store()
	occ, err := st.AddSpace("O", linalg.NewDimension(2, 1), false)
	require.NoError(t, err)
	f, err := dpd.InitFile2[float64](st, u, label, occ, occ, 0)
	require.NoError(t, err)
	require.NoError(t, f.Update(context.Background(), 0, func(b *linalg.Block[float64]) error {
		b.Fill(v)
		return nil
	}))
	return f
}

func TestNew_Defaults(t *testing.T) {
	c := newContext(t)
	assert.NotEmpty(t, c.ID())
	assert.NotNil(t, c.Store())
	assert.Equal(t, 2, c.Store().NIrrep())
	assert.Equal(t, DefaultCacheLevel, c.CacheList().Level())
	assert.Equal(t, dpd.RHF, c.CacheList().Reference())
	assert.Empty(t, c.Manager().OpenUnits())
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithScratchDir(t.TempDir()), WithCacheLevel(9))
	assert.Error(t, err)

	_, err = New(WithScratchDir(t.TempDir()), WithIrreps(3))
	assert.Error(t, err)

	_, err = New(WithScratchDir(t.TempDir()), WithCacheRule("label +"))
	assert.Error(t, err)
}

func TestContext_PsioOnOff(t *testing.T) {
	dir := t.TempDir()
	c := newContext(t, WithScratchDir(dir))

	require.NoError(t, c.PsioOn())
	assert.Len(t, c.Manager().OpenUnits(), int(psio.UnitCCMax-psio.UnitCCOEI)+1)
	writeFile2(t, c, psio.UnitCCOEI, "fIJ", 1)
	writeFile2(t, c, psio.UnitCCTmp, "Z", 2)

	require.NoError(t, c.PsioOff())
	assert.Empty(t, c.Manager().OpenUnits())

	_, err := os.Stat(c.Manager().Path(psio.UnitCCOEI))
	assert.NoError(t, err, "OEI kept")
	_, err = os.Stat(c.Manager().Path(psio.UnitCCTmp))
	assert.True(t, os.IsNotExist(err), "scratch deleted")
	_, err = os.Stat(c.Manager().Path(psio.UnitCCMax))
	assert.NoError(t, err, "units above the scratch range kept")

	// Back on: retained contents are visible again.
	require.NoError(t, c.PsioOn())
	ok, err := c.Manager().HasEntry(psio.UnitCCOEI, "file2|fIJ|O|O|0")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestContext_StateErrorsAreFatal(t *testing.T) {
	c := newContext(t)

	require.NoError(t, c.Open(psio.UnitCCTAmps, psio.ModeNew))
	err := c.Open(psio.UnitCCTAmps, psio.ModeNew)
	assert.ErrorIs(t, err, ErrFatal)
	assert.ErrorIs(t, err, psio.ErrUnitOpen)

	require.NoError(t, c.CloseUnit(psio.UnitCCTAmps, false))
	err = c.CloseUnit(psio.UnitCCTAmps, false)
	assert.ErrorIs(t, err, ErrFatal)
	assert.ErrorIs(t, err, psio.ErrUnitClosed)

	assert.NotErrorIs(t, translateError(fs.ErrInjected), ErrFatal)
	assert.Nil(t, translateError(nil))
}

func TestContext_CloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	c, err := New(WithScratchDir(dir), WithFilePrefix("td"), WithIrreps(2), WithCacheLevel(dpd.MaxCacheLevel))
	require.NoError(t, err)

	require.NoError(t, c.Open(psio.UnitCCOEI, psio.ModeNew))
	require.NoError(t, c.Open(psio.UnitCCTmp1, psio.ModeNew))
	writeFile2(t, c, psio.UnitCCOEI, "fIJ", 3)
	assert.Equal(t, 1, c.Store().Stats().Resident)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.True(t, c.CacheList().Deleted())
	assert.Empty(t, c.Manager().OpenUnits())
	assert.Zero(t, c.Store().Stats().Resident)
	_, err = os.Stat(c.Manager().Path(psio.UnitCCTmp1))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, c.PsioOn(), ErrClosed)
	assert.ErrorIs(t, c.Open(psio.UnitCCOEI, psio.ModeOld), ErrClosed)

	// The dirty tile reached the retained unit.
	c2, err := New(WithScratchDir(dir), WithFilePrefix("td"), WithIrreps(2))
	require.NoError(t, err)
	defer c2.Close()
	require.NoError(t, c2.Open(psio.UnitCCOEI, psio.ModeOld))
	occ, err := c2.Store().AddSpace("O", linalg.NewDimension(2, 1), false)
	require.NoError(t, err)
	f, err := dpd.InitFile2[float64](c2.Store(), psio.UnitCCOEI, "fIJ", occ, occ, 0)
	require.NoError(t, err)
	blk, err := f.Block(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 3, 3}, blk.Data)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	var got *Context
	err := Run([]Option{WithScratchDir(dir), WithFilePrefix("run")}, func(c *Context) error {
		got = c
		return c.Open(psio.UnitCCTmp, psio.ModeNew)
	})
	require.NoError(t, err)
	assert.Empty(t, got.Manager().OpenUnits(), "closed by Run")

	boom := errors.New("boom")
	err = Run([]Option{WithScratchDir(dir)}, func(*Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestContext_ArchiveRestore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	metrics := &BasicMetricsCollector{}
	c := newContext(t, WithScratchDir(dir), WithMetrics(metrics), WithFlushWorkers(2), WithIOLimit(1<<20))
	archive := blobstore.NewMemoryStore()

	require.NoError(t, c.Open(psio.UnitCCOEI, psio.ModeNew))
	require.NoError(t, c.Open(psio.UnitCCTAmps, psio.ModeNew))
	writeFile2(t, c, psio.UnitCCOEI, "fIJ", 1)
	writeFile2(t, c, psio.UnitCCTAmps, "tIJ", 2)

	err := c.Archive(ctx, archive, psio.UnitCCOEI)
	assert.ErrorIs(t, err, ErrFatal, "open units cannot be archived")

	require.NoError(t, c.CloseUnit(psio.UnitCCOEI, true))
	require.NoError(t, c.CloseUnit(psio.UnitCCTAmps, true))
	require.NoError(t, c.Archive(ctx, archive, psio.UnitCCOEI, psio.UnitCCTAmps, psio.UnitCCLR))

	names, err := archive.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"test.102", "test.110"}, names)

	// Lose the local files, then restore them.
	require.NoError(t, os.Remove(c.Manager().Path(psio.UnitCCOEI)))
	require.NoError(t, os.Remove(c.Manager().Path(psio.UnitCCTAmps)))
	require.NoError(t, c.Restore(ctx, archive, psio.UnitCCOEI, psio.UnitCCTAmps, psio.UnitCCLR))

	require.NoError(t, c.Open(psio.UnitCCTAmps, psio.ModeOld))
	ok, err := c.Manager().HasEntry(psio.UnitCCTAmps, "file2|tIJ|O|O|0")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, c.Restore(ctx, archive, psio.UnitCCTAmps), ErrFatal)
	assert.Positive(t, metrics.GetStats().WriteCount)
}
