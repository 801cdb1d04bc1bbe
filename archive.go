package symtensor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/symtensor/blobstore"
	"github.com/hupe1980/symtensor/internal/resource"
	"github.com/hupe1980/symtensor/psio"
)

// blobName is the name a unit file is archived under.
func (c *Context) blobName(u psio.Unit) string {
	return filepath.Base(c.manager.Path(u))
}

// checkClosed fails with ErrFatal if any of units is open.
func (c *Context) checkClosed(op string, units []psio.Unit) error {
	for _, u := range units {
		if c.manager.IsOpen(u) {
			return translateError(&psio.UnitError{Op: op, Unit: u, Err: psio.ErrUnitOpen})
		}
	}
	return nil
}

// Archive copies the retained files of the given closed units to store.
// Units without a file are skipped. Transfers run concurrently.
func (c *Context) Archive(ctx context.Context, store blobstore.Store, units ...psio.Unit) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := c.checkClosed("archive", units); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.rc.FlushWorkers())
	for _, u := range units {
		g.Go(func() error {
			n, err := c.archiveUnit(gctx, store, u)
			c.log.LogTransfer(gctx, "archive", u, n, err)
			return err
		})
	}
	return g.Wait()
}

func (c *Context) archiveUnit(ctx context.Context, store blobstore.Store, u psio.Unit) (int64, error) {
	fsys := c.manager.FileSystem()
	f, err := fsys.OpenFile(c.manager.Path(u), os.O_RDONLY, 0)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	r := io.NewSectionReader(resource.NewRateLimitedReaderAt(ctx, f, c.rc), 0, info.Size())
	if err := store.Put(ctx, c.blobName(u), r, info.Size()); err != nil {
		return 0, fmt.Errorf("symtensor: archive %s: %w", u, err)
	}
	return info.Size(), nil
}

// Restore copies archived files of the given closed units from store into
// the scratch directory, replacing local files. Units missing from store are
// skipped. Open them with ModeOld afterwards.
func (c *Context) Restore(ctx context.Context, store blobstore.Store, units ...psio.Unit) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := c.checkClosed("restore", units); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.rc.FlushWorkers())
	for _, u := range units {
		g.Go(func() error {
			n, err := c.restoreUnit(gctx, store, u)
			c.log.LogTransfer(gctx, "restore", u, n, err)
			return err
		})
	}
	return g.Wait()
}

func (c *Context) restoreUnit(ctx context.Context, store blobstore.Store, u psio.Unit) (n int64, err error) {
	rc, err := store.Get(ctx, c.blobName(u))
	if errors.Is(err, blobstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	fsys := c.manager.FileSystem()
	path := c.manager.Path(u)
	tmp := filepath.Join(filepath.Dir(path), ".restore-"+uuid.NewString())
	f, err := fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmp)
		}
	}()

	n, err = io.Copy(resource.NewRateLimitedWriter(ctx, f, c.rc), rc)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = fsys.Rename(tmp, path)
	}
	if err != nil {
		return 0, fmt.Errorf("symtensor: restore %s: %w", u, err)
	}
	return n, nil
}
