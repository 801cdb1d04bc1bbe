package symtensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hupe1980/symtensor/dpd"
	"github.com/hupe1980/symtensor/internal/resource"
	"github.com/hupe1980/symtensor/psio"
)

// Context is one computation: its unit files, tile store, cache list and
// resource budget. Create it with New and release it with Close.
type Context struct {
	id      uuid.UUID
	opts    options
	log     *Logger
	rc      *resource.Controller
	manager *psio.Manager
	cl      *dpd.CacheList
	store   *dpd.Store

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New builds a computation context.
func New(opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New()
	if o.prefix == "" {
		o.prefix = "psi-" + id.String()[:8]
	}
	log := o.logger.WithID(id.String())

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memory,
		FlushWorkers:       o.flushWorkers,
		IOLimitBytesPerSec: o.ioLimit,
	})

	manager, err := psio.NewManager(psio.Config{
		Dir:        o.scratchDir,
		Prefix:     o.prefix,
		FS:         o.fs,
		Controller: rc,
		Logger:     log.Logger,
	})
	if err != nil {
		return nil, err
	}

	var clOpts []dpd.CacheListOption
	if o.cacheRule != "" {
		clOpts = append(clOpts, dpd.WithCacheRule(o.cacheRule))
	}
	cl, err := dpd.NewCacheList(o.ref, o.cacheLevel, clOpts...)
	if err != nil {
		return nil, err
	}

	store, err := dpd.NewStore(dpd.Config{
		NIrrep:      o.nirrep,
		Manager:     manager,
		CacheList:   cl,
		Policy:      o.cachePolicy,
		Priority:    o.priority,
		Controller:  rc,
		Compression: o.compression,
		Observer:    o.metrics,
		Logger:      log.Logger,
	})
	if err != nil {
		return nil, err
	}

	log.Info("context created",
		"prefix", o.prefix,
		"nirrep", o.nirrep,
		"cache_level", o.cacheLevel,
		"cache_type", o.cachePolicy.String(),
		"memory", o.memory,
	)
	return &Context{
		id:      id,
		opts:    o,
		log:     log,
		rc:      rc,
		manager: manager,
		cl:      cl,
		store:   store,
	}, nil
}

// ID returns the computation id.
func (c *Context) ID() string { return c.id.String() }

// Store returns the buffer store.
func (c *Context) Store() *dpd.Store { return c.store }

// Manager returns the unit manager.
func (c *Context) Manager() *psio.Manager { return c.manager }

// CacheList returns the cache list.
func (c *Context) CacheList() *dpd.CacheList { return c.cl }

// Logger returns the context logger.
func (c *Context) Logger() *Logger { return c.log }

// MemoryUsage returns the bytes held by resident tiles.
func (c *Context) MemoryUsage() int64 { return c.rc.MemoryUsage() }

func (c *Context) check() error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Open opens unit u. State errors are wrapped in ErrFatal.
func (c *Context) Open(u psio.Unit, mode psio.Mode) error {
	if err := c.check(); err != nil {
		return err
	}
	err := c.manager.Open(u, mode)
	c.log.LogOpen(context.Background(), u, mode, err)
	return translateError(err)
}

// CloseUnit closes unit u, keeping or deleting its file.
func (c *Context) CloseUnit(u psio.Unit, keep bool) error {
	if err := c.check(); err != nil {
		return err
	}
	err := c.manager.Close(u, keep)
	c.log.LogClose(context.Background(), u, keep, err)
	return translateError(err)
}

// PsioOn opens every unit from UnitCCOEI to UnitCCMax, preserving existing
// contents.
func (c *Context) PsioOn() error {
	var errs []error
	for u := psio.UnitCCOEI; u <= psio.UnitCCMax; u++ {
		if err := c.Open(u, psio.ModeOld); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PsioOff closes every unit from UnitCCOEI to UnitCCMax. Scratch units
// (UnitCCTmp to UnitCCTmp11) are deleted, all others kept.
func (c *Context) PsioOff() error {
	var errs []error
	for u := psio.UnitCCOEI; u <= psio.UnitCCMax; u++ {
		if err := c.CloseUnit(u, !psio.IsScratch(u)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close tears the computation down: resident File2 and Buf4 tiles are
// written back, the cache list is deleted and every open unit is closed
// (scratch units deleted, others kept). Close runs once; later calls return
// the same result.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		ctx := context.Background()

		var errs []error
		err := c.store.File2CacheClose()
		c.log.LogFlush(ctx, "file2", err)
		errs = append(errs, err)

		err = c.store.File4CacheClose()
		c.log.LogFlush(ctx, "buf4", err)
		errs = append(errs, err)

		c.cl.Delete()
		errs = append(errs, translateError(c.manager.CloseAll()), c.store.Close())

		c.closeErr = errors.Join(errs...)
		c.log.LogTeardown(ctx, c.closeErr)
	})
	return c.closeErr
}

// Run creates a context, calls fn and always closes the context. Errors of
// fn and Close are joined.
func Run(opts []Option, fn func(*Context) error) (err error) {
	c, err := New(opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, c.Close())
	}()
	if err := fn(c); err != nil {
		return fmt.Errorf("symtensor: run: %w", err)
	}
	return nil
}
