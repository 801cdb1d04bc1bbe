package psio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"github.com/hupe1980/symtensor/internal/fs"
	"github.com/hupe1980/symtensor/internal/resource"
)

// DefaultPrefix is the unit file prefix used when Config.Prefix is empty.
const DefaultPrefix = "psi"

// Config configures a Manager.
type Config struct {
	// Dir holds the unit files. Defaults to os.TempDir().
	Dir string
	// Prefix names unit files "<Prefix>.<unit>".
	Prefix string
	// FS defaults to fs.Default.
	FS fs.FileSystem
	// Controller throttles entry I/O. Optional.
	Controller *resource.Controller
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// CloseHook runs before a unit is closed, while it still accepts I/O.
type CloseHook func(u Unit, keep bool) error

// Manager owns the open file units of one computation.
//
// Units move CLOSED -> OPEN(mode) -> CLOSED. Opening an open unit and closing
// a closed unit are errors. Entry I/O on different units may run
// concurrently; entries of one unit are serialized.
type Manager struct {
	cfg Config

	mu    sync.Mutex
	units map[Unit]*unitFile
	hooks []CloseHook
}

type unitFile struct {
	mu      sync.Mutex
	unit    Unit
	path    string
	f       fs.File
	unlock  func() error
	toc     map[string]extent
	end     int64
	closing bool
}

// NewManager creates the directory if needed and returns an empty manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.FS == nil {
		cfg.FS = fs.Default
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.FS.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("psio: create scratch dir: %w", err)
	}
	return &Manager{cfg: cfg, units: make(map[Unit]*unitFile)}, nil
}

// Path returns the file backing u.
func (m *Manager) Path(u Unit) string {
	return filepath.Join(m.cfg.Dir, fmt.Sprintf("%s.%d", m.cfg.Prefix, int(u)))
}

// FileSystem returns the file system unit files live on.
func (m *Manager) FileSystem() fs.FileSystem { return m.cfg.FS }

// OnClose registers a hook run by Close before the unit file is closed.
func (m *Manager) OnClose(h CloseHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

// Open opens u. ModeNew truncates the file; ModeOld restores its TOC, and a
// missing file starts empty.
func (m *Manager) Open(u Unit, mode Mode) error {
	if !u.Valid() {
		return &UnitError{Op: "open", Unit: u, Err: ErrInvalidUnit}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.units[u]; ok {
		return &UnitError{Op: "open", Unit: u, Err: ErrUnitOpen}
	}

	path := m.Path(u)
	// Never O_TRUNC before holding the lock: the file may belong to someone else.
	f, err := m.cfg.FS.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return &UnitError{Op: "open", Unit: u, Err: err}
	}
	unlock, err := fs.Lock(f)
	if err != nil {
		_ = f.Close()
		if errors.Is(err, fs.ErrLocked) {
			err = ErrUnitBusy
		}
		return &UnitError{Op: "open", Unit: u, Err: err}
	}

	uf := &unitFile{unit: u, path: path, f: f, unlock: unlock, toc: map[string]extent{}}
	if mode == ModeNew {
		err = f.Truncate(0)
	} else {
		uf.toc, uf.end, err = readTOC(f)
	}
	if err != nil {
		_ = unlock()
		_ = f.Close()
		return &UnitError{Op: "open", Unit: u, Err: err}
	}

	m.units[u] = uf
	m.cfg.Logger.Debug("unit opened", "unit", int(u), "mode", mode.String(), "entries", len(uf.toc))
	return nil
}

// IsOpen reports whether u is open.
func (m *Manager) IsOpen(u Unit) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	uf, ok := m.units[u]
	return ok && !uf.closing
}

// OpenUnits returns the open units in ascending order.
func (m *Manager) OpenUnits() []Unit {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Unit, 0, len(m.units))
	for u, uf := range m.units {
		if !uf.closing {
			out = append(out, u)
		}
	}
	slices.Sort(out)
	return out
}

// Close closes u. With keep the TOC is written and the file retained;
// otherwise the file is removed. Close hooks run first; the unit is closed
// even if a hook fails.
func (m *Manager) Close(u Unit, keep bool) error {
	m.mu.Lock()
	uf, ok := m.units[u]
	if !ok || uf.closing {
		m.mu.Unlock()
		return &UnitError{Op: "close", Unit: u, Err: ErrUnitClosed}
	}
	uf.closing = true
	hooks := slices.Clone(m.hooks)
	m.mu.Unlock()

	var errs []error
	for _, h := range hooks {
		if err := h(u, keep); err != nil {
			errs = append(errs, err)
		}
	}

	uf.mu.Lock()
	if keep {
		if err := writeTOC(uf.f, uf.toc, uf.end); err != nil {
			errs = append(errs, fmt.Errorf("write toc: %w", err))
		}
	}
	if err := uf.unlock(); err != nil {
		errs = append(errs, err)
	}
	if err := uf.f.Close(); err != nil {
		errs = append(errs, err)
	}
	if !keep {
		if err := m.cfg.FS.Remove(uf.path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	entries := len(uf.toc)
	uf.mu.Unlock()

	m.mu.Lock()
	delete(m.units, u)
	m.mu.Unlock()

	m.cfg.Logger.Debug("unit closed", "unit", int(u), "keep", keep, "entries", entries)
	if err := errors.Join(errs...); err != nil {
		return &UnitError{Op: "close", Unit: u, Err: err}
	}
	return nil
}

// CloseAll closes every open unit. Scratch units are deleted, all others kept.
func (m *Manager) CloseAll() error {
	var errs []error
	for _, u := range m.OpenUnits() {
		if err := m.Close(u, !IsScratch(u)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) unit(op string, u Unit) (*unitFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uf, ok := m.units[u]
	if !ok {
		return nil, &UnitError{Op: op, Unit: u, Err: ErrUnitClosed}
	}
	return uf, nil
}

// WriteEntry stores data under key. Rewrites that fit the entry's reserved
// space are done in place; larger ones are appended.
func (m *Manager) WriteEntry(ctx context.Context, u Unit, key string, data []byte) error {
	if len(key) > maxKeyLen {
		return &UnitError{Op: "write", Unit: u, Err: fmt.Errorf("key of %d bytes", len(key))}
	}
	uf, err := m.unit("write", u)
	if err != nil {
		return err
	}
	if err := m.cfg.Controller.AcquireIO(ctx, len(data)); err != nil {
		return &UnitError{Op: "write", Unit: u, Err: err}
	}

	uf.mu.Lock()
	defer uf.mu.Unlock()

	n := int64(len(data))
	e, ok := uf.toc[key]
	appended := !ok || n > e.capacity
	if appended {
		e = extent{offset: uf.end, capacity: n}
	}
	if _, err := uf.f.WriteAt(data, e.offset); err != nil {
		return &UnitError{Op: "write", Unit: u, Err: fmt.Errorf("entry %q: %w", key, err)}
	}
	if appended {
		uf.end += n
	}
	e.length = n
	uf.toc[key] = e
	return nil
}

// ReadEntry returns the data stored under key.
func (m *Manager) ReadEntry(ctx context.Context, u Unit, key string) ([]byte, error) {
	uf, err := m.unit("read", u)
	if err != nil {
		return nil, err
	}

	uf.mu.Lock()
	defer uf.mu.Unlock()

	e, ok := uf.toc[key]
	if !ok {
		return nil, &UnitError{Op: "read", Unit: u, Err: fmt.Errorf("%w: %q", ErrNoEntry, key)}
	}
	buf := make([]byte, e.length)
	r := resource.NewRateLimitedReaderAt(ctx, uf.f, m.cfg.Controller)
	if _, err := r.ReadAt(buf, e.offset); err != nil {
		return nil, &UnitError{Op: "read", Unit: u, Err: fmt.Errorf("entry %q: %w", key, err)}
	}
	return buf, nil
}

// HasEntry reports whether key exists in u.
func (m *Manager) HasEntry(u Unit, key string) (bool, error) {
	uf, err := m.unit("lookup", u)
	if err != nil {
		return false, err
	}
	uf.mu.Lock()
	defer uf.mu.Unlock()
	_, ok := uf.toc[key]
	return ok, nil
}

// Entries returns the sorted entry keys of u.
func (m *Manager) Entries(u Unit) ([]string, error) {
	uf, err := m.unit("list", u)
	if err != nil {
		return nil, err
	}
	uf.mu.Lock()
	defer uf.mu.Unlock()
	keys := make([]string, 0, len(uf.toc))
	for k := range uf.toc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// DeleteEntry removes key from the TOC. Its space is not reclaimed.
func (m *Manager) DeleteEntry(u Unit, key string) error {
	uf, err := m.unit("delete", u)
	if err != nil {
		return err
	}
	uf.mu.Lock()
	defer uf.mu.Unlock()
	if _, ok := uf.toc[key]; !ok {
		return &UnitError{Op: "delete", Unit: u, Err: fmt.Errorf("%w: %q", ErrNoEntry, key)}
	}
	delete(uf.toc, key)
	return nil
}

// Size returns the bytes of payload stored in u, excluding reserved slack
// and deleted entries.
func (m *Manager) Size(u Unit) (int64, error) {
	uf, err := m.unit("size", u)
	if err != nil {
		return 0, err
	}
	uf.mu.Lock()
	defer uf.mu.Unlock()
	var n int64
	for _, e := range uf.toc {
		n += e.length
	}
	return n, nil
}
