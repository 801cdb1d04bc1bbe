package fs

import (
	"errors"
	"io"
	"os"
)

// ErrLocked is returned when another holder owns the lock on a file.
var ErrLocked = errors.New("file is locked")

// File represents an open unit file.
type File interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.WriterAt
	io.Seeker
	Sync() error
	Stat() (os.FileInfo, error)
	Truncate(size int64) error
}

// FileSystem abstracts the file operations used by the unit manager.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) Remove(name string) error              { return os.Remove(name) }
func (LocalFS) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }
func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (LocalFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
func (LocalFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

// Default is the default local file system.
var Default FileSystem = LocalFS{}

// fder is implemented by files backed by an OS descriptor.
type fder interface {
	Fd() uintptr
}

// Lock takes an exclusive, non-blocking advisory lock on f. Files without an
// OS descriptor are not locked. The returned function releases the lock.
func Lock(f File) (func() error, error) {
	d, ok := f.(fder)
	if !ok || d.Fd() == ^uintptr(0) {
		return func() error { return nil }, nil
	}
	return lockFd(d.Fd())
}
