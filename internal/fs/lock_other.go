//go:build !unix

package fs

// Advisory locks are only available on unix platforms.
func lockFd(uintptr) (func() error, error) {
	return func() error { return nil }, nil
}
