//go:build unix

package usecase

import "golang.org/x/sys/unix"

// isExecutable reports whether the current user may execute path.
func isExecutable(path string) bool {
	return unix.Access(path, unix.X_OK) == nil
}
