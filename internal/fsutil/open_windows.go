//go:build windows

package fsutil

import "os"

// openNoFollow opens path for writing. O_NOFOLLOW is not available on
// Windows, where creating symlinks needs elevated privileges anyway.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}
