//go:build !windows

package fsutil

import (
	stderrors "errors"
	"fmt"
	"os"
	"syscall"
)

// openNoFollow opens path with O_NOFOLLOW so a symlink planted at the final
// component is refused. O_CLOEXEC keeps the descriptor out of the browser
// processes the CLI spawns.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, fmt.Errorf("refusing to write through symlink %s", path)
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}
