//go:build linux

package rotation

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// BirthTime returns the file's creation time from statx, or its modification
// time when the filesystem does not record one.
func BirthTime(path string, info fs.FileInfo) time.Time {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_DONT_SYNC, unix.STATX_BTIME, &stx)
	if err == nil && stx.Mask&unix.STATX_BTIME != 0 && stx.Btime.Sec != 0 {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
	}
	return info.ModTime()
}
