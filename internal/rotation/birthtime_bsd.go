//go:build darwin || freebsd || netbsd

package rotation

import (
	"io/fs"
	"syscall"
	"time"
)

// BirthTime returns the file's birth time.
func BirthTime(_ string, info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok && st.Birthtimespec.Sec != 0 {
		return time.Unix(st.Birthtimespec.Unix())
	}
	return info.ModTime()
}
