//go:build windows

package rotation

import (
	"io/fs"
	"syscall"
	"time"
)

// BirthTime returns the NTFS creation time.
func BirthTime(_ string, info fs.FileInfo) time.Time {
	if data, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, data.CreationTime.Nanoseconds())
	}
	return info.ModTime()
}
