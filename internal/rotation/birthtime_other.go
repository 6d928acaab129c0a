//go:build !linux && !windows && !darwin && !freebsd && !netbsd

package rotation

import (
	"io/fs"
	"time"
)

// BirthTime falls back to the modification time.
func BirthTime(_ string, info fs.FileInfo) time.Time {
	return info.ModTime()
}
