// Package rotation decides which log file in a category is the live one.
//
// # Overview
//
// The producing application starts a fresh log file every so often and
// abandons the previous one. Two categories of files are tracked:
//
//   - Network: names containing "network-connection" and ending in ".log"
//   - Backend: names containing "backend" and ending in ".log"
//
// A Scanner walks the watched root and turns matching files into Candidates
// carrying their filesystem creation timestamp. SelectLatest picks the newest
// candidate and ShouldReplace decides whether a newly observed candidate
// should take over from the file currently being tailed.
//
// # Switching Rule
//
// A candidate replaces the current file only when there is no current file,
// when the current file no longer exists, or when the candidate was created
// strictly after it. Rediscovering the same file (from a notification and a
// periodic rescan, say) never causes a restart.
//
// # Creation Timestamps
//
// BirthTime reads the creation time the platform exposes: the Windows
// creation time, the BSD/Darwin birth time, or statx STATX_BTIME on Linux.
// Filesystems without a birth time fall back to the modification time.
package rotation
