// Package logtail reads log files that another process is still writing.
//
// # Overview
//
// Two readers are provided:
//
//  1. Tailer: follows a file from its end-of-file at open time and hands out
//     newly appended lines one at a time
//  2. Read: returns the last N lines of a file for previews
//
// # Tailing Contract
//
// Open positions the reader at end-of-file before returning, so content
// written before the call is never delivered and content written after it is
// never missed. Next is a polling call, not a blocking read:
//
//	line, err := t.Next()
//	switch {
//	case err == nil:
//		handle(line)
//	case errors.Is(err, logtail.ErrNoLine):
//		time.Sleep(backoff) // nothing new yet
//	case errors.Is(err, logtail.ErrFileVanished):
//		// end of stream: the file was deleted or rotated away
//	default:
//		// I/O fault: discard the tailer
//	}
//
// A file counts as vanished when its path no longer exists or now names a
// different file than the open handle (rename-and-recreate rotation).
//
// Partial lines are held back until their newline arrives. Trailing CR is
// trimmed so CRLF logs read the same as LF logs. A line longer than 1MB is
// delivered in 1MB pieces.
//
// # Sharing
//
// On Windows the file is opened with FILE_SHARE_DELETE in addition to read and
// write sharing so the producer can keep writing, renaming and deleting it.
// Other platforms need nothing beyond a read-only open.
//
// # Reading the Last Lines
//
// Read uses a ring buffer of size maxLines, one sequential pass and
// O(maxLines) memory. It returns nil, nil for files that do not exist.
package logtail
