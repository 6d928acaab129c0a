package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

const (
	maxLineBytes = 1024 * 1024
	readChunk    = 32 * 1024
)

var (
	// ErrNoLine means nothing new has been appended yet. Back off and retry.
	ErrNoLine = errors.New("no new line")
	// ErrFileVanished ends the stream: the file was deleted or rotated away.
	ErrFileVanished = errors.New("log file vanished")

	errNotExist = fs.ErrNotExist
)

// Tailer hands out lines appended to a file after Open. It is not safe for
// concurrent use; a single goroutine owns it.
type Tailer struct {
	path   string
	file   *os.File
	info   fs.FileInfo
	offset int64
	buf    []byte
	chunk  []byte
}

// Open opens path for shared reading positioned at its current end.
func Open(path string) (*Tailer, error) {
	f, err := openShared(path)
	if err != nil {
		if errors.Is(err, errNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, ErrFileVanished)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}
	return &Tailer{
		path:   path,
		file:   f,
		info:   info,
		offset: offset,
		chunk:  make([]byte, readChunk),
	}, nil
}

// Path returns the file being tailed.
func (t *Tailer) Path() string {
	return t.path
}

// Info returns the file information captured at Open.
func (t *Tailer) Info() fs.FileInfo {
	return t.info
}

// Offset returns the number of bytes read from the file so far, counting
// from the start of the file.
func (t *Tailer) Offset() int64 {
	return t.offset
}

// Next returns the next complete line. It returns ErrNoLine when nothing new
// is available and ErrFileVanished once the file is gone. Any other error is
// an I/O fault and the tailer should be discarded.
func (t *Tailer) Next() (string, error) {
	if line, ok := t.pop(); ok {
		return line, nil
	}
	if err := t.fill(); err != nil {
		return "", err
	}
	if line, ok := t.pop(); ok {
		return line, nil
	}
	if err := t.checkFile(); err != nil {
		return "", err
	}
	return "", ErrNoLine
}

// Ready reports whether any data beyond the last returned line has arrived,
// complete or not, without consuming it.
func (t *Tailer) Ready() (bool, error) {
	if len(t.buf) > 0 {
		return true, nil
	}
	if err := t.fill(); err != nil {
		return false, err
	}
	return len(t.buf) > 0, nil
}

// Close releases the file handle.
func (t *Tailer) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

func (t *Tailer) fill() error {
	if t.file == nil {
		return fmt.Errorf("read %s: %w", t.path, os.ErrClosed)
	}
	for {
		n, err := t.file.Read(t.chunk)
		if n > 0 {
			t.buf = append(t.buf, t.chunk[:n]...)
			t.offset += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", t.path, err)
		}
		if n < len(t.chunk) || len(t.buf) >= maxLineBytes {
			return nil
		}
	}
}

func (t *Tailer) pop() (string, bool) {
	i := bytes.IndexByte(t.buf, '\n')
	if i < 0 {
		if len(t.buf) >= maxLineBytes {
			line := string(t.buf[:maxLineBytes])
			n := copy(t.buf, t.buf[maxLineBytes:])
			t.buf = t.buf[:n]
			return line, true
		}
		return "", false
	}
	line := string(bytes.TrimSuffix(t.buf[:i], []byte{'\r'}))
	n := copy(t.buf, t.buf[i+1:])
	t.buf = t.buf[:n]
	return line, true
}

// checkFile runs when the reader is idle. Stat failures other than a missing
// path are treated as transient.
func (t *Tailer) checkFile() error {
	info, err := os.Stat(t.path)
	if err != nil {
		if errors.Is(err, errNotExist) {
			return fmt.Errorf("%s: %w", t.path, ErrFileVanished)
		}
		return nil
	}
	if !os.SameFile(info, t.info) {
		return fmt.Errorf("%s replaced: %w", t.path, ErrFileVanished)
	}
	if info.Size() < t.offset {
		// Truncated in place; start over from the top.
		if _, err := t.file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("seek %s: %w", t.path, err)
		}
		t.offset = 0
		t.buf = t.buf[:0]
	}
	return nil
}
