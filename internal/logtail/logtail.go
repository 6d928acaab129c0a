package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxPreviewBytes caps how far back Read looks for line breaks.
const maxPreviewBytes = 4 * maxLineBytes

// Read returns the last maxLines lines of the file at path, oldest first.
// The file is read backwards from its end, so a large log costs no more than
// a small one. A trailing line without a newline is included.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := openShared(path)
	if err != nil {
		if errors.Is(err, errNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}

	end := info.Size()
	var tail []byte
	for end > 0 && bytes.Count(tail, []byte{'\n'}) <= maxLines && len(tail) < maxPreviewBytes {
		start := max(end-readChunk, 0)
		chunk := make([]byte, end-start)
		n, err := file.ReadAt(chunk, start)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read log: %w", err)
		}
		tail = append(chunk[:n], tail...)
		end = start
	}

	text := strings.TrimSuffix(string(tail), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	if end > 0 {
		// The first piece may start mid-line.
		lines = lines[1:]
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}
