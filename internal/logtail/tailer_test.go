package logtail

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func appendTo(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(data); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
}

func newLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network-connection_000.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func openTailer(t *testing.T, path string) *Tailer {
	t.Helper()
	tl, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = tl.Close() })
	return tl
}

func TestTailer_SkipsExistingContent(t *testing.T) {
	path := newLog(t, "old line 1\nold line 2\n")
	tl := openTailer(t, path)

	if _, err := tl.Next(); !errors.Is(err, ErrNoLine) {
		t.Fatalf("Next() error = %v, want ErrNoLine", err)
	}

	appendTo(t, path, "new line\n")
	line, err := tl.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if line != "new line" {
		t.Fatalf("Next() = %q, want %q", line, "new line")
	}
}

func TestTailer_DeliversLinesInOrder(t *testing.T) {
	path := newLog(t, "")
	tl := openTailer(t, path)

	appendTo(t, path, "a\r\nb\nc\n")
	for _, want := range []string{"a", "b", "c"} {
		got, err := tl.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got != want {
			t.Fatalf("Next() = %q, want %q", got, want)
		}
	}
	if _, err := tl.Next(); !errors.Is(err, ErrNoLine) {
		t.Fatalf("Next() error = %v, want ErrNoLine", err)
	}
}

func TestTailer_HoldsPartialLine(t *testing.T) {
	path := newLog(t, "")
	tl := openTailer(t, path)

	appendTo(t, path, "<--- Response HT")
	if _, err := tl.Next(); !errors.Is(err, ErrNoLine) {
		t.Fatalf("Next() error = %v, want ErrNoLine", err)
	}
	ready, err := tl.Ready()
	if err != nil || !ready {
		t.Fatalf("Ready() = %v, %v; want true, nil", ready, err)
	}

	appendTo(t, path, "TPS 200\n")
	line, err := tl.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if line != "<--- Response HTTPS 200" {
		t.Fatalf("Next() = %q", line)
	}
}

func TestTailer_ReadyDoesNotConsume(t *testing.T) {
	path := newLog(t, "")
	tl := openTailer(t, path)

	ready, err := tl.Ready()
	if err != nil || ready {
		t.Fatalf("Ready() = %v, %v; want false, nil", ready, err)
	}

	appendTo(t, path, "next\n")
	ready, err = tl.Ready()
	if err != nil || !ready {
		t.Fatalf("Ready() = %v, %v; want true, nil", ready, err)
	}
	line, err := tl.Next()
	if err != nil || line != "next" {
		t.Fatalf("Next() = %q, %v; want next, nil", line, err)
	}
}

func TestTailer_VanishedOnDelete(t *testing.T) {
	path := newLog(t, "")
	tl := openTailer(t, path)

	appendTo(t, path, "last\n")
	if err := os.Remove(path); err != nil {
		t.Skipf("cannot remove open file on this platform: %v", err)
	}

	// Buffered data is still delivered before the end of stream.
	line, err := tl.Next()
	if err != nil || line != "last" {
		t.Fatalf("Next() = %q, %v; want last, nil", line, err)
	}
	if _, err := tl.Next(); !errors.Is(err, ErrFileVanished) {
		t.Fatalf("Next() error = %v, want ErrFileVanished", err)
	}
}

func TestTailer_VanishedOnReplace(t *testing.T) {
	path := newLog(t, "")
	tl := openTailer(t, path)

	if err := os.Rename(path, path+".1"); err != nil {
		t.Skipf("cannot rename open file on this platform: %v", err)
	}
	if err := os.WriteFile(path, []byte("fresh\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := tl.Next(); !errors.Is(err, ErrFileVanished) {
		t.Fatalf("Next() error = %v, want ErrFileVanished", err)
	}
}

func TestTailer_TruncationRestartsFromTop(t *testing.T) {
	path := newLog(t, "0123456789\n")
	tl := openTailer(t, path)

	if err := os.WriteFile(path, []byte("short\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := tl.Next(); !errors.Is(err, ErrNoLine) {
		t.Fatalf("Next() error = %v, want ErrNoLine", err)
	}
	line, err := tl.Next()
	if err != nil || line != "short" {
		t.Fatalf("Next() = %q, %v; want short, nil", line, err)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.log"))
	if !errors.Is(err, ErrFileVanished) {
		t.Fatalf("Open() error = %v, want ErrFileVanished", err)
	}
}

func TestTailer_InfoIdentifiesFile(t *testing.T) {
	path := newLog(t, "")
	tl := openTailer(t, path)

	appendTo(t, path, "grows\n")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !os.SameFile(info, tl.Info()) {
		t.Fatalf("Info() does not match the file after a write")
	}
}
