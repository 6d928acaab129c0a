package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidLogDir means no usable log directory was found. It is fatal at
// startup.
var ErrInvalidLogDir = errors.New("invalid log directory")

// legacyPathFile is the single-line file the launcher writes next to the
// executable.
const legacyPathFile = "eft_logs_path.txt"

var (
	executablePath = os.Executable

	// commonLogDirs are default install locations of the game.
	commonLogDirs = []string{
		`C:\Battlestate Games\EFT\Logs`,
		`D:\Battlestate Games\EFT\Logs`,
		`E:\Battlestate Games\EFT\Logs`,
		`C:\Games\Escape from Tarkov\Logs`,
		`D:\Games\Escape from Tarkov\Logs`,
		`C:\Program Files\Battlestate Games\EFT\Logs`,
		`C:\Program Files (x86)\Battlestate Games\EFT\Logs`,
	}
)

// ResolveLogDir picks the directory to watch: the explicit argument, then
// the configured log_dir, then eft_logs_path.txt next to the executable or
// in its parent directory, then the common install locations. An explicit
// argument or configured value that is not a directory is an error rather
// than a reason to keep probing.
func ResolveLogDir(arg string, cfg Config) (string, error) {
	if strings.TrimSpace(arg) != "" {
		return requireDir(arg)
	}
	if strings.TrimSpace(cfg.LogDir) != "" {
		return requireDir(cfg.LogDir)
	}
	if dir, ok := fromLegacyFile(); ok {
		return requireDir(dir)
	}
	for _, dir := range commonLogDirs {
		if isDir(dir) {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w: no log directory given and none found", ErrInvalidLogDir)
}

func fromLegacyFile() (string, bool) {
	exe, err := executablePath()
	if err != nil {
		return "", false
	}
	exeDir := filepath.Dir(exe)
	for _, dir := range []string{exeDir, filepath.Dir(exeDir)} {
		data, err := os.ReadFile(filepath.Join(dir, legacyPathFile))
		if err != nil {
			continue
		}
		if path := strings.TrimSpace(string(data)); path != "" {
			return path, true
		}
	}
	return "", false
}

func requireDir(path string) (string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidLogDir, err)
	}
	if !isDir(expanded) {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidLogDir, expanded)
	}
	return expanded, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
