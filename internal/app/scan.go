package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/five82/eftwatch/internal/config"
	"github.com/five82/eftwatch/internal/rotation"
)

// ScanOptions configure Scan.
type ScanOptions struct {
	ConfigPath string
	LogDir     string
	Out        io.Writer
}

// Scan prints the matching files of each category, newest first, and marks
// the one monitoring would pick.
func Scan(opts ScanOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	root, err := config.ResolveLogDir(opts.LogDir, cfg)
	if err != nil {
		return err
	}

	scanner := rotation.NewScanner(root, rotation.Patterns{
		Network:   cfg.NetworkPattern,
		Backend:   cfg.BackendPattern,
		Extension: cfg.Extension,
	})
	found, err := scanner.ScanAll()
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	fmt.Fprintf(opts.Out, "Log Folder: %s\n", root)
	for _, c := range rotation.Categories {
		candidates := found[c]
		fmt.Fprintf(opts.Out, "\n%s (%d)\n", c, len(candidates))
		if len(candidates) == 0 {
			fmt.Fprintln(opts.Out, "  none")
			continue
		}
		selected, _ := rotation.SelectLatest(candidates)
		rotation.Sort(candidates)
		for _, cand := range candidates {
			mark := " "
			if cand.Path == selected.Path {
				mark = "*"
			}
			fmt.Fprintf(opts.Out, "%s %s  %s\n", mark, cand.CreatedAt.Format(time.DateTime), cand.Path)
		}
	}
	return nil
}
