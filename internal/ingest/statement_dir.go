package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"settlecheck/internal/normalize"
)

// ReadStatementDir walks a directory tree of daily statement CSV exports and
// concatenates every file's rows. The bank delivers one file per day in
// arbitrary subfolders, so the whole tree is scanned; non-CSV files are
// skipped. Headers vary in casing between exports and are lower-cased here.
func ReadStatementDir(ctx context.Context, dir string) ([]normalize.Row, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return contextErr(ctx)
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan statement directory %s: %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no statement files found under %s", dir)
	}

	slog.Info("Reading statement files", "dir", dir, "files", len(files))
	bar := progressbar.Default(int64(len(files)), "reading statements")

	var rows []normalize.Row
	for _, path := range files {
		if err := contextErr(ctx); err != nil {
			return nil, err
		}

		fileRows, err := ReadCSV(path)
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return rows, nil
}
