package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// walker collects documentation files under a root directory.
type walker struct {
	exts    map[string]struct{}
	ignored map[string]struct{}
	logger  *slog.Logger
}

func newWalker(exts, ignored []string, logger *slog.Logger) *walker {
	w := &walker{
		exts:    make(map[string]struct{}, len(exts)),
		ignored: make(map[string]struct{}, len(ignored)),
		logger:  logger,
	}
	for _, ext := range exts {
		w.exts[ext] = struct{}{}
	}
	for _, name := range ignored {
		w.ignored[name] = struct{}{}
	}
	return w
}

// collect returns matching files in lexical, depth-first order. A symlinked
// root is followed; symlinks and other non-regular files below it are
// skipped. Returned paths are rooted at root as given.
func (w *walker) collect(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if resolved != filepath.Clean(root) {
		w.logger.Debug("following symlinked root", "root", root, "target", resolved)
	}

	var files []string
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == resolved {
				return nil
			}
			if _, ok := w.ignored[d.Name()]; ok {
				w.logger.Debug("skipping directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := w.exts[filepath.Ext(d.Name())]; !ok {
			return nil
		}
		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.Join(root, rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}
