package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Report summarizes one run.
type Report struct {
	Scanned int
	Wrapped int
	// Changed lists rewritten files (or, in check mode, files that would be
	// rewritten) in traversal order.
	Changed []string
}

type processor struct {
	annotator *Annotator
	check     bool
	progress  io.Writer
	logger    *slog.Logger

	mu      sync.Mutex
	changed map[string]int
}

// Run annotates every eligible file under cfg.Root. cfg must be normalized.
func Run(ctx context.Context, cfg Config, progress io.Writer, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	protect, err := ParseProtection(cfg.Protect)
	if err != nil {
		return nil, err
	}
	annotator, err := NewAnnotator(cfg.TokenExtensions, protect, logger)
	if err != nil {
		return nil, err
	}
	files, err := newWalker(cfg.Extensions, cfg.Ignore, logger).collect(cfg.Root)
	if err != nil {
		return nil, err
	}
	logger.Debug("collected documents", "root", cfg.Root, "count", len(files), "protect", protect.String())

	p := &processor{
		annotator: annotator,
		check:     cfg.Check,
		progress:  progress,
		logger:    logger,
		changed:   make(map[string]int),
	}
	if cfg.Jobs <= 1 {
		err = p.runSequential(ctx, files, cfg.KeepGoing)
	} else {
		err = p.runParallel(ctx, files, cfg.Jobs, cfg.KeepGoing)
	}

	report := &Report{Scanned: len(files)}
	for _, path := range files {
		if n, ok := p.changed[path]; ok {
			report.Changed = append(report.Changed, path)
			report.Wrapped += n
		}
	}
	return report, err
}

func (p *processor) runSequential(ctx context.Context, files []string, keepGoing bool) error {
	var errs []error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if err := p.processFile(path); err != nil {
			if !keepGoing {
				return err
			}
			p.logger.Warn("file failed", "path", path, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *processor) runParallel(ctx context.Context, files []string, jobs int, keepGoing bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var (
		errMu sync.Mutex
		errs  []error
	)
	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		path := path // per-iteration copy (Go <1.22 loop-variable semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := p.processFile(path)
			if err == nil || !keepGoing {
				return err
			}
			p.logger.Warn("file failed", "path", path, "err", err)
			errMu.Lock()
			errs = append(errs, err)
			errMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}

func (p *processor) processFile(path string) error {
	start := time.Now()
	p.printf("processing: %s\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return &FileError{Path: path, Op: "read", Err: err}
	}
	if !utf8.Valid(data) {
		return &FileError{Path: path, Op: "read", Err: ErrNotText}
	}
	content := string(data)
	updated, n := p.annotator.Annotate(content)
	if n == 0 || updated == content {
		p.logger.Debug("unchanged", "path", path, "dur", time.Since(start))
		return nil
	}

	if p.check {
		p.printf("would wrap %d filename(s): %s\n", n, path)
	} else {
		if err := writeFileAtomic(path, []byte(updated)); err != nil {
			return &FileError{Path: path, Op: "write", Err: err}
		}
		p.printf("wrapped %d filename(s): %s\n", n, path)
	}
	p.mu.Lock()
	p.changed[path] = n
	p.mu.Unlock()
	p.logger.Debug("annotated", "path", path, "wrapped", n, "dur", time.Since(start))
	return nil
}

func (p *processor) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.progress, format, args...)
}
