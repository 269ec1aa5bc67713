// Package watch re-scores a candidate on a schedule or whenever its
// executable changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/amccague/zscore/internal/models"
	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultDebounce = 500 * time.Millisecond

// Scorer produces a report for the watched executable
type Scorer interface {
	ScoreSubmission(ctx context.Context) models.Report
}

// Options selects what triggers a new scoring run
type Options struct {
	Path     string // executable to watch for changes
	Schedule string // cron expression, e.g. "@every 5m"; empty disables
	OnChange bool
	Debounce time.Duration
}

// Watcher triggers scoring runs; runs never overlap
type Watcher struct {
	scorer Scorer
	opts   Options
	handle func(models.Report)
	log    *logrus.Logger

	mu   sync.Mutex
	runs int
}

// New creates a Watcher. handle receives every report, in order.
func New(scorer Scorer, opts Options, handle func(models.Report), log *logrus.Logger) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	return &Watcher{scorer: scorer, opts: opts, handle: handle, log: log}
}

// Runs returns how many scoring runs have completed
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Run scores once, then keeps scoring on every trigger until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if w.opts.Schedule == "" && !w.opts.OnChange {
		return errors.New("nothing to watch: set a schedule or enable on-change")
	}

	var sched *cron.Cron
	if w.opts.Schedule != "" {
		sched = cron.New()
		if _, err := sched.AddFunc(w.opts.Schedule, func() { w.score(ctx, "schedule") }); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", w.opts.Schedule, err)
		}
	}

	var fsw *fsnotify.Watcher
	if w.opts.OnChange {
		var err error
		fsw, err = fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer fsw.Close()
		// Watch the directory: rebuilds usually replace the file.
		if err := fsw.Add(filepath.Dir(w.opts.Path)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", w.opts.Path, err)
		}
	}

	w.score(ctx, "start")

	if sched != nil {
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
		w.log.Infof("Scoring %s on schedule %q", w.opts.Path, w.opts.Schedule)
	}
	if fsw == nil {
		<-ctx.Done()
		return nil
	}

	w.log.Infof("Scoring %s on change", w.opts.Path)
	return w.loop(ctx, fsw)
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) error {
	target := filepath.Clean(w.opts.Path)
	debounce := time.NewTimer(w.opts.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Chmod) == 0 {
				continue
			}
			w.log.Debugf("Change detected: %s %s", event.Op, event.Name)
			debounce.Reset(w.opts.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Errorf("File watcher error: %v", err)

		case <-debounce.C:
			w.score(ctx, "change")
		}
	}
}

func (w *Watcher) score(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.log.Debugf("Scoring run triggered by %s", trigger)
	r := w.scorer.ScoreSubmission(ctx)
	if ctx.Err() != nil {
		return
	}
	w.runs++
	if w.handle != nil {
		w.handle(r)
	}
}
