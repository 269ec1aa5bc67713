package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/amccague/zscore/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingScorer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingScorer) ScoreSubmission(context.Context) models.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return models.Report{Executable: "./quote", Score: c.calls}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func runAsync(t *testing.T, w *Watcher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return cancel, done
}

func TestRun_RequiresTrigger(t *testing.T) {
	w := New(&countingScorer{}, Options{Path: "./quote"}, nil, quietLogger())
	assert.ErrorContains(t, w.Run(context.Background()), "nothing to watch")
}

func TestRun_InvalidSchedule(t *testing.T) {
	w := New(&countingScorer{}, Options{Path: "./quote", Schedule: "every tuesday"}, nil, quietLogger())
	assert.ErrorContains(t, w.Run(context.Background()), "invalid schedule")
}

func TestRun_Schedule(t *testing.T) {
	var mu sync.Mutex
	var scores []int
	handle := func(r models.Report) {
		mu.Lock()
		scores = append(scores, r.Score)
		mu.Unlock()
	}

	w := New(&countingScorer{}, Options{Path: "./quote", Schedule: "@every 1s"}, handle, quietLogger())
	cancel, done := runAsync(t, w)

	require.Eventually(t, func() bool { return w.Runs() >= 2 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, scores[:2])
}

func TestRun_OnChange(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "quote")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	other := filepath.Join(dir, "notes.txt")

	w := New(&countingScorer{}, Options{Path: exe, OnChange: true, Debounce: 50 * time.Millisecond}, nil, quietLogger())
	cancel, done := runAsync(t, w)
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	require.Eventually(t, func() bool { return w.Runs() == 1 }, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, w.Runs())

	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\necho 1000\n"), 0o755))
	require.Eventually(t, func() bool { return w.Runs() >= 2 }, 2*time.Second, 20*time.Millisecond)
}

type interruptedScorer struct {
	cancel context.CancelFunc
}

func (s *interruptedScorer) ScoreSubmission(context.Context) models.Report {
	s.cancel()
	return models.Report{Executable: "./quote", Error: "amount 1000: context canceled"}
}

func TestScore_InterruptedRunNotHandled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := 0
	w := New(&interruptedScorer{cancel: cancel}, Options{Path: "./quote", Schedule: "@every 1s"},
		func(models.Report) { handled++ }, quietLogger())

	w.score(ctx, "schedule")
	assert.Equal(t, 0, handled)
	assert.Equal(t, 0, w.Runs())
}
