// Package invoker runs the candidate executable and collects what it prints.
package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultDataFile = "market.csv"
	DefaultTimeout  = 30 * time.Second

	// waitDelay bounds how long output pipes are drained after the candidate
	// is killed or exits while a child still holds them open.
	waitDelay = 2 * time.Second
)

// ErrTimeout is returned when the candidate does not exit within the timeout.
var ErrTimeout = errors.New("candidate did not terminate in time")

// Config describes how the candidate is launched
type Config struct {
	Executable string
	DataFile   string
	Dir        string // working directory, empty for the current one
	Timeout    time.Duration
}

// Invoker starts the candidate once per requested amount
type Invoker struct {
	cfg Config
	log *logrus.Logger
}

// New creates an Invoker, filling in defaults for an empty data file or timeout.
// A relative executable path is resolved against the current directory, not Dir.
func New(cfg Config, log *logrus.Logger) *Invoker {
	if cfg.DataFile == "" {
		cfg.DataFile = DefaultDataFile
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dir != "" && !filepath.IsAbs(cfg.Executable) && strings.ContainsRune(cfg.Executable, filepath.Separator) {
		if abs, err := filepath.Abs(cfg.Executable); err == nil {
			cfg.Executable = abs
		}
	}
	return &Invoker{cfg: cfg, log: log}
}

// Executable returns the path of the candidate being run
func (i *Invoker) Executable() string {
	return i.cfg.Executable
}

// Run invokes `<executable> <dataFile> <amount>`, waits for it to exit and
// returns every stdout line. The exit status is not inspected.
func (i *Invoker) Run(ctx context.Context, amount int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, i.cfg.Executable, i.cfg.DataFile, strconv.Itoa(amount))
	cmd.Dir = i.cfg.Dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("amount %d: %w after %s", amount, ErrTimeout, i.cfg.Timeout)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("amount %d: %w", amount, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			i.log.Debugf("Candidate exited with status %d for amount %d", exitErr.ExitCode(), amount)
		case errors.Is(err, exec.ErrWaitDelay):
			i.log.Debugf("Candidate left output pipes open for amount %d", amount)
		default:
			return nil, fmt.Errorf("failed to run %s: %w", i.cfg.Executable, err)
		}
	}

	if stderr.Len() > 0 {
		i.log.Debugf("Candidate stderr for amount %d: %s", amount, stderr.String())
	}

	lines := splitLines(stdout.Bytes())

	i.log.WithFields(logrus.Fields{
		"amount":      amount,
		"lines":       len(lines),
		"duration_ms": elapsed.Milliseconds(),
	}).Debug("Candidate finished")

	return lines, nil
}

// splitLines splits output on '\n' with no limit on line length. A final
// newline does not start another line and a trailing '\r' is dropped.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
