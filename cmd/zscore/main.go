package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/amccague/zscore/internal/config"
	"github.com/amccague/zscore/internal/invoker"
	"github.com/amccague/zscore/internal/models"
	"github.com/amccague/zscore/internal/report"
	"github.com/amccague/zscore/internal/repository"
	"github.com/amccague/zscore/internal/service"
	"github.com/amccague/zscore/internal/utils/email"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// app carries configuration and the logger between commands
type app struct {
	cfg *config.Config
	log *logrus.Logger

	format     string
	reportPath string
	history    bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:   "zscore <executable>",
		Short: "Score a loan calculator submission",
		Long: `zscore runs a candidate loan calculator against a fixed rubric and prints
a percentage score.

The candidate is invoked as "<executable> market.csv <amount>" once per case and
must print the requested amount, interest rate, monthly repayment and total
repayment as the last token of four lines. The final output line has the form
FS_SCORE:<n>%.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			log, err := newLogger(a.cfg.LogLevel, a.cfg.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup := a.buildService(cmd.Context(), args[0])
			defer cleanup()

			r := svc.ScoreSubmission(cmd.Context())
			if err := cmd.Context().Err(); err != nil {
				return fmt.Errorf("scoring interrupted: %w", err)
			}
			return a.emit(cmd.OutOrStdout(), r)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.DataFile, "data-file", cfg.DataFile, "data file passed to the candidate")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "maximum run time of one candidate invocation")
	flags.StringVar(&cfg.WorkDir, "workdir", cfg.WorkDir, "working directory for the candidate")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&cfg.HistoryDriver, "history-driver", cfg.HistoryDriver, "history database driver (sqlite, postgres)")
	flags.StringVar(&cfg.HistoryDSN, "history-dsn", cfg.HistoryDSN, "history database DSN")
	flags.StringSliceVar(&cfg.NotifyTo, "notify", cfg.NotifyTo, "email each report to these addresses")

	root.Flags().StringVar(&a.format, "format", string(report.FormatJSON), "format of the --report file (text, json, yaml, junit)")
	root.Flags().StringVar(&a.reportPath, "report", "", "also write the report to this file")
	root.Flags().BoolVar(&a.history, "history", false, "record the run in the history database")

	root.AddCommand(newWatchCmd(a), newHistoryCmd(a))
	return root
}

func newLogger(level, format string, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(logLevel)
	return logger, nil
}

// buildService wires the invoker and the optional history and email sinks.
// Sinks that cannot be set up are logged and skipped so a score is always produced.
func (a *app) buildService(ctx context.Context, executable string) (*service.Service, func()) {
	inv := invoker.New(invoker.Config{
		Executable: executable,
		DataFile:   a.cfg.DataFile,
		Dir:        a.cfg.WorkDir,
		Timeout:    a.cfg.Timeout,
	}, a.log)

	var opts []service.Option
	cleanup := func() {}

	if a.history {
		repo, closeDB, err := a.openHistory(ctx)
		if err != nil {
			a.log.Errorf("History disabled: %v", err)
		} else {
			opts = append(opts, service.WithRecorder(repo))
			cleanup = closeDB
		}
	}
	if len(a.cfg.NotifyTo) > 0 {
		opts = append(opts, service.WithNotifier(email.NewSender(a.cfg, a.cfg.NotifyTo, a.log)))
	}

	return service.NewService(inv, a.log, opts...), cleanup
}

func (a *app) openHistory(ctx context.Context) (*repository.Repository, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := repository.Open(ctx, a.cfg.HistoryDriver, a.cfg.HistoryDSN)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewRepository(db, a.cfg.HMACSecret), func() { db.Close() }, nil
}

// emit prints the text report and writes the optional report file
func (a *app) emit(stdout io.Writer, r models.Report) error {
	if err := report.Write(stdout, report.FormatText, r); err != nil {
		return err
	}
	if a.reportPath == "" {
		return nil
	}

	format, err := report.ParseFormat(a.format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(a.reportPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(a.reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := report.Write(f, format, r); err != nil {
		return err
	}
	a.log.Infof("Report written to %s", a.reportPath)
	return nil
}
