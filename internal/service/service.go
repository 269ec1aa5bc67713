package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/amccague/zscore/internal/models"
	"github.com/amccague/zscore/internal/parser"
	"github.com/sirupsen/logrus"
)

// Runner invokes the candidate for a loan amount and returns its stdout lines
type Runner interface {
	Executable() string
	Run(ctx context.Context, amount int) ([]string, error)
}

// Recorder stores finished reports
type Recorder interface {
	SaveReport(ctx context.Context, report models.Report) (*models.Run, error)
}

// Notifier delivers finished reports
type Notifier interface {
	SendReport(report models.Report) error
}

// Option configures a Service
type Option func(*Service)

// WithCases replaces the default rubric
func WithCases(cases []Case) Option { return func(s *Service) { s.cases = cases } }

// WithRecorder stores every report produced by ScoreSubmission
func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

// WithNotifier sends every report produced by ScoreSubmission
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// Service scores a candidate executable against the loan rubric
type Service struct {
	runner   Runner
	log      *logrus.Logger
	cases    []Case
	recorder Recorder
	notifier Notifier
}

// NewService initializes a new scoring service
func NewService(runner Runner, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{runner: runner, log: log, cases: DefaultCases()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score evaluates every case in order. The first invocation failure aborts
// the run and is returned together with the cases scored so far.
func (s *Service) Score(ctx context.Context) (models.Report, error) {
	report := models.Report{
		Executable: s.runner.Executable(),
		Cases:      make([]models.CaseResult, 0, len(s.cases)),
		StartedAt:  time.Now(),
	}

	for _, c := range s.cases {
		result, err := s.evaluate(ctx, c)
		if err != nil {
			report.FinishedAt = time.Now()
			return report, fmt.Errorf("case %q: %w", c.Name, err)
		}
		report.Cases = append(report.Cases, result)
	}

	report.Score = Aggregate(report.Cases)
	report.FinishedAt = time.Now()
	s.log.Infof("Scored %s: %d%%", report.Executable, report.Score)
	return report, nil
}

// ScoreSubmission scores the candidate and never fails: any error or panic is
// logged and reported as an overall score of 0. A run interrupted by ctx is
// returned but neither recorded nor sent.
func (s *Service) ScoreSubmission(ctx context.Context) models.Report {
	report := s.scoreSafely(ctx)
	if ctx.Err() != nil {
		s.log.Warnf("Scoring of %s interrupted: %v", report.Executable, ctx.Err())
		return report
	}
	s.publish(ctx, report)
	return report
}

func (s *Service) scoreSafely(ctx context.Context) (report models.Report) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("stack", string(debug.Stack())).Errorf("Unable to score submission: %v", r)
			report = s.failed(report, fmt.Errorf("panic: %v", r))
		}
	}()

	report, err := s.Score(ctx)
	if err != nil {
		s.log.WithError(err).WithField("stack", string(debug.Stack())).Error("Unable to score submission")
		return s.failed(report, err)
	}
	return report
}

func (s *Service) failed(report models.Report, err error) models.Report {
	report.Executable = s.runner.Executable()
	report.Score = 0
	report.Error = err.Error()
	if report.FinishedAt.IsZero() {
		report.FinishedAt = time.Now()
	}
	return report
}

func (s *Service) evaluate(ctx context.Context, c Case) (models.CaseResult, error) {
	log := s.log.WithFields(logrus.Fields{"case": c.Name, "amount": c.Amount})

	start := time.Now()
	lines, err := s.runner.Run(ctx, c.Amount)
	if err != nil {
		return models.CaseResult{}, err
	}

	out, parseErr := parser.Parse(lines)
	if parseErr != nil {
		log.Debugf("No result: %v", parseErr)
	}

	score, diags := c.Grade(out)
	score = clamp(score, 0, c.MaxScore)
	if parseErr != nil && score < c.MaxScore {
		diags = append([]string{fmt.Sprintf("Unexpected output from submission, %v", parseErr)}, diags...)
	}

	log.Infof("Score %d/%d", score, c.MaxScore)
	return models.CaseResult{
		Name:        c.Name,
		Amount:      c.Amount,
		Score:       score,
		MaxScore:    c.MaxScore,
		Output:      out,
		Diagnostics: diags,
		DurationMs:  time.Since(start).Milliseconds(),
	}, nil
}

func (s *Service) publish(ctx context.Context, report models.Report) {
	if s.recorder != nil {
		run, err := s.recorder.SaveReport(ctx, report)
		if err != nil {
			s.log.Errorf("Failed to record run for %s: %v", report.Executable, err)
		} else {
			s.log.Infof("Run recorded: %s", run.ID)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.SendReport(report); err != nil {
			s.log.Errorf("Failed to send report for %s: %v", report.Executable, err)
		}
	}
}
