package email

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/amccague/zscore/internal/config"
	"github.com/amccague/zscore/internal/models"
	"github.com/amccague/zscore/internal/report"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending score reports via SMTP
type Sender struct {
	cfg    *config.Config
	to     []string
	logger *logrus.Logger
}

// NewSender creates a new email sender for the given recipients
func NewSender(cfg *config.Config, to []string, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		to:     to,
		logger: logger,
	}
}

// SendReport emails the text report with the JUnit report attached
func (s *Sender) SendReport(r models.Report) error {
	e, err := s.buildMessage(r)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send report to %v: %v", s.to, err)
		return fmt.Errorf("failed to send report: %w", err)
	}

	s.logger.Infof("Report sent to %v: %s", s.to, e.Subject)
	return nil
}

func (s *Sender) buildMessage(r models.Report) (*email.Email, error) {
	if len(s.to) == 0 {
		return nil, fmt.Errorf("no report recipients configured")
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = s.to
	if r.Failed() {
		e.Subject = fmt.Sprintf("Scoring failed for %s", r.Executable)
	} else {
		e.Subject = fmt.Sprintf("Score for %s: %d%%", r.Executable, r.Score)
	}

	var body bytes.Buffer
	if r.Failed() {
		fmt.Fprintf(&body, "Unable to score submission: %s\n\n", r.Error)
	}
	if err := report.Write(&body, report.FormatText, r); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	e.Text = body.Bytes()

	var junit bytes.Buffer
	if err := report.Write(&junit, report.FormatJUnit, r); err != nil {
		return nil, fmt.Errorf("failed to render junit report: %w", err)
	}
	if _, err := e.Attach(&junit, "zscore-junit.xml", "application/xml"); err != nil {
		return nil, fmt.Errorf("failed to attach junit report: %w", err)
	}
	return e, nil
}
