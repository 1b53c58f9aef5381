package notify

import (
	"log"
	"time"

	gomail "gopkg.in/mail.v2"
)

// EmailConfig holds SMTP configuration for deal alert delivery.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string // falls back to SMTPUser
	ToEmail    string
}

// Configured reports whether enough is set to actually deliver email.
func (c EmailConfig) Configured() bool {
	return c.SMTPServer != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.ToEmail != ""
}

// EmailSender delivers deal alerts via SMTP. When the configuration is
// incomplete, or delivery is suppressed, every send is a silent no-op so
// the scan can always hand alerts over without checking first.
type EmailSender struct {
	cfg     EmailConfig
	enabled bool
}

// NewEmailSender creates a sender. suppress disables delivery even with a
// complete configuration (dry runs).
func NewEmailSender(cfg EmailConfig, suppress bool) *EmailSender {
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}
	return &EmailSender{cfg: cfg, enabled: cfg.Configured() && !suppress}
}

// Enabled reports whether sends will actually go out.
func (s *EmailSender) Enabled() bool {
	return s.enabled
}

// Send delivers a rendered alert. Freshly rendered alerts carry an HTML
// part with the plain text as fallback; alerts replayed from the
// quiet-hours queue are text only.
func (s *EmailSender) Send(msg *RenderedMessage) error {
	if !s.enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	dialer := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(m); err != nil {
		log.Printf("Email error: failed to send to %s (Subject: %s): %v", s.cfg.ToEmail, msg.Subject, err)
		return err
	}

	log.Printf("Email sent: %s", msg.Subject)
	return nil
}

// SendPlain delivers a text-only email. Queued notifications persist only
// subject and body, so this is what the quiet-hours flush uses.
func (s *EmailSender) SendPlain(subject, body string) error {
	return s.Send(&RenderedMessage{Subject: subject, Text: body})
}
