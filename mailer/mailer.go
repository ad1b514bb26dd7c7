// Package mailer sends time-off decision notifications over SMTP. The mailer
// is a no-op when no SMTP host is configured.
package mailer

import (
	"fmt"
	"net/smtp"

	"teamcap/config"

	"github.com/rs/zerolog"
)

type Mailer struct {
	cfg config.SMTPConfig
	log zerolog.Logger
}

func New(cfg config.SMTPConfig, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

// SendDecision notifies the request owner about an approval or rejection.
// Failures are logged, not surfaced: notification is best-effort and must
// never fail the decision itself.
func (m *Mailer) SendDecision(to, ownerName, decision, startDate, endDate string) {
	if !m.Enabled() || to == "" {
		return
	}

	subject := fmt.Sprintf("Time-off request %s", decision)
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour time-off request for %s to %s has been %s.\r\n",
		ownerName, startDate, endDate, decision)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, to, subject, body))

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		m.log.Warn().Err(err).Str("to", to).Msg("failed to send decision notification")
	}
}
