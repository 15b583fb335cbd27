package notification

import (
	"fmt"
	"net/smtp"

	"github.com/quantado/backplot/pkg/core"
)

// Mail sends run summaries over SMTP. It implements core.Notifier.
type Mail struct {
	auth              smtp.Auth
	smtpServerPort    int
	smtpServerAddress string
	to                string
	from              string
}

// MailParams contains the parameters needed to initialize a Mail notifier.
type MailParams struct {
	SMTPServerPort    int
	SMTPServerAddress string
	To                string
	From              string
	Password          string
}

// NewMail creates a mail notifier with the provided parameters.
func NewMail(params MailParams) Mail {
	return Mail{
		from:              params.From,
		to:                params.To,
		smtpServerPort:    params.SMTPServerPort,
		smtpServerAddress: params.SMTPServerAddress,
		auth: smtp.PlainAuth(
			"",
			params.From,
			params.Password,
			params.SMTPServerAddress,
		),
	}
}

// Notify sends the message as a plain-text mail.
func (m Mail) Notify(message string) error {
	serverAddress := fmt.Sprintf("%s:%d", m.smtpServerAddress, m.smtpServerPort)

	body := fmt.Sprintf(
		"To: \"User\" <%s>\r\nFrom: \"Backplot\" <%s>\r\nSubject: backtest summary\r\n\r\n%s\r\n",
		m.to, m.from, message,
	)

	err := smtp.SendMail(serverAddress, m.auth, m.from, []string{m.to}, []byte(body))
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

var _ core.Notifier = (*Mail)(nil)
