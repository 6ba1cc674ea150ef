// Package mail delivers report artifacts over authenticated SMTP.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"rasid/internal/ports"
)

// attachmentName is the display name recipients see; the on-disk path stays
// run-unique.
const attachmentName = "rasid_tenders_report.xlsx"

// Mailer sends reports through a fixed relay with STARTTLS and password auth.
type Mailer struct {
	host     string
	port     int
	username string
	from     string
	password string
}

var _ ports.DeliveryChannel = (*Mailer)(nil)

// NewMailer registers relay coordinates and sender credentials.
func NewMailer(host string, port int, username, password, from string) *Mailer {
	if from == "" {
		from = username
	}
	return &Mailer{host: host, port: port, username: username, password: password, from: from}
}

// Send attaches the artifact and delivers it to every recipient in one
// message. The session is transport-encrypted; plaintext SMTP is refused.
func (m *Mailer) Send(ctx context.Context, artifactPath string, to []string, subject, body string) error {
	if m.host == "" || m.username == "" || m.password == "" {
		return fmt.Errorf("mailer misconfigured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	msg.AttachFile(artifactPath, gomail.WithFileName(attachmentName))

	client, err := gomail.NewClient(m.host,
		gomail.WithPort(m.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.username),
		gomail.WithPassword(m.password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}
