// Package notify delivers operator notifications by email.
//
// Delivery is best-effort: failures are logged here and handed back as part of
// an Outcome, never as an error the caller has to handle.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/textproto"

	"github.com/wneessen/go-mail"
	"gitlab.com/symplylade/portfolio-api/internal/config"
)

// SenderName is the display name on every outgoing notification.
const SenderName = "SymplyLade Portfolio"

// smtpAuthFailed is the SMTP reply code for rejected credentials.
const smtpAuthFailed = 535

var htmlBody = template.Must(template.New("notification").Parse(`<html>
  <body>
    <h2>{{.Subject}}</h2>
    <pre>{{.Body}}</pre>
  </body>
</html>
`))

// Notification is one email to send. An empty To means the operator address.
type Notification struct {
	To      string
	Subject string
	Body    string
}

// Outcome reports what happened to a Notification.
type Outcome struct {
	Recipient string
	Delivered bool
	Err       error
}

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) Outcome
}

// SMTPNotifier sends notifications over an authenticated STARTTLS session. A
// new connection is opened for every notification.
type SMTPNotifier struct {
	cfg config.SMTP
}

// NewSMTPNotifier creates a notifier for the given mail server. The configured
// Email is the sender, the login and the default recipient.
func NewSMTPNotifier(cfg config.SMTP) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

var _ Notifier = (*SMTPNotifier)(nil)

// Notify sends n and blocks until the server accepted or rejected it.
func (s *SMTPNotifier) Notify(ctx context.Context, n Notification) Outcome {
	if n.To == "" {
		n.To = s.cfg.Email
	}
	outcome := Outcome{Recipient: n.To}
	outcome.Err = s.send(ctx, n)
	outcome.Delivered = outcome.Err == nil
	report(outcome)
	return outcome
}

func (s *SMTPNotifier) send(ctx context.Context, n Notification) error {
	msg, err := s.compose(n)
	if err != nil {
		return err
	}
	client, err := s.client()
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail via %s:%d: %w", s.cfg.Server, s.cfg.Port, err)
	}
	return nil
}

// compose builds the two-part message: the plain text body and an HTML
// rendition of the same text.
func (s *SMTPNotifier) compose(n Notification) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(SenderName, s.cfg.Email); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(n.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if err := msg.ReplyTo(s.cfg.Email); err != nil {
		return nil, fmt.Errorf("invalid reply-to address: %w", err)
	}
	msg.Subject(n.Subject)
	msg.SetDate()
	msg.SetMessageID()

	html, err := renderHTML(n)
	if err != nil {
		return nil, err
	}
	msg.SetBodyString(mail.TypeTextPlain, n.Body)
	msg.AddAlternativeString(mail.TypeTextHTML, html)
	return msg, nil
}

func (s *SMTPNotifier) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Email),
		mail.WithPassword(s.cfg.Password),
	}
	if s.cfg.Debug {
		opts = append(opts, mail.WithDebugLog())
	}
	client, err := mail.NewClient(s.cfg.Server, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return client, nil
}

func renderHTML(n Notification) (string, error) {
	var buf bytes.Buffer
	if err := htmlBody.Execute(&buf, n); err != nil {
		return "", fmt.Errorf("render html body: %w", err)
	}
	return buf.String(), nil
}

func report(outcome Outcome) {
	if outcome.Err == nil {
		slog.Info("email sent", "to", outcome.Recipient)
		return
	}
	var reply *textproto.Error
	if errors.As(outcome.Err, &reply) && reply.Code == smtpAuthFailed {
		slog.Error("smtp authentication failed, check SMTP_EMAIL and SMTP_PASSWORD",
			"to", outcome.Recipient, "error", outcome.Err)
		return
	}
	slog.Error("error sending email", "to", outcome.Recipient, "error", outcome.Err)
}
