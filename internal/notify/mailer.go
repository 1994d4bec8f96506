// internal/notify/mailer.go
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	sdkses "github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"

	"hiring-coordinator/internal/common/aws"
	"hiring-coordinator/internal/common/config"
	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
)

// Mailer delivers a composed artifact to a single recipient.
type Mailer interface {
	Send(ctx context.Context, recipient string, artifact Artifact) error
}

// ValidEmail performs a light syntactic check; full RFC validation is
// left to the delivery provider.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if len(parts[0]) == 0 || len(parts[1]) == 0 {
		return false
	}
	return strings.Contains(parts[1], ".")
}

// --- SMTP delivery ---

type SMTPMailer struct {
	cfg     config.SMTPConfig
	from    string
	replyTo string
	logger  logger.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, notif config.NotificationConfig, log logger.Logger) *SMTPMailer {
	from := notif.FromEmail
	if from == "" {
		from = cfg.DefaultFrom
	}
	return &SMTPMailer{
		cfg:     cfg,
		from:    from,
		replyTo: notif.ReplyTo,
		logger:  log.WithFields(map[string]interface{}{"component": "smtp-mailer"}),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, recipient string, artifact Artifact) error {
	if !ValidEmail(recipient) {
		return errors.NewInvalidRequestError(fmt.Sprintf("invalid recipient email address: %s", recipient))
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}

	message := m.buildMessage(recipient, artifact)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	var err error
	if m.cfg.UseTLS {
		err = m.sendWithTLS(addr, auth, recipient, []byte(message))
	} else {
		err = smtp.SendMail(addr, auth, m.from, []string{recipient}, []byte(message))
	}
	if err != nil {
		return errors.NewNotificationSendFailedError(recipient, err)
	}

	m.logger.Info("email sent", map[string]interface{}{
		"to":      recipient,
		"subject": artifact.Subject,
	})
	return nil
}

func (m *SMTPMailer) buildMessage(recipient string, artifact Artifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	if m.replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", m.replyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", artifact.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(artifact.Body)
	return b.String()
}

func (m *SMTPMailer) sendWithTLS(addr string, auth smtp.Auth, recipient string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message body: %w", err)
	}
	return client.Quit()
}

// --- SES delivery ---

type SESMailer struct {
	client *aws.SESClient
	from   string
	logger logger.Logger
}

func NewSESMailer(client *aws.SESClient, fromEmail string, log logger.Logger) *SESMailer {
	return &SESMailer{
		client: client,
		from:   fromEmail,
		logger: log.WithFields(map[string]interface{}{"component": "ses-mailer"}),
	}
}

func (m *SESMailer) Send(ctx context.Context, recipient string, artifact Artifact) error {
	if !ValidEmail(recipient) {
		return errors.NewInvalidRequestError(fmt.Sprintf("invalid recipient email address: %s", recipient))
	}

	input := &sdkses.SendEmailInput{
		Source: awssdk.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(artifact.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: awssdk.String(artifact.Body)},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return errors.NewNotificationSendFailedError(recipient, err)
	}

	m.logger.Info("email sent", map[string]interface{}{
		"to":      recipient,
		"subject": artifact.Subject,
	})
	return nil
}
