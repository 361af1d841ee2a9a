// Package email sends workflow notifications over SMTP. When no server is
// configured, New returns a console mailer that logs instead of sending,
// which keeps development and tests network-free.
package email

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"time"

	"github.com/unigate-dev/unigate/internal/config"
	"github.com/unigate-dev/unigate/internal/errors"
	"github.com/unigate-dev/unigate/internal/logger"
)

type Mailer interface {
	Send(recipientEmail, subject, body string) error
	IsCorrect(email string) error
}

func New(cfg *config.Smtp) Mailer {
	if cfg.Server == "" {
		return &Console{}
	}
	return &Smtp{
		config: cfg,
		auth:   smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Server),
	}
}

// Console logs messages instead of delivering them.
type Console struct{}

func (c *Console) IsCorrect(email string) error {
	return isCorrect(email)
}

func (c *Console) Send(recipientEmail, subject, body string) error {
	logger.Log.Info("email (console mailer)",
		"to", recipientEmail,
		"subject", subject,
		"body", body)
	return nil
}

// Smtp delivers over SMTP, implicit TLS on port 465, STARTTLS otherwise.
type Smtp struct {
	config *config.Smtp
	auth   smtp.Auth
}

func isCorrect(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.Validation(err.Error())
	}
	return nil
}

func (e *Smtp) IsCorrect(email string) error {
	return isCorrect(email)
}

func (e *Smtp) Send(recipientEmail, subject, body string) error {
	msg := e.buildMessage(recipientEmail, subject, body)
	address := fmt.Sprintf("%s:%d", e.config.Server, e.config.Port)

	if e.config.Port == 465 {
		return e.sendImplicitTLS(address, recipientEmail, msg)
	}
	return e.sendSTARTTLS(address, recipientEmail, msg)
}

func (e *Smtp) timeout() time.Duration {
	timeout := time.Duration(e.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return timeout
}

func (e *Smtp) sendImplicitTLS(address, recipientEmail string, msg []byte) error {
	tlsConfig := &tls.Config{ServerName: e.config.Server}

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: e.timeout()}, "tcp", address, tlsConfig)
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server (implicit TLS)", "address", address, "error", err)
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.config.Server)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	return e.sendViaClient(client, recipientEmail, msg)
}

func (e *Smtp) sendSTARTTLS(address, recipientEmail string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", address, e.timeout())
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server", "address", address, "error", err)
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.config.Server)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: e.config.Server}
	if err = client.StartTLS(tlsConfig); err != nil {
		logger.Log.Error("failed to start TLS", "error", err)
		return err
	}

	return e.sendViaClient(client, recipientEmail, msg)
}

func (e *Smtp) sendViaClient(client *smtp.Client, recipientEmail string, msg []byte) error {
	if err := client.Auth(e.auth); err != nil {
		logger.Log.Error("SMTP authentication failed", "error", err)
		return err
	}
	if err := client.Mail(e.config.Username); err != nil {
		logger.Log.Error("failed to set sender", "error", err)
		return err
	}
	if err := client.Rcpt(recipientEmail); err != nil {
		logger.Log.Error("failed to set recipient", "recipient", recipientEmail, "error", err)
		return err
	}

	w, err := client.Data()
	if err != nil {
		logger.Log.Error("failed to get data writer", "error", err)
		return err
	}
	if _, err = w.Write(msg); err != nil {
		logger.Log.Error("failed to write message", "error", err)
		return err
	}
	if err = w.Close(); err != nil {
		logger.Log.Error("failed to close data writer", "error", err)
		return err
	}

	return client.Quit()
}

func (e *Smtp) buildMessage(recipient, subject, body string) []byte {
	encodedSubject := mime.QEncoding.Encode("utf-8", subject)
	encodedSenderName := mime.QEncoding.Encode("utf-8", e.config.SenderName)
	date := time.Now().Format(time.RFC1123Z)

	return fmt.Appendf(nil,
		"Date: %s\r\n"+
			"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s",
		date, recipient, encodedSenderName, e.config.Username, encodedSubject, body,
	)
}
