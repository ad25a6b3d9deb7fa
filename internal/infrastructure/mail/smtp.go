package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

const defaultSMTPTimeout = 30 * time.Second

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// Timeout bounds the dial and every SMTP command.
	Timeout time.Duration
}

type SMTPSender struct {
	host    string
	addr    string
	auth    sasl.Client
	timeout time.Duration
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	var auth sasl.Client
	if cfg.Username != "" {
		auth = sasl.NewPlainClient("", cfg.Username, cfg.Password)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	return &SMTPSender{
		host:    cfg.Host,
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth:    auth,
		timeout: timeout,
	}
}

// Send delivers raw to the relay. Cancelling ctx closes the connection, so a
// relay that stops answering cannot hold the caller.
func (s *SMTPSender) Send(ctx context.Context, from, to string, raw []byte) error {
	fromAddr, err := gomail.ParseAddress(from)
	if err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("dialing smtp relay: %w", err)
	}
	conn.SetDeadline(time.Now().Add(s.timeout))
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c := smtp.NewClient(conn)
	c.CommandTimeout = s.timeout
	c.SubmissionTimeout = s.timeout
	defer c.Close()

	if err := c.Hello("localhost"); err != nil {
		return s.fail(ctx, "greeting", err)
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return s.fail(ctx, "starttls", err)
		}
	}
	if s.auth != nil {
		if err := c.Auth(s.auth); err != nil {
			return s.fail(ctx, "auth", err)
		}
	}
	if err := c.SendMail(fromAddr.Address, []string{to}, bytes.NewReader(raw)); err != nil {
		return s.fail(ctx, "send", err)
	}
	return c.Quit()
}

// fail reports the context error when cancellation caused err.
func (s *SMTPSender) fail(ctx context.Context, step string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("smtp %s: %w", step, ctxErr)
	}
	return fmt.Errorf("smtp %s: %w", step, err)
}
