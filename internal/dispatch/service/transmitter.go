package service

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	adomain "github.com/formrelay/relay/internal/accounts/domain"
	"github.com/formrelay/relay/internal/config"
	domain "github.com/formrelay/relay/internal/dispatch/domain"
)

// SMTPTransmitter opens one authenticated session per call. Secure accounts
// use implicit TLS; otherwise it upgrades via STARTTLS when the server
// advertises it and continues in plaintext when it does not.
type SMTPTransmitter struct {
	dialTimeout    time.Duration
	commandTimeout time.Duration
	insecureTLS    bool
}

func NewSMTPTransmitter(cfg config.Config) *SMTPTransmitter {
	return &SMTPTransmitter{
		dialTimeout:    cfg.SMTPDialTimeout,
		commandTimeout: cfg.SMTPCommandTimeout,
		insecureTLS:    cfg.SMTPInsecureTLS,
	}
}

var _ domain.Transmitter = (*SMTPTransmitter)(nil)
var _ adomain.ConnectionVerifier = (*SMTPTransmitter)(nil)

func (t *SMTPTransmitter) tlsConfig(host string) *tls.Config {
	return &tls.Config{ServerName: host, InsecureSkipVerify: t.insecureTLS}
}

// connect dials, negotiates TLS and authenticates. The caller owns the
// returned client and must Quit or Close it.
func (t *SMTPTransmitter) connect(ctx context.Context, account adomain.MailAccount, password string) (*smtp.Client, error) {
	addr := net.JoinHostPort(account.Host, strconv.Itoa(account.Port))
	dialer := &net.Dialer{Timeout: t.dialTimeout}

	var c *smtp.Client
	if account.Secure {
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, t.tlsConfig(account.Host))
		if err != nil {
			return nil, err
		}
		c = smtp.NewClient(conn)
	} else {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		c = smtp.NewClient(conn)
	}
	c.CommandTimeout = t.commandTimeout

	if !account.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(t.tlsConfig(account.Host)); err != nil {
				c.Close()
				return nil, err
			}
		}
	}

	if err := c.Auth(sasl.NewPlainClient("", account.Username, password)); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Verify performs the full connect and auth handshake without sending mail.
func (t *SMTPTransmitter) Verify(ctx context.Context, account adomain.MailAccount, password string) error {
	c, err := t.connect(ctx, account, password)
	if err != nil {
		return err
	}
	if err := c.Noop(); err != nil {
		c.Close()
		return err
	}
	return c.Quit()
}

// Send transmits one message and returns its Message-ID.
func (t *SMTPTransmitter) Send(ctx context.Context, account adomain.MailAccount, password string, msg domain.OutboundMessage) (string, error) {
	raw, id := buildMIME(msg, time.Now())

	c, err := t.connect(ctx, account, password)
	if err != nil {
		return "", err
	}
	if err := c.SendMail(msg.FromEmail, []string{msg.To}, strings.NewReader(raw)); err != nil {
		c.Close()
		return "", err
	}
	if err := c.Quit(); err != nil {
		// The message was accepted; a noisy QUIT is not a delivery failure.
		c.Close()
	}
	return id, nil
}
