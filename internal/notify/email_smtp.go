package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/sprachraum/lead-platform/pkg/logging"
)

// implicitTLSPort is the SMTPS port; connections to it are TLS from the
// first byte. Any other port gets a STARTTLS upgrade after the greeting.
const implicitTLSPort = 465

// SMTPSender sends emails through a plain SMTP relay.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SMTPConfig holds configuration for the SMTP relay.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// NewSMTPSender creates a new SMTP email sender.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if cfg.Host == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Sprachraum"
	}
	return &SMTPSender{
		host:      cfg.Host,
		port:      cfg.Port,
		username:  cfg.Username,
		password:  cfg.Password,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SMTPSender) addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

func (s *SMTPSender) auth() smtp.Auth {
	return smtp.PlainAuth("", s.username, s.password, s.host)
}

// dial opens an SMTP session, negotiating TLS according to the port.
func (s *SMTPSender) dial(ctx context.Context) (*smtp.Client, error) {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", s.addr())
	if err != nil {
		return nil, fmt.Errorf("notify: dial %s: %w", s.addr(), err)
	}

	tlsCfg := &tls.Config{ServerName: s.host}

	if s.port == implicitTLSPort {
		conn = tls.Client(conn, tlsCfg)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: smtp handshake with %s: %w", s.addr(), err)
	}

	if s.port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsCfg); err != nil {
				client.Close()
				return nil, fmt.Errorf("notify: starttls with %s: %w", s.addr(), err)
			}
		}
	}

	return client, nil
}

// Verify performs a credential handshake (dial, EHLO, AUTH, QUIT) without
// sending anything.
func (s *SMTPSender) Verify(ctx context.Context) error {
	client, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Auth(s.auth()); err != nil {
		return fmt.Errorf("notify: smtp auth failed: %w", err)
	}

	return client.Quit()
}

// Send delivers one message over a fresh SMTP session.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	client, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Auth(s.auth()); err != nil {
		return fmt.Errorf("notify: smtp auth failed: %w", err)
	}
	if err := client.Mail(s.fromEmail); err != nil {
		return fmt.Errorf("notify: smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("notify: smtp rcpt to %s: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("notify: smtp data: %w", err)
	}
	if _, err := w.Write(s.encode(msg)); err != nil {
		w.Close()
		return fmt.Errorf("notify: smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("notify: smtp finish body: %w", err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("notify: smtp quit: %w", err)
	}

	s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject)
	return nil
}

// encode renders the RFC 5322 message bytes.
func (s *SMTPSender) encode(msg EmailMessage) []byte {
	contentType := "text/plain; charset=UTF-8"
	body := msg.Body
	if msg.HTML != "" {
		contentType = "text/html; charset=UTF-8"
		body = msg.HTML
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.fromName, s.fromEmail)
	if msg.ToName != "" {
		fmt.Fprintf(&b, "To: %s <%s>\r\n", msg.ToName, msg.To)
	} else {
		fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// Ensure interface compliance
var _ EmailSender = (*SMTPSender)(nil)
var _ TransportVerifier = (*SMTPSender)(nil)
