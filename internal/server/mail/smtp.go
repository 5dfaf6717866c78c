package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPMailer delivers messages over plain SMTP. Auth is optional: with an
// empty username the sender connects unauthenticated (e.g. a local relay).
// Every delivery is bounded by the configured timeout: the dial uses it and
// the connection carries it as a deadline, so a hung relay cannot block the
// caller past it.
type SMTPMailer struct {
	addr    string // host:port
	host    string
	from    string
	auth    smtp.Auth
	timeout time.Duration
}

func NewSMTPMailer(addr, from, username, password string, timeout time.Duration) *SMTPMailer {
	host := addr
	if i := strings.IndexByte(addr, ':'); i >= 0 {
		host = addr[:i]
	}
	m := &SMTPMailer{addr: addr, host: host, from: from, timeout: timeout}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	conn, err := net.DialTimeout("tcp", m.addr, time.Until(deadline))
	if err != nil {
		return fmt.Errorf("smtp dial error: %w", err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("smtp deadline error: %w", err)
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake error: %w", err)
	}
	defer c.Close()

	if err := m.deliver(c, msg); err != nil {
		return fmt.Errorf("smtp send error: %w", err)
	}
	return c.Quit()
}

func (m *SMTPMailer) deliver(c *smtp.Client, msg Message) error {
	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(m.auth); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(msg.To); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	if _, err := w.Write([]byte(b.String())); err != nil {
		return err
	}
	return w.Close()
}
