package mail

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// silentListener accepts connections but never speaks SMTP, simulating a
// hung relay.
func silentListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()
	return ln
}

func TestSMTPMailerSendTimesOutOnHungRelay(t *testing.T) {
	ln := silentListener(t)
	m := NewSMTPMailer(ln.Addr().String(), "no-reply@localhost", "", "", 100*time.Millisecond)

	start := time.Now()
	err := m.Send(context.Background(), Message{To: "a@example.com", Subject: "s", Body: "b"})
	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second, "send must give up at the configured deadline")
}

func TestSMTPMailerSendHonorsContextDeadline(t *testing.T) {
	ln := silentListener(t)
	m := NewSMTPMailer(ln.Addr().String(), "no-reply@localhost", "", "", time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.Send(ctx, Message{To: "a@example.com"})
	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second, "context deadline must cap the delivery")
}

func TestSMTPMailerSendCancelledContext(t *testing.T) {
	m := NewSMTPMailer("127.0.0.1:0", "no-reply@localhost", "", "", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, Message{To: "a@example.com"})
	require.ErrorIs(t, err, context.Canceled)
}
