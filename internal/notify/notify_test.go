package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/symplylade/portfolio-api/internal/config"
)

func testConfig() config.SMTP {
	return config.SMTP{
		Server:   "smtp.example.com",
		Port:     587,
		Email:    "owner@example.com",
		Password: "app-password",
	}
}

// closedPort returns a local port on which nothing listens.
func closedPort(t *testing.T) int {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

// TestCompose checks the headers and both parts of a notification.
func TestCompose(t *testing.T) {
	notifier := NewSMTPNotifier(testConfig())
	msg, err := notifier.compose(Notification{
		To:      "owner@example.com",
		Subject: "New Portfolio Message",
		Body:    "Name: Erika",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "Subject: New Portfolio Message")
	assert.Contains(t, raw, SenderName)
	assert.Contains(t, raw, "Reply-To:")
	assert.Contains(t, raw, "owner@example.com")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "Name: Erika")
	assert.Contains(t, raw, "<h2>New Portfolio Message</h2>")
}

func TestComposeInvalidAddresses(t *testing.T) {
	unconfigured := NewSMTPNotifier(config.SMTP{Server: "smtp.example.com", Port: 587})
	_, err := unconfigured.compose(Notification{To: "owner@example.com", Subject: "s", Body: "b"})
	assert.Error(t, err)

	notifier := NewSMTPNotifier(testConfig())
	_, err = notifier.compose(Notification{To: "not an address", Subject: "s", Body: "b"})
	assert.Error(t, err)
}

// TestRenderHTML expects the submitted text to be escaped in the HTML part.
func TestRenderHTML(t *testing.T) {
	html, err := renderHTML(Notification{Subject: "Hi", Body: "<script>alert(1)</script>"})
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Hi</h2>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}

// TestNotifyUnreachableServer expects a failed delivery to be reported in the outcome and the
// recipient to default to the operator address.
func TestNotifyUnreachableServer(t *testing.T) {
	cfg := testConfig()
	cfg.Server = "127.0.0.1"
	cfg.Port = closedPort(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	outcome := NewSMTPNotifier(cfg).Notify(ctx, Notification{
		Subject: "New Portfolio Message",
		Body:    "Name: Erika",
	})
	assert.Equal(t, "owner@example.com", outcome.Recipient)
	assert.False(t, outcome.Delivered)
	assert.Error(t, outcome.Err)
}

// TestNotifyUnconfigured expects a missing sender address to fail before any connection attempt.
func TestNotifyUnconfigured(t *testing.T) {
	outcome := NewSMTPNotifier(config.SMTP{Port: 587}).Notify(context.Background(), Notification{
		Subject: "New Portfolio Message",
		Body:    "Name: Erika",
	})
	assert.Empty(t, outcome.Recipient)
	assert.False(t, outcome.Delivered)
	assert.Error(t, outcome.Err)
}

// captureLog swaps the default logger for one writing JSON into the returned buffer.
func captureLog(t *testing.T) *bytes.Buffer {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	return &buf
}

func loggedRecord(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

// TestReportDelivered expects a delivered notification to be logged at INFO.
func TestReportDelivered(t *testing.T) {
	buf := captureLog(t)
	report(Outcome{Recipient: "owner@example.com", Delivered: true})

	record := loggedRecord(t, buf)
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "email sent", record["msg"])
	assert.Equal(t, "owner@example.com", record["to"])
}

// TestReportAuthenticationFailed expects a rejected login, wrapped the way the mail client wraps
// it, to get its own log message.
func TestReportAuthenticationFailed(t *testing.T) {
	buf := captureLog(t)
	reply := &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"}
	report(Outcome{
		Recipient: "owner@example.com",
		Err:       fmt.Errorf("send mail via smtp.example.com:587: %w", fmt.Errorf("SMTP AUTH failed: %w", reply)),
	})

	record := loggedRecord(t, buf)
	assert.Equal(t, "ERROR", record["level"])
	assert.Contains(t, record["msg"], "smtp authentication failed")
	assert.Contains(t, record["error"], "Username and Password not accepted")
}

// TestReportOtherFailures expects every other failure, including other SMTP replies, to be logged
// generically.
func TestReportOtherFailures(t *testing.T) {
	failures := []error{
		errors.New("dial tcp 127.0.0.1:1: connect: connection refused"),
		fmt.Errorf("SMTP DATA failed: %w", &textproto.Error{Code: 552, Msg: "message too large"}),
	}
	for _, failure := range failures {
		buf := captureLog(t)
		report(Outcome{Recipient: "owner@example.com", Err: failure})

		record := loggedRecord(t, buf)
		assert.Equal(t, "ERROR", record["level"])
		assert.Equal(t, "error sending email", record["msg"], "failure: %v", failure)
	}
}
