package emailsvc

import (
	"bytes"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	logsvc "github.com/trezcool/shule/services/logger"
)

func testMessage() core.EmailMessage {
	return core.EmailMessage{
		To:          []mail.Address{{Name: "Jane", Address: "jane@test.cd"}},
		Cc:          []mail.Address{{Address: "head@test.cd"}},
		Subject:     "Hello",
		TextContent: "plain body",
		HTMLContent: "<p>html body</p>",
	}
}

func TestNewService(t *testing.T) {
	logger := logsvc.NewLogger(new(bytes.Buffer), false, false)

	tests := []struct {
		name    string
		debug   bool
		key     string
		console bool
	}{
		{name: "debug", debug: true, key: "SG.key", console: true},
		{name: "no key", console: true},
		{name: "sendgrid", key: "SG.key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := core.NewTestConfig()
			conf.Debug = tt.debug
			conf.SendgridApiKey = tt.key

			svc := NewService(conf, logger)
			_, isConsole := svc.(*consoleService)
			assert.Equal(t, tt.console, isConsole)
		})
	}
}

func TestConsoleService_format(t *testing.T) {
	svc := NewConsoleService(core.NewTestConfig(), logsvc.NewLogger(new(bytes.Buffer), false, false)).(*consoleService)

	out := svc.format(testMessage())
	assert.Contains(t, out, "From: \"Shule\" <noreply@localhost>\r\n")
	assert.Contains(t, out, "Subject: [Shule] Hello\r\n")
	assert.Contains(t, out, "To: \"Jane\" <jane@test.cd>\r\n")
	assert.Contains(t, out, "CC: <head@test.cd>\r\n")
	assert.NotContains(t, out, "BCC:")
	assert.Contains(t, out, "Content-Type: multipart/alternative; boundary=")
	assert.Contains(t, out, "text/plain; charset=utf-8")
	assert.Contains(t, out, "plain body")
	assert.Contains(t, out, "<p>html body</p>")

	msg := testMessage()
	msg.HTMLContent = ""
	assert.NotContains(t, svc.format(msg), "text/html")
}

func TestConsoleService_SendMessages(t *testing.T) {
	var buf bytes.Buffer
	svc := NewConsoleService(core.NewTestConfig(), logsvc.NewLogger(&buf, false, false)).(*consoleService)
	svc.sync = true

	svc.SendMessages(&core.EmailMessage{To: []mail.Address{{Address: "jane@test.cd"}}, Subject: "Hi", BodyStr: "hey"})
	assert.Contains(t, buf.String(), "Subject: [Shule] Hi")

	buf.Reset()
	svc.SendMessages(&core.EmailMessage{Subject: "nobody", BodyStr: "hey"})
	assert.Empty(t, buf.String())
}

func TestOutbox(t *testing.T) {
	ob := NewOutbox(core.NewTestConfig(), logsvc.NewLogger(new(bytes.Buffer), false, false))

	ob.SendMessages(
		&core.EmailMessage{To: []mail.Address{{Address: "jane@test.cd"}}, Subject: "Hi", BodyStr: "hey"},
		&core.EmailMessage{To: []mail.Address{{Address: "john@test.cd"}}, Subject: "empty"},
		&core.EmailMessage{Subject: "nobody", BodyStr: "hey"},
	)

	sent := ob.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Hi", sent[0].Subject)
	assert.Equal(t, "hey", sent[0].TextContent)

	ob.Reset()
	assert.Empty(t, ob.Sent())
}

func TestSendgridService_prepare(t *testing.T) {
	conf := core.NewTestConfig()
	conf.SendgridApiKey = "SG.key"
	svc := NewSendgridService(conf, logsvc.NewLogger(new(bytes.Buffer), false, false)).(*sendgridService)

	msg := testMessage()
	msg.Bcc = []mail.Address{{Address: "audit@test.cd"}}
	m := svc.prepare(msg)

	require.NotNil(t, m.From)
	assert.Equal(t, "noreply@localhost", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Shule] Hello", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "jane@test.cd", p.To[0].Address)
	require.Len(t, p.CC, 1)
	assert.Equal(t, "head@test.cd", p.CC[0].Address)
	require.Len(t, p.BCC, 1)
	assert.Equal(t, "audit@test.cd", p.BCC[0].Address)

	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "plain body", m.Content[0].Value)
	assert.Equal(t, "text/html", m.Content[1].Type)
}
