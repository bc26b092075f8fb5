// Package emailsvc sends the app's emails: printed to the log in development, through
// SendGrid otherwise.
package emailsvc

import (
	"fmt"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/shule/core"
)

type consoleService struct {
	from            mail.Address
	subjPrefix      string
	frontendBaseURL string
	logger          core.Logger

	// outbox keeps every sent message when set (tests).
	mu     sync.Mutex
	outbox *[]core.EmailMessage
	sync   bool
}

var _ core.EmailService = (*consoleService)(nil) // interface compliance check

// NewConsoleService prints rendered messages to logger.
func NewConsoleService(conf *core.Config, logger core.Logger) core.EmailService {
	return &consoleService{
		from:            conf.DefaultFromEmail(),
		subjPrefix:      "[" + conf.AppName + "] ",
		frontendBaseURL: conf.FrontendBaseURL,
		logger:          logger,
	}
}

// Outbox records messages instead of printing them, rendering them synchronously.
type Outbox struct {
	*consoleService
	sent []core.EmailMessage
}

func NewOutbox(conf *core.Config, logger core.Logger) *Outbox {
	ob := &Outbox{}
	ob.consoleService = &consoleService{
		from:            conf.DefaultFromEmail(),
		subjPrefix:      "[" + conf.AppName + "] ",
		frontendBaseURL: conf.FrontendBaseURL,
		logger:          logger,
		outbox:          &ob.sent,
		sync:            true,
	}
	return ob
}

// Sent returns a copy of the recorded messages.
func (ob *Outbox) Sent() []core.EmailMessage {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return append([]core.EmailMessage(nil), ob.sent...)
}

func (ob *Outbox) Reset() {
	ob.mu.Lock()
	ob.sent = nil
	ob.mu.Unlock()
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if svc.sync {
			svc.sendMessage(msg)
		} else {
			go svc.sendMessage(msg)
		}
	}
}

func (svc *consoleService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(svc.frontendBaseURL); err != nil {
		svc.logger.Error(fmt.Sprintf("rendering email %q: %v", msg.TemplateName, err), err)
		return
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}

	if svc.outbox != nil {
		svc.mu.Lock()
		*svc.outbox = append(*svc.outbox, *msg)
		svc.mu.Unlock()
		return
	}
	svc.logger.Info(svc.format(*msg))
}

// format writes msg as a multipart/alternative MIME message.
func (svc *consoleService) format(msg core.EmailMessage) string {
	body := new(strings.Builder)
	w := multipart.NewWriter(body)

	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.from.String())
	_, _ = fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))
	if len(msg.Cc) > 0 {
		_, _ = fmt.Fprintf(body, "CC: %s\r\n", joinAddresses(msg.Cc))
	}
	if len(msg.Bcc) > 0 {
		_, _ = fmt.Fprintf(body, "BCC: %s\r\n", joinAddresses(msg.Bcc))
	}
	_, _ = fmt.Fprintf(body, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", w.Boundary())

	if part, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=utf-8"}}); err == nil {
		_, _ = fmt.Fprintf(part, "%s\r\n", msg.TextContent)
	}
	if msg.HTMLContent != "" {
		if part, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=utf-8"}}); err == nil {
			_, _ = fmt.Fprintf(part, "%s\r\n", msg.HTMLContent)
		}
	}
	_ = w.Close()
	return body.String()
}

func joinAddresses(addrs []mail.Address) string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	return strings.Join(out, ", ")
}
