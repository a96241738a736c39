package delivery

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/Jvargast/newsletter-fisuc/models"
)

// implicitTLSPort selects SMTPS; any other port connects plain and upgrades
// via STARTTLS.
const implicitTLSPort = 465

// Message is one outgoing multipart email: plain text with an HTML
// alternative and any cid-referenced images embedded inline.
type Message struct {
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []models.Attachment
}

// SendResult reports the outcome of a successful send.
type SendResult struct {
	MessageID string
	Response  string
}

// Mailer is the adapter interface for outgoing test sends. Implementations
// open one session per call and never retry; a failed send is reported back
// to the caller as-is.
type Mailer interface {
	Send(msg *Message) (*SendResult, error)
}

// SMTPMailer delivers mail over SMTP using gomail.
type SMTPMailer struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPMailer(host string, port int, username, password, fromName, fromEmail string) *SMTPMailer {
	return &SMTPMailer{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send opens a fresh SMTP session, transmits the message, and closes the
// session. Connection, auth, and rejection failures all surface as a single
// wrapped error.
func (m *SMTPMailer) Send(msg *Message) (*SendResult, error) {
	if msg == nil || msg.To == "" {
		return nil, fmt.Errorf("recipient address is required")
	}
	if m.host == "" {
		return nil, fmt.Errorf("SMTP host is not configured")
	}

	gm, messageID := m.compose(msg)

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	d.SSL = m.port == implicitTLSPort

	if err := d.DialAndSend(gm); err != nil {
		return nil, fmt.Errorf("smtp send to %s failed: %w", msg.To, err)
	}

	log.Printf("INFO (SMTPMailer): Sent %s to %s with %d embedded images", messageID, msg.To, len(msg.Attachments))
	return &SendResult{
		MessageID: messageID,
		Response:  fmt.Sprintf("accepted by %s:%d", m.host, m.port),
	}, nil
}

// compose builds the MIME message and returns it with its Message-ID.
func (m *SMTPMailer) compose(msg *Message) (*gomail.Message, string) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.host)

	gm := gomail.NewMessage()
	gm.SetHeader("Message-ID", messageID)
	gm.SetAddressHeader("From", m.fromEmail, m.fromName)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	gm.AddAlternative("text/html", msg.HTML)

	for _, a := range msg.Attachments {
		gm.Embed(a.Path,
			gomail.Rename(a.Filename),
			gomail.SetHeader(map[string][]string{
				"Content-ID": {"<" + a.ContentID + ">"},
			}),
		)
	}
	return gm, messageID
}
