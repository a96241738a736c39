package delivery

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jvargast/newsletter-fisuc/models"
)

func TestSMTPMailerCompose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	imgPath := filepath.Join(dir, "abc.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("fake image bytes"), 0644))

	m := NewSMTPMailer("smtp.example.com", 465, "user", "pass", "Newsletter", "news@example.com")

	msg := &Message{
		To:      "dest@example.com",
		Subject: "Prueba Newsletter",
		Text:    "hola",
		HTML:    `<p>hola</p><img src="cid:img0@newsletter">`,
		Attachments: []models.Attachment{
			{Filename: "abc.png", Path: imgPath, ContentID: "img0@newsletter"},
		},
	}

	gm, messageID := m.compose(msg)

	assert.Regexp(t, regexp.MustCompile(`^<[0-9a-f-]{36}@smtp\.example\.com>$`), messageID)

	var buf bytes.Buffer
	_, err := gm.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "Message-ID: "+messageID)
	assert.Contains(t, raw, "From:")
	assert.Contains(t, raw, "news@example.com")
	assert.Contains(t, raw, "To: dest@example.com")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "multipart/related")
	assert.Contains(t, raw, "Content-ID: <img0@newsletter>")
}

func TestSMTPMailerSendValidation(t *testing.T) {
	t.Parallel()

	t.Run("missing recipient", func(t *testing.T) {
		t.Parallel()
		m := NewSMTPMailer("smtp.example.com", 465, "", "", "", "news@example.com")
		_, err := m.Send(&Message{})
		assert.Error(t, err)
	})

	t.Run("missing host", func(t *testing.T) {
		t.Parallel()
		m := NewSMTPMailer("", 465, "", "", "", "news@example.com")
		_, err := m.Send(&Message{To: "dest@example.com"})
		assert.Error(t, err)
	})
}
