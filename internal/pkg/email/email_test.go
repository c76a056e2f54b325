package email

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRenderNotification_Escapes(t *testing.T) {
	body := renderNotification("Placement Cell", "https://portal.example.edu", "Ravi <script>", "Interview scheduled", "Round 1 at 10:00 & bring ID")

	assert.Contains(t, body, "Ravi &lt;script&gt;")
	assert.Contains(t, body, "Round 1 at 10:00 &amp; bring ID")
	assert.Contains(t, body, `href="https://portal.example.edu"`)
}

func TestBuildMessage_HeaderOrder(t *testing.T) {
	msg := string(buildMessage("Placement Cell", "tpo@college.edu", "s@college.edu", "Hi", "<p>x</p>"))

	assert.True(t, strings.HasPrefix(msg, "From: Placement Cell <tpo@college.edu>\r\nTo: s@college.edu\r\nSubject: Hi\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>x</p>"))
}

func TestSendNotification_UnconfiguredIsNoop(t *testing.T) {
	svc := NewEmailService(SMTPConfig{}, zerolog.Nop())
	assert.NoError(t, svc.SendNotification("s@college.edu", "S", "Subject", "Message"))
}
