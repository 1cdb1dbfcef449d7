package auth

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmailConfigDefaults(t *testing.T) {
	config := LoadEmailConfig()

	assert.Equal(t, "smtp.gmail.com", config.SMTPHost)
	assert.Equal(t, "587", config.SMTPPort)
	assert.Equal(t, "http://localhost:5000", config.BaseURL)
}

func TestLoadEmailConfigFromEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("BASE_URL", "https://traincamp.example.com")

	config := LoadEmailConfig()
	assert.Equal(t, "mail.example.com", config.SMTPHost)
	assert.Equal(t, "https://traincamp.example.com", config.BaseURL)
}

func TestResetEmailTemplateRenders(t *testing.T) {
	var buf bytes.Buffer
	err := resetEmailTmpl.Execute(&buf, resetEmailData{
		Name:      "John Doe",
		ResetLink: "http://localhost:5000/api/v1/auth/resetpassword/abc123",
		ExpiresIn: "10 minutes",
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "John Doe")
	assert.Contains(t, html, "resetpassword/abc123")
	assert.Contains(t, html, "10 minutes")
}

func TestResetEmailTemplateEscapesName(t *testing.T) {
	var buf bytes.Buffer
	err := resetEmailTmpl.Execute(&buf, resetEmailData{
		Name:      "<script>alert(1)</script>",
		ResetLink: "http://localhost:5000/api/v1/auth/resetpassword/abc",
	})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "<script>")
}

func TestSendPasswordResetEmailWithoutSMTPIsNoop(t *testing.T) {
	config := &EmailConfig{BaseURL: "http://localhost:5000"}
	err := SendPasswordResetEmail(config, "John Doe", "john@example.com", "token123")
	assert.NoError(t, err)
}
