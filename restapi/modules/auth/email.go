package auth

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
)

// EmailConfig holds email service configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	BaseURL      string // Base URL for reset links
}

// LoadEmailConfig loads email configuration from environment
func LoadEmailConfig() *EmailConfig {
	return &EmailConfig{
		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("SMTP_FROM_EMAIL", "noreply@traincamp.io"),
		FromName:     getEnv("SMTP_FROM_NAME", "TrainCamp"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:5000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// resetEmailData holds data for the password reset email template
type resetEmailData struct {
	Name      string
	ResetLink string
	ExpiresIn string
}

var resetEmailTmpl = template.Must(template.New("reset").Parse(`
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2>Password Reset Request</h2>
	<p>Hi <strong>{{.Name}}</strong>,</p>
	<p>You are receiving this email because you (or someone else) requested a password reset.</p>
	<p>Make a PUT request to the link below, or open it in your browser:</p>
	<p><a href="{{.ResetLink}}" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Reset Password</a></p>
	<p>This link will expire in {{.ExpiresIn}}.</p>
	<p>If you didn't request this, please ignore this email.</p>
	<hr>
	<p style="color: #666; font-size: 12px;">TrainCamp</p>
</body>
</html>
`))

// SendPasswordResetEmail delivers the plaintext reset token to the user. When
// SMTP is not configured the link is logged instead so local development
// still works end to end.
func SendPasswordResetEmail(config *EmailConfig, name, email, token string) error {
	resetLink := fmt.Sprintf("%s/api/v1/auth/resetpassword/%s", config.BaseURL, token)

	if config.SMTPUsername == "" || config.SMTPPassword == "" {
		fmt.Printf(`
════════════════════════════════════════════════════════════════
PASSWORD RESET LINK (SMTP not configured)
════════════════════════════════════════════════════════════════

Email:    %s
Link:     %s

Valid for: 10 minutes

════════════════════════════════════════════════════════════════
`, email, resetLink)
		return nil
	}

	data := resetEmailData{
		Name:      name,
		ResetLink: resetLink,
		ExpiresIn: "10 minutes",
	}

	var buf bytes.Buffer
	if err := resetEmailTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return sendEmail(config, email, "Password reset token", buf.String())
}

// sendEmail sends an email using SMTP
func sendEmail(config *EmailConfig, to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", config.SMTPUsername, config.SMTPPassword, config.SMTPHost)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		config.FromName, config.FromEmail, to, subject, htmlBody,
	))

	addr := fmt.Sprintf("%s:%s", config.SMTPHost, config.SMTPPort)
	return smtp.SendMail(addr, auth, config.FromEmail, []string{to}, msg)
}
