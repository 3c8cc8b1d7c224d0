package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

// SendVerificationEmail šalje verifikacioni kod na zadatu adresu koristeći net/smtp biblioteku
func SendVerificationEmail(to, code, username string) error {
	from := os.Getenv("EMAIL_FROM")
	password := os.Getenv("EMAIL_PASSWORD")

	// SMTP server konfiguracija
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		smtpPort = "587"
	}

	if password == "" {
		return fmt.Errorf("EMAIL_PASSWORD is not set")
	}

	subject := "Project Store | Verification code"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your verification code is <b>%s</b>. It expires in 10 minutes.</p>",
		username, code,
	)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
