package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/PromptBay/promptbay/internal/pkg/env"
)

// SendMail sends an email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendPurchaseReceipt mails a purchase confirmation. Callers run this in
// a goroutine; a mail failure must never affect the payment path.
func SendPurchaseReceipt(to, promptTitle string, amount int64, currency string) {
	subject := fmt.Sprintf("Your PromptBay purchase: %s", promptTitle)
	body := fmt.Sprintf(
		"<p>Thanks for your purchase!</p>"+
			"<p><strong>%s</strong></p>"+
			"<p>Amount paid: %.2f %s</p>"+
			"<p>The content is now unlocked in your library.</p>",
		promptTitle, float64(amount)/100, currency,
	)
	if err := SendMail(to, subject, body); err != nil {
		log.Printf("purchase receipt mail failed for %s: %v", to, err)
	}
}
