// Package mailer sends the HTML letters (confirm email, reset password,
// login details) over SMTP. Template placeholders are literal {{Link}},
// {{Password}} and {{Email}} markers substituted before send.
package mailer

import (
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
)

// Substitutions carries the per-message template values; empty fields simply
// blank out their placeholder.
type Substitutions struct {
	Link     string
	Password string
	Email    string
}

type SMTPSender struct {
	host         string
	port         string
	username     string
	password     string
	from         string
	templatesDir string
}

func NewSMTPSender(host string, port string, username string, password string, from string, templatesDir string) *SMTPSender {
	return &SMTPSender{
		host:         host,
		port:         port,
		username:     username,
		password:     password,
		from:         from,
		templatesDir: templatesDir,
	}
}

// Send renders the named template and delivers it synchronously; any failure
// is returned to the caller rather than swallowed, so flows that must know
// about delivery (forgot password) can abort.
func (s *SMTPSender) Send(to []string, subject string, templateFile string, subs Substitutions) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	body, err := s.render(templateFile, subs)
	if err != nil {
		return err
	}

	msg := strings.Builder{}
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := s.host + ":" + s.port
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", strings.Join(to, ", "), err)
	}

	return nil
}

func (s *SMTPSender) render(templateFile string, subs Substitutions) (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.templatesDir, templateFile))
	if err != nil {
		return "", fmt.Errorf("read letter template %s: %w", templateFile, err)
	}

	replacer := strings.NewReplacer(
		"{{Link}}", subs.Link,
		"{{Password}}", subs.Password,
		"{{Email}}", subs.Email,
	)

	return replacer.Replace(string(raw)), nil
}
