package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends outbound email through an SMTP relay.
type Mailer struct {
	host string
	port int
	user string
	pass string
}

// NewMailer returns a Mailer talking to the given SMTP relay.
func NewMailer(host string, port int, user, pass string) *Mailer {
	return &Mailer{
		host: host,
		port: port,
		user: user,
		pass: pass,
	}
}

// SendResetCode mails a password-reset code to the given address.
func (m *Mailer) SendResetCode(to, code string) error {
	body := fmt.Sprintf("Your password reset code is %s. It expires in one hour.", code)
	return m.send(to, "Password Reset Code", body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}
