package notification

import (
	"fmt"
	"net/smtp"

	"github.com/itqwq/fxsim/model"
	"github.com/itqwq/fxsim/tools/log"
)

// Mail 通过 SMTP 发送持仓通知
type Mail struct {
	auth              smtp.Auth
	smtpServerPort    int
	smtpServerAddress string

	to   string
	from string
}

func (t Mail) Notify(text string) {
	serverAddress := fmt.Sprintf("%s:%d", t.smtpServerAddress, t.smtpServerPort)

	message := fmt.Sprintf("To: \"User\" <%s>\nFrom: \"fxsim\" <%s>\n%s", t.to, t.from, text)
	err := smtp.SendMail(serverAddress, t.auth, t.from, []string{t.to}, []byte(message))
	if err != nil {
		log.WithError(err).Errorf("notification/mail: couldnt send mail")
	}
}

func (t Mail) OnPosition(position model.Position) {
	t.Notify(fmt.Sprintf("Subject: %s\n%s", positionTitle(position), position))
}

func (t Mail) OnError(err error) {
	t.Notify(fmt.Sprintf("Subject: 🛑 ERROR\nError %s", err))
}

type MailParams struct {
	SMTPServerPort    int
	SMTPServerAddress string

	To       string
	From     string
	Password string
}

func NewMail(params MailParams) Mail {
	return Mail{
		from:              params.From,
		to:                params.To,
		smtpServerPort:    params.SMTPServerPort,
		smtpServerAddress: params.SMTPServerAddress,
		auth:              smtp.PlainAuth("", params.From, params.Password, params.SMTPServerAddress),
	}
}
