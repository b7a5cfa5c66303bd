package mailjet

import (
	mj "github.com/mailjet/mailjet-apiv3-go"
)

type Mailjet struct {
	Client *mj.Client
	Email  string
	Name   string
}

func New(key, secret, fromEmail, fromName string) *Mailjet {
	return &Mailjet{
		Client: mj.NewMailjetClient(key, secret),
		Email:  fromEmail,
		Name:   fromName,
	}
}

func (m *Mailjet) Send(subject, text, html string, sendTo []string) error {
	recipients := make([]mj.Recipient, 0, len(sendTo))
	for _, to := range sendTo {
		recipients = append(recipients, mj.Recipient{Email: to})
	}
	_, err := m.Client.SendMail(&mj.InfoSendMail{
		FromEmail:  m.Email,
		FromName:   m.Name,
		Subject:    subject,
		TextPart:   text,
		HTMLPart:   html,
		Recipients: recipients,
	})
	return err
}
