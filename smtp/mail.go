package smtp

import (
	"fmt"
	"strings"

	"github.com/matcornic/hermes/v2"
	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"github.com/ntquang/mailreg"
)

type mailService struct {
	ServerURL string
	*mailreg.Config
}

// NewMailService returns a mail service that renders and sends the
// mailing list's transactional email.
func NewMailService(config *mailreg.Config, serverURL string) mailreg.MailService {
	return &mailService{
		Config:    config,
		ServerURL: serverURL,
	}
}

// SendActivationEmail sends the activation key to a new subscriber. The
// email carries the activation link and the number of days the key
// remains valid.
func (ms *mailService) SendActivationEmail(to, activationKey string) error {
	product := ms.Config.Mailinglist.Product.Name
	days := ms.Config.Mailinglist.ActivationDays

	h := hermes.Hermes{
		Product: hermes.Product{
			Name: product,
			Link: ms.ServerURL,
		},
	}

	email := hermes.Email{
		Body: hermes.Body{
			Name: "",
			Intros: []string{
				fmt.Sprintf("Welcome to %s", product),
				fmt.Sprintf("Use the button below within %d days to activate your subscription.", days),
			},
			Actions: []hermes.Action{
				{
					Instructions: "",
					Button: hermes.Button{
						Color: "#22BC66",
						Text:  "Activate your subscription",
						Link:  fmt.Sprintf("%s/confirm/%s", ms.ServerURL, activationKey),
					},
				},
			},
		},
	}

	emailBody, err := h.GenerateHTML(email)
	if err != nil {
		return errors.Errorf("failed to generate HTML email: %v", err)
	}

	subject := singleLine(fmt.Sprintf("Activate your %s subscription", product))
	return ms.sendEmail(to, subject, emailBody)
}

// NotifyManagers sends a plain administrative notice to every configured
// site manager.
func (ms *mailService) NotifyManagers(subject, body string) error {
	subject = singleLine(subject)
	for _, to := range ms.Config.Mailinglist.Managers {
		if err := ms.sendEmail(to, subject, body); err != nil {
			return err
		}
	}

	return nil
}

func (ms *mailService) sendEmail(to string, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", ms.Config.Mailinglist.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	d := gomail.NewDialer(ms.Config.SMTP.Host, ms.Config.SMTP.Port, ms.Config.SMTP.Username, ms.Config.SMTP.Password)
	if err := d.DialAndSend(m); err != nil {
		return errors.Errorf("failed to send mail to %s: %v", to, err)
	}

	return nil
}

func (ms *mailService) Stop() error {
	return nil
}

// An email subject must not contain newlines; collapse any into one line.
func singleLine(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
