package mailreg

// MailService is the interface that wraps methods related to SMTP
type MailService interface {
	SendActivationEmail(to, activationKey string) error
	NotifyManagers(subject, body string) error
	Stop() error
}
