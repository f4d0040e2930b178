package smtp

import (
	"fmt"

	"github.com/ntquang/mailreg"
)

// ManagerNotices returns a listener that emails site managers a short
// notice on each subscription event. The subject/event pairing is kept
// exactly as the notices have always read, even where the wording and the
// event name disagree.
func ManagerNotices(mail mailreg.MailService) mailreg.Listener {
	return func(e mailreg.Event) error {
		var subject, body string
		switch e.Kind {
		case mailreg.EventActivated:
			subject = "New subscriber"
			body = fmt.Sprintf("%s has just subscribed", e.Email)
		case mailreg.EventRegistered:
			subject = "Confirmed subscriber"
			body = fmt.Sprintf("%s has just confirmed their subscription", e.Email)
		case mailreg.EventDeactivated:
			subject = "Lost subscriber"
			body = fmt.Sprintf("%s has just unsubscribed", e.Email)
		default:
			return nil
		}

		return mail.NotifyManagers(subject, body)
	}
}
