package mailreg

import (
	"strings"
	"time"
)

// Subscriber represents a mailing list member. A subscriber is created
// inactive by the double opt-in workflow and stays inactive until the
// activation key from their email is presented.
type Subscriber struct {
	ID              int    `storm:"id,increment"`
	Email           string `storm:"index"`
	DateJoined      time.Time
	IsActive        bool
	DeactivationKey string `storm:"index"`
}

// SubscriberService is the interface that wraps storage methods for subscribers
type SubscriberService interface {
	FindByID(id int) (*Subscriber, error)
	FindByEmail(email string) (*Subscriber, error)
	FindByDeactivationKey(key string) (*Subscriber, error)
	Insert(s *Subscriber) error
	Update(s *Subscriber) error
	Delete(id int) error
}

// NormalizeEmail lowercases the domain part of an email address. The local
// part is left untouched; comparisons are case-insensitive at lookup time.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
