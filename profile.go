package mailreg

// Activated replaces a registration profile's activation key once it has
// been consumed. It never matches the shape of a generated key, so a
// profile carrying it is permanently non-activatable.
const Activated = "ALREADY_ACTIVATED"

// RegistrationProfile stores the activation key for a subscriber while
// their registration is pending. Exactly one profile exists per subscriber.
type RegistrationProfile struct {
	ID            int    `storm:"id,increment"`
	SubscriberID  int    `storm:"unique"`
	ActivationKey string `storm:"index"`
}

// ProfileService is the interface that wraps storage methods for
// registration profiles
type ProfileService interface {
	FindByActivationKey(key string) (*RegistrationProfile, error)
	FindBySubscriberID(id int) (*RegistrationProfile, error)
	All() ([]RegistrationProfile, error)
	Insert(p *RegistrationProfile) error
	Update(p *RegistrationProfile) error
	Delete(id int) error

	// CreateInactive persists a subscriber and its profile atomically.
	// beforeCommit runs after both records are staged; if it returns an
	// error, neither record survives.
	CreateInactive(s *Subscriber, p *RegistrationProfile, beforeCommit func() error) error
}
