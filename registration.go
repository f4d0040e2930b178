package mailreg

// EventKind identifies a subscription lifecycle event.
type EventKind string

// Subscription lifecycle events
const (
	EventRegistered  EventKind = "registered"
	EventActivated   EventKind = "activated"
	EventDeactivated EventKind = "deactivated"
)

// Event carries a lifecycle notification to registered listeners.
// Subscriber is nil for deactivations; Email is always set.
type Event struct {
	Kind       EventKind
	Subscriber *Subscriber
	Email      string
}

// Listener consumes a lifecycle event. Listeners run synchronously after
// the workflow step that produced the event; an error propagates to the
// workflow's caller.
type Listener func(e Event) error

// Outcome names the destination to send a visitor to after a successful
// workflow step: either a named route, or an explicit URL with any
// parameters already encoded.
type Outcome struct {
	Route string
	URL   string
}

// RouteOutcome returns an outcome pointing at a named route.
func RouteOutcome(name string) Outcome {
	return Outcome{Route: name}
}

// URLOutcome returns an outcome pointing at an explicit URL.
func URLOutcome(url string) Outcome {
	return Outcome{URL: url}
}

// Backend is a registration workflow variant. All variants validate the
// email and fire a "registered" event; they differ in whether the new
// subscriber starts active and where a successful signup lands.
type Backend interface {
	Register(email string) (*Subscriber, error)
	RegistrationAllowed() bool
	SuccessOutcome(s *Subscriber) Outcome
}

// ActivationService wraps the token-driven workflows: turning an
// activation key into an active subscriber, removing a subscriber by
// deactivation key, and the related maintenance operations.
type ActivationService interface {
	Activate(key string) (*Subscriber, error)
	ActivateByEmail(email string) (*Subscriber, error)
	Deactivate(key string) (string, error)
	ResendActivationEmail(email string) error
	DeleteExpiredSubscribers() error
}
