package registration

import (
	"github.com/ntquang/mailreg"
)

// DoubleOptIn is the default workflow: signup creates an inactive
// subscriber and emails an activation link; the subscriber becomes active
// only once the link is followed.
type DoubleOptIn struct {
	*Service
}

// NewDoubleOptIn returns the double opt-in backend over svc.
func NewDoubleOptIn(svc *Service) *DoubleOptIn {
	return &DoubleOptIn{Service: svc}
}

func (b *DoubleOptIn) Register(email string) (*mailreg.Subscriber, error) {
	sub, err := b.CreateInactiveSubscriber(email, true)
	if err != nil {
		return nil, err
	}

	if err := b.emit(mailreg.Event{Kind: mailreg.EventRegistered, Subscriber: sub, Email: sub.Email}); err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *DoubleOptIn) SuccessOutcome(*mailreg.Subscriber) mailreg.Outcome {
	return mailreg.RouteOutcome("registration_complete")
}

// OneStep signs the subscriber up active immediately. No profile is
// created and no activation email is sent.
type OneStep struct {
	*Service
}

// NewOneStep returns the one-step backend over svc.
func NewOneStep(svc *Service) *OneStep {
	return &OneStep{Service: svc}
}

func (b *OneStep) Register(email string) (*mailreg.Subscriber, error) {
	normalized, err := b.validateEmail(email)
	if err != nil {
		return nil, err
	}

	sub := &mailreg.Subscriber{
		Email:      normalized,
		DateJoined: b.now(),
		IsActive:   true,
	}
	if err := b.subscribers.Insert(sub); err != nil {
		return nil, err
	}

	if err := b.emit(mailreg.Event{Kind: mailreg.EventRegistered, Subscriber: sub, Email: sub.Email}); err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *OneStep) SuccessOutcome(*mailreg.Subscriber) mailreg.Outcome {
	return mailreg.RouteOutcome("registration_confirmed")
}

// Flash reuses the double opt-in workflow for the flash-message surface:
// registration stays open regardless of configuration, and a successful
// signup goes back to the index page.
type Flash struct {
	DoubleOptIn
}

// NewFlash returns the flash-message backend over svc.
func NewFlash(svc *Service) *Flash {
	return &Flash{DoubleOptIn: DoubleOptIn{Service: svc}}
}

func (b *Flash) RegistrationAllowed() bool {
	return true
}

func (b *Flash) SuccessOutcome(*mailreg.Subscriber) mailreg.Outcome {
	return mailreg.URLOutcome("/")
}
