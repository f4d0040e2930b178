package registration

import (
	"time"

	"github.com/ntquang/mailreg"
	"github.com/ntquang/mailreg/pkg/token"
)

// Service implements the registration, activation and deactivation
// workflows over the subscriber and profile stores.
type Service struct {
	subscribers mailreg.SubscriberService
	profiles    mailreg.ProfileService
	mail        mailreg.MailService
	config      *mailreg.Config

	listeners []mailreg.Listener
	now       func() time.Time
}

// NewService returns a workflow service wired to the given stores and mail
// transport.
func NewService(subscribers mailreg.SubscriberService, profiles mailreg.ProfileService, mail mailreg.MailService, config *mailreg.Config) *Service {
	return &Service{
		subscribers: subscribers,
		profiles:    profiles,
		mail:        mail,
		config:      config,
		now:         time.Now,
	}
}

// AddListener registers l to be called synchronously after each lifecycle
// event.
func (s *Service) AddListener(l mailreg.Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *Service) emit(e mailreg.Event) error {
	for _, l := range s.listeners {
		if err := l(e); err != nil {
			return err
		}
	}
	return nil
}

// RegistrationAllowed reports whether new signups are currently permitted.
func (s *Service) RegistrationAllowed() bool {
	return s.config.Mailinglist.RegistrationOpen
}

// validateEmail checks syntax and uniqueness, returning the normalized
// address on success.
func (s *Service) validateEmail(email string) (string, error) {
	form := &mailreg.RegistrationForm{Email: email}
	if err := form.Validate(); err != nil {
		return "", err
	}

	normalized := mailreg.NormalizeEmail(email)
	existing, err := s.subscribers.FindByEmail(normalized)
	if err != nil && mailreg.ErrorCode(err) != mailreg.ErrNotFound {
		return "", err
	}
	if existing != nil {
		return "", &mailreg.Error{
			Code:    mailreg.ErrInvalid,
			Message: "This email address is already in use. Please supply a different email address.",
			Op:      "Service.validateEmail",
		}
	}

	return normalized, nil
}

// CreateInactiveSubscriber creates an inactive subscriber together with a
// registration profile holding a fresh activation key, and emails the key
// to the subscriber. The two records and the email dispatch succeed or
// fail together. Pass sendEmail=false to suppress the email.
func (s *Service) CreateInactiveSubscriber(email string, sendEmail bool) (*mailreg.Subscriber, error) {
	normalized, err := s.validateEmail(email)
	if err != nil {
		return nil, err
	}

	sub := &mailreg.Subscriber{
		Email:      normalized,
		DateJoined: s.now(),
	}
	profile := &mailreg.RegistrationProfile{
		ActivationKey: token.New(normalized),
	}

	beforeCommit := func() error {
		if !sendEmail {
			return nil
		}
		return s.mail.SendActivationEmail(normalized, profile.ActivationKey)
	}
	if err := s.profiles.CreateInactive(sub, profile, beforeCommit); err != nil {
		return nil, err
	}

	return sub, nil
}

// Activate validates an activation key and flips the corresponding
// subscriber active. The consumed key is kept on the subscriber as their
// future deactivation key, and the profile's key is reset to the sentinel
// so the profile can never be activated again.
func (s *Service) Activate(key string) (*mailreg.Subscriber, error) {
	if !token.Valid(key) {
		return nil, &mailreg.Error{
			Code:    mailreg.ErrInvalid,
			Message: "The activation key is malformed.",
			Op:      "Service.Activate",
		}
	}

	profile, err := s.profiles.FindByActivationKey(key)
	if err != nil {
		return nil, err
	}

	sub, err := s.subscribers.FindByID(profile.SubscriberID)
	if err != nil {
		return nil, err
	}

	if s.expired(profile, sub) {
		return nil, &mailreg.Error{
			Code:    mailreg.ErrExpired,
			Message: "The activation key has expired.",
			Op:      "Service.Activate",
		}
	}

	sub.IsActive = true
	sub.DeactivationKey = profile.ActivationKey
	if err := s.subscribers.Update(sub); err != nil {
		return nil, err
	}

	profile.ActivationKey = mailreg.Activated
	if err := s.profiles.Update(profile); err != nil {
		return nil, err
	}

	if err := s.emit(mailreg.Event{Kind: mailreg.EventActivated, Subscriber: sub, Email: sub.Email}); err != nil {
		return nil, err
	}

	return sub, nil
}

// ActivateByEmail drives the normal activation path for the subscriber
// registered under email. Used by the admin surface.
func (s *Service) ActivateByEmail(email string) (*mailreg.Subscriber, error) {
	sub, err := s.subscribers.FindByEmail(mailreg.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindBySubscriberID(sub.ID)
	if err != nil {
		return nil, err
	}

	return s.Activate(profile.ActivationKey)
}

// Deactivate removes the subscriber holding the given deactivation key,
// along with their registration profile if one still exists. It returns
// the removed email address.
func (s *Service) Deactivate(key string) (string, error) {
	if !token.Valid(key) {
		return "", &mailreg.Error{
			Code:    mailreg.ErrInvalid,
			Message: "The deactivation key is malformed.",
			Op:      "Service.Deactivate",
		}
	}

	sub, err := s.subscribers.FindByDeactivationKey(key)
	if err != nil {
		return "", err
	}

	profile, err := s.profiles.FindBySubscriberID(sub.ID)
	switch {
	case err == nil:
		if err := s.profiles.Delete(profile.ID); err != nil {
			return "", err
		}
	case mailreg.ErrorCode(err) == mailreg.ErrNotFound:
		// Already swept; only the subscriber is left.
	default:
		return "", err
	}

	if err := s.subscribers.Delete(sub.ID); err != nil {
		return "", err
	}

	if err := s.emit(mailreg.Event{Kind: mailreg.EventDeactivated, Email: sub.Email}); err != nil {
		return "", err
	}

	return sub.Email, nil
}

// ResendActivationEmail re-sends the activation email for a pending,
// not-yet-expired registration.
func (s *Service) ResendActivationEmail(email string) error {
	sub, err := s.subscribers.FindByEmail(mailreg.NormalizeEmail(email))
	if err != nil {
		return err
	}

	profile, err := s.profiles.FindBySubscriberID(sub.ID)
	if err != nil {
		return err
	}

	if s.expired(profile, sub) {
		return &mailreg.Error{
			Code:    mailreg.ErrExpired,
			Message: "The activation key has expired.",
			Op:      "Service.ResendActivationEmail",
		}
	}

	return s.mail.SendActivationEmail(sub.Email, profile.ActivationKey)
}

// DeleteExpiredSubscribers sweeps all registration profiles, deleting
// subscribers that are both inactive and past their activation window.
// Profiles whose subscriber is already gone are deleted as orphans.
// Intended to run on an external schedule.
func (s *Service) DeleteExpiredSubscribers() error {
	profiles, err := s.profiles.All()
	if err != nil {
		return err
	}

	for i := range profiles {
		profile := &profiles[i]

		sub, err := s.subscribers.FindByID(profile.SubscriberID)
		if err != nil {
			if mailreg.ErrorCode(err) == mailreg.ErrNotFound {
				if err := s.profiles.Delete(profile.ID); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if sub.IsActive || !s.expired(profile, sub) {
			continue
		}

		if err := s.subscribers.Delete(sub.ID); err != nil {
			return err
		}
		if err := s.profiles.Delete(profile.ID); err != nil {
			return err
		}
	}

	return nil
}

// expired reports whether a profile's activation key is no longer usable:
// either it has been consumed, or the subscriber's activation window
// (date joined + configured number of days) has passed.
func (s *Service) expired(profile *mailreg.RegistrationProfile, sub *mailreg.Subscriber) bool {
	if profile.ActivationKey == mailreg.Activated {
		return true
	}

	window := time.Duration(s.config.Mailinglist.ActivationDays) * 24 * time.Hour
	return !sub.DateJoined.Add(window).After(s.now())
}
