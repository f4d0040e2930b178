package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"github.com/ntquang/mailreg"
)

const flashSessionName = "mailreg_flash"

// Flash categories
const (
	flashInfo    = "info"
	flashSuccess = "success"
	flashError   = "error"
)

type flashData struct {
	formData
	Info    []string
	Success []string
	Errors  []string
}

func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, kind, text string) error {
	session, err := s.flash.Get(r, flashSessionName)
	if err != nil {
		// A stale or tampered cookie yields a fresh session; keep going.
		session, _ = s.flash.New(r, flashSessionName)
	}

	session.AddFlash(text, kind)
	return session.Save(r, w)
}

func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request, kind string) []string {
	session, err := s.flash.Get(r, flashSessionName)
	if err != nil {
		return nil
	}

	var texts []string
	for _, f := range session.Flashes(kind) {
		if text, ok := f.(string); ok {
			texts = append(texts, text)
		}
	}
	_ = session.Save(r, w)

	return texts
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) error {
	data := flashData{
		Info:    s.popFlashes(w, r, flashInfo),
		Success: s.popFlashes(w, r, flashSuccess),
		Errors:  s.popFlashes(w, r, flashError),
	}

	return s.render(w, http.StatusOK, "index.html", data)
}

func (s *Server) signupFlashHandler(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return NewError(err, http.StatusBadRequest, "Cannot parse the signup form.")
	}
	email := r.PostFormValue("email")

	sub, err := s.Backend.Register(email)
	if err != nil {
		if mailreg.ErrorCode(err) == mailreg.ErrInvalid {
			if err := s.addFlash(w, r, flashError, mailreg.ErrorMessage(err)); err != nil {
				return err
			}
			return s.redirectRoute(w, r, "index")
		}
		return err
	}

	hlog.FromRequest(r).Info().Str("email", sub.Email).Msg("New registration")

	if err := s.addFlash(w, r, flashInfo, "Thanks for signing up to our updates! Please check your emails to confirm your email address."); err != nil {
		return err
	}

	return s.redirectOutcome(w, r, s.Backend.SuccessOutcome(sub))
}

func (s *Server) activateFlashHandler(w http.ResponseWriter, r *http.Request) error {
	key := mux.Vars(r)["key"]

	sub, err := s.ActivationService.Activate(key)
	if err != nil {
		switch mailreg.ErrorCode(err) {
		case mailreg.ErrInvalid, mailreg.ErrNotFound, mailreg.ErrExpired:
			hlog.FromRequest(r).Info().
				Str("code", mailreg.ErrorCode(err)).
				Msg("Activation failed")
			if err := s.addFlash(w, r, flashError, "Hmm. Something went wrong somewhere. Maybe the activation link expired?"); err != nil {
				return err
			}
			return s.redirectRoute(w, r, "index")
		}
		return err
	}

	hlog.FromRequest(r).Info().Str("email", sub.Email).Msg("Subscription activated")

	if err := s.addFlash(w, r, flashSuccess, "Your email address has been confirmed. Thank you for subscribing to our updates!"); err != nil {
		return err
	}

	return s.redirectRoute(w, r, "index")
}

func (s *Server) unsubscribeFlashHandler(w http.ResponseWriter, r *http.Request) error {
	key := mux.Vars(r)["key"]

	email, err := s.ActivationService.Deactivate(key)
	if err != nil {
		switch mailreg.ErrorCode(err) {
		case mailreg.ErrInvalid, mailreg.ErrNotFound, mailreg.ErrExpired:
			hlog.FromRequest(r).Info().
				Str("code", mailreg.ErrorCode(err)).
				Msg("Deactivation failed")
			if err := s.addFlash(w, r, flashError, "Are you sure you typed that URL correctly?"); err != nil {
				return err
			}
			return s.redirectRoute(w, r, "index")
		}
		return err
	}

	hlog.FromRequest(r).Info().Str("email", email).Msg("Subscription removed")

	if err := s.addFlash(w, r, flashInfo, "Your email address has been removed from our mailing list."); err != nil {
		return err
	}

	return s.redirectRoute(w, r, "index")
}
