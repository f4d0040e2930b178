package http

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/ntquang/mailreg"
)

func (s *Server) signupFormHandler(w http.ResponseWriter, r *http.Request) error {
	if !s.Backend.RegistrationAllowed() {
		return s.redirectRoute(w, r, "registration_disallowed")
	}

	return s.render(w, http.StatusOK, "registration_form.html", formData{})
}

func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) error {
	if !s.Backend.RegistrationAllowed() {
		return s.redirectRoute(w, r, "registration_disallowed")
	}

	if err := r.ParseForm(); err != nil {
		return NewError(err, http.StatusBadRequest, "Cannot parse the signup form.")
	}
	email := r.PostFormValue("email")

	sub, err := s.Backend.Register(email)
	if err != nil {
		if mailreg.ErrorCode(err) == mailreg.ErrInvalid {
			// Validation failure: re-render the form with inline errors.
			return s.render(w, http.StatusOK, "registration_form.html", formData{
				Email:  email,
				Errors: []string{mailreg.ErrorMessage(err)},
			})
		}
		return err
	}

	hlog.FromRequest(r).Info().Str("email", sub.Email).Msg("New registration")

	return s.redirectOutcome(w, r, s.Backend.SuccessOutcome(sub))
}
