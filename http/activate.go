package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"github.com/ntquang/mailreg"
)

func (s *Server) activateHandler(w http.ResponseWriter, r *http.Request) error {
	key := mux.Vars(r)["key"]

	sub, err := s.ActivationService.Activate(key)
	if err != nil {
		switch mailreg.ErrorCode(err) {
		case mailreg.ErrInvalid, mailreg.ErrNotFound, mailreg.ErrExpired:
			// The page does not say which case occurred; the log does.
			hlog.FromRequest(r).Info().
				Str("code", mailreg.ErrorCode(err)).
				Msg("Activation failed")
			return s.render(w, http.StatusOK, "activate.html", nil)
		}
		return err
	}

	hlog.FromRequest(r).Info().Str("email", sub.Email).Msg("Subscription activated")

	return s.redirectRoute(w, r, "activation_complete")
}
