package http

import (
	"encoding/json"
	"net/http"

	"github.com/ntquang/mailreg"
	"github.com/ntquang/mailreg/pkg/hash"
)

const invalidAdminLinkMessage = "Either email or hash is invalid."

type adminResponse struct {
	Message string `json:"message"`
}

// checkAdminHash verifies that the request carries a valid HMAC of the
// email, proving it was minted with the admin secret.
func (s *Server) checkAdminHash(r *http.Request) (string, error) {
	query := r.URL.Query()
	email := query.Get("email")
	hashValue := query.Get("hash")

	expectedHash, err := hash.ComputeHmac256(email, s.AdminSecret)
	if err != nil {
		return "", err
	}
	if hashValue != expectedHash {
		return "", NewError(nil, http.StatusForbidden, invalidAdminLinkMessage)
	}

	return email, nil
}

func (s *Server) adminResendHandler(w http.ResponseWriter, r *http.Request) error {
	email, err := s.checkAdminHash(r)
	if err != nil {
		return err
	}

	if err := s.ActivationService.ResendActivationEmail(email); err != nil {
		switch mailreg.ErrorCode(err) {
		case mailreg.ErrNotFound:
			return NewError(err, http.StatusNotFound, "No pending registration for this email address.")
		case mailreg.ErrExpired:
			return NewError(err, http.StatusBadRequest, "The activation key has expired.")
		}
		return err
	}

	writeJSONResponse(w, http.StatusOK, &adminResponse{Message: "Activation email sent."})
	return nil
}

func (s *Server) adminActivateHandler(w http.ResponseWriter, r *http.Request) error {
	email, err := s.checkAdminHash(r)
	if err != nil {
		return err
	}

	sub, err := s.ActivationService.ActivateByEmail(email)
	if err != nil {
		switch mailreg.ErrorCode(err) {
		case mailreg.ErrNotFound:
			return NewError(err, http.StatusNotFound, "No pending registration for this email address.")
		case mailreg.ErrInvalid, mailreg.ErrExpired:
			return NewError(err, http.StatusBadRequest, "This registration can no longer be activated.")
		}
		return err
	}

	writeJSONResponse(w, http.StatusOK, &adminResponse{Message: "Activated " + sub.Email + "."})
	return nil
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(response)
}
