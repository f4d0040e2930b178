package http

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntquang/mailreg"
	"github.com/ntquang/mailreg/mock"
	"github.com/ntquang/mailreg/pkg/hash"
)

var cfg *mailreg.Config

func TestMain(m *testing.M) {
	viper.SetConfigType("yaml")
	var yamlConfig = []byte(`
mailinglist:
  admin:
    secret: da02e221bc331c9875c5e1299fa8d765
  flash:
    secret: 53a1098b33b2547c4d0fdaf94a5b39b2
`)
	if err := viper.ReadConfig(bytes.NewBuffer(yamlConfig)); err != nil {
		log.Fatal(err)
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatal(err)
	}

	os.Exit(m.Run())
}

func newTestServer(t *testing.T, variant string) *Server {
	t.Helper()

	s, err := NewServer(variant, cfg.Mailinglist.Flash.Secret)
	require.NoError(t, err)
	s.AdminSecret = cfg.Mailinglist.Admin.Secret

	return s
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestSignupForm(t *testing.T) {
	s := newTestServer(t, VariantDefault)

	backend := new(mock.Backend)
	backend.On("RegistrationAllowed").Return(true)
	s.Backend = backend

	w := get(t, s, "/signup")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<form")
}

func TestSignupHandler(t *testing.T) {
	s := newTestServer(t, VariantDefault)

	email := "bob@example.com"
	sub := &mailreg.Subscriber{ID: 1, Email: email}

	backend := new(mock.Backend)
	backend.On("RegistrationAllowed").Return(true)
	backend.On("Register", email).Return(sub, nil)
	backend.On("SuccessOutcome", sub).Return(mailreg.RouteOutcome("registration_complete"))
	s.Backend = backend

	w := postForm(t, s, "/signup", url.Values{"email": {email}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/signup/complete", w.Header().Get("Location"))
}

func TestSignupClosed(t *testing.T) {
	s := newTestServer(t, VariantDefault)

	backend := new(mock.Backend)
	backend.On("RegistrationAllowed").Return(false)
	s.Backend = backend

	w := get(t, s, "/signup")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/signup/closed", w.Header().Get("Location"))

	w = postForm(t, s, "/signup", url.Values{"email": {"bob@example.com"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/signup/closed", w.Header().Get("Location"))
}

func TestSignupDuplicate(t *testing.T) {
	s := newTestServer(t, VariantDefault)

	email := "bob@example.com"
	message := "This email address is already in use. Please supply a different email address."

	backend := new(mock.Backend)
	backend.On("RegistrationAllowed").Return(true)
	backend.On("Register", email).Return(nil, &mailreg.Error{Code: mailreg.ErrInvalid, Message: message})
	s.Backend = backend

	w := postForm(t, s, "/signup", url.Values{"email": {email}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), message)
}

func TestSimpleSignupHandler(t *testing.T) {
	s := newTestServer(t, VariantSimple)

	email := "bob@example.com"
	sub := &mailreg.Subscriber{ID: 1, Email: email, IsActive: true}

	backend := new(mock.Backend)
	backend.On("RegistrationAllowed").Return(true)
	backend.On("Register", email).Return(sub, nil)
	backend.On("SuccessOutcome", sub).Return(mailreg.RouteOutcome("registration_confirmed"))
	s.Backend = backend

	w := postForm(t, s, "/signup", url.Values{"email": {email}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/signup/confirmed", w.Header().Get("Location"))
}

func TestActivateHandler(t *testing.T) {
	s := newTestServer(t, VariantDefault)

	key := "abcdef0123456789abcdef0123456789abcdef01"
	sub := &mailreg.Subscriber{ID: 1, Email: "bob@example.com", IsActive: true, DeactivationKey: key}

	activation := new(mock.ActivationService)
	activation.On("Activate", key).Return(sub, nil)
	s.ActivationService = activation

	w := get(t, s, "/confirm/"+key)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/confirm/complete", w.Header().Get("Location"))
}

func TestActivateHandlerFailure(t *testing.T) {
	s := newTestServer(t, VariantDefault)

	// A malformed key still reaches the handler and gets the failure
	// page, not a 404.
	key := "not-a-valid-hex-token"

	activation := new(mock.ActivationService)
	activation.On("Activate", key).Return(nil, &mailreg.Error{Code: mailreg.ErrInvalid})
	s.ActivationService = activation

	w := get(t, s, "/confirm/"+key)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or has expired")
}

func TestActivateHandlerExpired(t *testing.T) {
	s := newTestServer(t, VariantDefault)

	key := "abcdef0123456789abcdef0123456789abcdef01"

	activation := new(mock.ActivationService)
	activation.On("Activate", key).Return(nil, &mailreg.Error{Code: mailreg.ErrExpired})
	s.ActivationService = activation

	w := get(t, s, "/confirm/"+key)
	// Expired and unknown keys must be indistinguishable to the visitor.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or has expired")
}

func TestMessagesSignupHandler(t *testing.T) {
	s := newTestServer(t, VariantMessages)

	email := "bob@example.com"
	sub := &mailreg.Subscriber{ID: 1, Email: email}

	backend := new(mock.Backend)
	backend.On("Register", email).Return(sub, nil)
	backend.On("SuccessOutcome", sub).Return(mailreg.URLOutcome("/"))
	s.Backend = backend

	w := postForm(t, s, "/", url.Values{"email": {email}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"), "success must leave a flash message")
}

func TestMessagesUnsubscribeHandler(t *testing.T) {
	s := newTestServer(t, VariantMessages)

	key := "abcdef0123456789abcdef0123456789abcdef01"

	activation := new(mock.ActivationService)
	activation.On("Deactivate", key).Return("bob@example.com", nil)
	s.ActivationService = activation

	w := get(t, s, "/unsubscribe/"+key)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestMessagesUnsubscribeHandlerNotFound(t *testing.T) {
	s := newTestServer(t, VariantMessages)

	key := "abcdef0123456789abcdef0123456789abcdef01"

	activation := new(mock.ActivationService)
	activation.On("Deactivate", key).Return("", &mailreg.Error{Code: mailreg.ErrNotFound})
	s.ActivationService = activation

	w := get(t, s, "/unsubscribe/"+key)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestAdminResendHandler(t *testing.T) {
	s := newTestServer(t, VariantDefault)

	email := "bob@example.com"
	hashValue, err := hash.ComputeHmac256(email, cfg.Mailinglist.Admin.Secret)
	require.NoError(t, err)

	activation := new(mock.ActivationService)
	activation.On("ResendActivationEmail", email).Return(nil)
	s.ActivationService = activation

	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("/admin/resend?email=%s&hash=%s", url.QueryEscape(email), url.QueryEscape(hashValue)), nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminResendHandlerBadHash(t *testing.T) {
	s := newTestServer(t, VariantDefault)

	activation := new(mock.ActivationService)
	s.ActivationService = activation

	req, err := http.NewRequest(http.MethodPost, "/admin/resend?email=bob%40example.com&hash=bogus", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	activation.AssertNotCalled(t, "ResendActivationEmail", "bob@example.com")
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, VariantDefault)

	w := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}
