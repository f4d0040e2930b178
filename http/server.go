package http

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/ntquang/mailreg"
)

const (
	shutdownTimeout = 1 * time.Second
)

// Route layout variants
const (
	VariantDefault  = "default"
	VariantSimple   = "simple"
	VariantMessages = "messages"
)

// Server represents HTTP server
type Server struct {
	ln     net.Listener
	server *http.Server
	router *mux.Router
	flash  *sessions.CookieStore

	Addr   string
	Domain string

	Backend           mailreg.Backend
	ActivationService mailreg.ActivationService
	AdminSecret       string
}

// NewServer creates a new HTTP server exposing one of the three route
// layouts: double opt-in pages (default), one-step signup (simple), or
// flash messages on a single index page (messages).
func NewServer(variant, flashSecret string) (*Server, error) {
	s := &Server{
		server: &http.Server{},
		router: mux.NewRouter().StrictSlash(true),
		flash:  sessions.NewCookieStore([]byte(flashSecret)),
	}

	zlog := zerolog.New(os.Stdout).With().
		Timestamp().
		Logger()
	s.router.Use(hlog.NewHandler(zlog))
	s.router.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	}))
	s.router.Use(hlog.UserAgentHandler("user_agent"))
	s.router.Use(hlog.RefererHandler("referer"))
	s.router.Use(hlog.RequestIDHandler("req_id", "Request-Id"))

	sentryHandler := sentryhttp.New(sentryhttp.Options{})
	s.router.Use(sentryHandler.Handle)

	s.server.Handler = http.HandlerFunc(s.serveHTTP)

	s.router.HandleFunc("/health", s.healthCheckHandler)
	s.router.HandleFunc("/admin/resend", s.Error(s.adminResendHandler)).Methods(http.MethodPost)
	s.router.HandleFunc("/admin/activate", s.Error(s.adminActivateHandler)).Methods(http.MethodPost)

	switch variant {
	case VariantSimple:
		s.router.HandleFunc("/signup", s.Error(s.signupFormHandler)).Methods(http.MethodGet).Name("registration_register")
		s.router.HandleFunc("/signup", s.Error(s.signupHandler)).Methods(http.MethodPost)
		s.router.HandleFunc("/signup/closed", s.Error(s.pageHandler("registration_closed.html"))).Methods(http.MethodGet).Name("registration_disallowed")
		s.router.HandleFunc("/signup/confirmed", s.Error(s.pageHandler("registration_complete.html"))).Methods(http.MethodGet).Name("registration_confirmed")
	case VariantMessages:
		s.router.HandleFunc("/", s.Error(s.indexHandler)).Methods(http.MethodGet).Name("index")
		s.router.HandleFunc("/", s.Error(s.signupFlashHandler)).Methods(http.MethodPost)
		s.router.HandleFunc("/confirm/{key}", s.Error(s.activateFlashHandler)).Methods(http.MethodGet)
		s.router.HandleFunc("/unsubscribe/{key}", s.Error(s.unsubscribeFlashHandler)).Methods(http.MethodGet)
	default:
		s.router.HandleFunc("/signup", s.Error(s.signupFormHandler)).Methods(http.MethodGet).Name("registration_register")
		s.router.HandleFunc("/signup", s.Error(s.signupHandler)).Methods(http.MethodPost)
		s.router.HandleFunc("/signup/complete", s.Error(s.pageHandler("registration_complete.html"))).Methods(http.MethodGet).Name("registration_complete")
		s.router.HandleFunc("/signup/closed", s.Error(s.pageHandler("registration_closed.html"))).Methods(http.MethodGet).Name("registration_disallowed")
		s.router.HandleFunc("/confirm/complete", s.Error(s.pageHandler("activation_complete.html"))).Methods(http.MethodGet).Name("activation_complete")
		// Keys are matched loosely so a malformed key still reaches the
		// handler and gets a proper failure page instead of a 404.
		s.router.HandleFunc("/confirm/{key}", s.Error(s.activateHandler)).Methods(http.MethodGet)
	}

	return s, nil
}

// Scheme returns scheme
func (s *Server) Scheme() string {
	if s.UseTLS() {
		return "https"
	}
	return "http"
}

// UseTLS checks if server use TLS or not
func (s *Server) UseTLS() bool {
	return s.Domain != ""
}

// Port returns server port
func (s *Server) Port() int {
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// URL returns server URL
func (s *Server) URL() string {
	scheme, port := s.Scheme(), s.Port()

	domain := "localhost"
	if s.Domain != "" {
		domain = s.Domain
	}

	if port == 80 || port == 443 || flag.Lookup("test.v") != nil {
		return fmt.Sprintf("%s://%s", scheme, domain)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, domain, s.Port())
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// redirectOutcome resolves an outcome to a URL and redirects there.
func (s *Server) redirectOutcome(w http.ResponseWriter, r *http.Request, o mailreg.Outcome) error {
	if o.URL != "" {
		http.Redirect(w, r, o.URL, http.StatusFound)
		return nil
	}

	return s.redirectRoute(w, r, o.Route)
}

func (s *Server) redirectRoute(w http.ResponseWriter, r *http.Request, name string) error {
	route := s.router.Get(name)
	if route == nil {
		return errors.Errorf("no route named %q", name)
	}

	u, err := route.URL()
	if err != nil {
		return errors.Errorf("failed to build URL for route %q: %v", name, err)
	}

	http.Redirect(w, r, u.String(), http.StatusFound)
	return nil
}

// Open opens a connection to HTTP server
func (s *Server) Open() (err error) {
	s.ln, err = net.Listen("tcp", s.Addr)
	if err != nil {
		return errors.Errorf("failed to listen to port %s: %v", s.Addr, err)
	}

	go func() {
		_ = s.server.Serve(s.ln)
	}()

	return nil
}

// Close shutdowns HTTP server
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
