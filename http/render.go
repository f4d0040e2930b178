package http

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

type formData struct {
	Email  string
	Errors []string
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return pageTemplates.ExecuteTemplate(w, name, data)
}

// pageHandler renders a static page.
func (s *Server) pageHandler(name string) appHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		return s.render(w, http.StatusOK, name, nil)
	}
}
