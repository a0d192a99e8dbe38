package app

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageMonth = "month.html"
	pageDay   = "day.html"
	pagePrint = "print.html"
)

// appointmentEntry carries the day key into the per-appointment partial
type appointmentEntry struct {
	Date string
	agenda.Appointment
}

var templateFuncs = template.FuncMap{
	"entry": func(date string, a agenda.Appointment) appointmentEntry {
		return appointmentEntry{Date: date, Appointment: a}
	},
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
}

// parsePages builds one template set per page; month and day share the layout
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template)

	for _, name := range []string{pageMonth, pageDay} {
		t, err := template.New(name).Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}

	t, err := template.New(pagePrint).Funcs(templateFuncs).ParseFS(templateFS, "templates/"+pagePrint)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pagePrint, err)
	}
	pages[pagePrint] = t

	return pages, nil
}

// render executes page into a buffer so template errors still produce a clean 500
func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := s.pages[page]
	if !ok {
		s.logger.Error("unknown page", "page", page)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	entry := "layout"
	if page == pagePrint {
		entry = pagePrint
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, entry, data); err != nil {
		s.logger.Error("rendering page", "page", page, "error", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("writing page", "page", page, "error", err)
	}
}
