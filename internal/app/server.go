// Package app serves the scheduling UI and its JSON API over an in-memory
// appointment index.
package app

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
	"github.com/klabast/wb-services/thermotec-agenda/internal/cep"
	"github.com/klabast/wb-services/thermotec-agenda/internal/httpx"
)

// AddressLookup resolves postal codes to addresses.
type AddressLookup interface {
	Lookup(ctx context.Context, raw string) (cep.Address, error)
	LookupAsync(ctx context.Context, raw string) <-chan cep.Result
}

// Options wires a Server. Index and Location are required.
type Options struct {
	Index      *agenda.Index
	Lookup     AddressLookup
	Auth       *Auth
	Logger     *slog.Logger
	Location   *time.Location
	Now        func() time.Time
	Static     fs.FS
	CEPTimeout time.Duration
}

// Server owns the appointment index for the lifetime of the process.
// Presentation code changes it only through Add and Remove.
type Server struct {
	index      *agenda.Index
	lookup     AddressLookup
	auth       *Auth
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time
	static     fs.FS
	cepTimeout time.Duration
	pages      map[string]*template.Template
}

// NewServer validates opts and parses the page templates.
func NewServer(opts Options) (*Server, error) {
	if opts.Index == nil {
		return nil, fmt.Errorf("app: index is required")
	}
	if opts.Location == nil {
		return nil, fmt.Errorf("app: location is required")
	}

	s := &Server{
		index:      opts.Index,
		lookup:     opts.Lookup,
		auth:       opts.Auth,
		logger:     opts.Logger,
		loc:        opts.Location,
		now:        opts.Now,
		static:     opts.Static,
		cepTimeout: opts.CEPTimeout,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.cepTimeout <= 0 {
		s.cepTimeout = 5 * time.Second
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s.pages = pages
	return s, nil
}

// Index returns the appointment index the server operates on.
func (s *Server) Index() *agenda.Index {
	return s.index
}

// today returns the current instant in the configured zone.
func (s *Server) today() time.Time {
	return s.now().In(s.loc)
}

// Routes returns the HTTP handler for the whole application.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		httpx.WithRequestID,
		httpx.WithAccessLog(s.logger),
		httpx.WithBodyLimit(maxBodyBytes),
		httpx.WithNoStore,
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Pages
	r.Get("/", s.ServeMonth)
	r.Get("/day/{date}", s.ServeDay)
	r.Get("/day/{date}/print", s.ServePrint)
	r.Get("/day/{date}/export/{format}", s.HandleExport)

	// API
	r.Get("/api/config", s.GetConfig)
	r.Get("/api/grid", s.GetGrid)
	r.Get("/api/days/{date}/appointments", s.ListAppointments)
	r.Get("/api/cep/{cep}", s.LookupPostalCode)

	// Changes to the index
	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Post("/day/{date}/appointments", s.SubmitAppointment)
		r.Post("/day/{date}/appointments/{id}/delete", s.SubmitDelete)
		r.Post("/api/days/{date}/appointments", s.CreateAppointment)
		r.Delete("/api/days/{date}/appointments/{id}", s.DeleteAppointment)
	})

	if s.static != nil {
		r.Handle("/static/*", http.FileServer(http.FS(s.static)))
	}

	return r
}
