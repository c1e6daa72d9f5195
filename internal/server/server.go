// Package server is a development implementation of the client
// record-keeping API, so the dashboard can run end to end without the
// production backend.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/legalhub/internal/database"
	"github.com/jask/legalhub/internal/database/repository"
	"github.com/jask/legalhub/internal/registry"
)

const maxRequestBytes = 64 << 10

// Options configures a Server.
type Options struct {
	RatePerMinute int
	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Server serves /clients/.
type Server struct {
	store  Store
	logger *zap.Logger
	opts   Options
}

func New(store Store, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = database.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	return &Server{store: store, logger: logger, opts: opts}
}

// Handler returns the routed handler with logging, CORS and rate limiting.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(logRequests(s.logger))
	r.Use(allowCORS())
	r.Use(rateLimit(s.opts.RatePerMinute))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/clients/", s.listClients)
		r.Post("/clients/", s.createClient)
	})
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("registry api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("registry api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, errorBody{Detail: detail})
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list clients", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "failed to load clients")
		return
	}
	out := make([]registry.ClientRecord, 0, len(rows))
	for _, c := range rows {
		out = append(out, toRecord(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	var draft registry.Draft
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&draft); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if detail := validateDraft(draft); detail != "" {
		writeDetail(w, http.StatusBadRequest, detail)
		return
	}

	c := repository.Client{
		ID:        s.opts.NewID(),
		FullName:  strings.TrimSpace(draft.FullName),
		Email:     strings.TrimSpace(draft.Email),
		Phone:     strings.TrimSpace(draft.Phone),
		CreatedBy: user,
		CreatedAt: s.opts.Now(),
	}
	if err := s.store.Insert(r.Context(), c); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			writeDetail(w, http.StatusBadRequest, repository.ErrDuplicateEmail.Error())
			return
		}
		s.logger.Error("create client", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "failed to save client")
		return
	}
	s.logger.Info("client created", zap.String("id", c.ID), zap.String("user", user))
	writeJSON(w, http.StatusCreated, toRecord(c))
}

// validateDraft returns the detail message for the first invalid field.
func validateDraft(d registry.Draft) string {
	if strings.TrimSpace(d.FullName) == "" {
		return "full_name is required"
	}
	email := strings.TrimSpace(d.Email)
	if email == "" {
		return "email is required"
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "email is not a valid address"
	}
	if strings.TrimSpace(d.Phone) == "" {
		return "phone is required"
	}
	return ""
}

func toRecord(c repository.Client) registry.ClientRecord {
	return registry.ClientRecord{
		ID:        registry.RecordID(c.ID),
		FullName:  c.FullName,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: registry.Timestamp{Time: c.CreatedAt},
	}
}
