// Package web serves the dashboard to a browser: a password form, the live
// feed page and a server-sent events stream of the feed.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/penwyp/go-automission-monitor/internal/application/dashboard"
	"github.com/penwyp/go-automission-monitor/internal/core/auth"
	"github.com/penwyp/go-automission-monitor/internal/core/state"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Options configure a Server.
type Options struct {
	Source   source.Source
	Checker  auth.CredentialChecker
	Sessions *Sessions
	Query    source.Query

	// PreloadTimeout bounds the first snapshot fetched for the page render.
	PreloadTimeout time.Duration
	// Secure marks the session cookie HTTPS-only.
	Secure         bool
}

// Server holds the web handlers.
type Server struct {
	src      source.Source
	checker  auth.CredentialChecker
	sessions *Sessions
	query    source.Query
	preload  time.Duration
	secure   bool
}

func NewServer(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, errors.New("web: no record source")
	}
	if opts.Checker == nil {
		opts.Checker = auth.NewStaticChecker(auth.DefaultSecret)
	}
	if opts.Sessions == nil {
		s, err := NewSessions("", 0)
		if err != nil {
			return nil, err
		}
		opts.Sessions = s
	}
	if opts.Query == (source.Query{}) {
		opts.Query = source.DefaultQuery()
	}
	opts.Query = opts.Query.WithLimit(opts.Query.Limit)
	if err := opts.Query.Validate(); err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	if opts.PreloadTimeout <= 0 {
		opts.PreloadTimeout = 2 * time.Second
	}
	return &Server{
		src:      opts.Source,
		checker:  opts.Checker,
		sessions: opts.Sessions,
		query:    opts.Query,
		preload:  opts.PreloadTimeout,
		secure:   opts.Secure,
	}, nil
}

// Handler registers routes and the middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/", s.index)
	r.Post("/login", s.login)
	r.Post("/logout", s.logout)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/events", s.events)
		r.Get("/api/snapshot", s.snapshot)
	})
	return r
}

// Serve runs the HTTP server on addr until ctx ends.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		util.LogInfo("Web dashboard listening", util.F("addr", addr))
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
		util.LogInfo("Shutting down web dashboard")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticated(r) {
			http.Error(w, errUnauthorized.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticated(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}
	return s.sessions.Verify(c.Value) == nil
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if !s.authenticated(r) {
		s.renderLogin(w, http.StatusOK, "")
		return
	}

	st := state.Reduce(state.State{}, state.Authenticated{})
	st, err := dashboard.Fetch(r.Context(), s.src, st, s.query, s.preload)
	if err != nil {
		util.LogWarn("Preload failed", util.F("error", err))
		if st.LastError == "" {
			st = state.Reduce(st, state.SubscriptionStarted{})
		}
	}
	v := view.Build(st, util.GetTimeProvider().Now(), view.WithLimit(s.query.Limit))
	s.renderDashboard(w, v.Dashboard)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, http.StatusBadRequest, "")
		return
	}

	var message string
	gate := state.NewGate(s.checker, state.NotifierFunc(func(m string) { message = m }))
	st := gate.Submit(state.State{}, r.PostForm.Get("password"))
	if !st.Authenticated {
		s.renderLogin(w, http.StatusUnauthorized, message)
		return
	}

	token, exp, err := s.sessions.Issue()
	if err != nil {
		util.LogError("Issue session failed", util.F("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	st := state.Reduce(state.State{}, state.Authenticated{})
	st, err := dashboard.Fetch(r.Context(), s.src, st, s.query, s.preload)
	if err != nil && st.LastError == "" {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	v := view.Build(st, util.GetTimeProvider().Now(), view.WithLimit(s.query.Limit))
	data, err := sonic.Marshal(formatter.NewReport(v.Dashboard))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
