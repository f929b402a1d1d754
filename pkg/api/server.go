package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

// Config controls the query service's listener and per-request policy.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
	MaxInFlight    int    // admission cap; excess requests get 503 rather than queueing
	CORSOrigin     string // empty means same-origin only
	ShutdownGrace  time.Duration
}

// DefaultConfig returns a Config suitable for serving point queries: the
// work per request is one bidirectional search over an in-memory graph, so
// timeouts are short and the in-flight cap tracks the CPU count.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:           addr,
		RequestTimeout: 5 * time.Second,
		MaxInFlight:    runtime.NumCPU() * 2,
		CORSOrigin:     "",
		ShutdownGrace:  10 * time.Second,
	}
}

// Server serves distance queries over one immutable preprocessed graph.
// The graph needs no locking; the only shared mutable state is the
// in-flight admission channel.
type Server struct {
	cfg      Config
	http     *http.Server
	inFlight chan struct{}
}

// NewServer wires the route table and per-request policy around h.
func NewServer(cfg Config, h *Handlers) *Server {
	s := &Server{
		cfg:      cfg,
		inFlight: make(chan struct{}, cfg.MaxInFlight),
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/route", s.guard(h.HandleRoute))
	mux.Handle("GET /api/v1/health", s.guard(h.HandleHealth))
	mux.Handle("GET /api/v1/stats", s.guard(h.HandleStats))

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}
	return s
}

// guard applies the per-request policy shared by every route: response
// headers, admission against the in-flight cap, panic containment, a
// request deadline, and a timing log line.
func (s *Server) guard(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("X-Content-Type-Options", "nosniff")
		hdr.Set("X-Frame-Options", "DENY")
		hdr.Set("Cache-Control", "no-store")
		if s.cfg.CORSOrigin != "" {
			hdr.Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		}

		select {
		case s.inFlight <- struct{}{}:
			defer func() { <-s.inFlight }()
		default:
			hdr.Set("Retry-After", "1")
			http.Error(w, `{"error":"service_unavailable"}`, http.StatusServiceUnavailable)
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s: %v", r.URL.Path, rec)
				http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
			}
		}()

		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()

		start := time.Now()
		h(w, r.WithContext(ctx))
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	})
}

// ListenAndServe runs the server until it fails or a SIGTERM/SIGINT
// arrives, then drains in-flight requests within the shutdown grace
// period.
func (s *Server) ListenAndServe() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	failed := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", s.http.Addr)
		failed <- s.http.ListenAndServe()
	}()

	select {
	case err := <-failed:
		return err
	case sig := <-stop:
		log.Printf("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
		defer cancel()
		return s.http.Shutdown(ctx)
	}
}
