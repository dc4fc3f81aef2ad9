package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ccastromar/aos-graphql-explorer/internal/health"
	"github.com/ccastromar/aos-graphql-explorer/internal/logx"
	"github.com/ccastromar/aos-graphql-explorer/internal/metrics"
	"github.com/ccastromar/aos-graphql-explorer/internal/runtime"
	"github.com/ccastromar/aos-graphql-explorer/internal/trace"
)

type HTTPServer struct {
	srv *http.Server
}

// httpPort holds the port used by the HTTP server. Default is 9090.
var httpPort = "9090"

// SetHTTPPort allows overriding the default HTTP port before starting the app.
func SetHTTPPort(p string) {
	if p == "" {
		return
	}
	httpPort = p
}

func NewHTTPServer(ask *askHandler, traces *trace.Store, rt *runtime.Runtime) *HTTPServer {
	mux := http.NewServeMux()

	ask.RegisterHTTP(mux)
	mux.HandleFunc("/turns", traces.HandleIndex)
	mux.HandleFunc("/turn", traces.HandleTurn)
	mux.HandleFunc("/health/live", health.LiveHandler)
	mux.HandleFunc("/health/ready", health.NewReadyHandler(rt))
	mux.Handle("/metrics", metrics.Handler())

	hardened := secureMiddleware(countRequests(mux))

	return &HTTPServer{
		srv: &http.Server{
			Addr:              ":" + httpPort,
			Handler:           hardened,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// a turn may chain introspection and two model calls
			WriteTimeout:   120 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
	}
}

func (h *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logx.Info("HTTP", "listening on %s", h.srv.Addr)
		errCh <- h.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logx.Info("HTTP", "shutting down server...")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return h.srv.Shutdown(shutCtx)
	}
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (h *HTTPServer) Handler() http.Handler { return h.srv.Handler }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
	})
}

// secureMiddleware adds basic hardening to HTTP server:
// common security headers, a body size limit and no TRACE.
func secureMiddleware(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodTrace {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-XSS-Protection", "0")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}

		next.ServeHTTP(w, r)
	})
}
