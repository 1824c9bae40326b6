package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noislabs/drand-relay/module/component"
	"github.com/noislabs/drand-relay/module/irrecoverable"
)

// StatusReporter provides a JSON serializable snapshot of the relay state.
type StatusReporter interface {
	Status() any
}

// Server is the http server that will be serving the /metrics request for prometheus
// and the /status request for operators.
type Server struct {
	*component.ComponentManager
	server *http.Server
	log    zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new server that will listen on addr once started.
func NewServer(log zerolog.Logger, addr string, gatherer prometheus.Gatherer, status StatusReporter) *Server {
	log = log.With().Str("component", "metrics_server").Logger()

	router := mux.NewRouter().StrictSlash(true)
	router.Use(loggingMiddleware(log))
	router.Methods(http.MethodGet).Path("/metrics").Handler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Methods(http.MethodGet).Path("/health").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if status != nil {
		router.Methods(http.MethodGet).Path("/status").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=UTF-8")
			if err := json.NewEncoder(w).Encode(status.Status()); err != nil {
				log.Warn().Err(err).Msg("failed to encode status")
			}
		})
	}

	m := &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
	m.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(m.serve).
		Build()
	return m
}

// Addr returns the address the server listens on, or nil if it has not been started yet.
func (m *Server) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return nil
	}
	return m.listener.Addr()
}

func (m *Server) serve(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	listener, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		ctx.Throw(err)
	}
	m.mu.Lock()
	m.listener = listener
	m.mu.Unlock()

	m.log.Info().Str("address", listener.Addr().String()).Msg("metrics server started")
	ready()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.server.Shutdown(shutdownCtx)
	}()

	if err := m.server.Serve(listener); err != nil {
		// http.ErrServerClosed is returned when Close or Shutdown is called
		// we don't consider this an error, so print this with debug level instead
		if errors.Is(err, http.ErrServerClosed) {
			m.log.Debug().Err(err).Msg("metrics server shutdown")
			return
		}
		ctx.Throw(err)
	}
}

// loggingMiddleware logs every request at debug level, and non-200 responses at warn level.
func loggingMiddleware(log zerolog.Logger) mux.MiddlewareFunc {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			handler.ServeHTTP(rw, req)

			event := log.Debug()
			if rw.statusCode != http.StatusOK {
				event = log.Warn()
			}
			event.Str("method", req.Method).
				Str("uri", req.RequestURI).
				Dur("duration", time.Since(start)).
				Int("response_code", rw.statusCode).
				Msg("api")
		})
	}
}

// responseWriter is a wrapper around http.ResponseWriter and helps capture the response code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
