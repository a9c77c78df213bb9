package infra

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 15 * time.Second

// Job is background work that runs for the server's lifetime and must return
// once ctx is done.
type Job func(ctx context.Context)

// HTTPServer serves the API and owns the background jobs that stop with it.
type HTTPServer struct {
	server          *http.Server
	logger          zerolog.Logger
	shutdownTimeout time.Duration
	jobs            []Job
}

func NewHTTPServer(cfg *Config, handler http.Handler, logger zerolog.Logger) *HTTPServer {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	return &HTTPServer{server: srv, logger: logger, shutdownTimeout: timeout}
}

// Go registers a job started by Run.
func (s *HTTPServer) Go(job Job) {
	s.jobs = append(s.jobs, job)
}

// Run listens on the configured address until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is done or the listener fails, then drains
// in-flight requests and waits for every job to return.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()

	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			job(jobCtx)
		}(job)
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Int("jobs", len(s.jobs)).Msg("http server listening")
		serveErr <- s.server.Serve(ln)
	}()

	var err error
	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		err = s.server.Shutdown(shutdownCtx)
		cancel()
		if serr := <-serveErr; serr != nil && !errors.Is(serr, http.ErrServerClosed) && err == nil {
			err = serr
		}
	}

	cancelJobs()
	wg.Wait()
	s.logger.Info().Msg("http server stopped")
	return err
}
