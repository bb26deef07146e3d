package apiserver

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Server wraps the chi router behind a standard net/http server,
// matching the teacher's Server: construction has no side effects,
// Start is the only method that opens a network listener.
type Server struct {
	router      http.Handler
	httpServer  *http.Server
	rateLimiter *IPRateLimiter
}

// NewServer constructs a Server from a RouterConfig. No goroutines are
// started and no listener is opened until Start is called.
func NewServer(cfg RouterConfig) *Server {
	if cfg.RateLimiter == nil {
		rlCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		cfg.RateLimiter = NewIPRateLimiter(rlCfg)
	}
	return &Server{
		router:      NewRouter(cfg),
		rateLimiter: cfg.RateLimiter,
	}
}

// Router exposes the handler directly, for use with httptest.NewServer.
func (s *Server) Router() http.Handler { return s.router }

// Start begins serving on addr and blocks until the server stops or
// errors. The only method on Server that touches the network.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	log.Printf("[apiserver] listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the HTTP server down and halts the rate
// limiter's cleanup goroutine.
func (s *Server) Stop(ctx context.Context) error {
	s.rateLimiter.Stop()
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
