package apiserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fightclub/arenacore/internal/metrics"
	"github.com/fightclub/arenacore/room"
)

// RoomProvider resolves a room dispatcher by room ID. A single-room
// deployment can return the same *room.Dispatcher unconditionally.
type RoomProvider interface {
	Room(id string) (*room.Dispatcher, bool)
}

// RouterConfig is the dependency-injected construction surface for
// NewRouter, mirroring the teacher's RouterConfig shape.
type RouterConfig struct {
	Rooms             RoomProvider
	RateLimiter       *IPRateLimiter
	RateLimitConfig   *RateLimitConfig
	CORSOrigins       []string
	TrustProxyHeaders bool
	DisableLogging    bool
}

// NewRouter constructs the HTTP router with every middleware and route
// wired, but starts no goroutines and opens no listener — pure
// construction, safe to use directly with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rlCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rlCfg)
	}
	r.Use(rateLimiter.Middleware(cfg.TrustProxyHeaders))

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &handlers{rooms: cfg.Rooms, trustProxyHeaders: cfg.TrustProxyHeaders}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms/{roomID}/ws", h.handleWS)
	})

	wrapped := instrumentedHandler(r)
	mux := chi.NewRouter()
	mux.Mount("/", wrapped)
	return mux
}

// instrumentedHandler records request latency with a bounded route label
// (the matched chi pattern, never the raw URL).
func instrumentedHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(r.Method, route, time.Since(start))
	})
}
