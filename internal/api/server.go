package api

import (
	"context"
	"io/fs"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/snarg/voxconvert/internal/artifact"
	"github.com/snarg/voxconvert/internal/config"
	"github.com/snarg/voxconvert/internal/metrics"
)

// ServerOptions holds everything the HTTP server serves.
type ServerOptions struct {
	Config     *config.Config
	Converter  Converter
	Store      artifact.Store // nil disables downloads
	Providers  Providers
	WebFS      fs.FS       // nil disables the web UI
	Transcoder func() bool // reports ffmpeg availability
	Version    string
	StartTime  time.Time
	Log        zerolog.Logger
}

type Server struct {
	http        *http.Server
	capture     *CaptureHandler
	conversions atomic.Int64
	log         zerolog.Logger
}

var _ metrics.LiveStats = (*Server)(nil)

func NewServer(opts ServerOptions) *Server {
	cfg := opts.Config
	s := &Server{log: opts.Log}

	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(Logger(opts.Log))
	r.Use(Recoverer)
	r.Use(CORSWithOrigins(cfg.CORSOrigins))
	r.Use(metrics.InstrumentHandler)

	r.Handle("/metrics", promhttp.Handler())

	convertH := NewConvertHandler(opts.Converter, opts.Store, int64(cfg.MaxUploadMB)<<20, opts.Log)
	s.capture = NewCaptureHandler(opts.Converter, opts.Store, cfg.Capture, cfg.CORSOrigins, opts.Log)

	r.Route("/api/v1", func(r chi.Router) {
		// Health endpoint, no auth
		health := NewHealthHandler(opts.Store, opts.Providers, opts.Transcoder, opts.Version, opts.StartTime)
		r.Get("/health", health.ServeHTTP)

		// Downloads are opened from plain links; the random artifact ID is the credential.
		if opts.Store != nil {
			NewArtifactsHandler(opts.Store, opts.Log).Routes(r)
		}

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(cfg.AuthToken))

			r.Get("/options", OptionsHandler(cfg, opts.Providers))
			if opts.WebFS != nil {
				r.Get("/tabs", TabsHandler(opts.WebFS))
			}

			// Conversions call paid upstream APIs
			r.Group(func(r chi.Router) {
				r.Use(RateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))
				r.Use(s.trackConversion)
				convertH.Routes(r)
				r.Get("/capture", s.capture.ServeHTTP)
			})
		})
	})

	if opts.WebFS != nil {
		r.Handle("/*", http.FileServerFS(opts.WebFS))
	}

	s.http = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// trackConversion counts in-flight conversion requests.
func (s *Server) trackConversion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.conversions.Add(1)
		defer s.conversions.Add(-1)
		next.ServeHTTP(w, r)
	})
}

// ActiveConversions returns the number of conversion requests in flight,
// capture sessions included.
func (s *Server) ActiveConversions() int { return int(s.conversions.Load()) }

// ActiveCaptures returns the number of open capture WebSockets.
func (s *Server) ActiveCaptures() int { return s.capture.Active() }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
