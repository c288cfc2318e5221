package api

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/scalerwatch/internal/api/models"
	"github.com/smazurov/scalerwatch/internal/logging"
	"github.com/smazurov/scalerwatch/internal/report"
	"github.com/smazurov/scalerwatch/internal/version"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

// Source is the running monitor as seen by the API.
type Source interface {
	Latest() (report.Report, bool)
	Header() (ascal.Header, ascal.Layout)
}

// CounterReader returns the per-buffer frame counters of a layout.
type CounterReader func(ascal.Layout) [3]uint8

// Options configures the API server.
type Options struct {
	AuthUsername      string
	AuthPassword      string
	Source            Source
	Counters          CounterReader
	StreamHandler     http.Handler // Optional websocket report stream
	PrometheusHandler http.Handler // Optional Prometheus metrics handler
}

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 2 * time.Second

// Server serves the monitor state over HTTP.
type Server struct {
	api     huma.API
	mux     *http.ServeMux
	options *Options
	logger  *slog.Logger
}

// NewServer creates a new API server with Huma v2 using Go 1.22+ native routing
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("scalerwatch API", version.Version)
	config.Info.Description = "Live state of the MiSTer scaler framebuffer monitor"
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	server := &Server{
		api:     api,
		mux:     mux,
		options: opts,
		logger:  logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}
	if opts.StreamHandler != nil {
		stream := opts.StreamHandler
		if opts.AuthUsername != "" && opts.AuthPassword != "" {
			stream = requireBasicAuth(stream, opts.AuthUsername, opts.AuthPassword)
		}
		mux.Handle("GET /ws", stream)
	}

	server.registerRoutes()
	return server
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// GetAPI returns the Huma API instance
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("Starting API server", "addr", addr)
	s.logger.Debug("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Stopping API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// basicAuthMiddleware rejects requests to secured operations without the
// configured credentials.
func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		if !credentialsMatch(ctx.Header("Authorization"), username, password) {
			ctx.SetHeader("WWW-Authenticate", `Basic realm="scalerwatch"`)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Authentication required")
			return
		}
		next(ctx)
	}
}

// requireBasicAuth guards plain handlers mounted outside the Huma API.
func requireBasicAuth(next http.Handler, username, password string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !credentialsMatch(r.Header.Get("Authorization"), username, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="scalerwatch"`)
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func credentialsMatch(header, username, password string) bool {
	user, pass, ok := parseBasicAuth(header)
	return ok &&
		subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1 &&
		subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
}

func parseBasicAuth(header string) (string, string, bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", false
	}
	return user, pass, true
}

// withAuth returns security requirement for basic auth
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Health",
		Description: "Report whether the monitor has produced a frame report",
		Tags:        []string{"health"},
		Security:    []map[string][]string{},
		Errors:      []int{503},
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		if _, ok := s.options.Source.Latest(); !ok {
			return nil, huma.Error503ServiceUnavailable("No frame sampled yet")
		}
		return &models.HealthResponse{
			Body: models.HealthData{Status: "ok", Message: "Scaler header found"},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		return &models.VersionResponse{Body: version.Get()}, nil
	})

	s.registerStatusRoutes()
}
