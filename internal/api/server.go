package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ytscribe/internal/config"
	"ytscribe/internal/logging"
	"ytscribe/internal/services"
	"ytscribe/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionCookie   = "ytscribe_session"
	shutdownTimeout = 5 * time.Second
	minWriteTimeout = 30 * time.Second
)

// Server hosts the HTML page and JSON API.
type Server struct {
	bind       string
	cookieTTL  time.Duration
	logger     *slog.Logger
	store      *session.Store
	controller *session.Controller
	engine     *gin.Engine

	lockPath string
	lock     *flock.Flock
	listener net.Listener
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore replaces the session store.
func WithStore(store *session.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// NewServer wires the session controller around fetcher and client and
// builds the HTTP routes.
func NewServer(cfg *config.Config, fetcher session.CaptionFetcher, client session.ModelClient, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("api server requires configuration")
	}
	s := &Server{
		bind:      strings.TrimSpace(cfg.Server.Bind),
		cookieTTL: cfg.SessionTTL(),
		logger:    logging.NewNop(),
		lockPath:  cfg.LockPath(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = session.NewStore(cfg.SessionTTL())
	}
	s.controller = session.NewController(fetcher, client,
		session.WithDefaultModel(cfg.Clarifai.DefaultModel),
		session.WithLogger(s.logger),
		session.WithObserver(s.publish),
	)

	engine, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.engine = engine

	writeTimeout := minWriteTimeout
	for _, t := range []time.Duration{cfg.ClarifaiTimeout(), cfg.FetcherTimeout()} {
		if t+10*time.Second > writeTimeout {
			writeTimeout = t + 10*time.Second
		}
	}
	s.server = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() (*gin.Engine, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/", s.handlePage)
	engine.POST("/reference", s.handleFormReference)
	engine.POST("/punctuate", s.handleFormPunctuate)
	engine.POST("/metadata", s.handleFormMetadata)
	engine.GET("/healthz", s.handleHealth)

	apiGroup := engine.Group("/api")
	{
		apiGroup.GET("/models", s.handleModels)
		apiGroup.POST("/sessions", s.handleCreateSession)
		apiGroup.GET("/sessions/:id", s.handleGetSession)
		apiGroup.PUT("/sessions/:id/reference", s.handleSetReference)
		apiGroup.POST("/sessions/:id/punctuate", s.handlePunctuate)
		apiGroup.POST("/sessions/:id/metadata", s.handleGenerateMetadata)
	}
	return engine, nil
}

// Handler exposes the routes for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store exposes the session store.
func (s *Server) Store() *session.Store {
	return s.store
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start acquires the instance lock and begins serving in the background. The
// server shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	s.lock = flock.New(s.lockPath)
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another ytscribe server is already running (lock %s)", s.lockPath)
	}

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.lockPath),
	)
	return nil
}

// Stop shuts the server down and releases the instance lock.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			s.log().Warn("failed to release server lock", logging.Error(err))
		}
		s.lock = nil
	}
}

// publish exposes in-flight states to concurrent readers of the session.
func (s *Server) publish(ctx context.Context, st session.State) {
	if id, ok := services.SessionIDFromContext(ctx); ok {
		s.store.Publish(id, st)
	}
}

func (s *Server) actionContext(c *gin.Context, id string) context.Context {
	ctx := services.WithSessionID(c.Request.Context(), id)
	return services.WithRequestID(ctx, uuid.NewString())
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.log().Debug("http request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(started)),
		)
	}
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
