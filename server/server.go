package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/server/endpoint"
	"github.com/kbukum/asrgate/server/middleware"
)

// shutdownGrace bounds Stop on top of the caller's context.
const shutdownGrace = 5 * time.Second

// Server serves a Gin engine behind the middleware chain. Plain-text HTTP/2
// (h2c) is accepted for callers behind a TLS-terminating proxy.
type Server struct {
	cfg     Config
	engine  *gin.Engine
	chain   http.Handler
	httpSrv *http.Server
	log     *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New builds a server with an empty engine. Mount routes on GinEngine and
// call ApplyMiddleware before Start.
func New(cfg Config, log *logger.Logger) *Server {
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	return &Server{
		cfg:    cfg,
		engine: gin.New(),
		httpSrv: &http.Server{
			Addr:              cfg.addr(),
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		log: log.WithComponent("server"),
	}
}

// GinEngine is where routes are registered.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// ApplyMiddleware wraps the engine in recovery, request id, CORS, the body
// size limit and request logging, then extra in the given order.
func (s *Server) ApplyMiddleware(extra ...middleware.Middleware) {
	chain := []middleware.Middleware{
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(&s.cfg.CORS),
	}
	if s.cfg.MaxBodySize != "" {
		chain = append(chain, middleware.BodySizeLimit(s.cfg.MaxBodySize))
	}
	chain = append(chain, middleware.RequestLogger(s.log))
	s.chain = middleware.Chain(append(chain, extra...)...)(s.engine)
}

// Handler is the complete handler: middleware chain, then h2c.
func (s *Server) Handler() http.Handler {
	var inner http.Handler = s.engine
	if s.chain != nil {
		inner = s.chain
	}
	return h2c.NewHandler(inner, &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          s.cfg.IdleTimeout,
	})
}

// RegisterDefaultEndpoints mounts GET /health and GET /info.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName))
}

// Start binds the port and serves in the background. A nil return means
// the port accepts connections.
func (s *Server) Start(context.Context) error {
	s.httpSrv.Handler = s.Handler()
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("server: bind %s: %w", s.httpSrv.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("serve failed", logger.ErrorFields("serve", err))
		}
	}()
	s.log.Info("listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop drains in-flight requests for at most shutdownGrace.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.log.Error("shutdown failed", logger.ErrorFields("shutdown", err))
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.log.Info("stopped")
	return nil
}

// Addr is the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.httpSrv.Addr
	}
	return s.listener.Addr().String()
}

// Started reports whether the listener is bound.
func (s *Server) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}
