// Package callback runs the local listener the OAuth flow redirects the
// browser to once the backend has issued an access token.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/ethanbaker/docchat/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Completer finishes a login with the delivered token
type Completer interface {
	CompleteOAuth(ctx context.Context, token string) error
}

// Server receives GET /auth/callback?access_token=... and reports the first
// outcome through Wait
type Server struct {
	engine *gin.Engine
	http   *http.Server
	addr   string
	result chan error
	logger *zap.Logger
}

// New creates a callback server listening on CALLBACK_PORT
func New(c Completer, cfg *utils.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		addr:   net.JoinHostPort("127.0.0.1", cfg.GetWithDefault(utils.KeyCallbackPort, "3000")),
		result: make(chan error, 1),
		logger: logger.Named("callback"),
	}
	s.engine = NewEngine(c, cfg, s.logger, s.report)
	s.http = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// NewEngine builds the gin engine serving the callback routes. report, if
// non-nil, receives the outcome of every callback.
func NewEngine(c Completer, cfg *utils.Config, logger *zap.Logger, report func(error)) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault(utils.KeyCORSOrigins, "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	engine.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	})

	engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.GET("/auth/callback", func(ctx *gin.Context) {
		err := c.CompleteOAuth(ctx.Request.Context(), ctx.Query("access_token"))
		if report != nil {
			report(err)
		}

		switch {
		case err == nil:
			ctx.String(http.StatusOK, "Signed in. You can close this window and return to the terminal.")
		case errors.Is(err, errs.ErrValidation):
			ctx.String(http.StatusBadRequest, "Sign-in failed: no access token was received. Please try again.")
		default:
			logger.Error("could not complete sign-in", zap.Error(err))
			ctx.String(http.StatusInternalServerError, "Sign-in failed. Please try again.")
		}
	})

	return engine
}

// Start begins listening and returns the callback URL
func (s *Server) Start() (string, error) {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	go func() {
		if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("callback server stopped", zap.Error(err))
		}
	}()

	url := "http://" + l.Addr().String() + "/auth/callback"
	s.logger.Info("waiting for sign-in callback", zap.String("url", url))
	return url, nil
}

// Wait blocks until the first callback completes or ctx is done
func (s *Server) Wait(ctx context.Context) error {
	select {
	case err := <-s.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// report keeps only the first outcome
func (s *Server) report(err error) {
	select {
	case s.result <- err:
	default:
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		// The query carries the token; log the path only
		logger.Debug("request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
