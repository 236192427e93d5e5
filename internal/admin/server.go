// Package admin exposes the management console API: destroying rooms,
// kicking players and forcing ready marks. Every operation requires a
// JWT obtained through the password login and is recorded in an audit
// log.
package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"golang.org/x/crypto/bcrypt"

	"github.com/udisondev/phira-mp/internal/config"
	"github.com/udisondev/phira-mp/internal/room"
)

// Server is the admin console HTTP API.
type Server struct {
	cfg      config.Admin
	registry *room.Registry
	ops      *OpLog
	limiter  *limiter.Limiter
	echo     *echo.Echo
	now      func() time.Time
}

// NewServer wires the console against the room registry. It fails when
// the configured rate limit does not parse or no JWT secret is set.
func NewServer(cfg config.Admin, registry *room.Registry) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("admin jwt secret is not configured")
	}
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("parsing admin rate limit %q: %w", cfg.RateLimit, err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Debug("admin request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	s := &Server{
		cfg:      cfg,
		registry: registry,
		ops:      NewOpLog(),
		limiter:  limiter.New(memory.NewStore(), rate),
		echo:     e,
		now:      time.Now,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.POST("/api/login", s.handleLogin, s.rateLimit)

	api := s.echo.Group("/api", s.requireAuth, s.rateLimit)
	api.POST("/rooms/:id/destroy", s.handleDestroy)
	api.POST("/rooms/:id/kick", s.handleKick)
	api.POST("/rooms/:id/ready", s.handleReady)
	api.GET("/operations", s.handleOperations)
}

// Run starts the console on addr and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	slog.Info("admin server started", "address", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutCtx)
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// rateLimit rejects clients that exceed the per-IP operation budget.
func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		lctx, err := s.limiter.Get(c.Request().Context(), c.RealIP())
		if err != nil {
			// Memory store failures should not lock operators out.
			slog.Error("rate limiter failed", "error", err)
			return next(c)
		}
		if lctx.Reached {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		}
		return next(c)
	}
}

// requireAuth validates the Bearer token on every console operation.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		return next(c)
	}
}

// LoginRequest is the body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		slog.Warn("admin login rejected", "ip", c.RealIP(), "username", req.Username)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	expires := s.now().Add(s.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.Username,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("signing session token: %w", err)
	}

	slog.Info("admin logged in", "ip", c.RealIP())
	return c.JSON(http.StatusOK, LoginResponse{Token: signed, ExpiresAt: expires})
}

// TargetRequest names the player an operation applies to.
type TargetRequest struct {
	UserID int32 `json:"userId"`
}

func (s *Server) handleDestroy(c echo.Context) error {
	roomID := c.Param("id")
	if err := s.registry.ForceDestroy(roomID); err != nil {
		return forceError(err)
	}
	s.ops.Add("destroy", "room "+roomID, c.RealIP())
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleKick(c echo.Context) error {
	roomID := c.Param("id")
	var req TargetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.registry.ForceKick(roomID, req.UserID); err != nil {
		return forceError(err)
	}
	s.ops.Add("kick", fmt.Sprintf("user %d from room %s", req.UserID, roomID), c.RealIP())
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleReady(c echo.Context) error {
	roomID := c.Param("id")
	var req TargetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.registry.ForceReady(roomID, req.UserID); err != nil {
		return forceError(err)
	}
	s.ops.Add("ready", fmt.Sprintf("user %d in room %s", req.UserID, roomID), c.RealIP())
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleOperations(c echo.Context) error {
	return c.JSON(http.StatusOK, s.ops.Entries())
}

// forceError maps registry failures onto HTTP statuses.
func forceError(err error) error {
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, room.ErrNotReadyState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}
}
