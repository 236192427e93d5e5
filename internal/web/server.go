// Package web serves the read-only public view of the lobby: which
// rooms exist, who is in them and what has been played. It never
// mutates lobby state.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/udisondev/phira-mp/internal/history"
	"github.com/udisondev/phira-mp/internal/room"
)

// recordLimit caps how many plays one room listing returns.
const recordLimit = 50

// PlayLister reads back recorded plays. Satisfied by *history.Postgres.
type PlayLister interface {
	RecentByRoom(ctx context.Context, roomID string, limit int) ([]history.Play, error)
}

// Server is the public HTTP surface.
type Server struct {
	registry *room.Registry
	plays    PlayLister // nil when the server runs without a database
	echo     *echo.Echo
}

// NewServer constructs the public view over the given registry. plays
// may be nil; the records endpoint then returns empty lists.
func NewServer(registry *room.Registry, plays PlayLister) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Debug("web request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	s := &Server{registry: registry, plays: plays, echo: e}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/api/rooms", s.handleRooms)
	s.echo.GET("/api/rooms/:id", s.handleRoom)
	s.echo.GET("/api/rooms/:id/records", s.handleRecords)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Run starts the HTTP server on addr and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	slog.Info("web server started", "address", addr)

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

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Rooms:  s.registry.RoomCount(),
	})
}

// UserJSON is one participant in a room listing.
type UserJSON struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// RoomJSON is the public shape of one room.
type RoomJSON struct {
	ID            string     `json:"id"`
	Host          int32      `json:"host"`
	State         string     `json:"state"`
	ChartID       *int32     `json:"chartId"`
	ChartName     string     `json:"chartName,omitempty"`
	Live          bool       `json:"live"`
	Locked        bool       `json:"locked"`
	Cycle         bool       `json:"cycle"`
	Users         []UserJSON `json:"users"`
	Monitors      []UserJSON `json:"monitors"`
	ReadyCount    int        `json:"readyCount"`
	FinishedCount int        `json:"finishedCount"`
}

func roomJSON(snap room.RoomSnapshot) RoomJSON {
	out := RoomJSON{
		ID:            snap.RoomID,
		Host:          snap.HostID,
		State:         snap.State,
		ChartName:     snap.ChartName,
		Live:          snap.Live,
		Locked:        snap.Locked,
		Cycle:         snap.Cycle,
		Users:         make([]UserJSON, 0, len(snap.Users)),
		Monitors:      make([]UserJSON, 0, len(snap.Monitors)),
		ReadyCount:    snap.ReadyCount,
		FinishedCount: snap.FinishedCount,
	}
	if snap.HasChart {
		id := snap.ChartID
		out.ChartID = &id
	}
	for _, u := range snap.Users {
		out.Users = append(out.Users, UserJSON{ID: u.ID, Name: u.Name})
	}
	for _, m := range snap.Monitors {
		out.Monitors = append(out.Monitors, UserJSON{ID: m.ID, Name: m.Name})
	}
	return out
}

func (s *Server) handleRooms(c echo.Context) error {
	snaps := s.registry.Rooms()
	rooms := make([]RoomJSON, 0, len(snaps))
	for _, snap := range snaps {
		rooms = append(rooms, roomJSON(snap))
	}
	return c.JSON(http.StatusOK, rooms)
}

func (s *Server) handleRoom(c echo.Context) error {
	snap, ok := s.registry.Room(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "room not found")
	}
	return c.JSON(http.StatusOK, roomJSON(snap))
}

// PlayJSON is one recorded play.
type PlayJSON struct {
	RoomID    string    `json:"roomId"`
	UserID    int32     `json:"userId"`
	UserName  string    `json:"userName"`
	ChartID   int32     `json:"chartId"`
	ChartName string    `json:"chartName"`
	Score     int32     `json:"score"`
	Accuracy  float32   `json:"accuracy"`
	FullCombo bool      `json:"fullCombo"`
	PlayedAt  time.Time `json:"playedAt"`
}

func (s *Server) handleRecords(c echo.Context) error {
	if s.plays == nil {
		return c.JSON(http.StatusOK, []PlayJSON{})
	}
	plays, err := s.plays.RecentByRoom(c.Request().Context(), c.Param("id"), recordLimit)
	if err != nil {
		slog.Error("listing plays", "roomId", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "listing plays failed")
	}
	out := make([]PlayJSON, 0, len(plays))
	for _, p := range plays {
		out = append(out, PlayJSON{
			RoomID:    p.RoomID,
			UserID:    p.UserID,
			UserName:  p.UserName,
			ChartID:   p.ChartID,
			ChartName: p.ChartName,
			Score:     p.Score,
			Accuracy:  p.Accuracy,
			FullCombo: p.FullCombo,
			PlayedAt:  p.PlayedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}
