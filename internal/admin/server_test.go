package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/udisondev/phira-mp/internal/config"
	"github.com/udisondev/phira-mp/internal/lobby/serverpackets"
	"github.com/udisondev/phira-mp/internal/room"
)

type nopSender struct{}

func (nopSender) Send([]byte) {}

func testConfig(t *testing.T) config.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	return config.Admin{
		Addr:         ":0",
		Username:     "admin",
		PasswordHash: string(hash),
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
		RateLimit:    "100-M",
	}
}

func newTestServer(t *testing.T) (*Server, *room.Registry) {
	t.Helper()
	g := room.NewRegistry(room.LoadRoster(""))
	require.NoError(t, g.Create("mp1", serverpackets.UserProfile{ID: 1, Name: "alice"}, nopSender{}))
	require.NoError(t, g.Join("mp1", serverpackets.UserProfile{ID: 2, Name: "bob"}, nopSender{}))

	s, err := NewServer(testConfig(t), g)
	require.NoError(t, err)
	return s, g
}

func do(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/login", "", `{"username":"admin","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin(t *testing.T) {
	s, _ := newTestServer(t)
	token := login(t, s)
	assert.NotEmpty(t, token)
}

func TestLoginBadCredentials(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/login", "", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/login", "", `{"username":"root","password":"hunter2"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOperationsRequireToken(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/rooms/mp1/destroy", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/rooms/mp1/destroy", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	s, _ := newTestServer(t)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token := login(t, s)

	rec := do(t, s, http.MethodPost, "/api/rooms/mp1/destroy", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDestroy(t *testing.T) {
	s, g := newTestServer(t)
	token := login(t, s)

	rec := do(t, s, http.MethodPost, "/api/rooms/mp1/destroy", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, g.RoomCount())

	rec = do(t, s, http.MethodPost, "/api/rooms/mp1/destroy", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKick(t *testing.T) {
	s, g := newTestServer(t)
	token := login(t, s)

	rec := do(t, s, http.MethodPost, "/api/rooms/mp1/kick", token, `{"userId":2}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	snap, ok := g.Room("mp1")
	require.True(t, ok)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, int32(1), snap.Users[0].ID)

	rec = do(t, s, http.MethodPost, "/api/rooms/mp1/kick", token, `{"userId":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReady(t *testing.T) {
	s, g := newTestServer(t)
	token := login(t, s)

	// Ready only makes sense while the room waits for players.
	rec := do(t, s, http.MethodPost, "/api/rooms/mp1/ready", token, `{"userId":2}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.NoError(t, g.ApplySelectChart(1, 99, "Spasmodic"))
	require.NoError(t, g.RequestStart(1)) // marks the host ready

	rec = do(t, s, http.MethodPost, "/api/rooms/mp1/ready", token, `{"userId":2}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	snap, ok := g.Room("mp1")
	require.True(t, ok)
	assert.Equal(t, "Playing", snap.State) // quorum reached
}

func TestOperationsLog(t *testing.T) {
	s, _ := newTestServer(t)
	token := login(t, s)

	do(t, s, http.MethodPost, "/api/rooms/mp1/kick", token, `{"userId":2}`)
	do(t, s, http.MethodPost, "/api/rooms/mp1/destroy", token, "")

	rec := do(t, s, http.MethodGet, "/api/operations", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ops []Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	require.Len(t, ops, 2)
	assert.Equal(t, "destroy", ops[0].Type)
	assert.Equal(t, "kick", ops[1].Type)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit = "2-M"
	g := room.NewRegistry(room.LoadRoster(""))
	s, err := NewServer(cfg, g)
	require.NoError(t, err)

	body := `{"username":"admin","password":"wrong"}`
	for i := 0; i < 2; i++ {
		rec := do(t, s, http.MethodPost, "/api/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestNewServerRejectsBadConfig(t *testing.T) {
	g := room.NewRegistry(room.LoadRoster(""))

	cfg := testConfig(t)
	cfg.JWTSecret = ""
	_, err := NewServer(cfg, g)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.RateLimit = "lots"
	_, err = NewServer(cfg, g)
	assert.Error(t, err)
}
