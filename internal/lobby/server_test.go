package lobby

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/udisondev/phira-mp/internal/buildinfo"
	"github.com/udisondev/phira-mp/internal/config"
	"github.com/udisondev/phira-mp/internal/history"
	"github.com/udisondev/phira-mp/internal/i18n"
	"github.com/udisondev/phira-mp/internal/lobby/clientpackets"
	"github.com/udisondev/phira-mp/internal/lobby/serverpackets"
	"github.com/udisondev/phira-mp/internal/phira"
	"github.com/udisondev/phira-mp/internal/protocol"
	"github.com/udisondev/phira-mp/internal/room"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubFetcher serves canned identity-service responses.
type stubFetcher struct {
	users   map[string]phira.UserInfo
	charts  map[int32]phira.ChartInfo
	records map[int32]phira.RecordResult
}

func (f *stubFetcher) GetUserInfo(_ context.Context, token string) (phira.UserInfo, error) {
	u, ok := f.users[token]
	if !ok {
		return phira.UserInfo{}, errors.New("invalid token")
	}
	return u, nil
}

func (f *stubFetcher) GetChartInfo(_ context.Context, chartID int32) (phira.ChartInfo, error) {
	c, ok := f.charts[chartID]
	if !ok {
		return phira.ChartInfo{}, errors.New("chart not found")
	}
	return c, nil
}

func (f *stubFetcher) GetRecordResult(_ context.Context, recordID int32) (phira.RecordResult, error) {
	r, ok := f.records[recordID]
	if !ok {
		return phira.RecordResult{}, errors.New("record not found")
	}
	return r, nil
}

func defaultFetcher() *stubFetcher {
	return &stubFetcher{
		users: map[string]phira.UserInfo{
			"tok-1": {ID: 1, Name: "alice", Language: "en-US"},
			"tok-2": {ID: 2, Name: "bob", Language: "en-US"},
			"tok-3": {ID: 3, Name: "carol", Language: "zh-CN"},
		},
		charts: map[int32]phira.ChartInfo{
			99: {ID: 99, Name: "Rrhar'il"},
		},
		records: map[int32]phira.RecordResult{
			500: {Score: 987654, Accuracy: 0.98, FullCombo: true},
		},
	}
}

// startServer runs a lobby server on a loopback listener and returns
// its address. Shutdown is registered on the test.
func startServer(t *testing.T, fetcher phira.Fetcher, tweak func(*config.Lobby)) string {
	t.Helper()

	cfg := config.Default().Lobby
	cfg.MaxConnections = 16
	cfg.SendQueueSize = 32
	cfg.HandshakeTimeout = 2 * time.Second
	cfg.ReadTimeout = 5 * time.Second
	cfg.WriteTimeout = 2 * time.Second
	cfg.HealthInterval = time.Second
	cfg.InactivityTimeout = 30 * time.Second
	if tweak != nil {
		tweak(&cfg)
	}

	catalog, err := i18n.New("")
	require.NoError(t, err)

	registry := room.NewRegistry(room.LoadRoster(""))
	srv := NewServer(cfg, catalog, fetcher, registry, history.Nop{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx, ln)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return ln.Addr().String()
}

// testClient drives the wire protocol from the client side.
type testClient struct {
	t    *testing.T
	conn net.Conn
}

// dial connects and completes the version handshake.
func dial(t *testing.T, addr string) *testClient {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Write([]byte{protocolVersion})
	require.NoError(t, err)

	return &testClient{t: t, conn: conn}
}

// send writes one framed packet: opcode byte plus body.
func (c *testClient) send(opcode byte, body func(*protocol.ByteBuf)) {
	c.t.Helper()

	var b protocol.ByteBuf
	b.WriteByte(opcode)
	if body != nil {
		body(&b)
	}
	_, err := c.conn.Write(protocol.EncodeFrame(b.Bytes()))
	require.NoError(c.t, err)
}

// read returns the next frame payload.
func (c *testClient) read() []byte {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	payload, err := protocol.ReadMessage(c.conn)
	require.NoError(c.t, err)
	return payload
}

// expect asserts that the next frame is exactly p.
func (c *testClient) expect(p serverpackets.Packet) {
	c.t.Helper()
	require.Equal(c.t, serverpackets.Write(p), c.read())
}

// expectClosed asserts the server closes the connection without
// sending anything further.
func (c *testClient) expectClosed() {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := protocol.ReadMessage(c.conn)
	require.Error(c.t, err)
}

// authenticate logs in and consumes the greeter messages.
func (c *testClient) authenticate(token string, u phira.UserInfo) {
	c.t.Helper()

	c.send(clientpackets.OpcodeAuthenticate, func(b *protocol.ByteBuf) {
		b.WriteString(token)
	})
	c.expect(serverpackets.AuthenticateOK{Me: serverpackets.UserProfile{ID: u.ID, Name: u.Name}})
	c.expect(serverpackets.ChatMessage{UserID: -1, Content: fmt.Sprintf("你好 [%d] %s", u.ID, u.Name)})
	c.expect(serverpackets.ChatMessage{UserID: -1, Content: "你正在一个 phira-mp 实例上游玩"})
	c.expect(serverpackets.ChatMessage{UserID: -1, Content: "协议实现 by lRENyaaa | 网络逻辑 by Evi233 | 房间查询 by 虎齐awa"})
	if bi, ok := buildinfo.Read(); ok {
		dirty := ""
		if bi.Dirty {
			dirty = " (含未提交修改)"
		}
		c.expect(serverpackets.ChatMessage{
			UserID:  -1,
			Content: fmt.Sprintf("该 phira-mp 实例运行在提交 %s 下%s", bi.Short, dirty),
		})
	}
}

func TestHandshake_RejectsBadVersion(t *testing.T) {
	addr := startServer(t, defaultFetcher(), nil)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Write([]byte{0x02})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	require.Error(t, err, "unsupported version must be dropped without a response")
}

func TestHandshake_Timeout(t *testing.T) {
	addr := startServer(t, defaultFetcher(), func(cfg *config.Lobby) {
		cfg.HandshakeTimeout = 100 * time.Millisecond
	})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	require.Error(t, err, "silent client must be dropped after the handshake timeout")
}

func TestPingBeforeAuthentication(t *testing.T) {
	addr := startServer(t, defaultFetcher(), nil)

	c := dial(t, addr)
	c.send(clientpackets.OpcodePing, nil)
	c.expect(serverpackets.Pong{})
}

func TestPreAuthGateClosesConnection(t *testing.T) {
	addr := startServer(t, defaultFetcher(), nil)

	c := dial(t, addr)
	c.send(clientpackets.OpcodeCreateRoom, func(b *protocol.ByteBuf) {
		b.WriteString("R")
	})
	c.expectClosed()
}

func TestCodecErrorClosesConnection(t *testing.T) {
	addr := startServer(t, defaultFetcher(), nil)

	c := dial(t, addr)
	_, err := c.conn.Write(protocol.EncodeFrame([]byte{0xFF}))
	require.NoError(t, err)
	c.expectClosed()
}

func TestAuthenticate(t *testing.T) {
	f := defaultFetcher()
	addr := startServer(t, f, nil)

	c := dial(t, addr)
	c.authenticate("tok-1", f.users["tok-1"])

	// The session is live afterwards.
	c.send(clientpackets.OpcodePing, nil)
	c.expect(serverpackets.Pong{})
}

func TestAuthenticate_BadTokenClosesConnection(t *testing.T) {
	addr := startServer(t, defaultFetcher(), nil)

	c := dial(t, addr)
	c.send(clientpackets.OpcodeAuthenticate, func(b *protocol.ByteBuf) {
		b.WriteString("nope")
	})

	// The failure response is flushed, then the connection goes down.
	c.expect(serverpackets.AuthenticateFailed{Reason: "invalid token"})
	c.expectClosed()
}

func TestAuthenticate_DuplicateRefusesNewConnection(t *testing.T) {
	f := defaultFetcher()
	addr := startServer(t, f, nil)

	c1 := dial(t, addr)
	c1.authenticate("tok-1", f.users["tok-1"])

	c2 := dial(t, addr)
	c2.send(clientpackets.OpcodeAuthenticate, func(b *protocol.ByteBuf) {
		b.WriteString("tok-1")
	})
	c2.expect(serverpackets.AuthenticateFailed{Reason: "This account is already connected to the server"})
	c2.expectClosed()

	// The original session is untouched.
	c1.send(clientpackets.OpcodePing, nil)
	c1.expect(serverpackets.Pong{})
}

func TestAuthenticate_ReconnectAfterDisconnect(t *testing.T) {
	f := defaultFetcher()
	addr := startServer(t, f, nil)

	c1 := dial(t, addr)
	c1.authenticate("tok-1", f.users["tok-1"])
	require.NoError(t, c1.conn.Close())

	// Server-side teardown races the reconnect, so retry until the slot
	// frees up.
	deadline := time.Now().Add(2 * time.Second)
	for {
		c2 := dial(t, addr)
		c2.send(clientpackets.OpcodeAuthenticate, func(b *protocol.ByteBuf) {
			b.WriteString("tok-1")
		})
		payload := c2.read()
		if payload[1] == serverpackets.ResultSuccess {
			break
		}
		require.NoError(t, c2.conn.Close())
		if time.Now().After(deadline) {
			t.Fatal("reconnect kept being refused as a duplicate")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestRoomFlow(t *testing.T) {
	f := defaultFetcher()
	addr := startServer(t, f, nil)

	host := dial(t, addr)
	host.authenticate("tok-1", f.users["tok-1"])
	guest := dial(t, addr)
	guest.authenticate("tok-2", f.users["tok-2"])

	p1 := serverpackets.UserProfile{ID: 1, Name: "alice"}
	p2 := serverpackets.UserProfile{ID: 2, Name: "bob"}

	host.send(clientpackets.OpcodeCreateRoom, func(b *protocol.ByteBuf) {
		b.WriteString("mp1")
	})
	host.expect(serverpackets.CreateRoomOK{})

	guest.send(clientpackets.OpcodeJoinRoom, func(b *protocol.ByteBuf) {
		b.WriteString("mp1")
	})
	guest.expect(serverpackets.JoinRoomOK{
		State:    serverpackets.GameState{Phase: serverpackets.PhaseSelectChart},
		Users:    []serverpackets.UserProfile{p1, p2},
		Monitors: []serverpackets.UserProfile{},
	})
	host.expect(serverpackets.OnJoinRoom{User: p2})
	host.expect(serverpackets.JoinRoomMessage{UserID: 2, Name: "bob"})

	// A second room with the same id is refused.
	guest2 := dial(t, addr)
	guest2.authenticate("tok-3", f.users["tok-3"])
	guest2.send(clientpackets.OpcodeCreateRoom, func(b *protocol.ByteBuf) {
		b.WriteString("mp1")
	})
	guest2.expect(serverpackets.CreateRoomFailed{Reason: "房间已存在"})

	// Host picks a chart; both members see the state change and notice.
	host.send(clientpackets.OpcodeSelectChart, func(b *protocol.ByteBuf) {
		b.WriteIntLE(99)
	})
	selecting := serverpackets.GameState{Phase: serverpackets.PhaseSelectChart, HasChart: true, ChartID: 99}
	host.expect(serverpackets.ChangeState{State: selecting})
	host.expect(serverpackets.SelectChartMessage{UserID: 1, Name: "Rrhar'il", ChartID: 99})
	host.expect(serverpackets.SelectChartOK{})
	guest.expect(serverpackets.ChangeState{State: selecting})
	guest.expect(serverpackets.SelectChartMessage{UserID: 1, Name: "Rrhar'il", ChartID: 99})

	// Start and ready up; the quorum flips the room into playing.
	host.send(clientpackets.OpcodeRequestStart, nil)
	waiting := serverpackets.GameState{Phase: serverpackets.PhaseWaitForReady}
	host.expect(serverpackets.ChangeState{State: waiting})
	host.expect(serverpackets.RequestStartOK{})
	guest.expect(serverpackets.ChangeState{State: waiting})

	guest.send(clientpackets.OpcodeReady, nil)
	playing := serverpackets.GameState{Phase: serverpackets.PhasePlaying}
	guest.expect(serverpackets.ReadyOK{})
	guest.expect(serverpackets.ReadyMessage{UserID: 2})
	guest.expect(serverpackets.StartPlayingMessage{})
	guest.expect(serverpackets.ChangeState{State: playing})
	host.expect(serverpackets.ReadyMessage{UserID: 2})
	host.expect(serverpackets.StartPlayingMessage{})
	host.expect(serverpackets.ChangeState{State: playing})

	// One play submission and one abort end the round.
	host.send(clientpackets.OpcodePlayed, func(b *protocol.ByteBuf) {
		b.WriteIntLE(500)
	})
	played := serverpackets.PlayedMessage{UserID: 1, Score: 987654, Accuracy: 0.98, FullCombo: true}
	host.expect(played)
	host.expect(serverpackets.PlayedOK{})
	guest.expect(played)

	guest.send(clientpackets.OpcodeAbort, nil)
	idle := serverpackets.GameState{Phase: serverpackets.PhaseSelectChart}
	guest.expect(serverpackets.AbortMessage{UserID: 2})
	guest.expect(serverpackets.AbortOK{})
	guest.expect(serverpackets.GameEndMessage{})
	guest.expect(serverpackets.ChangeState{State: idle})
	host.expect(serverpackets.AbortMessage{UserID: 2})
	host.expect(serverpackets.GameEndMessage{})
	host.expect(serverpackets.ChangeState{State: idle})
}

func TestDisconnectFreesRoomSeat(t *testing.T) {
	f := defaultFetcher()
	addr := startServer(t, f, nil)

	c1 := dial(t, addr)
	c1.authenticate("tok-1", f.users["tok-1"])
	c2 := dial(t, addr)
	c2.authenticate("tok-2", f.users["tok-2"])

	c1.send(clientpackets.OpcodeCreateRoom, func(b *protocol.ByteBuf) {
		b.WriteString("mp2")
	})
	c1.expect(serverpackets.CreateRoomOK{})
	c2.send(clientpackets.OpcodeJoinRoom, func(b *protocol.ByteBuf) {
		b.WriteString("mp2")
	})
	_ = c2.read() // join response
	_ = c1.read() // OnJoinRoom
	_ = c1.read() // JoinRoomMessage

	// The host drops; the guest inherits the room.
	require.NoError(t, c1.conn.Close())
	c2.expect(serverpackets.LeaveRoomMessage{UserID: 1, Name: "alice"})
	c2.expect(serverpackets.ChangeHost{IsHost: true})
}

func TestConnectionLimit(t *testing.T) {
	addr := startServer(t, defaultFetcher(), func(cfg *config.Lobby) {
		cfg.MaxConnections = 1
	})

	c1 := dial(t, addr)
	c1.send(clientpackets.OpcodePing, nil)
	c1.expect(serverpackets.Pong{})

	// The second connection is accepted and immediately dropped.
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	require.Error(t, err)

	// Freeing the slot lets a new client in. The server may still be
	// tearing the old handler down, so writes stay best-effort here.
	require.NoError(t, c1.conn.Close())
	deadline := time.Now().Add(2 * time.Second)
	for {
		c3, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		c3.Write([]byte{protocolVersion})
		var b protocol.ByteBuf
		b.WriteByte(clientpackets.OpcodePing)
		c3.Write(protocol.EncodeFrame(b.Bytes()))
		c3.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		payload, err := protocol.ReadMessage(c3)
		c3.Close()
		if err == nil {
			require.Equal(t, serverpackets.Write(serverpackets.Pong{}), payload)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("slot was never released")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestHealthCheckClosesIdleSession(t *testing.T) {
	f := defaultFetcher()
	addr := startServer(t, f, func(cfg *config.Lobby) {
		cfg.HealthInterval = 20 * time.Millisecond
		cfg.InactivityTimeout = 80 * time.Millisecond
	})

	c := dial(t, addr)
	c.authenticate("tok-1", f.users["tok-1"])

	// Stay silent past the inactivity limit.
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := protocol.ReadMessage(c.conn)
	require.Error(t, err, "idle session should be closed by the health check")
}

// tableSession builds a session with a real connection so the online
// table can consult its liveness.
func tableSession(t *testing.T) *session {
	t.Helper()

	_, server := tcpPair(t)
	c, err := newConn(server, 4, time.Second)
	require.NoError(t, err)
	return &session{conn: c}
}

func TestOnlineTable_ClaimAndDrop(t *testing.T) {
	table := newOnlineTable()
	s1 := tableSession(t)
	s2 := tableSession(t)

	old, live := table.claim(7, s1)
	require.Nil(t, old)
	require.False(t, live)

	// A live incumbent keeps the slot.
	old, live = table.claim(7, s2)
	require.Equal(t, s1, old)
	require.True(t, live)
	require.Equal(t, s1, table.get(7))

	// A dead incumbent is displaced and handed back for teardown.
	s1.conn.CloseAsync()
	old, live = table.claim(7, s2)
	require.Equal(t, s1, old)
	require.False(t, live)
	require.Equal(t, s2, table.get(7))

	table.drop(7, s1) // stale teardown of the displaced session
	require.Equal(t, s2, table.get(7))
	require.Equal(t, 1, table.count())

	table.drop(7, s2)
	require.Nil(t, table.get(7))
	require.Equal(t, 0, table.count())
}
