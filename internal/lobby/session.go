package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/phira-mp/internal/buildinfo"
	"github.com/udisondev/phira-mp/internal/history"
	"github.com/udisondev/phira-mp/internal/i18n"
	"github.com/udisondev/phira-mp/internal/lobby/clientpackets"
	"github.com/udisondev/phira-mp/internal/lobby/serverpackets"
	"github.com/udisondev/phira-mp/internal/metrics"
	"github.com/udisondev/phira-mp/internal/phira"
	"github.com/udisondev/phira-mp/internal/room"
)

// serverChatID marks chat lines originating from the server itself.
const serverChatID = -1

// session holds the per-connection protocol state. Before Authenticate
// succeeds only Ping and Authenticate are accepted; afterwards the
// session speaks for exactly one user.
type session struct {
	srv  *Server
	conn *Conn

	user   phira.UserInfo
	authed bool

	cleanupOnce sync.Once
}

func newSession(srv *Server, conn *Conn) *session {
	return &session{srv: srv, conn: conn}
}

// cleanup tears the session down exactly once: closes the connection,
// frees the online-table slot and leaves any room with full leave
// semantics. It also runs when a reconnecting user displaces a dead
// connection, so it must be safe to call from another goroutine.
func (s *session) cleanup() {
	s.cleanupOnce.Do(func() {
		s.conn.Close()
		if !s.authed {
			slog.Info("anonymous client disconnected", "client", s.conn.IP())
			return
		}
		slog.Info("user disconnected", "user", s.user.ID, "name", s.user.Name)
		s.srv.online.drop(s.user.ID, s)
		s.srv.registry.Disconnect(s.user.ID)
	})
}

func (s *session) profile() serverpackets.UserProfile {
	return serverpackets.UserProfile{ID: s.user.ID, Name: s.user.Name}
}

// text resolves a failure reason key in the session's language.
func (s *session) text(key string) string {
	return s.srv.catalog.Text(s.user.Language, key)
}

func (s *session) send(p serverpackets.Packet) {
	s.conn.Send(serverpackets.Frame(p))
}

// handle dispatches one decoded packet. A returned error closes the
// connection.
func (s *session) handle(ctx context.Context, pkt clientpackets.Packet) error {
	name := packetName(pkt)
	metrics.PacketsReceived.WithLabelValues(name).Inc()

	switch p := pkt.(type) {
	case *clientpackets.Ping:
		s.send(serverpackets.Pong{})
		return nil
	case *clientpackets.Authenticate:
		return s.handleAuthenticate(ctx, p)
	}

	if !s.authed {
		return fmt.Errorf("%s packet before authentication", name)
	}

	slog.Debug("handling packet", "packet", name, "user", s.user.ID)

	switch p := pkt.(type) {
	case *clientpackets.Chat, *clientpackets.Touches, *clientpackets.Judges:
		// Decoded for protocol compatibility; the deployed server never
		// relays these.
	case *clientpackets.CreateRoom:
		s.handleCreateRoom(p)
	case *clientpackets.JoinRoom:
		s.handleJoinRoom(p)
	case *clientpackets.LeaveRoom:
		s.handleLeaveRoom()
	case *clientpackets.LockRoom:
		s.handleLockRoom(p)
	case *clientpackets.CycleRoom:
		s.handleCycleRoom(p)
	case *clientpackets.SelectChart:
		s.handleSelectChart(ctx, p)
	case *clientpackets.RequestStart:
		s.handleRequestStart()
	case *clientpackets.Ready:
		s.handleReady()
	case *clientpackets.CancelReady:
		s.handleCancelReady()
	case *clientpackets.Played:
		s.handlePlayed(ctx, p)
	case *clientpackets.Abort:
		s.handleAbort()
	}
	return nil
}

func (s *session) handleAuthenticate(ctx context.Context, pkt *clientpackets.Authenticate) error {
	info, err := s.srv.fetcher.GetUserInfo(ctx, pkt.Token)
	if err != nil {
		slog.Warn("authentication failed", "client", s.conn.IP(), "error", err)
		// The close flush still delivers the response before the socket
		// goes down.
		s.send(serverpackets.AuthenticateFailed{Reason: err.Error()})
		return fmt.Errorf("identity lookup failed: %w", err)
	}

	old, live := s.srv.online.claim(info.ID, s)
	if live {
		s.send(serverpackets.AuthenticateFailed{
			Reason: s.srv.catalog.Text(info.Language, i18n.KeyUserDuplicateJoin),
		})
		return fmt.Errorf("duplicate login for user %d", info.ID)
	}
	if old != nil {
		// The old connection died without running its teardown yet.
		old.cleanup()
	}

	s.user = info
	s.authed = true
	slog.Info("user authenticated", "user", info.ID, "name", info.Name)

	var roomInfo *serverpackets.RoomInfo
	if ri, ok := s.srv.registry.InfoFor(info.ID); ok {
		roomInfo = &ri
	}
	s.send(serverpackets.AuthenticateOK{
		Me:      s.profile(),
		Monitor: false,
		Room:    roomInfo,
	})

	s.send(serverpackets.ChatMessage{UserID: serverChatID, Content: fmt.Sprintf("你好 [%d] %s", info.ID, info.Name)})
	s.send(serverpackets.ChatMessage{UserID: serverChatID, Content: "你正在一个 phira-mp 实例上游玩"})
	s.send(serverpackets.ChatMessage{UserID: serverChatID, Content: "协议实现 by lRENyaaa | 网络逻辑 by Evi233 | 房间查询 by 虎齐awa"})
	if bi, ok := buildinfo.Read(); ok {
		dirty := ""
		if bi.Dirty {
			dirty = " (含未提交修改)"
		}
		s.send(serverpackets.ChatMessage{
			UserID:  serverChatID,
			Content: fmt.Sprintf("该 phira-mp 实例运行在提交 %s 下%s", bi.Short, dirty),
		})
	}
	return nil
}

func (s *session) handleCreateRoom(pkt *clientpackets.CreateRoom) {
	if err := s.srv.registry.Create(pkt.RoomID, s.profile(), s.conn); err != nil {
		key := i18n.KeyRoomAlreadyExist
		if errors.Is(err, room.ErrAlreadyInRoom) {
			key = i18n.KeyRoomDuplicateCreate
		}
		s.send(serverpackets.CreateRoomFailed{Reason: s.text(key)})
	}
}

func (s *session) handleJoinRoom(pkt *clientpackets.JoinRoom) {
	if err := s.srv.registry.Join(pkt.RoomID, s.profile(), s.conn); err != nil {
		var key string
		switch {
		case errors.Is(err, room.ErrAlreadyInRoom):
			key = i18n.KeyRoomDuplicateJoin
		case errors.Is(err, room.ErrRoomLocked):
			key = i18n.KeyRoomAlreadyLocked
		case errors.Is(err, room.ErrRoomInReadyState):
			key = i18n.KeyRoomInReadyState
		default:
			key = i18n.KeyRoomNotExist
		}
		s.send(serverpackets.JoinRoomFailed{Reason: s.text(key)})
	}
}

func (s *session) handleLeaveRoom() {
	if err := s.srv.registry.Leave(s.user.ID); err != nil {
		s.send(serverpackets.LeaveRoomFailed{Reason: s.text(i18n.KeyNotInRoom)})
	}
}

func (s *session) handleLockRoom(pkt *clientpackets.LockRoom) {
	if err := s.srv.registry.Lock(s.user.ID, pkt.Lock); err != nil {
		var key string
		switch {
		case errors.Is(err, room.ErrNotInRoom):
			key = i18n.KeyNotInRoom
		case errors.Is(err, room.ErrNotHost):
			key = i18n.KeyNotHost
		case errors.Is(err, room.ErrAlreadyLocked):
			key = i18n.KeyRoomAlreadyLocked
		default:
			key = i18n.KeyRoomAlreadyUnlocked
		}
		s.send(serverpackets.LockRoomFailed{Reason: s.text(key)})
	}
}

func (s *session) handleCycleRoom(pkt *clientpackets.CycleRoom) {
	if err := s.srv.registry.Cycle(s.user.ID, pkt.Cycle); err != nil {
		var key string
		switch {
		case errors.Is(err, room.ErrNotInRoom):
			key = i18n.KeyNotInRoom
		case errors.Is(err, room.ErrNotHost):
			key = i18n.KeyNotHost
		case errors.Is(err, room.ErrAlreadyCycling):
			key = i18n.KeyRoomAlreadyCycled
		default:
			key = i18n.KeyRoomAlreadyNotCycled
		}
		s.send(serverpackets.CycleRoomFailed{Reason: s.text(key)})
	}
}

func (s *session) handleSelectChart(ctx context.Context, pkt *clientpackets.SelectChart) {
	if err := s.srv.registry.PrepareSelectChart(s.user.ID); err != nil {
		s.selectChartFailed(err)
		return
	}

	// The metadata fetch happens outside the registry lock; the state is
	// re-validated when the result comes back.
	chart, err := s.srv.fetcher.GetChartInfo(ctx, pkt.ChartID)
	if err != nil {
		slog.Warn("chart fetch failed", "user", s.user.ID, "chart", pkt.ChartID, "error", err)
		s.send(serverpackets.SelectChartFailed{Reason: "Failed to fetch chart: " + err.Error()})
		return
	}

	if err := s.srv.registry.ApplySelectChart(s.user.ID, pkt.ChartID, chart.Name); err != nil {
		s.selectChartFailed(err)
	}
}

func (s *session) selectChartFailed(err error) {
	key := i18n.KeyNotInRoom
	if errors.Is(err, room.ErrNotHost) {
		key = i18n.KeyNotHost
	}
	s.send(serverpackets.SelectChartFailed{Reason: s.text(key)})
	if errors.Is(err, room.ErrNotHost) {
		s.send(serverpackets.ChangeHost{IsHost: false})
	}
}

func (s *session) handleRequestStart() {
	if err := s.srv.registry.RequestStart(s.user.ID); err != nil {
		var key string
		switch {
		case errors.Is(err, room.ErrNotInRoom):
			key = i18n.KeyNotInRoom
		case errors.Is(err, room.ErrNotSelectChart):
			key = i18n.KeyNotSelectChart
		default:
			key = i18n.KeyNotHost
		}
		s.send(serverpackets.RequestStartFailed{Reason: s.text(key)})
		if errors.Is(err, room.ErrNotHost) {
			s.send(serverpackets.ChangeHost{IsHost: false})
		}
	}
}

func (s *session) handleReady() {
	if err := s.srv.registry.Ready(s.user.ID); err != nil {
		key := i18n.KeyNotInRoom
		if errors.Is(err, room.ErrNotReadyState) {
			key = i18n.KeyNotReadyState
		}
		s.send(serverpackets.ReadyFailed{Reason: s.text(key)})
	}
}

func (s *session) handleCancelReady() {
	if err := s.srv.registry.CancelReady(s.user.ID); err != nil {
		key := i18n.KeyNotInRoom
		if errors.Is(err, room.ErrNotReadyState) {
			key = i18n.KeyNotReadyState
		}
		s.send(serverpackets.CancelReadyFailed{Reason: s.text(key)})
	}
}

func (s *session) handlePlayed(ctx context.Context, pkt *clientpackets.Played) {
	if err := s.srv.registry.PreparePlayed(s.user.ID); err != nil {
		s.playedFailed(err)
		return
	}

	rec, err := s.srv.fetcher.GetRecordResult(ctx, pkt.RecordID)
	if err != nil {
		slog.Warn("record fetch failed", "user", s.user.ID, "record", pkt.RecordID, "error", err)
		s.send(serverpackets.PlayedFailed{Reason: "Failed to fetch record: " + err.Error()})
		return
	}

	res, err := s.srv.registry.ApplyPlayed(s.user.ID, rec.Score, rec.Accuracy, rec.FullCombo)
	if err != nil {
		s.playedFailed(err)
		return
	}

	play := history.Play{
		RoomID:    res.RoomID,
		UserID:    s.user.ID,
		UserName:  s.user.Name,
		ChartID:   res.ChartID,
		ChartName: res.ChartName,
		Score:     rec.Score,
		Accuracy:  rec.Accuracy,
		FullCombo: rec.FullCombo,
	}
	if err := s.srv.recorder.RecordPlay(ctx, play); err != nil {
		slog.Error("recording play", "user", s.user.ID, "room", res.RoomID, "error", err)
	}
}

func (s *session) playedFailed(err error) {
	if errors.Is(err, room.ErrNotInRoom) {
		s.send(serverpackets.PlayedFailed{Reason: s.text(i18n.KeyNotInRoom)})
		return
	}
	s.send(serverpackets.PlayedFailed{Reason: "Not in playing state"})
}

func (s *session) handleAbort() {
	if err := s.srv.registry.AbortPlay(s.user.ID); err != nil {
		if errors.Is(err, room.ErrNotInRoom) {
			s.send(serverpackets.AbortFailed{Reason: s.text(i18n.KeyNotInRoom)})
			return
		}
		s.send(serverpackets.AbortFailed{Reason: "Not in playing state"})
	}
}

// packetName labels packets for metrics and logs.
func packetName(pkt clientpackets.Packet) string {
	switch pkt.(type) {
	case *clientpackets.Ping:
		return "ping"
	case *clientpackets.Authenticate:
		return "authenticate"
	case *clientpackets.Chat:
		return "chat"
	case *clientpackets.Touches:
		return "touches"
	case *clientpackets.Judges:
		return "judges"
	case *clientpackets.CreateRoom:
		return "create_room"
	case *clientpackets.JoinRoom:
		return "join_room"
	case *clientpackets.LeaveRoom:
		return "leave_room"
	case *clientpackets.LockRoom:
		return "lock_room"
	case *clientpackets.CycleRoom:
		return "cycle_room"
	case *clientpackets.SelectChart:
		return "select_chart"
	case *clientpackets.RequestStart:
		return "request_start"
	case *clientpackets.Ready:
		return "ready"
	case *clientpackets.CancelReady:
		return "cancel_ready"
	case *clientpackets.Played:
		return "played"
	case *clientpackets.Abort:
		return "abort"
	default:
		return "unknown"
	}
}
