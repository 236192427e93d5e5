package room

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/udisondev/phira-mp/internal/lobby/serverpackets"
	"github.com/udisondev/phira-mp/internal/metrics"
)

// Operation failures. The lobby layer maps these onto translated
// Failed responses.
var (
	ErrRoomExists       = errors.New("room id already exists")
	ErrRoomNotFound     = errors.New("room not found")
	ErrAlreadyInRoom    = errors.New("user already in a room")
	ErrRoomLocked       = errors.New("room is locked")
	ErrRoomInReadyState = errors.New("room is preparing to start")
	ErrNotInRoom        = errors.New("user not in a room")
	ErrNotHost          = errors.New("user is not the host")
	ErrNotSelectChart   = errors.New("room is not selecting a chart")
	ErrNotReadyState    = errors.New("room is not waiting for ready")
	ErrNotPlaying       = errors.New("room is not playing")
	ErrAlreadyLocked    = errors.New("room is already locked")
	ErrAlreadyUnlocked  = errors.New("room is already unlocked")
	ErrAlreadyCycling   = errors.New("host rotation is already on")
	ErrAlreadyUncycled  = errors.New("host rotation is already off")
	ErrUserNotFound     = errors.New("user not in this room")
)

// serverNoticeID marks a chat line as coming from the server itself.
const serverNoticeID = -1

// Registry owns every live room plus the user-to-room indexes. A
// single mutex serialises all mutations; operations enqueue their
// outbound frames while holding it, which keeps each client's packet
// order consistent with the state changes it reflects. Senders must
// therefore never block.
type Registry struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	byUser    map[int32]*Room
	byMonitor map[int32]*Room
	roster    *Roster
}

// NewRegistry returns an empty registry using roster to recognise
// monitor users.
func NewRegistry(roster *Roster) *Registry {
	return &Registry{
		rooms:     make(map[string]*Room),
		byUser:    make(map[int32]*Room),
		byMonitor: make(map[int32]*Room),
		roster:    roster,
	}
}

// Create opens a new room with p as host and sole member.
func (g *Registry) Create(roomID string, p serverpackets.UserProfile, s Sender) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.rooms[roomID]; ok {
		return ErrRoomExists
	}
	if _, ok := g.byUser[p.ID]; ok {
		return ErrAlreadyInRoom
	}

	m := &Member{Profile: p, Sender: s}
	r := newRoom(roomID, m)
	g.rooms[roomID] = r
	g.byUser[p.ID] = r
	metrics.ActiveRooms.Inc()
	slog.Info("room created", "roomId", roomID, "host", p.ID)

	s.Send(serverpackets.Frame(serverpackets.CreateRoomOK{}))
	return nil
}

// Join adds p to an existing room: as a monitor when the roster lists
// the user, as a player otherwise. The caller receives the roster
// snapshot; on a player join the other members are told who arrived.
func (g *Registry) Join(roomID string, p serverpackets.UserProfile, s Sender) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}

	if g.roster.IsMonitor(p.ID) {
		if prev, watching := g.byMonitor[p.ID]; watching && prev != r {
			prev.removeMonitor(p.ID)
		}
		if r.monitorIndex(p.ID) < 0 {
			r.monitors = append(r.monitors, &Member{Profile: p, Sender: s})
		}
		g.byMonitor[p.ID] = r
		// A monitor in the room makes it live for good.
		r.live = true
		slog.Info("monitor joined room", "roomId", roomID, "user", p.ID)
		s.Send(serverpackets.Frame(joinSnapshot(r)))
		return nil
	}

	if _, busy := g.byUser[p.ID]; busy {
		return ErrAlreadyInRoom
	}
	if r.locked {
		return ErrRoomLocked
	}
	if r.phase == serverpackets.PhaseWaitForReady {
		return ErrRoomInReadyState
	}

	r.members = append(r.members, &Member{Profile: p, Sender: s})
	g.byUser[p.ID] = r
	slog.Info("user joined room", "roomId", roomID, "user", p.ID)

	s.Send(serverpackets.Frame(joinSnapshot(r)))
	r.broadcastExcept(p.ID, serverpackets.OnJoinRoom{User: p})
	r.broadcastExcept(p.ID, serverpackets.JoinRoomMessage{UserID: p.ID, Name: p.Name})
	return nil
}

func joinSnapshot(r *Room) serverpackets.JoinRoomOK {
	return serverpackets.JoinRoomOK{
		State:    r.gameState(),
		Users:    r.userProfiles(),
		Monitors: r.monitorProfiles(),
		Live:     r.live,
	}
}

// Leave removes userID from its room. The rest of the room is told,
// host rights pass to a random survivor when the host walks out, and
// the emptied room is destroyed.
func (g *Registry) Leave(userID int32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.byUser[userID]
	if !ok {
		return ErrNotInRoom
	}
	m, _ := r.member(userID)
	m.Sender.Send(serverpackets.Frame(serverpackets.LeaveRoomOK{}))
	g.removeLocked(r, userID)
	return nil
}

// Disconnect cleans up after a dropped connection: the user leaves its
// room exactly like a voluntary leave, minus the response packet, and
// any monitor seat is vacated. The room's live flag stays set.
func (g *Registry) Disconnect(userID int32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.byUser[userID]; ok {
		g.removeLocked(r, userID)
	}
	if r, ok := g.byMonitor[userID]; ok {
		r.removeMonitor(userID)
		delete(g.byMonitor, userID)
	}
}

// removeLocked takes userID out of r, broadcasts the departure and
// either destroys the emptied room or hands host rights to a random
// survivor. Caller holds g.mu and has verified membership.
func (g *Registry) removeLocked(r *Room, userID int32) {
	wasHost := r.host == userID
	m := r.removeMember(userID)
	delete(g.byUser, userID)
	slog.Info("user left room", "roomId", r.id, "user", userID)

	r.broadcast(serverpackets.LeaveRoomMessage{UserID: userID, Name: m.Profile.Name})
	if len(r.members) == 0 {
		g.destroyLocked(r)
		return
	}
	if wasHost {
		succ := r.members[rand.IntN(len(r.members))]
		r.host = succ.Profile.ID
		succ.Sender.Send(serverpackets.Frame(serverpackets.ChangeHost{IsHost: true}))
		slog.Info("host changed", "roomId", r.id, "host", succ.Profile.ID)
	}
}

func (g *Registry) destroyLocked(r *Room) {
	for _, m := range r.members {
		delete(g.byUser, m.Profile.ID)
	}
	for _, m := range r.monitors {
		delete(g.byMonitor, m.Profile.ID)
	}
	delete(g.rooms, r.id)
	metrics.ActiveRooms.Dec()
	slog.Info("room destroyed", "roomId", r.id)
}

// Lock sets or clears the room's locked flag. Host only; re-setting
// the current value is refused.
func (g *Registry) Lock(userID int32, lock bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, m, err := g.hostOpLocked(userID)
	if err != nil {
		return err
	}
	if r.locked == lock {
		if lock {
			return ErrAlreadyLocked
		}
		return ErrAlreadyUnlocked
	}
	r.locked = lock
	m.Sender.Send(serverpackets.Frame(serverpackets.LockRoomOK{}))
	r.broadcast(serverpackets.LockRoomMessage{Lock: lock})
	return nil
}

// Cycle turns host rotation on or off. Host only; re-setting the
// current value is refused.
func (g *Registry) Cycle(userID int32, cycle bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, m, err := g.hostOpLocked(userID)
	if err != nil {
		return err
	}
	if r.cycle == cycle {
		if cycle {
			return ErrAlreadyCycling
		}
		return ErrAlreadyUncycled
	}
	r.cycle = cycle
	m.Sender.Send(serverpackets.Frame(serverpackets.CycleRoomOK{}))
	r.broadcast(serverpackets.CycleRoomMessage{Cycle: cycle})
	return nil
}

// hostOpLocked resolves userID's room and checks host rights.
func (g *Registry) hostOpLocked(userID int32) (*Room, *Member, error) {
	r, ok := g.byUser[userID]
	if !ok {
		return nil, nil, ErrNotInRoom
	}
	if r.host != userID {
		return nil, nil, ErrNotHost
	}
	m, _ := r.member(userID)
	return r, m, nil
}

// PrepareSelectChart checks that userID may pick a chart right now.
// The caller fetches chart metadata without holding the lock, then
// publishes it with ApplySelectChart, which re-validates.
func (g *Registry) PrepareSelectChart(userID int32) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, ok := g.byUser[userID]
	if !ok {
		return ErrNotInRoom
	}
	if r.host != userID {
		return ErrNotHost
	}
	return nil
}

// ApplySelectChart publishes a fetched chart pick. The room returns to
// chart selection with the new chart regardless of its current phase.
func (g *Registry) ApplySelectChart(userID, chartID int32, chartName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, m, err := g.hostOpLocked(userID)
	if err != nil {
		return err
	}
	r.chartID = chartID
	r.chartName = chartName
	r.hasChart = true
	r.phase = serverpackets.PhaseSelectChart
	slog.Info("chart selected", "roomId", r.id, "user", userID, "chart", chartID)

	r.broadcast(serverpackets.ChangeState{State: r.gameState()})
	r.broadcast(serverpackets.SelectChartMessage{UserID: userID, Name: chartName, ChartID: chartID})
	m.Sender.Send(serverpackets.Frame(serverpackets.SelectChartOK{}))
	return nil
}

// RequestStart opens the ready phase. Host only, a chart must be
// picked, and the host counts as ready immediately, so a lone host
// starts playing at once.
func (g *Registry) RequestStart(userID int32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.byUser[userID]
	if !ok {
		return ErrNotInRoom
	}
	if r.phase != serverpackets.PhaseSelectChart || !r.hasChart {
		return ErrNotSelectChart
	}
	if r.host != userID {
		return ErrNotHost
	}
	m, _ := r.member(userID)
	r.phase = serverpackets.PhaseWaitForReady
	r.ready[userID] = struct{}{}
	slog.Info("ready phase opened", "roomId", r.id, "host", userID)

	r.broadcast(serverpackets.ChangeState{State: r.gameState()})
	m.Sender.Send(serverpackets.Frame(serverpackets.RequestStartOK{}))
	r.startIfReady()
	return nil
}

// Ready marks userID as ready and starts the round once everyone is.
func (g *Registry) Ready(userID int32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.byUser[userID]
	if !ok {
		return ErrNotInRoom
	}
	if r.phase != serverpackets.PhaseWaitForReady {
		return ErrNotReadyState
	}
	m, _ := r.member(userID)
	r.ready[userID] = struct{}{}

	m.Sender.Send(serverpackets.Frame(serverpackets.ReadyOK{}))
	r.broadcast(serverpackets.ReadyMessage{UserID: userID})
	r.startIfReady()
	return nil
}

// CancelReady withdraws readiness. A cancelling host calls the whole
// ready phase off and the room returns to chart selection with the
// chart kept.
func (g *Registry) CancelReady(userID int32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.byUser[userID]
	if !ok {
		return ErrNotInRoom
	}
	if r.phase != serverpackets.PhaseWaitForReady {
		return ErrNotReadyState
	}
	m, _ := r.member(userID)

	if r.host == userID {
		r.phase = serverpackets.PhaseSelectChart
		clear(r.ready)
		r.broadcast(serverpackets.ChangeState{State: r.gameState()})
		m.Sender.Send(serverpackets.Frame(serverpackets.CancelReadyOK{}))
		return nil
	}

	delete(r.ready, userID)
	m.Sender.Send(serverpackets.Frame(serverpackets.CancelReadyOK{}))
	r.broadcast(serverpackets.CancelReadyMessage{UserID: userID})
	return nil
}

// PreparePlayed checks that userID is mid-play before the caller
// fetches the uploaded record. ApplyPlayed re-validates afterwards.
func (g *Registry) PreparePlayed(userID int32) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.playingLocked(userID)
}

func (g *Registry) playingLocked(userID int32) error {
	r, ok := g.byUser[userID]
	if !ok {
		return ErrNotInRoom
	}
	if r.phase != serverpackets.PhasePlaying {
		return ErrNotPlaying
	}
	return nil
}

// PlayResult describes where a play result landed, for the history
// log.
type PlayResult struct {
	RoomID    string
	ChartID   int32
	ChartName string
}

// ApplyPlayed publishes a fetched play result, marks the player
// finished and ends the round once everyone is done. The returned
// PlayResult captures the room and chart at upload time.
func (g *Registry) ApplyPlayed(userID, score int32, accuracy float32, fullCombo bool) (PlayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.playingLocked(userID); err != nil {
		return PlayResult{}, err
	}
	r := g.byUser[userID]
	m, _ := r.member(userID)
	res := PlayResult{RoomID: r.id, ChartID: r.chartID, ChartName: r.chartName}

	r.broadcast(serverpackets.PlayedMessage{
		UserID:    userID,
		Score:     score,
		Accuracy:  accuracy,
		FullCombo: fullCombo,
	})
	r.finished[userID] = struct{}{}
	m.Sender.Send(serverpackets.Frame(serverpackets.PlayedOK{}))
	r.finishIfDone()
	return res, nil
}

// AbortPlay marks userID as having abandoned the current play. Counts
// towards the finish quorum like an uploaded result.
func (g *Registry) AbortPlay(userID int32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.playingLocked(userID); err != nil {
		return err
	}
	r := g.byUser[userID]
	m, _ := r.member(userID)

	r.broadcast(serverpackets.AbortMessage{UserID: userID})
	r.finished[userID] = struct{}{}
	m.Sender.Send(serverpackets.Frame(serverpackets.AbortOK{}))
	r.finishIfDone()
	return nil
}

// InfoFor builds the authenticate-time room summary for a user who is
// already a member somewhere, with the host and ready flags relative
// to that user.
func (g *Registry) InfoFor(userID int32) (serverpackets.RoomInfo, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, ok := g.byUser[userID]
	if !ok {
		return serverpackets.RoomInfo{}, false
	}
	_, isReady := r.ready[userID]
	return serverpackets.RoomInfo{
		RoomID:   r.id,
		State:    r.gameState(),
		Live:     r.live,
		Locked:   r.locked,
		Cycle:    r.cycle,
		IsHost:   r.host == userID,
		IsReady:  isReady,
		Users:    r.userProfiles(),
		Monitors: r.monitorProfiles(),
	}, true
}

// ForceDestroy removes a room on an administrator's behalf, telling
// every member why before the teardown.
func (g *Registry) ForceDestroy(roomID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	r.broadcast(serverpackets.ChatMessage{UserID: serverNoticeID, Content: "房间已被管理员解散"})
	g.destroyLocked(r)
	slog.Info("room force destroyed", "roomId", roomID)
	return nil
}

// ForceKick throws a player out on an administrator's behalf. The
// kicked player is told first, then the usual leave flow runs.
func (g *Registry) ForceKick(roomID string, userID int32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	m, found := r.member(userID)
	if !found {
		return ErrUserNotFound
	}
	m.Sender.Send(serverpackets.Frame(serverpackets.ChatMessage{
		UserID:  serverNoticeID,
		Content: "你已被管理员踢出房间",
	}))
	g.removeLocked(r, userID)
	slog.Info("user force kicked", "roomId", roomID, "user", userID)
	return nil
}

// ForceReady marks a player ready on an administrator's behalf and
// runs the start check.
func (g *Registry) ForceReady(roomID string, userID int32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if _, found := r.member(userID); !found {
		return ErrUserNotFound
	}
	if r.phase != serverpackets.PhaseWaitForReady {
		return ErrNotReadyState
	}
	r.ready[userID] = struct{}{}
	r.broadcast(serverpackets.ReadyMessage{UserID: userID})
	slog.Info("user force readied", "roomId", roomID, "user", userID)
	r.startIfReady()
	return nil
}
