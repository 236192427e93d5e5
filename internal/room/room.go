// Package room holds the lobby state machine: room lifecycle,
// membership, host succession and the ready/finish quorums.
package room

import (
	"github.com/udisondev/phira-mp/internal/lobby/serverpackets"
)

// Sender delivers one encoded frame to a client. Implementations must
// not block: the connection layer enqueues the frame and drops it when
// the client's queue is full.
type Sender interface {
	Send(frame []byte)
}

// Member ties an authenticated user to the connection it entered with.
type Member struct {
	Profile serverpackets.UserProfile
	Sender  Sender
}

// Room is the mutable state of one lobby. A Room carries no lock of its
// own: every method and every field access happens under the owning
// Registry's mutex. Fan-out methods only enqueue frames.
type Room struct {
	id        string
	host      int32
	phase     byte
	chartID   int32
	chartName string
	hasChart  bool
	live      bool
	locked    bool
	cycle     bool
	members   []*Member // join order, host included
	monitors  []*Member
	ready     map[int32]struct{}
	finished  map[int32]struct{}
}

func newRoom(id string, host *Member) *Room {
	return &Room{
		id:       id,
		host:     host.Profile.ID,
		phase:    serverpackets.PhaseSelectChart,
		members:  []*Member{host},
		ready:    make(map[int32]struct{}),
		finished: make(map[int32]struct{}),
	}
}

// memberIndex returns the position of userID in join order, -1 if the
// user is not a player here.
func (r *Room) memberIndex(userID int32) int {
	for i, m := range r.members {
		if m.Profile.ID == userID {
			return i
		}
	}
	return -1
}

func (r *Room) member(userID int32) (*Member, bool) {
	if i := r.memberIndex(userID); i >= 0 {
		return r.members[i], true
	}
	return nil, false
}

func (r *Room) monitorIndex(userID int32) int {
	for i, m := range r.monitors {
		if m.Profile.ID == userID {
			return i
		}
	}
	return -1
}

// removeMember takes userID out of the player list and scrubs its
// ready and finished marks so both sets stay subsets of the roster.
func (r *Room) removeMember(userID int32) *Member {
	i := r.memberIndex(userID)
	if i < 0 {
		return nil
	}
	m := r.members[i]
	r.members = append(r.members[:i], r.members[i+1:]...)
	delete(r.ready, userID)
	delete(r.finished, userID)
	return m
}

func (r *Room) removeMonitor(userID int32) *Member {
	i := r.monitorIndex(userID)
	if i < 0 {
		return nil
	}
	m := r.monitors[i]
	r.monitors = append(r.monitors[:i], r.monitors[i+1:]...)
	return m
}

func (r *Room) userProfiles() []serverpackets.UserProfile {
	out := make([]serverpackets.UserProfile, len(r.members))
	for i, m := range r.members {
		out[i] = m.Profile
	}
	return out
}

func (r *Room) monitorProfiles() []serverpackets.UserProfile {
	out := make([]serverpackets.UserProfile, len(r.monitors))
	for i, m := range r.monitors {
		out[i] = m.Profile
	}
	return out
}

// gameState builds the client-visible phase value. Only chart selection
// carries the picked chart.
func (r *Room) gameState() serverpackets.GameState {
	s := serverpackets.GameState{Phase: r.phase}
	if r.phase == serverpackets.PhaseSelectChart && r.hasChart {
		s.HasChart = true
		s.ChartID = r.chartID
	}
	return s
}

// broadcast fans a packet out to every player. The frame is encoded
// once and shared between senders, so receivers must treat it as
// read-only.
func (r *Room) broadcast(p serverpackets.Packet) {
	frame := serverpackets.Frame(p)
	for _, m := range r.members {
		m.Sender.Send(frame)
	}
}

func (r *Room) broadcastExcept(userID int32, p serverpackets.Packet) {
	frame := serverpackets.Frame(p)
	for _, m := range r.members {
		if m.Profile.ID != userID {
			m.Sender.Send(frame)
		}
	}
}

// sendTo delivers a packet to one player if they are still present.
func (r *Room) sendTo(userID int32, p serverpackets.Packet) {
	if m, ok := r.member(userID); ok {
		m.Sender.Send(serverpackets.Frame(p))
	}
}

// startIfReady moves the room into Playing once every player is ready.
// Ready marks are cleared at the transition.
func (r *Room) startIfReady() {
	if r.phase != serverpackets.PhaseWaitForReady {
		return
	}
	if len(r.members) == 0 || len(r.ready) != len(r.members) {
		return
	}
	clear(r.ready)
	r.broadcast(serverpackets.StartPlayingMessage{})
	r.phase = serverpackets.PhasePlaying
	r.broadcast(serverpackets.ChangeState{State: r.gameState()})
}

// finishIfDone ends the round once every player has uploaded a result
// or aborted: the chart is dropped, the room returns to chart selection
// and, with cycle on, host rights rotate to the next player in join
// order.
func (r *Room) finishIfDone() {
	if r.phase != serverpackets.PhasePlaying {
		return
	}
	if len(r.members) == 0 || len(r.finished) != len(r.members) {
		return
	}
	r.broadcast(serverpackets.GameEndMessage{})
	if r.cycle {
		r.rotateHost()
	}
	r.hasChart = false
	r.chartID = 0
	r.chartName = ""
	r.phase = serverpackets.PhaseSelectChart
	r.broadcast(serverpackets.ChangeState{State: r.gameState()})
	clear(r.finished)
}

// rotateHost hands host rights to the player after the current host in
// join order, wrapping at the end. If the old host already left, the
// first player takes over.
func (r *Room) rotateHost() {
	if len(r.members) == 0 {
		return
	}
	next := 0
	if i := r.memberIndex(r.host); i >= 0 {
		next = (i + 1) % len(r.members)
	}
	old := r.host
	r.host = r.members[next].Profile.ID
	if old != r.host {
		r.sendTo(old, serverpackets.ChangeHost{IsHost: false})
	}
	r.sendTo(r.host, serverpackets.ChangeHost{IsHost: true})
}
