package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// UserProfile identifies a user on the wire: id as int32 LE, then the
// display name as a VarInt-prefixed UTF-8 string.
type UserProfile struct {
	ID   int32
	Name string
}

func (u UserProfile) encodeTo(b *protocol.ByteBuf) {
	b.WriteIntLE(u.ID)
	b.WriteString(u.Name)
}

// Room phases as carried by GameState.
const (
	PhaseSelectChart  byte = 0x00
	PhaseWaitForReady byte = 0x01
	PhasePlaying      byte = 0x02
)

// GameState is the client-visible phase of a room. The zero value is
// chart selection with no chart picked. Only the chart-selection phase
// carries extra data: a presence flag and, when set, the chart id.
type GameState struct {
	Phase    byte
	HasChart bool
	ChartID  int32
}

func (s GameState) encodeTo(b *protocol.ByteBuf) {
	b.WriteByte(s.Phase)
	if s.Phase == PhaseSelectChart {
		b.WriteBool(s.HasChart)
		if s.HasChart {
			b.WriteIntLE(s.ChartID)
		}
	}
}

// RoomInfo is a full client-visible snapshot of a room, sent to an
// authenticating user who is already a member. The roster is written as
// a total count byte, then players each flagged false, then monitors
// each flagged true.
type RoomInfo struct {
	RoomID   string
	State    GameState
	Live     bool
	Locked   bool
	Cycle    bool
	IsHost   bool
	IsReady  bool
	Users    []UserProfile
	Monitors []UserProfile
}

func (r RoomInfo) encodeTo(b *protocol.ByteBuf) {
	b.WriteString(r.RoomID)
	r.State.encodeTo(b)
	b.WriteBool(r.Live)
	b.WriteBool(r.Locked)
	b.WriteBool(r.Cycle)
	b.WriteBool(r.IsHost)
	b.WriteBool(r.IsReady)
	b.WriteByte(byte(len(r.Users) + len(r.Monitors)))
	for _, u := range r.Users {
		u.encodeTo(b)
		b.WriteBool(false)
	}
	for _, m := range r.Monitors {
		m.encodeTo(b)
		b.WriteBool(true)
	}
}
