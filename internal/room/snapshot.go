package room

import (
	"slices"
	"strings"

	"github.com/udisondev/phira-mp/internal/lobby/serverpackets"
)

// RoomSnapshot is a detached read-only copy of one room's state, safe
// to use after the registry lock is released.
type RoomSnapshot struct {
	RoomID        string
	HostID        int32
	State         string
	HasChart      bool
	ChartID       int32
	ChartName     string
	Live          bool
	Locked        bool
	Cycle         bool
	Users         []serverpackets.UserProfile
	Monitors      []serverpackets.UserProfile
	ReadyCount    int
	FinishedCount int
}

// Rooms returns snapshots of every live room, ordered by room id.
func (g *Registry) Rooms() []RoomSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]RoomSnapshot, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, snapshotLocked(r))
	}
	slices.SortFunc(out, func(a, b RoomSnapshot) int {
		return strings.Compare(a.RoomID, b.RoomID)
	})
	return out
}

// Room returns a snapshot of one room by id.
func (g *Registry) Room(roomID string) (RoomSnapshot, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, ok := g.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, false
	}
	return snapshotLocked(r), true
}

// RoomCount returns the number of live rooms.
func (g *Registry) RoomCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

func snapshotLocked(r *Room) RoomSnapshot {
	return RoomSnapshot{
		RoomID:        r.id,
		HostID:        r.host,
		State:         stateName(r.phase),
		HasChart:      r.hasChart,
		ChartID:       r.chartID,
		ChartName:     r.chartName,
		Live:          r.live,
		Locked:        r.locked,
		Cycle:         r.cycle,
		Users:         r.userProfiles(),
		Monitors:      r.monitorProfiles(),
		ReadyCount:    len(r.ready),
		FinishedCount: len(r.finished),
	}
}

func stateName(phase byte) string {
	switch phase {
	case serverpackets.PhaseWaitForReady:
		return "WaitForReady"
	case serverpackets.PhasePlaying:
		return "Playing"
	default:
		return "SelectChart"
	}
}
