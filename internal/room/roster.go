package room

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Roster is the set of user ids allowed to observe rooms as monitors,
// loaded once at startup and immutable afterwards.
type Roster struct {
	ids map[int32]struct{}
}

// LoadRoster reads whitespace-separated user ids from path. An empty
// path or a missing file yields an empty roster; malformed entries are
// skipped with a warning.
func LoadRoster(path string) *Roster {
	r := &Roster{ids: make(map[int32]struct{})}
	if path == "" {
		return r
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("monitor roster not loaded", "path", path, "error", err)
		return r
	}
	for _, tok := range strings.Fields(string(data)) {
		id, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			slog.Warn("skipping malformed monitor id", "path", path, "value", tok)
			continue
		}
		r.ids[int32(id)] = struct{}{}
	}
	slog.Info("monitor roster loaded", "path", path, "count", len(r.ids))
	return r
}

// IsMonitor reports whether id belongs to the roster.
func (r *Roster) IsMonitor(id int32) bool {
	_, ok := r.ids[id]
	return ok
}
