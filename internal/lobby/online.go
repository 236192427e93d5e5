package lobby

import "sync"

// onlineTable maps authenticated user ids to their sessions. One user
// holds at most one live connection; Authenticate enforces that by
// consulting this table.
type onlineTable struct {
	mu    sync.Mutex
	users map[int32]*session
}

func newOnlineTable() *onlineTable {
	return &onlineTable{users: make(map[int32]*session)}
}

func (t *onlineTable) get(id int32) *session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.users[id]
}

// claim installs s as the online session for id under a single lock
// hold. A live incumbent keeps the slot and is returned with live set;
// a dead incumbent is displaced and returned so the caller can finish
// its teardown.
func (t *onlineTable) claim(id int32, s *session) (old *session, live bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	old = t.users[id]
	if old != nil && !old.conn.Closed() {
		return old, true
	}
	t.users[id] = s
	return old, false
}

// drop removes the entry only if it still belongs to s. A reconnecting
// user replaces the entry before the old session finishes tearing down,
// and that teardown must not evict the new session.
func (t *onlineTable) drop(id int32, s *session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.users[id] == s {
		delete(t.users, id)
	}
}

func (t *onlineTable) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.users)
}
