package admin

import (
	"sync"
	"time"
)

// opLogSize is how many operations the in-memory audit trail keeps.
const opLogSize = 100

// Operation is one administrative action that was carried out.
type Operation struct {
	Time   time.Time `json:"time"`
	Type   string    `json:"type"`
	Detail string    `json:"detail"`
	IP     string    `json:"ip"`
}

// OpLog is a fixed-size ring of the most recent operations.
type OpLog struct {
	mu   sync.Mutex
	ops  []Operation
	next int
	full bool
}

// NewOpLog returns an empty log.
func NewOpLog() *OpLog {
	return &OpLog{ops: make([]Operation, opLogSize)}
}

// Add records one operation, evicting the oldest when full.
func (l *OpLog) Add(opType, detail, ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ops[l.next] = Operation{Time: time.Now(), Type: opType, Detail: detail, IP: ip}
	l.next = (l.next + 1) % len(l.ops)
	if l.next == 0 {
		l.full = true
	}
}

// Entries returns the recorded operations, newest first.
func (l *OpLog) Entries() []Operation {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.next
	if l.full {
		n = len(l.ops)
	}
	out := make([]Operation, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, l.ops[(l.next-i+len(l.ops))%len(l.ops)])
	}
	return out
}
