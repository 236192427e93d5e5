// Package history persists finished plays so operators can see what a
// room has been up to after the fact. Recording is best effort: the
// lobby never blocks gameplay on the database.
package history

import (
	"context"
	"time"
)

// Play is one submitted record: who played which chart in which room,
// and how it went.
type Play struct {
	RoomID    string
	UserID    int32
	UserName  string
	ChartID   int32
	ChartName string
	Score     int32
	Accuracy  float32
	FullCombo bool
	PlayedAt  time.Time
}

// Recorder stores finished plays.
type Recorder interface {
	RecordPlay(ctx context.Context, play Play) error
}

// Nop discards every play. Used when the server runs without a database.
type Nop struct{}

// RecordPlay does nothing.
func (Nop) RecordPlay(context.Context, Play) error { return nil }
