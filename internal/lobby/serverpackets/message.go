package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeMessage is the server packet opcode for room notices (S2C 0x05).
// The first body byte is a sub-id selecting one of the notice types
// below; every room event the clients render comes through here.
const OpcodeMessage = 0x05

// Message sub-ids.
const (
	MessageChat         byte = 0x00
	MessageCreateRoom   byte = 0x01
	MessageJoinRoom     byte = 0x02
	MessageLeaveRoom    byte = 0x03
	MessageNewHost      byte = 0x04
	MessageSelectChart  byte = 0x05
	MessageGameStart    byte = 0x06
	MessageReady        byte = 0x07
	MessageCancelReady  byte = 0x08
	MessageCancelGame   byte = 0x09
	MessageStartPlaying byte = 0x0A
	MessagePlayed       byte = 0x0B
	MessageGameEnd      byte = 0x0C
	MessageAbort        byte = 0x0D
	MessageLockRoom     byte = 0x0E
	MessageCycleRoom    byte = 0x0F
)

// ChatMessage relays a chat line. Server notices use UserID -1.
type ChatMessage struct {
	UserID  int32
	Content string
}

// Opcode returns the packet id.
func (ChatMessage) Opcode() byte { return OpcodeMessage }

func (m ChatMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageChat)
	b.WriteIntLE(m.UserID)
	b.WriteString(m.Content)
}

// CreateRoomMessage announces that a user created the room.
type CreateRoomMessage struct {
	UserID int32
}

// Opcode returns the packet id.
func (CreateRoomMessage) Opcode() byte { return OpcodeMessage }

func (m CreateRoomMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageCreateRoom)
	b.WriteIntLE(m.UserID)
}

// JoinRoomMessage announces that a user entered the room.
type JoinRoomMessage struct {
	UserID int32
	Name   string
}

// Opcode returns the packet id.
func (JoinRoomMessage) Opcode() byte { return OpcodeMessage }

func (m JoinRoomMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageJoinRoom)
	b.WriteIntLE(m.UserID)
	b.WriteString(m.Name)
}

// LeaveRoomMessage announces that a user left the room.
type LeaveRoomMessage struct {
	UserID int32
	Name   string
}

// Opcode returns the packet id.
func (LeaveRoomMessage) Opcode() byte { return OpcodeMessage }

func (m LeaveRoomMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageLeaveRoom)
	b.WriteIntLE(m.UserID)
	b.WriteString(m.Name)
}

// NewHostMessage announces a host change.
type NewHostMessage struct {
	UserID int32
}

// Opcode returns the packet id.
func (NewHostMessage) Opcode() byte { return OpcodeMessage }

func (m NewHostMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageNewHost)
	b.WriteIntLE(m.UserID)
}

// SelectChartMessage announces the host's chart pick.
type SelectChartMessage struct {
	UserID  int32
	Name    string
	ChartID int32
}

// Opcode returns the packet id.
func (SelectChartMessage) Opcode() byte { return OpcodeMessage }

func (m SelectChartMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageSelectChart)
	b.WriteIntLE(m.UserID)
	b.WriteString(m.Name)
	b.WriteIntLE(m.ChartID)
}

// GameStartMessage announces that the host opened the ready phase.
type GameStartMessage struct {
	UserID int32
}

// Opcode returns the packet id.
func (GameStartMessage) Opcode() byte { return OpcodeMessage }

func (m GameStartMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageGameStart)
	b.WriteIntLE(m.UserID)
}

// ReadyMessage announces that a player is ready.
type ReadyMessage struct {
	UserID int32
}

// Opcode returns the packet id.
func (ReadyMessage) Opcode() byte { return OpcodeMessage }

func (m ReadyMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageReady)
	b.WriteIntLE(m.UserID)
}

// CancelReadyMessage announces that a player withdrew readiness.
type CancelReadyMessage struct {
	UserID int32
}

// Opcode returns the packet id.
func (CancelReadyMessage) Opcode() byte { return OpcodeMessage }

func (m CancelReadyMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageCancelReady)
	b.WriteIntLE(m.UserID)
}

// CancelGameMessage announces that the host cancelled the ready phase.
type CancelGameMessage struct {
	UserID int32
}

// Opcode returns the packet id.
func (CancelGameMessage) Opcode() byte { return OpcodeMessage }

func (m CancelGameMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageCancelGame)
	b.WriteIntLE(m.UserID)
}

// StartPlayingMessage announces that play begins. No fields.
type StartPlayingMessage struct{}

// Opcode returns the packet id.
func (StartPlayingMessage) Opcode() byte { return OpcodeMessage }

func (StartPlayingMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageStartPlaying)
}

// PlayedMessage announces a player's uploaded result.
type PlayedMessage struct {
	UserID    int32
	Score     int32
	Accuracy  float32
	FullCombo bool
}

// Opcode returns the packet id.
func (PlayedMessage) Opcode() byte { return OpcodeMessage }

func (m PlayedMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessagePlayed)
	b.WriteIntLE(m.UserID)
	b.WriteIntLE(m.Score)
	b.WriteFloatLE(m.Accuracy)
	b.WriteBool(m.FullCombo)
}

// GameEndMessage announces that every player finished. No fields.
type GameEndMessage struct{}

// Opcode returns the packet id.
func (GameEndMessage) Opcode() byte { return OpcodeMessage }

func (GameEndMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageGameEnd)
}

// AbortMessage announces that a player abandoned the play.
type AbortMessage struct {
	UserID int32
}

// Opcode returns the packet id.
func (AbortMessage) Opcode() byte { return OpcodeMessage }

func (m AbortMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageAbort)
	b.WriteIntLE(m.UserID)
}

// LockRoomMessage announces the room's lock state.
type LockRoomMessage struct {
	Lock bool
}

// Opcode returns the packet id.
func (LockRoomMessage) Opcode() byte { return OpcodeMessage }

func (m LockRoomMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageLockRoom)
	b.WriteBool(m.Lock)
}

// CycleRoomMessage announces the room's host-rotation state.
type CycleRoomMessage struct {
	Cycle bool
}

// Opcode returns the packet id.
func (CycleRoomMessage) Opcode() byte { return OpcodeMessage }

func (m CycleRoomMessage) encode(b *protocol.ByteBuf) {
	b.WriteByte(MessageCycleRoom)
	b.WriteBool(m.Cycle)
}
