// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Only the sender of a message may change or remove it, and status
// messages are never changed.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the addressing mode of a message.
// Values are the ones exchanged on the wire.
type Kind string

const (
	KindMessage Kind = "message"
	KindPrivate Kind = "private_message"
	KindStatus  Kind = "status"
)

const (
	StatusJoined = "joined"
	StatusLeft   = "left"
)

// Recipient is either the whole room or a single participant.
// The zero value is Broadcast.
type Recipient struct {
	participant string
}

var Broadcast = Recipient{}

func Direct(name string) Recipient {
	return Recipient{participant: name}
}

// ParseRecipient maps the wire value to a Recipient.
// The reserved broadcast literal is the only value addressing everyone.
func ParseRecipient(to, broadcastLiteral string) Recipient {
	if strings.EqualFold(to, broadcastLiteral) {
		return Broadcast
	}
	return Direct(to)
}

func (r Recipient) IsBroadcast() bool {
	return r.participant == ""
}

// Participant returns the addressed name, empty for Broadcast.
func (r Recipient) Participant() string {
	return r.participant
}

// Is reports whether r addresses exactly the given participant.
func (r Recipient) Is(name string) bool {
	return !r.IsBroadcast() && r.participant == name
}

// Render gives the wire value of the recipient.
func (r Recipient) Render(broadcastLiteral string) string {
	if r.IsBroadcast() {
		return broadcastLiteral
	}
	return r.participant
}

// Message represents a chat message.
// ID, From and At never change after creation.
type Message struct {
	ID   uuid.UUID
	From string
	To   Recipient
	Text string
	Kind Kind
	At   time.Time
}

// MessagePatch holds the mutable part of a message.
type MessagePatch struct {
	To   Recipient
	Text string
	Kind Kind
}

func NewStatusMessage(name, text string, at time.Time) Message {
	return Message{
		From: name,
		To:   Broadcast,
		Text: text,
		Kind: KindStatus,
		At:   at,
	}
}

// VisibleTo reports whether requester can read the message: broadcasts,
// own messages and private messages addressed to the requester.
func (m Message) VisibleTo(requester string) bool {
	return m.To.IsBroadcast() ||
		m.From == requester ||
		(m.Kind == KindPrivate && m.To.Is(requester))
}

func (m Message) OwnedBy(name string) bool {
	return m.From == name
}

func (m Message) Apply(patch MessagePatch) Message {
	m.To = patch.To
	m.Text = patch.Text
	m.Kind = patch.Kind
	return m
}
