// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant is a presence in the chat room, identified by its unique name.
// The name never changes once the participant joined.
type Participant struct {
	Name     string
	LastSeen time.Time
}

func NewParticipant(name string, at time.Time) Participant {
	return Participant{Name: name, LastSeen: at}
}

// IsStale reports whether the participant stopped signaling before cutoff.
func (p Participant) IsStale(cutoff time.Time) bool {
	return p.LastSeen.Before(cutoff)
}
