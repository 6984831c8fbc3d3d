package event

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact emitted by the chat core once an operation succeeded.
// Events are side effects only, no operation waits on their delivery.
type DomainEvent interface {
	Name() string
	OccurredAt() time.Time
}

const (
	ParticipantJoinedType = "participant_joined"
	ParticipantLeftType   = "participant_left"
	MessagePostedType     = "message_posted"
	MessageEditedType     = "message_edited"
	MessageRemovedType    = "message_removed"
)

type ParticipantJoined struct {
	Participant string    `json:"participant"`
	At          time.Time `json:"at"`
}

func (e ParticipantJoined) Name() string          { return ParticipantJoinedType }
func (e ParticipantJoined) OccurredAt() time.Time { return e.At }

// ParticipantLeft is emitted when the presence tracker evicts a participant
// whose last signal was older than Cutoff.
type ParticipantLeft struct {
	Participant string    `json:"participant"`
	Cutoff      time.Time `json:"cutoff"`
	At          time.Time `json:"at"`
}

func (e ParticipantLeft) Name() string          { return ParticipantLeftType }
func (e ParticipantLeft) OccurredAt() time.Time { return e.At }

// MessagePosted carries the detected language of the text and the words
// moderation removed from it, never the text itself.
type MessagePosted struct {
	ID            uuid.UUID `json:"id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Kind          string    `json:"kind"`
	Lang          string    `json:"lang,omitempty"`
	CensoredWords []string  `json:"censored_words,omitempty"`
	At            time.Time `json:"at"`
}

func (e MessagePosted) Name() string          { return MessagePostedType }
func (e MessagePosted) OccurredAt() time.Time { return e.At }

type MessageEdited struct {
	ID            uuid.UUID `json:"id"`
	By            string    `json:"by"`
	To            string    `json:"to"`
	Kind          string    `json:"kind"`
	CensoredWords []string  `json:"censored_words,omitempty"`
	At            time.Time `json:"at"`
}

func (e MessageEdited) Name() string          { return MessageEditedType }
func (e MessageEdited) OccurredAt() time.Time { return e.At }

type MessageRemoved struct {
	ID uuid.UUID `json:"id"`
	By string    `json:"by"`
	At time.Time `json:"at"`
}

func (e MessageRemoved) Name() string          { return MessageRemovedType }
func (e MessageRemoved) OccurredAt() time.Time { return e.At }
