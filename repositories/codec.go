package repositories

import (
	"fmt"
	"time"

	"presence-chat/domain"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored with the protobuf wire format so that fields can be
// added later without rewriting existing entries.
//
//	participant: 1=name 2=last_seen (unix nanos)
//	message:     1=id 2=from 3=to (empty for broadcast) 4=text 5=kind 6=at (unix nanos)
const (
	participantName     protowire.Number = 1
	participantLastSeen protowire.Number = 2

	messageID   protowire.Number = 1
	messageFrom protowire.Number = 2
	messageTo   protowire.Number = 3
	messageText protowire.Number = 4
	messageKind protowire.Number = 5
	messageAt   protowire.Number = 6
)

func marshalParticipant(p domain.Participant) []byte {
	var b []byte
	b = appendString(b, participantName, p.Name)
	b = appendTime(b, participantLastSeen, p.LastSeen)
	return b
}

func unmarshalParticipant(b []byte) (domain.Participant, error) {
	var p domain.Participant
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, field []byte) int {
		switch {
		case num == participantName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(field)
			p.Name = v
			return n
		case num == participantLastSeen && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(field)
			p.LastSeen = time.Unix(0, int64(v)).UTC()
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, field)
	})
	return p, err
}

func marshalMessage(m domain.Message) []byte {
	var b []byte
	b = appendString(b, messageID, m.ID.String())
	b = appendString(b, messageFrom, m.From)
	b = appendString(b, messageTo, m.To.Participant())
	b = appendString(b, messageText, m.Text)
	b = appendString(b, messageKind, string(m.Kind))
	b = appendTime(b, messageAt, m.At)
	return b
}

func unmarshalMessage(b []byte) (domain.Message, error) {
	var (
		m  domain.Message
		id string
	)
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, field []byte) int {
		if typ == protowire.VarintType && num == messageAt {
			v, n := protowire.ConsumeVarint(field)
			m.At = time.Unix(0, int64(v)).UTC()
			return n
		}
		if typ != protowire.BytesType {
			return protowire.ConsumeFieldValue(num, typ, field)
		}
		v, n := protowire.ConsumeString(field)
		switch num {
		case messageID:
			id = v
		case messageFrom:
			m.From = v
		case messageTo:
			if v != "" {
				m.To = domain.Direct(v)
			}
		case messageText:
			m.Text = v
		case messageKind:
			m.Kind = domain.Kind(v)
		}
		return n
	})
	if err != nil {
		return domain.Message{}, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("corrupted message id %q: %w", id, err)
	}
	m.ID = parsedID
	return m, nil
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(t.UnixNano()))
}

// consumeFields walks every field of a record. fn returns the number of
// bytes it consumed from field, or a negative protowire length on error.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, field []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m := fn(num, typ, b)
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}
