package domain

import (
	"strings"
	"testing"

	"presence-chat/errors"

	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Valid name", "alice", false},
		{"Valid alphanumeric name", "bob42", false},
		{"Minimum length", "ab", false},
		{"Maximum length", strings.Repeat("a", 50), false},
		{"Too short", "a", true},
		{"Too long", strings.Repeat("a", 51), true},
		{"Empty", "", true},
		{"Spaces", "alice smith", true},
		{"Punctuation", "alice!", true},
		{"Reserved broadcast literal", "Todos", true},
		{"Reserved broadcast literal in another case", "TODOS", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateName(tt.input, broadcastLiteral)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidIdentifier)
				req.ErrorIs(err, errors.ErrInvalidInput)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestParseMessageBody(t *testing.T) {
	tests := []struct {
		name    string
		to      string
		text    string
		kind    string
		wantErr bool
	}{
		{"Broadcast message", broadcastLiteral, "hello", "message", false},
		{"Private message", "bob", "hello", "private_message", false},
		{"Public kind to a participant", "bob", "hello", "message", false},
		{"Empty text", broadcastLiteral, "", "message", true},
		{"Empty recipient", "", "hello", "message", true},
		{"Unknown kind", broadcastLiteral, "hello", "shout", true},
		{"Status is system only", broadcastLiteral, "joined", "status", true},
		{"Private to broadcast", broadcastLiteral, "hello", "private_message", true},
		{"Private to broadcast in lower case", "todos", "hello", "private_message", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			patch, err := ParseMessageBody(tt.to, tt.text, tt.kind, broadcastLiteral)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidInput)
				return
			}
			req.NoError(err)
			req.Equal(tt.text, patch.Text)
			req.Equal(Kind(tt.kind), patch.Kind)
			req.Equal(tt.to, patch.To.Render(broadcastLiteral))
		})
	}
}
