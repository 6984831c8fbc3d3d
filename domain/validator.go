package domain

import (
	"fmt"
	"strings"

	"presence-chat/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type nameRequest struct {
	Name string `validate:"required,alphanum,min=2,max=50"`
}

type messageRequest struct {
	To   string `validate:"required,alphanum"`
	Text string `validate:"required"`
	Kind string `validate:"required,oneof=message private_message"`
}

// ValidateName applies the identifier policy. The broadcast literal is
// reserved and can never be taken by a participant.
func ValidateName(name, broadcastLiteral string) error {
	if err := validate.Struct(nameRequest{Name: name}); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidIdentifier, err)
	}
	if strings.EqualFold(name, broadcastLiteral) {
		return fmt.Errorf("%w: %q is reserved", errors.ErrInvalidIdentifier, name)
	}
	return nil
}

// ParseMessageBody checks the user supplied part of a message and
// returns its patch form. Status messages are never accepted here.
func ParseMessageBody(to, text, kind, broadcastLiteral string) (MessagePatch, error) {
	req := messageRequest{To: to, Text: text, Kind: kind}
	if err := validate.Struct(req); err != nil {
		return MessagePatch{}, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	recipient := ParseRecipient(to, broadcastLiteral)
	if Kind(kind) == KindPrivate && recipient.IsBroadcast() {
		return MessagePatch{}, fmt.Errorf("%w: private message cannot target %s",
			errors.ErrInvalidInput, broadcastLiteral)
	}
	return MessagePatch{To: recipient, Text: text, Kind: Kind(kind)}, nil
}
