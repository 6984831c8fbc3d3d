package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"presence-chat/contract"
	"presence-chat/domain"
	"presence-chat/domain/event"
	"presence-chat/errors"
	"presence-chat/moderation"
	"presence-chat/repositories"

	"github.com/google/uuid"
)

// IPresenceGate is what the router needs from the registry to authorize a requester.
type IPresenceGate interface {
	IsPresent(ctx context.Context, name string) (bool, error)
}

// Router stores messages, enforces ownership and filters what each participant can read.
//
// Every mutating operation checks in the same order:
// requester presence, body shape, message lookup, ownership, then the write.
// An absent requester never learns whether a message exists.
type Router struct {
	log              *slog.Logger
	presence         IPresenceGate
	messages         repositories.IMessageRepository
	publisher        contract.IPublisher
	moderator        contract.IModerator
	broadcastLiteral string
	now              func() time.Time
}

func NewRouter(log *slog.Logger, presence IPresenceGate,
	messages repositories.IMessageRepository,
	publisher contract.IPublisher, broadcastLiteral string) *Router {
	return &Router{
		log:              log,
		presence:         presence,
		messages:         messages,
		publisher:        publisher,
		broadcastLiteral: broadcastLiteral,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// WithModerator censors message texts before they are stored.
func (r *Router) WithModerator(moderator contract.IModerator) *Router {
	r.moderator = moderator
	return r
}

func (r *Router) WithClock(now func() time.Time) *Router {
	r.now = now
	return r
}

// Send stores a message from a present participant and returns its id.
func (r *Router) Send(ctx context.Context, cmd domain.SendMessageCommand) (uuid.UUID, error) {
	if err := r.authorize(ctx, cmd.From); err != nil {
		return uuid.Nil, err
	}
	patch, err := domain.ParseMessageBody(cmd.To, cmd.Text, cmd.Kind, r.broadcastLiteral)
	if err != nil {
		return uuid.Nil, err
	}
	patch, censored := r.censor(patch)

	message, err := r.messages.Insert(ctx, domain.Message{
		From: cmd.From,
		To:   patch.To,
		Text: patch.Text,
		Kind: patch.Kind,
		At:   r.now(),
	})
	if err != nil {
		return uuid.Nil, err
	}
	r.publisher.Publish(event.MessagePosted{
		ID:            message.ID,
		From:          message.From,
		To:            message.To.Render(r.broadcastLiteral),
		Kind:          string(message.Kind),
		Lang:          moderation.DetectLanguage(cmd.Text),
		CensoredWords: censored,
		At:            message.At,
	})
	return message.ID, nil
}

// ListVisible returns, in insertion order, the messages the requester may read.
// With a limit only the most recent matching messages are kept.
func (r *Router) ListVisible(ctx context.Context, query domain.ListMessagesQuery) ([]domain.Message, error) {
	if query.Limit != nil && *query.Limit < 1 {
		return nil, errors.ErrInvalidLimit
	}
	messages, err := r.messages.FindMany(ctx, func(m domain.Message) bool {
		return m.VisibleTo(query.Requester)
	})
	if err != nil {
		return nil, err
	}
	if query.Limit != nil && len(messages) > *query.Limit {
		messages = messages[len(messages)-*query.Limit:]
	}
	return messages, nil
}

// Update replaces recipient, text and kind of a message owned by the requester.
func (r *Router) Update(ctx context.Context, cmd domain.UpdateMessageCommand) error {
	if err := r.authorize(ctx, cmd.Requester); err != nil {
		return err
	}
	patch, err := domain.ParseMessageBody(cmd.To, cmd.Text, cmd.Kind, r.broadcastLiteral)
	if err != nil {
		return err
	}
	id, err := r.owned(ctx, cmd.ID, cmd.Requester)
	if err != nil {
		return err
	}
	patch, censored := r.censor(patch)
	if err := r.messages.Update(ctx, id, patch); err != nil {
		return err
	}
	r.publisher.Publish(event.MessageEdited{
		ID:            id,
		By:            cmd.Requester,
		To:            patch.To.Render(r.broadcastLiteral),
		Kind:          string(patch.Kind),
		CensoredWords: censored,
		At:            r.now(),
	})
	return nil
}

// Delete removes a message owned by the requester.
func (r *Router) Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	if err := r.authorize(ctx, cmd.Requester); err != nil {
		return err
	}
	id, err := r.owned(ctx, cmd.ID, cmd.Requester)
	if err != nil {
		return err
	}
	if err := r.messages.Delete(ctx, id); err != nil {
		return err
	}
	r.publisher.Publish(event.MessageRemoved{ID: id, By: cmd.Requester, At: r.now()})
	return nil
}

// authorize rejects requesters that are not present in the room.
func (r *Router) authorize(ctx context.Context, name string) error {
	present, err := r.presence.IsPresent(ctx, name)
	if err != nil {
		return err
	}
	if !present {
		return stderrors.Join(errors.ErrUnknownParticipant,
			fmt.Errorf("%w: %q is not in the room", errors.ErrUnauthorized, name))
	}
	return nil
}

// owned resolves the message id and checks the requester sent it.
// A malformed id cannot match any message and is reported as not found.
func (r *Router) owned(ctx context.Context, rawID, requester string) (uuid.UUID, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: message %q", errors.ErrNotFound, rawID)
	}
	message, err := r.messages.Find(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if message.Kind == domain.KindStatus {
		return uuid.Nil, fmt.Errorf("%w: status message %s cannot be changed",
			errors.ErrUnauthorized, id)
	}
	if !message.OwnedBy(requester) {
		return uuid.Nil, fmt.Errorf("%w: %s is not the sender of message %s",
			errors.ErrUnauthorized, requester, id)
	}
	return id, nil
}

func (r *Router) censor(patch domain.MessagePatch) (domain.MessagePatch, []string) {
	if r.moderator == nil {
		return patch, nil
	}
	text, words := r.moderator.Censor(patch.Text)
	if len(words) > 0 {
		r.log.Debug("Censored words removed from message", "count", len(words))
	}
	patch.Text = text
	return patch, words
}
