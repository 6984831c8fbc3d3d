package runtime

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"presence-chat/domain"
	"presence-chat/domain/event"
	"presence-chat/errors"
	"presence-chat/moderation"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func join(t *testing.T, c core, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := c.registry.Join(context.Background(), name)
		require.NoError(t, err)
	}
}

func texts(messages []domain.Message) []string {
	return lo.Map(messages, func(m domain.Message, _ int) string { return m.Text })
}

func withoutStatus(messages []domain.Message) []domain.Message {
	return lo.Filter(messages, func(m domain.Message, _ int) bool { return m.Kind != domain.KindStatus })
}

func TestRouter_Send(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCore(t)
	join(t, c, "alice")

	// When alice talks to everyone
	id, err := c.router.Send(ctx, domain.SendMessageCommand{From: "alice", To: broadcastLiteral, Text: "hello", Kind: "message"})
	req.NoError(err)

	// Then the message is stored with the sender and the current time
	message, err := c.messages.Find(ctx, id)
	req.NoError(err)
	req.Equal("alice", message.From)
	req.True(message.To.IsBroadcast())
	req.True(c.clock.Now().Equal(message.At))
	req.Contains(c.publisher.names(), event.MessagePostedType)
}

func TestRouter_Send_Rejections(t *testing.T) {
	ctx := context.Background()
	c := newCore(t)
	join(t, c, "alice")

	tests := []struct {
		name     string
		cmd      domain.SendMessageCommand
		expected error
	}{
		{"unknown sender", domain.SendMessageCommand{From: "ghost", To: broadcastLiteral, Text: "hi", Kind: "message"}, errors.ErrUnauthorized},
		{"missing sender", domain.SendMessageCommand{To: broadcastLiteral, Text: "hi", Kind: "message"}, errors.ErrUnknownParticipant},
		{"empty text", domain.SendMessageCommand{From: "alice", To: broadcastLiteral, Text: "", Kind: "message"}, errors.ErrInvalidInput},
		{"unknown kind", domain.SendMessageCommand{From: "alice", To: broadcastLiteral, Text: "hi", Kind: "shout"}, errors.ErrInvalidInput},
		{"status kind", domain.SendMessageCommand{From: "alice", To: broadcastLiteral, Text: "hi", Kind: "status"}, errors.ErrInvalidInput},
		{"private to everyone", domain.SendMessageCommand{From: "alice", To: broadcastLiteral, Text: "hi", Kind: "private_message"}, errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.router.Send(ctx, tt.cmd)
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestRouter_ListVisible_Private_Messages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCore(t)
	join(t, c, "alice", "bob", "clara")

	_, err := c.router.Send(ctx, domain.SendMessageCommand{From: "alice", To: "bob", Text: "secret", Kind: "private_message"})
	req.NoError(err)
	_, err = c.router.Send(ctx, domain.SendMessageCommand{From: "alice", To: "bob", Text: "public reply", Kind: "message"})
	req.NoError(err)

	visible := func(requester string) []string {
		messages, err := c.router.ListVisible(ctx, domain.ListMessagesQuery{Requester: requester})
		req.NoError(err)
		return texts(withoutStatus(messages))
	}

	// Then the private message is seen by its sender and recipient only
	req.Equal([]string{"secret", "public reply"}, visible("alice"))
	req.Equal([]string{"secret"}, visible("bob"))
	req.Empty(visible("clara"))
}

func TestRouter_ListVisible_Limit(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCore(t)
	join(t, c, "alice", "bob")
	for _, text := range []string{"one", "two", "three"} {
		_, err := c.router.Send(ctx, domain.SendMessageCommand{From: "alice", To: broadcastLiteral, Text: text, Kind: "message"})
		req.NoError(err)
		// A private message to someone else must not eat into the limit
		_, err = c.router.Send(ctx, domain.SendMessageCommand{From: "alice", To: "bob", Text: "psst " + text, Kind: "private_message"})
		req.NoError(err)
	}

	messages, err := c.router.ListVisible(ctx, domain.ListMessagesQuery{Requester: "clara", Limit: lo.ToPtr(2)})
	req.NoError(err)
	req.Equal([]string{"two", "three"}, texts(messages))

	messages, err = c.router.ListVisible(ctx, domain.ListMessagesQuery{Requester: "clara", Limit: lo.ToPtr(100)})
	req.NoError(err)
	req.Len(messages, 5)

	for _, limit := range []int{0, -3} {
		_, err = c.router.ListVisible(ctx, domain.ListMessagesQuery{Requester: "clara", Limit: lo.ToPtr(limit)})
		req.ErrorIs(err, errors.ErrInvalidInput)
	}
}

func TestRouter_Update(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCore(t)
	join(t, c, "alice", "bob")
	id, err := c.router.Send(ctx, domain.SendMessageCommand{From: "alice", To: broadcastLiteral, Text: "helo", Kind: "message"})
	req.NoError(err)
	sentAt := c.clock.Now()
	c.clock.Advance(time.Minute)

	// When alice fixes her message and makes it private
	err = c.router.Update(ctx, domain.UpdateMessageCommand{ID: id.String(), Requester: "alice", To: "bob", Text: "hello", Kind: "private_message"})
	req.NoError(err)

	// Then id, sender and time are unchanged
	message, err := c.messages.Find(ctx, id)
	req.NoError(err)
	req.Equal(id, message.ID)
	req.Equal("alice", message.From)
	req.True(sentAt.Equal(message.At))
	req.Equal("hello", message.Text)
	req.Equal(domain.KindPrivate, message.Kind)
	req.True(message.To.Is("bob"))
}

func TestRouter_Update_Rejections(t *testing.T) {
	ctx := context.Background()
	c := newCore(t)
	join(t, c, "alice", "bob")
	id, err := c.router.Send(ctx, domain.SendMessageCommand{From: "alice", To: broadcastLiteral, Text: "hi", Kind: "message"})
	require.NoError(t, err)
	valid := domain.UpdateMessageCommand{ID: id.String(), Requester: "alice", To: broadcastLiteral, Text: "edited", Kind: "message"}

	tests := []struct {
		name     string
		mutate   func(cmd *domain.UpdateMessageCommand)
		expected error
	}{
		{"not the owner", func(cmd *domain.UpdateMessageCommand) { cmd.Requester = "bob" }, errors.ErrUnauthorized},
		{"absent requester", func(cmd *domain.UpdateMessageCommand) { cmd.Requester = "ghost" }, errors.ErrUnknownParticipant},
		{"absent requester unknown message", func(cmd *domain.UpdateMessageCommand) {
			cmd.Requester = "ghost"
			cmd.ID = uuid.NewString()
		}, errors.ErrUnauthorized},
		{"unknown message", func(cmd *domain.UpdateMessageCommand) { cmd.ID = uuid.NewString() }, errors.ErrNotFound},
		{"malformed id", func(cmd *domain.UpdateMessageCommand) { cmd.ID = "42" }, errors.ErrNotFound},
		{"empty text", func(cmd *domain.UpdateMessageCommand) { cmd.Text = "" }, errors.ErrInvalidInput},
		{"private to everyone", func(cmd *domain.UpdateMessageCommand) { cmd.Kind = "private_message" }, errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := valid
			tt.mutate(&cmd)
			require.ErrorIs(t, c.router.Update(ctx, cmd), tt.expected)
		})
	}

	// And the message is untouched
	message, err := c.messages.Find(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "hi", message.Text)
}

func TestRouter_Delete(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCore(t)
	join(t, c, "alice", "bob")
	id, err := c.router.Send(ctx, domain.SendMessageCommand{From: "alice", To: "bob", Text: "oops", Kind: "private_message"})
	req.NoError(err)

	// A present participant who is not the sender cannot delete it, even as the recipient
	req.ErrorIs(c.router.Delete(ctx, domain.DeleteMessageCommand{ID: id.String(), Requester: "bob"}), errors.ErrUnauthorized)
	// An absent requester is rejected before the lookup
	err = c.router.Delete(ctx, domain.DeleteMessageCommand{ID: id.String(), Requester: "ghost"})
	req.ErrorIs(err, errors.ErrUnknownParticipant)

	req.NoError(c.router.Delete(ctx, domain.DeleteMessageCommand{ID: id.String(), Requester: "alice"}))

	// Then it is gone for good
	req.ErrorIs(c.router.Delete(ctx, domain.DeleteMessageCommand{ID: id.String(), Requester: "alice"}), errors.ErrNotFound)
	messages, err := c.router.ListVisible(ctx, domain.ListMessagesQuery{Requester: "bob"})
	req.NoError(err)
	req.Empty(withoutStatus(messages))
	req.Contains(c.publisher.names(), event.MessageRemovedType)
}

func TestRouter_Moderation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCore(t)
	moderator, err := moderation.NewModerator([]string{"badger"}, '*', slog.Default())
	req.NoError(err)
	c.router.WithModerator(moderator)
	join(t, c, "alice")

	// When a message carries a censored word
	id, err := c.router.Send(ctx, domain.SendMessageCommand{From: "alice", To: broadcastLiteral, Text: "the badger is here", Kind: "message"})
	req.NoError(err)

	// Then it is stored censored
	message, err := c.messages.Find(ctx, id)
	req.NoError(err)
	req.Equal("the ****** is here", message.Text)
}

func TestRouter_Broadcast_Literal_Any_Case(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCore(t)
	join(t, c, "alice", "bob")

	// When alice addresses everyone with a lower case literal
	id, err := c.router.Send(ctx, domain.SendMessageCommand{From: "alice", To: "todos", Text: "hello all", Kind: "message"})
	req.NoError(err)

	// Then it is a broadcast seen by bob
	message, err := c.messages.Find(ctx, id)
	req.NoError(err)
	req.True(message.To.IsBroadcast())
	messages, err := c.router.ListVisible(ctx, domain.ListMessagesQuery{Requester: "bob"})
	req.NoError(err)
	req.Equal([]string{"hello all"}, texts(withoutStatus(messages)))
}

func TestRouter_Status_Messages_Are_Immutable(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCore(t)
	join(t, c, "alice")

	messages, err := c.router.ListVisible(ctx, domain.ListMessagesQuery{Requester: "alice"})
	req.NoError(err)
	status, found := lo.Find(messages, func(m domain.Message) bool { return m.Kind == domain.KindStatus })
	req.True(found)
	req.Equal("alice", status.From)

	// When alice tries to rewrite or remove her own joined notice
	err = c.router.Update(ctx, domain.UpdateMessageCommand{ID: status.ID.String(), Requester: "alice", To: broadcastLiteral, Text: "left", Kind: "message"})
	req.ErrorIs(err, errors.ErrUnauthorized)
	err = c.router.Delete(ctx, domain.DeleteMessageCommand{ID: status.ID.String(), Requester: "alice"})
	req.ErrorIs(err, errors.ErrUnauthorized)

	// Then the notice is untouched
	message, err := c.messages.Find(ctx, status.ID)
	req.NoError(err)
	req.Equal(status.Text, message.Text)
	req.Equal(domain.KindStatus, message.Kind)
}
