//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"log/slog"

	"presence-chat/domain"
	"presence-chat/runtime"

	"github.com/google/uuid"
)

type IChatService interface {
	Join(ctx context.Context, name string) (domain.Participant, error)
	Refresh(ctx context.Context, name string) error
	Participants(ctx context.Context) ([]domain.Participant, error)
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (uuid.UUID, error)
	Messages(ctx context.Context, query domain.ListMessagesQuery) ([]domain.Message, error)
	UpdateMessage(ctx context.Context, cmd domain.UpdateMessageCommand) error
	DeleteMessage(ctx context.Context, cmd domain.DeleteMessageCommand) error
}

type ChatService struct {
	log      *slog.Logger
	registry *runtime.Registry
	router   *runtime.Router
}

var _ IChatService = (*ChatService)(nil)

func NewChatService(log *slog.Logger, registry *runtime.Registry, router *runtime.Router) *ChatService {
	return &ChatService{log: log, registry: registry, router: router}
}

func (s *ChatService) Join(ctx context.Context, name string) (domain.Participant, error) {
	participant, err := s.registry.Join(ctx, name)
	if err != nil {
		return domain.Participant{}, err
	}
	s.log.Info("Participant joined", "name", name)
	return participant, nil
}

func (s *ChatService) Refresh(ctx context.Context, name string) error {
	return s.registry.Refresh(ctx, name)
}

func (s *ChatService) Participants(ctx context.Context) ([]domain.Participant, error) {
	return s.registry.List(ctx)
}

func (s *ChatService) SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (uuid.UUID, error) {
	id, err := s.router.Send(ctx, cmd)
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Debug("Message sent", "id", id, "from", cmd.From, "kind", cmd.Kind)
	return id, nil
}

func (s *ChatService) Messages(ctx context.Context, query domain.ListMessagesQuery) ([]domain.Message, error) {
	return s.router.ListVisible(ctx, query)
}

func (s *ChatService) UpdateMessage(ctx context.Context, cmd domain.UpdateMessageCommand) error {
	if err := s.router.Update(ctx, cmd); err != nil {
		return err
	}
	s.log.Debug("Message updated", "id", cmd.ID, "by", cmd.Requester)
	return nil
}

func (s *ChatService) DeleteMessage(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	if err := s.router.Delete(ctx, cmd); err != nil {
		return err
	}
	s.log.Debug("Message deleted", "id", cmd.ID, "by", cmd.Requester)
	return nil
}
