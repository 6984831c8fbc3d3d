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
	"presence-chat/repositories"
)

// Registry tracks who is currently present in the chat room.
// Every read and write goes to the participant store, which enforces uniqueness.
type Registry struct {
	log              *slog.Logger
	participants     repositories.IParticipantRepository
	messages         repositories.IMessageRepository
	publisher        contract.IPublisher
	broadcastLiteral string
	now              func() time.Time
}

var _ contract.IPresence = (*Registry)(nil)

func NewRegistry(log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	publisher contract.IPublisher, broadcastLiteral string) *Registry {
	return &Registry{
		log:              log,
		participants:     participants,
		messages:         messages,
		publisher:        publisher,
		broadcastLiteral: broadcastLiteral,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source, tests use it to drive staleness.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Join registers a new participant and announces it with a "joined" status message.
func (r *Registry) Join(ctx context.Context, name string) (domain.Participant, error) {
	if err := domain.ValidateName(name, r.broadcastLiteral); err != nil {
		return domain.Participant{}, err
	}
	at := r.now()
	participant := domain.NewParticipant(name, at)
	if err := r.participants.Insert(ctx, participant); err != nil {
		return domain.Participant{}, err
	}

	if _, err := r.messages.Insert(ctx, domain.NewStatusMessage(name, domain.StatusJoined, at)); err != nil {
		r.log.Error("Unable to record joined status, rolling back join", "name", name, "error", err)
		r.rollback(ctx, name, at)
		return domain.Participant{}, err
	}
	r.publisher.Publish(event.ParticipantJoined{Participant: name, At: at})
	r.log.Debug("Participant joined", "name", name)
	return participant, nil
}

// Refresh records a liveness signal. An unknown name is never created.
func (r *Registry) Refresh(ctx context.Context, name string) error {
	at := r.now()
	err := r.participants.Touch(ctx, name, at)
	if stderrors.Is(err, errors.ErrNotFound) {
		return stderrors.Join(errors.ErrUnknownParticipant, err)
	}
	return err
}

// IsPresent asks the store directly since the answer authorizes an operation.
func (r *Registry) IsPresent(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	_, err := r.participants.Find(ctx, name)
	if stderrors.Is(err, errors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns a snapshot of current participants.
func (r *Registry) List(ctx context.Context) ([]domain.Participant, error) {
	return r.participants.List(ctx)
}

func (r *Registry) Stale(ctx context.Context, cutoff time.Time) ([]domain.Participant, error) {
	return r.participants.FindStale(ctx, cutoff)
}

// Evict removes the participant if it is still stale and appends a "left" status message.
// It reports false when the participant was refreshed or already gone.
func (r *Registry) Evict(ctx context.Context, name string, cutoff time.Time) (bool, error) {
	deleted, err := r.participants.DeleteIfStale(ctx, name, cutoff)
	if err != nil {
		return false, fmt.Errorf("evict %s: %w", name, err)
	}
	if !deleted {
		return false, nil
	}

	at := r.now()
	if _, err := r.messages.Insert(ctx, domain.NewStatusMessage(name, domain.StatusLeft, at)); err != nil {
		return true, fmt.Errorf("record left status of %s: %w", name, err)
	}
	r.publisher.Publish(event.ParticipantLeft{Participant: name, Cutoff: cutoff, At: at})
	return true, nil
}

// rollback removes a participant whose join could not be completed.
// Only an entry not refreshed since the join is removed. The cutoff is one
// millisecond past the join since Redis keeps last seen at that precision.
func (r *Registry) rollback(ctx context.Context, name string, joinedAt time.Time) {
	if _, err := r.participants.DeleteIfStale(ctx, name, joinedAt.Add(time.Millisecond)); err != nil {
		r.log.Error("Unable to roll back join", "name", name, "error", err)
	}
}
