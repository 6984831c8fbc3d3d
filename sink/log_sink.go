package sink

import (
	"context"
	"log/slog"

	"presence-chat/domain/event"
)

// LogSink writes an audit line for every domain event.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Consume(ctx context.Context, e event.DomainEvent) error {
	attrs := []any{"event", e.Name(), "at", e.OccurredAt()}
	switch evt := e.(type) {
	case event.ParticipantJoined:
		attrs = append(attrs, "participant", evt.Participant)
	case event.ParticipantLeft:
		attrs = append(attrs, "participant", evt.Participant, "cutoff", evt.Cutoff)
	case event.MessagePosted:
		attrs = append(attrs, "id", evt.ID, "from", evt.From, "to", evt.To, "kind", evt.Kind)
		if evt.Lang != "" {
			attrs = append(attrs, "lang", evt.Lang)
		}
		if len(evt.CensoredWords) > 0 {
			attrs = append(attrs, "censored", len(evt.CensoredWords))
		}
	case event.MessageEdited:
		attrs = append(attrs, "id", evt.ID, "by", evt.By, "to", evt.To, "kind", evt.Kind)
	case event.MessageRemoved:
		attrs = append(attrs, "id", evt.ID, "by", evt.By)
	}
	s.log.InfoContext(ctx, "Domain event", attrs...)
	return nil
}
