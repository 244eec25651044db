package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/seedora/registry"
	"github.com/seedora/registry/internal/domain"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event registry.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime streams confirmed registration events to output until ctx ends.
// Owner filters arrive on input; an empty filter set means everything.
// Shutdown happens through ctx only; the channels stay open so in-flight
// sends never race a close.
func (s *SignalService) Realtime(ctx context.Context, input chan []string, output chan registry.Event) {
	sub := s.rdb.Subscribe(ctx, domain.EventChannel)
	defer sub.Close()

	s.stream(ctx, sub.Channel(), input, output)
}

func (s *SignalService) stream(ctx context.Context, ch <-chan *redis.Message, input chan []string, output chan registry.Event) {
	var filters []string
	for {
		select {
		case <-ctx.Done():
			return
		case fs, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			filters = fs
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event registry.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "Error decoding event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}

			if !ownerMatches(filters, event.Owner) {
				continue
			}

			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

func ownerMatches(filters []string, owner string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f == owner {
			return true
		}
	}
	return false
}
