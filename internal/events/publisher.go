// Package events publishes LocationChangedEvent notifications to a message
// broker so other services can react to a session's city changing.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

// Publisher delivers location change events. Implementations must be safe
// for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev types.LocationChangedEvent) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) Publish(context.Context, types.LocationChangedEvent) error {
	return nil
}

func (Noop) Close() error {
	return nil
}

func encode(ev types.LocationChangedEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("serialize location event: %w", err)
	}
	return data, nil
}

func eventHeaders(ev types.LocationChangedEvent) map[string]string {
	return map[string]string{
		"event_type":  "locality.changed",
		"source":      string(ev.Source),
		"city_id":     ev.City.ID,
		"occurred_at": ev.OccurredAt.UTC().Format(time.RFC3339),
	}
}
