package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/nikolayk812/eventcart/internal/domain"
	"github.com/nikolayk812/eventcart/internal/port"
)

type memoryCatalog struct {
	events []domain.Event
	byID   map[int64]int
}

// NewMemory serves a fixed, ordered set of events.
func NewMemory(events []domain.Event) (port.Catalog, error) {
	byID := make(map[int64]int, len(events))

	for i, event := range events {
		if _, dup := byID[event.ID]; dup {
			return nil, fmt.Errorf("event[%d] is duplicated", event.ID)
		}
		if event.Stock < 0 {
			return nil, fmt.Errorf("event[%d] stock[%d] is negative", event.ID, event.Stock)
		}
		if event.Price.Amount.IsNegative() {
			return nil, fmt.Errorf("event[%d] price[%s] is negative", event.ID, event.Price.Amount)
		}
		byID[event.ID] = i
	}

	return &memoryCatalog{
		events: slices.Clone(events),
		byID:   byID,
	}, nil
}

func (c *memoryCatalog) GetEvent(_ context.Context, id int64) (domain.Event, error) {
	idx, ok := c.byID[id]
	if !ok {
		return domain.Event{}, fmt.Errorf("event[%d]: %w", id, domain.ErrUnknownEvent)
	}

	return c.events[idx], nil
}

func (c *memoryCatalog) ListEvents(_ context.Context) ([]domain.Event, error) {
	return slices.Clone(c.events), nil
}
