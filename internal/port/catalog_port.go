package port

import (
	"context"

	"github.com/nikolayk812/eventcart/internal/domain"
)

// Catalog is the read-only source of purchasable events.
// GetEvent returns an error wrapping domain.ErrUnknownEvent for an id it does not know.
type Catalog interface {
	GetEvent(ctx context.Context, id int64) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}
