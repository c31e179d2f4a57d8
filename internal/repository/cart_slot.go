package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/eventcart/internal/port"
)

type cartSlot struct {
	q       querier
	ownerID string
}

// NewCartSlot stores ownerID's cart blob as a row of cart_blobs.
func NewCartSlot(pool *pgxpool.Pool, ownerID string) port.CartSlot {
	return &cartSlot{
		q:       pool,
		ownerID: ownerID,
	}
}

func NewCartSlotWithTx(tx pgx.Tx, ownerID string) port.CartSlot {
	return &cartSlot{
		q:       tx,
		ownerID: ownerID,
	}
}

func (r *cartSlot) ReadCartBlob(ctx context.Context) ([]byte, bool, error) {
	if r.ownerID == "" {
		return nil, false, fmt.Errorf("ownerID is empty")
	}

	var blob []byte
	err := r.q.QueryRow(ctx,
		`SELECT blob::text FROM cart_blobs WHERE owner_id = $1`,
		r.ownerID,
	).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("q.QueryRow: %w", err)
	}

	return blob, true, nil
}

func (r *cartSlot) WriteCartBlob(ctx context.Context, blob []byte) error {
	if r.ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	_, err := r.q.Exec(ctx,
		`INSERT INTO cart_blobs (owner_id, blob, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (owner_id) DO UPDATE SET blob = EXCLUDED.blob, updated_at = EXCLUDED.updated_at`,
		r.ownerID, string(blob),
	)
	if err != nil {
		return fmt.Errorf("q.Exec: %w", err)
	}

	return nil
}
