package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/eventcart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const selectEvents = `SELECT id, title, category, venue, city, starts_at, price::text, stock,
       sale_status, artists, images, policies
FROM events`

type EventCatalog struct {
	q        querier
	pool     *pgxpool.Pool
	currency currency.Unit
}

// NewEventCatalog reads events from the events table. Prices are stored
// without a currency and are all in unit.
func NewEventCatalog(pool *pgxpool.Pool, unit currency.Unit) *EventCatalog {
	return &EventCatalog{
		q:        pool,
		pool:     pool,
		currency: unit,
	}
}

func (r *EventCatalog) GetEvent(ctx context.Context, id int64) (domain.Event, error) {
	row := r.q.QueryRow(ctx, selectEvents+` WHERE id = $1`, id)

	event, err := r.scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Event{}, fmt.Errorf("event[%d]: %w", id, domain.ErrUnknownEvent)
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("scanEvent: %w", err)
	}

	return event, nil
}

func (r *EventCatalog) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.q.Query(ctx, selectEvents+` ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("q.Query: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanEvent: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return events, nil
}

// ReplaceEvents swaps the whole catalog for events in one transaction,
// keeping their order.
func (r *EventCatalog) ReplaceEvents(ctx context.Context, events []domain.Event) (int, error) {
	return withTx(ctx, r.pool, r.q, func(q querier) (int, error) {
		if _, err := q.Exec(ctx, `DELETE FROM events`); err != nil {
			return 0, fmt.Errorf("q.Exec: %w", err)
		}

		for i, event := range events {
			if err := insertEvent(ctx, q, i, event); err != nil {
				return 0, fmt.Errorf("insertEvent[%d]: %w", event.ID, err)
			}
		}

		return len(events), nil
	})
}

func insertEvent(ctx context.Context, q querier, position int, event domain.Event) error {
	var startsAt *time.Time
	if !event.StartsAt.IsZero() {
		startsAt = &event.StartsAt
	}

	_, err := q.Exec(ctx,
		`INSERT INTO events (id, position, title, category, venue, city, starts_at, price, stock,
		                     sale_status, artists, images, policies)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11, $12, $13)`,
		event.ID, position, event.Title, event.Category, event.Venue, event.City, startsAt,
		event.Price.Amount.String(), event.Stock, string(event.SaleStatus),
		nonNil(event.Artists), nonNil(event.Images), event.Policies,
	)
	if err != nil {
		return fmt.Errorf("q.Exec: %w", err)
	}

	return nil
}

func (r *EventCatalog) scanEvent(row pgx.Row) (domain.Event, error) {
	var (
		event      domain.Event
		startsAt   *time.Time
		price      string
		saleStatus string
	)

	err := row.Scan(&event.ID, &event.Title, &event.Category, &event.Venue, &event.City, &startsAt,
		&price, &event.Stock, &saleStatus, &event.Artists, &event.Images, &event.Policies)
	if err != nil {
		return domain.Event{}, err
	}

	amount, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Event{}, fmt.Errorf("price[%s] is not valid: %w", price, err)
	}

	if startsAt != nil {
		event.StartsAt = *startsAt
	}
	event.Price = domain.Money{Amount: amount, Currency: r.currency}
	event.SaleStatus = domain.SaleStatus(saleStatus)

	return event, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
