package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/eventcart/internal/domain"
	"github.com/nikolayk812/eventcart/internal/port"
	"golang.org/x/text/currency"
)

// Store owns one session's cart. It validates every mutation against the
// catalog, writes the result to its slot and only then replaces the cart it
// holds, so a failed write leaves both copies at the previous state.
//
// A Store is not safe for concurrent use; each session gets its own.
type Store struct {
	catalog  port.Catalog
	slot     port.CartSlot
	currency currency.Unit
	logger   *slog.Logger
	now      func() time.Time

	cart domain.Cart
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCurrency sets the currency of totals. Defaults to PEN.
func WithCurrency(unit currency.Unit) Option {
	return func(s *Store) {
		s.currency = unit
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(catalog port.Catalog, slot port.CartSlot, opts ...Option) *Store {
	s := &Store{
		catalog:  catalog,
		slot:     slot,
		currency: domain.PEN,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load replaces the held cart with the persisted one. Missing, unreadable or
// malformed data yields an empty cart. Records are dropped when their
// quantity is not positive, their event is unknown or sold out, or their
// event id repeats; quantities above the current stock are clamped.
func (s *Store) Load(ctx context.Context) domain.Cart {
	s.cart = s.load(ctx)
	return s.cart.Clone()
}

func (s *Store) load(ctx context.Context) domain.Cart {
	blob, found, err := s.slot.ReadCartBlob(ctx)
	if err != nil {
		s.logger.Warn("cart unreadable, starting empty", "error", err)
		return domain.Cart{}
	}
	if !found {
		return domain.Cart{}
	}

	records, skipped, err := decodeCart(blob)
	if err != nil {
		s.logger.Warn("cart malformed, starting empty", "error", err)
		return domain.Cart{}
	}
	if skipped > 0 {
		s.logger.Warn("dropped undecodable cart records", "count", skipped)
	}
	if len(records) == 0 {
		return domain.Cart{}
	}

	events, err := s.catalog.ListEvents(ctx)
	if err != nil {
		s.logger.Warn("catalog unavailable, starting empty", "error", err)
		return domain.Cart{}
	}

	byID := make(map[int64]domain.Event, len(events))
	for _, event := range events {
		byID[event.ID] = event
	}

	var cart domain.Cart
	for _, record := range records {
		event, ok := byID[record.ID]

		switch {
		case record.Qty < 1:
			s.logger.Warn("dropped cart record", "event_id", record.ID, "reason", "non-positive quantity")
			continue
		case !ok:
			s.logger.Warn("dropped cart record", "event_id", record.ID, "reason", "unknown event")
			continue
		case event.Available() < 1:
			s.logger.Warn("dropped cart record", "event_id", record.ID, "reason", "no stock")
			continue
		}

		if _, dup := cart.Find(record.ID); dup {
			s.logger.Warn("dropped cart record", "event_id", record.ID, "reason", "duplicate event")
			continue
		}

		cart.Lines = append(cart.Lines, domain.CartLine{
			EventID:  record.ID,
			Quantity: min(record.Qty, event.Available()),
		})
	}

	return cart
}

// Cart returns a copy of the held cart.
func (s *Store) Cart() domain.Cart {
	return s.cart.Clone()
}

func (s *Store) ItemCount() int {
	return s.cart.ItemCount()
}

// AddItem reserves qty more tickets of an event, appending a line when the
// event is not in the cart yet. Requests that would exceed the stock are
// rejected, never trimmed.
func (s *Store) AddItem(ctx context.Context, eventID int64, qty int) (domain.Cart, error) {
	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("catalog.GetEvent: %w", err)
	}

	if qty < 1 {
		return domain.Cart{}, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, qty)
	}

	next := s.cart.Clone()
	available := event.Available()

	if idx, ok := next.Find(eventID); ok {
		existing := next.Lines[idx].Quantity
		if qty > available-existing {
			return domain.Cart{}, fmt.Errorf("%w: event[%d] has %d in cart, %d requested, %d available",
				domain.ErrInsufficientStock, eventID, existing, qty, available)
		}
		next.Lines[idx].Quantity = existing + qty
	} else {
		if qty > available {
			return domain.Cart{}, fmt.Errorf("%w: event[%d] %d requested, %d available",
				domain.ErrInsufficientStock, eventID, qty, available)
		}
		next.Lines = append(next.Lines, domain.CartLine{EventID: eventID, Quantity: qty})
	}

	if err := s.commit(ctx, next); err != nil {
		return domain.Cart{}, err
	}

	s.logger.Debug("cart item added", "event_id", eventID, "quantity", qty)

	return s.cart.Clone(), nil
}

// SetQuantity overwrites the quantity of an existing line, clamping qty into
// [1, stock] instead of rejecting it. An event without a line is ignored.
func (s *Store) SetQuantity(ctx context.Context, eventID int64, qty int) (domain.Cart, error) {
	idx, ok := s.cart.Find(eventID)
	if !ok {
		return s.cart.Clone(), nil
	}

	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("catalog.GetEvent: %w", err)
	}

	available := event.Available()
	if available < 1 {
		return domain.Cart{}, fmt.Errorf("%w: event[%d] has no stock left", domain.ErrInsufficientStock, eventID)
	}

	clamped := min(max(qty, 1), available)
	if clamped == s.cart.Lines[idx].Quantity {
		return s.cart.Clone(), nil
	}

	next := s.cart.Clone()
	next.Lines[idx].Quantity = clamped

	if err := s.commit(ctx, next); err != nil {
		return domain.Cart{}, err
	}

	s.logger.Debug("cart quantity set", "event_id", eventID, "requested", qty, "quantity", clamped)

	return s.cart.Clone(), nil
}

// RemoveItem drops the line for eventID. Removing an absent line is a no-op.
func (s *Store) RemoveItem(ctx context.Context, eventID int64) (domain.Cart, error) {
	idx, ok := s.cart.Find(eventID)
	if !ok {
		return s.cart.Clone(), nil
	}

	next := s.cart.Clone()
	next.Lines = append(next.Lines[:idx], next.Lines[idx+1:]...)

	if err := s.commit(ctx, next); err != nil {
		return domain.Cart{}, err
	}

	s.logger.Debug("cart item removed", "event_id", eventID)

	return s.cart.Clone(), nil
}

// Summary prices every line with the current catalog. Lines whose event no
// longer resolves are left out of the summary but stay in the cart.
func (s *Store) Summary(ctx context.Context) (domain.Summary, error) {
	lines, total, err := s.price(ctx, s.cart)
	if err != nil {
		return domain.Summary{}, err
	}

	return domain.Summary{
		Lines:     lines,
		Total:     total,
		ItemCount: s.cart.ItemCount(),
	}, nil
}

// Checkout issues a receipt for the cart and empties it. Nothing is charged.
// When the empty cart cannot be written no receipt is issued and the cart is
// kept as it was.
func (s *Store) Checkout(ctx context.Context) (domain.Receipt, error) {
	lines, total, err := s.price(ctx, s.cart)
	if err != nil {
		return domain.Receipt{}, err
	}

	if err := s.commit(ctx, domain.Cart{}); err != nil {
		return domain.Receipt{}, err
	}

	receipt := domain.Receipt{
		ID:         uuid.New(),
		Lines:      lines,
		Total:      total,
		CapturedAt: s.now(),
	}

	s.logger.Info("checkout completed", "receipt_id", receipt.ID, "total", receipt.Total.String(), "lines", len(lines))

	return receipt, nil
}

func (s *Store) price(ctx context.Context, cart domain.Cart) ([]domain.SummaryLine, domain.Money, error) {
	total := domain.ZeroMoney(s.currency)
	lines := make([]domain.SummaryLine, 0, len(cart.Lines))

	for _, line := range cart.Lines {
		event, err := s.catalog.GetEvent(ctx, line.EventID)
		if errors.Is(err, domain.ErrUnknownEvent) {
			s.logger.Warn("cart line skipped", "event_id", line.EventID, "reason", "unknown event")
			continue
		}
		if err != nil {
			return nil, domain.Money{}, fmt.Errorf("catalog.GetEvent: %w", err)
		}

		if !event.Price.SameCurrency(total) {
			return nil, domain.Money{}, fmt.Errorf("%w: event[%d] is priced in %s, cart totals in %s",
				domain.ErrCurrencyMismatch, event.ID, event.Price.Currency, total.Currency)
		}

		event.Artists = slices.Clone(event.Artists)
		event.Images = slices.Clone(event.Images)

		subtotal := event.Price.Times(line.Quantity)
		total = total.Plus(subtotal)

		lines = append(lines, domain.SummaryLine{
			Event:    event,
			Quantity: line.Quantity,
			Subtotal: subtotal,
		})
	}

	return lines, total, nil
}

func (s *Store) commit(ctx context.Context, next domain.Cart) error {
	blob, err := encodeCart(next)
	if err != nil {
		return fmt.Errorf("%w: encodeCart: %w", domain.ErrPersistence, err)
	}

	if err := s.slot.WriteCartBlob(ctx, blob); err != nil {
		return fmt.Errorf("%w: slot.WriteCartBlob: %w", domain.ErrPersistence, err)
	}

	s.cart = next

	return nil
}
