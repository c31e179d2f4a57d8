package cart_test

import (
	"errors"
	"testing"

	"github.com/nikolayk812/eventcart/internal/cart"
	"github.com/nikolayk812/eventcart/internal/domain"
	"github.com/nikolayk812/eventcart/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		blob      *string
		readErr   error
		wantLines []domain.CartLine
	}{
		{
			name: "nothing persisted: empty",
		},
		{
			name:    "unreadable slot: empty",
			readErr: errors.New("connection refused"),
		},
		{
			name: "not json: empty",
			blob: ptr(`{not json`),
		},
		{
			name: "json object instead of array: empty",
			blob: ptr(`{"id":1,"qty":2}`),
		},
		{
			name: "json null: empty",
			blob: ptr(`null`),
		},
		{
			name: "blank: empty",
			blob: ptr("  \n"),
		},
		{
			name:      "negative qty and unknown event dropped: ok",
			blob:      ptr(`[{"id":1,"qty":-3},{"id":2,"qty":2}]`),
			wantLines: []domain.CartLine{{EventID: 2, Quantity: 2}},
		},
		{
			name:      "zero qty and missing qty dropped: ok",
			blob:      ptr(`[{"id":2,"qty":0},{"id":5},{"id":5,"qty":1}]`),
			wantLines: []domain.CartLine{{EventID: 5, Quantity: 1}},
		},
		{
			name:      "extra fields ignored: ok",
			blob:      ptr(`[{"id":2,"qty":3,"title":"jazz","price":50,"seat":{"row":"A"}}]`),
			wantLines: []domain.CartLine{{EventID: 2, Quantity: 3}},
		},
		{
			name:      "undecodable record dropped, rest kept: ok",
			blob:      ptr(`[{"id":"two","qty":1},{"id":2,"qty":1.5},null,{"id":5,"qty":4}]`),
			wantLines: []domain.CartLine{{EventID: 5, Quantity: 4}},
		},
		{
			name:      "quantity above stock clamped: ok",
			blob:      ptr(`[{"id":2,"qty":40}]`),
			wantLines: []domain.CartLine{{EventID: 2, Quantity: 10}},
		},
		{
			name:      "duplicate event keeps first record: ok",
			blob:      ptr(`[{"id":2,"qty":1},{"id":5,"qty":2},{"id":2,"qty":4}]`),
			wantLines: []domain.CartLine{{EventID: 2, Quantity: 1}, {EventID: 5, Quantity: 2}},
		},
		{
			name:      "sold out and zero stock events dropped: ok",
			blob:      ptr(`[{"id":3,"qty":1},{"id":4,"qty":1},{"id":5,"qty":1}]`),
			wantLines: []domain.CartLine{{EventID: 5, Quantity: 1}},
		},
		{
			name:      "order preserved: ok",
			blob:      ptr(`[{"id":5,"qty":1},{"id":2,"qty":2}]`),
			wantLines: []domain.CartLine{{EventID: 5, Quantity: 1}, {EventID: 2, Quantity: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()

			events := newHidingCatalog(t,
				newEvent(2, 10, 50),
				soldOutEvent(3, 10),
				newEvent(4, 0, 10),
				newEvent(5, 4, 25),
			)

			slot := repository.NewMemoryCartSlot()
			if tt.blob != nil {
				slot = repository.NewMemoryCartSlotWith([]byte(*tt.blob))
			}
			slot.FailReads(tt.readErr)

			store := cart.NewStore(events, slot)

			got := store.Load(ctx)
			assertLines(t, tt.wantLines, got.Lines)
			assertLines(t, tt.wantLines, store.Cart().Lines)

			assert.Zero(t, slot.Writes(), "load must not write")
		})
	}
}

func TestLoadCatalogUnavailable(t *testing.T) {
	events := newHidingCatalog(t, newEvent(2, 10, 50))
	events.fail = errors.New("catalog offline")

	store := cart.NewStore(events, repository.NewMemoryCartSlotWith([]byte(`[{"id":2,"qty":1}]`)))

	got := store.Load(t.Context())
	assert.True(t, got.IsEmpty())
}

func TestLoadThenMutate(t *testing.T) {
	ctx := t.Context()

	events := newHidingCatalog(t, newEvent(2, 10, 50))
	slot := repository.NewMemoryCartSlotWith([]byte(`[{"id":2,"qty":1,"legacy":true}]`))

	store := cart.NewStore(events, slot)
	store.Load(ctx)

	_, err := store.AddItem(ctx, 2, 2)
	require.NoError(t, err)

	assert.JSONEq(t, `[{"id":2,"qty":3}]`, string(slot.Blob()))
	assert.Equal(t, 3, store.ItemCount())
}

func ptr[T any](v T) *T {
	return &v
}
