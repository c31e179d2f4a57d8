package repository_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/eventcart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func (suite *postgresSuite) TestReplaceAndListEvents() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	events := []domain.Event{randomEvent(30), randomEvent(10), randomEvent(20)}
	events[1].SaleStatus = domain.SaleStatusSoldOut
	events[2].StartsAt = time.Time{}
	events[2].Artists = nil

	n, err := suite.catalog.ReplaceEvents(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := suite.catalog.ListEvents(ctx)
	require.NoError(t, err)
	assertEvents(t, events, got)

	// replacing swaps the whole catalog
	next := []domain.Event{randomEvent(40)}
	_, err = suite.catalog.ReplaceEvents(ctx, next)
	require.NoError(t, err)

	got, err = suite.catalog.ListEvents(ctx)
	require.NoError(t, err)
	assertEvents(t, next, got)
}

func (suite *postgresSuite) TestReplaceEventsRollsBack() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	events := []domain.Event{randomEvent(1), randomEvent(2)}
	_, err := suite.catalog.ReplaceEvents(ctx, events)
	require.NoError(t, err)

	_, err = suite.catalog.ReplaceEvents(ctx, []domain.Event{randomEvent(5), randomEvent(5)})
	require.Error(t, err)

	got, err := suite.catalog.ListEvents(ctx)
	require.NoError(t, err)
	assertEvents(t, events, got)
}

func (suite *postgresSuite) TestGetEvent() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	event := randomEvent(7)
	_, err := suite.catalog.ReplaceEvents(ctx, []domain.Event{event})
	require.NoError(t, err)

	got, err := suite.catalog.GetEvent(ctx, 7)
	require.NoError(t, err)
	assertEvents(t, []domain.Event{event}, []domain.Event{got})

	_, err = suite.catalog.GetEvent(ctx, 8)
	require.ErrorIs(t, err, domain.ErrUnknownEvent)
}

func randomEvent(id int64) domain.Event {
	return domain.Event{
		ID:         id,
		Title:      gofakeit.MovieName(),
		Category:   gofakeit.MovieGenre(),
		Venue:      gofakeit.Company(),
		City:       gofakeit.City(),
		StartsAt:   gofakeit.FutureDate().UTC().Truncate(time.Second),
		Price:      domain.Money{Amount: decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2), Currency: domain.PEN},
		Stock:      gofakeit.IntRange(0, 500),
		SaleStatus: domain.SaleStatusAvailable,
		Artists:    []string{gofakeit.Name(), gofakeit.Name()},
		Images:     []string{gofakeit.Word() + ".jpg"},
		Policies:   gofakeit.Word(),
	}
}

func assertEvents(t *testing.T, expected, actual []domain.Event) {
	t.Helper()

	opts := cmp.Options{
		cmp.Comparer(func(x, y currency.Unit) bool {
			return x.String() == y.String()
		}),
		cmp.Comparer(func(x, y decimal.Decimal) bool {
			return x.Equal(y)
		}),
		cmp.Comparer(func(x, y time.Time) bool {
			return x.Equal(y)
		}),
		cmpopts.EquateEmpty(),
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)
}
