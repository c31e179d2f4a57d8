package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nikolayk812/eventcart/internal/domain"
	"github.com/nikolayk812/eventcart/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type jsonEvent struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	Venue      string          `json:"venue"`
	City       string          `json:"city"`
	DateTime   string          `json:"date_time"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	SaleStatus string          `json:"sale_status"`
	Images     []string        `json:"images"`
	Artists    []string        `json:"artists"`
	Policies   string          `json:"policies"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// LoadFile reads an events.json document. Prices are in unit.
func LoadFile(path string, unit currency.Unit) (port.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	events, err := Decode(f, unit)
	if err != nil {
		return nil, fmt.Errorf("Decode[%s]: %w", path, err)
	}

	return NewMemory(events)
}

// Decode parses the events.json array, keeping document order.
func Decode(r io.Reader, unit currency.Unit) ([]domain.Event, error) {
	var raw []jsonEvent
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	events := make([]domain.Event, 0, len(raw))
	for _, je := range raw {
		event, err := mapJSONEventToDomain(je, unit)
		if err != nil {
			return nil, fmt.Errorf("mapJSONEventToDomain: %w", err)
		}
		events = append(events, event)
	}

	return events, nil
}

func mapJSONEventToDomain(je jsonEvent, unit currency.Unit) (domain.Event, error) {
	startsAt, err := parseDateTime(je.DateTime)
	if err != nil {
		return domain.Event{}, fmt.Errorf("event[%d] date_time[%s] is not valid: %w", je.ID, je.DateTime, err)
	}

	return domain.Event{
		ID:         je.ID,
		Title:      je.Title,
		Category:   je.Category,
		Venue:      je.Venue,
		City:       je.City,
		StartsAt:   startsAt,
		Price:      domain.Money{Amount: je.Price, Currency: unit},
		Stock:      je.Stock,
		SaleStatus: domain.SaleStatus(je.SaleStatus),
		Artists:    je.Artists,
		Images:     je.Images,
		Policies:   je.Policies,
	}, nil
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}
