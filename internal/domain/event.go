package domain

import (
	"strings"
	"time"
)

type SaleStatus string

const (
	SaleStatusAvailable SaleStatus = "disponible"
	SaleStatusSoldOut   SaleStatus = "agotado"
)

type Event struct {
	ID         int64
	Title      string
	Category   string
	Venue      string
	City       string
	StartsAt   time.Time
	Price      Money
	Stock      int
	SaleStatus SaleStatus
	Artists    []string
	Images     []string
	Policies   string
}

// SoldOut reports whether the catalog marks the event as no longer on sale,
// regardless of its stock figure.
func (e Event) SoldOut() bool {
	switch strings.ToLower(strings.TrimSpace(string(e.SaleStatus))) {
	case string(SaleStatusSoldOut), "sold_out", "sold out":
		return true
	}
	return false
}

// Available is the maximum quantity a cart may reserve for the event.
func (e Event) Available() int {
	if e.SoldOut() || e.Stock < 0 {
		return 0
	}
	return e.Stock
}
