package domain

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	Lines []CartLine
}

type CartLine struct {
	EventID  int64
	Quantity int
}

// Find returns the index of the line for eventID.
func (c Cart) Find(eventID int64) (int, bool) {
	for i, line := range c.Lines {
		if line.EventID == eventID {
			return i, true
		}
	}
	return -1, false
}

func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount is the total number of tickets across all lines.
func (c Cart) ItemCount() int {
	var total int
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

type SummaryLine struct {
	Event    Event
	Quantity int
	Subtotal Money
}

type Summary struct {
	Lines     []SummaryLine
	Total     Money
	ItemCount int
}

// Receipt is the snapshot taken at checkout. It shares no memory with the
// cart or the catalog it was computed from.
type Receipt struct {
	ID         uuid.UUID
	Lines      []SummaryLine
	Total      Money
	CapturedAt time.Time
}
