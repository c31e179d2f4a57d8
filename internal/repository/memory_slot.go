package repository

import (
	"context"
	"slices"
)

// MemoryCartSlot is an in-process CartSlot. FailWrites makes every following
// write fail with the given error until it is called again with nil.
type MemoryCartSlot struct {
	blob     []byte
	found    bool
	writeErr error
	readErr  error
	writes   int
}

func NewMemoryCartSlot() *MemoryCartSlot {
	return &MemoryCartSlot{}
}

// NewMemoryCartSlotWith starts the slot with blob already stored.
func NewMemoryCartSlotWith(blob []byte) *MemoryCartSlot {
	return &MemoryCartSlot{blob: slices.Clone(blob), found: true}
}

func (m *MemoryCartSlot) ReadCartBlob(_ context.Context) ([]byte, bool, error) {
	if m.readErr != nil {
		return nil, false, m.readErr
	}
	return slices.Clone(m.blob), m.found, nil
}

func (m *MemoryCartSlot) WriteCartBlob(_ context.Context, blob []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.blob = slices.Clone(blob)
	m.found = true
	m.writes++
	return nil
}

func (m *MemoryCartSlot) FailWrites(err error) {
	m.writeErr = err
}

func (m *MemoryCartSlot) FailReads(err error) {
	m.readErr = err
}

// Blob returns the last stored blob.
func (m *MemoryCartSlot) Blob() []byte {
	return slices.Clone(m.blob)
}

// Writes counts successful writes.
func (m *MemoryCartSlot) Writes() int {
	return m.writes
}
