package port

import "context"

// CartSlot is the durable key-value slot holding one session's serialized cart.
type CartSlot interface {
	ReadCartBlob(ctx context.Context) (blob []byte, found bool, err error)
	WriteCartBlob(ctx context.Context, blob []byte) error
}
