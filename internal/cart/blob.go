package cart

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nikolayk812/eventcart/internal/domain"
)

type blobRecord struct {
	ID  int64 `json:"id"`
	Qty int   `json:"qty"`
}

func encodeCart(cart domain.Cart) ([]byte, error) {
	records := make([]blobRecord, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		records = append(records, blobRecord{ID: line.EventID, Qty: line.Quantity})
	}

	blob, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return blob, nil
}

// decodeCart parses the persisted array record by record. A record that does
// not decode is skipped; the returned count tells how many were skipped.
func decodeCart(blob []byte) ([]blobRecord, int, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, 0, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, 0, fmt.Errorf("json.Unmarshal: %w", err)
	}

	var (
		records []blobRecord
		skipped int
	)

	for _, raw := range raws {
		var record blobRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}

	return records, skipped, nil
}
