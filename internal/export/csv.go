package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
)

var codeHeader = []string{"code", "state", "batch", "created_at", "redeemed_at"}

// WriteCodesCSV renders codes one per row with RFC 3339 UTC timestamps.
// redeemed_at is empty for unredeemed codes.
func WriteCodesCSV(w io.Writer, codes []domain.Code) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(codeHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range codes {
		redeemedAt := ""
		if c.RedeemedAt != nil {
			redeemedAt = c.RedeemedAt.UTC().Format(time.RFC3339)
		}
		row := []string{c.Value, string(c.State), c.Batch, c.CreatedAt.UTC().Format(time.RFC3339), redeemedAt}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
