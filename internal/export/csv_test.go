package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
)

func TestWriteCodesCSV(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	redeemed := time.Date(2024, 1, 2, 11, 30, 0, 0, time.FixedZone("x", 3600))
	codes := []domain.Code{
		{Value: "A1", State: domain.CodeStateRedeemed, Batch: "2024-01-01", CreatedAt: created, RedeemedAt: &redeemed},
		{Value: "A2", State: domain.CodeStateUnredeemed, Batch: "2024-01-01", CreatedAt: created},
	}
	var buf bytes.Buffer
	if err := WriteCodesCSV(&buf, codes); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := [][]string{
		{"code", "state", "batch", "created_at", "redeemed_at"},
		{"A1", "redeemed", "2024-01-01", "2024-01-01T10:00:00Z", "2024-01-02T10:30:00Z"},
		{"A2", "unredeemed", "2024-01-01", "2024-01-01T10:00:00Z", ""},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(rows), rows)
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Fatalf("row %d col %d: got %q want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestWriteCodesCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCodesCSV(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "code,state,batch,created_at,redeemed_at\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
