package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/bargaj/collectcall/internal/domain"
)

// ImportCSV loads borrower rows from CSV. The header row must include the
// fixed columns; unknown columns are ignored. Returns the number of rows
// upserted.
func (d *SQLiteDirectory) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for name := range fixedColumns {
		if _, ok := idx[name]; !ok {
			return 0, fmt.Errorf("csv header missing column %q", name)
		}
	}

	count := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read csv row: %w", err)
		}

		rec := &domain.BorrowerRecord{
			PhoneNumber:   row[idx["phone_number"]],
			Name:          row[idx["name"]],
			LoanAmount:    row[idx["loan_amount"]],
			PendingAmount: row[idx["pending_amount"]],
			LastDueDate:   row[idx["last_due_date"]],
		}
		if rec.PhoneNumber == "" {
			return count, fmt.Errorf("csv row %d: empty phone_number", count+2)
		}
		if err := d.Upsert(ctx, rec); err != nil {
			return count, fmt.Errorf("import row for %s: %w", rec.PhoneNumber, err)
		}
		count++
	}
	return count, nil
}
