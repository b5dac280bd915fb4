package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bargaj/collectcall/internal/domain"
)

func newTestDirectory(t *testing.T) *SQLiteDirectory {
	t.Helper()
	dir, err := NewSQLite(filepath.Join(t.TempDir(), "borrowers.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := dir.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return dir
}

func seedBorrower(t *testing.T, d *SQLiteDirectory, phone string) {
	t.Helper()
	err := d.Upsert(context.Background(), &domain.BorrowerRecord{
		PhoneNumber:   phone,
		Name:          "Ravi Kumar",
		LoanAmount:    "20000",
		PendingAmount: "4500",
		LastDueDate:   "2026-08-15",
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
}

func TestLookup(t *testing.T) {
	d := newTestDirectory(t)
	seedBorrower(t, d, "+915550001111")

	rec, err := d.Lookup(context.Background(), "+915550001111")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if rec.Name != "Ravi Kumar" || rec.PendingAmount != "4500" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if len(rec.Fields) != 0 {
		t.Errorf("fresh record has disposition fields: %v", rec.Fields)
	}
}

func TestLookupNotFound(t *testing.T) {
	d := newTestDirectory(t)
	if _, err := d.Lookup(context.Background(), "+910000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup missing = %v, want ErrNotFound", err)
	}
}

func TestMergeUpdateAddsColumns(t *testing.T) {
	d := newTestDirectory(t)
	seedBorrower(t, d, "+915550001111")

	err := d.MergeUpdate(context.Background(), "+915550001111",
		map[string]string{"responded": "No"})
	if err != nil {
		t.Fatalf("MergeUpdate failed: %v", err)
	}

	rec, err := d.Lookup(context.Background(), "+915550001111")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Field("responded") != "No" {
		t.Errorf("responded = %q, want No", rec.Field("responded"))
	}
}

// Merge law: two merges touching different fields both survive, and the
// fixed fields stay untouched.
func TestMergeUpdateAccumulates(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()
	seedBorrower(t, d, "+915550001111")

	if err := d.MergeUpdate(ctx, "+915550001111", map[string]string{"took_loan": "Yes"}); err != nil {
		t.Fatal(err)
	}
	if err := d.MergeUpdate(ctx, "+915550001111", map[string]string{
		"reason":    "No money",
		"responded": "Yes",
	}); err != nil {
		t.Fatal(err)
	}

	rec, err := d.Lookup(ctx, "+915550001111")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Field("took_loan") != "Yes" || rec.Field("reason") != "No money" || rec.Field("responded") != "Yes" {
		t.Errorf("merged fields = %v", rec.Fields)
	}
	if rec.Name != "Ravi Kumar" || rec.LoanAmount != "20000" {
		t.Errorf("fixed fields changed: %+v", rec)
	}
}

func TestMergeUpdateOverwrites(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()
	seedBorrower(t, d, "+915550001111")

	if err := d.MergeUpdate(ctx, "+915550001111", map[string]string{"reason": "Forgot"}); err != nil {
		t.Fatal(err)
	}
	if err := d.MergeUpdate(ctx, "+915550001111", map[string]string{"reason": "Will pay soon"}); err != nil {
		t.Fatal(err)
	}

	rec, _ := d.Lookup(ctx, "+915550001111")
	if rec.Field("reason") != "Will pay soon" {
		t.Errorf("reason = %q after overwrite", rec.Field("reason"))
	}
}

func TestMergeUpdateLeavesOtherRecordsAlone(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()
	seedBorrower(t, d, "+915550001111")
	seedBorrower(t, d, "+915550002222")

	if err := d.MergeUpdate(ctx, "+915550001111", map[string]string{"responded": "Yes"}); err != nil {
		t.Fatal(err)
	}

	other, err := d.Lookup(ctx, "+915550002222")
	if err != nil {
		t.Fatal(err)
	}
	// The column now exists table-wide but reads as absent for the
	// untouched record.
	if got := other.Field("responded"); got != "" {
		t.Errorf("untouched record responded = %q, want empty", got)
	}
}

func TestMergeUpdateUnknownPhone(t *testing.T) {
	d := newTestDirectory(t)
	err := d.MergeUpdate(context.Background(), "+910000000000",
		map[string]string{"responded": "Yes"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("MergeUpdate missing = %v, want ErrNotFound", err)
	}
}

func TestMergeUpdateRejectsBadFieldNames(t *testing.T) {
	d := newTestDirectory(t)
	seedBorrower(t, d, "+915550001111")

	for _, name := range []string{`x"; DROP TABLE borrowers; --`, "Phone Number", "", "phone_number"} {
		err := d.MergeUpdate(context.Background(), "+915550001111",
			map[string]string{name: "v"})
		if err == nil {
			t.Errorf("MergeUpdate accepted field name %q", name)
		}
	}
}

func TestColumnsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "borrowers.db")
	ctx := context.Background()

	d, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	seedBorrower(t, d, "+915550001111")
	if err := d.MergeUpdate(ctx, "+915550001111", map[string]string{"responded": "Yes"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	rec, err := reopened.Lookup(ctx, "+915550001111")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Field("responded") != "Yes" {
		t.Errorf("responded lost across reopen: %v", rec.Fields)
	}
	// And merging into the existing dynamic column still works.
	if err := reopened.MergeUpdate(ctx, "+915550001111", map[string]string{"responded": "No"}); err != nil {
		t.Errorf("merge after reopen failed: %v", err)
	}
}

func TestImportCSV(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"phone_number,name,loan_amount,pending_amount,last_due_date",
		"+915550001111,Asha,15000,2000,2026-07-01",
		"+915550002222,Ravi,30000,12000,2026-08-10",
	}, "\n")

	n, err := d.ImportCSV(ctx, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d rows, want 2", n)
	}

	rec, err := d.Lookup(ctx, "+915550002222")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Name != "Ravi" || rec.PendingAmount != "12000" {
		t.Errorf("imported record = %+v", rec)
	}

	all, err := d.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("List returned %d records, want 2", len(all))
	}
}

func TestImportCSVMissingHeader(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.ImportCSV(context.Background(),
		strings.NewReader("phone_number,name\n+915550001111,Asha"))
	if err == nil {
		t.Error("expected error for incomplete header")
	}
}
