package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/bargaj/collectcall/internal/domain"
	_ "modernc.org/sqlite"
)

// Fixed columns of the borrowers table. Disposition columns (responded,
// took_loan, reason, ...) are added lazily the first time a call writes
// them, and from then on every record exposes them (NULL reads as absent).
var fixedColumns = map[string]struct{}{
	"phone_number":   {},
	"name":           {},
	"loan_amount":    {},
	"pending_amount": {},
	"last_due_date":  {},
}

// Disposition column names are caller-controlled only in the sense that the
// engine picks them from a fixed answer-key set, but the DDL path still
// refuses anything that is not a plain lowercase identifier.
var columnNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// SQLiteDirectory implements Directory using SQLite.
type SQLiteDirectory struct {
	db *sql.DB

	// columnMu guards the dynamic column cache and serializes ALTER TABLE
	// against concurrent merge writers.
	columnMu sync.Mutex
	columns  map[string]struct{}
}

// NewSQLite creates a new SQLite-backed borrower directory.
func NewSQLite(dbPath string) (*SQLiteDirectory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency between webhook handlers.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	dir := &SQLiteDirectory{db: db}
	if err := dir.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if err := dir.loadColumns(); err != nil {
		return nil, fmt.Errorf("load column set: %w", err)
	}

	return dir, nil
}

func (d *SQLiteDirectory) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS borrowers (
		phone_number TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		loan_amount TEXT NOT NULL DEFAULT '',
		pending_amount TEXT NOT NULL DEFAULT '',
		last_due_date TEXT NOT NULL DEFAULT ''
	);
	`
	if _, err := d.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// loadColumns refreshes the cached column set from the live schema, picking
// up disposition columns introduced by earlier runs.
func (d *SQLiteDirectory) loadColumns() error {
	rows, err := d.db.Query(`PRAGMA table_info(borrowers)`)
	if err != nil {
		return fmt.Errorf("table_info: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &primaryKey); err != nil {
			return fmt.Errorf("scan table_info row: %w", err)
		}
		cols[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table_info: %w", err)
	}

	d.columnMu.Lock()
	d.columns = cols
	d.columnMu.Unlock()
	return nil
}

// Ping verifies database connectivity.
func (d *SQLiteDirectory) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the database connection.
func (d *SQLiteDirectory) Close() error {
	return d.db.Close()
}

// Lookup retrieves the record for a phone number, or ErrNotFound. The full
// row is read dynamically so disposition columns introduced at runtime show
// up without a schema reload.
func (d *SQLiteDirectory) Lookup(ctx context.Context, phoneNumber string) (*domain.BorrowerRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT * FROM borrowers WHERE phone_number = ?`, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("query borrower: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate borrower row: %w", err)
		}
		return nil, ErrNotFound
	}

	rec, err := scanBorrower(rows)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns every borrower record.
func (d *SQLiteDirectory) List(ctx context.Context) ([]*domain.BorrowerRecord, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT * FROM borrowers ORDER BY phone_number`)
	if err != nil {
		return nil, fmt.Errorf("query borrowers: %w", err)
	}
	defer rows.Close()

	var out []*domain.BorrowerRecord
	for rows.Next() {
		rec, err := scanBorrower(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate borrowers: %w", err)
	}
	return out, nil
}

// Upsert creates or replaces the fixed portion of a borrower record.
// Disposition fields already stored for the phone number are preserved.
func (d *SQLiteDirectory) Upsert(ctx context.Context, rec *domain.BorrowerRecord) error {
	query := `
	INSERT INTO borrowers (phone_number, name, loan_amount, pending_amount, last_due_date)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(phone_number) DO UPDATE SET
		name = excluded.name,
		loan_amount = excluded.loan_amount,
		pending_amount = excluded.pending_amount,
		last_due_date = excluded.last_due_date`

	_, err := d.db.ExecContext(ctx, query,
		rec.PhoneNumber, rec.Name, rec.LoanAmount, rec.PendingAmount, rec.LastDueDate)
	if err != nil {
		return fmt.Errorf("upsert borrower: %w", err)
	}
	return nil
}

// MergeUpdate atomically merges fields into the record for phoneNumber.
// Missing disposition columns are added first; the named fields are then
// overwritten in a single UPDATE. Everything runs in one transaction.
func (d *SQLiteDirectory) MergeUpdate(ctx context.Context, phoneNumber string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, fixed := fixedColumns[name]; fixed {
			return fmt.Errorf("merge into fixed column %q not allowed", name)
		}
		if !columnNamePattern.MatchString(name) {
			return fmt.Errorf("invalid disposition field name %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// Serialize against other merge writers: ALTER TABLE and the column
	// cache must move together.
	d.columnMu.Lock()
	defer d.columnMu.Unlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin merge tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	added := make([]string, 0)
	for _, name := range names {
		if _, ok := d.columns[name]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`ALTER TABLE borrowers ADD COLUMN "%s" TEXT`, name)); err != nil {
			return fmt.Errorf("add column %s: %w", name, err)
		}
		added = append(added, name)
	}

	set := ""
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		if i > 0 {
			set += ", "
		}
		set += fmt.Sprintf(`"%s" = ?`, name)
		args = append(args, fields[name])
	}
	args = append(args, phoneNumber)

	res, err := tx.ExecContext(ctx,
		`UPDATE borrowers SET `+set+` WHERE phone_number = ?`, args...)
	if err != nil {
		return fmt.Errorf("merge update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("merge rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge tx: %w", err)
	}
	for _, name := range added {
		d.columns[name] = struct{}{}
	}
	return nil
}

// scanBorrower reads one row with a dynamic column set.
func scanBorrower(rows *sql.Rows) (*domain.BorrowerRecord, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("row columns: %w", err)
	}

	vals := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan borrower row: %w", err)
	}

	rec := &domain.BorrowerRecord{}
	for i, col := range cols {
		v := vals[i]
		switch col {
		case "phone_number":
			rec.PhoneNumber = v.String
		case "name":
			rec.Name = v.String
		case "loan_amount":
			rec.LoanAmount = v.String
		case "pending_amount":
			rec.PendingAmount = v.String
		case "last_due_date":
			rec.LastDueDate = v.String
		default:
			if v.Valid {
				if rec.Fields == nil {
					rec.Fields = make(map[string]string)
				}
				rec.Fields[col] = v.String
			}
		}
	}
	return rec, nil
}
