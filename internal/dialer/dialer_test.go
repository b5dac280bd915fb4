package dialer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/bargaj/collectcall/internal/domain"
)

type listOnlyDirectory struct {
	borrowers []*domain.BorrowerRecord
}

func (d *listOnlyDirectory) List(context.Context) ([]*domain.BorrowerRecord, error) {
	return d.borrowers, nil
}
func (d *listOnlyDirectory) Lookup(context.Context, string) (*domain.BorrowerRecord, error) {
	return nil, nil
}
func (d *listOnlyDirectory) MergeUpdate(context.Context, string, map[string]string) error {
	return nil
}
func (d *listOnlyDirectory) Upsert(context.Context, *domain.BorrowerRecord) error { return nil }
func (d *listOnlyDirectory) ImportCSV(context.Context, io.Reader) (int, error)    { return 0, nil }
func (d *listOnlyDirectory) Ping(context.Context) error                           { return nil }
func (d *listOnlyDirectory) Close() error                                         { return nil }

type fakePlacer struct {
	mu     sync.Mutex
	called []string
	failOn map[string]bool
}

func (p *fakePlacer) PlaceCall(_ context.Context, to, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.called = append(p.called, to)
	if p.failOn[to] {
		return "", errors.New("provider rejected call")
	}
	return "CA-" + to, nil
}

func borrowers(phones ...string) []*domain.BorrowerRecord {
	recs := make([]*domain.BorrowerRecord, len(phones))
	for i, p := range phones {
		recs[i] = &domain.BorrowerRecord{PhoneNumber: p, Name: "B"}
	}
	return recs
}

func TestDialAll(t *testing.T) {
	dir := &listOnlyDirectory{borrowers: borrowers("+911", "+912", "+913")}
	placer := &fakePlacer{}

	res, err := New(dir, placer, "https://example.com/voice", 2).DialAll(context.Background())
	if err != nil {
		t.Fatalf("DialAll failed: %v", err)
	}

	if res.Placed != 3 || res.Failed != 0 {
		t.Errorf("result = %+v", res)
	}
	if res.BatchID == "" {
		t.Error("batch id missing")
	}
	if len(placer.called) != 3 {
		t.Errorf("placed %d calls, want 3", len(placer.called))
	}
}

func TestDialAllCountsFailures(t *testing.T) {
	dir := &listOnlyDirectory{borrowers: borrowers("+911", "+912", "+913")}
	placer := &fakePlacer{failOn: map[string]bool{"+912": true}}

	res, err := New(dir, placer, "https://example.com/voice", 1).DialAll(context.Background())
	if err != nil {
		t.Fatalf("DialAll failed: %v", err)
	}
	if res.Placed != 2 || res.Failed != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestDialAllEmptyDirectory(t *testing.T) {
	res, err := New(&listOnlyDirectory{}, &fakePlacer{}, "https://example.com/voice", 2).
		DialAll(context.Background())
	if err != nil {
		t.Fatalf("DialAll failed: %v", err)
	}
	if res.Placed != 0 || res.Failed != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestDialAllNoPlacer(t *testing.T) {
	dir := &listOnlyDirectory{borrowers: borrowers("+911")}
	if _, err := New(dir, nil, "https://example.com/voice", 2).DialAll(context.Background()); err == nil {
		t.Fatal("expected error without a telephony client")
	}
}
