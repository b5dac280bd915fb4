package dialogue

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bargaj/collectcall/internal/classify"
	"github.com/bargaj/collectcall/internal/domain"
	"github.com/bargaj/collectcall/internal/operator"
	"github.com/bargaj/collectcall/internal/session"
	"github.com/bargaj/collectcall/internal/store"
)

// fakeDirectory is an in-memory store.Directory for engine tests.
type fakeDirectory struct {
	mu      sync.Mutex
	records map[string]*domain.BorrowerRecord
	merges  []map[string]string
	failFor int // fail this many MergeUpdate calls before succeeding
}

func newFakeDirectory(recs ...*domain.BorrowerRecord) *fakeDirectory {
	d := &fakeDirectory{records: make(map[string]*domain.BorrowerRecord)}
	for _, r := range recs {
		d.records[r.PhoneNumber] = r
	}
	return d
}

func (d *fakeDirectory) Lookup(_ context.Context, phone string) (*domain.BorrowerRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[phone]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.Clone(), nil
}

func (d *fakeDirectory) MergeUpdate(_ context.Context, phone string, fields map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failFor > 0 {
		d.failFor--
		return errors.New("disk unhappy")
	}
	rec, ok := d.records[phone]
	if !ok {
		return store.ErrNotFound
	}
	if rec.Fields == nil {
		rec.Fields = make(map[string]string)
	}
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		rec.Fields[k] = v
		cp[k] = v
	}
	d.merges = append(d.merges, cp)
	return nil
}

func (d *fakeDirectory) Upsert(context.Context, *domain.BorrowerRecord) error { return nil }
func (d *fakeDirectory) List(context.Context) ([]*domain.BorrowerRecord, error) {
	return nil, nil
}
func (d *fakeDirectory) ImportCSV(context.Context, io.Reader) (int, error) { return 0, nil }
func (d *fakeDirectory) Ping(context.Context) error                        { return nil }
func (d *fakeDirectory) Close() error                                      { return nil }

func (d *fakeDirectory) fields(phone string) map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.records[phone].Fields
}

func (d *fakeDirectory) mergeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.merges)
}

// recordingSink captures published operator events.
type recordingSink struct {
	mu     sync.Mutex
	events []operator.Event
}

func (s *recordingSink) Publish(evt operator.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *recordingSink) byType(typ string) []operator.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []operator.Event
	for _, e := range s.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func newTestEngine(t *testing.T, dir *fakeDirectory) (*Engine, *session.Registry, *recordingSink) {
	t.Helper()
	reg := session.NewRegistry()
	sink := &recordingSink{}
	cfg := DefaultEngineConfig()
	cfg.WriteTimeout = time.Second
	return NewEngine(reg, dir, sink, cfg), reg, sink
}

func TestBeginKnownBorrower(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, reg, _ := newTestEngine(t, dir)

	out, err := e.Begin(context.Background(), "CA1", "+915550001111")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if out.Terminal {
		t.Error("Begin for a known borrower should not be terminal")
	}
	if got := firstSpeak(t, out.Actions); got == "" || !hasRecording(out.Actions) {
		t.Errorf("intro actions = %v", out.Actions)
	}
	if reg.Len() != 1 {
		t.Errorf("registry has %d sessions, want 1", reg.Len())
	}
}

func TestBeginUnknownBorrower(t *testing.T) {
	dir := newFakeDirectory()
	e, reg, _ := newTestEngine(t, dir)

	out, err := e.Begin(context.Background(), "CA1", "+910000000000")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if !out.Terminal {
		t.Error("unknown borrower should end the call")
	}
	if reg.Len() != 0 {
		t.Error("no session should be created for unknown borrowers")
	}
	if dir.mergeCount() != 0 {
		t.Error("nothing should be persisted for unknown borrowers")
	}
}

func TestBeginDuplicateReplaysIntro(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, reg, _ := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}
	// Move the dialogue forward, then replay the call-started webhook.
	if _, err := e.Advance(ctx, "CA1", classify.Utterance("yes")); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatalf("duplicate Begin failed: %v", err)
	}

	s, err := reg.Get("CA1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Step != domain.StepConfirmLoan {
		t.Errorf("duplicate Begin reset the session to %v", s.Step)
	}
}

func TestDeclinedFlushesRespondedNo(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, reg, _ := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}
	out, err := e.Advance(ctx, "CA1", classify.Utterance("no"))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Terminal {
		t.Fatal("decline should be terminal")
	}

	got := dir.fields("+915550001111")
	if got["responded"] != "No" || len(got) != 1 {
		t.Errorf("persisted fields = %v, want only responded=No", got)
	}
	if reg.Len() != 0 {
		t.Error("session should be retired after a terminal step")
	}
}

func TestDenialBufferedUntilTerminal(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, reg, _ := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Advance(ctx, "CA1", classify.Utterance("yes")); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Advance(ctx, "CA1", classify.Utterance("no")); err != nil {
		t.Fatal(err)
	}

	// took_loan / reason are buffered in the session, not yet flushed.
	if dir.mergeCount() != 0 {
		t.Fatalf("merge happened before terminal: %v", dir.merges)
	}
	s, err := reg.Get("CA1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Answers["took_loan"] != "No" || s.Answers["reason"] != "Did not take loan" {
		t.Errorf("buffered answers = %v", s.Answers)
	}

	// Mistake denied: the buffer flushes with responded=Yes.
	if _, err := e.Advance(ctx, "CA1", classify.Utterance("no")); err != nil {
		t.Fatal(err)
	}
	got := dir.fields("+915550001111")
	if got["took_loan"] != "No" || got["reason"] != "Did not take loan" || got["responded"] != "Yes" {
		t.Errorf("persisted fields = %v", got)
	}
}

func TestFullHappyPathWithReminder(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, _, _ := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}
	steps := []classify.Input{
		classify.Utterance("yes that's me"),
		classify.Utterance("yes i did"),
		classify.FromDigits("3"),
		classify.Utterance("yes please remind me"),
	}
	var out Outcome
	var err error
	for _, in := range steps {
		if out, err = e.Advance(ctx, "CA1", in); err != nil {
			t.Fatal(err)
		}
	}

	if out.Step != domain.StepDoneReminder || !out.Terminal {
		t.Errorf("final step = %v", out.Step)
	}
	got := dir.fields("+915550001111")
	want := map[string]string{
		"took_loan":      "Yes",
		"reason":         "No money",
		"wants_reminder": "Yes",
		"responded":      "Yes",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("persisted %s = %q, want %q (all: %v)", k, got[k], v, got)
		}
	}
}

func TestRepromptCapFallsToUnconfirmed(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, reg, _ := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}

	var out Outcome
	var err error
	for i := 0; i < 3; i++ {
		if out, err = e.Advance(ctx, "CA1", classify.Utterance("mmph")); err != nil {
			t.Fatal(err)
		}
	}

	if out.Step != domain.StepDoneUnconfirmed || !out.Terminal {
		t.Errorf("after cap: step = %v terminal=%v", out.Step, out.Terminal)
	}
	got := dir.fields("+915550001111")
	if got["responded"] != "Unknown" {
		t.Errorf("persisted fields = %v, want responded=Unknown", got)
	}
	if reg.Len() != 0 {
		t.Error("session should be retired after giving up")
	}
}

func TestRepromptCounterResetsOnProgress(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, _, _ := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}

	// Two misses, then progress, then two more misses: never hits the cap.
	turns := []classify.Input{
		classify.Utterance("mmph"),
		classify.Utterance("mmph"),
		classify.Utterance("yes"),
		classify.Utterance("mmph"),
		classify.Utterance("mmph"),
	}
	var out Outcome
	var err error
	for _, in := range turns {
		if out, err = e.Advance(ctx, "CA1", in); err != nil {
			t.Fatal(err)
		}
	}
	if out.Terminal {
		t.Errorf("cap fired across steps, final step %v", out.Step)
	}
}

func TestReasonMenuCapRecordsUnknownReason(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, _, _ := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Advance(ctx, "CA1", classify.Utterance("yes")); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Advance(ctx, "CA1", classify.Utterance("yes")); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := e.Advance(ctx, "CA1", classify.FromDigits("9")); err != nil {
			t.Fatal(err)
		}
	}

	got := dir.fields("+915550001111")
	if got["reason"] != "Unknown" || got["responded"] != "Unknown" {
		t.Errorf("persisted fields = %v", got)
	}
}

func TestWriteFailureRetriesAndAlerts(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	dir.failFor = 5 // more failures than attempts
	e, _, sink := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}
	out, err := e.Advance(ctx, "CA1", classify.Utterance("no"))
	if err != nil {
		t.Fatalf("Advance surfaced a write failure to the caller: %v", err)
	}
	if !out.Terminal || firstSpeak(t, out.Actions) == "" {
		t.Error("caller must still get the closing message")
	}
	if alerts := sink.byType(operator.EventAlert); len(alerts) != 1 {
		t.Errorf("got %d alerts, want 1", len(alerts))
	}
}

func TestWriteFailureRecoversWithinRetries(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	dir.failFor = 1
	e, _, sink := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Advance(ctx, "CA1", classify.Utterance("no")); err != nil {
		t.Fatal(err)
	}

	if got := dir.fields("+915550001111"); got["responded"] != "No" {
		t.Errorf("retry did not land the write: %v", got)
	}
	if alerts := sink.byType(operator.EventAlert); len(alerts) != 0 {
		t.Errorf("unexpected alerts after successful retry: %v", alerts)
	}
}

func TestAbortFlushesUnknown(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, reg, _ := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Advance(ctx, "CA1", classify.Utterance("yes")); err != nil {
		t.Fatal(err)
	}

	out := e.Abort(ctx, "CA1")
	if !out.Terminal || firstSpeak(t, out.Actions) == "" {
		t.Error("abort must speak a goodbye")
	}
	got := dir.fields("+915550001111")
	if got["responded"] != "Unknown" {
		t.Errorf("persisted fields = %v, want responded=Unknown", got)
	}
	if reg.Len() != 0 {
		t.Error("session should be retired on abort")
	}
}

func TestAbortUnknownCallStillSpeaks(t *testing.T) {
	dir := newFakeDirectory()
	e, _, _ := newTestEngine(t, dir)

	out := e.Abort(context.Background(), "CA-ghost")
	if !out.Terminal || firstSpeak(t, out.Actions) == "" {
		t.Error("abort for an unknown call must still end gracefully")
	}
	if dir.mergeCount() != 0 {
		t.Error("nothing to persist for unknown calls")
	}
}

func TestExpireIdleWritesDisposition(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, reg, sink := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Advance(ctx, "CA1", classify.Utterance("yes")); err != nil {
		t.Fatal(err)
	}
	if err := reg.Update("CA1", func(s *domain.CallSession) {
		s.LastActive = time.Now().Add(-time.Hour)
	}); err != nil {
		t.Fatal(err)
	}

	reg.ReapIdle(time.Minute, e.ExpireIdle)

	got := dir.fields("+915550001111")
	if got["responded"] != "Unknown" {
		t.Errorf("persisted fields = %v", got)
	}
	if ended := sink.byType(operator.EventCallEnded); len(ended) == 0 {
		t.Error("expiry should publish a call_ended event")
	}
}

func TestAdvanceAfterRetire(t *testing.T) {
	dir := newFakeDirectory(testBorrower())
	e, _, _ := newTestEngine(t, dir)
	ctx := context.Background()

	if _, err := e.Begin(ctx, "CA1", "+915550001111"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Advance(ctx, "CA1", classify.Utterance("no")); err != nil {
		t.Fatal(err)
	}

	// A duplicated webhook after the terminal turn finds no session.
	_, err := e.Advance(ctx, "CA1", classify.Utterance("no"))
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Advance after retire = %v, want ErrNotFound", err)
	}
	// The duplicate must not double-write.
	if dir.mergeCount() != 1 {
		t.Errorf("merge count = %d, want 1", dir.mergeCount())
	}
}
