// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package preview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/labsight/record"
	"github.com/humaidq/labsight/utils"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestWorkspace(t *testing.T) (*Workspace, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)}

	return NewWorkspace(Options{TTL: 10 * time.Minute, Now: clock.Now}), clock
}

func TestOpenSample(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkspace(t)

	session, err := w.OpenSample()
	if err != nil {
		t.Fatalf("OpenSample failed: %v", err)
	}

	if session.FileName != record.SampleFileName || session.Source != SourceSample {
		t.Fatalf("unexpected session: %#v", session)
	}

	snap, err := w.View(session.ID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	if snap.Mode != record.ModeViewing {
		t.Fatalf("expected viewing mode, got %s", snap.Mode)
	}

	if len(snap.Record.Tests) != 5 || snap.Summary.OutOfRange() != 2 {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}

func TestOpenUpload(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkspace(t)

	session, err := w.OpenUpload(`C:\fakepath\cbc-march.pdf`)
	if err != nil {
		t.Fatalf("OpenUpload failed: %v", err)
	}

	if session.FileName != "cbc-march.pdf" || session.Source != SourceUpload {
		t.Fatalf("unexpected session: %#v", session)
	}

	if _, err := w.OpenUpload("scan.jpg"); !errors.Is(err, utils.ErrUnsupportedReportType) {
		t.Fatalf("expected ErrUnsupportedReportType, got %v", err)
	}

	if w.Len() != 1 {
		t.Fatalf("expected one session, got %d", w.Len())
	}
}

func TestSeedReceivesFileName(t *testing.T) {
	t.Parallel()

	var seen string

	w := NewWorkspace(Options{Seed: func(name string) record.PatientRecord {
		seen = name
		return record.PatientRecord{Name: "Seeded"}
	}})

	session, err := w.OpenUpload("lipids.csv")
	if err != nil {
		t.Fatalf("OpenUpload failed: %v", err)
	}

	if seen != "lipids.csv" {
		t.Fatalf("seed saw %q", seen)
	}

	snap, err := w.View(session.ID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	if snap.Record.Name != "Seeded" {
		t.Fatalf("unexpected record: %#v", snap.Record)
	}
}

func TestDoEditsAndViewFollowsMode(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkspace(t)

	session, err := w.OpenSample()
	if err != nil {
		t.Fatalf("OpenSample failed: %v", err)
	}

	err = w.Do(session.ID, func(e *record.Editor) error {
		if err := e.BeginEdit(); err != nil {
			return err
		}

		_, err := e.SetTestField(3, record.TestResult, "200")

		return err
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	snap, err := w.View(session.ID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	if snap.Mode != record.ModeEditing || snap.Record.Tests[3].Status != record.StatusNormal {
		t.Fatalf("expected draft in snapshot, got %#v", snap)
	}

	if err := w.Do(session.ID, func(e *record.Editor) error { return e.Discard() }); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}

	snap, err = w.View(session.ID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	if snap.Mode != record.ModeViewing || snap.Record.Tests[3].Status != record.StatusLow {
		t.Fatalf("expected committed record after discard, got %#v", snap.Record.Tests[3])
	}
}

func TestDoPropagatesErrors(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkspace(t)

	session, err := w.OpenSample()
	if err != nil {
		t.Fatalf("OpenSample failed: %v", err)
	}

	err = w.Do(session.ID, func(e *record.Editor) error { return e.Commit() })
	if !errors.Is(err, record.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestUnknownSession(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkspace(t)
	id := uuid.New()

	if _, err := w.Get(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get: expected ErrSessionNotFound, got %v", err)
	}

	if _, err := w.View(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("View: expected ErrSessionNotFound, got %v", err)
	}

	if err := w.Do(id, func(*record.Editor) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Do: expected ErrSessionNotFound, got %v", err)
	}

	if err := w.Close(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Close: expected ErrSessionNotFound, got %v", err)
	}
}

func TestCloseAndPrune(t *testing.T) {
	t.Parallel()

	w, clock := newTestWorkspace(t)

	first, err := w.OpenSample()
	if err != nil {
		t.Fatalf("OpenSample failed: %v", err)
	}

	second, err := w.OpenSample()
	if err != nil {
		t.Fatalf("OpenSample failed: %v", err)
	}

	third, err := w.OpenSample()
	if err != nil {
		t.Fatalf("OpenSample failed: %v", err)
	}

	if err := w.Close(third.ID); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	clock.Advance(6 * time.Minute)

	if _, err := w.View(second.ID); err != nil {
		t.Fatalf("View failed: %v", err)
	}

	clock.Advance(6 * time.Minute)

	if pruned := w.Prune(clock.Now()); pruned != 1 {
		t.Fatalf("expected 1 pruned session, got %d", pruned)
	}

	if _, err := w.Get(first.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected idle session to be pruned, got %v", err)
	}

	session, err := w.Get(second.ID)
	if err != nil {
		t.Fatalf("expected active session to survive: %v", err)
	}

	if !session.LastSeen.After(session.CreatedAt) {
		t.Fatalf("expected LastSeen to advance: %#v", session)
	}
}

func TestMaxSessions(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(Options{MaxSessions: 2})

	for i := 0; i < 2; i++ {
		if _, err := w.OpenSample(); err != nil {
			t.Fatalf("OpenSample %d failed: %v", i, err)
		}
	}

	if _, err := w.OpenSample(); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("expected ErrTooManySessions, got %v", err)
	}
}

func TestDoSerializesConcurrentEdits(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkspace(t)

	session, err := w.OpenSample()
	if err != nil {
		t.Fatalf("OpenSample failed: %v", err)
	}

	if err := w.Do(session.ID, func(e *record.Editor) error { return e.BeginEdit() }); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}

	const workers = 32

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_ = w.Do(session.ID, func(e *record.Editor) error {
				_, err := e.AddTest()
				return err
			})
		}()
	}

	wg.Wait()

	snap, err := w.View(session.ID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	if got := len(snap.Record.Tests); got != 5+workers {
		t.Fatalf("expected %d tests, got %d", 5+workers, got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		w.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}

func TestSeededStatusesAreDerivedFromBounds(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(Options{Seed: func(string) record.PatientRecord {
		return record.PatientRecord{Tests: []record.TestRecord{
			{Name: "Platelets", Result: "100", Low: "150", High: "450", Status: record.StatusNormal},
			{Name: "Note", Result: "see comment", Status: record.StatusHigh},
		}}
	}})

	session, err := w.OpenUpload("report.pdf")
	if err != nil {
		t.Fatalf("OpenUpload failed: %v", err)
	}

	snap, err := w.View(session.ID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	if got := snap.Record.Tests[0].Status; got != record.StatusLow {
		t.Fatalf("expected seeded status to be derived as low, got %q", got)
	}

	if got := snap.Record.Tests[1].Status; got != record.StatusHigh {
		t.Fatalf("expected unparsable test to keep its status, got %q", got)
	}
}
