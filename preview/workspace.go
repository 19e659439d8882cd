/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package preview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/labsight/record"
	"github.com/humaidq/labsight/utils"
)

// Default workspace limits.
const (
	DefaultTTL         = 30 * time.Minute
	DefaultMaxSessions = 1024
)

// Source tells how a preview session was opened.
type Source string

// Source values.
const (
	SourceUpload Source = "upload"
	SourceSample Source = "sample"
)

// Session describes an open preview.
type Session struct {
	ID        uuid.UUID
	FileName  string
	Source    Source
	CreatedAt time.Time
	LastSeen  time.Time
}

// Snapshot is what a presentation layer renders for a session: the draft
// while editing and the committed record otherwise.
type Snapshot struct {
	Session Session
	Mode    record.Mode
	Record  record.PatientRecord
	Summary record.Summary
}

// Options configures a Workspace.
type Options struct {
	// TTL is how long an idle session is kept. Zero means DefaultTTL.
	TTL time.Duration
	// MaxSessions bounds the number of open sessions. Zero means DefaultMaxSessions.
	MaxSessions int
	// Seed builds the initial record for a report. Nil means record.SampleRecord.
	// Statuses of seeded tests are derived again from their bounds.
	Seed func(fileName string) record.PatientRecord
	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

type entry struct {
	mu      sync.Mutex
	session Session
	editor  *record.Editor
}

// Workspace holds one record editor per preview session. All operations on
// an editor go through Do, which serializes them per session.
type Workspace struct {
	opts Options

	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
}

// NewWorkspace returns an empty workspace.
func NewWorkspace(opts Options) *Workspace {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}

	if opts.Seed == nil {
		opts.Seed = func(string) record.PatientRecord { return record.SampleRecord() }
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Workspace{
		opts:    opts,
		entries: make(map[uuid.UUID]*entry),
	}
}

// OpenUpload opens a session for an uploaded report. Only the file name is
// used; the report content is not read.
func (w *Workspace) OpenUpload(fileName string) (Session, error) {
	cleaned, err := utils.ValidateReportFileName(fileName)
	if err != nil {
		return Session{}, err
	}

	return w.open(cleaned, SourceUpload)
}

// OpenSample opens a session for the built-in sample report.
func (w *Workspace) OpenSample() (Session, error) {
	return w.open(record.SampleFileName, SourceSample)
}

func (w *Workspace) open(fileName string, source Source) (Session, error) {
	now := w.opts.Now()
	e := &entry{
		session: Session{
			ID:        uuid.New(),
			FileName:  fileName,
			Source:    source,
			CreatedAt: now,
			LastSeen:  now,
		},
		editor: record.NewEditor(w.opts.Seed(fileName).Reclassify()),
	}

	w.mu.Lock()
	if len(w.entries) >= w.opts.MaxSessions {
		w.mu.Unlock()
		return Session{}, ErrTooManySessions
	}

	w.entries[e.session.ID] = e
	w.mu.Unlock()

	logger.Info("opened preview session", "session", e.session.ID, "file", fileName, "source", source)

	return e.session, nil
}

func (w *Workspace) lookup(id uuid.UUID) (*entry, error) {
	w.mu.RLock()
	e, ok := w.entries[id]
	w.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return e, nil
}

// Get returns the session with the given ID.
func (w *Workspace) Get(id uuid.UUID) (Session, error) {
	e, err := w.lookup(id)
	if err != nil {
		return Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.session, nil
}

// Do runs fn with exclusive access to the session's editor.
func (w *Workspace) Do(id uuid.UUID, fn func(*record.Editor) error) error {
	e, err := w.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.LastSeen = w.opts.Now()

	return fn(e.editor)
}

// View returns the current snapshot of a session.
func (w *Workspace) View(id uuid.UUID) (Snapshot, error) {
	e, err := w.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.LastSeen = w.opts.Now()

	return Snapshot{
		Session: e.session,
		Mode:    e.editor.Mode(),
		Record:  e.editor.Current(),
		Summary: e.editor.Summary(),
	}, nil
}

// Close drops a session. Any uncommitted draft is discarded.
func (w *Workspace) Close(id uuid.UUID) error {
	w.mu.Lock()
	_, ok := w.entries[id]
	delete(w.entries, id)
	w.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	logger.Info("closed preview session", "session", id)

	return nil
}

// Len returns the number of open sessions.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.entries)
}

// Prune closes sessions idle for longer than the TTL and returns how many
// were closed.
func (w *Workspace) Prune(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	pruned := 0

	for id, e := range w.entries {
		e.mu.Lock()
		idle := now.Sub(e.session.LastSeen)
		e.mu.Unlock()

		if idle > w.opts.TTL {
			delete(w.entries, id)
			pruned++
		}
	}

	if pruned > 0 {
		logger.Info("pruned idle preview sessions", "count", pruned, "remaining", len(w.entries))
	}

	return pruned
}

// Run prunes idle sessions every interval until ctx is done.
func (w *Workspace) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Prune(w.opts.Now())
		}
	}
}
