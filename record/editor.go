/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package record

import (
	"fmt"
	"slices"
)

// Mode is the state of an Editor.
type Mode int

// Editor modes. ModeViewing is the initial mode.
const (
	ModeViewing Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeViewing:
		return "viewing"
	case ModeEditing:
		return "editing"
	}

	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText encodes the mode as its name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// StatusUpdate reports what SetTestField did to the test's status.
type StatusUpdate int

// StatusUpdate values.
const (
	// StatusUntouched means the edited field does not affect status.
	StatusUntouched StatusUpdate = iota
	// StatusRecomputed means result, low and high all parsed and the status
	// was derived again.
	StatusRecomputed
	// StatusParseSkipped means one of result, low or high did not parse, so
	// the previous status was kept. This is expected while a value is being
	// typed and is not an error.
	StatusParseSkipped
)

func (u StatusUpdate) String() string {
	switch u {
	case StatusUntouched:
		return "untouched"
	case StatusRecomputed:
		return "recomputed"
	case StatusParseSkipped:
		return "parse_skipped"
	}

	return fmt.Sprintf("StatusUpdate(%d)", int(u))
}

// MarshalText encodes the update as its name.
func (u StatusUpdate) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// Editor owns a committed PatientRecord and, while editing, an independent
// draft copy of it. Mutations only touch the draft until Commit.
//
// Operations other than BeginEdit and the read accessors fail with
// ErrInvalidState while viewing. BeginEdit fails with ErrInvalidState while
// already editing. A failed operation never changes the editor.
//
// An Editor is not safe for concurrent use.
type Editor struct {
	mode      Mode
	committed PatientRecord
	draft     *PatientRecord
}

// NewEditor returns an editor in viewing mode holding a copy of rec. A nil
// test list is stored as an empty one so a record reads the same before and
// after its last test is removed.
func NewEditor(rec PatientRecord) *Editor {
	committed := rec.Clone()
	if committed.Tests == nil {
		committed.Tests = []TestRecord{}
	}

	return &Editor{committed: committed}
}

// Mode returns the current mode.
func (e *Editor) Mode() Mode {
	return e.mode
}

// Editing reports whether the editor holds a draft.
func (e *Editor) Editing() bool {
	return e.mode == ModeEditing
}

// Committed returns a copy of the committed record.
func (e *Editor) Committed() PatientRecord {
	return e.committed.Clone()
}

// Draft returns a copy of the draft. ok is false while viewing.
func (e *Editor) Draft() (rec PatientRecord, ok bool) {
	if e.draft == nil {
		return PatientRecord{}, false
	}

	return e.draft.Clone(), true
}

// Current returns a copy of the record a presentation layer should render:
// the draft while editing and the committed record otherwise.
func (e *Editor) Current() PatientRecord {
	if e.draft != nil {
		return e.draft.Clone()
	}

	return e.committed.Clone()
}

// Summary counts the tests of the current record by status.
func (e *Editor) Summary() Summary {
	if e.draft != nil {
		return Summarize(*e.draft)
	}

	return Summarize(e.committed)
}

// BeginEdit clones the committed record into a new draft.
func (e *Editor) BeginEdit() error {
	if e.mode != ModeViewing {
		return fmt.Errorf("begin edit while %s: %w", e.mode, ErrInvalidState)
	}

	draft := e.committed.Clone()
	e.draft = &draft
	e.mode = ModeEditing

	return nil
}

// Commit replaces the committed record with the draft and returns to viewing.
func (e *Editor) Commit() error {
	if err := e.requireEditing("commit"); err != nil {
		return err
	}

	e.committed = *e.draft
	e.draft = nil
	e.mode = ModeViewing

	return nil
}

// Discard drops the draft and returns to viewing. The committed record is
// not affected.
func (e *Editor) Discard() error {
	if err := e.requireEditing("discard"); err != nil {
		return err
	}

	e.draft = nil
	e.mode = ModeViewing

	return nil
}

// Toggle begins editing while viewing and commits while editing. It returns
// the mode the editor ends up in.
func (e *Editor) Toggle() (Mode, error) {
	var err error
	if e.mode == ModeEditing {
		err = e.Commit()
	} else {
		err = e.BeginEdit()
	}

	return e.mode, err
}

// SetPatientField overwrites one scalar field on the draft. Values are
// accepted as-is, including empty strings.
func (e *Editor) SetPatientField(field PatientField, value string) error {
	if err := e.requireEditing("set patient field"); err != nil {
		return err
	}

	return field.set(e.draft, value)
}

// SetTestField overwrites one field of the draft test at index. When field
// is result, low or high the status is derived again if all three parse as
// numbers, and kept otherwise.
func (e *Editor) SetTestField(index int, field TestField, value string) (StatusUpdate, error) {
	if err := e.requireEditing("set test field"); err != nil {
		return StatusUntouched, err
	}

	if err := e.checkIndex(index); err != nil {
		return StatusUntouched, err
	}

	test := e.draft.Tests[index]
	if err := field.set(&test, value); err != nil {
		return StatusUntouched, err
	}

	update := StatusUntouched

	if field.IsNumeric() {
		if status, ok := classifyTest(test); ok {
			test.Status = status
			update = StatusRecomputed
		} else {
			update = StatusParseSkipped
		}
	}

	e.draft.Tests[index] = test

	return update, nil
}

// AddTest appends an empty test with normal status to the draft and returns
// its index.
func (e *Editor) AddTest() (int, error) {
	if err := e.requireEditing("add test"); err != nil {
		return 0, err
	}

	e.draft.Tests = append(e.draft.Tests, TestRecord{Status: StatusNormal})

	return len(e.draft.Tests) - 1, nil
}

// RemoveTest removes the draft test at index, shifting later tests down.
func (e *Editor) RemoveTest(index int) error {
	if err := e.requireEditing("remove test"); err != nil {
		return err
	}

	if err := e.checkIndex(index); err != nil {
		return err
	}

	e.draft.Tests = slices.Delete(e.draft.Tests, index, index+1)

	return nil
}

func (e *Editor) requireEditing(op string) error {
	if e.mode != ModeEditing || e.draft == nil {
		return fmt.Errorf("%s while %s: %w", op, e.mode, ErrInvalidState)
	}

	return nil
}

func (e *Editor) checkIndex(index int) error {
	if index < 0 || index >= len(e.draft.Tests) {
		return fmt.Errorf("%w: index %d, %d tests", ErrIndexOutOfRange, index, len(e.draft.Tests))
	}

	return nil
}
