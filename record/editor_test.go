// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func equalRecords(a, b PatientRecord) bool {
	return reflect.DeepEqual(a, b)
}

func mustBeginEdit(t *testing.T, e *Editor) {
	t.Helper()

	if err := e.BeginEdit(); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
}

func mustDraft(t *testing.T, e *Editor) PatientRecord {
	t.Helper()

	draft, ok := e.Draft()
	if !ok {
		t.Fatalf("expected a draft")
	}

	return draft
}

func TestNewEditorCopiesInput(t *testing.T) {
	t.Parallel()

	input := SampleRecord()
	e := NewEditor(input)
	input.Tests[0].Result = "1"
	input.Name = "changed"

	if got := e.Committed(); !equalRecords(got, SampleRecord()) {
		t.Fatalf("editor shares state with its input: %#v", got)
	}

	if e.Mode() != ModeViewing || e.Editing() {
		t.Fatalf("expected viewing mode, got %s", e.Mode())
	}

	if _, ok := e.Draft(); ok {
		t.Fatalf("expected no draft while viewing")
	}
}

func TestEditorLifecycle(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	mustBeginEdit(t, e)

	if e.Mode() != ModeEditing {
		t.Fatalf("expected editing mode, got %s", e.Mode())
	}

	if err := e.BeginEdit(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for nested BeginEdit, got %v", err)
	}

	if err := e.SetPatientField(PatientName, "Jane Roe"); err != nil {
		t.Fatalf("SetPatientField failed: %v", err)
	}

	if got := e.Current().Name; got != "Jane Roe" {
		t.Fatalf("Current should render the draft, got name %q", got)
	}

	if err := e.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if e.Mode() != ModeViewing {
		t.Fatalf("expected viewing after commit, got %s", e.Mode())
	}

	if got := e.Committed().Name; got != "Jane Roe" {
		t.Fatalf("expected committed name to change, got %q", got)
	}

	if got := e.Current().Name; got != "Jane Roe" {
		t.Fatalf("Current should render the committed record, got %q", got)
	}
}

func TestOperationsRequireEditing(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	before := e.Committed()

	if err := e.SetPatientField(PatientName, "x"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("SetPatientField: expected ErrInvalidState, got %v", err)
	}

	if _, err := e.SetTestField(0, TestResult, "1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("SetTestField: expected ErrInvalidState, got %v", err)
	}

	if _, err := e.AddTest(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("AddTest: expected ErrInvalidState, got %v", err)
	}

	if err := e.RemoveTest(0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("RemoveTest: expected ErrInvalidState, got %v", err)
	}

	if err := e.Commit(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Commit: expected ErrInvalidState, got %v", err)
	}

	if err := e.Discard(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Discard: expected ErrInvalidState, got %v", err)
	}

	if !equalRecords(e.Committed(), before) || e.Mode() != ModeViewing {
		t.Fatalf("failed operations changed the editor")
	}
}

func TestDraftIsolation(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	snapshot := e.Committed()

	mustBeginEdit(t, e)

	for _, f := range PatientFields {
		if err := e.SetPatientField(f, ""); err != nil {
			t.Fatalf("SetPatientField(%s) failed: %v", f, err)
		}
	}

	for _, f := range TestFields {
		if _, err := e.SetTestField(1, f, "999"); err != nil {
			t.Fatalf("SetTestField(%s) failed: %v", f, err)
		}
	}

	if _, err := e.AddTest(); err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}

	if err := e.RemoveTest(0); err != nil {
		t.Fatalf("RemoveTest failed: %v", err)
	}

	if got := e.Committed(); !equalRecords(got, snapshot) {
		t.Fatalf("draft edits leaked into committed record:\n got %#v\nwant %#v", got, snapshot)
	}

	// Copies handed out must not alias the draft either.
	draft := mustDraft(t, e)
	draft.Tests[0].Name = "mutated"

	if mustDraft(t, e).Tests[0].Name == "mutated" {
		t.Fatalf("Draft returned an aliased copy")
	}
}

func TestCommitAtomicity(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	mustBeginEdit(t, e)

	if _, err := e.SetTestField(3, TestResult, "200"); err != nil {
		t.Fatalf("SetTestField failed: %v", err)
	}

	if _, err := e.AddTest(); err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}

	preCommit := mustDraft(t, e)

	if err := e.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if got := e.Committed(); !equalRecords(got, preCommit) {
		t.Fatalf("committed record differs from pre-commit draft:\n got %#v\nwant %#v", got, preCommit)
	}

	mustBeginEdit(t, e)

	if got := mustDraft(t, e); !equalRecords(got, preCommit) {
		t.Fatalf("new draft was not cloned from the new committed record")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	before := e.Committed()

	mustBeginEdit(t, e)

	if _, err := e.AddTest(); err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}

	if err := e.Discard(); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}

	if e.Mode() != ModeViewing {
		t.Fatalf("expected viewing after discard, got %s", e.Mode())
	}

	got := e.Committed()
	if len(got.Tests) != len(before.Tests) || !equalRecords(got, before) {
		t.Fatalf("discard changed committed record: %d tests, want %d", len(got.Tests), len(before.Tests))
	}

	mustBeginEdit(t, e)

	if len(mustDraft(t, e).Tests) != len(before.Tests) {
		t.Fatalf("discarded draft resurfaced")
	}
}

func TestToggle(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())

	mode, err := e.Toggle()
	if err != nil || mode != ModeEditing {
		t.Fatalf("first toggle: mode %s, err %v", mode, err)
	}

	if err := e.SetPatientField(PatientAge, "45"); err != nil {
		t.Fatalf("SetPatientField failed: %v", err)
	}

	mode, err = e.Toggle()
	if err != nil || mode != ModeViewing {
		t.Fatalf("second toggle: mode %s, err %v", mode, err)
	}

	if got := e.Committed().Age; got != "45" {
		t.Fatalf("toggle did not commit, age %q", got)
	}
}

func TestSetTestFieldStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		index      int
		field      TestField
		value      string
		wantStatus Status
		wantUpdate StatusUpdate
	}{
		{name: "platelets low", index: 3, field: TestResult, value: "145", wantStatus: StatusLow, wantUpdate: StatusRecomputed},
		{name: "haemoglobin normal", index: 0, field: TestResult, value: "15.6", wantStatus: StatusNormal, wantUpdate: StatusRecomputed},
		{name: "rbc high", index: 1, field: TestResult, value: "5.77", wantStatus: StatusHigh, wantUpdate: StatusRecomputed},
		{name: "unparsable result keeps status", index: 2, field: TestResult, value: "abc", wantStatus: StatusNormal, wantUpdate: StatusParseSkipped},
		{name: "raising low bound", index: 0, field: TestLow, value: "16", wantStatus: StatusLow, wantUpdate: StatusRecomputed},
		{name: "lowering high bound", index: 4, field: TestHigh, value: "45", wantStatus: StatusHigh, wantUpdate: StatusRecomputed},
		{name: "empty bound keeps status", index: 1, field: TestHigh, value: "", wantStatus: StatusHigh, wantUpdate: StatusParseSkipped},
		{name: "result on boundary", index: 3, field: TestResult, value: "150", wantStatus: StatusNormal, wantUpdate: StatusRecomputed},
		{name: "name edit leaves status", index: 1, field: TestName, value: "Red cells", wantStatus: StatusHigh, wantUpdate: StatusUntouched},
		{name: "unit edit leaves status", index: 3, field: TestUnit, value: "K/uL", wantStatus: StatusLow, wantUpdate: StatusUntouched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEditor(SampleRecord())
			mustBeginEdit(t, e)

			update, err := e.SetTestField(tt.index, tt.field, tt.value)
			if err != nil {
				t.Fatalf("SetTestField failed: %v", err)
			}

			if update != tt.wantUpdate {
				t.Fatalf("update = %s, want %s", update, tt.wantUpdate)
			}

			test := mustDraft(t, e).Tests[tt.index]
			if test.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q", test.Status, tt.wantStatus)
			}

			if got := tt.field.Get(test); got != tt.value {
				t.Fatalf("field %s = %q, want %q", tt.field, got, tt.value)
			}
		})
	}
}

func TestStatusConsistencyAcrossEdits(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	mustBeginEdit(t, e)

	edits := []struct {
		field TestField
		value string
	}{
		{TestResult, "1"}, {TestLow, "2"}, {TestHigh, "x"}, {TestHigh, "3"},
		{TestResult, "3.5"}, {TestLow, ""}, {TestResult, "2.5"}, {TestLow, "0"},
	}

	for _, edit := range edits {
		before := mustDraft(t, e).Tests[2]

		if _, err := e.SetTestField(2, edit.field, edit.value); err != nil {
			t.Fatalf("SetTestField(%s, %q) failed: %v", edit.field, edit.value, err)
		}

		after := mustDraft(t, e).Tests[2]

		result, okR := ParseNumber(after.Result)
		low, okL := ParseNumber(after.Low)
		high, okH := ParseNumber(after.High)

		if okR && okL && okH {
			if want := Classify(result, low, high); after.Status != want {
				t.Fatalf("after %s=%q status %q, want %q", edit.field, edit.value, after.Status, want)
			}
		} else if after.Status != before.Status {
			t.Fatalf("after %s=%q status changed from %q to %q without parseable numbers",
				edit.field, edit.value, before.Status, after.Status)
		}
	}
}

func TestIndexSafety(t *testing.T) {
	t.Parallel()

	for _, index := range []int{-1, 5, 99} {
		e := NewEditor(SampleRecord())
		mustBeginEdit(t, e)

		before := mustDraft(t, e)

		if _, err := e.SetTestField(index, TestResult, "1"); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("SetTestField(%d): expected ErrIndexOutOfRange, got %v", index, err)
		}

		if err := e.RemoveTest(index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("RemoveTest(%d): expected ErrIndexOutOfRange, got %v", index, err)
		}

		after := mustDraft(t, e)
		if !equalRecords(after, before) || len(after.Tests) != 5 {
			t.Fatalf("index %d: draft changed after out-of-range operations", index)
		}
	}
}

func TestUnknownFieldLeavesDraft(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	mustBeginEdit(t, e)

	before := mustDraft(t, e)

	if err := e.SetPatientField(PatientField(42), "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	if _, err := e.SetTestField(0, TestField(0), "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	if !equalRecords(mustDraft(t, e), before) {
		t.Fatalf("draft changed after unknown field edits")
	}
}

func TestAddRemoveRoundTrip(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	mustBeginEdit(t, e)

	before := mustDraft(t, e)

	index, err := e.AddTest()
	if err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}

	added := mustDraft(t, e)
	if index != len(before.Tests) || len(added.Tests) != len(before.Tests)+1 {
		t.Fatalf("AddTest returned index %d with %d tests", index, len(added.Tests))
	}

	if got := added.Tests[index]; got != (TestRecord{Status: StatusNormal}) {
		t.Fatalf("unexpected new test: %#v", got)
	}

	if err := e.RemoveTest(len(added.Tests) - 1); err != nil {
		t.Fatalf("RemoveTest failed: %v", err)
	}

	if got := mustDraft(t, e); !equalRecords(got, before) {
		t.Fatalf("add/remove did not round trip:\n got %#v\nwant %#v", got, before)
	}
}

func TestRemoveTestShifts(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	mustBeginEdit(t, e)

	if err := e.RemoveTest(1); err != nil {
		t.Fatalf("RemoveTest failed: %v", err)
	}

	names := []string{}
	for _, test := range mustDraft(t, e).Tests {
		names = append(names, test.Name)
	}

	want := []string{"Haemoglobin", "WBC Count", "Platelets", "Hematocrit"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names after remove = %v, want %v", names, want)
	}
}

func TestDuplicateAndEmptyNamesAllowed(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	mustBeginEdit(t, e)

	if _, err := e.AddTest(); err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}

	index, err := e.AddTest()
	if err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}

	if _, err := e.SetTestField(index, TestName, "Platelets"); err != nil {
		t.Fatalf("SetTestField failed: %v", err)
	}

	if err := e.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	tests := e.Committed().Tests
	if len(tests) != 7 || tests[5].Name != "" || tests[6].Name != "Platelets" {
		t.Fatalf("unexpected tests after commit: %#v", tests[5:])
	}
}

func TestEditorSummaryFollowsCurrent(t *testing.T) {
	t.Parallel()

	e := NewEditor(SampleRecord())
	if got := e.Summary().OutOfRange(); got != 2 {
		t.Fatalf("expected 2 out of range, got %d", got)
	}

	mustBeginEdit(t, e)

	if _, err := e.SetTestField(3, TestResult, "200"); err != nil {
		t.Fatalf("SetTestField failed: %v", err)
	}

	if got := e.Summary(); got.OutOfRange() != 1 || got.Low != 0 {
		t.Fatalf("unexpected draft summary: %#v", got)
	}
}

func TestEditorRecordWithoutTestsSurvivesAddAndRemove(t *testing.T) {
	t.Parallel()

	e := NewEditor(PatientRecord{Name: "Empty"})
	before := e.Committed()

	if before.Tests == nil {
		t.Fatal("expected an empty, non-nil test list")
	}

	mustBeginEdit(t, e)

	index, err := e.AddTest()
	if err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}

	if err := e.RemoveTest(index); err != nil {
		t.Fatalf("RemoveTest failed: %v", err)
	}

	if err := e.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if got := e.Committed(); !equalRecords(got, before) {
		t.Fatalf("expected %#v, got %#v", before, got)
	}
}

func TestSummaryReportUsesCamelCaseKeys(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Summarize(SampleRecord()).Report())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"total":5,"normal":3,"low":1,"high":1,"outOfRange":2}`
	if string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
}
