/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/flamego/flamego"
	"github.com/flamego/session"

	"github.com/humaidq/labsight/db"
	"github.com/humaidq/labsight/preview"
	"github.com/humaidq/labsight/record"
)

const parseSkippedWarning = "Saved, but the status was left unchanged because the result or range is not a number"

// editorAction runs fn against the session's editor and responds with the
// outcome.
func editorAction(c flamego.Context, s session.Session, ws *preview.Workspace, success string, fn func(*record.Editor) error) {
	id, err := previewID(c)
	if err == nil {
		err = ws.Do(id, fn)
	}

	respond(c, s, ws, id, err, actionResult{Success: success})
}

// BeginEdit switches the preview to editing.
func BeginEdit(c flamego.Context, s session.Session, ws *preview.Workspace) {
	editorAction(c, s, ws, "", (*record.Editor).BeginEdit)
}

// SaveEdits commits the draft.
func SaveEdits(c flamego.Context, s session.Session, ws *preview.Workspace) {
	editorAction(c, s, ws, "Changes saved", (*record.Editor).Commit)
}

// DiscardEdits drops the draft.
func DiscardEdits(c flamego.Context, s session.Session, ws *preview.Workspace) {
	editorAction(c, s, ws, "Changes discarded", (*record.Editor).Discard)
}

// ToggleEdit is the single edit/save button: it begins editing while
// viewing and commits while editing.
func ToggleEdit(c flamego.Context, s session.Session, ws *preview.Workspace) {
	var mode record.Mode

	id, err := previewID(c)
	if err == nil {
		err = ws.Do(id, func(e *record.Editor) error {
			var err error
			mode, err = e.Toggle()

			return err
		})
	}

	result := actionResult{}
	if err == nil && mode == record.ModeViewing {
		result.Success = "Changes saved"
	}

	respond(c, s, ws, id, err, result)
}

// UpdatePatient applies every posted patient field to the draft.
func UpdatePatient(c flamego.Context, s session.Session, ws *preview.Workspace) {
	id, err := previewID(c)
	if err == nil {
		err = parseForm(c)
	}

	if err == nil {
		form := c.Request().PostForm
		err = ws.Do(id, func(e *record.Editor) error {
			return applyPatientForm(e, form)
		})
	}

	respond(c, s, ws, id, err, actionResult{Success: "Patient details updated"})
}

func applyPatientForm(e *record.Editor, form url.Values) error {
	for _, field := range record.PatientFields {
		values, ok := form[field.String()]
		if !ok || len(values) == 0 {
			continue
		}

		if err := e.SetPatientField(field, values[0]); err != nil {
			return err
		}
	}

	return nil
}

// AddTestRow appends an empty test row to the draft.
func AddTestRow(c flamego.Context, s session.Session, ws *preview.Workspace) {
	var index int

	id, err := previewID(c)
	if err == nil {
		err = ws.Do(id, func(e *record.Editor) error {
			var err error
			index, err = e.AddTest()

			return err
		})
	}

	result := actionResult{Success: "Test row added"}
	if err == nil {
		result.Index = &index
	}

	respond(c, s, ws, id, err, result)
}

// UpdateTestRow applies every posted test field to one row of the draft.
func UpdateTestRow(c flamego.Context, s session.Session, ws *preview.Workspace) {
	var update record.StatusUpdate

	id, err := previewID(c)

	var index int
	if err == nil {
		index, err = testIndex(c)
	}

	if err == nil {
		err = parseForm(c)
	}

	if err == nil {
		err = ws.Do(id, func(e *record.Editor) error {
			var err error
			update, err = applyTestForm(e, index, c.Request().PostForm)

			return err
		})
	}

	respond(c, s, ws, id, err, testUpdateResult(update, "Test updated"))
}

// applyTestForm sets each posted field on the row. The outcome is that of
// the last numeric field set, since each numeric edit reclassifies from all
// current values.
func applyTestForm(e *record.Editor, index int, form url.Values) (record.StatusUpdate, error) {
	outcome := record.StatusUntouched

	for _, field := range record.TestFields {
		values, ok := form[field.String()]
		if !ok || len(values) == 0 {
			continue
		}

		update, err := e.SetTestField(index, field, values[0])
		if err != nil {
			return outcome, err
		}

		if update != record.StatusUntouched {
			outcome = update
		}
	}

	return outcome, nil
}

func testUpdateResult(update record.StatusUpdate, success string) actionResult {
	result := actionResult{Success: success, Update: &update}
	if update == record.StatusParseSkipped {
		result.Warning = parseSkippedWarning
	}

	return result
}

// RemoveTestRow deletes one row from the draft.
func RemoveTestRow(c flamego.Context, s session.Session, ws *preview.Workspace) {
	id, err := previewID(c)

	var index int
	if err == nil {
		index, err = testIndex(c)
	}

	if err == nil {
		err = ws.Do(id, func(e *record.Editor) error {
			return e.RemoveTest(index)
		})
	}

	respond(c, s, ws, id, err, actionResult{Success: "Test row removed"})
}

// ApplyReferenceRange fills a row's bounds from the reference catalog for
// the patient's age and gender. A bound the catalog does not define is
// cleared, so the row never mixes bounds of two tests.
func ApplyReferenceRange(c flamego.Context, s session.Session, ws *preview.Workspace) {
	var update record.StatusUpdate

	id, err := previewID(c)

	var index int
	if err == nil {
		index, err = testIndex(c)
	}

	if err == nil {
		err = ws.Do(id, func(e *record.Editor) error {
			var err error
			update, err = applyReferenceRange(c, e, index)

			return err
		})
	}

	respond(c, s, ws, id, err, testUpdateResult(update, "Reference range applied"))
}

func applyReferenceRange(c flamego.Context, e *record.Editor, index int) (record.StatusUpdate, error) {
	draft, ok := e.Draft()
	if !ok {
		return record.StatusUntouched, fmt.Errorf("%w: applying reference range", record.ErrInvalidState)
	}

	if index < 0 || index >= len(draft.Tests) {
		return record.StatusUntouched, fmt.Errorf("%w: index %d, %d tests", record.ErrIndexOutOfRange, index, len(draft.Tests))
	}

	test := draft.Tests[index]

	rr, err := db.LookupReferenceRange(c.Request().Context(), test.Name,
		db.AgeRangeForText(draft.Age), db.GenderFor(draft.Gender))
	if err != nil {
		return record.StatusUntouched, fmt.Errorf("failed to look up reference range: %w", err)
	}

	if rr == nil {
		return record.StatusUntouched, fmt.Errorf("%w: %q", errNoReferenceRange, test.Name)
	}

	low, high := rr.Bounds()
	update := record.StatusUntouched

	bounds := []struct {
		field record.TestField
		value string
	}{
		{field: record.TestLow, value: low},
		{field: record.TestHigh, value: high},
	}

	for _, bound := range bounds {
		u, err := e.SetTestField(index, bound.field, bound.value)
		if err != nil {
			return update, err
		}

		update = u
	}

	return update, nil
}

// fieldEvent is a single field edit sent by the preview script.
type fieldEvent struct {
	Kind  string `json:"kind"`
	Index *int   `json:"index,omitempty"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// UpdateField applies one field event and answers with the new snapshot and
// the status outcome.
func UpdateField(c flamego.Context, s session.Session, ws *preview.Workspace) {
	var update record.StatusUpdate

	id, err := previewID(c)

	var event fieldEvent
	if err == nil {
		err = decodeFieldEvent(c, &event)
	}

	if err == nil {
		err = ws.Do(id, func(e *record.Editor) error {
			var err error
			update, err = applyFieldEvent(e, event)

			return err
		})
	}

	respond(c, s, ws, id, err, testUpdateResult(update, ""))
}

func decodeFieldEvent(c flamego.Context, event *fieldEvent) error {
	decoder := json.NewDecoder(c.Request().Body().ReadCloser())
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(event); err != nil {
		return fmt.Errorf("%w: %w", errMalformedFieldEvent, err)
	}

	return nil
}

func applyFieldEvent(e *record.Editor, event fieldEvent) (record.StatusUpdate, error) {
	switch event.Kind {
	case "patient":
		field, err := record.ParsePatientField(event.Field)
		if err != nil {
			return record.StatusUntouched, err
		}

		return record.StatusUntouched, e.SetPatientField(field, event.Value)
	case "test":
		if event.Index == nil {
			return record.StatusUntouched, fmt.Errorf("%w: test event without index", errMalformedFieldEvent)
		}

		field, err := record.ParseTestField(event.Field)
		if err != nil {
			return record.StatusUntouched, err
		}

		return e.SetTestField(*event.Index, field, event.Value)
	}

	return record.StatusUntouched, fmt.Errorf("%w: unknown kind %q", errMalformedFieldEvent, event.Kind)
}
