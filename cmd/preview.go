/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/labsight/record"
)

var CmdPreview = &cli.Command{
	Name:  "preview",
	Usage: "Render the sample lab report in the terminal, optionally after edits",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "edit a test field, INDEX:FIELD=VALUE (fields: name, result, unit, low, high)",
		},
		&cli.StringSliceFlag{
			Name:  "patient",
			Usage: "edit a patient field, FIELD=VALUE (fields: name, age, gender, labRef, packageName)",
		},
		&cli.IntFlag{
			Name:  "add",
			Usage: "append this many empty tests before --set edits are applied",
		},
		&cli.StringSliceFlag{
			Name:  "remove",
			Usage: "remove the test at INDEX after --set edits are applied",
		},
		&cli.BoolFlag{
			Name:  "discard",
			Usage: "discard the edits instead of saving them",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the record as JSON",
		},
	},
	Action: runPreview,
}

type testEdit struct {
	Index int
	Field record.TestField
	Value string
}

type patientEdit struct {
	Field record.PatientField
	Value string
}

// editPlan is the set of edits applied in one editing cycle.
type editPlan struct {
	Patient []patientEdit
	Add     int
	Tests   []testEdit
	Remove  []int
	Discard bool
}

func (p editPlan) empty() bool {
	return len(p.Patient) == 0 && p.Add == 0 && len(p.Tests) == 0 && len(p.Remove) == 0
}

// parseTestEdit parses INDEX:FIELD=VALUE. VALUE may be empty and may
// contain '='.
func parseTestEdit(raw string) (testEdit, error) {
	target, value, ok := strings.Cut(raw, "=")
	if !ok {
		return testEdit{}, fmt.Errorf("%w: %q", errInvalidEdit, raw)
	}

	indexText, fieldText, ok := strings.Cut(target, ":")
	if !ok {
		return testEdit{}, fmt.Errorf("%w: %q", errInvalidEdit, raw)
	}

	index, err := strconv.Atoi(strings.TrimSpace(indexText))
	if err != nil {
		return testEdit{}, fmt.Errorf("%w: %q", errInvalidEdit, raw)
	}

	field, err := record.ParseTestField(fieldText)
	if err != nil {
		return testEdit{}, err
	}

	return testEdit{Index: index, Field: field, Value: value}, nil
}

func parsePatientEdit(raw string) (patientEdit, error) {
	key, value, ok := strings.Cut(raw, "=")
	if !ok {
		return patientEdit{}, fmt.Errorf("%w: %q", errInvalidPatientEdit, raw)
	}

	field, err := record.ParsePatientField(key)
	if err != nil {
		return patientEdit{}, err
	}

	return patientEdit{Field: field, Value: value}, nil
}

// parseRemoveIndexes returns the indexes highest first so each removal
// leaves the remaining indexes pointing at the rows the user named.
func parseRemoveIndexes(raw []string) ([]int, error) {
	indexes := make([]int, 0, len(raw))

	for _, r := range raw {
		index, err := strconv.Atoi(strings.TrimSpace(r))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errInvalidRemoveIndex, r)
		}

		indexes = append(indexes, index)
	}

	slices.Sort(indexes)
	indexes = slices.Compact(indexes)
	slices.Reverse(indexes)

	return indexes, nil
}

func planFromFlags(cmd *cli.Command) (editPlan, error) {
	plan := editPlan{
		Add:     int(cmd.Int("add")),
		Discard: cmd.Bool("discard"),
	}

	for _, raw := range cmd.StringSlice("patient") {
		edit, err := parsePatientEdit(raw)
		if err != nil {
			return editPlan{}, err
		}

		plan.Patient = append(plan.Patient, edit)
	}

	for _, raw := range cmd.StringSlice("set") {
		edit, err := parseTestEdit(raw)
		if err != nil {
			return editPlan{}, err
		}

		plan.Tests = append(plan.Tests, edit)
	}

	remove, err := parseRemoveIndexes(cmd.StringSlice("remove"))
	if err != nil {
		return editPlan{}, err
	}

	plan.Remove = remove

	return plan, nil
}

// applyPlan runs one full editing cycle on ed and returns a note per test
// edit describing what happened to the status.
func applyPlan(ed *record.Editor, plan editPlan) ([]string, error) {
	if plan.empty() && !plan.Discard {
		return nil, nil
	}

	if err := ed.BeginEdit(); err != nil {
		return nil, err
	}

	for _, edit := range plan.Patient {
		if err := ed.SetPatientField(edit.Field, edit.Value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", edit.Field, err)
		}
	}

	for range plan.Add {
		if _, err := ed.AddTest(); err != nil {
			return nil, fmt.Errorf("failed to add test: %w", err)
		}
	}

	var notes []string

	for _, edit := range plan.Tests {
		update, err := ed.SetTestField(edit.Index, edit.Field, edit.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to set test %d %s: %w", edit.Index, edit.Field, err)
		}

		switch update {
		case record.StatusRecomputed:
			draft, _ := ed.Draft()
			notes = append(notes, fmt.Sprintf("test %d: status recomputed as %s", edit.Index, draft.Tests[edit.Index].Status))
		case record.StatusParseSkipped:
			notes = append(notes, fmt.Sprintf("test %d: values are not all numeric, status kept", edit.Index))
		}
	}

	for _, index := range plan.Remove {
		if err := ed.RemoveTest(index); err != nil {
			return nil, fmt.Errorf("failed to remove test %d: %w", index, err)
		}
	}

	if plan.Discard {
		if err := ed.Discard(); err != nil {
			return nil, err
		}

		return append(notes, "edits discarded"), nil
	}

	if err := ed.Commit(); err != nil {
		return nil, err
	}

	return notes, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	statusStyles = map[record.Status]lipgloss.Style{
		record.StatusLow:    cellStyle.Foreground(lipgloss.Color("1")),
		record.StatusHigh:   cellStyle.Foreground(lipgloss.Color("3")),
		record.StatusNormal: cellStyle.Foreground(lipgloss.Color("2")),
	}
)

const statusColumn = 5

// renderRecord formats the patient header, a table of tests and a summary
// line.
func renderRecord(rec record.PatientRecord) string {
	var b strings.Builder

	fmt.Fprintln(&b, titleStyle.Render(displayValue(rec.Name)))

	for _, field := range record.PatientFields[1:] {
		fmt.Fprintf(&b, "%s %s\n", faintStyle.Render(field.String()+":"), displayValue(field.Get(rec)))
	}

	statuses := make([]record.Status, len(rec.Tests))
	rows := make([][]string, len(rec.Tests))

	for i, t := range rec.Tests {
		statuses[i] = t.Status
		rows[i] = []string{strconv.Itoa(i), t.Name, t.Result, t.Unit, referenceText(t), string(t.Status)}
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(faintStyle).
		Headers("#", "Test", "Result", "Unit", "Reference", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			if col == statusColumn && row >= 0 && row < len(statuses) {
				if style, ok := statusStyles[statuses[row]]; ok {
					return style
				}
			}

			return cellStyle
		})

	fmt.Fprintln(&b, tbl.Render())

	summary := record.Summarize(rec)
	fmt.Fprintln(&b, faintStyle.Render(fmt.Sprintf("%d tests, %d normal, %d low, %d high",
		summary.Total, summary.Normal, summary.Low, summary.High)))

	return b.String()
}

func referenceText(t record.TestRecord) string {
	switch {
	case t.Low != "" && t.High != "":
		return t.Low + " - " + t.High
	case t.Low != "":
		return "> " + t.Low
	case t.High != "":
		return "< " + t.High
	}

	return ""
}

func displayValue(v string) string {
	if v == "" {
		return "-"
	}

	return v
}

type previewOutput struct {
	Record  record.PatientRecord `json:"record"`
	Summary record.SummaryReport `json:"summary"`
	Notes   []string             `json:"notes,omitempty"`
}

func runPreview(_ context.Context, cmd *cli.Command) error {
	plan, err := planFromFlags(cmd)
	if err != nil {
		return err
	}

	ed := record.NewEditor(record.SampleRecord())

	notes, err := applyPlan(ed, plan)
	if err != nil {
		return err
	}

	return writePreview(commandWriter(cmd), ed.Current(), notes, cmd.Bool("json"))
}

func writePreview(w io.Writer, rec record.PatientRecord, notes []string, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(previewOutput{Record: rec, Summary: record.Summarize(rec).Report(), Notes: notes}); err != nil {
			return fmt.Errorf("failed to encode preview: %w", err)
		}

		return nil
	}

	for _, note := range notes {
		if _, err := fmt.Fprintln(w, faintStyle.Render(note)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, renderRecord(rec))

	return err
}

func commandWriter(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}

	return os.Stdout
}
