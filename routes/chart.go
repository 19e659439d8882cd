/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/flamego/flamego"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/humaidq/labsight/db"
	"github.com/humaidq/labsight/preview"
	"github.com/humaidq/labsight/record"
)

// chartColors follow the status colours of the preview table.
var chartColors = map[record.Status]string{
	record.StatusLow:    "#dc3545",
	record.StatusHigh:   "#fd7e14",
	record.StatusNormal: "#198754",
}

// renderTestChart draws a test's result as a bar with its bounds as mark
// lines. The y-axis is widened to show both bounds and the result. When the
// catalog range has an optimal band its edges are drawn as well.
func renderTestChart(test record.TestRecord, catalog *db.ReferenceRange) (string, error) {
	result, ok := record.ParseNumber(test.Result)
	if !ok {
		return "", fmt.Errorf("%w: %q", errResultNotNumeric, test.Result)
	}

	low, hasLow := record.ParseNumber(test.Low)
	high, hasHigh := record.ParseNumber(test.High)

	var yAxisMin, yAxisMax interface{}

	if hasLow && hasHigh {
		dataMin, dataMax := min(low, result), max(high, result)
		padding := (dataMax - dataMin) * 0.1

		yAxisMin = dataMin - padding
		if dataMin >= 0 {
			yAxisMin = max(0, dataMin-padding)
		}
		yAxisMax = dataMax + padding
	}

	name := test.Name
	if name == "" {
		name = "Test"
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    name,
			Subtitle: statusLabel(test.Status),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: test.Unit,
			Min:  yAxisMin,
			Max:  yAxisMax,
		}),
	)

	var markLineItems []interface{}
	if hasLow {
		markLineItems = append(markLineItems, opts.MarkLineNameYAxisItem{Name: "Low", YAxis: low})
	}

	if hasHigh {
		markLineItems = append(markLineItems, opts.MarkLineNameYAxisItem{Name: "High", YAxis: high})
	}

	markLineItems = append(markLineItems, optimalMarkLines(catalog)...)

	color, ok := chartColors[test.Status]
	if !ok {
		color = "#6c757d"
	}

	seriesOpts := []charts.SeriesOpts{
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
	}

	if len(markLineItems) > 0 {
		seriesOpts = append(seriesOpts, func(s *charts.SingleSeries) {
			s.MarkLines = &opts.MarkLines{
				Data: markLineItems,
				MarkLineStyle: opts.MarkLineStyle{
					Symbol: []string{"none", "none"},
					LineStyle: &opts.LineStyle{
						Color: "rgba(128, 128, 128, 0.6)",
						Type:  "dashed",
						Width: 1.5,
					},
				},
			}
		})
	}

	bar.SetXAxis([]string{name}).
		AddSeries(name, []opts.BarData{{Value: result}}).
		SetSeriesOptions(seriesOpts...)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	return buf.String(), nil
}

func optimalMarkLines(catalog *db.ReferenceRange) []interface{} {
	if catalog == nil {
		return nil
	}

	_, _, optMin, optMax, hasOptimal := catalog.GetDisplayRange()
	if !hasOptimal {
		return nil
	}

	var items []interface{}

	// A zero lower edge only restates the axis.
	if optMin != nil && *optMin != 0 {
		items = append(items, opts.MarkLineNameYAxisItem{Name: "Opt Min", YAxis: *optMin})
	}

	if optMax != nil {
		items = append(items, opts.MarkLineNameYAxisItem{Name: "Opt Max", YAxis: *optMax})
	}

	return items
}

// catalogRange looks up the catalog range for a test of rec. Lookup
// failures only cost the optimal band, so they are logged and dropped.
func catalogRange(c flamego.Context, rec record.PatientRecord, test record.TestRecord) *db.ReferenceRange {
	rng, err := db.LookupReferenceRange(c.Request().Context(), test.Name, db.AgeRangeForText(rec.Age), db.GenderFor(rec.Gender))
	if err != nil {
		logger.Warn("Failed to look up reference range for chart", "test", test.Name, "error", err)
		return nil
	}

	return rng
}

// TestChart serves a standalone chart page for one test row of the record
// currently shown.
func TestChart(c flamego.Context, ws *preview.Workspace) {
	id, err := previewID(c)

	var index int
	if err == nil {
		index, err = testIndex(c)
	}

	var snap preview.Snapshot
	if err == nil {
		snap, err = ws.View(id)
	}

	if err == nil && (index < 0 || index >= len(snap.Record.Tests)) {
		err = fmt.Errorf("%w: index %d, %d tests", record.ErrIndexOutOfRange, index, len(snap.Record.Tests))
	}

	var page string
	if err == nil {
		test := snap.Record.Tests[index]
		page, err = renderTestChart(test, catalogRange(c, snap.Record, test))
	}

	if err != nil {
		logActionError(c, err)
		http.Error(c.ResponseWriter(), userMessage(err), httpStatus(err))

		return
	}

	c.ResponseWriter().Header().Set("Content-Type", "text/html; charset=utf-8")

	if _, err := c.ResponseWriter().Write([]byte(page)); err != nil {
		logger.Warn("Failed to write chart", "error", err)
	}
}
