// Package logging writes the run report and the optional debug log.
// This file contains the aligned table used for per-entry measurements.

package logging

import (
	"fmt"
	"math"
	"strings"
)

// MetricRow is one labelled row of a MetricTable.
// Values are pre-formatted so rows can mix precisions.
type MetricRow struct {
	Label          string   // e.g. "Dominant"
	Values         []string // one per header column
	Unit           string   // e.g. "Hz", "" for unitless
	Interpretation string   // optional, column only shown when some row has one
}

// MetricTable lays out metrics in right-aligned value columns, one per
// header (e.g. Left, Right).
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// NewMetricTable creates an empty table with the given value columns.
func NewMetricTable(headers ...string) *MetricTable {
	return &MetricTable{Headers: headers}
}

// AddRow adds a row of pre-formatted values.
func (t *MetricTable) AddRow(label string, values []string, unit string, interpretation string) {
	t.Rows = append(t.Rows, MetricRow{
		Label:          label,
		Values:         values,
		Unit:           unit,
		Interpretation: interpretation,
	})
}

// AddMetricRow adds a row of numbers at the given precision. NaN and Inf
// render as MissingValue.
func (t *MetricTable) AddMetricRow(label string, values []float64, decimals int, unit string, interpretation string) {
	formatted := make([]string, len(values))
	for i, v := range values {
		formatted[i] = formatMetric(v, decimals)
	}
	t.AddRow(label, formatted, unit, interpretation)
}

// AddDBRow adds a row of dBFS values, showing the floor for silence.
func (t *MetricTable) AddDBRow(label string, values []float64, decimals int, interpretation string) {
	formatted := make([]string, len(values))
	for i, v := range values {
		formatted[i] = formatMetricDB(v, decimals)
	}
	t.AddRow(label, formatted, "dBFS", interpretation)
}

// String renders the table: a header line, then one line per row with the
// label left-aligned, values right-aligned, then unit and interpretation.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	labelWidth, unitWidth := 0, 0
	interpreted := false
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		labelWidth = max(labelWidth, len(row.Label))
		unitWidth = max(unitWidth, len(row.Unit))
		interpreted = interpreted || row.Interpretation != ""
		for i, v := range row.Values {
			if i < len(widths) {
				widths[i] = max(widths[i], len(v))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, h := range t.Headers {
		fmt.Fprintf(&sb, "%*s  ", widths[i], h)
	}
	if interpreted {
		if unitWidth > 0 {
			sb.WriteString(strings.Repeat(" ", unitWidth+1))
		}
		sb.WriteString("Interpretation")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		fmt.Fprintf(&sb, "%-*s  ", labelWidth, row.Label)
		for i := range t.Headers {
			v := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				v = row.Values[i]
			}
			fmt.Fprintf(&sb, "%*s  ", widths[i], v)
		}
		if unitWidth > 0 {
			fmt.Fprintf(&sb, "%-*s ", unitWidth, row.Unit)
		}
		sb.WriteString(row.Interpretation)
		sb.WriteString("\n")
	}

	// Rows without interpretation leave padding behind
	lines := strings.Split(sb.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

// MissingValue is shown for unavailable measurements
const MissingValue = "-"

// SilenceFloorDB is the level at or below which a signal counts as silent
const SilenceFloorDB = -120.0

func isDigitalSilence(value float64) bool {
	return math.IsInf(value, -1) || value <= SilenceFloorDB
}

// formatMetric formats value to decimals places, using scientific notation
// for tiny non-zero values.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	if value != 0 && math.Abs(value) < 0.0001 {
		return fmt.Sprintf("%.2e", value)
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatMetricDB formats a dBFS value, showing "< -120" for silence.
func formatMetricDB(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 1) {
		return MissingValue
	}
	if isDigitalSilence(value) {
		return "< -120"
	}
	return fmt.Sprintf("%.*f", decimals, value)
}
