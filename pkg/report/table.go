package report

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mzangs/feedersolve/pkg/util"
)

// Table renders rows as a human-readable table, replacing the C++
// original's manually-padded `cout << setw(...)` verbose trace
// (original_source/DiCOMO/simulation.cpp) with the pack's table
// library. Voltage, current and power magnitudes carry an SI-prefixed
// unit suffix; Z is rendered by util.FormatMagnitude followed by "ohm".
func Table(rows []Row) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Element", "V_l", "V_r", "I", "Z", "S"})
	for _, r := range rows {
		vl, vr, i, z, s := r.Magnitudes()
		tw.AppendRow(table.Row{
			r.Name,
			util.FormatValueFactor(vl, "V"),
			util.FormatValueFactor(vr, "V"),
			util.FormatValueFactor(i, "A"),
			util.FormatMagnitude(z) + " ohm",
			util.FormatValueFactor(s, "VA"),
		})
	}
	tw.SetStyle(table.StyleLight)
	return tw.Render()
}
