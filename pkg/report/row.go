// Package report implements the row output format of spec §6: per
// Consumer (excluding Storage) or per boundary-fixed Resistor, the
// element's port voltages, current, derived impedance and power —
// specified here so a downstream CSV writer (out of scope for this
// core) agrees with the evaluator on what is exposed.
package report

import (
	"github.com/mzangs/feedersolve/internal/consts"
	"github.com/mzangs/feedersolve/pkg/circuit"
	"github.com/mzangs/feedersolve/pkg/phasor"
)

// Row is one reportable element's read-out (spec §6).
type Row struct {
	Name string
	VL   phasor.C
	VR   phasor.C
	I    phasor.C
	Z    phasor.C
	S    phasor.C
}

// Rows builds the report rows for elements: every Consumer that is not
// Storage-tagged, plus every Resistor with a boundary-fixed port
// voltage (the entry elements the assembly recipe marks, spec §4.8).
func Rows(elements []circuit.Element) []Row {
	var rows []Row
	for _, el := range elements {
		switch v := el.(type) {
		case *circuit.Consumer:
			if v.IsStorage() {
				continue
			}
			rows = append(rows, rowFor(el))
		case *circuit.Resistor:
			if el.IsPortParameterFixed(consts.Left, consts.Voltage) ||
				el.IsPortParameterFixed(consts.Right, consts.Voltage) {
				rows = append(rows, rowFor(el))
			}
		}
	}
	return rows
}

func rowFor(el circuit.Element) Row {
	vl := el.GetPortParameter(consts.Left, consts.Voltage)
	vr := el.GetPortParameter(consts.Right, consts.Voltage)
	i := el.GetPortParameter(consts.Left, consts.Current)

	z := phasor.Open
	s := phasor.Zero
	if !i.IsZero() {
		z = phasor.Div(phasor.Sub(vl, vr), i)
		s = phasor.Mul(phasor.Sub(vl, vr), i)
	}

	return Row{Name: el.Name(), VL: vl, VR: vr, I: i, Z: z, S: s}
}

// Magnitudes returns the row's (V_l, V_r, I, Z, S) as real-valued
// magnitudes, per spec §6's "real-valued magnitudes" rendering.
func (r Row) Magnitudes() (vl, vr, i, z, s float64) {
	return phasor.Abs(r.VL), phasor.Abs(r.VR), phasor.Abs(r.I), phasor.Abs(r.Z), phasor.Abs(r.S)
}
