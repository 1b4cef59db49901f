package circuit

import (
	"github.com/mzangs/feedersolve/internal/consts"
	"github.com/mzangs/feedersolve/pkg/phasor"
)

// Resistor is the passive linear element: it owns an impedance and
// implements directional impedance aggregation plus the per-sweep
// voltage/current update (spec §4.4, §4.5).
type Resistor struct {
	BaseElement
	impedanceBeyond phasor.C // one-slot cache, spec §4.4 step 5
}

var _ Element = (*Resistor)(nil)

func newResistor(c *Circuit, index int, vcc, vss phasor.C) *Resistor {
	return &Resistor{BaseElement: newBaseElement(c, index, consts.TypeResistor, vcc, vss)}
}

// NewResistor adds a new Resistor to the circuit and returns it.
func NewResistor(c *Circuit, vcc, vss phasor.C) *Resistor {
	r := newResistor(c, c.nextIndex(), vcc, vss)
	c.register(r)
	return r
}

// ImpedanceInDirectionOf implements spec §4.4's recursive aggregation.
func (r *Resistor) ImpedanceInDirectionOf(side string) phasor.C {
	if r.Impedance().IsOpen() {
		return phasor.Open
	}

	elements := r.connectedElements(side)
	var remaining []Element
	for _, el := range elements {
		if el.Impedance().IsOpen() {
			continue
		}
		remaining = append(remaining, el)
	}
	if len(remaining) == 0 {
		return phasor.Open
	}

	var beyond phasor.C
	if len(remaining) > 1 {
		beyond = parallelImpedance(remaining, side)
	} else {
		beyond = remaining[0].ImpedanceInDirectionOf(side)
	}

	r.impedanceBeyond = beyond
	return phasor.Add(beyond, r.Impedance())
}

// parallelImpedance computes Π Zᵢ / Σ Zᵢ over neighbour impedances,
// recursively obtained (spec §4.4 step 4).
func parallelImpedance(elements []Element, side string) phasor.C {
	numerator := phasor.C{Re: 1, Im: 0}
	denominator := phasor.Zero
	for _, el := range elements {
		z := el.ImpedanceInDirectionOf(side)
		numerator = phasor.Mul(numerator, z)
		denominator = phasor.Add(denominator, z)
	}
	if numerator.IsOpen() {
		return phasor.Open
	}
	if denominator.IsZero() {
		return phasor.Open
	}
	return phasor.Div(numerator, denominator)
}

// NewState implements spec §4.5's decision table. When the impedance
// looking beyond a side is open, current stays zero. The opposite side
// then takes the known side's voltage unchanged (no current, no drop),
// unless the resistor's own impedance is open, in which case the
// opposite side's voltage is left untouched.
func (r *Resistor) NewState() ([]int, error) {
	var next []int
	current := phasor.Zero

	leftGiven := r.IsPortParameterFixed(consts.Left, consts.Voltage)
	rightGiven := r.IsPortParameterFixed(consts.Right, consts.Voltage)
	impedance := r.Impedance()

	switch {
	case leftGiven && rightGiven:
		if !impedance.IsOpen() {
			vl := r.GetPortParameter(consts.Left, consts.Voltage)
			vr := r.GetPortParameter(consts.Right, consts.Voltage)
			current = phasor.Div(phasor.Sub(vl, vr), impedance)
		}

	case leftGiven:
		total := r.ImpedanceInDirectionOf(consts.Right)
		vl := r.GetPortParameter(consts.Left, consts.Voltage)
		if !total.IsOpen() {
			current = phasor.Div(phasor.Sub(vl, r.vss), total)
			newV := phasor.Sub(vl, phasor.Mul(current, impedance))
			r.SetPortParameter(consts.Right, consts.Voltage, newV)
		} else if !impedance.IsOpen() {
			r.SetPortParameter(consts.Right, consts.Voltage, vl)
		}
		next = indices(r.connectedElements(consts.Right))

	case rightGiven:
		total := r.ImpedanceInDirectionOf(consts.Left)
		vr := r.GetPortParameter(consts.Right, consts.Voltage)
		if !total.IsOpen() {
			current = phasor.Div(phasor.Sub(r.vcc, vr), total)
			newV := phasor.Add(vr, phasor.Mul(current, impedance))
			r.SetPortParameter(consts.Left, consts.Voltage, newV)
		} else if !impedance.IsOpen() {
			r.SetPortParameter(consts.Left, consts.Voltage, vr)
		}
		next = indices(r.connectedElements(consts.Left))

	default:
		leftSet := r.IsPortParameterSet(consts.Left, consts.Voltage)
		rightSet := r.IsPortParameterSet(consts.Right, consts.Voltage)

		switch {
		case leftSet && rightSet:
			return nil, newError(InvalidState, r.Name(), "both port voltages set")

		case leftSet:
			total := r.impedanceBeyondOrRecompute(consts.Right)
			vl := r.GetPortParameter(consts.Left, consts.Voltage)
			if !total.IsOpen() {
				current = phasor.Div(phasor.Sub(vl, r.vss), total)
				newV := phasor.Sub(vl, phasor.Mul(current, impedance))
				r.SetPortParameter(consts.Right, consts.Voltage, newV)
			} else if !impedance.IsOpen() {
				r.SetPortParameter(consts.Right, consts.Voltage, vl)
			}
			next = indices(r.connectedElements(consts.Right))

		case rightSet:
			total := r.impedanceBeyondOrRecompute(consts.Left)
			vr := r.GetPortParameter(consts.Right, consts.Voltage)
			if !total.IsOpen() {
				current = phasor.Div(phasor.Sub(r.vcc, vr), total)
				newV := phasor.Add(vr, phasor.Mul(current, impedance))
				r.SetPortParameter(consts.Left, consts.Voltage, newV)
			} else if !impedance.IsOpen() {
				r.SetPortParameter(consts.Left, consts.Voltage, vr)
			}
			next = indices(r.connectedElements(consts.Left))

		default:
			// Neither side given nor set: nothing to do this sweep.
		}
	}

	r.SetPortParameter(consts.Left, consts.Current, current)
	r.SetPortParameter(consts.Right, consts.Current, phasor.Neg(current))

	return next, nil
}

// impedanceBeyondOrRecompute reuses the one-slot cache from the last
// ImpedanceInDirectionOf call when it looks valid, else recomputes
// (spec §4.5 rows 5/6).
func (r *Resistor) impedanceBeyondOrRecompute(side string) phasor.C {
	if r.impedanceBeyond.Re != 0 && r.impedanceBeyond.Im != 0 {
		total := phasor.Add(r.Impedance(), r.impedanceBeyond)
		r.impedanceBeyond = phasor.Zero
		return total
	}
	return r.ImpedanceInDirectionOf(side)
}

func indices(elements []Element) []int {
	out := make([]int, len(elements))
	for i, el := range elements {
		out[i] = el.Index()
	}
	return out
}
