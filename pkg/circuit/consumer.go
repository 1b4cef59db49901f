package circuit

import (
	"math"

	"github.com/mzangs/feedersolve/internal/consts"
	"github.com/mzangs/feedersolve/pkg/phasor"
)

// Consumer is a constant-apparent-power load (spec §4.6). Storage is a
// tag variant with identical numeric behaviour (spec §3).
type Consumer struct {
	BaseElement
	power Slot
}

var _ Element = (*Consumer)(nil)

func newConsumer(c *Circuit, index int, vcc, vss phasor.C, typeTag string) *Consumer {
	cons := &Consumer{BaseElement: newBaseElement(c, index, typeTag, vcc, vss)}
	cons.power = Slot{Name: consts.Power}
	cons.SetImpedance(phasor.Open)
	return cons
}

// NewConsumer adds a new Consumer to the circuit and returns it.
func NewConsumer(c *Circuit, vcc, vss phasor.C) *Consumer {
	cons := newConsumer(c, c.nextIndex(), vcc, vss, consts.TypeConsumer)
	c.register(cons)
	return cons
}

// NewStorage adds a new Storage-tagged Consumer to the circuit. Storage
// has no numeric behaviour distinct from Consumer in this core; the tag
// exists purely for external reporting (spec §3).
func NewStorage(c *Circuit, vcc, vss phasor.C) *Consumer {
	cons := newConsumer(c, c.nextIndex(), vcc, vss, consts.TypeStorage)
	c.register(cons)
	return cons
}

// IsStorage reports whether this Consumer carries the Storage tag.
func (cn *Consumer) IsStorage() bool { return cn.TypeTag() == consts.TypeStorage }

// Power returns the commanded complex power.
func (cn *Consumer) Power() phasor.C { return cn.power.Value }

// SetPower sets the commanded complex power directly.
func (cn *Consumer) SetPower(power phasor.C) { cn.power.Value = power }

// SetPowerFactor sets the commanded power from (real watts, power
// factor, inductive flag), per spec §4.6: S = P·pf + j·sign·√(P² −
// (P·pf)²), sign = +1 if inductive else -1. Returns an InvalidInput
// error if pf is outside [0,1], leaving the commanded power unchanged.
func (cn *Consumer) SetPowerFactor(watts, powerFactor float64, inductive bool) error {
	if powerFactor < 0 || powerFactor > 1.0 {
		return newError(InvalidInput, cn.Name(), "power factor must lie in [0,1]")
	}
	truePower := watts * powerFactor
	reactive := math.Sqrt(watts*watts - truePower*truePower)
	if !inductive {
		reactive = -reactive
	}
	cn.SetPower(phasor.C{Re: truePower, Im: reactive})
	return nil
}

// ImpedanceInDirectionOf implements spec §4.6's asymmetric split: the
// load is modelled as two half-impedances hinged at the reference
// rails.
func (cn *Consumer) ImpedanceInDirectionOf(side string) phasor.C {
	if cn.Power().IsZero() {
		return phasor.Open
	}
	leftCurrent := cn.GetPortParameter(consts.Left, consts.Current)
	if leftCurrent.IsZero() {
		return phasor.Open
	}
	if side == consts.Right {
		vl := cn.GetPortParameter(consts.Left, consts.Voltage)
		return phasor.Div(phasor.Sub(vl, cn.vss), leftCurrent)
	}
	vr := cn.GetPortParameter(consts.Right, consts.Voltage)
	return phasor.Div(phasor.Sub(cn.vcc, vr), leftCurrent)
}

// NewState implements spec §4.6's per-sweep update. The load terminates
// propagation on its branch for this sweep: it always emits no next
// elements.
func (cn *Consumer) NewState() ([]int, error) {
	leftKnown := cn.IsPortParameterFixed(consts.Left, consts.Voltage) || cn.IsPortParameterSet(consts.Left, consts.Voltage)
	rightKnown := cn.IsPortParameterFixed(consts.Right, consts.Voltage) || cn.IsPortParameterSet(consts.Right, consts.Voltage)
	if !(leftKnown && rightKnown) {
		return nil, nil
	}

	newImpedance := phasor.Open
	current := phasor.Zero

	if !cn.Power().IsZero() {
		vl := cn.GetPortParameter(consts.Left, consts.Voltage)
		vr := cn.GetPortParameter(consts.Right, consts.Voltage)
		diff := phasor.Sub(vl, vr)
		// Open question §9.1: no power-factor rotation is applied —
		// the magnitude-only formula is reproduced bit-for-bit from
		// the reference.
		magnitude := phasor.AbsSquared(diff) / phasor.Abs(cn.Power())
		newImpedance = phasor.C{Re: magnitude, Im: 0}
		current = phasor.Div(diff, newImpedance)
	}

	cn.SetImpedance(newImpedance)
	cn.SetPortParameter(consts.Left, consts.Current, current)
	cn.SetPortParameter(consts.Right, consts.Current, phasor.Neg(current))

	return nil, nil
}
