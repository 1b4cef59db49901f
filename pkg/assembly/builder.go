// Package assembly implements the linear-feeder-description construction
// recipe of spec §4.8/§6: it turns a list of per-phase feeder segments,
// loads, and a shared return line into the element graph the circuit
// package's Evaluator runs on.
package assembly

import (
	"fmt"
	"math"

	"github.com/mzangs/feedersolve/internal/consts"
	"github.com/mzangs/feedersolve/pkg/circuit"
	"github.com/mzangs/feedersolve/pkg/phasor"
)

type loadSpec struct {
	power   phasor.C
	storage bool
}

// Builder accumulates a linear feeder description and assembles it into
// a circuit.Circuit on Build (spec §4.8).
type Builder struct {
	phases int
	vcc    phasor.C
	vss    phasor.C

	feederImpedances map[int][]phasor.C
	returnImpedances []phasor.C
	loads            map[int][]loadSpec
	connectionOrder  []int // phase per tap, in global connection order
}

// NewBuilder returns a Builder for a P-phase feeder with source vcc and
// sink vss (spec §6 "Construct with (phases, vcc, vss)").
func NewBuilder(phases int, vcc, vss phasor.C) *Builder {
	return &Builder{
		phases:           phases,
		vcc:              vcc,
		vss:              vss,
		feederImpedances: make(map[int][]phasor.C),
		loads:            make(map[int][]loadSpec),
	}
}

func (b *Builder) phaseOK(phase int) bool {
	return phase >= 1 && phase <= b.phases
}

// AddFeederImpedance appends a feeder-segment impedance to phase (spec
// §6). phase is 1-indexed.
func (b *Builder) AddFeederImpedance(phase int, z phasor.C) error {
	if !b.phaseOK(phase) {
		return &circuit.Error{Kind: circuit.InvalidInput, Message: fmt.Sprintf("assembly: phase %d out of range [1,%d]", phase, b.phases)}
	}
	b.feederImpedances[phase] = append(b.feederImpedances[phase], z)
	return nil
}

// AddReturnImpedance appends a return-line segment impedance. The order
// of these calls must match the global connection order established by
// AddLoad/AddLoadFactor calls 1-to-1 (spec §4.8, §6).
func (b *Builder) AddReturnImpedance(z phasor.C) {
	b.returnImpedances = append(b.returnImpedances, z)
}

// AddLoad appends a complex-power load to phase, defining its position
// in the global connection order (spec §6).
func (b *Builder) AddLoad(phase int, power phasor.C) error {
	return b.addLoad(phase, power, false)
}

// AddLoadFactor appends a load built from (real watts, power factor,
// inductive flag) per spec §4.6's S = P·pf + j·sign·√(P² − (P·pf)²).
func (b *Builder) AddLoadFactor(phase int, watts, powerFactor float64, inductive bool) error {
	power, err := powerFromFactor(watts, powerFactor, inductive)
	if err != nil {
		return err
	}
	return b.addLoad(phase, power, false)
}

// AddStorageLoad is AddLoad for a Storage-tagged consumer (spec §3:
// identical numeric behaviour, distinguished only for reporting).
func (b *Builder) AddStorageLoad(phase int, power phasor.C) error {
	return b.addLoad(phase, power, true)
}

// AddStorageLoadFactor is AddLoadFactor for a Storage-tagged consumer.
func (b *Builder) AddStorageLoadFactor(phase int, watts, powerFactor float64, inductive bool) error {
	power, err := powerFromFactor(watts, powerFactor, inductive)
	if err != nil {
		return err
	}
	return b.addLoad(phase, power, true)
}

func (b *Builder) addLoad(phase int, power phasor.C, storage bool) error {
	if !b.phaseOK(phase) {
		return &circuit.Error{Kind: circuit.InvalidInput, Message: fmt.Sprintf("assembly: phase %d out of range [1,%d]", phase, b.phases)}
	}
	b.loads[phase] = append(b.loads[phase], loadSpec{power: power, storage: storage})
	b.connectionOrder = append(b.connectionOrder, phase)
	return nil
}

func powerFromFactor(watts, powerFactor float64, inductive bool) (phasor.C, error) {
	if powerFactor < 0 || powerFactor > 1.0 {
		return phasor.C{}, &circuit.Error{Kind: circuit.InvalidInput, Message: fmt.Sprintf("assembly: power factor %v must lie in [0,1]", powerFactor)}
	}
	truePower := watts * powerFactor
	reactive := math.Sqrt(watts*watts - truePower*truePower)
	if !inductive {
		reactive = -reactive
	}
	return phasor.C{Re: truePower, Im: reactive}, nil
}

// phaseVoltage computes the p-th phase's rotated source voltage (spec
// §4.8 step 2): θ = 2π·p/P, φ = atan(vcc.im/vcc.re), offset by π when
// vcc.im is 0 and vcc.re < 0.
func phaseVoltage(vcc phasor.C, phases, p int) phasor.C {
	theta := 2 * math.Pi / float64(phases)
	phi := math.Atan(vcc.Im / vcc.Re)
	if vcc.Im == 0 && vcc.Re < 0 {
		phi = math.Pi
	}
	angle := theta*float64(p) + phi
	return phasor.FromPolar(phasor.Abs(vcc), angle)
}

// Build validates the accumulated topology (spec §4.7 step 1) and
// assembles it into a circuit.Circuit and circuit.Evaluator, following
// the construction recipe of spec §4.8.
func (b *Builder) Build() (*circuit.Circuit, *circuit.Evaluator, error) {
	feederCounts := make(map[int]int, b.phases)
	loadCounts := make(map[int]int, b.phases)
	for phase := 1; phase <= b.phases; phase++ {
		feederCounts[phase] = len(b.feederImpedances[phase])
		loadCounts[phase] = len(b.loads[phase])
	}
	if err := circuit.ValidateTopology(feederCounts, loadCounts, len(b.returnImpedances)); err != nil {
		return nil, nil, err
	}

	c := circuit.NewCircuit()
	ev := circuit.NewEvaluator(c)
	ev.SetReturnSegments(len(b.returnImpedances))

	// Step 1: build the return line.
	returnResistors := make([]*circuit.Resistor, len(b.returnImpedances))
	for i, z := range b.returnImpedances {
		phase := b.connectionOrder[i]
		pv := phaseVoltage(b.vcc, b.phases, phase-1)
		r := circuit.NewResistor(c, pv, b.vss)
		r.SetImpedance(z)

		if i > 0 {
			if err := circuit.Connect(r, consts.Right, returnResistors[i-1], consts.Left); err != nil {
				return nil, nil, err
			}
		} else {
			r.SetPortParameter(consts.Right, consts.Voltage, b.vss)
			r.FixPortParameter(consts.Right, consts.Voltage, true)
			c.MarkEntry(r)
		}
		returnResistors[i] = r
	}

	// Step 2/3: one phase at a time, weave consumers and feeders into
	// the return line at their tap position in the global connection
	// order.
	var lastFeeder *circuit.Resistor
	for phase := 1; phase <= b.phases; phase++ {
		pv := phaseVoltage(b.vcc, b.phases, phase-1)
		lastFeeder = nil
		connIdx := 0

		for tapIdx, tapPhase := range b.connectionOrder {
			if tapPhase != phase {
				continue
			}

			spec := b.loads[phase][connIdx]
			var consumer *circuit.Consumer
			if spec.storage {
				consumer = circuit.NewStorage(c, pv, b.vss)
			} else {
				consumer = circuit.NewConsumer(c, pv, b.vss)
			}
			consumer.SetPower(spec.power)

			if err := circuit.Connect(consumer, consts.Right, returnResistors[tapIdx], consts.Left); err != nil {
				return nil, nil, err
			}
			if tapIdx < len(returnResistors)-1 {
				if err := circuit.Connect(consumer, consts.Right, returnResistors[tapIdx+1], consts.Right); err != nil {
					return nil, nil, err
				}
			}

			feeder := circuit.NewResistor(c, pv, b.vss)
			feeder.SetImpedance(b.feederImpedances[phase][connIdx])
			if err := circuit.Connect(feeder, consts.Right, consumer, consts.Left); err != nil {
				return nil, nil, err
			}

			if connIdx > 0 {
				if err := circuit.Connect(feeder, consts.Left, lastFeeder, consts.Right); err != nil {
					return nil, nil, err
				}
			} else {
				feeder.SetPortParameter(consts.Left, consts.Voltage, pv)
				feeder.FixPortParameter(consts.Left, consts.Voltage, true)
				c.MarkEntry(feeder)
			}

			lastFeeder = feeder
			connIdx++
		}
	}

	return c, ev, nil
}
