package circuit

import (
	"fmt"

	"github.com/mzangs/feedersolve/internal/consts"
	"github.com/mzangs/feedersolve/pkg/phasor"
)

// Element is the capability interface every circuit element variant
// (Resistor, Consumer, Storage) implements (spec §3 "Element E").
type Element interface {
	Index() int
	Name() string
	TypeTag() string

	Port(side string) (*Port, error)
	GetPortParameter(side, name string) phasor.C
	SetPortParameter(side, name string, value phasor.C)
	FixPortParameter(side, name string, given bool)
	IsPortParameterSet(side, name string) bool
	IsPortParameterFixed(side, name string) bool

	// ImpedanceInDirectionOf returns the Thevenin-equivalent impedance
	// seen looking out of side, per spec §4.4/§4.6.
	ImpedanceInDirectionOf(side string) phasor.C

	// NewState runs one sweep's worth of update logic and returns the
	// element indices the evaluator should interrogate next.
	NewState() ([]int, error)

	// Impedance/SetImpedance expose the element-level impedance slot
	// (spec §3: "owned state slots (at least one: impedance)").
	Impedance() phasor.C
	SetImpedance(phasor.C)
}

// BaseElement implements the port/state mechanics shared by every
// element variant (spec §4.2, §4.3): identity, ports, connectivity, and
// parameter read/write with neighbour-voltage propagation. Resistor and
// Consumer embed it and add their own ImpedanceInDirectionOf/NewState.
type BaseElement struct {
	circuit *Circuit
	index   int
	typeTag string
	vcc     phasor.C
	vss     phasor.C
	ports   [2]Port
	imped   Slot
}

func newBaseElement(c *Circuit, index int, typeTag string, vcc, vss phasor.C) BaseElement {
	return BaseElement{
		circuit: c,
		index:   index,
		typeTag: typeTag,
		vcc:     vcc,
		vss:     vss,
		ports: [2]Port{
			newPort(index, consts.Left),
			newPort(index, consts.Right),
		},
		imped: Slot{Name: consts.Impedance, Value: phasor.Open},
	}
}

// Index returns the element's per-circuit index.
func (e *BaseElement) Index() int { return e.index }

// Name returns "{type}_{index}" (spec §6).
func (e *BaseElement) Name() string { return fmt.Sprintf("%s_%d", e.typeTag, e.index) }

// TypeTag returns the element's type tag.
func (e *BaseElement) TypeTag() string { return e.typeTag }

func (e *BaseElement) portIndex(side string) (int, error) {
	switch side {
	case consts.Left:
		return 0, nil
	case consts.Right:
		return 1, nil
	default:
		return -1, fmt.Errorf("%s: unknown port %q", e.Name(), side)
	}
}

// Port returns the element's named port.
func (e *BaseElement) Port(side string) (*Port, error) {
	i, err := e.portIndex(side)
	if err != nil {
		return nil, err
	}
	return &e.ports[i], nil
}

func (e *BaseElement) other(side string) string {
	if side == consts.Left {
		return consts.Right
	}
	return consts.Left
}

// SetPortParameter implements spec §4.2's setPortParameter, including
// the neighbour-voltage propagation and the cross-slot isSet
// invalidation.
func (e *BaseElement) SetPortParameter(side, name string, value phasor.C) {
	p, err := e.Port(side)
	if err != nil {
		return
	}
	s := p.slot(name)
	if s == nil {
		return
	}
	if s.IsGiven() {
		return
	}
	s.Write(value)

	switch name {
	case consts.Voltage:
		for _, ref := range p.Neighbours {
			if e.circuit == nil {
				continue
			}
			neighbour, ok := e.circuit.element(ref.Element)
			if !ok {
				continue
			}
			np, err := neighbour.Port(ref.Side)
			if err != nil {
				continue
			}
			np.Voltage.Write(value)
		}
		if cur := p.slot(consts.Current); cur != nil && !cur.IsGiven() {
			cur.clearSet()
		}
	case consts.Current:
		if v := p.slot(consts.Voltage); v != nil && !v.IsGiven() {
			v.clearSet()
		}
	}
}

// GetPortParameter returns the slot's value, or the zero phasor if the
// slot does not exist (spec §4.2).
func (e *BaseElement) GetPortParameter(side, name string) phasor.C {
	p, err := e.Port(side)
	if err != nil {
		return zero
	}
	s := p.slot(name)
	if s == nil {
		return zero
	}
	return s.Value
}

// FixPortParameter sets the slot's isGiven flag.
func (e *BaseElement) FixPortParameter(side, name string, given bool) {
	p, err := e.Port(side)
	if err != nil {
		return
	}
	s := p.slot(name)
	if s == nil {
		return
	}
	s.Fix(given)
}

// IsPortParameterSet reports the slot's isSet flag.
func (e *BaseElement) IsPortParameterSet(side, name string) bool {
	p, err := e.Port(side)
	if err != nil {
		return false
	}
	s := p.slot(name)
	if s == nil {
		return false
	}
	return s.IsSet()
}

// IsPortParameterFixed reports the slot's isGiven flag.
func (e *BaseElement) IsPortParameterFixed(side, name string) bool {
	p, err := e.Port(side)
	if err != nil {
		return false
	}
	s := p.slot(name)
	if s == nil {
		return false
	}
	return s.IsGiven()
}

// Impedance returns the element's own impedance state.
func (e *BaseElement) Impedance() phasor.C { return e.imped.Value }

// SetImpedance sets the element's own impedance state directly — this
// slot is never "given" (only port voltage slots are boundary
// conditions, spec §3).
func (e *BaseElement) SetImpedance(z phasor.C) { e.imped.Value = z }

// connectedElements returns the elements connected to the named port,
// in neighbour-list order (spec's getConnectedElements).
func (e *BaseElement) connectedElements(side string) []Element {
	p, err := e.Port(side)
	if err != nil || e.circuit == nil {
		return nil
	}
	out := make([]Element, 0, len(p.Neighbours))
	for _, ref := range p.Neighbours {
		if el, ok := e.circuit.element(ref.Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// connect links this element's mySide port to other's hisSide port,
// symmetrically and idempotently (spec §4.3).
func connect(a Element, mySide string, b Element, hisSide string) error {
	pa, err := a.Port(mySide)
	if err != nil {
		return err
	}
	pb, err := b.Port(hisSide)
	if err != nil {
		return err
	}
	pa.addNeighbour(PortRef{Element: b.Index(), Side: hisSide})
	pb.addNeighbour(PortRef{Element: a.Index(), Side: mySide})
	return nil
}
