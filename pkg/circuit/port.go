package circuit

import (
	"github.com/mzangs/feedersolve/internal/consts"
	"github.com/mzangs/feedersolve/pkg/phasor"
)

// PortRef is a non-owning reference to a neighbour port: the owning
// element's index within its circuit, plus the side name. Spec §9
// models the port graph this way precisely to break the ownership
// cycles the C++ original has between elements and ports.
type PortRef struct {
	Element int
	Side    string
}

// Port is one of an element's two connection points (spec §3 "Port P").
// Voltage and Current are the only two parameter slots a port carries;
// impedance and power live on the owning element itself, not on a port
// (mirrors the C++ original, where only voltage/current are pushed into
// a port's portParameters vector).
type Port struct {
	Side       string
	Owner      int
	Voltage    Slot
	Current    Slot
	Neighbours []PortRef
	Connected  bool
}

func newPort(owner int, side string) Port {
	return Port{
		Side:    side,
		Owner:   owner,
		Voltage: Slot{Name: consts.Voltage},
		Current: Slot{Name: consts.Current},
	}
}

// slot returns the port's slot for the given name, or nil if name isn't
// voltage or current — getPortParameter/setPortParameter read this as
// "the slot does not exist" per spec §4.2.
func (p *Port) slot(name string) *Slot {
	switch name {
	case consts.Voltage:
		return &p.Voltage
	case consts.Current:
		return &p.Current
	default:
		return nil
	}
}

// equalPort reports whether two ports are the same port: same owning
// element index and same side name (spec §4.3).
func equalPort(a, b PortRef) bool {
	return a.Element == b.Element && a.Side == b.Side
}

// addNeighbour appends ref to the neighbour list if it isn't already
// present, and marks the port connected. Idempotent per spec §4.3.
func (p *Port) addNeighbour(ref PortRef) (added bool) {
	for _, n := range p.Neighbours {
		if equalPort(n, ref) {
			return false
		}
	}
	p.Neighbours = append(p.Neighbours, ref)
	p.Connected = true
	return true
}

// zero is the value getPortParameter returns when the named slot does
// not exist (spec §4.2).
var zero = phasor.C{}
