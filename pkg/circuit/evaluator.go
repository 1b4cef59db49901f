package circuit

import (
	"fmt"
	"log"

	"github.com/mzangs/feedersolve/internal/consts"
	"github.com/rs/xid"
)

// Evaluator drives a bounded number of propagation sweeps over a
// Circuit (spec §4.7). Verbose makes Start print one progress line per
// completed sweep (supplemented from original_source's
// Simulation::_verbose trace).
type Evaluator struct {
	Circuit *Circuit
	Verbose bool

	// numReturnSegments is the count of return-line segments, used to
	// compute the 3·N_return sweep budget (spec §4.7). Set by the
	// assembly recipe via SetReturnSegments.
	numReturnSegments int

	runID xid.ID
}

// NewEvaluator returns an Evaluator over circuit.
func NewEvaluator(circuit *Circuit) *Evaluator {
	return &Evaluator{Circuit: circuit, runID: xid.New()}
}

// SetReturnSegments records the number of return-line segments the
// assembly recipe built, which determines the fixed iteration budget
// (spec §4.7 step 3).
func (ev *Evaluator) SetReturnSegments(n int) {
	ev.numReturnSegments = n
}

// RunID identifies this evaluator instance for diagnostic correlation
// across a batch of per-sample solves (spec EXPANSION — ambient stack).
func (ev *Evaluator) RunID() string { return ev.runID.String() }

// SweepBudget returns the fixed number of sweeps Start will run:
// 3·N_return (spec §4.7 step 3, §9 open question 3).
func (ev *Evaluator) SweepBudget() int {
	return consts.IterationMultiplier * ev.numReturnSegments
}

// Start runs the sweep loop (spec §4.7). It validates the circuit's
// topology as its own first step (spec §4.7 step 1), then validates
// that boundary conditions exist, then performs SweepBudget() sweeps;
// each sweep drains a LIFO work buffer seeded from the circuit's entry
// elements. Validation runs here regardless of whether the circuit was
// produced by assembly.Builder or assembled directly through the
// element/port construction API, so a malformed circuit never reaches
// the sweep loop undiagnosed. After the last sweep, every load with a
// nonzero commanded power that still carries no current is logged as a
// warning; this never turns into a returned error.
func (ev *Evaluator) Start() error {
	if err := ev.validateTopology(); err != nil {
		return err
	}

	entries := ev.Circuit.Entries()
	if len(ev.Circuit.Elements()) == 0 || len(entries) == 0 {
		return newError(MissingBoundary, "", "start() called with no entry elements")
	}

	budget := ev.SweepBudget()
	for sweep := 0; sweep < budget; sweep++ {
		if err := ev.runSweep(entries); err != nil {
			return err
		}
		if ev.Verbose {
			fmt.Printf("[%s] sweep %d/%d complete\n", ev.RunID(), sweep+1, budget)
		}
	}
	for _, el := range ev.Circuit.Elements() {
		cn, ok := el.(*Consumer)
		if ok && !cn.Power().IsZero() && cn.GetPortParameter(consts.Left, consts.Current).IsZero() {
			log.Printf("[%s] warning: %s carries no current after %d sweeps", ev.RunID(), cn.Name(), budget)
		}
	}
	return nil
}

// runSweep drains one LIFO work buffer. Ordering of neighbour
// interrogation follows insertion order, matching the deterministic
// contract of spec §5.
func (ev *Evaluator) runSweep(entries []Element) error {
	buffer := make([]Element, len(entries))
	copy(buffer, entries)

	for len(buffer) > 0 {
		last := len(buffer) - 1
		interrogator := buffer[last]
		buffer = buffer[:last]

		nextIndices, err := interrogator.NewState()
		if err != nil {
			return err
		}
		for _, idx := range nextIndices {
			if el, ok := ev.Circuit.element(idx); ok {
				buffer = append(buffer, el)
			}
		}
	}
	return nil
}

// validateTopology derives aggregate feeder/load/return counts straight
// from the circuit's own elements (a Resistor is a feeder segment once
// the return segments are subtracted out, a Consumer is a load) and
// runs them through ValidateTopology. Circuit carries no phase tags, so
// this is coarser than the per-phase check assembly.Builder runs from
// its own bookkeeping before construction, but it still catches a
// malformed circuit assembled directly through the construction API,
// which never goes through the Builder at all.
func (ev *Evaluator) validateTopology() error {
	var resistors, consumers int
	for _, el := range ev.Circuit.Elements() {
		switch el.(type) {
		case *Resistor:
			resistors++
		case *Consumer:
			consumers++
		}
	}
	feeders := resistors - ev.numReturnSegments
	return ValidateTopology(map[int]int{1: feeders}, map[int]int{1: consumers}, ev.numReturnSegments)
}

// ValidateTopology checks that the number of feeder segments per phase
// equals the number of loads on that phase and that the return line has
// one segment per tap, per spec §4.7 step 1. feederCounts and
// loadCounts are per-phase counts (1-indexed phase → count); returnCount
// is the total number of return segments.
func ValidateTopology(feederCounts, loadCounts map[int]int, returnCount int) error {
	totalFeeders, totalLoads := 0, 0
	for phase, feeders := range feederCounts {
		loads := loadCounts[phase]
		if feeders != loads {
			return newError(InvalidInput, "", fmt.Sprintf(
				"phase %d: feeder segments (%d) do not match loads (%d)", phase, feeders, loads))
		}
		totalFeeders += feeders
		totalLoads += loads
	}
	if returnCount != totalFeeders || returnCount != totalLoads {
		return newError(InvalidInput, "", fmt.Sprintf(
			"return segments (%d) do not match feeder/load count (%d/%d)", returnCount, totalFeeders, totalLoads))
	}
	return nil
}
