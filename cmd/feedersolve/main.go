// Command feedersolve runs a single feeder-network solve from a
// hard-coded scenario and prints the reportable rows as a table. It
// takes no flags (spec.md Non-goals exclude a driver CLI); wiring a
// real file path or dataset in is a matter of editing buildScenario.
package main

import (
	"fmt"
	"log"

	"github.com/tebeka/atexit"

	"github.com/mzangs/feedersolve/pkg/assembly"
	"github.com/mzangs/feedersolve/pkg/phasor"
	"github.com/mzangs/feedersolve/pkg/report"
)

func buildScenario() (*assembly.Builder, error) {
	vcc := phasor.C{Re: 230, Im: 0}
	vss := phasor.Zero

	b := assembly.NewBuilder(3, vcc, vss)

	for phase := 1; phase <= 3; phase++ {
		if err := b.AddFeederImpedance(phase, phasor.C{Re: 0.5, Im: 0.1}); err != nil {
			return nil, err
		}
		if err := b.AddLoadFactor(phase, 1500, 0.95, true); err != nil {
			return nil, err
		}
		b.AddReturnImpedance(phasor.C{Re: 0.2, Im: 0.05})
	}

	return b, nil
}

func main() {
	b, err := buildScenario()
	if err != nil {
		log.Fatalf("feedersolve: building scenario: %v", err)
	}

	circuit, evaluator, err := b.Build()
	if err != nil {
		log.Fatalf("feedersolve: assembling circuit: %v", err)
	}
	atexit.Register(func() { fmt.Printf("feedersolve: run %s finished\n", evaluator.RunID()) })

	if err := evaluator.Start(); err != nil {
		log.Fatalf("feedersolve: solve failed: %v", err)
	}

	rows := report.Rows(circuit.Elements())
	fmt.Println(report.Table(rows))

	atexit.Exit(0)
}
