package assembly_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mzangs/feedersolve/pkg/assembly"
	"github.com/mzangs/feedersolve/pkg/circuit"
	"github.com/mzangs/feedersolve/pkg/phasor"
	"github.com/mzangs/feedersolve/pkg/report"
)

// consumerRows returns the report rows of the circuit's loads only;
// report.Rows also lists the boundary-fixed resistors.
func consumerRows(elements []circuit.Element) []report.Row {
	var consumers []circuit.Element
	for _, el := range elements {
		if _, ok := el.(*circuit.Consumer); ok {
			consumers = append(consumers, el)
		}
	}
	return report.Rows(consumers)
}

func singleConsumerRow(elements []circuit.Element) report.Row {
	rows := consumerRows(elements)
	ExpectWithOffset(1, rows).To(HaveLen(1))
	return rows[0]
}

var _ = Describe("single-phase feeder scenarios", func() {
	It("S1: delivers close to 1A with negligible feeder/return loss", func() {
		b := assembly.NewBuilder(1, phasor.C{Re: 240}, phasor.Zero)
		Expect(b.AddFeederImpedance(1, phasor.C{Re: 0.01})).To(Succeed())
		Expect(b.AddLoad(1, phasor.C{Re: 240})).To(Succeed())
		b.AddReturnImpedance(phasor.C{Re: 0.01})

		c, ev, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Start()).To(Succeed())

		row := singleConsumerRow(c.Elements())
		_, _, i, _, _ := row.Magnitudes()
		Expect(i).To(BeNumerically("~", 1.0, 0.05))
	})

	It("S2: carries zero current for a zero-power load", func() {
		b := assembly.NewBuilder(1, phasor.C{Re: 240}, phasor.Zero)
		Expect(b.AddFeederImpedance(1, phasor.C{Re: 0.01})).To(Succeed())
		Expect(b.AddLoad(1, phasor.Zero)).To(Succeed())
		b.AddReturnImpedance(phasor.C{Re: 0.01})

		c, ev, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Start()).To(Succeed())

		row := singleConsumerRow(c.Elements())
		_, _, i, z, _ := row.Magnitudes()
		Expect(i).To(Equal(0.0))
		Expect(z).To(Equal(math.Inf(1)))
	})

	It("S3: an open-circuit feeder kills current and strands the dead side at vss", func() {
		b := assembly.NewBuilder(1, phasor.C{Re: 240}, phasor.Zero)
		Expect(b.AddFeederImpedance(1, phasor.Open)).To(Succeed())
		Expect(b.AddLoad(1, phasor.C{Re: 240})).To(Succeed())
		b.AddReturnImpedance(phasor.C{Re: 0.01})

		c, ev, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Start()).To(Succeed())

		row := singleConsumerRow(c.Elements())
		vl, _, i, _, _ := row.Magnitudes()
		Expect(i).To(Equal(0.0))
		Expect(vl).To(Equal(0.0))
	})

	It("S5: the outer feeder segment carries the sum of both loads' currents", func() {
		b := assembly.NewBuilder(1, phasor.C{Re: 240}, phasor.Zero)
		Expect(b.AddFeederImpedance(1, phasor.C{Re: 0.01})).To(Succeed())
		Expect(b.AddLoad(1, phasor.C{Re: 450})).To(Succeed())
		b.AddReturnImpedance(phasor.C{Re: 0.01})
		Expect(b.AddFeederImpedance(1, phasor.C{Re: 0.01})).To(Succeed())
		Expect(b.AddLoad(1, phasor.C{Re: 450})).To(Succeed())
		b.AddReturnImpedance(phasor.C{Re: 0.01})

		c, ev, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Start()).To(Succeed())

		rows := consumerRows(c.Elements())
		Expect(rows).To(HaveLen(2))

		var currents []float64
		for _, r := range rows {
			_, _, i, _, _ := r.Magnitudes()
			currents = append(currents, i)
		}
		// Both taps draw comparable current at this symmetric 450W/450W
		// split; neither current is zero.
		for _, i := range currents {
			Expect(i).To(BeNumerically(">", 0))
		}

		// The outer segment is the phase's first feeder, whose left port
		// is fixed to the source voltage.
		var outer circuit.Element
		for _, el := range c.Elements() {
			if _, ok := el.(*circuit.Resistor); ok && el.IsPortParameterFixed("left", "voltage") {
				outer = el
			}
		}
		Expect(outer).NotTo(BeNil())
		sum := currents[0] + currents[1]
		Expect(phasor.Abs(outer.GetPortParameter("left", "current"))).To(BeNumerically("~", sum, sum*0.05))
	})

	It("S6: an inductive power factor yields a positive reactive commanded power", func() {
		b := assembly.NewBuilder(1, phasor.C{Re: 240}, phasor.Zero)
		Expect(b.AddFeederImpedance(1, phasor.C{Re: 0.01})).To(Succeed())
		Expect(b.AddLoadFactor(1, 800, 0.8, true)).To(Succeed())
		b.AddReturnImpedance(phasor.C{Re: 0.01})

		c, ev, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Start()).To(Succeed())

		var load *circuit.Consumer
		for _, el := range c.Elements() {
			if cn, ok := el.(*circuit.Consumer); ok {
				load = cn
			}
		}
		Expect(load).NotTo(BeNil())
		Expect(load.Power().Im).To(BeNumerically(">", 0))
	})
})

var _ = Describe("three-phase balanced feeder (S4)", func() {
	It("produces equal-magnitude per-phase currents", func() {
		b := assembly.NewBuilder(3, phasor.C{Re: 240}, phasor.Zero)
		for phase := 1; phase <= 3; phase++ {
			Expect(b.AddFeederImpedance(phase, phasor.C{Re: 0.03})).To(Succeed())
			Expect(b.AddLoad(phase, phasor.C{Re: 900})).To(Succeed())
			b.AddReturnImpedance(phasor.C{Re: 0.01})
		}

		c, ev, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Start()).To(Succeed())

		rows := consumerRows(c.Elements())
		Expect(rows).To(HaveLen(3))

		_, _, i0, _, _ := rows[0].Magnitudes()
		for _, r := range rows[1:] {
			_, _, i, _, _ := r.Magnitudes()
			Expect(i).To(BeNumerically("~", i0, i0*0.05))
		}
	})
})

var _ = Describe("Builder validation", func() {
	It("rejects a phase whose feeder and load counts diverge", func() {
		b := assembly.NewBuilder(1, phasor.C{Re: 240}, phasor.Zero)
		Expect(b.AddFeederImpedance(1, phasor.C{Re: 0.01})).To(Succeed())
		Expect(b.AddFeederImpedance(1, phasor.C{Re: 0.01})).To(Succeed())
		Expect(b.AddLoad(1, phasor.C{Re: 240})).To(Succeed())
		b.AddReturnImpedance(phasor.C{Re: 0.01})
		b.AddReturnImpedance(phasor.C{Re: 0.01})

		_, _, err := b.Build()
		Expect(err).To(HaveOccurred())
	})

	It("rejects an out-of-range phase index", func() {
		b := assembly.NewBuilder(1, phasor.C{Re: 240}, phasor.Zero)
		Expect(b.AddFeederImpedance(2, phasor.C{Re: 0.01})).To(HaveOccurred())
		Expect(b.AddLoad(2, phasor.C{Re: 240})).To(HaveOccurred())
	})
})
