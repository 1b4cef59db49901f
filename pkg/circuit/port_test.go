package circuit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mzangs/feedersolve/pkg/circuit"
	"github.com/mzangs/feedersolve/pkg/phasor"
)

var _ = Describe("Connect", func() {
	It("links two ports symmetrically", func() {
		c := circuit.NewCircuit()
		a := circuit.NewResistor(c, phasor.C{Re: 10}, phasor.Zero)
		b := circuit.NewResistor(c, phasor.C{Re: 10}, phasor.Zero)

		Expect(circuit.Connect(a, "right", b, "left")).To(Succeed())

		pa, err := a.Port("right")
		Expect(err).NotTo(HaveOccurred())
		Expect(pa.Connected).To(BeTrue())
		Expect(pa.Neighbours).To(ConsistOf(circuit.PortRef{Element: b.Index(), Side: "left"}))

		pb, err := b.Port("left")
		Expect(err).NotTo(HaveOccurred())
		Expect(pb.Neighbours).To(ConsistOf(circuit.PortRef{Element: a.Index(), Side: "right"}))
	})

	It("is idempotent when called twice with the same ports", func() {
		c := circuit.NewCircuit()
		a := circuit.NewResistor(c, phasor.C{Re: 10}, phasor.Zero)
		b := circuit.NewResistor(c, phasor.C{Re: 10}, phasor.Zero)

		Expect(circuit.Connect(a, "right", b, "left")).To(Succeed())
		Expect(circuit.Connect(a, "right", b, "left")).To(Succeed())

		pa, _ := a.Port("right")
		Expect(pa.Neighbours).To(HaveLen(1))
	})

	It("propagates a voltage write to every neighbour port", func() {
		c := circuit.NewCircuit()
		a := circuit.NewResistor(c, phasor.C{Re: 10}, phasor.Zero)
		b := circuit.NewResistor(c, phasor.C{Re: 10}, phasor.Zero)
		Expect(circuit.Connect(a, "right", b, "left")).To(Succeed())

		a.SetPortParameter("right", "voltage", phasor.C{Re: 120})

		Expect(b.GetPortParameter("left", "voltage")).To(Equal(phasor.C{Re: 120}))
	})

	It("returns an error for an unknown side", func() {
		c := circuit.NewCircuit()
		a := circuit.NewResistor(c, phasor.C{Re: 10}, phasor.Zero)
		_, err := a.Port("up")
		Expect(err).To(HaveOccurred())
	})
})
