package circuit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mzangs/feedersolve/pkg/circuit"
	"github.com/mzangs/feedersolve/pkg/phasor"
)

var _ = Describe("Consumer", func() {
	var c *circuit.Circuit

	BeforeEach(func() {
		c = circuit.NewCircuit()
	})

	It("reports Open impedance while power is zero", func() {
		cn := circuit.NewConsumer(c, phasor.C{Re: 120}, phasor.Zero)
		Expect(cn.ImpedanceInDirectionOf("left")).To(Equal(phasor.Open))
	})

	It("rejects an out-of-range power factor without changing commanded power", func() {
		cn := circuit.NewConsumer(c, phasor.C{Re: 120}, phasor.Zero)
		err := cn.SetPowerFactor(800, 1.2, true)
		Expect(err).To(HaveOccurred())
		Expect(cn.Power()).To(Equal(phasor.Zero))
	})

	It("derives a positive reactive component for an inductive power factor", func() {
		cn := circuit.NewConsumer(c, phasor.C{Re: 120}, phasor.Zero)
		Expect(cn.SetPowerFactor(800, 0.8, true)).To(Succeed())
		Expect(cn.Power().Re).To(BeNumerically("~", 640, 1e-6))
		Expect(cn.Power().Im).To(BeNumerically(">", 0))
	})

	It("derives a negative reactive component for a capacitive power factor", func() {
		cn := circuit.NewConsumer(c, phasor.C{Re: 120}, phasor.Zero)
		Expect(cn.SetPowerFactor(800, 0.8, false)).To(Succeed())
		Expect(cn.Power().Im).To(BeNumerically("<", 0))
	})

	It("stays Open and carries zero current when power is zero even with both sides known", func() {
		cn := circuit.NewConsumer(c, phasor.C{Re: 120}, phasor.Zero)
		cn.SetPortParameter("left", "voltage", phasor.C{Re: 120})
		cn.FixPortParameter("left", "voltage", true)
		cn.SetPortParameter("right", "voltage", phasor.Zero)
		cn.FixPortParameter("right", "voltage", true)

		next, err := cn.NewState()
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(BeEmpty())
		Expect(cn.Impedance()).To(Equal(phasor.Open))
		Expect(cn.GetPortParameter("left", "current")).To(Equal(phasor.Zero))
	})

	It("never returns next elements, terminating propagation on its branch", func() {
		cn := circuit.NewConsumer(c, phasor.C{Re: 120}, phasor.Zero)
		cn.SetPower(phasor.C{Re: 240})
		cn.SetPortParameter("left", "voltage", phasor.C{Re: 240})
		cn.FixPortParameter("left", "voltage", true)
		cn.SetPortParameter("right", "voltage", phasor.Zero)
		cn.FixPortParameter("right", "voltage", true)

		next, err := cn.NewState()
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(BeNil())
	})

	It("does nothing while either side remains unknown", func() {
		cn := circuit.NewConsumer(c, phasor.C{Re: 120}, phasor.Zero)
		cn.SetPower(phasor.C{Re: 240})
		cn.SetPortParameter("left", "voltage", phasor.C{Re: 240})
		cn.FixPortParameter("left", "voltage", true)

		next, err := cn.NewState()
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(BeNil())
		Expect(cn.Impedance()).To(Equal(phasor.Open))
	})
})
