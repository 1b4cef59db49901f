package circuit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mzangs/feedersolve/pkg/circuit"
	"github.com/mzangs/feedersolve/pkg/phasor"
)

var _ = Describe("Slot", func() {
	It("marks itself set on write and reports the written value", func() {
		s := circuit.Slot{Name: "voltage"}
		Expect(s.IsSet()).To(BeFalse())
		s.Write(phasor.C{Re: 10})
		Expect(s.Value).To(Equal(phasor.C{Re: 10}))
		Expect(s.IsSet()).To(BeTrue())
	})

	It("ignores writes once fixed as a boundary condition", func() {
		s := circuit.Slot{Name: "voltage"}
		s.Fix(true)
		s.Write(phasor.C{Re: 5})
		Expect(s.Value).To(Equal(phasor.C{}))
		Expect(s.IsGiven()).To(BeTrue())
	})
})
