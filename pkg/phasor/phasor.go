// Package phasor implements the complex-phasor arithmetic the circuit
// solver runs on, including the +Inf-real "open circuit" sentinel that
// flows through impedance aggregation (spec §4.1).
package phasor

import "math"

// C is a complex phasor (re, im). A C with Re == +Inf denotes an open
// circuit; this sentinel is compared against with exact equality
// throughout the solver, never with a tolerance.
type C struct {
	Re, Im float64
}

// Open is the open-circuit sentinel: infinite impedance.
var Open = C{Re: math.Inf(1), Im: 0}

// Zero is the additive identity.
var Zero = C{Re: 0, Im: 0}

// IsOpen reports whether c is the open-circuit sentinel.
func (c C) IsOpen() bool {
	return math.IsInf(c.Re, 1)
}

// IsZero reports whether both components are exactly zero.
func (c C) IsZero() bool {
	return c.Re == 0 && c.Im == 0
}

// Add returns a + b.
func Add(a, b C) C {
	return C{Re: a.Re + b.Re, Im: a.Im + b.Im}
}

// Sub returns a - b.
func Sub(a, b C) C {
	return C{Re: a.Re - b.Re, Im: a.Im - b.Im}
}

// Mul returns a * b. If either operand is open, the result is open —
// this models "infinite impedance in a product" as used by the parallel
// reduction's numerator (spec §4.4 step 4).
func Mul(a, b C) C {
	if a.IsOpen() || b.IsOpen() {
		return Open
	}
	return C{
		Re: a.Re*b.Re - a.Im*b.Im,
		Im: a.Re*b.Im + a.Im*b.Re,
	}
}

// Div returns a / b. Division by exact zero, and division where b is
// open, both yield Open — the former is the "infinite impedance"
// convention of spec §4.1, the latter falls out of it (a/Open == 0 in
// true complex arithmetic, but the solver never needs that reading: an
// open denominator only ever appears as a bug guard here).
func Div(a, b C) C {
	if b.IsZero() {
		return Open
	}
	if b.IsOpen() {
		return Open
	}
	if a.IsOpen() {
		return Open
	}
	denom := b.Re*b.Re + b.Im*b.Im
	return C{
		Re: (a.Re*b.Re + a.Im*b.Im) / denom,
		Im: (a.Im*b.Re - a.Re*b.Im) / denom,
	}
}

// Neg returns -a.
func Neg(a C) C {
	return C{Re: -a.Re, Im: -a.Im}
}

// Abs returns the magnitude of c. The magnitude of Open is +Inf.
func Abs(c C) float64 {
	if c.IsOpen() {
		return math.Inf(1)
	}
	return math.Hypot(c.Re, c.Im)
}

// Arg returns the argument (angle in radians) of c.
func Arg(c C) float64 {
	return math.Atan2(c.Im, c.Re)
}

// AbsSquared returns |c|^2 without the square root, as used by the
// Consumer's effective-impedance formula (spec §4.6).
func AbsSquared(c C) float64 {
	return c.Re*c.Re + c.Im*c.Im
}

// FromPolar builds a phasor from magnitude and angle (radians).
func FromPolar(mag, angle float64) C {
	return C{Re: mag * math.Cos(angle), Im: mag * math.Sin(angle)}
}

// LessAbs, LessReal and LessImag are the three total comparators over C
// spec §4.1 calls for, used only by external reporting/sorting code —
// never by the solver itself.
func LessAbs(a, b C) bool { return Abs(a) < Abs(b) }
func LessReal(a, b C) bool { return a.Re < b.Re }
func LessImag(a, b C) bool { return a.Im < b.Im }
