// Package util holds small formatting helpers used by the report
// package.
package util

import (
	"fmt"
	"math"
)

// FormatValueFactor renders value with an SI magnitude prefix and the
// given unit suffix, e.g. FormatValueFactor(0.012, "ohm") -> "12.000 mohm".
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatMagnitude renders a bare magnitude without a unit suffix, using
// scientific notation outside [1e-3, 1e3) (spec §6's "real-valued
// magnitudes" rendering).
func FormatMagnitude(value float64) string {
	if math.IsInf(value, 1) {
		return "+Inf"
	}
	if value >= 1000 || (value < 0.001 && value != 0) {
		return fmt.Sprintf("%8.2e", value)
	}
	return fmt.Sprintf("%8.3g", value)
}
