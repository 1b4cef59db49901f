package dataset

import (
	"fmt"

	"github.com/mzangs/feedersolve/pkg/assembly"
	"github.com/mzangs/feedersolve/pkg/circuit"
)

// ApplyToPhase loads houseCount consecutive houses' samples at delay
// from source, starting at startHouse, and adds each as a power-factor
// load onto the builder, cycling across phases — a direct port of
// original_source/DiCOMO/irishData.cpp's applyProfilesToSim, which
// calls addPowerToPhase(profile[house][delay], powerFactor, (i%phases)+1)
// in a houseCount loop.
func ApplyToPhase(b *assembly.Builder, source ProfileSource, startHouse, houseCount, delay int, powerFactor float64, phases int) error {
	houses, samples := source.DataSize()
	if delay < 0 || delay >= samples || startHouse < 0 || startHouse >= houses || startHouse+houseCount > houses {
		return &circuit.Error{
			Kind: circuit.OutOfBounds,
			Message: fmt.Sprintf(
				"house range [%d,%d) or sample %d outside matrix bounds (%d houses, %d samples)",
				startHouse, startHouse+houseCount, delay, houses, samples),
		}
	}

	for i := 0; i < houseCount; i++ {
		watts, err := source.SampleForHouse(delay, startHouse+i)
		if err != nil {
			return err
		}
		phase := (i % phases) + 1
		if err := b.AddLoadFactor(phase, watts, powerFactor, true); err != nil {
			return err
		}
	}
	return nil
}
