// Package netlist loads a linear feeder description from a small
// line-oriented text format, the textual counterpart to the
// programmatic assembly.Builder calls (spec §4.8's "linear description
// ... turns into the element graph").
package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mzangs/feedersolve/pkg/assembly"
	"github.com/mzangs/feedersolve/pkg/phasor"
)

// Directive is one parsed line of a feeder description.
type Directive struct {
	Keyword string
	Fields  []string
}

// Description is an ordered list of directives, ready to be applied to
// an assembly.Builder via Apply.
type Description struct {
	Title      string
	Phases     int
	Source     phasor.C
	Sink       phasor.C
	Directives []Directive
}

var unitMap = map[string]float64{
	"T":   1e12,
	"G":   1e9,
	"meg": 1e6,
	"M":   1e6,
	"K":   1e3,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valuePattern = regexp.MustCompile(`^([-+]?\d*\.?\d+)(meg|[TGMKkmunpf])?$`)

// ParseValue parses a number with an optional SI magnitude suffix, e.g.
// "0.5k" -> 500, "10meg" -> 1e7.
func ParseValue(val string) (float64, error) {
	matches := valuePattern.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("netlist: invalid value %q", val)
	}
	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}
	if matches[2] != "" {
		if multiplier, ok := unitMap[matches[2]]; ok {
			num *= multiplier
		}
	}
	return num, nil
}

// Parse reads a feeder description. Supported directives, one per line:
//
//	* comment
//	TITLE <text>
//	PHASES <n>
//	SOURCE <re> <im>
//	SINK <re> <im>
//	FEEDER <phase> <re> <im>
//	RETURN <re> <im>
//	LOAD <phase> <watts> <powerfactor> ind|cap
//	STORAGE <phase> <watts> <powerfactor> ind|cap
func Parse(input string) (*Description, error) {
	desc := &Description{Phases: 1}
	scanner := bufio.NewScanner(strings.NewReader(input))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}

		fields := strings.Fields(line)
		keyword := strings.ToUpper(fields[0])

		switch keyword {
		case "TITLE":
			desc.Title = strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
			continue
		case "PHASES":
			if len(fields) != 2 {
				return nil, fmt.Errorf("netlist: PHASES wants 1 argument")
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("netlist: invalid phase count: %w", err)
			}
			desc.Phases = n
			continue
		case "SOURCE", "SINK":
			if len(fields) != 3 {
				return nil, fmt.Errorf("netlist: %s wants 2 arguments", keyword)
			}
			re, err := ParseValue(fields[1])
			if err != nil {
				return nil, err
			}
			im, err := ParseValue(fields[2])
			if err != nil {
				return nil, err
			}
			if keyword == "SOURCE" {
				desc.Source = phasor.C{Re: re, Im: im}
			} else {
				desc.Sink = phasor.C{Re: re, Im: im}
			}
			continue
		}

		desc.Directives = append(desc.Directives, Directive{Keyword: keyword, Fields: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("netlist: reading description: %w", err)
	}

	return desc, nil
}

// Apply builds the description's FEEDER/RETURN/LOAD/STORAGE directives
// onto an assembly.Builder, in the order they appeared.
func (d *Description) Apply(b *assembly.Builder) error {
	for _, dir := range d.Directives {
		switch dir.Keyword {
		case "FEEDER":
			phase, z, err := phaseImpedance(dir.Fields)
			if err != nil {
				return err
			}
			if err := b.AddFeederImpedance(phase, z); err != nil {
				return err
			}
		case "RETURN":
			if len(dir.Fields) != 2 {
				return fmt.Errorf("netlist: RETURN wants 2 arguments")
			}
			re, err := ParseValue(dir.Fields[0])
			if err != nil {
				return err
			}
			im, err := ParseValue(dir.Fields[1])
			if err != nil {
				return err
			}
			b.AddReturnImpedance(phasor.C{Re: re, Im: im})
		case "LOAD":
			if err := applyLoad(b, dir.Fields, false); err != nil {
				return err
			}
		case "STORAGE":
			if err := applyLoad(b, dir.Fields, true); err != nil {
				return err
			}
		default:
			return fmt.Errorf("netlist: unknown directive %q", dir.Keyword)
		}
	}
	return nil
}

// NewBuilder constructs an assembly.Builder from the description's
// phase count, source and sink.
func (d *Description) NewBuilder() *assembly.Builder {
	return assembly.NewBuilder(d.Phases, d.Source, d.Sink)
}

func phaseImpedance(fields []string) (int, phasor.C, error) {
	if len(fields) != 3 {
		return 0, phasor.C{}, fmt.Errorf("netlist: FEEDER wants phase, re, im")
	}
	phase, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, phasor.C{}, fmt.Errorf("netlist: invalid phase: %w", err)
	}
	re, err := ParseValue(fields[1])
	if err != nil {
		return 0, phasor.C{}, err
	}
	im, err := ParseValue(fields[2])
	if err != nil {
		return 0, phasor.C{}, err
	}
	return phase, phasor.C{Re: re, Im: im}, nil
}

func applyLoad(b *assembly.Builder, fields []string, storage bool) error {
	if len(fields) != 4 {
		return fmt.Errorf("netlist: LOAD/STORAGE wants phase, watts, powerfactor, ind|cap")
	}
	phase, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("netlist: invalid phase: %w", err)
	}
	watts, err := ParseValue(fields[1])
	if err != nil {
		return err
	}
	pf, err := ParseValue(fields[2])
	if err != nil {
		return err
	}
	inductive := strings.EqualFold(fields[3], "ind")
	if storage {
		return b.AddStorageLoadFactor(phase, watts, pf, inductive)
	}
	return b.AddLoadFactor(phase, watts, pf, inductive)
}
