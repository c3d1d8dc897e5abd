package domain

import (
	"errors"
	"fmt"
)

// SeriesKind tags which variant of a parameter's measurements was extracted.
type SeriesKind int

const (
	// SeriesRaw is the real-time array read from <PARAM>.
	SeriesRaw SeriesKind = iota
	// SeriesAdjusted is the corrected array read from <PARAM>_ADJUSTED.
	SeriesAdjusted
)

func (k SeriesKind) String() string {
	if k == SeriesAdjusted {
		return "adjusted"
	}
	return "raw"
}

// Parameter is everything extracted for one measured parameter of a profile.
type Parameter struct {
	Name   string
	Kind   SeriesKind
	Values []float64
	// LevelQC is read from <PARAM>_QC in both modes.
	LevelQC []string
	// AdjustedQC is read from <PARAM>_ADJUSTED_QC and is nil for SeriesRaw.
	AdjustedQC []string
	Info       DataInfo
}

// Measurements is the per-file set of parameters in STATION_PARAMETERS order.
type Measurements struct {
	Mode   string
	Levels int
	Params []Parameter
}

// Kind returns the series variant selected by a DATA_MODE value.
func Kind(mode string) SeriesKind {
	if mode == ModeRealtime {
		return SeriesRaw
	}
	return SeriesAdjusted
}

// ParameterNames reads the STATION_PARAMETERS slots of the first profile.
// Unused slots decode to "". The parameter list is structural: a missing
// variable, or one whose slots are all blank, fails the file.
func ParameterNames(c Container, nParam int) ([]string, error) {
	raw, err := c.Chars("STATION_PARAMETERS")
	if err != nil {
		return nil, fmt.Errorf("%w: STATION_PARAMETERS: %w", ErrMalformedFile, err)
	}
	names := SplitFixed(raw, String16, nParam)
	for _, name := range names {
		if name != "" {
			return names, nil
		}
	}
	return nil, fmt.Errorf("%w: STATION_PARAMETERS names no parameters", ErrMalformedFile)
}

// ExtractMeasurements reads the measurement arrays of every named parameter for
// the variant selected by mode. names are STATION_PARAMETERS slots: blank slots
// are skipped and a repeated name keeps its first slot. A parameter whose array
// is missing or shorter than levels fails the whole file.
func ExtractMeasurements(u *Unpacker, mode string, names []string, levels int) (Measurements, error) {
	kind := Kind(mode)
	paramModes := u.paramModes(len(names))
	seen := make(map[string]bool, len(names))

	out := Measurements{Mode: mode, Levels: levels, Params: make([]Parameter, 0, len(names))}
	for i, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		variable := name
		if kind == SeriesAdjusted {
			variable = name + "_ADJUSTED"
		}

		values, err := u.c.Floats(variable)
		if err != nil {
			if errors.Is(err, ErrVariableNotFound) {
				return Measurements{}, fmt.Errorf("parameter %s: %w: %s", name, ErrMissingMeasurement, variable)
			}
			return Measurements{}, fmt.Errorf("parameter %s: read %s: %w", name, variable, err)
		}
		if len(values) < levels {
			return Measurements{}, fmt.Errorf("parameter %s: %w: %s has %d values, want %d",
				name, ErrMalformedFile, variable, len(values), levels)
		}

		p := Parameter{
			Name:    name,
			Kind:    kind,
			Values:  values[:levels:levels],
			LevelQC: u.Strings(name+"_QC", String1, levels),
			Info: DataInfo{
				DataMode:           mode,
				Units:              u.Attribute(name, "units"),
				LongName:           u.Attribute(name, "long_name"),
				ProfileParameterQC: u.String("PROFILE_"+name+"_QC", String1),
			},
		}
		if i < len(paramModes) && paramModes[i] != "" {
			p.Info.DataMode = paramModes[i]
		}
		if kind == SeriesAdjusted {
			p.AdjustedQC = u.Strings(name+"_ADJUSTED_QC", String1, levels)
		}
		out.Params = append(out.Params, p)
	}
	return out, nil
}

// paramModes reads PARAMETER_DATA_MODE when the file has it. Core files do not,
// and the file-level DATA_MODE applies to every parameter.
func (u *Unpacker) paramModes(n int) []string {
	raw, err := u.c.Chars("PARAMETER_DATA_MODE")
	if err != nil {
		return nil
	}
	return SplitFixed(raw, String1, n)
}
