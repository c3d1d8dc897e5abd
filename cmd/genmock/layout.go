package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/argo-profile-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/argo-profile-etl/internal/domain/argotest"
)

// layouts are the dimensions of the fixed variables of a core profile file.
var layouts = map[string][]string{
	"DATA_TYPE":                {"STRING16"},
	"FORMAT_VERSION":           {"STRING4"},
	"HANDBOOK_VERSION":         {"STRING4"},
	"REFERENCE_DATE_TIME":      {"DATE_TIME"},
	"DATE_CREATION":            {"DATE_TIME"},
	"DATE_UPDATE":              {"DATE_TIME"},
	"PLATFORM_NUMBER":          {"N_PROF", "STRING8"},
	"PROJECT_NAME":             {"N_PROF", "STRING64"},
	"PI_NAME":                  {"N_PROF", "STRING64"},
	"STATION_PARAMETERS":       {"N_PROF", "N_PARAM", "STRING16"},
	"CYCLE_NUMBER":             {"N_PROF"},
	"DIRECTION":                {"N_PROF"},
	"DATA_CENTRE":              {"N_PROF", "STRING2"},
	"DC_REFERENCE":             {"N_PROF", "STRING32"},
	"DATA_STATE_INDICATOR":     {"N_PROF", "STRING4"},
	"DATA_MODE":                {"N_PROF"},
	"PARAMETER_DATA_MODE":      {"N_PROF", "N_PARAM"},
	"PLATFORM_TYPE":            {"N_PROF", "STRING32"},
	"FLOAT_SERIAL_NO":          {"N_PROF", "STRING32"},
	"FIRMWARE_VERSION":         {"N_PROF", "STRING32"},
	"WMO_INST_TYPE":            {"N_PROF", "STRING4"},
	"JULD":                     {"N_PROF"},
	"JULD_QC":                  {"N_PROF"},
	"JULD_LOCATION":            {"N_PROF"},
	"LATITUDE":                 {"N_PROF"},
	"LONGITUDE":                {"N_PROF"},
	"POSITION_QC":              {"N_PROF"},
	"POSITIONING_SYSTEM":       {"N_PROF", "STRING8"},
	"VERTICAL_SAMPLING_SCHEME": {"N_PROF", "STRING256"},
	"CONFIG_MISSION_NUMBER":    {"N_PROF"},
}

// layoutOf returns the dimensions of a variable. Names outside the fixed set
// are per-parameter: PROFILE_<P>_QC, <P>_QC, <P>_ADJUSTED_QC, <P> and
// <P>_ADJUSTED.
func layoutOf(name string) []string {
	if dims, ok := layouts[name]; ok {
		return dims
	}
	if strings.HasPrefix(name, "PROFILE_") && strings.HasSuffix(name, "_QC") {
		return []string{"N_PROF"}
	}
	return []string{"N_PROF", "N_LEVELS"}
}

// dimSize resolves a dimension length from the container or from the width
// encoded in a string dimension's name.
func dimSize(c *argotest.Container, dim string) (int, error) {
	if n, ok := c.Dims[dim]; ok {
		return n, nil
	}
	if dim == "DATE_TIME" {
		return 14, nil
	}
	if w, ok := strings.CutPrefix(dim, "STRING"); ok {
		return strconv.Atoi(w)
	}
	return 0, fmt.Errorf("unknown dimension %s", dim)
}

func dimSizes(c *argotest.Container, dims []string) ([]int, error) {
	sizes := make([]int, len(dims))
	for i, d := range dims {
		n, err := dimSize(c, d)
		if err != nil {
			return nil, err
		}
		sizes[i] = n
	}
	return sizes, nil
}

// shapeChars nests raw into strings of the last dimension's length inside
// slices for the leading dimensions.
func shapeChars(raw []byte, sizes []int) (any, error) {
	total := 1
	for _, n := range sizes {
		total *= n
	}
	if len(raw) != total {
		return nil, fmt.Errorf("%d characters, want %d", len(raw), total)
	}
	width := sizes[len(sizes)-1]
	switch len(sizes) {
	case 1:
		return string(raw), nil
	case 2:
		return split(raw, width), nil
	case 3:
		strs := split(raw, width)
		out := make([][]string, 0, sizes[0])
		for row := range slices.Chunk(strs, sizes[1]) {
			out = append(out, row)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported rank %d", len(sizes))
	}
}

func split(raw []byte, width int) []string {
	out := make([]string, 0, len(raw)/width)
	for chunk := range slices.Chunk(raw, width) {
		out = append(out, string(chunk))
	}
	return out
}

// shapeFloats keeps per-profile scalars as doubles and writes per-level
// arrays as floats, the types Argo files use.
func shapeFloats(vals []float64, sizes []int) (any, error) {
	switch len(sizes) {
	case 1:
		return vals, nil
	case 2:
		if len(vals) != sizes[0]*sizes[1] {
			return nil, fmt.Errorf("%d values, want %d", len(vals), sizes[0]*sizes[1])
		}
		out := make([][]float32, 0, sizes[0])
		for row := range slices.Chunk(vals, sizes[1]) {
			f := make([]float32, len(row))
			for i, v := range row {
				f[i] = float32(v)
			}
			out = append(out, f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported rank %d", len(sizes))
	}
}

func shapeInts(vals []int64) []int32 {
	out := make([]int32, len(vals))
	for i, v := range vals {
		out[i] = int32(v)
	}
	return out
}

// writeContainer writes every variable of c to a new NetCDF file at path.
func writeContainer(path string, c *argotest.Container) (err error) {
	w, err := netcdf.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	for _, name := range sortedKeys(c.CharVars) {
		dims := layoutOf(name)
		sizes, err := dimSizes(c, dims)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		values, err := shapeChars(c.CharVars[name], sizes)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := w.Add(name, dims, values, c.Attrs[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(c.FloatVars) {
		dims := layoutOf(name)
		sizes, err := dimSizes(c, dims)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		values, err := shapeFloats(c.FloatVars[name], sizes)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := w.Add(name, dims, values, c.Attrs[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(c.IntVars) {
		if err := w.Add(name, layoutOf(name), shapeInts(c.IntVars[name]), c.Attrs[name]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
