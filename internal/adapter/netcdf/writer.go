package netcdf

import (
	"fmt"
	"maps"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

type varWriter interface {
	AddVar(name string, v api.Variable) error
	Close() error
}

// Writer creates NetCDF classic files. Dimensions are declared implicitly by
// the variables that use them.
type Writer struct {
	path string
	w    varWriter
}

// Create opens path for writing, truncating any existing file.
func Create(path string) (*Writer, error) {
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Writer{path: path, w: cw}, nil
}

// Add writes one variable. Character variables take strings whose length is
// their last dimension, nested in slices for the leading dimensions.
func (w *Writer) Add(name string, dims []string, values any, attrs map[string]string) error {
	keys := slices.Sorted(maps.Keys(attrs))
	vals := make(map[string]any, len(attrs))
	for k, v := range attrs {
		vals[k] = v
	}
	attributes, err := util.NewOrderedMap(keys, vals)
	if err != nil {
		return fmt.Errorf("%s: attributes of %s: %w", w.path, name, err)
	}
	err = w.w.AddVar(name, api.Variable{
		Values:     values,
		Dimensions: dims,
		Attributes: attributes,
	})
	if err != nil {
		return fmt.Errorf("%s: write %s: %w", w.path, name, err)
	}
	return nil
}

// Close flushes the file.
func (w *Writer) Close() error {
	if err := w.w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	return nil
}
