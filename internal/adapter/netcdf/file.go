// Package netcdf reads Argo profile files with a pure-Go NetCDF decoder.
package netcdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/argo-profile-etl/internal/domain"
)

// Extension is the file suffix of profile files.
const Extension = ".nc"

// File implements domain.Container over an opened NetCDF group.
type File struct {
	group api.Group
	names map[string]bool
}

var _ domain.Container = (*File)(nil)

// Open opens a profile file.
func Open(path string) (*File, error) {
	group, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	names := make(map[string]bool)
	for _, n := range group.ListVariables() {
		names[n] = true
	}
	return &File{group: group, names: names}, nil
}

// Opener opens files from the local filesystem.
type Opener struct{}

// Open implements pipeline.Opener.
func (Opener) Open(path string) (domain.Container, error) {
	return Open(path)
}

func (f *File) Dimension(name string) (int, bool) {
	n, ok := f.group.GetDimension(name)
	if !ok {
		return 0, false
	}
	return int(n), true
}

func (f *File) variable(name string) (*api.Variable, error) {
	if !f.names[name] {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrVariableNotFound)
	}
	v, err := f.group.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if v == nil {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrVariableNotFound)
	}
	return v, nil
}

// Chars returns the variable's characters in row-major order. Each innermost
// string is padded back to the length of its last dimension, so fixed-width
// slicing stays aligned even when the decoder trims padding.
func (f *File) Chars(name string) ([]byte, error) {
	v, err := f.variable(name)
	if err != nil {
		return nil, err
	}
	width := 0
	if len(v.Dimensions) > 0 {
		width, _ = f.Dimension(v.Dimensions[len(v.Dimensions)-1])
	}
	raw, err := flattenChars(v.Values, width)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return raw, nil
}

func (f *File) Floats(name string) ([]float64, error) {
	v, err := f.variable(name)
	if err != nil {
		return nil, err
	}
	vals, err := flattenFloats(v.Values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return vals, nil
}

func (f *File) Ints(name string) ([]int64, error) {
	v, err := f.variable(name)
	if err != nil {
		return nil, err
	}
	vals, err := flattenInts(v.Values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return vals, nil
}

func (f *File) Attribute(variable, key string) (string, bool) {
	v, err := f.variable(variable)
	if err != nil || v.Attributes == nil {
		return "", false
	}
	val, ok := v.Attributes.Get(key)
	if !ok {
		return "", false
	}
	switch t := val.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return "", false
	}
}

func (f *File) Close() error {
	f.group.Close()
	return nil
}

// ListFiles returns the profile files directly inside dir, sorted by name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
