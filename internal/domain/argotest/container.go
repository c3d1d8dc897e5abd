// Package argotest provides in-memory profile files for tests.
package argotest

import (
	"fmt"

	"github.com/couchcryptid/argo-profile-etl/internal/domain"
)

// Container is an in-memory domain.Container.
type Container struct {
	Dims      map[string]int
	CharVars  map[string][]byte
	FloatVars map[string][]float64
	IntVars   map[string][]int64
	Attrs     map[string]map[string]string
	Closed    bool
}

var _ domain.Container = (*Container)(nil)

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{
		Dims:      map[string]int{},
		CharVars:  map[string][]byte{},
		FloatVars: map[string][]float64{},
		IntVars:   map[string][]int64{},
		Attrs:     map[string]map[string]string{},
	}
}

func (c *Container) Dimension(name string) (int, bool) {
	n, ok := c.Dims[name]
	return n, ok
}

func (c *Container) Chars(name string) ([]byte, error) {
	v, ok := c.CharVars[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrVariableNotFound)
	}
	return v, nil
}

func (c *Container) Floats(name string) ([]float64, error) {
	v, ok := c.FloatVars[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrVariableNotFound)
	}
	return v, nil
}

func (c *Container) Ints(name string) ([]int64, error) {
	v, ok := c.IntVars[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrVariableNotFound)
	}
	return v, nil
}

func (c *Container) Attribute(variable, key string) (string, bool) {
	v, ok := c.Attrs[variable][key]
	return v, ok
}

func (c *Container) Close() error {
	c.Closed = true
	return nil
}

// SetString stores values as consecutive NUL-padded fields of width bytes.
func (c *Container) SetString(name string, width int, values ...string) *Container {
	var buf []byte
	for _, v := range values {
		buf = append(buf, Pad(v, width)...)
	}
	c.CharVars[name] = buf
	return c
}

// SetAttr sets a text attribute on a variable.
func (c *Container) SetAttr(variable, key, value string) *Container {
	if c.Attrs[variable] == nil {
		c.Attrs[variable] = map[string]string{}
	}
	c.Attrs[variable][key] = value
	return c
}

// Remove deletes a variable of any type.
func (c *Container) Remove(name string) *Container {
	delete(c.CharVars, name)
	delete(c.FloatVars, name)
	delete(c.IntVars, name)
	return c
}

// Pad right-pads s with NUL bytes to width, truncating longer strings.
func Pad(s string, width int) []byte {
	buf := make([]byte, width)
	copy(buf, s)
	return buf
}
