package domain

import (
	"errors"
	"log/slog"
	"strings"
)

// Sentinels substituted for numeric fields that are missing or malformed.
const (
	FillInt   = 99999
	FillFloat = 999999.0
)

// Fixed widths of Argo character fields.
const (
	String1   = 1
	String2   = 2
	String4   = 4
	String8   = 8
	String16  = 16
	String32  = 32
	String64  = 64
	String256 = 256
	DateTime  = 14
)

// DecodeFixed decodes a fixed-width character field. Invalid UTF-8 is replaced
// rather than rejected, and trailing NUL and space padding is stripped.
func DecodeFixed(raw []byte) string {
	return strings.TrimRight(strings.ToValidUTF8(string(raw), "\uFFFD"), "\x00 ")
}

// SplitFixed slices raw into count chunks of width bytes and decodes each one.
// The result always has exactly count entries; chunks beyond the end of raw
// decode to "" and a trailing partial chunk decodes to what is there.
func SplitFixed(raw []byte, width, count int) []string {
	if count <= 0 {
		return []string{}
	}
	out := make([]string, count)
	if width <= 0 {
		return out
	}
	for i := range out {
		start := i * width
		if start >= len(raw) {
			break
		}
		out[i] = DecodeFixed(raw[start:min(start+width, len(raw))])
	}
	return out
}

// Unpacker reads named fields of the first profile in a Container. Missing or
// malformed fields never fail a read; they fall back to sentinels and are
// recorded so the caller can report a degraded record.
type Unpacker struct {
	c        Container
	logger   *slog.Logger
	degraded []string
}

// NewUnpacker wraps c. A nil logger discards field warnings.
func NewUnpacker(c Container, logger *slog.Logger) *Unpacker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Unpacker{c: c, logger: logger}
}

// Container returns the wrapped container.
func (u *Unpacker) Container() Container {
	return u.c
}

// Degraded lists the fields that fell back to a sentinel, in read order.
func (u *Unpacker) Degraded() []string {
	return u.degraded
}

func (u *Unpacker) degrade(name string, err error) {
	u.degraded = append(u.degraded, name)
	u.logger.Debug("field fell back to sentinel", "field", name, "error", err)
}

// String reads the first width bytes of a character variable.
func (u *Unpacker) String(name string, width int) string {
	raw, err := u.c.Chars(name)
	if err != nil {
		u.degrade(name, err)
		return ""
	}
	return DecodeFixed(raw[:min(width, len(raw))])
}

// Strings reads count fixed-width strings from the start of a character variable.
func (u *Unpacker) Strings(name string, width, count int) []string {
	raw, err := u.c.Chars(name)
	if err != nil {
		u.degrade(name, err)
		return SplitFixed(nil, width, count)
	}
	if len(raw) < width*count {
		u.degrade(name, errors.New("short character array"))
	}
	return SplitFixed(raw, width, count)
}

// Int reads the first element of an integer variable, or FillInt.
func (u *Unpacker) Int(name string) int {
	vals, err := u.c.Ints(name)
	if err != nil {
		u.degrade(name, err)
		return FillInt
	}
	if len(vals) == 0 {
		u.degrade(name, errors.New("empty variable"))
		return FillInt
	}
	return int(vals[0])
}

// Float reads the first element of a numeric variable, or FillFloat.
func (u *Unpacker) Float(name string) float64 {
	vals, err := u.c.Floats(name)
	if err != nil {
		u.degrade(name, err)
		return FillFloat
	}
	if len(vals) == 0 {
		u.degrade(name, errors.New("empty variable"))
		return FillFloat
	}
	return vals[0]
}

// Attribute reads a text attribute, or "" when it is not set.
func (u *Unpacker) Attribute(variable, key string) string {
	v, ok := u.c.Attribute(variable, key)
	if !ok {
		return ""
	}
	return DecodeFixed([]byte(v))
}

// SplitNames splits a delimited name list on commas and trims each entry.
// An empty list yields no names.
func SplitNames(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
