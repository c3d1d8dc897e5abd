package netcdf

import (
	"fmt"
	"reflect"
	"strconv"
)

// flattenChars converts decoded character data (a string or nested slices of
// strings) into raw bytes. Strings shorter than width are NUL padded.
func flattenChars(v any, width int) ([]byte, error) {
	var out []byte
	var walk func(reflect.Value) error
	walk = func(x reflect.Value) error {
		switch x.Kind() {
		case reflect.String:
			out = append(out, x.String()...)
			for pad := width - x.Len(); pad > 0; pad-- {
				out = append(out, 0)
			}
		case reflect.Uint8:
			out = append(out, byte(x.Uint()))
		case reflect.Int8:
			out = append(out, byte(x.Int()))
		case reflect.Slice, reflect.Array:
			for i := range x.Len() {
				if err := walk(x.Index(i)); err != nil {
					return err
				}
			}
		case reflect.Interface:
			return walk(x.Elem())
		default:
			return fmt.Errorf("unsupported character data %s", x.Type())
		}
		return nil
	}
	if v == nil {
		return nil, nil
	}
	if err := walk(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return out, nil
}

// flattenFloats converts scalar or nested numeric data into float64 values.
// float32 values keep their shortest decimal form (17.9, not 17.899999618530273).
func flattenFloats(v any) ([]float64, error) {
	var out []float64
	var walk func(reflect.Value) error
	walk = func(x reflect.Value) error {
		switch x.Kind() {
		case reflect.Float32:
			f, err := strconv.ParseFloat(strconv.FormatFloat(x.Float(), 'g', -1, 32), 64)
			if err != nil {
				return err
			}
			out = append(out, f)
		case reflect.Float64:
			out = append(out, x.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = append(out, float64(x.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out = append(out, float64(x.Uint()))
		case reflect.Slice, reflect.Array:
			for i := range x.Len() {
				if err := walk(x.Index(i)); err != nil {
					return err
				}
			}
		case reflect.Interface:
			return walk(x.Elem())
		default:
			return fmt.Errorf("unsupported numeric data %s", x.Type())
		}
		return nil
	}
	if v == nil {
		return nil, nil
	}
	if err := walk(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return out, nil
}

// flattenInts converts scalar or nested integer data into int64 values.
func flattenInts(v any) ([]int64, error) {
	var out []int64
	var walk func(reflect.Value) error
	walk = func(x reflect.Value) error {
		switch x.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = append(out, x.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out = append(out, int64(x.Uint()))
		case reflect.Slice, reflect.Array:
			for i := range x.Len() {
				if err := walk(x.Index(i)); err != nil {
					return err
				}
			}
		case reflect.Interface:
			return walk(x.Elem())
		default:
			return fmt.Errorf("unsupported integer data %s", x.Type())
		}
		return nil
	}
	if v == nil {
		return nil, nil
	}
	if err := walk(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return out, nil
}
