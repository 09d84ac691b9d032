package ycf

import (
	"fmt"
	"reflect"
	"strings"
)

// Unmarshaler lets a type take over its own decoding from a raw parsed
// value (string, int, float64, bool, []any, or map[string]any). ActionEntry
// and UntargetWindow use it for ycf's untagged union fields: a bare scalar
// or a short positional array, not a table.
type Unmarshaler interface {
	UnmarshalYCF(v any) error
}

// Unmarshal parses scenario source and decodes it into v, which must be a
// non-nil pointer.
func Unmarshal(data []byte, v any) error {
	p := NewParser(data)
	parsed, err := p.Parse()
	if err != nil {
		return err
	}
	return Decode(parsed, v)
}

// Decode maps a generic map[string]any (as produced by Parser.Parse) onto
// the value pointed to by v using reflection, honoring `ycf:"name"` tags.
func Decode(data any, v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	return decodeValue(data, val.Elem())
}

func decodeValue(data any, val reflect.Value) error {
	if data == nil {
		return nil
	}

	if val.CanAddr() {
		if u, ok := val.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalYCF(data)
		}
	}

	switch val.Kind() {
	case reflect.Ptr:
		elemType := val.Type().Elem()
		newVal := reflect.New(elemType)
		if err := decodeValue(data, newVal.Elem()); err != nil {
			return err
		}
		val.Set(newVal)

	case reflect.Struct:
		dataMap, ok := data.(map[string]any)
		if !ok {
			return fmt.Errorf("expected table for %s, got %T", val.Type(), data)
		}
		return decodeStruct(dataMap, val)

	case reflect.Slice:
		dataSlice, ok := data.([]any)
		if !ok {
			mapSlice, ok := data.([]map[string]any)
			if !ok {
				return fmt.Errorf("expected array for %s, got %T", val.Type(), data)
			}
			dataSlice = make([]any, len(mapSlice))
			for i, m := range mapSlice {
				dataSlice[i] = m
			}
		}

		newSlice := reflect.MakeSlice(val.Type(), len(dataSlice), len(dataSlice))
		for i := range dataSlice {
			if err := decodeValue(dataSlice[i], newSlice.Index(i)); err != nil {
				return err
			}
		}
		val.Set(newSlice)

	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("only map[string]T is supported")
		}
		dataMap, ok := data.(map[string]any)
		if !ok {
			return fmt.Errorf("expected table, got %T", data)
		}
		newMap := reflect.MakeMap(val.Type())
		elemType := val.Type().Elem()
		for k, vData := range dataMap {
			newVal := reflect.New(elemType).Elem()
			if err := decodeValue(vData, newVal); err != nil {
				return fmt.Errorf("key %s: %w", k, err)
			}
			newMap.SetMapIndex(reflect.ValueOf(k), newVal)
		}
		val.Set(newMap)

	case reflect.Interface:
		val.Set(reflect.ValueOf(data))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := toFloat(data)
		if !ok {
			return fmt.Errorf("cannot convert %T to int", data)
		}
		val.SetInt(int64(f))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := toFloat(data)
		if !ok {
			return fmt.Errorf("cannot convert %T to uint", data)
		}
		val.SetUint(uint64(f))

	case reflect.Float32, reflect.Float64:
		f, ok := toFloat(data)
		if !ok {
			return fmt.Errorf("cannot convert %T to float", data)
		}
		val.SetFloat(f)

	case reflect.String:
		s, ok := data.(string)
		if !ok {
			return fmt.Errorf("cannot convert %T to string", data)
		}
		val.SetString(s)

	case reflect.Bool:
		b, ok := data.(bool)
		if !ok {
			return fmt.Errorf("cannot convert %T to bool", data)
		}
		val.SetBool(b)
	}

	return nil
}

func decodeStruct(data map[string]any, val reflect.Value) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		if fieldType.PkgPath != "" {
			continue // unexported
		}

		key := fieldType.Name
		if tag := fieldType.Tag.Get("ycf"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				key = parts[0]
			}
		}

		if vData, ok := data[key]; ok {
			if err := decodeValue(vData, field); err != nil {
				return fmt.Errorf("%s.%s: %w", typ.Name(), fieldType.Name, err)
			}
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch i := v.(type) {
	case int:
		return float64(i), true
	case int8:
		return float64(i), true
	case int16:
		return float64(i), true
	case int32:
		return float64(i), true
	case int64:
		return float64(i), true
	case uint:
		return float64(i), true
	case uint8:
		return float64(i), true
	case uint16:
		return float64(i), true
	case uint32:
		return float64(i), true
	case uint64:
		return float64(i), true
	case float64:
		return i, true
	case float32:
		return float64(i), true
	}
	return 0, false
}
