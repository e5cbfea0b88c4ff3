package codec

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"positioning-bridge/internal/bridgeerr"
)

// Object is the structured form of a record.
type Object = map[string]any

// Array is the structured form of a list.
type Array = []any

func asObject(v any, field string) (Object, error) {
	switch o := v.(type) {
	case map[string]any:
		return o, nil
	case nil:
		return nil, bridgeerr.Malformed(field, "missing")
	default:
		return nil, bridgeerr.Malformed(field, "expected object, got %T", v)
	}
}

func asArray(v any, field string) (Array, error) {
	switch a := v.(type) {
	case []any:
		return a, nil
	case nil:
		return nil, bridgeerr.Malformed(field, "missing")
	default:
		return nil, bridgeerr.Malformed(field, "expected array, got %T", v)
	}
}

// lookup returns the value under key, treating explicit nulls as absent.
func lookup(o Object, key string) (any, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func requireObject(o Object, key string) (Object, error) {
	v, _ := lookup(o, key)
	return asObject(v, key)
}

func requireArray(o Object, key string) (Array, error) {
	v, _ := lookup(o, key)
	return asArray(v, key)
}

func requireString(o Object, key string) (string, error) {
	v, ok := lookup(o, key)
	if !ok {
		return "", bridgeerr.Malformed(key, "missing")
	}
	s, ok := v.(string)
	if !ok {
		return "", bridgeerr.Malformed(key, "expected string, got %T", v)
	}
	return s, nil
}

func requireFloat(o Object, key string) (float64, error) {
	v, ok := lookup(o, key)
	if !ok {
		return 0, bridgeerr.Malformed(key, "missing")
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, bridgeerr.Malformed(key, "expected number, got %T", v)
	}
	return f, nil
}

func requireInt(o Object, key string) (int, error) {
	f, err := requireFloat(o, key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, bridgeerr.Malformed(key, "expected integer, got %v", f)
	}
	return int(f), nil
}

func optString(o Object, key string) (string, error) {
	if _, ok := lookup(o, key); !ok {
		return "", nil
	}
	return requireString(o, key)
}

func optFloat(o Object, key string) (float64, bool, error) {
	if _, ok := lookup(o, key); !ok {
		return 0, false, nil
	}
	f, err := requireFloat(o, key)
	return f, err == nil, err
}

func optInt(o Object, key string) (int, bool, error) {
	if _, ok := lookup(o, key); !ok {
		return 0, false, nil
	}
	n, err := requireInt(o, key)
	return n, err == nil, err
}

func optBool(o Object, key string) (*bool, error) {
	v, ok := lookup(o, key)
	if !ok {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, bridgeerr.Malformed(key, "expected boolean, got %T", v)
	}
	return &b, nil
}

// identifier reads an id that hosts may send as a string or a number.
func identifier(o Object, keys ...string) (string, error) {
	for _, key := range keys {
		v, ok := lookup(o, key)
		if !ok {
			continue
		}
		switch id := v.(type) {
		case string:
			return id, nil
		default:
			f, ok := toFloat(v)
			if !ok || f != math.Trunc(f) {
				return "", bridgeerr.Malformed(key, "expected string or integer id, got %T", v)
			}
			return strconv.FormatInt(int64(f), 10), nil
		}
	}
	return "", bridgeerr.Malformed(keys[0], "missing")
}

func stringList(o Object, key string) ([]string, error) {
	v, ok := lookup(o, key)
	if !ok {
		return nil, nil
	}
	arr, err := asArray(v, key)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, bridgeerr.Malformed(key, "expected list of strings, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

func encodeStringMap(m map[string]string) Object {
	o := make(Object, len(m))
	for k, v := range m {
		o[k] = v
	}
	return o
}

func decodeStringMap(o Object, key string) (map[string]string, error) {
	v, ok := lookup(o, key)
	if !ok {
		return map[string]string{}, nil
	}
	obj, err := asObject(v, key)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(obj))
	for k, raw := range obj {
		s, ok := raw.(string)
		if !ok {
			return nil, bridgeerr.Malformed(key+"."+k, "expected string, got %T", raw)
		}
		m[k] = s
	}
	return m, nil
}

func encodeTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(o Object, key string) (time.Time, error) {
	s, err := optString(o, key)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, bridgeerr.Malformed(key, "expected RFC 3339 timestamp: %v", err)
	}
	return t, nil
}

func encodeMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func decodeMillis(o Object, key string) (time.Time, error) {
	f, err := requireFloat(o, key)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(f)).UTC(), nil
}

// encodeList applies enc to every element, producing an Array.
func encodeList[T any](items []T, enc func(T) Object) Array {
	out := make(Array, 0, len(items))
	for _, item := range items {
		out = append(out, enc(item))
	}
	return out
}

// decodeList decodes every element of the array under key.
func decodeList[T any](o Object, key string, dec func(any) (T, error)) ([]T, error) {
	arr, err := requireArray(o, key)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(arr))
	for _, item := range arr {
		v, err := dec(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
