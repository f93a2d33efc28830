// Package props extracts typed values from the untyped property maps of
// repository instances.
//
// A Bag never modifies the map it reads from. Instead it remembers which
// properties have been consumed, so that Remaining can return everything
// that was not mapped to a typed field.
package props

import (
	"fmt"
	"maps"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Bag wraps an instance property map. The zero value is an empty bag.
// A Bag is not safe for concurrent use.
type Bag struct {
	values   map[string]any
	consumed map[string]struct{}
}

// NewBag returns a bag over values. values is not copied and must not be
// modified while the bag is in use.
func NewBag(values map[string]any) *Bag {
	return &Bag{
		values:   values,
		consumed: make(map[string]struct{}),
	}
}

func (b *Bag) consume(name string) (any, bool) {
	if b.consumed == nil {
		b.consumed = make(map[string]struct{})
	}
	b.consumed[name] = struct{}{}
	v, ok := b.values[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Has reports whether name is present and not consumed yet.
func (b *Bag) Has(name string) bool {
	if _, done := b.consumed[name]; done {
		return false
	}
	v, ok := b.values[name]
	return ok && v != nil
}

// Peek returns the raw value of name without consuming it.
func (b *Bag) Peek(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok && v != nil
}

// String consumes name and returns it as a string.
// Non-string scalars are formatted; absent properties yield "".
// Lists and maps are not consumed, so they remain available through Remaining.
func (b *Bag) String(name string) string {
	switch v := b.values[name]; v.(type) {
	case map[string]any, []any:
		log.Debug().Str("property", name).Interface("value", v).
			Msg("structured value for string property, keeping it as extended property")
		return ""
	}
	v, ok := b.consume(name)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// Int consumes name and returns it as an int. Absent or malformed values yield 0.
func (b *Bag) Int(name string) int {
	v, ok := b.consume(name)
	if !ok {
		return 0
	}
	n, ok := toInt64(v)
	if !ok || n > math.MaxInt32 || n < math.MinInt32 {
		return 0
	}
	return int(n)
}

// Long consumes name and returns it as an int64.
func (b *Bag) Long(name string) int64 {
	v, ok := b.consume(name)
	if !ok {
		return 0
	}
	n, _ := toInt64(v)
	return n
}

// Float consumes name and returns it as a float64.
func (b *Bag) Float(name string) float64 {
	v, ok := b.consume(name)
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0
		}
		return f
	}
	n, _ := toInt64(v)
	return float64(n)
}

// Bool consumes name and returns it as a bool.
func (b *Bag) Bool(name string) bool {
	v, ok := b.consume(name)
	if !ok {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		t, _ := strconv.ParseBool(x)
		return t
	}
	return false
}

// StringList consumes name and returns it as a list of strings.
// A single scalar is returned as a one-element list.
func (b *Bag) StringList(name string) []string {
	v, ok := b.consume(name)
	if !ok {
		return nil
	}
	return toStringList(v)
}

// StringMap consumes name and returns it as a map of strings.
func (b *Bag) StringMap(name string) map[string]string {
	v, ok := b.consume(name)
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case map[string]string:
		return maps.Clone(x)
	case map[string]any:
		result := make(map[string]string, len(x))
		for k, e := range x {
			if e == nil {
				continue
			}
			result[k] = fmt.Sprint(e)
		}
		return result
	}
	return nil
}

// Map consumes name and returns it as a map with untyped values.
func (b *Bag) Map(name string) map[string]any {
	v, ok := b.consume(name)
	if !ok {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return cloneMap(m)
	}
	return nil
}

// Time consumes name and returns it as a time. Timestamps may be given as
// time values, RFC 3339 strings, dates, or milliseconds since the epoch.
// Absent or malformed values yield nil.
func (b *Bag) Time(name string) *time.Time {
	v, ok := b.consume(name)
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case time.Time:
		return &x
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
			if t, err := time.Parse(layout, x); err == nil {
				return &t
			}
		}
		return nil
	}
	if ms, ok := toInt64(v); ok {
		t := time.UnixMilli(ms).UTC()
		return &t
	}
	return nil
}

// Remaining returns a copy of all properties that were not consumed.
// It returns nil if nothing remains.
func (b *Bag) Remaining() map[string]any {
	var result map[string]any
	for k, v := range b.values {
		if _, done := b.consumed[k]; done || v == nil {
			continue
		}
		if result == nil {
			result = make(map[string]any)
		}
		result[k] = cloneValue(v)
	}
	return result
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func toStringList(v any) []string {
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...)
	case []any:
		result := make([]string, 0, len(x))
		for _, e := range x {
			if e == nil {
				continue
			}
			if s, ok := e.(string); ok {
				result = append(result, s)
			} else {
				result = append(result, fmt.Sprint(e))
			}
		}
		return result
	case string:
		return []string{x}
	}
	return nil
}

// CloneMap returns a deep copy of m's maps and slices.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return cloneMap(m)
}

func cloneMap(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = cloneValue(v)
	}
	return result
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case []any:
		result := make([]any, len(x))
		for i, e := range x {
			result[i] = cloneValue(e)
		}
		return result
	case []string:
		return append([]string(nil), x...)
	}
	return v
}
