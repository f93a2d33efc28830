package props

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Enum describes an enumerated property type with stable ordinals.
//
// Enum values arrive either as plain ordinals, as symbolic names, or as
// maps with "ordinal" and/or "symbolicName" keys. Values that cannot be
// matched decode to the enum's Other value, since enum value sets evolve
// across repository versions.
type Enum[T ~int] struct {
	name    string
	absent  T
	other   T
	byOrd   map[int]T
	byName  map[string]T
	symbols map[T]string
}

// NewEnum creates an enum type. absent is returned for missing properties,
// other for values that are present but not recognized.
func NewEnum[T ~int](name string, absent, other T, symbols map[T]string) *Enum[T] {
	e := &Enum[T]{
		name:    name,
		absent:  absent,
		other:   other,
		byOrd:   make(map[int]T, len(symbols)),
		byName:  make(map[string]T, len(symbols)),
		symbols: symbols,
	}
	for v, s := range symbols {
		e.byOrd[int(v)] = v
		e.byName[strings.ToLower(s)] = v
	}
	return e
}

// Name returns the enum type name.
func (e *Enum[T]) Name() string { return e.name }

// Symbol returns the symbolic name of v, or "" if v is not a known value.
func (e *Enum[T]) Symbol(v T) string {
	return e.symbols[v]
}

// Decode converts a raw property value. ok is false if the value was not
// recognized and the Other value was returned instead.
func (e *Enum[T]) Decode(raw any) (v T, ok bool) {
	switch x := raw.(type) {
	case nil:
		return e.absent, true
	case string:
		if v, ok := e.byName[strings.ToLower(x)]; ok {
			return v, true
		}
	case map[string]any:
		if n, ok := toInt64(x["ordinal"]); ok {
			if v, ok := e.byOrd[int(n)]; ok {
				return v, true
			}
		}
		if s, ok := x["symbolicName"].(string); ok {
			if v, ok := e.byName[strings.ToLower(s)]; ok {
				return v, true
			}
		}
	default:
		if n, ok := toInt64(raw); ok {
			if v, ok := e.byOrd[int(n)]; ok {
				return v, true
			}
		}
	}
	return e.other, false
}

// Ordinal consumes name from b and decodes it as a value of enum e.
func Ordinal[T ~int](b *Bag, name string, e *Enum[T]) T {
	raw, ok := b.consume(name)
	if !ok {
		return e.absent
	}
	v, ok := e.Decode(raw)
	if !ok {
		log.Debug().Str("enum", e.name).Str("property", name).Interface("value", raw).
			Msg("unrecognized enum value, using fallback")
	}
	return v
}
