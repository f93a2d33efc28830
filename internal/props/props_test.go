package props

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBag_TypedGetters(t *testing.T) {
	values := map[string]any{
		"qualifiedName": "asset-1",
		"priority":      3,
		"bigNumber":     int64(1) << 40,
		"ratio":         0.5,
		"flag":          "true",
		"authors":       []any{"a", "b"},
		"single":        "only",
		"additional":    map[string]any{"k": "v", "n": 1},
		"created":       "2024-03-01T10:00:00Z",
		"epoch":         int64(1709287200000),
	}
	b := NewBag(values)

	if got := b.String("qualifiedName"); got != "asset-1" {
		t.Errorf("String(qualifiedName) = %q", got)
	}
	if got := b.Int("priority"); got != 3 {
		t.Errorf("Int(priority) = %d", got)
	}
	if got := b.Int("bigNumber"); got != 0 {
		t.Errorf("Int(bigNumber) = %d, want 0 for out-of-range value", got)
	}
	if got := b.Float("ratio"); got != 0.5 {
		t.Errorf("Float(ratio) = %v", got)
	}
	if got := b.Bool("flag"); !got {
		t.Errorf("Bool(flag) = false")
	}
	if diff := cmp.Diff([]string{"a", "b"}, b.StringList("authors")); diff != "" {
		t.Errorf("StringList(authors) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"only"}, b.StringList("single")); diff != "" {
		t.Errorf("StringList(single) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"k": "v", "n": "1"}, b.StringMap("additional")); diff != "" {
		t.Errorf("StringMap(additional) mismatch (-want +got):\n%s", diff)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := b.Time("created"); got == nil || !got.Equal(want) {
		t.Errorf("Time(created) = %v, want %v", got, want)
	}
	if got := b.Time("epoch"); got == nil || !got.Equal(want) {
		t.Errorf("Time(epoch) = %v, want %v", got, want)
	}
	if got := b.Remaining(); got != nil {
		t.Errorf("Remaining() = %v, want nil", got)
	}
}

func TestBag_AbsentDefaults(t *testing.T) {
	b := NewBag(nil)
	if b.String("x") != "" || b.Int("x") != 0 || b.Long("x") != 0 || b.Bool("x") {
		t.Error("absent scalars should yield zero values")
	}
	if b.StringList("x") != nil || b.StringMap("x") != nil || b.Map("x") != nil || b.Time("x") != nil {
		t.Error("absent composites should yield nil")
	}
	var zero Bag
	if zero.String("x") != "" || zero.Remaining() != nil {
		t.Error("zero Bag should behave like an empty bag")
	}
}

func TestBag_RemainingIsSetDifference(t *testing.T) {
	values := map[string]any{
		"qualifiedName": "q",
		"description":   "d",
		"custom":        map[string]any{"nested": []any{"x"}},
		"other":         7,
	}
	b := NewBag(values)
	b.String("qualifiedName")
	b.String("description")
	b.String("notPresent")

	got := b.Remaining()
	want := map[string]any{
		"custom": map[string]any{"nested": []any{"x"}},
		"other":  7,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Remaining() mismatch (-want +got):\n%s", diff)
	}

	// The source map is never modified.
	if len(values) != 4 {
		t.Errorf("source map modified: %v", values)
	}
	// The result is a copy.
	got["custom"].(map[string]any)["nested"] = nil
	if values["custom"].(map[string]any)["nested"] == nil {
		t.Error("Remaining() shares nested maps with the source")
	}
}

func TestBag_PeekDoesNotConsume(t *testing.T) {
	b := NewBag(map[string]any{"owner": "alice"})
	if v, ok := b.Peek("owner"); !ok || v != "alice" {
		t.Errorf("Peek(owner) = %v, %t", v, ok)
	}
	if !b.Has("owner") {
		t.Error("Has(owner) = false after Peek")
	}
	b.String("owner")
	if b.Has("owner") {
		t.Error("Has(owner) = true after consumption")
	}
	if v, ok := b.Peek("owner"); !ok || v != "alice" {
		t.Errorf("Peek(owner) after consumption = %v, %t", v, ok)
	}
}

type color int

const (
	colorRed   color = 0
	colorGreen color = 1
	colorUnset color = -1
	colorOther color = 99
)

var colorEnum = NewEnum("Color", colorUnset, colorOther, map[color]string{
	colorRed:   "Red",
	colorGreen: "Green",
	colorOther: "Other",
})

func TestOrdinal(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want color
	}{
		{"ordinal", 1, colorGreen},
		{"ordinal as int64", int64(0), colorRed},
		{"symbolic name", "green", colorGreen},
		{"enum map with ordinal", map[string]any{"ordinal": 1, "symbolicName": "Red"}, colorGreen},
		{"enum map with name only", map[string]any{"symbolicName": "Red"}, colorRed},
		{"unknown ordinal", 42, colorOther},
		{"unknown name", "purple", colorOther},
		{"wrong type", []any{1}, colorOther},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBag(map[string]any{"c": tc.raw})
			if got := Ordinal(b, "c", colorEnum); got != tc.want {
				t.Errorf("Ordinal() = %v, want %v", got, tc.want)
			}
			if b.Remaining() != nil {
				t.Error("property not consumed")
			}
		})
	}

	if got := Ordinal(NewBag(nil), "c", colorEnum); got != colorUnset {
		t.Errorf("Ordinal() for absent property = %v, want %v", got, colorUnset)
	}
	if got := colorEnum.Symbol(colorGreen); got != "Green" {
		t.Errorf("Symbol(green) = %q", got)
	}
}

func TestBag_StringKeepsStructuredValues(t *testing.T) {
	b := NewBag(map[string]any{
		"description": []any{"line1", "line2"},
		"title":       map[string]any{"en": "Title"},
		"name":        "n",
	})
	if got := b.String("description"); got != "" {
		t.Errorf("String(description) = %q, want empty", got)
	}
	if got := b.String("title"); got != "" {
		t.Errorf("String(title) = %q, want empty", got)
	}
	b.String("name")
	want := map[string]any{
		"description": []any{"line1", "line2"},
		"title":       map[string]any{"en": "Title"},
	}
	if diff := cmp.Diff(want, b.Remaining()); diff != "" {
		t.Errorf("Remaining() mismatch (-want +got):\n%s", diff)
	}
}
