// Package query filters repository entities with CEL expressions.
//
// An expression sees the following variables:
//
//	guid            string
//	typeName        string
//	supertypes      list(string)   declared supertypes, nearest first
//	qualifiedName   string         "" if absent
//	classifications list(string)   classification names
//	properties      map(string, dyn)
//	status          string         "ACTIVE" if absent
//	provenance      string
//
// and the member function string.isA(string), which answers type
// compatibility questions through the configured TypeOracle:
//
//	typeName.isA("GovernanceDefinition") && "Ownership" in classifications
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dnswlt/omcat/internal/api"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// TypeOracle answers whether typeName is ancestor or one of its subtypes.
type TypeOracle interface {
	IsTypeOf(typeName, ancestor string) bool
}

// Query is a compiled filter expression. It is safe for concurrent use.
type Query struct {
	source string
	prg    cel.Program // nil for the empty query, which matches everything
}

func newEnv(oracle TypeOracle) (*cel.Env, error) {
	isA := func(lhs, rhs ref.Val) ref.Val {
		typeName, ok1 := lhs.(types.String)
		ancestor, ok2 := rhs.(types.String)
		if !ok1 || !ok2 {
			return types.MaybeNoSuchOverloadErr(lhs)
		}
		if typeName == ancestor {
			return types.True
		}
		if oracle == nil {
			return types.False
		}
		return types.Bool(oracle.IsTypeOf(string(typeName), string(ancestor)))
	}
	return cel.NewEnv(
		cel.Variable("guid", cel.StringType),
		cel.Variable("typeName", cel.StringType),
		cel.Variable("supertypes", cel.ListType(cel.StringType)),
		cel.Variable("qualifiedName", cel.StringType),
		cel.Variable("classifications", cel.ListType(cel.StringType)),
		cel.Variable("properties", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("status", cel.StringType),
		cel.Variable("provenance", cel.StringType),
		cel.Function("isA",
			cel.MemberOverload("string_isA_string",
				[]*cel.Type{cel.StringType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(isA))),
	)
}

// Compile parses and type-checks expr. The expression must evaluate to a bool.
// An empty (or all-whitespace) expression matches every entity.
// oracle may be nil, in which case isA only matches identical type names.
func Compile(expr string, oracle TypeOracle) (*Query, error) {
	q := &Query{source: expr}
	if strings.TrimSpace(expr) == "" {
		return q, nil
	}
	env, err := newEnv(oracle)
	if err != nil {
		return nil, fmt.Errorf("cannot create CEL environment: %v", err)
	}
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("invalid query %q: %v", expr, iss.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("query %q has type %s, want bool", expr, t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("cannot build program for query %q: %v", expr, err)
	}
	q.prg = prg
	return q, nil
}

func (q *Query) String() string {
	return q.source
}

func activation(e *api.EntityDetail) map[string]any {
	status := e.Status
	if status == "" {
		status = "ACTIVE"
	}
	var supertypes []string
	if e.Type != nil {
		supertypes = slices.Clone(e.Type.TypeDefSuperTypes)
	}
	if supertypes == nil {
		supertypes = []string{}
	}
	classifications := make([]string, 0, len(e.Classifications))
	for _, c := range e.Classifications {
		if c != nil {
			classifications = append(classifications, c.Name)
		}
	}
	properties := e.Properties
	if properties == nil {
		properties = map[string]any{}
	}
	qualifiedName, _ := e.Properties["qualifiedName"].(string)
	return map[string]any{
		"guid":            e.GUID,
		"typeName":        e.Type.Name(),
		"supertypes":      supertypes,
		"qualifiedName":   qualifiedName,
		"classifications": classifications,
		"properties":      properties,
		"status":          status,
		"provenance":      e.Provenance,
	}
}

// Matches evaluates the query against e. Evaluation errors, such as
// accessing a missing property without has(), are returned as errors.
func (q *Query) Matches(e *api.EntityDetail) (bool, error) {
	if q.prg == nil {
		return true, nil
	}
	if e == nil {
		return false, nil
	}
	out, _, err := q.prg.Eval(activation(e))
	if err != nil {
		return false, fmt.Errorf("query %q failed for entity %s: %v", q.source, e.GUID, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("query %q returned %v for entity %s, want bool", q.source, out.Type(), e.GUID)
	}
	return b, nil
}
