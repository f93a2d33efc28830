package api

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Kind names as used in YAML (e.g, "kind: Entity")
	KindEntity       = "Entity"
	KindRelationship = "Relationship"
)

var (
	kindFactories = map[string]func() Instance{
		KindEntity:       func() Instance { return &EntityDetail{} },
		KindRelationship: func() Instance { return &Relationship{} },
	}
)

// FindKindInNode is a helper to extract the 'kind' value from a yaml.Node
func FindKindInNode(doc *yaml.Node) (string, error) {
	// The top-level node is a DocumentNode, its content is a MappingNode
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return "", errors.New("expected a YAML document with a top-level map")
	}

	nodes := doc.Content[0].Content
	for i := 0; i+1 < len(nodes); i += 2 {
		if nodes[i].Value != "kind" {
			continue
		}
		valueNode := nodes[i+1]
		if valueNode.Kind != yaml.ScalarNode {
			return "", fmt.Errorf("'kind' field is not a string (type: %v)", valueNode.Tag)
		}
		return valueNode.Value, nil
	}
	return "", errors.New("no 'kind' field found")
}

// NewInstanceFromNode decodes a single YAML document into an entity or relationship.
// In strict mode, unknown fields are rejected.
func NewInstanceFromNode(node *yaml.Node, strict bool) (Instance, error) {
	if len(node.Content) == 0 {
		return nil, errors.New("empty yaml document")
	}

	kind, err := FindKindInNode(node)
	if err != nil {
		return nil, fmt.Errorf("error in document: %w", err)
	}

	factory, ok := kindFactories[kind]
	if !ok {
		return nil, fmt.Errorf("invalid kind '%s'", kind)
	}
	inst := factory()

	if strict {
		// There is no strict mode when decoding a yaml.Node directly,
		// so re-encode the node and decode it with KnownFields.
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		if err := enc.Encode(node); err != nil {
			return nil, fmt.Errorf("failed to re-encode node: %v", err)
		}
		dec := yaml.NewDecoder(&buf)
		dec.KnownFields(true)
		if err := dec.Decode(inst); err != nil {
			return nil, fmt.Errorf("failed to decode node into struct: %v", err)
		}
	} else {
		if err := node.Decode(inst); err != nil {
			return nil, fmt.Errorf("failed to decode node into struct: %v", err)
		}
	}
	if inst.GetGUID() == "" {
		return nil, fmt.Errorf("%s without guid", kind)
	}
	inst.SetSourceInfo(&SourceInfo{
		Node: node,
		Line: node.Line,
	})

	return inst, nil
}

// NewInstanceFromString parses a single YAML document.
func NewInstanceFromString(content string) (Instance, error) {
	var node yaml.Node
	dec := yaml.NewDecoder(strings.NewReader(content))
	if err := dec.Decode(&node); err != nil {
		return nil, fmt.Errorf("failed to decode YAML node: %w", err)
	}
	return NewInstanceFromNode(&node, true)
}

// MustEntity parses content as an entity and panics on error.
// Intended for tests and static fixtures.
func MustEntity(content string) *EntityDetail {
	inst, err := NewInstanceFromString(content)
	if err != nil {
		panic(err)
	}
	e, ok := inst.(*EntityDetail)
	if !ok {
		panic(fmt.Sprintf("not an entity: %T", inst))
	}
	return e
}

// MustRelationship parses content as a relationship and panics on error.
func MustRelationship(content string) *Relationship {
	inst, err := NewInstanceFromString(content)
	if err != nil {
		panic(err)
	}
	r, ok := inst.(*Relationship)
	if !ok {
		panic(fmt.Sprintf("not a relationship: %T", inst))
	}
	return r
}
