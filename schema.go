package postfix

import (
	"github.com/goliatone/go-postfix/internal/hydrate"
	"github.com/goliatone/go-postfix/value"
)

// FieldDescriptor describes a leaf path of the merged document, its
// inferred type and the postfixes defining it, strongest first.
type FieldDescriptor struct {
	Path    string   `json:"path"`
	Type    string   `json:"type"`
	Sources []string `json:"sources,omitempty"`
}

// Describe flattens the document merged along the engine's chain.
func (e *Engine) Describe() ([]FieldDescriptor, error) {
	return e.describe("", false)
}

// DescribeFor flattens the document merged for postfix.
func (e *Engine) DescribeFor(postfix string) ([]FieldDescriptor, error) {
	return e.describe(postfix, true)
}

// describe merges the document and attributes its leaves under one lock,
// so a concurrent Reload cannot mix two registries.
func (e *Engine) describe(postfix string, explicit bool) ([]FieldDescriptor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, probe, err := e.documentLocked(postfix, explicit)
	if err != nil {
		return nil, err
	}
	descriptors := deriveFieldDescriptors(doc, "")
	if descriptors == nil {
		return []FieldDescriptor{}, nil
	}
	for i := range descriptors {
		for _, candidate := range probe {
			tree, ok := e.registry.Tree(candidate)
			if !ok {
				continue
			}
			if _, found := e.leaf(tree, descriptors[i].Path); found {
				descriptors[i].Sources = append(descriptors[i].Sources, candidate)
			}
		}
	}
	return descriptors, nil
}

// leaf looks up a described path. Plain-text documents are flat, so their
// descriptor paths are literal keys.
func (e *Engine) leaf(tree value.Value, path string) (value.Value, bool) {
	if e.mode() == hydrate.ModeText {
		return tree.Object().Get(path)
	}
	return tree.Lookup(path)
}

func deriveFieldDescriptors(v value.Value, prefix string) []FieldDescriptor {
	switch v.Kind() {
	case value.KindNull:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: "nil"}}
	case value.KindObject:
		obj := v.Object()
		if obj.Len() == 0 {
			if prefix == "" {
				return nil
			}
			return []FieldDescriptor{{Path: prefix, Type: "map[string]any"}}
		}
		var fields []FieldDescriptor
		obj.Range(func(key string, child value.Value) bool {
			fields = append(fields, deriveFieldDescriptors(child, value.JoinPath(prefix, key))...)
			return true
		})
		return fields
	case value.KindArray:
		return []FieldDescriptor{{Path: prefix, Type: "[]" + elementTypeName(v.Items())}}
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: typeName(v)}}
	}
}

func elementTypeName(items []value.Value) string {
	if len(items) == 0 {
		return "any"
	}
	name := typeName(items[0])
	for _, item := range items[1:] {
		if typeName(item) != name {
			return "any"
		}
	}
	return name
}

func typeName(v value.Value) string {
	switch v.Kind() {
	case value.KindString:
		return "string"
	case value.KindNumber:
		if v.IsIntegral() {
			return "int64"
		}
		return "float64"
	case value.KindBool:
		return "bool"
	case value.KindObject:
		return "map[string]any"
	case value.KindArray:
		return "[]" + elementTypeName(v.Items())
	default:
		return "nil"
	}
}
