package adapter

import (
	"bytes"
	"fmt"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/goliatone/go-postfix/value"
)

// YAMLExtensions lists the file extensions handled by YAML.
var YAMLExtensions = []string{"yaml", "yml"}

const yamlMergeTag = "!!merge"

// YAML reads YAML documents. The node tree is walked directly so mapping
// order survives, anchors are followed and merge keys are applied.
type YAML struct {
	structured
}

var _ MergingAdapter = (*YAML)(nil)

func NewYAML() *YAML {
	return &YAML{structured{format: "yaml", extensions: extensionSet(YAMLExtensions)}}
}

// Ingest parses content. An empty document yields an empty object.
func (y *YAML) Ingest(postfix string, content []byte) (value.Value, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return value.NewObject(), nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return value.Null, &ParseError{Format: y.Format(), Postfix: postfix, Cause: err}
	}
	if root.Kind == yaml.DocumentNode && len(root.Content) == 0 {
		return value.NewObject(), nil
	}
	w := newYAMLWalker(len(content))
	tree, err := w.node(&root)
	if err != nil {
		return value.Null, &ParseError{Format: y.Format(), Postfix: postfix, Cause: err}
	}
	return tree, nil
}

// Expansion budget: yamlNodeFloor nodes plus yamlNodesPerByte for every
// byte of input.
const (
	yamlNodeFloor    = 10_000
	yamlNodesPerByte = 64
)

// yamlWalker converts a node tree. Aliases are expanded in place, so the
// walker refuses nodes already on the current path and stops once the
// expanded tree outgrows the budget.
type yamlWalker struct {
	open   map[*yaml.Node]bool
	budget int
}

func newYAMLWalker(size int) *yamlWalker {
	return &yamlWalker{open: map[*yaml.Node]bool{}, budget: yamlNodeFloor + yamlNodesPerByte*size}
}

func (w *yamlWalker) enter(node *yaml.Node) error {
	if w.open[node] {
		return fmt.Errorf("line %d: %w", node.Line, ErrAliasCycle)
	}
	w.open[node] = true
	return nil
}

func (w *yamlWalker) leave(node *yaml.Node) { delete(w.open, node) }

func (w *yamlWalker) node(node *yaml.Node) (value.Value, error) {
	if node == nil {
		return value.Null, nil
	}
	w.budget--
	if w.budget < 0 {
		return value.Null, fmt.Errorf("line %d: %w", node.Line, ErrAliasExpansion)
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return value.Null, nil
		}
		return w.node(node.Content[0])
	case yaml.AliasNode:
		return w.node(node.Alias)
	case yaml.MappingNode:
		return w.mapping(node)
	case yaml.SequenceNode:
		if err := w.enter(node); err != nil {
			return value.Null, err
		}
		defer w.leave(node)
		items := make([]value.Value, 0, len(node.Content))
		for i, child := range node.Content {
			item, err := w.node(child)
			if err != nil {
				return value.Null, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, item)
		}
		return value.Array(items...), nil
	case yaml.ScalarNode:
		return convertYAMLScalar(node)
	default:
		return value.Null, fmt.Errorf("line %d: unsupported node kind %v", node.Line, node.Kind)
	}
}

// mapping applies merge keys first so explicit keys override merged ones
// wherever they appear.
func (w *yamlWalker) mapping(node *yaml.Node) (value.Value, error) {
	if err := w.enter(node); err != nil {
		return value.Null, err
	}
	defer w.leave(node)

	b := value.NewObjectBuilder(len(node.Content) / 2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Tag != yamlMergeTag {
			continue
		}
		if err := w.merge(b, val); err != nil {
			return value.Null, err
		}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Tag == yamlMergeTag {
			continue
		}
		child, err := w.node(val)
		if err != nil {
			return value.Null, fmt.Errorf("%s: %w", key.Value, err)
		}
		b.Set(key.Value, child)
	}
	return b.Build(), nil
}

func (w *yamlWalker) merge(b *value.ObjectBuilder, node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode:
		merged, err := w.mapping(node)
		if err != nil {
			return err
		}
		merged.Object().Range(func(key string, v value.Value) bool {
			if _, exists := b.Get(key); !exists {
				b.Set(key, v)
			}
			return true
		})
		return nil
	case yaml.SequenceNode:
		if err := w.enter(node); err != nil {
			return err
		}
		defer w.leave(node)
		for _, child := range node.Content {
			if err := w.merge(b, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: merge key expects a mapping", node.Line)
	}
}

func convertYAMLScalar(node *yaml.Node) (value.Value, error) {
	var decoded any
	if err := node.Decode(&decoded); err != nil {
		return value.Null, fmt.Errorf("line %d: %w", node.Line, err)
	}
	if _, ok := decoded.(time.Time); ok {
		return value.String(node.Value), nil
	}
	v, err := value.FromAny(decoded)
	if err != nil {
		return value.String(node.Value), nil
	}
	return v, nil
}
