package source

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-postfix/adapter"
	"github.com/goliatone/go-postfix/value"
)

// DefaultPostfix identifies the unqualified source.
const DefaultPostfix = ""

var ErrDuplicatePostfix = errors.New("source: duplicate postfix")

var ErrAdapterRequired = errors.New("source: adapter is required")

// Registry maps postfixes to parsed trees. The default entry always exists.
type Registry struct {
	format string
	trees  map[string]value.Value
	names  map[string]string
}

// Build ingests docs through a and returns the resulting registry. Any parse
// failure or repeated postfix aborts the whole batch.
func Build(a adapter.Adapter, docs []Document) (*Registry, error) {
	if a == nil {
		return nil, ErrAdapterRequired
	}
	r := &Registry{
		format: a.Format(),
		trees:  make(map[string]value.Value, len(docs)+1),
		names:  make(map[string]string, len(docs)),
	}
	for _, doc := range docs {
		if prev, exists := r.names[doc.Postfix]; exists {
			return nil, fmt.Errorf("%w %q (%s, %s)", ErrDuplicatePostfix, doc.Postfix, displayName(prev), displayName(doc.Name))
		}
		tree, err := a.Ingest(doc.Postfix, doc.Content)
		if err != nil {
			var parseErr *adapter.ParseError
			if errors.As(err, &parseErr) && parseErr.Name == "" {
				parseErr.Name = doc.Name
			}
			return nil, err
		}
		r.trees[doc.Postfix] = tree
		r.names[doc.Postfix] = doc.Name
	}
	if _, ok := r.trees[DefaultPostfix]; !ok {
		r.trees[DefaultPostfix] = value.NewObject()
	}
	return r, nil
}

// Format names the adapter the registry was built with.
func (r *Registry) Format() string {
	if r == nil {
		return ""
	}
	return r.format
}

// Tree returns the parsed tree registered under postfix. Its signature
// matches layering.SourceFunc.
func (r *Registry) Tree(postfix string) (value.Value, bool) {
	if r == nil {
		return value.Null, false
	}
	tree, ok := r.trees[postfix]
	return tree, ok
}

// Has reports whether postfix was loaded.
func (r *Registry) Has(postfix string) bool {
	_, ok := r.Tree(postfix)
	return ok
}

// Name returns the document name postfix was loaded from, if any.
func (r *Registry) Name(postfix string) string {
	if r == nil {
		return ""
	}
	return r.names[postfix]
}

// Len counts registered postfixes, default included.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.trees)
}

// Postfixes lists every registered postfix sorted, default first.
func (r *Registry) Postfixes() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.trees))
	for postfix := range r.trees {
		out = append(out, postfix)
	}
	sort.Strings(out)
	return out
}

// Overlays lists the non-default postfixes sorted.
func (r *Registry) Overlays() []string {
	all := r.Postfixes()
	out := make([]string, 0, len(all))
	for _, postfix := range all {
		if postfix != DefaultPostfix {
			out = append(out, postfix)
		}
	}
	return out
}

func displayName(name string) string {
	if name == "" {
		return "<unnamed>"
	}
	return name
}
