package layering

import "github.com/goliatone/go-postfix/value"

// Contribution is the fragment one source supplied for a path.
type Contribution struct {
	Postfix string
	Value   value.Value
}

// SourceFunc returns the parsed tree registered for postfix.
type SourceFunc func(postfix string) (value.Value, bool)

// ExtractFunc locates path inside a tree.
type ExtractFunc func(tree value.Value, path string) (value.Value, bool)

// Extract is the dotted-path ExtractFunc used by structurally typed sources.
func Extract(tree value.Value, path string) (value.Value, bool) {
	return tree.Lookup(path)
}

// Collect probes every postfix in order and returns the fragments found at
// path, strongest first. Unknown postfixes and missing paths contribute
// nothing.
func Collect(probe []string, sources SourceFunc, extract ExtractFunc, path string) []Contribution {
	if extract == nil {
		extract = Extract
	}
	out := make([]Contribution, 0, len(probe))
	for _, postfix := range probe {
		tree, ok := sources(postfix)
		if !ok {
			continue
		}
		fragment, ok := extract(tree, path)
		if !ok {
			continue
		}
		out = append(out, Contribution{Postfix: postfix, Value: fragment})
	}
	return out
}

// FirstMatch returns the strongest contribution without looking further.
func FirstMatch(contributions []Contribution) (value.Value, bool) {
	if len(contributions) == 0 {
		return value.Null, false
	}
	return contributions[0].Value, true
}

// Merge combines contributions ordered strongest to weakest. The strongest
// fragment decides the policy: scalars and null win outright, objects are
// deep merged and arrays are concatenated weakest first.
func Merge(contributions []Contribution) (value.Value, bool) {
	if len(contributions) == 0 {
		return value.Null, false
	}
	layers := make([]value.Value, len(contributions))
	for i, c := range contributions {
		layers[i] = c.Value
	}
	return MergeLayers(layers...), true
}

// MergeLayers composes fragments ordered from strongest to weakest.
func MergeLayers(layers ...value.Value) value.Value {
	if len(layers) == 0 {
		return value.Null
	}
	switch layers[0].Kind() {
	case value.KindObject:
		return mergeObjects(layers)
	case value.KindArray:
		return mergeArrays(layers)
	default:
		return layers[0]
	}
}

func mergeObjects(layers []value.Value) value.Value {
	acc := value.NewObjectBuilder(layers[0].Len())
	for i := len(layers) - 1; i >= 0; i-- {
		if obj := layers[i].Object(); obj != nil {
			deepMerge(obj, acc)
		}
	}
	return acc.Build()
}

func mergeArrays(layers []value.Value) value.Value {
	var items []value.Value
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i].IsArray() {
			items = append(items, layers[i].Items()...)
		}
	}
	return value.Array(items...)
}

// deepMerge folds the stronger source into target.
func deepMerge(source *value.Object, target *value.ObjectBuilder) {
	source.Range(func(key string, strong value.Value) bool {
		weak, exists := target.Get(key)
		if !exists {
			target.Set(key, strong)
			return true
		}
		switch {
		case strong.IsObject() && weak.IsObject():
			nested := builderFrom(weak.Object())
			deepMerge(strong.Object(), nested)
			target.Set(key, nested.Build())
		case strong.IsArray() && weak.IsArray():
			items := append(weak.Items(), strong.Items()...)
			target.Set(key, value.Array(items...))
		default:
			target.Set(key, strong)
		}
		return true
	})
}

func builderFrom(obj *value.Object) *value.ObjectBuilder {
	b := value.NewObjectBuilder(obj.Len())
	obj.Range(func(key string, v value.Value) bool {
		b.Set(key, v)
		return true
	})
	return b
}
