package adapter

import (
	"github.com/magiconair/properties"

	"github.com/goliatone/go-postfix/layering"
	"github.com/goliatone/go-postfix/value"
)

// PropertiesExtension is the file extension handled by Properties.
const PropertiesExtension = "properties"

// Properties reads Java-style .properties files. Every value is text and
// keys are flat: the lookup path is the literal key, dots included.
type Properties struct {
	loader properties.Loader
}

var _ FirstMatchAdapter = (*Properties)(nil)

// NewProperties returns a properties adapter. ${key} references are kept
// verbatim.
func NewProperties() *Properties {
	return &Properties{
		loader: properties.Loader{
			Encoding:         properties.UTF8,
			DisableExpansion: true,
		},
	}
}

func (p *Properties) Format() string {
	return "properties"
}

func (p *Properties) SupportsExtension(ext string) bool {
	return extensionSet{PropertiesExtension}.supports(ext)
}

// Ingest parses content into an object of text values, keyed in file order.
func (p *Properties) Ingest(postfix string, content []byte) (value.Value, error) {
	loader := p.loader
	props, err := loader.LoadBytes(content)
	if err != nil {
		return value.Null, &ParseError{Format: p.Format(), Postfix: postfix, Cause: err}
	}
	keys := props.Keys()
	b := value.NewObjectBuilder(len(keys))
	for _, key := range keys {
		raw, _ := props.Get(key)
		b.Set(key, value.String(raw))
	}
	return b.Build(), nil
}

// ExtractFirst returns the value of the strongest source defining the key.
// Structured targets are rejected because plain text carries no structure.
func (p *Properties) ExtractFirst(sources layering.SourceFunc, req Request) (value.Value, bool, error) {
	if req.Shape.Structured() {
		return value.Null, false, &UnsupportedOperationError{Format: p.Format(), Operation: "structural merge", Shape: req.Shape}
	}
	contributions := layering.Collect(req.Probe, sources, extractFlatKey, req.Path)
	v, ok := layering.FirstMatch(contributions)
	return v, ok, nil
}

func extractFlatKey(tree value.Value, key string) (value.Value, bool) {
	if key == "" {
		return tree, true
	}
	return tree.Object().Get(key)
}
