// Package adapter defines the source format capability consumed by the
// resolution engine, plus the properties, JSON and YAML implementations.
//
// Adapters come in two capability variants. A FirstMatchAdapter stops at the
// strongest source containing a path and only deals in scalars. A
// MergingAdapter deep merges objects and concatenates arrays across every
// source in the probe sequence. Callers detect the variant with a type
// assertion or CapabilityOf.
package adapter

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-postfix/layering"
	"github.com/goliatone/go-postfix/value"
)

// Capability reports how an adapter combines contributions.
type Capability uint8

const (
	CapabilityNone Capability = iota
	CapabilityFirstMatch
	CapabilityMerge
)

func (c Capability) String() string {
	switch c {
	case CapabilityFirstMatch:
		return "first-match"
	case CapabilityMerge:
		return "merge"
	default:
		return "none"
	}
}

// Adapter parses raw documents of one format into value trees.
type Adapter interface {
	// Format names the adapter ("properties", "json", "yaml").
	Format() string
	// SupportsExtension reports whether files with ext (no leading dot,
	// any case) belong to this adapter.
	SupportsExtension(ext string) bool
	// Ingest parses content registered under postfix.
	Ingest(postfix string, content []byte) (value.Value, error)
}

// Request describes a single lookup handed to an adapter.
type Request struct {
	Probe []string
	Path  string
	Shape value.Shape
}

// FirstMatchAdapter resolves a request from the strongest contributing
// source only.
type FirstMatchAdapter interface {
	Adapter
	ExtractFirst(sources layering.SourceFunc, req Request) (value.Value, bool, error)
}

// MergingAdapter resolves a request by merging every contributing source.
type MergingAdapter interface {
	Adapter
	ExtractAndMerge(sources layering.SourceFunc, req Request) (value.Value, bool, error)
}

// CapabilityOf reports the strongest capability a implements.
func CapabilityOf(a Adapter) Capability {
	switch a.(type) {
	case MergingAdapter:
		return CapabilityMerge
	case FirstMatchAdapter:
		return CapabilityFirstMatch
	default:
		return CapabilityNone
	}
}

// Defaults returns one instance of every built-in adapter.
func Defaults() []Adapter {
	return []Adapter{NewProperties(), NewJSON(), NewYAML()}
}

// ByName returns the built-in adapter registered under name or extension.
func ByName(name string) (Adapter, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	for _, candidate := range Defaults() {
		if candidate.Format() == key || candidate.SupportsExtension(key) {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("adapter: unknown format %q", name)
}

// ForExtension returns the built-in adapter handling files with ext.
func ForExtension(ext string) (Adapter, bool) {
	for _, candidate := range Defaults() {
		if candidate.SupportsExtension(ext) {
			return candidate, true
		}
	}
	return nil, false
}

type extensionSet []string

func (s extensionSet) supports(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	for _, candidate := range s {
		if strings.EqualFold(candidate, ext) {
			return true
		}
	}
	return false
}

// structured implements the merge capability shared by typed formats.
type structured struct {
	format     string
	extensions extensionSet
}

func (s structured) Format() string {
	return s.format
}

func (s structured) SupportsExtension(ext string) bool {
	return s.extensions.supports(ext)
}

// ExtractAndMerge descends the dotted path in every probed source and merges
// whatever was found.
func (s structured) ExtractAndMerge(sources layering.SourceFunc, req Request) (value.Value, bool, error) {
	contributions := layering.Collect(req.Probe, sources, layering.Extract, req.Path)
	merged, ok := layering.Merge(contributions)
	return merged, ok, nil
}
