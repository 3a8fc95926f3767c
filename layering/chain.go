package layering

import "strings"

// DefaultPostfix names the unqualified source. It always closes a Chain.
const DefaultPostfix = ""

// Chain describes the ordered fallback sequence from strongest to weakest.
type Chain struct {
	ordered []string
}

// NewChain builds a chain from priorities ordered strongest first. Repeated
// postfixes keep their first position and the default postfix is moved to
// the end, so the chain is never empty.
func NewChain(priorities ...string) Chain {
	ordered := make([]string, 0, len(priorities)+1)
	seen := map[string]struct{}{DefaultPostfix: {}}
	for _, postfix := range priorities {
		if _, exists := seen[postfix]; exists {
			continue
		}
		seen[postfix] = struct{}{}
		ordered = append(ordered, postfix)
	}
	ordered = append(ordered, DefaultPostfix)
	return Chain{ordered: ordered}
}

// Ordered returns the sequence from strongest (index 0) to weakest.
func (c Chain) Ordered() []string {
	if len(c.ordered) == 0 {
		return []string{DefaultPostfix}
	}
	out := make([]string, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Head returns the strongest postfix, which is the implicit lookup target.
func (c Chain) Head() string {
	if len(c.ordered) == 0 {
		return DefaultPostfix
	}
	return c.ordered[0]
}

// Len returns the number of postfixes including the default.
func (c Chain) Len() int {
	if len(c.ordered) == 0 {
		return 1
	}
	return len(c.ordered)
}

// Contains reports whether postfix is already part of the chain.
func (c Chain) Contains(postfix string) bool {
	for _, candidate := range c.Ordered() {
		if candidate == postfix {
			return true
		}
	}
	return false
}

// Key returns a snapshot of the chain suitable for map keys.
func (c Chain) Key() string {
	return strings.Join(c.Ordered(), "\x1f")
}

// Probe computes the postfixes to visit for one lookup. A requested postfix
// that is missing from the chain is tried first; one that is already present
// adds nothing. Without an explicit request the chain is used as is.
func (c Chain) Probe(requested string, explicit bool) []string {
	ordered := c.Ordered()
	if !explicit || c.Contains(requested) {
		return ordered
	}
	return append([]string{requested}, ordered...)
}
