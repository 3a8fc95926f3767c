package value

import "strings"

// PathSeparator splits a dotted path into object keys.
const PathSeparator = "."

// SplitPath returns the keys of a dotted path. The empty path has no keys.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// JoinPath appends segment to prefix using the path separator.
func JoinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + PathSeparator + segment
}

// Lookup descends object keys along path. The empty path returns v itself.
// A missing key or a non-object intermediate reports false.
func (v Value) Lookup(path string) (Value, bool) {
	current := v
	for _, key := range SplitPath(path) {
		obj := current.Object()
		if obj == nil {
			return Null, false
		}
		next, ok := obj.Get(key)
		if !ok {
			return Null, false
		}
		current = next
	}
	return current, true
}
