package source

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultSeparator separates the base name from the postfix.
const DefaultSeparator = '_'

// Template describes one family of postfixed files: Dir/Base[Separator postfix].ext.
type Template struct {
	Dir       string
	Base      string
	Separator rune
}

// ParseTemplate splits a template path such as "./data/lang" into its
// directory and base name. A zero separator selects DefaultSeparator.
func ParseTemplate(template string, separator rune) Template {
	if separator == 0 {
		separator = DefaultSeparator
	}
	dir, base := filepath.Split(filepath.FromSlash(template))
	if dir == "" {
		dir = "."
	}
	return Template{Dir: filepath.Clean(dir), Base: base, Separator: separator}
}

// parseFSTemplate is ParseTemplate for io/fs paths, which are always slash
// separated and unrooted.
func parseFSTemplate(template string, separator rune) Template {
	if separator == 0 {
		separator = DefaultSeparator
	}
	template = strings.TrimPrefix(path.Clean("/"+template), "/")
	dir, base := path.Split(template)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		dir = "."
	}
	return Template{Dir: dir, Base: base, Separator: separator}
}

// Match reports the postfix and extension encoded in a file name belonging
// to the template.
func (t Template) Match(name string) (postfix, ext string, ok bool) {
	return ParseFileName(t.Base, t.Separator, name)
}

// ParseFileName decodes name against base and separator. "base.ext" yields
// the default postfix; "base<sep>postfix.ext" yields postfix. The extension
// is everything after the last dot and must not be empty.
func ParseFileName(base string, separator rune, name string) (postfix, ext string, ok bool) {
	if base == "" {
		return "", "", false
	}
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return "", "", false
	}
	stem, ext := name[:dot], name[dot+1:]
	if stem == base {
		return "", ext, true
	}
	prefix := base + string(separator)
	if !strings.HasPrefix(stem, prefix) {
		return "", "", false
	}
	postfix = stem[len(prefix):]
	if postfix == "" {
		return "", "", false
	}
	return postfix, ext, true
}

// FileName builds the file name for postfix and ext under the template.
func (t Template) FileName(postfix, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if postfix == "" {
		return t.Base + "." + ext
	}
	return t.Base + string(t.Separator) + postfix + "." + ext
}
