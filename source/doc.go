// Package source owns the set of postfixed documents an engine resolves
// against: how they are discovered, how they are named and how their parsed
// trees are kept.
//
// Responsibilities:
//   - Provider implementations only enumerate raw documents (Dir, FS, Memory).
//   - Registry ingests a document batch through one adapter and maps each
//     postfix to its parsed tree. A registry is immutable once built.
//   - The resolution engine swaps whole registries on reload, so lookups see
//     either the previous or the new set of sources, never a mix.
//
// Naming:
//
//	A template such as "data/lang" with separator '_' matches
//	"data/lang.yaml" (the default source, postfix "") and
//	"data/lang_cs.yaml" (postfix "cs"). Names that continue the base with any
//	other character ("data/language.yaml") are not part of the family.
package source
