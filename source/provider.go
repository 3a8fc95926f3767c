package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Document is one raw source document before ingestion.
type Document struct {
	Postfix string
	// Name is the file or resource name, used in error messages.
	Name    string
	Content []byte
}

// AcceptFunc reports whether documents with the given extension should be
// returned. A nil AcceptFunc accepts everything.
type AcceptFunc func(ext string) bool

// Provider enumerates raw documents for one family of postfixed sources.
type Provider interface {
	Documents(ctx context.Context, accept AcceptFunc) ([]Document, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, accept AcceptFunc) ([]Document, error)

// Documents implements Provider.
func (f ProviderFunc) Documents(ctx context.Context, accept AcceptFunc) ([]Document, error) {
	return f(ctx, accept)
}

// Dir returns a provider reading template's family from the filesystem.
// A missing directory is an error.
func Dir(template string, separator rune) Provider {
	t := ParseTemplate(template, separator)
	return ProviderFunc(func(ctx context.Context, accept AcceptFunc) ([]Document, error) {
		entries, err := os.ReadDir(t.Dir)
		if err != nil {
			return nil, fmt.Errorf("source: read dir %q: %w", t.Dir, err)
		}
		return collect(ctx, t, entries, accept, func(name string) ([]byte, error) {
			return os.ReadFile(filepath.Join(t.Dir, name))
		}, func(name string) string {
			return filepath.Join(t.Dir, name)
		})
	})
}

// FS returns a provider reading template's family from fsys, such as an
// embed.FS holding bundled resources. A leading slash on template is ignored.
func FS(fsys fs.FS, template string, separator rune) Provider {
	t := parseFSTemplate(template, separator)
	return ProviderFunc(func(ctx context.Context, accept AcceptFunc) ([]Document, error) {
		if fsys == nil {
			return nil, errors.New("source: filesystem is required")
		}
		entries, err := fs.ReadDir(fsys, t.Dir)
		if err != nil {
			return nil, fmt.Errorf("source: read dir %q: %w", t.Dir, err)
		}
		return collect(ctx, t, entries, accept, func(name string) ([]byte, error) {
			return fs.ReadFile(fsys, path.Join(t.Dir, name))
		}, func(name string) string {
			return path.Join(t.Dir, name)
		})
	})
}

func collect(ctx context.Context, t Template, entries []fs.DirEntry, accept AcceptFunc, read func(string) ([]byte, error), display func(string) string) ([]Document, error) {
	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		postfix, ext, ok := t.Match(entry.Name())
		if !ok {
			continue
		}
		if accept != nil && !accept(ext) {
			continue
		}
		content, err := read(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("source: read %q: %w", display(entry.Name()), err)
		}
		docs = append(docs, Document{Postfix: postfix, Name: display(entry.Name()), Content: content})
	}
	return docs, nil
}

// Memory is an in-memory Provider intended for tests and examples.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemory returns a Memory provider seeded with docs. Later documents
// replace earlier ones with the same postfix.
func NewMemory(docs ...Document) *Memory {
	m := &Memory{docs: map[string]Document{}}
	for _, doc := range docs {
		m.Put(doc)
	}
	return m
}

// Put stores doc, replacing any document with the same postfix.
func (m *Memory) Put(doc Document) {
	doc.Content = append([]byte(nil), doc.Content...)
	m.mu.Lock()
	m.docs[doc.Postfix] = doc
	m.mu.Unlock()
}

// PutString is Put for textual content.
func (m *Memory) PutString(postfix, content string) {
	m.Put(Document{Postfix: postfix, Content: []byte(content)})
}

// Delete removes the document registered under postfix.
func (m *Memory) Delete(postfix string) {
	m.mu.Lock()
	delete(m.docs, postfix)
	m.mu.Unlock()
}

// Documents implements Provider. Documents whose Name carries an extension
// are filtered through accept; unnamed documents are always returned.
func (m *Memory) Documents(ctx context.Context, accept AcceptFunc) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	postfixes := make([]string, 0, len(m.docs))
	for postfix := range m.docs {
		postfixes = append(postfixes, postfix)
	}
	sort.Strings(postfixes)

	out := make([]Document, 0, len(postfixes))
	for _, postfix := range postfixes {
		doc := m.docs[postfix]
		if ext := extensionOf(doc.Name); ext != "" && accept != nil && !accept(ext) {
			continue
		}
		doc.Content = append([]byte(nil), doc.Content...)
		out = append(out, doc)
	}
	return out, nil
}

func extensionOf(name string) string {
	ext := path.Ext(filepath.ToSlash(name))
	return strings.TrimPrefix(ext, ".")
}
