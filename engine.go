package postfix

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-postfix/adapter"
	"github.com/goliatone/go-postfix/internal/hydrate"
	"github.com/goliatone/go-postfix/layering"
	"github.com/goliatone/go-postfix/pkg/activity"
	"github.com/goliatone/go-postfix/source"
	"github.com/goliatone/go-postfix/value"
)

// Engine resolves dotted paths against a set of postfixed sources parsed by
// one adapter. Scalars resolve to the strongest source that defines them;
// objects and arrays are merged across the whole probe chain when the
// adapter supports it.
//
// An Engine is safe for concurrent use. Every public method runs under one
// mutex, so a lookup observes the sources and priorities either entirely
// before or entirely after a reload or priority change.
type Engine struct {
	mu sync.Mutex

	adapter    adapter.Adapter
	capability adapter.Capability
	cfg        engineConfig
	logger     Logger
	emitter    *activity.Emitter

	registry       *source.Registry
	defaultPostfix string
	priorities     []string
	chain          layering.Chain
}

// New returns an engine that ingests sources through a. Sources must be
// loaded with Reload, LoadFrom or one of the Load helpers before lookups.
func New(a adapter.Adapter, opts ...Option) (*Engine, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: adapter is required", ErrConfiguration)
	}
	capability := adapter.CapabilityOf(a)
	if capability == adapter.CapabilityNone {
		return nil, fmt.Errorf("%w: adapter %q implements neither first-match nor merge extraction", ErrConfiguration, a.Format())
	}

	cfg := applyOptions(opts)
	e := &Engine{
		adapter:        a,
		capability:     capability,
		cfg:            cfg,
		logger:         cfg.logger.With("engine", cfg.name, "format", a.Format()),
		defaultPostfix: cfg.defaultPostfix,
		priorities:     cfg.priorities,
	}
	e.emitter = activity.NewEmitter(cfg.activityHooks, activity.Config{
		Enabled: len(cfg.activityHooks) > 0,
		Channel: cfg.activityChannel,
	})
	e.rebuildChain()
	return e, nil
}

// LoadFrom creates an engine and loads it from provider.
func LoadFrom(ctx context.Context, provider source.Provider, a adapter.Adapter, opts ...Option) (*Engine, error) {
	e, err := New(a, opts...)
	if err != nil {
		return nil, err
	}
	if err := e.LoadFrom(ctx, provider); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadDir creates an engine from the files matching template on disk, for
// example "./data/lang" with separator '_' for lang.yaml and lang_cs.yaml.
func LoadDir(ctx context.Context, template string, separator rune, a adapter.Adapter, opts ...Option) (*Engine, error) {
	return LoadFrom(ctx, source.Dir(template, separator), a, opts...)
}

// LoadFS creates an engine from the files matching template in fsys, such
// as an embed.FS.
func LoadFS(ctx context.Context, fsys fs.FS, template string, separator rune, a adapter.Adapter, opts ...Option) (*Engine, error) {
	return LoadFrom(ctx, source.FS(fsys, template, separator), a, opts...)
}

// LoadFrom replaces the engine's sources with the documents provider
// returns for the adapter's extensions.
func (e *Engine) LoadFrom(ctx context.Context, provider source.Provider) error {
	if provider == nil {
		return fmt.Errorf("%w: provider is required", ErrConfiguration)
	}
	docs, err := provider.Documents(ctx, e.adapter.SupportsExtension)
	if err != nil {
		e.logger.Warn("source discovery failed", "error", err)
		return err
	}
	return e.Reload(ctx, docs)
}

// Reload parses docs and atomically replaces every loaded source. When any
// document fails to parse, the previous sources stay in place.
func (e *Engine) Reload(ctx context.Context, docs []source.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	registry, err := source.Build(e.adapter, docs)
	if err != nil {
		e.logger.Warn("reload failed", "documents", len(docs), "error", err)
		return err
	}

	e.mu.Lock()
	e.registry = registry
	e.clearCache()
	chain := e.chain.Ordered()
	e.mu.Unlock()

	postfixes := registry.Postfixes()
	e.logger.Info("sources reloaded", "sources", len(postfixes), "postfixes", postfixLabels(postfixes))
	e.emit(ctx, activity.BuildSourcesReloadedEvent(activity.EngineEventInput{
		Engine:    e.cfg.name,
		Format:    registry.Format(),
		Postfixes: postfixes,
		Chain:     chain,
	}))
	return nil
}

// SetDefaultPostfix makes postfix the head of the priority chain.
func (e *Engine) SetDefaultPostfix(postfix string) {
	e.mu.Lock()
	previous := e.chain.Ordered()
	e.defaultPostfix = postfix
	e.rebuildChain()
	current := e.chain.Ordered()
	e.mu.Unlock()

	e.chainChanged(previous, current)
}

// SetPostfixPriorities replaces the user priorities, strongest first.
func (e *Engine) SetPostfixPriorities(priorities ...string) {
	e.mu.Lock()
	previous := e.chain.Ordered()
	e.priorities = append([]string(nil), priorities...)
	e.rebuildChain()
	current := e.chain.Ordered()
	e.mu.Unlock()

	e.chainChanged(previous, current)
}

// SetLocalePriorities replaces the priorities with the fallback chain of
// the given BCP 47 tags (see LocalePriorities).
func (e *Engine) SetLocalePriorities(tags ...string) error {
	priorities, err := LocalePriorities(tags...)
	if err != nil {
		return err
	}
	e.SetPostfixPriorities(priorities...)
	return nil
}

// UseAllFoundPostfixes sets the priorities to every loaded non-default
// postfix in lexical order.
func (e *Engine) UseAllFoundPostfixes() error {
	e.mu.Lock()
	if e.registry == nil {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	overlays := e.registry.Overlays()
	e.mu.Unlock()

	e.SetPostfixPriorities(overlays...)
	return nil
}

// DefaultPostfix returns the configured default postfix.
func (e *Engine) DefaultPostfix() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defaultPostfix
}

// Priorities returns the user priorities, strongest first.
func (e *Engine) Priorities() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.priorities...)
}

// Chain returns the effective priority chain. It always ends with the
// default source "".
func (e *Engine) Chain() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chain.Ordered()
}

// Probe returns the postfixes a lookup for postfix visits, strongest first.
func (e *Engine) Probe(postfix string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chain.Probe(postfix, true)
}

// Postfixes lists the loaded postfixes, default first.
func (e *Engine) Postfixes() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.registry == nil {
		return nil, ErrNotLoaded
	}
	return e.registry.Postfixes(), nil
}

// Loaded reports whether sources have been loaded.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry != nil
}

// Adapter returns the adapter the engine ingests sources with.
func (e *Engine) Adapter() adapter.Adapter {
	return e.adapter
}

// Capability reports whether the adapter merges structured values.
func (e *Engine) Capability() adapter.Capability {
	return e.capability
}

// CacheLen reports the number of memoized lookups. It is zero when caching
// is disabled.
func (e *Engine) CacheLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cfg.cache == nil {
		return 0
	}
	return e.cfg.cache.Len()
}

// ReadValue resolves path for an explicit postfix without conversion.
func (e *Engine) ReadValue(postfix, path string) (value.Value, bool, error) {
	return e.resolve(postfix, true, path, value.ShapeAny)
}

// Lookup resolves path along the configured chain without conversion.
func (e *Engine) Lookup(path string) (value.Value, bool, error) {
	return e.resolve("", false, path, value.ShapeAny)
}

// resolve returns the fragment for path, consulting the lookup cache. An
// explicit null at the strongest contribution resolves to absent.
func (e *Engine) resolve(postfix string, explicit bool, path string, shape value.Shape) (value.Value, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry == nil {
		return value.Null, false, ErrNotLoaded
	}

	key := CacheKey{Postfix: postfix, Explicit: explicit, Chain: e.chain.Key(), Path: path, Shape: shape}
	if e.cfg.cache != nil {
		if entry, ok := e.cfg.cache.Get(key); ok {
			e.logger.Debug("lookup cache hit", "postfix", postfix, "path", path, "found", entry.Found)
			return entry.Value, entry.Found, nil
		}
	}

	req := adapter.Request{Probe: e.chain.Probe(postfix, explicit), Path: path, Shape: shape}
	fragment, found, err := e.extract(req)
	if err != nil {
		return value.Null, false, err
	}
	if found && fragment.IsNull() {
		found = false
	}

	if e.cfg.cache != nil {
		e.cfg.cache.Put(key, CacheEntry{Value: fragment, Found: found})
		e.logger.Debug("lookup cache miss", "postfix", postfix, "path", path, "probe", postfixLabels(req.Probe), "found", found)
	}
	return fragment, found, nil
}

func (e *Engine) extract(req adapter.Request) (value.Value, bool, error) {
	switch a := e.adapter.(type) {
	case adapter.MergingAdapter:
		return a.ExtractAndMerge(e.registry.Tree, req)
	case adapter.FirstMatchAdapter:
		return a.ExtractFirst(e.registry.Tree, req)
	default:
		return value.Null, false, &adapter.UnsupportedOperationError{Format: e.adapter.Format(), Operation: "extraction", Shape: req.Shape}
	}
}

// document merges the whole tree of every source on the probe chain. For
// flat plain-text sources this is the per-key first match.
func (e *Engine) document(postfix string, explicit bool) (value.Value, []string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.documentLocked(postfix, explicit)
}

// documentLocked is document for callers holding e.mu.
func (e *Engine) documentLocked(postfix string, explicit bool) (value.Value, []string, error) {
	if e.registry == nil {
		return value.Null, nil, ErrNotLoaded
	}
	probe := e.chain.Probe(postfix, explicit)
	merged, ok := layering.Merge(layering.Collect(probe, e.registry.Tree, layering.Extract, ""))
	if !ok || !merged.IsObject() {
		return value.NewObject(), probe, nil
	}
	return merged, probe, nil
}

func (e *Engine) mode() hydrate.Mode {
	if e.capability == adapter.CapabilityFirstMatch {
		return hydrate.ModeText
	}
	return hydrate.ModeTyped
}

// ResolveChain returns the probe chain for a default postfix and
// priorities: the default postfix first, then the priorities in order
// without repeats, closed by the default source "".
func ResolveChain(defaultPostfix string, priorities ...string) []string {
	return newChain(defaultPostfix, priorities).Ordered()
}

func newChain(defaultPostfix string, priorities []string) layering.Chain {
	return layering.NewChain(append([]string{defaultPostfix}, priorities...)...)
}

func (e *Engine) rebuildChain() {
	e.chain = newChain(e.defaultPostfix, e.priorities)
}

func (e *Engine) chainChanged(previous, current []string) {
	if slices.Equal(previous, current) {
		return
	}
	if e.cfg.invalidateChain {
		e.mu.Lock()
		e.clearCache()
		e.mu.Unlock()
	}
	e.logger.Debug("priority chain rebuilt", "chain", postfixLabels(current), "previous", postfixLabels(previous))
	e.emit(context.Background(), activity.BuildPrioritiesUpdatedEvent(activity.EngineEventInput{
		Engine:        e.cfg.name,
		Format:        e.adapter.Format(),
		Chain:         current,
		PreviousChain: previous,
	}))
}

func (e *Engine) clearCache() {
	if e.cfg.cache != nil {
		e.cfg.cache.Clear()
	}
}

func (e *Engine) emit(ctx context.Context, event activity.Event) {
	if !e.emitter.Enabled() {
		return
	}
	if err := e.emitter.Emit(ctx, event); err != nil {
		e.logger.Warn("activity hook failed", "verb", event.Verb, "error", err)
	}
}

func postfixLabels(postfixes []string) string {
	labels := make([]string, len(postfixes))
	for i, postfix := range postfixes {
		if postfix == "" {
			labels[i] = "<default>"
			continue
		}
		labels[i] = postfix
	}
	return strings.Join(labels, ",")
}

// IsNotLoaded reports whether err means no sources were loaded yet.
func IsNotLoaded(err error) bool {
	return errors.Is(err, ErrNotLoaded)
}
