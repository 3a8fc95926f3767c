package postfix

import "github.com/goliatone/go-postfix/pkg/activity"

// WithActivityHooks attaches hooks notified when sources are reloaded or the
// priority chain changes. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	hooks = hooks.Clone()
	return func(cfg *engineConfig) {
		cfg.activityHooks = hooks
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *engineConfig) {
		cfg.activityChannel = channel
	}
}

// ActivityHooks returns a copy of the hooks the engine notifies.
func (e *Engine) ActivityHooks() activity.Hooks {
	if e == nil {
		return nil
	}
	return e.emitter.Hooks()
}
