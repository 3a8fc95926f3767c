package activity

import (
	"context"
	"strings"
	"time"
)

// DefaultChannel is stamped on events that carry no channel.
const DefaultChannel = "postfix"

// Config controls an Emitter.
type Config struct {
	Enabled bool
	// Channel defaults to DefaultChannel.
	Channel string
	// Now stamps OccurredAt; time.Now when nil.
	Now func() time.Time
}

// Emitter sends engine events to hooks after applying channel and clock
// defaults. A nil *Emitter is disabled.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	now     func() time.Time
}

// NewEmitter builds an emitter over hooks. It is disabled when cfg.Enabled
// is false or no non-nil hook remains.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	compacted := hooks.compact()
	return &Emitter{
		hooks:   compacted,
		enabled: cfg.Enabled && len(compacted) > 0,
		channel: channel,
		now:     now,
	}
}

// Enabled reports whether Emit will reach any hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Channel returns the channel applied to events without one.
func (e *Emitter) Channel() string {
	if e == nil {
		return DefaultChannel
	}
	return e.channel
}

// Hooks returns a copy of the hooks the emitter notifies.
func (e *Emitter) Hooks() Hooks {
	if e == nil {
		return nil
	}
	return e.hooks.Clone()
}

// Emit stamps defaults on event and notifies every hook.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	return e.hooks.Notify(ctx, event)
}
