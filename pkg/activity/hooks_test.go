package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainEvent() Event {
	return Event{Verb: VerbPrioritiesUpdated, ObjectType: ObjectTypeChain, ObjectID: "catalog"}
}

func TestNormalizeEventTrimsAndCopies(t *testing.T) {
	meta := map[string]any{"chain": []string{"cs", ""}}
	recipients := []string{"ops"}
	evt := Event{
		Verb:       " postfix.priorities.updated ",
		ActorID:    " actor ",
		TenantID:   " tenant ",
		ObjectType: " postfix.chain ",
		ObjectID:   " catalog ",
		Channel:    " postfix ",
		Recipients: recipients,
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)
	assert.Equal(t, VerbPrioritiesUpdated, got.Verb)
	assert.Equal(t, ObjectTypeChain, got.ObjectType)
	assert.Equal(t, "catalog", got.ObjectID)
	assert.Equal(t, "actor", got.ActorID)
	assert.Equal(t, "tenant", got.TenantID)
	assert.Equal(t, "postfix", got.Channel)
	assert.False(t, got.OccurredAt.IsZero())
	assert.True(t, got.Valid())

	got.Metadata["chain"] = nil
	got.Recipients[0] = "changed"
	assert.NotNil(t, meta["chain"])
	assert.Equal(t, "ops", recipients[0])
}

func TestHooksDropInvalidEvents(t *testing.T) {
	capture := &CaptureHook{}
	require.NoError(t, Hooks{capture}.Notify(context.Background(), Event{Verb: VerbSourcesReloaded}))
	assert.Empty(t, capture.Events)
}

func TestHooksFanOutReportsFailingHooks(t *testing.T) {
	capture := &CaptureHook{}
	var ctxSeen bool
	boom := errors.New("boom")
	hooks := Hooks{
		HookFunc(func(ctx context.Context, _ Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom }),
		nil,
		HookFunc(func(context.Context, Event) error { return errors.New("second") }),
	}

	err := hooks.Notify(nil, Event{Verb: VerbSourcesReloaded, ObjectType: ObjectTypeSources, ObjectID: "catalog"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, 2, hookErr.Index)
	assert.Equal(t, VerbSourcesReloaded, hookErr.Verb)
	assert.Contains(t, err.Error(), "hook 4 failed")

	assert.True(t, ctxSeen)
	assert.Len(t, capture.Events, 1)
}

func TestOnlyVerbs(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{OnlyVerbs(capture, VerbSourcesReloaded)}

	require.NoError(t, hooks.Notify(context.Background(), chainEvent()))
	require.NoError(t, hooks.Notify(context.Background(), Event{Verb: VerbSourcesReloaded, ObjectType: ObjectTypeSources, ObjectID: "catalog"}))
	assert.Equal(t, []string{VerbSourcesReloaded}, capture.Verbs())
}

func TestEmitterDefaults(t *testing.T) {
	capture := &CaptureHook{}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	assert.False(t, disabled.Enabled())
	require.NoError(t, disabled.Emit(context.Background(), chainEvent()))
	assert.Empty(t, capture.Events)

	onlyNil := NewEmitter(Hooks{nil}, Config{Enabled: true})
	assert.False(t, onlyNil.Enabled())
	assert.Nil(t, onlyNil.Hooks())

	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true, Now: func() time.Time { return fixed }})
	require.True(t, enabled.Enabled())
	assert.Equal(t, DefaultChannel, enabled.Channel())
	require.NoError(t, enabled.Emit(context.Background(), chainEvent()))

	events := capture.Snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, DefaultChannel, events[0].Channel)
	assert.Equal(t, fixed, events[0].OccurredAt)

	var nilEmitter *Emitter
	assert.False(t, nilEmitter.Enabled())
	assert.NoError(t, nilEmitter.Emit(context.Background(), chainEvent()))
}

func TestEmitterPreservesExplicitFields(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "audit"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	event := chainEvent()
	event.Channel = "custom"
	event.OccurredAt = at
	require.NoError(t, emitter.Emit(context.Background(), event))

	assert.Equal(t, "custom", capture.Events[0].Channel)
	assert.Equal(t, at, capture.Events[0].OccurredAt)

	capture.Reset()
	assert.Empty(t, capture.Snapshot())
}
