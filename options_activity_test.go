package postfix

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-postfix/adapter"
	"github.com/goliatone/go-postfix/pkg/activity"
)

func TestActivityHooksAreCopied(t *testing.T) {
	hook := activity.HookFunc(func(context.Context, activity.Event) error { return nil })

	e, err := New(adapter.NewJSON(), WithActivityHooks(activity.Hooks{nil, hook}))
	require.NoError(t, err)

	hooks := e.ActivityHooks()
	require.Len(t, hooks, 1)

	hooks[0] = nil
	again := e.ActivityHooks()
	require.Len(t, again, 1)
	assert.NotNil(t, again[0])
}

func TestActivityHooksDefaultNil(t *testing.T) {
	e, err := New(adapter.NewJSON())
	require.NoError(t, err)
	assert.Nil(t, e.ActivityHooks())

	e.SetPostfixPriorities("cs")
	assert.Equal(t, []string{"cs", ""}, e.Chain())
}

func TestActivityChannelOverride(t *testing.T) {
	capture := &activity.CaptureHook{}
	e, err := New(adapter.NewJSON(), WithActivityHooks(activity.Hooks{capture}), WithActivityChannel("audit"))
	require.NoError(t, err)

	e.SetDefaultPostfix("en")
	events := capture.Snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "audit", events[0].Channel)
	assert.Equal(t, activity.VerbPrioritiesUpdated, events[0].Verb)
}

func TestActivityHookFailureDoesNotFailReload(t *testing.T) {
	failing := &activity.CaptureHook{Err: errors.New("sink down")}
	logger := &recordingLogger{}
	loadEngine(t, adapter.NewJSON(), map[string]string{"": `{"a":1}`}, WithActivityHooks(activity.Hooks{failing}), WithLogger(logger))

	assert.Equal(t, []string{activity.VerbSourcesReloaded}, failing.Verbs())
	assert.True(t, logger.has("warn", "activity hook failed"))
}
