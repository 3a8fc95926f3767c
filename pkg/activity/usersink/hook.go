package usersink

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-postfix/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook records engine events in a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Actor is recorded when the event carries no actor, which is the case
	// for reloads and priority changes triggered by the engine itself.
	Actor uuid.UUID
	// Tenant is recorded when the event carries no tenant.
	Tenant uuid.UUID
}

// Notify implements activity.ActivityHook.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	record, ok := h.Record(event)
	if !ok {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, record)
}

// Record maps event to an ActivityRecord. It reports false for events
// without a verb or object.
//
// Chains in the metadata gain a readable "chain_label" and
// "previous_chain_label" ("cs > default"). Definition code and recipients
// have no ActivityRecord field and are kept in Data.
func (h Hook) Record(event activity.Event) (usertypes.ActivityRecord, bool) {
	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() {
		return usertypes.ActivityRecord{}, false
	}

	data := map[string]any{}
	maps.Copy(data, normalized.Metadata)
	for key, label := range map[string]string{"chain": "chain_label", "previous_chain": "previous_chain_label"} {
		if chain, ok := data[key].([]string); ok {
			data[label] = chainLabel(chain)
		}
	}
	if normalized.DefinitionCode != "" {
		data["definition_code"] = normalized.DefinitionCode
	}
	if len(normalized.Recipients) > 0 {
		data["recipients"] = slices.Clone(normalized.Recipients)
	}
	if len(data) == 0 {
		data = nil
	}

	return usertypes.ActivityRecord{
		ActorID:    orDefault(parseUUID(normalized.ActorID), h.Actor),
		UserID:     parseUUID(normalized.UserID),
		TenantID:   orDefault(parseUUID(normalized.TenantID), h.Tenant),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       data,
		OccurredAt: normalized.OccurredAt,
	}, true
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func orDefault(id, fallback uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return fallback
	}
	return id
}

func chainLabel(chain []string) string {
	labels := make([]string, len(chain))
	for i, postfix := range chain {
		if postfix == "" {
			postfix = "default"
		}
		labels[i] = postfix
	}
	return strings.Join(labels, " > ")
}
