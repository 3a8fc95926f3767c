package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the resolution engine.
const (
	VerbSourcesReloaded   = "postfix.sources.reloaded"
	VerbPrioritiesUpdated = "postfix.priorities.updated"
)

// Object types attached to engine events.
const (
	ObjectTypeSources = "postfix.sources"
	ObjectTypeChain   = "postfix.chain"
)

// EngineEventInput describes the common fields for engine lifecycle events.
type EngineEventInput struct {
	ActorID        string
	UserID         string
	TenantID       string
	Engine         string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	Format         string
	Postfixes      []string
	Chain          []string
	PreviousChain  []string
	OccurredAt     time.Time
}

// BuildSourcesReloadedEvent constructs the event emitted after the engine
// swapped in a new set of sources.
func BuildSourcesReloadedEvent(input EngineEventInput) Event {
	return buildEngineEvent(VerbSourcesReloaded, ObjectTypeSources, input)
}

// BuildPrioritiesUpdatedEvent constructs the event emitted after the
// priority chain changed.
func BuildPrioritiesUpdatedEvent(input EngineEventInput) Event {
	return buildEngineEvent(VerbPrioritiesUpdated, ObjectTypeChain, input)
}

func buildEngineEvent(verb, objectType string, input EngineEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Format != "" {
		metadata = ensureMetadata(metadata)
		metadata["format"] = input.Format
	}
	if input.Postfixes != nil {
		metadata = ensureMetadata(metadata)
		metadata["postfixes"] = append([]string{}, input.Postfixes...)
		metadata["source_count"] = len(input.Postfixes)
	}
	if input.Chain != nil {
		metadata = ensureMetadata(metadata)
		metadata["chain"] = append([]string{}, input.Chain...)
	}
	if input.PreviousChain != nil {
		metadata = ensureMetadata(metadata)
		metadata["previous_chain"] = append([]string{}, input.PreviousChain...)
	}

	recipients := input.Recipients
	if len(recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	objectID := strings.TrimSpace(input.Engine)
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:           verb,
		ActorID:        strings.TrimSpace(input.ActorID),
		UserID:         strings.TrimSpace(input.UserID),
		TenantID:       strings.TrimSpace(input.TenantID),
		ObjectType:     objectType,
		ObjectID:       objectID,
		Channel:        strings.TrimSpace(input.Channel),
		DefinitionCode: strings.TrimSpace(input.DefinitionCode),
		Recipients:     recipients,
		Metadata:       metadata,
		OccurredAt:     input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
