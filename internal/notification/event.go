package notification

import (
	"fmt"
	"time"
)

// EventConfig holds the fields of a new Event.
type EventConfig struct {
	EntityType     EventEntityType
	Operation      EventOperation
	EntityID       string
	AttributeName  string
	AttributeValue any
	Metadata       map[string]any
	// CreationDate defaults to the current time.
	CreationDate time.Time
}

// Event records a change to an entity. Events are immutable once created.
type Event struct {
	entityType     EventEntityType
	operation      EventOperation
	entityID       string
	attributeName  string
	attributeValue any
	metadata       map[string]any
	creationDate   time.Time
}

// NewEvent validates cfg and builds an Event.
func NewEvent(cfg EventConfig) (Event, error) {
	if !cfg.EntityType.IsValid() {
		return Event{}, newError(ErrInvalidEntityType, "entity_type", cfg.EntityType.String(),
			"event requires an entity type")
	}
	if !cfg.Operation.IsValid() {
		return Event{}, newError(ErrInvalidEventOperation, "operation", cfg.Operation.String(),
			"event requires an operation")
	}
	if cfg.EntityID != "" {
		derived, err := EntityTypeFromID(cfg.EntityID)
		if err != nil {
			return Event{}, err
		}
		if derived != cfg.EntityType {
			return Event{}, newError(ErrInvalidEntityType, "entity_type", cfg.EntityType.String(),
				fmt.Sprintf("entity type %s does not match entity id %q of type %s", cfg.EntityType, cfg.EntityID, derived))
		}
	}
	if cfg.Operation == OperationSubmission && !cfg.EntityType.Submittable() {
		return Event{}, newError(ErrInvalidEventOperation, "operation", cfg.Operation.String(),
			fmt.Sprintf("entity type %s cannot be submitted", cfg.EntityType))
	}
	if cfg.AttributeName != "" && !cfg.Operation.AcceptsAttributeName() {
		return Event{}, newError(ErrInvalidEventAttributeName, "attribute_name", cfg.AttributeName,
			fmt.Sprintf("operation %s does not carry an attribute name", cfg.Operation))
	}

	created := cfg.CreationDate
	if created.IsZero() {
		created = time.Now()
	}

	return Event{
		entityType:     cfg.EntityType,
		operation:      cfg.Operation,
		entityID:       cfg.EntityID,
		attributeName:  cfg.AttributeName,
		attributeValue: cfg.AttributeValue,
		metadata:       copyMetadata(cfg.Metadata),
		creationDate:   created,
	}, nil
}

func (e Event) EntityType() EventEntityType { return e.entityType }
func (e Event) Operation() EventOperation   { return e.operation }
func (e Event) EntityID() string            { return e.entityID }
func (e Event) AttributeName() string       { return e.attributeName }
func (e Event) AttributeValue() any         { return e.attributeValue }
func (e Event) CreationDate() time.Time     { return e.creationDate }

// Metadata returns a copy of the event metadata.
func (e Event) Metadata() map[string]any {
	return copyMetadata(e.metadata)
}

// String summarizes the event for logs.
func (e Event) String() string {
	s := e.entityType.String() + " " + e.operation.String()
	if e.entityID != "" {
		s += " " + e.entityID
	}
	if e.attributeName != "" {
		s += "." + e.attributeName
	}
	return s
}

func copyMetadata(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
