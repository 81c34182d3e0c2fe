package notification

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// eventPayload is the wire form of an Event on the bus.
type eventPayload struct {
	EntityType     string         `json:"entity_type"`
	Operation      string         `json:"operation"`
	EntityID       string         `json:"entity_id,omitempty"`
	AttributeName  string         `json:"attribute_name,omitempty"`
	AttributeValue any            `json:"attribute_value,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreationDate   time.Time      `json:"creation_date"`
}

// MarshalEvent encodes an event as JSON.
func MarshalEvent(e Event) ([]byte, error) {
	return json.Marshal(eventPayload{
		EntityType:     e.entityType.String(),
		Operation:      e.operation.String(),
		EntityID:       e.entityID,
		AttributeName:  e.attributeName,
		AttributeValue: e.attributeValue,
		Metadata:       e.metadata,
		CreationDate:   e.creationDate,
	})
}

// UnmarshalEvent decodes and revalidates an event produced by MarshalEvent.
// Numeric attribute values come back as float64.
func UnmarshalEvent(data []byte) (Event, error) {
	var p eventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}

	entityType, err := ParseEventEntityType(p.EntityType)
	if err != nil {
		return Event{}, err
	}
	op, err := ParseEventOperation(p.Operation)
	if err != nil {
		return Event{}, err
	}

	return NewEvent(EventConfig{
		EntityType:     entityType,
		Operation:      op,
		EntityID:       p.EntityID,
		AttributeName:  p.AttributeName,
		AttributeValue: p.AttributeValue,
		Metadata:       p.Metadata,
		CreationDate:   p.CreationDate,
	})
}
