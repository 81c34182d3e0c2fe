package notification

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EventEntityType is the kind of entity an event concerns.
type EventEntityType int

const (
	// EntityTypeNone means no entity type filter.
	EntityTypeNone EventEntityType = iota
	EntityTypeCycle
	EntityTypeScenario
	EntityTypeSequence
	EntityTypeTask
	EntityTypeDataNode
	EntityTypeJob
	EntityTypeSubmission
)

var entityTypeNames = map[EventEntityType]string{
	EntityTypeCycle:      "CYCLE",
	EntityTypeScenario:   "SCENARIO",
	EntityTypeSequence:   "SEQUENCE",
	EntityTypeTask:       "TASK",
	EntityTypeDataNode:   "DATA_NODE",
	EntityTypeJob:        "JOB",
	EntityTypeSubmission: "SUBMISSION",
}

var entityTypesByName = func() map[string]EventEntityType {
	m := make(map[string]EventEntityType, len(entityTypeNames))
	for t, name := range entityTypeNames {
		m[name] = t
	}
	return m
}()

// EntityTypes returns every entity type in declaration order.
func EntityTypes() []EventEntityType {
	return []EventEntityType{
		EntityTypeCycle,
		EntityTypeScenario,
		EntityTypeSequence,
		EntityTypeTask,
		EntityTypeDataNode,
		EntityTypeJob,
		EntityTypeSubmission,
	}
}

// ParseEventEntityType looks up an entity type by name, ignoring case.
func ParseEventEntityType(name string) (EventEntityType, error) {
	t, ok := entityTypesByName[foldName(name)]
	if !ok {
		return EntityTypeNone, newError(ErrInvalidEntityType, "entity_type", name,
			fmt.Sprintf("unknown entity type %q", name))
	}
	return t, nil
}

// String returns the upper-case name, or "" for EntityTypeNone.
func (t EventEntityType) String() string {
	if t == EntityTypeNone {
		return ""
	}
	if name, ok := entityTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventEntityType(%d)", int(t))
}

// IsValid reports whether t is a member of the enumeration.
func (t EventEntityType) IsValid() bool {
	_, ok := entityTypeNames[t]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (t EventEntityType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text is EntityTypeNone.
func (t *EventEntityType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = EntityTypeNone
		return nil
	}
	parsed, err := ParseEventEntityType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// foldName upper-cases an enumeration name for lookup.
// A Caser is stateful, so one is created per call.
func foldName(name string) string {
	return cases.Upper(language.Und).String(name)
}
