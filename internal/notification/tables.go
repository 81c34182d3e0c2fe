package notification

import (
	"fmt"
	"strings"
)

type entityPrefix struct {
	prefix     string
	entityType EventEntityType
}

// entityTypePrefixes is scanned in order; the first matching prefix wins.
var entityTypePrefixes = []entityPrefix{
	{"CYCLE_", EntityTypeCycle},
	{"SCENARIO_", EntityTypeScenario},
	{"SEQUENCE_", EntityTypeSequence},
	{"TASK_", EntityTypeTask},
	{"DATANODE_", EntityTypeDataNode},
	{"JOB_", EntityTypeJob},
	{"SUBMISSION_", EntityTypeSubmission},
}

var noAttributeNameOperations = map[EventOperation]struct{}{
	OperationCreation:   {},
	OperationDeletion:   {},
	OperationSubmission: {},
}

var unsubmittableEntityTypes = map[EventEntityType]struct{}{
	EntityTypeCycle:    {},
	EntityTypeDataNode: {},
	EntityTypeJob:      {},
}

// EntityTypeFromID classifies an entity id by its prefix.
func EntityTypeFromID(entityID string) (EventEntityType, error) {
	for _, p := range entityTypePrefixes {
		if strings.HasPrefix(entityID, p.prefix) {
			return p.entityType, nil
		}
	}
	return EntityTypeNone, newError(ErrInvalidEntityID, "entity_id", entityID,
		fmt.Sprintf("entity id %q does not start with a known prefix", entityID))
}

// Prefix returns the id prefix of entities of type t, or "" if there is none.
func (t EventEntityType) Prefix() string {
	for _, p := range entityTypePrefixes {
		if p.entityType == t {
			return p.prefix
		}
	}
	return ""
}

// Submittable reports whether a SUBMISSION operation is valid for t.
func (t EventEntityType) Submittable() bool {
	_, unsubmittable := unsubmittableEntityTypes[t]
	return !unsubmittable
}

// AcceptsAttributeName reports whether events with operation o may name an attribute.
// OperationNone accepts none.
func (o EventOperation) AcceptsAttributeName() bool {
	if o == OperationNone {
		return false
	}
	_, forbidden := noAttributeNameOperations[o]
	return !forbidden
}
