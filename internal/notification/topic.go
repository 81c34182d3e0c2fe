package notification

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Topic is an immutable filter over entity events. The zero value matches
// every event. Topics are comparable and can be used as map keys; two topics
// are equal iff all four fields are equal.
type Topic struct {
	entityType    EventEntityType
	entityID      string
	operation     EventOperation
	attributeName string
}

// NewTopic validates and normalizes the raw filter fields. Empty strings mean
// "no filter" for that field. The fields are resolved in order: entity type
// and id first, then the operation against the resolved entity type, then the
// attribute name against the resolved operation.
func NewTopic(entityType, entityID, operation, attributeName string) (Topic, error) {
	resolvedType, resolvedID, err := resolveEntity(entityType, entityID)
	if err != nil {
		return Topic{}, err
	}

	resolvedOp, err := resolveOperation(operation, resolvedType)
	if err != nil {
		return Topic{}, err
	}

	resolvedAttr, err := resolveAttributeName(attributeName, resolvedOp)
	if err != nil {
		return Topic{}, err
	}

	return Topic{
		entityType:    resolvedType,
		entityID:      resolvedID,
		operation:     resolvedOp,
		attributeName: resolvedAttr,
	}, nil
}

// MustTopic is like NewTopic but panics on error. Intended for package-level
// topic definitions.
func MustTopic(entityType, entityID, operation, attributeName string) Topic {
	t, err := NewTopic(entityType, entityID, operation, attributeName)
	if err != nil {
		panic(fmt.Sprintf("invalid topic: %v", err))
	}
	return t
}

func resolveEntity(rawType, rawID string) (EventEntityType, string, error) {
	explicit := EntityTypeNone
	if rawType != "" {
		t, err := ParseEventEntityType(rawType)
		if err != nil {
			return EntityTypeNone, "", err
		}
		explicit = t
	}

	if rawID == "" {
		return explicit, "", nil
	}

	derived, err := EntityTypeFromID(rawID)
	if err != nil {
		return EntityTypeNone, "", err
	}
	if explicit != EntityTypeNone && explicit != derived {
		return EntityTypeNone, "", newError(ErrInvalidEntityType, "entity_type", rawType,
			fmt.Sprintf("entity type %s does not match entity id %q of type %s", explicit, rawID, derived))
	}
	return derived, rawID, nil
}

// resolveOperation accepts SUBMISSION when entityType is EntityTypeNone.
func resolveOperation(rawOp string, entityType EventEntityType) (EventOperation, error) {
	if rawOp == "" {
		return OperationNone, nil
	}

	op, err := ParseEventOperation(rawOp)
	if err != nil {
		return OperationNone, err
	}
	if op == OperationSubmission && !entityType.Submittable() {
		return OperationNone, newError(ErrInvalidEventOperation, "operation", rawOp,
			fmt.Sprintf("entity type %s cannot be submitted", entityType))
	}
	return op, nil
}

// resolveAttributeName does not check that the attribute exists on the entity.
func resolveAttributeName(rawName string, op EventOperation) (string, error) {
	if rawName != "" && !op.AcceptsAttributeName() {
		msg := fmt.Sprintf("operation %s does not carry an attribute name", op)
		if op == OperationNone {
			msg = "attribute name requires an operation"
		}
		return "", newError(ErrInvalidEventAttributeName, "attribute_name", rawName, msg)
	}
	return rawName, nil
}

// EntityType returns the entity type filter, EntityTypeNone if unset.
func (t Topic) EntityType() EventEntityType {
	return t.entityType
}

// EntityID returns the entity id filter, "" if unset.
func (t Topic) EntityID() string {
	return t.entityID
}

// Operation returns the operation filter, OperationNone if unset.
func (t Topic) Operation() EventOperation {
	return t.operation
}

// AttributeName returns the attribute name filter, "" if unset.
func (t Topic) AttributeName() string {
	return t.attributeName
}

// Equal reports whether t and other have identical fields.
func (t Topic) Equal(other Topic) bool {
	return t == other
}

// Hash returns a deterministic hash of all four fields. Equal topics hash
// identically, in every process.
func (t Topic) Hash() uint64 {
	buf := make([]byte, 0, 32+len(t.entityID)+len(t.attributeName))
	buf = binary.AppendUvarint(buf, uint64(t.entityType))
	buf = binary.AppendUvarint(buf, uint64(len(t.entityID)))
	buf = append(buf, t.entityID...)
	buf = binary.AppendUvarint(buf, uint64(t.operation))
	buf = binary.AppendUvarint(buf, uint64(len(t.attributeName)))
	buf = append(buf, t.attributeName...)
	return xxhash.Sum64(buf)
}

// String renders the topic as entity_type/entity_id/operation/attribute_name
// with "*" for unset fields.
func (t Topic) String() string {
	parts := []string{
		t.entityType.String(),
		t.entityID,
		t.operation.String(),
		t.attributeName,
	}
	for i, p := range parts {
		if p == "" {
			parts[i] = "*"
		}
	}
	return strings.Join(parts, "/")
}
