package notification

import "fmt"

// EventOperation is the kind of change an event represents.
type EventOperation int

const (
	// OperationNone means no operation filter.
	OperationNone EventOperation = iota
	OperationCreation
	OperationUpdate
	OperationDeletion
	OperationSubmission
)

var operationNames = map[EventOperation]string{
	OperationCreation:   "CREATION",
	OperationUpdate:     "UPDATE",
	OperationDeletion:   "DELETION",
	OperationSubmission: "SUBMISSION",
}

var operationsByName = func() map[string]EventOperation {
	m := make(map[string]EventOperation, len(operationNames))
	for op, name := range operationNames {
		m[name] = op
	}
	return m
}()

// Operations returns every operation in declaration order.
func Operations() []EventOperation {
	return []EventOperation{
		OperationCreation,
		OperationUpdate,
		OperationDeletion,
		OperationSubmission,
	}
}

// ParseEventOperation looks up an operation by name, ignoring case.
func ParseEventOperation(name string) (EventOperation, error) {
	op, ok := operationsByName[foldName(name)]
	if !ok {
		return OperationNone, newError(ErrInvalidEventOperation, "operation", name,
			fmt.Sprintf("unknown operation %q", name))
	}
	return op, nil
}

// String returns the upper-case name, or "" for OperationNone.
func (o EventOperation) String() string {
	if o == OperationNone {
		return ""
	}
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("EventOperation(%d)", int(o))
}

// IsValid reports whether o is a member of the enumeration.
func (o EventOperation) IsValid() bool {
	_, ok := operationNames[o]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (o EventOperation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text is OperationNone.
func (o *EventOperation) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*o = OperationNone
		return nil
	}
	parsed, err := ParseEventOperation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
