package notification

import "errors"

// Sentinel errors. Every error returned by this package wraps one of them, so
// callers match with errors.Is.
var (
	// ErrInvalidEntityType is returned for an unknown entity type name or an
	// entity type that contradicts the entity id prefix.
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrInvalidEntityID is returned when an entity id matches no known prefix.
	ErrInvalidEntityID = errors.New("invalid entity id")

	// ErrInvalidEventOperation is returned for an unknown operation name or a
	// submission on an entity type that cannot be submitted.
	ErrInvalidEventOperation = errors.New("invalid event operation")

	// ErrInvalidEventAttributeName is returned when an attribute name is given
	// for an operation that never carries one.
	ErrInvalidEventAttributeName = errors.New("invalid event attribute name")

	// ErrRegistrationNotFound is returned when unregistering an unknown id.
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrInvalidDeclaration is returned when a declaration fails struct
	// validation for a reason other than the four field errors above.
	ErrInvalidDeclaration = errors.New("invalid declaration")
)

// ErrorType classifies an Error.
type ErrorType string

const (
	ErrorInvalidEntityType         ErrorType = "invalid_entity_type"
	ErrorInvalidEntityID           ErrorType = "invalid_entity_id"
	ErrorInvalidEventOperation     ErrorType = "invalid_event_operation"
	ErrorInvalidEventAttributeName ErrorType = "invalid_event_attribute_name"
	ErrorRegistrationNotFound      ErrorType = "registration_not_found"
	ErrorInvalidDeclaration        ErrorType = "invalid_declaration"
)

var errorTypes = map[error]ErrorType{
	ErrInvalidEntityType:         ErrorInvalidEntityType,
	ErrInvalidEntityID:           ErrorInvalidEntityID,
	ErrInvalidEventOperation:     ErrorInvalidEventOperation,
	ErrInvalidEventAttributeName: ErrorInvalidEventAttributeName,
	ErrRegistrationNotFound:      ErrorRegistrationNotFound,
	ErrInvalidDeclaration:        ErrorInvalidDeclaration,
}

// Error carries the field and value that caused a rejection.
type Error struct {
	Type    ErrorType `json:"type"`
	Field   string    `json:"field,omitempty"`
	Value   string    `json:"value,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Cause.Error() + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the sentinel error
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(cause error, field, value, message string) *Error {
	return &Error{
		Type:    errorTypes[cause],
		Field:   field,
		Value:   value,
		Message: message,
		Cause:   cause,
	}
}
