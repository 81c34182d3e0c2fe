package notification

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// validatorInstance caches struct information across declarations.
var validatorInstance = validator.New()

func init() {
	_ = validatorInstance.RegisterValidation("entitytype", func(fl validator.FieldLevel) bool {
		_, err := ParseEventEntityType(fl.Field().String())
		return err == nil
	})
	_ = validatorInstance.RegisterValidation("eventoperation", func(fl validator.FieldLevel) bool {
		_, err := ParseEventOperation(fl.Field().String())
		return err == nil
	})
}

// TopicDeclaration is the file form of a Topic.
type TopicDeclaration struct {
	Name          string `yaml:"name" json:"name,omitempty" validate:"omitempty,max=100"`
	EntityType    string `yaml:"entity_type" json:"entity_type,omitempty" validate:"omitempty,entitytype"`
	EntityID      string `yaml:"entity_id" json:"entity_id,omitempty" validate:"omitempty,max=255"`
	Operation     string `yaml:"operation" json:"operation,omitempty" validate:"omitempty,eventoperation"`
	AttributeName string `yaml:"attribute_name" json:"attribute_name,omitempty" validate:"omitempty,max=255"`
}

// Topic validates the declaration and builds the Topic.
func (d TopicDeclaration) Topic() (Topic, error) {
	if err := validateDeclaration(d); err != nil {
		return Topic{}, err
	}
	return NewTopic(d.EntityType, d.EntityID, d.Operation, d.AttributeName)
}

// EventDeclaration is the file form of an Event.
type EventDeclaration struct {
	EntityType     string         `yaml:"entity_type" json:"entity_type" validate:"required,entitytype"`
	Operation      string         `yaml:"operation" json:"operation" validate:"required,eventoperation"`
	EntityID       string         `yaml:"entity_id" json:"entity_id,omitempty" validate:"omitempty,max=255"`
	AttributeName  string         `yaml:"attribute_name" json:"attribute_name,omitempty" validate:"omitempty,max=255"`
	AttributeValue any            `yaml:"attribute_value" json:"attribute_value,omitempty"`
	Metadata       map[string]any `yaml:"metadata" json:"metadata,omitempty"`
}

// Event validates the declaration and builds the Event.
func (d EventDeclaration) Event() (Event, error) {
	if err := validateDeclaration(d); err != nil {
		return Event{}, err
	}

	// Both names were checked by the validator.
	entityType, _ := ParseEventEntityType(d.EntityType)
	op, _ := ParseEventOperation(d.Operation)

	return NewEvent(EventConfig{
		EntityType:     entityType,
		Operation:      op,
		EntityID:       d.EntityID,
		AttributeName:  d.AttributeName,
		AttributeValue: d.AttributeValue,
		Metadata:       d.Metadata,
	})
}

// validateDeclaration runs struct validation and maps the first failure to
// the package's error kinds.
func validateDeclaration(d any) error {
	err := validatorInstance.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return newError(ErrInvalidDeclaration, "", "", err.Error())
	}

	fe := verrs[0]
	cause := ErrInvalidDeclaration
	switch fe.Tag() {
	case "entitytype":
		cause = ErrInvalidEntityType
	case "eventoperation":
		cause = ErrInvalidEventOperation
	}
	return newError(cause, fe.Field(), fmt.Sprint(fe.Value()),
		fmt.Sprintf("field %s failed %q validation", fe.Field(), fe.Tag()))
}

type topicFile struct {
	Topics []TopicDeclaration `yaml:"topics"`
}

type eventFile struct {
	Events []EventDeclaration `yaml:"events"`
}

// LoadTopicDeclarations reads a YAML file with a top-level "topics" list.
// Entries are not validated; call Topic on each.
func LoadTopicDeclarations(fs afero.Fs, path string) ([]TopicDeclaration, error) {
	var f topicFile
	if err := readYAML(fs, path, &f); err != nil {
		return nil, err
	}
	return f.Topics, nil
}

// LoadEventDeclarations reads a YAML file with a top-level "events" list.
func LoadEventDeclarations(fs afero.Fs, path string) ([]EventDeclaration, error) {
	var f eventFile
	if err := readYAML(fs, path, &f); err != nil {
		return nil, err
	}
	return f.Events, nil
}

func readYAML(fs afero.Fs, path string, out any) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
