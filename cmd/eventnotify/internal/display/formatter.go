// Package display renders notification topics, registrations and
// deliveries for the CLI.
package display

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	json "github.com/goccy/go-json"

	"github.com/nfrund/eventnotify/internal/notification"
)

// TopicDisplay represents a topic validation result for display purposes
type TopicDisplay struct {
	Name          string `json:"name,omitempty"`
	Valid         bool   `json:"valid"`
	Topic         string `json:"topic,omitempty"`
	EntityType    string `json:"entity_type,omitempty"`
	EntityID      string `json:"entity_id,omitempty"`
	Operation     string `json:"operation,omitempty"`
	AttributeName string `json:"attribute_name,omitempty"`
	Hash          string `json:"hash,omitempty"`
	ErrorType     string `json:"error_type,omitempty"`
	Error         string `json:"error,omitempty"`
}

// NewTopicDisplay builds the display form of a NewTopic result.
func NewTopicDisplay(name string, topic notification.Topic, err error) TopicDisplay {
	if err != nil {
		d := TopicDisplay{Name: name, Error: err.Error()}
		var nerr *notification.Error
		if errors.As(err, &nerr) {
			d.ErrorType = string(nerr.Type)
		}
		return d
	}

	return TopicDisplay{
		Name:          name,
		Valid:         true,
		Topic:         topic.String(),
		EntityType:    topic.EntityType().String(),
		EntityID:      topic.EntityID(),
		Operation:     topic.Operation().String(),
		AttributeName: topic.AttributeName(),
		Hash:          strconv.FormatUint(topic.Hash(), 16),
	}
}

// EntityTypeDisplay describes one entity type.
type EntityTypeDisplay struct {
	Name        string `json:"name"`
	Prefix      string `json:"prefix"`
	Submittable bool   `json:"submittable"`
}

// OperationDisplay describes one operation.
type OperationDisplay struct {
	Name                 string `json:"name"`
	AcceptsAttributeName bool   `json:"accepts_attribute_name"`
}

// DeliveryDisplay is one event received by one registration.
type DeliveryDisplay struct {
	Registration string `json:"registration"`
	Topic        string `json:"topic"`
	Event        string `json:"event"`
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteValidationResult writes a single validation result with details.
func WriteValidationResult(w io.Writer, d TopicDisplay) {
	if !d.Valid {
		fmt.Fprintf(w, "❌ Topic validation failed: %s\n", d.Error)
		return
	}

	fmt.Fprintf(w, "✅ Topic '%s' is valid\n", d.Topic)
	fmt.Fprintf(w, "   Entity type:    %s\n", orDash(d.EntityType))
	fmt.Fprintf(w, "   Entity id:      %s\n", orDash(d.EntityID))
	fmt.Fprintf(w, "   Operation:      %s\n", orDash(d.Operation))
	fmt.Fprintf(w, "   Attribute name: %s\n", orDash(d.AttributeName))
	fmt.Fprintf(w, "   Hash:           %s\n", d.Hash)
}

// WriteTopicsTable writes validation results as a table.
func WriteTopicsTable(w io.Writer, topics []TopicDisplay) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tSTATUS\tTOPIC\tDETAIL")
	fmt.Fprintln(tw, "----\t------\t-----\t------")

	for _, d := range topics {
		if d.Valid {
			fmt.Fprintf(tw, "%s\t✅\t%s\t%s\n", orDash(d.Name), d.Topic, d.Hash)
		} else {
			fmt.Fprintf(tw, "%s\t❌\t-\t%s\n", orDash(d.Name), truncateString(d.Error, 60))
		}
	}
}

// WriteEntitiesTable writes the entity type and operation enumerations.
func WriteEntitiesTable(w io.Writer, entityTypes []EntityTypeDisplay, operations []OperationDisplay) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ENTITY TYPE\tID PREFIX\tSUBMITTABLE")
	fmt.Fprintln(tw, "-----------\t---------\t-----------")
	for _, et := range entityTypes {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", et.Name, et.Prefix, et.Submittable)
	}
	tw.Flush()

	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tATTRIBUTE NAME")
	fmt.Fprintln(tw, "---------\t--------------")
	for _, op := range operations {
		rule := "forbidden"
		if op.AcceptsAttributeName {
			rule = "allowed"
		}
		fmt.Fprintf(tw, "%s\t%s\n", op.Name, rule)
	}
	tw.Flush()
}

// WriteDeliveriesTable writes the deliveries observed during a simulation.
func WriteDeliveriesTable(w io.Writer, deliveries []DeliveryDisplay) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "REGISTRATION\tTOPIC\tEVENT")
	fmt.Fprintln(tw, "------------\t-----\t-----")

	if len(deliveries) == 0 {
		fmt.Fprintln(tw, "No deliveries")
		return
	}
	for _, d := range deliveries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Registration, d.Topic, d.Event)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen characters, adding "..." if truncated
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
