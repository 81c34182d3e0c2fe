package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nfrund/eventnotify/cmd/eventnotify/internal/display"
	"github.com/nfrund/eventnotify/internal/notification"
)

var entitiesFormat string

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Describe entity types and operations",
}

var entitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entity types, id prefixes and operation rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validFormat(entitiesFormat); err != nil {
			return err
		}

		entityTypes := make([]display.EntityTypeDisplay, 0, len(notification.EntityTypes()))
		for _, et := range notification.EntityTypes() {
			entityTypes = append(entityTypes, display.EntityTypeDisplay{
				Name:        et.String(),
				Prefix:      et.Prefix(),
				Submittable: et.Submittable(),
			})
		}
		operations := make([]display.OperationDisplay, 0, len(notification.Operations()))
		for _, op := range notification.Operations() {
			operations = append(operations, display.OperationDisplay{
				Name:                 op.String(),
				AcceptsAttributeName: op.AcceptsAttributeName(),
			})
		}

		out := cmd.OutOrStdout()
		if entitiesFormat == "json" {
			return display.WriteJSON(out, struct {
				EntityTypes []display.EntityTypeDisplay `json:"entity_types"`
				Operations  []display.OperationDisplay  `json:"operations"`
			}{entityTypes, operations})
		}
		display.WriteEntitiesTable(out, entityTypes, operations)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(entitiesCmd)
	entitiesCmd.AddCommand(entitiesListCmd)

	entitiesListCmd.Flags().StringVarP(&entitiesFormat, "format", "f", "table", "Output format (table, json)")
}
