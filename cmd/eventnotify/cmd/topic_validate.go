package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nfrund/eventnotify/cmd/eventnotify/internal/display"
	"github.com/nfrund/eventnotify/internal/notification"
)

var (
	validateEntityType    string
	validateEntityID      string
	validateOperation     string
	validateAttributeName string
	validateFormat        string
)

var topicValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a topic",
	Long: `Validate a topic built from the given fields. Names are case-insensitive.
When only an entity id is given, the entity type is derived from its prefix.

The validation process includes:
- Entity type and entity id consistency
- Operation allowed for the entity type
- Attribute name allowed for the operation

Output:
  ✅ Success - Shows the normalized topic and its hash
  ❌ Error   - Shows the first rule the topic broke`,
	Args: cobra.NoArgs,
	RunE: topicValidateHandler,
}

func topicValidateHandler(cmd *cobra.Command, args []string) error {
	if err := validFormat(validateFormat); err != nil {
		return err
	}

	topic, err := notification.NewTopic(validateEntityType, validateEntityID, validateOperation, validateAttributeName)
	result := display.NewTopicDisplay("", topic, err)

	out := cmd.OutOrStdout()
	if validateFormat == "json" {
		if werr := display.WriteJSON(out, result); werr != nil {
			return werr
		}
	} else {
		display.WriteValidationResult(out, result)
	}

	if err != nil {
		return errRejected
	}
	return nil
}

func init() {
	topicCmd.AddCommand(topicValidateCmd)

	topicValidateCmd.Flags().StringVar(&validateEntityType, "entity-type", "", "Entity type (cycle, scenario, sequence, task, data_node, job, submission)")
	topicValidateCmd.Flags().StringVar(&validateEntityID, "entity-id", "", "Entity id, e.g. SCENARIO_abc")
	topicValidateCmd.Flags().StringVar(&validateOperation, "operation", "", "Operation (creation, update, deletion, submission)")
	topicValidateCmd.Flags().StringVar(&validateAttributeName, "attribute-name", "", "Attribute name, only with update")
	topicValidateCmd.Flags().StringVarP(&validateFormat, "format", "f", "table", "Output format (table, json)")
}
