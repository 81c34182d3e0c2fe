package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/eventnotify/cmd/eventnotify/internal/display"
	"github.com/nfrund/eventnotify/internal/notification"
)

var loadFormat string

var topicLoadCmd = &cobra.Command{
	Use:   "load <file.yaml>",
	Short: "Validate the topics declared in a YAML file",
	Long: `Validate every topic declared under the "topics" key of a YAML file.

Example file:
  topics:
    - name: scenario-status
      entity_id: SCENARIO_abc
      operation: update
      attribute_name: status
    - name: all-jobs
      entity_type: job

The command exits with a non-zero status if any declaration is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: topicLoadHandler,
}

func topicLoadHandler(cmd *cobra.Command, args []string) error {
	if err := validFormat(loadFormat); err != nil {
		return err
	}

	decls, err := notification.LoadTopicDeclarations(appFs, args[0])
	if err != nil {
		return err
	}

	results := make([]display.TopicDisplay, 0, len(decls))
	rejected := 0
	for _, decl := range decls {
		topic, err := decl.Topic()
		if err != nil {
			rejected++
		}
		results = append(results, display.NewTopicDisplay(decl.Name, topic, err))
	}

	out := cmd.OutOrStdout()
	if loadFormat == "json" {
		if err := display.WriteJSON(out, results); err != nil {
			return err
		}
	} else {
		display.WriteTopicsTable(out, results)
		fmt.Fprintf(out, "\n%d topics, %d rejected\n", len(results), rejected)
	}

	if rejected > 0 {
		return errRejected
	}
	return nil
}

func init() {
	topicCmd.AddCommand(topicLoadCmd)

	topicLoadCmd.Flags().StringVarP(&loadFormat, "format", "f", "table", "Output format (table, json)")
}
