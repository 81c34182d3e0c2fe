package cmd

import (
	"github.com/spf13/cobra"
)

// topicCmd represents the topic command
var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Validate notification topics",
	Long: `The topic command builds topics the same way a registration does and
reports whether they are accepted.

Available subcommands:
  validate  Validate a single topic given on the command line
  load      Validate every topic declared in a YAML file

Examples:
  # Every status update of one scenario
  eventnotify topic validate --entity-id SCENARIO_abc --operation update --attribute-name status

  # Every job creation
  eventnotify topic validate --entity-type job --operation creation

  # A declaration file
  eventnotify topic load topics.yaml --format json`,
}

func init() {
	rootCmd.AddCommand(topicCmd)
}
