package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/eventnotify/internal/config"
	"github.com/nfrund/eventnotify/internal/logging"
)

// errRejected signals a non-zero exit after the command already reported why.
var errRejected = errors.New("rejected")

var (
	appFs     afero.Fs = afero.NewOsFs()
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "eventnotify",
	Short: "Inspect and exercise entity lifecycle notification topics",
	Long: `eventnotify is a command-line interface for notification topics.

A topic is a filter over entity lifecycle events. Each of its four fields
(entity type, entity id, operation, attribute name) is optional; an unset
field matches any event.

Use "eventnotify [command] --help" for more information about a specific command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		appConfig = cfg
		logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
		return nil
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func validFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("invalid format %q, must be table or json", format)
	}
}
