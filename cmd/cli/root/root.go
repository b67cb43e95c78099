package root

import (
	"github.com/spf13/cobra"
)

// New builds an empty root command with the shared --json flag.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "blog",
		Short:         "Demo blog CLI",
		Long:          "Command line interface for reading and writing posts on the demo blog API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().Bool("json", false, "print raw JSON instead of tables")
	return cmd
}

// Exported RootCmd
var RootCmd = New()

// GetRoot returns the process-wide root command.
func GetRoot() *cobra.Command {
	return RootCmd
}

// JSON reports whether --json was given.
func JSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
