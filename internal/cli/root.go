// Package cli implements taxctl, the operator command line for the land
// tax service.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// RootOptions holds global flags.
type RootOptions struct {
	Output string
	Env    string
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "taxctl",
		Short:   "Land tax assessment and maintenance tool",
		Long:    "taxctl computes property tax assessments offline with the same formula as the API\nand prepares the database the API server runs against.",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Output != OutputText && opts.Output != OutputJSON {
				return fmt.Errorf("invalid output format: %s (must be text or json)", opts.Output)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.Output, "output", "o", OutputText, "output format (text, json)")
	pf.StringVar(&opts.Env, "env", "development", "environment name, selects the log level")

	cmd.AddCommand(newAssessCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
