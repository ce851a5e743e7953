package cli

import (
	"github.com/spf13/cobra"
)

type options struct {
	envFile string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "unlockd",
		Short:         "One-time unlock code service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file loaded before reading the environment")
	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newGenerateCommand(opts),
		newExportCommand(opts),
		newStatsCommand(opts),
	)
	return cmd
}
