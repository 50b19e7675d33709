package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	sess := &session{}

	root := &cobra.Command{
		Use:           "subseg",
		Short:         "Split transcripts into subtitle-sized segments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := sess.loadEnv(); err != nil {
				return err
			}
			if skipsConfig(cmd) {
				return nil
			}
			_, err := sess.load()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&sess.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&sess.envFlag, "env-file", "", "Environment file read before configuration (default .env when present)")

	root.AddCommand(
		newSplitCommand(sess),
		newCheckCommand(sess),
		newConfigCommand(sess),
		newCacheCommand(sess),
		newLLMCommand(sess),
	)
	return root
}
