package cmd

import (
	"github.com/spf13/cobra"
	"jobfuzz/pkg/checkpoint"
	"jobfuzz/pkg/printer"
)

func newInspectCmd(opts *options) *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect [--progress FILE] [list artifact]",
		Short: "Print checkpoint artifacts as tables",
		Long: `
Prints the jobs stored in a list artifact. With --progress FILE the progress
artifact FILE is printed first and, unless a list artifact is named, the list
artifact it points at is printed after it.

Usage:

	jobfuzz inspect --progress .jobfuzz.save
	jobfuzz inspect .jobfuzz.list
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configs, err := loadConfigurations(cmd, opts)
			if err != nil {
				return err
			}
			store := checkpoint.NewStore(newLogger(cmd, configs.LogLevel), opts.fs)

			listPath := configs.ListFile
			if opts.inspectProgress != "" {
				state, err := store.RestoreProgress(opts.inspectProgress)
				if err != nil {
					return err
				}
				printer.RenderProgress(cmd.OutOrStdout(), state)
				listPath = state.CheckpointPath
			}
			if len(args) == 1 {
				listPath = args[0]
			}

			l, err := store.RestoreList(listPath)
			if err != nil {
				return err
			}
			printer.RenderList(cmd.OutOrStdout(), l)
			return nil
		},
	}

	inspectCmd.Flags().StringVar(&opts.inspectProgress, "progress", "", "progress artifact to print before the list")
	return inspectCmd
}
