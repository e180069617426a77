package cmd

import (
	"errors"
	"fmt"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"io"
	"jobfuzz/pkg/config"
	"jobfuzz/pkg/utils"
)

type options struct {
	fs              afero.Fs
	configPath      string
	logLevel        string
	progressFile    string
	resume          bool
	interval        int32
	printList       bool
	inspectProgress string
}

// NewRootCmd builds the jobfuzz command tree over the given filesystem.
func NewRootCmd(fs afero.Fs) *cobra.Command {
	opts := &options{fs: fs}

	rootCmd := &cobra.Command{
		Use:   "jobfuzz <list size> [<iterations=list size>] [<seed>] [<checkpoint file>]",
		Short: "jobfuzz exercises a doubly linked list of jobs with a resumable random campaign",
		Long: `
jobfuzz seeds a list with <list size> jobs and applies <iterations> random
mutations drawn from <seed>. Every checkpoint interval the list and the
campaign progress are written to disk, so a killed run can continue with

	jobfuzz --resume

which ignores every positional argument and rebuilds the run from the
checkpoint artifacts alone. Artifacts are deleted when a run completes.
`,
		Args: func(cmd *cobra.Command, args []string) error {
			return validateRunArgs(opts, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCampaign(cmd, opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default ./jobfuzz.yml if present)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&opts.progressFile, "progress-file", "", "path of the progress artifact")

	rootCmd.Flags().BoolVarP(&opts.resume, "resume", "r", false, "restart from the checkpoint artifacts, ignoring positional arguments")
	rootCmd.Flags().Int32Var(&opts.interval, "interval", 0, "iterations between checkpoints")
	rootCmd.Flags().BoolVar(&opts.printList, "print", false, "print the final list")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return utils.WrapError(utils.UsageError, err, "bad flag")
	})

	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stdout io.Writer, stderr io.Writer) int {
	return execute(afero.NewOsFs(), args, stdout, stderr)
}

func execute(fs afero.Fs, args []string, stdout io.Writer, stderr io.Writer) int {
	rootCmd := NewRootCmd(fs)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "cmd",
		Output: stderr,
	})
	logger.Error(err.Error())

	if errors.Is(err, utils.ErrUsage) {
		fmt.Fprintln(stderr, "Usage:", rootCmd.UseLine())
		return 2
	}
	return 1
}

// loadConfigurations applies command line flags over the file and environment configuration.
func loadConfigurations(cmd *cobra.Command, opts *options) (*config.Configurations, error) {
	jobFuzzConfig, err := config.NewJobFuzzConfig(opts.fs, opts.configPath)
	if err != nil {
		return nil, err
	}
	configs := jobFuzzConfig.GetConfigurations()

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		configs.LogLevel = opts.logLevel
	}
	if flags.Changed("progress-file") {
		configs.ProgressFile = opts.progressFile
	}
	if flags.Changed("interval") {
		configs.CheckpointInterval = opts.interval
	}
	if flags.Changed("print") {
		configs.PrintList = opts.printList
	}

	if err := configs.Validate(); err != nil {
		return nil, err
	}
	return configs, nil
}

func newLogger(cmd *cobra.Command, level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "jobfuzz",
		Level:  hclog.LevelFromString(level),
		Output: cmd.ErrOrStderr(),
	})
}
