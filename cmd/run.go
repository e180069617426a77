package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"jobfuzz/pkg/campaign"
	"jobfuzz/pkg/checkpoint"
	"jobfuzz/pkg/config"
	"jobfuzz/pkg/list"
	"jobfuzz/pkg/models"
	"jobfuzz/pkg/printer"
	"jobfuzz/pkg/utils"
	"strconv"
)

func validateRunArgs(opts *options, args []string) error {
	if opts.resume {
		return nil
	}
	if len(args) < 1 || len(args) > 4 {
		return utils.NewError(utils.UsageError, "expected 1 to 4 arguments, got %d", len(args))
	}
	return nil
}

func runCampaign(cmd *cobra.Command, opts *options, args []string) error {
	configs, err := loadConfigurations(cmd, opts)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, configs.LogLevel)
	store := checkpoint.NewStore(logger, opts.fs)

	var (
		l     *list.LinkedList
		state *models.CampaignState
	)
	if opts.resume {
		logger.Info("attempting to restart from checkpoint", "progress", configs.ProgressFile)
		l, state, err = store.Resume(configs.ProgressFile)
	} else {
		l, state, err = freshCampaign(logger, store, configs, args)
	}
	if err != nil {
		return err
	}

	c := campaign.NewCampaign(logger, store, campaign.Options{
		CheckpointInterval: configs.CheckpointInterval,
		JobInfo:            configs.JobInfo,
		ProgressPath:       configs.ProgressFile,
		DeleteOnCompletion: configs.DeleteOnCompletion,
	})
	if _, err := c.Run(l, state); err != nil {
		return err
	}

	if configs.PrintList {
		printer.RenderList(cmd.OutOrStdout(), l)
	}
	return nil
}

func freshCampaign(logger hclog.Logger, store *checkpoint.Store, configs *config.Configurations, args []string) (*list.LinkedList, *models.CampaignState, error) {
	state, size, err := parseRunArgs(args, configs)
	if err != nil {
		return nil, nil, err
	}

	exists, err := store.Exists(configs.ProgressFile)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		logger.Warn("starting a fresh campaign, the existing checkpoint will be overwritten", "progress", configs.ProgressFile)
	}

	l, err := campaign.SeedList(size, configs.InitialJobInfo)
	if err != nil {
		return nil, nil, err
	}
	return l, state, nil
}

// parseRunArgs reads <list size> [<iterations>] [<seed>] [<checkpoint file>].
func parseRunArgs(args []string, configs *config.Configurations) (*models.CampaignState, int32, error) {
	size, err := parseInt32("list size", args[0])
	if err != nil {
		return nil, 0, err
	}
	count := size
	if len(args) >= 2 {
		if count, err = parseInt32("iterations", args[1]); err != nil {
			return nil, 0, err
		}
	}
	seed := configs.DefaultSeed
	if len(args) >= 3 {
		parsed, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			return nil, 0, utils.WrapError(utils.UsageError, err, "seed %q", args[2])
		}
		seed = uint32(parsed)
	}
	path := configs.ListFile
	if len(args) == 4 {
		path = args[3]
	}
	if path == configs.ProgressFile {
		return nil, 0, utils.NewError(utils.UsageError, "checkpoint file %s is also the progress file", path)
	}
	return campaign.NewState(size, count, seed, path), size, nil
}

func parseInt32(name string, arg string) (int32, error) {
	v, err := strconv.ParseInt(arg, 10, 32)
	if err != nil {
		return 0, utils.WrapError(utils.UsageError, err, "%s %q", name, arg)
	}
	if v < 0 {
		return 0, utils.NewError(utils.UsageError, "%s must not be negative, got %d", name, v)
	}
	return int32(v), nil
}
