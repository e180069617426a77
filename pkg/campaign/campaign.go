package campaign

import (
	"errors"
	"fmt"
	"github.com/hashicorp/go-hclog"
	"github.com/segmentio/ksuid"
	"jobfuzz/pkg/checkpoint"
	"jobfuzz/pkg/constants"
	"jobfuzz/pkg/list"
	"jobfuzz/pkg/models"
	"jobfuzz/pkg/utils"
)

type Options struct {
	CheckpointInterval int32
	JobInfo            string
	ProgressPath       string
	DeleteOnCompletion bool
	NewDriver          DriverFactory
}

// Campaign applies a deterministic sequence of random mutations to a list,
// checkpointing on a fixed interval so an interrupted run can be resumed.
type Campaign struct {
	logger  hclog.Logger
	store   checkpoint.Checkpointer
	options Options
}

func NewCampaign(logger hclog.Logger, store checkpoint.Checkpointer, options Options) *Campaign {
	if options.CheckpointInterval <= 0 {
		options.CheckpointInterval = constants.DefaultCheckpointInterval
	}
	if options.NewDriver == nil {
		options.NewDriver = NewMathRandDriver
	}
	if options.ProgressPath == "" {
		options.ProgressPath = constants.DefaultProgressFile
	}
	return &Campaign{
		logger:  logger.Named("campaign"),
		store:   store,
		options: options,
	}
}

// NewState returns the progress block of a fresh campaign over a list seeded
// with size jobs.
func NewState(size int32, count int32, seed uint32, checkpointPath string) *models.CampaignState {
	return &models.CampaignState{
		NextID:                 size,
		TotalIterations:        count,
		LastCompletedIteration: -1,
		Seed:                   seed,
		CheckpointPath:         checkpointPath,
	}
}

// SeedList adds jobs 0..size-1 at the front, leaving size-1 at the head and 0 at the tail.
func SeedList(size int32, info string) (*list.LinkedList, error) {
	l := list.New()
	for i := int32(0); i < size; i++ {
		job, err := models.NewJob(i, info)
		if err != nil {
			return nil, err
		}
		l.AddAtFront(job)
	}
	return l, nil
}

// Run executes the remaining iterations of state against l. A resuming state
// re-seeds the driver, replays it up to the checkpointed iteration and checks
// that the reproduced draw is the one recorded in the checkpoint.
func (c *Campaign) Run(l *list.LinkedList, state *models.CampaignState) (*Report, error) {
	report := newReport(ksuid.New().String())
	logger := c.logger.With("run", report.RunID)

	driver := c.options.NewDriver(int64(state.Seed))
	start := state.StartIteration()
	if state.IsResuming {
		fastForward(driver, start)
	}

	logger.Info("starting campaign",
		"seed", state.Seed,
		"start", start,
		"count", state.TotalIterations,
		"length", l.Len(),
		"resuming", state.IsResuming,
	)

	for i := start; i < state.TotalIterations; i++ {
		draw := driver.Next()

		if state.IsResuming && i == start && draw != state.LastDraw {
			return report, utils.NewError(utils.CorruptArtifactError,
				"draw %d at iteration %d does not match checkpointed draw %d for seed %d",
				draw, i, state.LastDraw, state.Seed)
		}

		if i > 0 && i%c.options.CheckpointInterval == 0 {
			state.LastCompletedIteration = i - 1
			state.LastDraw = draw
			logger.Info("checkpointing list", "count", i, "length", l.Len())
			if err := c.store.Checkpoint(l, state, c.options.ProgressPath); err != nil {
				return report, fmt.Errorf("checkpoint at iteration %d: %w", i, err)
			}
			report.Checkpoints++
		}

		mutation := constants.Mutation(draw % constants.NumMutations)
		if err := c.apply(logger, l, state, mutation, i, report); err != nil {
			return report, err
		}
		state.LastCompletedIteration = i
		report.Iterations++
	}

	report.FinalLength = l.Len()
	report.NextID = state.NextID
	report.Log(logger)

	if c.options.DeleteOnCompletion {
		if err := c.store.Remove(state, c.options.ProgressPath); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (c *Campaign) apply(logger hclog.Logger, l *list.LinkedList, state *models.CampaignState, mutation constants.Mutation, i int32, report *Report) error {
	var err error

	switch mutation {
	case constants.MutationAddFront, constants.MutationAddRear:
		state.NextID++
		job, jobErr := models.NewJob(state.NextID, c.options.JobInfo)
		if jobErr != nil {
			return jobErr
		}
		if mutation == constants.MutationAddFront {
			l.AddAtFront(job)
		} else {
			l.AddAtRear(job)
		}
	case constants.MutationRemoveFront:
		_, err = l.RemoveFront()
	case constants.MutationRemoveRear:
		_, err = l.RemoveRear()
	case constants.MutationRemoveAt:
		// the iteration index is the position on purpose, replay depends on it
		var h list.Handle
		h, err = l.Search(int(i))
		if err == nil {
			_, err = l.RemoveNode(h)
		}
	case constants.MutationReverse:
		l.Reverse()
	}

	if err != nil {
		if errors.Is(err, utils.ErrEmptyList) || errors.Is(err, utils.ErrOutOfRange) {
			report.Skipped[mutation]++
			logger.Trace("mutation skipped", "iteration", i, "mutation", mutation.String(), "reason", err.Error())
			return nil
		}
		return fmt.Errorf("iteration %d %s: %w", i, mutation, err)
	}

	report.Applied[mutation]++
	return nil
}
