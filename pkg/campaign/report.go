package campaign

import (
	"github.com/hashicorp/go-hclog"
	"jobfuzz/pkg/constants"
)

// Report summarises one Run call.
type Report struct {
	RunID       string
	Iterations  int32
	Checkpoints int
	FinalLength int
	NextID      int32
	Applied     map[constants.Mutation]int
	Skipped     map[constants.Mutation]int
}

func newReport(runID string) *Report {
	return &Report{
		RunID:   runID,
		Applied: map[constants.Mutation]int{},
		Skipped: map[constants.Mutation]int{},
	}
}

func (r *Report) Log(logger hclog.Logger) {
	args := []interface{}{
		"iterations", r.Iterations,
		"checkpoints", r.Checkpoints,
		"length", r.FinalLength,
		"next_id", r.NextID,
	}
	for m := constants.Mutation(0); m < constants.NumMutations; m++ {
		args = append(args, m.String(), r.Applied[m])
		if skipped := r.Skipped[m]; skipped > 0 {
			args = append(args, m.String()+"-skipped", skipped)
		}
	}
	logger.Info("campaign complete", args...)
}
