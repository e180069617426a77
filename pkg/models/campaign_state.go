package models

// CampaignState is the progress block of a test campaign. It is the only
// state a campaign needs besides the list itself, so persisting it together
// with the list is enough to resume.
type CampaignState struct {
	NextID                 int32
	TotalIterations        int32
	LastCompletedIteration int32
	Seed                   uint32
	LastDraw               int64
	CheckpointPath         string
	IsResuming             bool
}

// StartIteration is the first iteration a run over this state executes.
func (s *CampaignState) StartIteration() int32 {
	if s.IsResuming {
		return s.LastCompletedIteration + 1
	}
	return 0
}
