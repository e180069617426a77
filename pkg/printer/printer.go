package printer

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"io"
	"jobfuzz/pkg/list"
	"jobfuzz/pkg/models"
)

// RenderList writes the jobs of l in forward order as a table.
func RenderList(w io.Writer, l *list.LinkedList) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Job ID", "Info"})

	position := 0
	l.Each(func(_ list.Handle, job models.Job) bool {
		t.AppendRow(table.Row{position, job.ID(), job.Info()})
		position++
		return true
	})

	t.AppendFooter(table.Row{"", "Total", l.Len()})
	t.Render()
}

func RenderProgress(w io.Writer, state *models.CampaignState) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Next job id", state.NextID},
		{"Iterations", state.TotalIterations},
		{"Last completed iteration", state.LastCompletedIteration},
		{"Seed", state.Seed},
		{"Last draw", state.LastDraw},
		{"List artifact", state.CheckpointPath},
		{"Resuming", state.IsResuming},
	})
	t.Render()
}
