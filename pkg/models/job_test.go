package models

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"jobfuzz/pkg/constants"
	"jobfuzz/pkg/utils"
	"strings"
	"testing"
)

func TestNewJob(t *testing.T) {
	t.Run("should keep id and info", func(t *testing.T) {
		job, err := NewJob(42, "some info")
		assert.Nil(t, err)
		assert.Equal(t, int32(42), job.ID())
		assert.Equal(t, "some info", job.Info())
	})

	t.Run("should accept info at the limit", func(t *testing.T) {
		_, err := NewJob(1, strings.Repeat("x", constants.MaxJobInfoLength))
		assert.Nil(t, err)
	})

	t.Run("should reject info over the limit", func(t *testing.T) {
		_, err := NewJob(1, strings.Repeat("x", constants.MaxJobInfoLength+1))
		assert.True(t, errors.Is(err, utils.ErrUsage))
	})
}

func TestCampaignState_StartIteration(t *testing.T) {
	state := CampaignState{LastCompletedIteration: 9999}
	assert.Equal(t, int32(0), state.StartIteration())

	state.IsResuming = true
	assert.Equal(t, int32(10000), state.StartIteration())
}
