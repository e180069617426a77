package models

import (
	"jobfuzz/pkg/constants"
	"jobfuzz/pkg/utils"
)

// Job is the payload carried by every list node. It cannot be changed after NewJob.
type Job struct {
	id   int32
	info string
}

func NewJob(id int32, info string) (Job, error) {
	if len(info) > constants.MaxJobInfoLength {
		return Job{}, utils.NewError(utils.UsageError, "job %d info is %d bytes, limit is %d", id, len(info), constants.MaxJobInfoLength)
	}
	return Job{id: id, info: info}, nil
}

func (j Job) ID() int32 {
	return j.id
}

func (j Job) Info() string {
	return j.info
}
