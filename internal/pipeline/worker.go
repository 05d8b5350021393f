package pipeline

import (
	"bytes"
	"context"
)

// ProcessJob runs a queued job, recording phases and progress on it.
// Jobs without their own info types use the processor's defaults.
func (p *Processor) ProcessJob(ctx context.Context, job *Job) {
	infos := job.InfoTypes()
	if infos == nil {
		infos = p.infos
	}
	result, err := p.run(ctx, job.Filename, bytes.NewReader(job.FileData()), infos, job)
	if err != nil {
		job.Fail(err.Error())
		return
	}
	job.SetResult(result)
	job.SetStatus(StatusCompleted, "done")
}
