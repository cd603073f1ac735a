// Package job contains the panel's scheduled background jobs.
package job

import (
	"webforge/logger"
	"webforge/util/common"
	"webforge/web/service"

	"go.uber.org/atomic"
)

// CheckTemplateFilesJob periodically reconciles the template catalog against
// the archive files actually on disk, disabling rows whose backing file has
// vanished.
type CheckTemplateFilesJob struct {
	templateService *service.TemplateService
	running         atomic.Bool
}

func NewCheckTemplateFilesJob(templateService *service.TemplateService) *CheckTemplateFilesJob {
	return &CheckTemplateFilesJob{templateService: templateService}
}

// Run implements cron.Job. Overlapping runs are skipped.
func (j *CheckTemplateFilesJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		return
	}
	defer j.running.Store(false)
	defer common.Recover("check template files job")

	if err := j.templateService.ReconcileFiles(); err != nil {
		logger.Warning("template file reconcile failed:", err)
	}
}
