// internal/common/camunda/worker.go
package camunda

import (
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"listing-unitmix/internal/common/config"
	"listing-unitmix/internal/common/logger"
)

// StartWorker opens a job worker for taskType, or returns nil when the
// worker is disabled in configuration.
func StartWorker(client zbc.Client, taskType string, handler worker.JobHandler, wc config.WorkerConfig, log logger.Logger) worker.JobWorker {
	if !wc.Enabled {
		log.Info("worker disabled, skipping registration", map[string]interface{}{
			"taskType": taskType,
		})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wc.MaxJobsActive).
		Timeout(config.GetDuration(wc.Timeout)).
		Name(fmt.Sprintf("%s-worker", taskType)).
		Open()

	log.Info("worker registered", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wc.MaxJobsActive,
		"timeoutMs":     wc.Timeout,
	})
	return jobWorker
}
