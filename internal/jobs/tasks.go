package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// TaskTypeEconomySnapshot aggregates wealth totals into metrics gauges.
	TaskTypeEconomySnapshot = "economy:snapshot"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// EconomySnapshotPayload is currently empty; the task always snapshots the
// whole ledger table.
type EconomySnapshotPayload struct{}

// NewEconomySnapshotTask builds the scheduled snapshot task.
func NewEconomySnapshotTask() (*asynq.Task, error) {
	payload, err := json.Marshal(EconomySnapshotPayload{})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeEconomySnapshot, payload, asynq.Queue(QueueLow)), nil
}
