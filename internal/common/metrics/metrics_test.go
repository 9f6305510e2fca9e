package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestJobTimer(t *testing.T) {
	const taskType = "metrics-test-task"

	StartJob(taskType).Done("")
	StartJob(taskType).Done("INVALID_CRITERIA")
	inflight := StartJob(taskType)

	assert.Equal(t, float64(1), testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(taskType)))
	assert.Equal(t, float64(1), testutil.ToFloat64(WorkerJobsFailed.WithLabelValues(taskType, "INVALID_CRITERIA")))
	assert.Equal(t, float64(1), testutil.ToFloat64(WorkerJobsActive.WithLabelValues(taskType)))

	inflight.Done("")
	assert.Equal(t, float64(0), testutil.ToFloat64(WorkerJobsActive.WithLabelValues(taskType)))
	assert.Equal(t, float64(2), testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(taskType)))
}
