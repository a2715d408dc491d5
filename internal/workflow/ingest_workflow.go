package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yourorg/csv-loader/internal/ingest"
	"github.com/yourorg/csv-loader/internal/types"
)

// IngestActivityName is the registered name of activities.IngestObject.
const IngestActivityName = "Activities.IngestObject"

// IngestWorkflow loads each object in turn and stops at the first one that
// does not complete. Activities run once; there is no retry.
func IngestWorkflow(ctx workflow.Context, p types.IngestWorkflowParams) (types.IngestWorkflowResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	out := types.IngestWorkflowResult{Completed: true}
	for _, obj := range p.Objects {
		var r types.IngestResult
		if err := workflow.ExecuteActivity(ctx, IngestActivityName, obj).Get(ctx, &r); err != nil {
			return out, err
		}
		out.Results = append(out.Results, r)
		if r.Kind != string(ingest.KindCompleted) {
			out.Completed = false
			workflow.GetLogger(ctx).Warn("ingest stopped", "bucket", obj.Bucket, "key", obj.Key, "kind", r.Kind)
			break
		}
	}
	return out, nil
}
