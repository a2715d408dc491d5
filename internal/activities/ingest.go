package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/yourorg/csv-loader/internal/ingest"
	"github.com/yourorg/csv-loader/internal/types"
)

type Activities struct {
	ing *ingest.Ingester
}

func New(ing *ingest.Ingester) *Activities { return &Activities{ing: ing} }

// IngestObject loads one object. Data and storage failures come back in the
// result rather than as an activity error, so they are never retried.
func (a *Activities) IngestObject(ctx context.Context, p types.IngestObject) (types.IngestResult, error) {
	activity.GetLogger(ctx).Info("ingesting object", "bucket", p.Bucket, "key", p.Key)
	o := a.ing.Run(ctx, p.Bucket, p.Key)
	return types.IngestResult{
		Bucket:     p.Bucket,
		Key:        p.Key,
		Kind:       string(o.Kind),
		StatusCode: o.StatusCode,
		Body:       o.Body,
		Rows:       o.Rows,
		Dropped:    o.Dropped,
		Written:    o.Written,
	}, nil
}
