package ingest

import (
	"context"
	"errors"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

var errInvalidEvent = errors.New("invalid s3 event")

// HandleS3Event ingests every object named in an object-created event, in
// order, and halts at the first record that does not complete. The error
// return is always nil so the outcome reaches the invoker as the response.
func (in *Ingester) HandleS3Event(ctx context.Context, ev events.S3Event) (Outcome, error) {
	if len(ev.Records) == 0 {
		in.log.Error("error parsing event data: no records")
		return failed(KindInvalidEvent, errInvalidEvent, "Invalid S3 event data"), nil
	}

	total := completed("Items processing completed successfully")
	for _, r := range ev.Records {
		bucket, key := r.S3.Bucket.Name, objectKey(r.S3.Object)
		if bucket == "" || key == "" {
			in.log.Error("error parsing event data", zap.String("bucket", bucket), zap.String("key", key))
			return failed(KindInvalidEvent, errInvalidEvent, "Invalid S3 event data"), nil
		}
		o := in.Run(ctx, bucket, key)
		if !o.OK() {
			return o, nil
		}
		total.Bucket, total.Key = o.Bucket, o.Key
		total.Rows += o.Rows
		total.Dropped += o.Dropped
		total.Written += o.Written
	}
	return total, nil
}

// objectKey returns the decoded key. Event keys are form-encoded, so a
// space arrives as '+'.
func objectKey(o events.S3Object) string {
	if o.URLDecodedKey != "" {
		return o.URLDecodedKey
	}
	k, err := url.QueryUnescape(o.Key)
	if err != nil {
		return o.Key
	}
	return k
}
