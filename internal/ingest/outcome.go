package ingest

import (
	"fmt"
	"net/http"
)

// Kind classifies how an ingest run ended.
type Kind string

const (
	KindCompleted       Kind = "completed"
	KindMalformedInput  Kind = "malformed_input"
	KindEmptyInput      Kind = "empty_input"
	KindReadFailed      Kind = "read_failed"
	KindStorageRejected Kind = "storage_rejected"
	KindInvalidEvent    Kind = "invalid_event"
	KindMisconfigured   Kind = "misconfigured"
)

// Outcome is the reported result of a run. StatusCode and Body form the
// event handler's response; the rest is for callers and logs.
type Outcome struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`

	Kind    Kind   `json:"-"`
	Bucket  string `json:"-"`
	Key     string `json:"-"`
	Rows    int    `json:"-"`
	Dropped int    `json:"-"`
	Written int    `json:"-"`
	Err     error  `json:"-"`
}

func (o Outcome) OK() bool { return o.Kind == KindCompleted }

func (o Outcome) String() string {
	return fmt.Sprintf("%s (%d): %s", o.Kind, o.StatusCode, o.Body)
}

func completed(body string) Outcome {
	return Outcome{StatusCode: http.StatusOK, Body: body, Kind: KindCompleted}
}

func failed(kind Kind, err error, format string, args ...any) Outcome {
	code := http.StatusInternalServerError
	switch kind {
	case KindMalformedInput, KindEmptyInput, KindInvalidEvent:
		code = http.StatusBadRequest
	}
	return Outcome{StatusCode: code, Body: fmt.Sprintf(format, args...), Kind: kind, Err: err}
}

// Misconfigured reports a driver that could not be built.
func Misconfigured(err error) Outcome {
	return failed(KindMisconfigured, err, "%v", err)
}
