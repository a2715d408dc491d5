package types

// IngestObject names one CSV object to load.
type IngestObject struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// IngestWorkflowParams lists objects to load in order. The workflow stops at
// the first object that does not complete.
type IngestWorkflowParams struct {
	Objects []IngestObject `json:"objects"`
}

// IngestResult mirrors ingest.Outcome in a form that survives serialization.
type IngestResult struct {
	Bucket     string `json:"bucket"`
	Key        string `json:"key"`
	Kind       string `json:"kind"`
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
	Rows       int    `json:"rows"`
	Dropped    int    `json:"dropped"`
	Written    int    `json:"written"`
}

// IngestWorkflowResult collects one result per attempted object.
type IngestWorkflowResult struct {
	Results   []IngestResult `json:"results"`
	Completed bool           `json:"completed"`
}
