// Package job defines the descriptors that flow through the queue: the
// submission a caller hands in, and the result a worker hands back.
package job

// Status is the terminal classification of an executed job. Every value
// in this set is stable API surface — webhook receivers match on it.
type Status string

const (
	StatusCompleted            Status = "completed"
	StatusCompilationError     Status = "compilation_error"
	StatusRuntimeError         Status = "runtime_error"
	StatusTimeout              Status = "timeout"
	StatusMemoryLimitExceeded  Status = "memory_limit_exceeded"
	StatusError                Status = "error"
)

// Sentinel exit codes used by the classification step in pkg/executor.
// 124 and 137 are the shell conventions this repo relies on: GNU coreutils
// `timeout` exits 124 on wall-clock expiry, and a SIGKILL-terminated child
// (the OOM killer's signal) reports 128+9.
const (
	ExitTimeout = 124
	ExitOOM     = 137
)

const (
	// DefaultMemoryLimitMB is applied when a job omits memory_limit_mb.
	DefaultMemoryLimitMB = 512
)

// Input is the job as submitted by a caller, before a token is assigned.
type Input struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	ProblemID      string `json:"problem_id"`
	CallbackURL    string `json:"callback_url,omitempty"`
	TimeoutMS      int    `json:"timeout_ms,omitempty"`
	MemoryLimitMB  int    `json:"memory_limit_mb,omitempty"`
	ExpectedOutput string `json:"expected_output,omitempty"`
}

// Validate reports whether an Input carries the three required fields.
// It does not touch LanguageID's validity against the recipe registry —
// an unknown language is accepted into the queue and fails at execution
// per §4.3 step 1 of the spec.
func (in Input) Validate() error {
	if in.SourceCode == "" {
		return errMissingField("source_code")
	}
	if in.ProblemID == "" {
		return errMissingField("problem_id")
	}
	if in.LanguageID == 0 {
		return errMissingField("language_id")
	}
	return nil
}

type missingFieldError string

func (e missingFieldError) Error() string { return "missing required field: " + string(e) }

func errMissingField(field string) error { return missingFieldError(field) }

// Job is the enqueued value: an Input merged with the token assigned at
// submission. Job is what gets JSON-encoded onto the queue and decoded by
// a worker.
type Job struct {
	Token          string `json:"token"`
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	ProblemID      string `json:"problem_id"`
	CallbackURL    string `json:"callback_url,omitempty"`
	TimeoutMS      int    `json:"timeout_ms,omitempty"`
	MemoryLimitMB  int    `json:"memory_limit_mb,omitempty"`
	ExpectedOutput string `json:"expected_output,omitempty"`
}

// NewJob merges a token into a validated Input, applying the
// memory_limit_mb default when the caller omitted it.
func NewJob(token string, in Input) Job {
	memLimit := in.MemoryLimitMB
	if memLimit == 0 {
		memLimit = DefaultMemoryLimitMB
	}
	return Job{
		Token:          token,
		SourceCode:     in.SourceCode,
		LanguageID:     in.LanguageID,
		ProblemID:      in.ProblemID,
		CallbackURL:    in.CallbackURL,
		TimeoutMS:      in.TimeoutMS,
		MemoryLimitMB:  memLimit,
		ExpectedOutput: in.ExpectedOutput,
	}
}

// Result is the webhook payload delivered for a job. ExecutionTimeMS is a
// pointer so "no phase started" (an unsupported language) can omit it from
// the JSON body instead of encoding a misleading zero.
type Result struct {
	Token           string   `json:"token"`
	Status          Status   `json:"status"`
	Stdout          string   `json:"stdout"`
	Stderr          string   `json:"stderr"`
	ExecutionTimeMS *float64 `json:"execution_time,omitempty"`
	ExitCode        int      `json:"exit_code"`
}

// roundMS returns ms rounded to two decimal places, suitable for
// ExecutionTimeMS.
func roundMS(ms float64) float64 {
	return float64(int64(ms*100+0.5)) / 100
}

// Duration sets ExecutionTimeMS from a float64 millisecond value, rounding
// to two decimal places per the spec's numeric-precision rule.
func (r *Result) Duration(ms float64) {
	v := roundMS(ms)
	r.ExecutionTimeMS = &v
}
