package harness

// TraceEvent is one evaluated case as journaled.
type TraceEvent struct {
	Case     int    `json:"case"`
	Name     string `json:"name,omitempty"`
	Seq      int64  `json:"seq"`
	Subject  any    `json:"subject"`
	Rule     int    `json:"rule"`
	RuleName string `json:"rule_name,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every case expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per case, in case order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// TableHash identifies the exact table version the scenario ran against.
	TableHash string `json:"table_hash"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an evaluated case to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
