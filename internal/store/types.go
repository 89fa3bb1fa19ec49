package store

// Evaluation is one journaled table evaluation.
//
// Exactly one of Result or ErrorCode is meaningful: a successful evaluation
// has an empty ErrorCode and a Result (which may be nil); a failed one has
// RuleIndex -1 unless the failure came from the winning rule's transform.
type Evaluation struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	TableName   string `json:"table_name"`
	TableHash   string `json:"table_hash"`
	Subject     any    `json:"subject"`
	SubjectHash string `json:"subject_hash"`
	Seq         int64  `json:"seq"`

	RuleIndex int    `json:"rule_index"`
	RuleName  string `json:"rule_name,omitempty"`
	Result    any    `json:"result"`
	Fallback  bool   `json:"fallback"`

	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	EngineVersion string `json:"engine_version"`
	FormatVersion string `json:"format_version"`
}

// Failed reports whether the evaluation ended in an error.
func (e Evaluation) Failed() bool {
	return e.ErrorCode != ""
}

// SessionSummary aggregates the evaluations of one session.
type SessionSummary struct {
	SessionID string `json:"session_id"`
	TableName string `json:"table_name"`
	Count     int    `json:"count"`
	Failures  int    `json:"failures"`
	FirstSeq  int64  `json:"first_seq"`
	LastSeq   int64  `json:"last_seq"`
}
