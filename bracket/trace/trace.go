package trace

// TraceLevel controls the verbosity of session tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelVerdicts captures verdicts, requeues, undos and round transitions.
	TraceLevelVerdicts TraceLevel = "verdicts"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:     true,
	TraceLevelVerdicts: true,
	"":                 true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SessionTrace collects records during a bracket session.
// A nil *SessionTrace is valid and records nothing.
type SessionTrace struct {
	Level    TraceLevel
	Verdicts []VerdictRecord
	Requeues []RequeueRecord
	Rounds   []RoundRecord
	Undos    []UndoRecord
}

// NewSessionTrace creates a SessionTrace ready for recording.
func NewSessionTrace(level TraceLevel) *SessionTrace {
	return &SessionTrace{
		Level:    level,
		Verdicts: make([]VerdictRecord, 0),
		Requeues: make([]RequeueRecord, 0),
		Rounds:   make([]RoundRecord, 0),
		Undos:    make([]UndoRecord, 0),
	}
}

func (st *SessionTrace) enabled() bool {
	return st != nil && st.Level == TraceLevelVerdicts
}

// RecordVerdict appends a verdict record.
func (st *SessionTrace) RecordVerdict(record VerdictRecord) {
	if st.enabled() {
		st.Verdicts = append(st.Verdicts, record)
	}
}

// RecordRequeue appends a requeue record.
func (st *SessionTrace) RecordRequeue(record RequeueRecord) {
	if st.enabled() {
		st.Requeues = append(st.Requeues, record)
	}
}

// RecordRound appends a round transition record.
func (st *SessionTrace) RecordRound(record RoundRecord) {
	if st.enabled() {
		st.Rounds = append(st.Rounds, record)
	}
}

// RecordUndo appends an undo or redo record.
func (st *SessionTrace) RecordUndo(record UndoRecord) {
	if st.enabled() {
		st.Undos = append(st.Undos, record)
	}
}
