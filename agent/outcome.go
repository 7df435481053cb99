package agent

// OutcomeClass discriminates how the loop reacts to a step result.
type OutcomeClass int

const (
	// ClassContinue means the step completed normally and the loop
	// proceeds to the next query.
	ClassContinue OutcomeClass = iota
	// ClassRecoverable means the step failed in a way the model can
	// correct. The message is appended to the conversation and the loop
	// continues.
	ClassRecoverable
	// ClassTerminal ends the run. The message is appended for audit and
	// Run returns the outcome's kind and message.
	ClassTerminal
)

// Outcome kind names. These are the status tags a finished run reports.
const (
	KindFormatError      = "FormatError"
	KindExecutionTimeout = "ExecutionTimeoutError"
	KindSubmitted        = "Submitted"
	KindLimitsExceeded   = "LimitsExceeded"
)

// Outcome is the tagged result of one step of the loop. The zero value
// is Continue.
type Outcome struct {
	Class   OutcomeClass
	Kind    string
	Message string
}

// Recoverable builds a recoverable outcome of the given kind.
func Recoverable(kind, message string) Outcome {
	return Outcome{Class: ClassRecoverable, Kind: kind, Message: message}
}

// Terminal builds a terminal outcome of the given kind.
func Terminal(kind, message string) Outcome {
	return Outcome{Class: ClassTerminal, Kind: kind, Message: message}
}
