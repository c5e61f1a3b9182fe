package engine

// Status is the result of evaluating a strategy node. There is no other
// hidden state: a node asked again after the world changed reconsiders
// from scratch rather than resuming mid-body.
type Status int8

const (
	// StatusNotApplicable: the node declined without doing anything.
	// Control flow, not failure.
	StatusNotApplicable Status = iota
	// StatusCompleted: the node ran to its natural end.
	StatusCompleted
	// StatusAborted: a plan premise became false mid-execution. Turns
	// already taken stay taken; only the intent is rolled back.
	StatusAborted
)

// Outcome carries a node's status plus the abort reason when relevant.
// Abort is an explicit value propagated through combinator returns,
// never a panic, so every combinator's handling of it is visible in its
// own code.
type Outcome struct {
	Status Status
	Reason string
}

func NotApplicable() Outcome      { return Outcome{Status: StatusNotApplicable} }
func Completed() Outcome          { return Outcome{Status: StatusCompleted} }
func Aborted(reason string) Outcome { return Outcome{Status: StatusAborted, Reason: reason} }

func (o Outcome) String() string {
	switch o.Status {
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted: " + o.Reason
	}
	return "not applicable"
}
