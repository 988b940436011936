package react

// ResumeCommand is a tagged variant of the three responses a human can give
// to a pending approval Interrupt (§4.4 Resume).
type ResumeCommand struct {
	kind                resumeKind
	editedArgumentsJSON string
	rejectReason        string
}

type resumeKind int

const (
	resumeApprove resumeKind = iota
	resumeApproveEdited
	resumeReject
)

// Approve executes the originally paused tool call with its original
// arguments.
func Approve() ResumeCommand { return ResumeCommand{kind: resumeApprove} }

// ApproveEdited executes the originally paused tool call with
// modifiedArgumentsJSON in place of its original arguments. The call's id is
// preserved so the resulting Tool message still correlates.
func ApproveEdited(modifiedArgumentsJSON string) ResumeCommand {
	return ResumeCommand{kind: resumeApproveEdited, editedArgumentsJSON: modifiedArgumentsJSON}
}

// Reject skips execution of the paused tool call, appending an error Tool
// message carrying reason so the model can observe the refusal and adapt.
func Reject(reason string) ResumeCommand {
	return ResumeCommand{kind: resumeReject, rejectReason: reason}
}
