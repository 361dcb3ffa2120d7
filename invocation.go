package lockstep

import "strings"

// Invocation is the unit of work handed to the task-queue engine. The
// dispatcher builds one per submission; the worker entry point decodes it
// back out of the queued command text.
type Invocation struct {
	// Command is the caller's original instruction, executed verbatim
	// by the worker's runner. The command is opaque: it may contain any
	// byte, including Delim.
	Command string

	// ReceiptChannel is signaled by the worker the moment it picks the
	// task up, before any work is done.
	ReceiptChannel string

	// CompletedChannel is signaled with the packed completion payload
	// once the command finishes, successfully or not.
	CompletedChannel string

	// Session identifies the submitting dispatcher. Observability only.
	Session string
}

// Encode flattens the invocation into a single command string for the
// task queue. The caller's command appears verbatim as the first field,
// so queue-side dedup by command text keeps working on encoded entries.
func (inv Invocation) Encode() string {
	return strings.Join([]string{
		inv.Command,
		inv.ReceiptChannel,
		inv.CompletedChannel,
		inv.Session,
	}, Delim)
}

// ParseInvocation decodes a command string produced by Encode. The
// channels and session never contain Delim, so the last three fields are
// split off the end and everything before them is the command — a
// command that itself contains Delim round-trips intact.
func ParseInvocation(text string) (Invocation, error) {
	parts := strings.Split(text, Delim)
	if len(parts) < 4 {
		return Invocation{}, ErrMalformedInvocation
	}
	n := len(parts)
	return Invocation{
		Command:          strings.Join(parts[:n-3], Delim),
		ReceiptChannel:   parts[n-3],
		CompletedChannel: parts[n-2],
		Session:          parts[n-1],
	}, nil
}
