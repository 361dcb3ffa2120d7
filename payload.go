package lockstep

import "strings"

// Delim separates the status marker from the message inside a signal
// payload. The ASCII unit separator cannot appear in marker text or any
// ordinary status message, so a single byte is enough.
const Delim = "\x1f"

// Status markers carried in signal payloads. The worker composes them;
// the wait engine maps them back onto job states.
const (
	// MarkerCompleted tags a successful completion signal.
	MarkerCompleted = "Completed Successfully"

	// MarkerFailed tags a completion signal for a command that failed.
	MarkerFailed = "Abnormal Termination"

	// MarkerInProgress tags the receipt signal sent before any work is
	// done.
	MarkerInProgress = "In Progress"
)

// Pack composes a signal payload from a status marker and a message.
func Pack(marker, message string) string {
	return marker + Delim + message
}

// Split decodes a signal payload. When the delimiter is present it
// returns the marker, the message, and true. Otherwise the whole payload
// is the message and the marker is empty.
func Split(payload string) (marker, message string, ok bool) {
	marker, message, ok = strings.Cut(payload, Delim)
	if !ok {
		return "", payload, false
	}
	return marker, message, true
}

// PreviewCommand returns the command truncated to CommandPreviewLen with
// an ellipsis, for use in synthesized timeout messages.
func PreviewCommand(command string) string {
	if len(command) <= CommandPreviewLen {
		return command
	}
	return command[:CommandPreviewLen-3] + "..."
}
