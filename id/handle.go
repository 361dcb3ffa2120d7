package id

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// Handle length budget. A handle doubles as the job's completion-channel
// name, and handle+"_receipt" must still be a legal channel name, which
// caps the handle at 27 characters.
const (
	maxHandleLen  = 27
	truncatedName = 14
)

// Sequence is a process-wide monotonic counter. Handles derived from the
// same Sequence are unique even for repeated job names. The zero value is
// ready to use.
type Sequence struct {
	n atomic.Uint64
}

// Next returns the next value, starting at 1.
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// defaultSeq backs NextHandle. Tests that need deterministic handles
// construct their own Sequence and call NewHandle directly.
var defaultSeq Sequence

// NewHandle derives a job handle from a name and a sequence number:
// uppercase(name) + "_" + seq. When the full form would exceed the
// 27-character budget the name part is first cut to 14 characters, so the
// sequence digits always survive intact.
func NewHandle(name string, seq uint64) string {
	base := strings.ToUpper(name)
	digits := strconv.FormatUint(seq, 10)

	if len(base)+1+len(digits) > maxHandleLen {
		// Cut by runes: a byte cut could split a multibyte character
		// and produce an invalid channel name.
		if runes := []rune(base); len(runes) > truncatedName {
			base = string(runes[:truncatedName])
		}
	}

	return base + "_" + digits
}

// NextHandle derives a handle using the package-wide sequence.
func NextHandle(name string) string {
	return NewHandle(name, defaultSeq.Next())
}
