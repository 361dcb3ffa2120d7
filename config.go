package lockstep

import "time"

// Channel naming limits. A raw channel name may not exceed MaxChannelName
// characters, which caps a job handle at MaxHandleLen so that the derived
// receipt channel (handle + ReceiptSuffix) still fits in MaxReceiptName.
const (
	// MaxNameLen is the longest caller-supplied job name.
	MaxNameLen = 30

	// MaxChannelName is the ceiling for a raw channel name.
	MaxChannelName = 30

	// MaxHandleLen caps a job handle so handle+ReceiptSuffix stays legal.
	MaxHandleLen = 27

	// MaxReceiptName is the ceiling for a receipt channel name.
	MaxReceiptName = 35

	// ReceiptSuffix is appended to a handle to form its receipt channel.
	ReceiptSuffix = "_receipt"

	// CommandPreviewLen is the widest command excerpt quoted in
	// synthesized wait-timeout messages.
	CommandPreviewLen = 80
)

// Config holds process-wide tunables for the dispatcher.
type Config struct {
	// WaitTimeout is the default timeout for completion waits.
	WaitTimeout time.Duration

	// PollInterval is the scheduling granularity of the task-queue
	// engine. The confirmation wait is derived from it.
	PollInterval time.Duration

	// ConfirmTimeout bounds the wait for the worker's receipt signal.
	// Zero means 2× PollInterval.
	ConfirmTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		WaitTimeout:  1 * time.Minute,
		PollInterval: 1 * time.Second,
	}
}

// EffectiveConfirmTimeout resolves the confirmation-wait bound: the
// explicit ConfirmTimeout when set, otherwise twice the poll interval so
// one full scheduling cycle of latency is absorbed.
func (c Config) EffectiveConfirmTimeout() time.Duration {
	if c.ConfirmTimeout > 0 {
		return c.ConfirmTimeout
	}
	return 2 * c.PollInterval
}
