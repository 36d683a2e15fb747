package vm

import "io"

// ---------------------------------------------------------------------------
// Machine configuration
// ---------------------------------------------------------------------------

// DefaultTapeSize is the guaranteed addressable range of the data tape.
// Programs may assume every cell in [0, DefaultTapeSize) exists and is zero.
const DefaultTapeSize = 65536

// DefaultStackCapacity is the guaranteed depth of the data stack.
const DefaultStackCapacity = 256

// Option configures a Machine.
type Option func(*machineConfig)

type machineConfig struct {
	tapeSize       int
	stackCapacity  int
	unboundedStack bool
	maxSteps       uint64
	input          io.Reader
	output         io.Writer
}

func defaultConfig() machineConfig {
	return machineConfig{
		tapeSize:      DefaultTapeSize,
		stackCapacity: DefaultStackCapacity,
	}
}

// WithTapeSize sets the addressable tape size. Values below DefaultTapeSize
// are rejected by New; programs are entitled to at least 65536 cells.
func WithTapeSize(n int) Option {
	return func(c *machineConfig) { c.tapeSize = n }
}

// WithStackCapacity sets the data stack capacity. Values below
// DefaultStackCapacity are rejected by New.
func WithStackCapacity(n int) Option {
	return func(c *machineConfig) { c.stackCapacity = n }
}

// WithUnboundedStack lets the data stack grow past its capacity instead of
// faulting on push.
func WithUnboundedStack() Option {
	return func(c *machineConfig) { c.unboundedStack = true }
}

// WithMaxSteps caps the number of instructions a run may execute. Zero means
// no cap. Exhausting the budget is not an error; the run result reports
// Halted false.
func WithMaxSteps(n uint64) Option {
	return func(c *machineConfig) { c.maxSteps = n }
}

// WithInput sets the input port. A nil input port reads zeros, like a port
// at end-of-stream.
func WithInput(r io.Reader) Option {
	return func(c *machineConfig) { c.input = r }
}

// WithOutput sets the output port. A nil output port discards writes.
func WithOutput(w io.Writer) Option {
	return func(c *machineConfig) { c.output = w }
}
