package vm

import "fmt"

// ---------------------------------------------------------------------------
// Machine fault types
// ---------------------------------------------------------------------------
// Every fatal condition gets its own error type so hosts can distinguish
// them without string matching. Runtime faults carry the instruction
// pointer at the time of the fault; after a fault the machine state is not
// meant for inspection.

// MalformedProgramError reports unbalanced brackets, discovered while the
// jump table is built. No instruction executes when this is returned.
type MalformedProgramError struct {
	Pos    int    // program index of the offending bracket
	Opcode Opcode // OpLoopStart or OpLoopEnd
}

func (e *MalformedProgramError) Error() string {
	if e.Opcode == OpLoopEnd {
		return fmt.Sprintf("malformed program: unmatched ']' at instruction %d", e.Pos)
	}
	return fmt.Sprintf("malformed program: unmatched '[' at instruction %d", e.Pos)
}

// StackUnderflowError reports a pop from an empty data stack.
type StackUnderflowError struct {
	InstP int // instruction pointer at the fault
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("data stack underflow at instruction %d", e.InstP)
}

// StackOverflowError reports a push onto a full data stack.
type StackOverflowError struct {
	InstP    int // instruction pointer at the fault
	Capacity int // configured stack capacity
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("data stack overflow at instruction %d (capacity %d)", e.InstP, e.Capacity)
}

// PortError reports a failed read or write on an I/O port. End-of-stream on
// the input port is not a port error; it reads as 0.
type PortError struct {
	InstP int    // instruction pointer at the fault
	Port  string // "input" or "output"
	Err   error
}

func (e *PortError) Error() string {
	return fmt.Sprintf("%s port error at instruction %d: %v", e.Port, e.InstP, e.Err)
}

func (e *PortError) Unwrap() error {
	return e.Err
}
