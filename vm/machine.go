package vm

import (
	"context"
	"fmt"
	"io"
)

// ---------------------------------------------------------------------------
// Machine: one SBrain execution
// ---------------------------------------------------------------------------

// Machine is a single SBrain virtual machine. It owns its tape, stack, and
// registers for the lifetime of one run; nothing is shared between machines,
// so independent machines may run concurrently.
//
// The program is fixed at construction and never mutated; only the
// instruction pointer moves through it.
type Machine struct {
	// Program store
	program []Opcode
	jumps   []int // bracket jump table: index of the matching bracket

	// Memory model
	tape  []byte
	stack []byte
	auxi  byte

	// Registers
	dataP int
	instP int

	steps uint64

	// I/O ports
	input  io.Reader
	output io.Writer

	cfg machineConfig
}

// New creates a machine for the given program. The bracket jump table is
// built here; unbalanced brackets fail with *MalformedProgramError before
// any instruction executes.
func New(program []Opcode, opts ...Option) (*Machine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tapeSize < DefaultTapeSize {
		return nil, fmt.Errorf("tape size %d below minimum %d", cfg.tapeSize, DefaultTapeSize)
	}
	if cfg.stackCapacity < DefaultStackCapacity {
		return nil, fmt.Errorf("stack capacity %d below minimum %d", cfg.stackCapacity, DefaultStackCapacity)
	}

	jumps, err := buildJumpTable(program)
	if err != nil {
		return nil, err
	}

	return &Machine{
		program: program,
		jumps:   jumps,
		tape:    make([]byte, cfg.tapeSize),
		stack:   make([]byte, 0, cfg.stackCapacity),
		input:   cfg.input,
		output:  cfg.output,
		cfg:     cfg,
	}, nil
}

// buildJumpTable resolves every bracket pair in a single pass. For an
// OpLoopStart the table holds the index of its OpLoopEnd and vice versa;
// every other entry is -1.
func buildJumpTable(program []Opcode) ([]int, error) {
	jumps := make([]int, len(program))
	for i := range jumps {
		jumps[i] = -1
	}

	var pending []int // indices of open OpLoopStart
	for i, op := range program {
		switch op {
		case OpLoopStart:
			pending = append(pending, i)
		case OpLoopEnd:
			if len(pending) == 0 {
				return nil, &MalformedProgramError{Pos: i, Opcode: OpLoopEnd}
			}
			open := pending[len(pending)-1]
			pending = pending[:len(pending)-1]
			jumps[open] = i
			jumps[i] = open
		}
	}
	if len(pending) > 0 {
		return nil, &MalformedProgramError{Pos: pending[0], Opcode: OpLoopStart}
	}
	return jumps, nil
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

// Run executes the program to completion. It returns when the halt opcode
// executes (Halted true, ExitCode from auxi_r), when the configured step
// budget is exhausted (Halted false, no error), when ctx is cancelled, or
// when a machine fault occurs. After a fault the machine state is
// unspecified.
func (m *Machine) Run(ctx context.Context) (RunResult, error) {
	// An empty program halts immediately. No halt opcode ran, so the exit
	// code is the untouched auxi_r.
	if len(m.program) == 0 {
		return RunResult{ExitCode: m.auxi, Halted: true, Steps: m.steps}, nil
	}

	for {
		if m.cfg.maxSteps > 0 && m.steps >= m.cfg.maxSteps {
			return RunResult{Halted: false, Steps: m.steps}, nil
		}
		if m.steps&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return RunResult{Halted: false, Steps: m.steps}, err
			}
		}

		halted, err := m.Step()
		if err != nil {
			return RunResult{Halted: false, Steps: m.steps}, err
		}
		if halted {
			return RunResult{ExitCode: m.auxi, Halted: true, Steps: m.steps}, nil
		}
	}
}

// Step fetches and executes a single instruction. It returns true when the
// instruction was halt. Stepping an empty program is a no-op that reports
// halted.
func (m *Machine) Step() (bool, error) {
	n := len(m.program)
	if n == 0 {
		return true, nil
	}

	op := m.program[m.instP]
	next := m.instP + 1
	if next == n {
		next = 0
	}

	switch op {
	case OpTapeLeft:
		if m.dataP == 0 {
			m.dataP = len(m.tape) - 1
		} else {
			m.dataP--
		}

	case OpTapeRight:
		m.dataP++
		if m.dataP == len(m.tape) {
			m.dataP = 0
		}

	case OpCellDec:
		m.tape[m.dataP]--

	case OpCellInc:
		m.tape[m.dataP]++

	case OpLoopStart:
		if m.tape[m.dataP] == 0 {
			next = (m.jumps[m.instP] + 1) % n
		}

	case OpLoopEnd:
		if m.tape[m.dataP] != 0 {
			next = (m.jumps[m.instP] + 1) % n
		}

	case OpOutput:
		if m.output != nil {
			if _, err := m.output.Write([]byte{m.tape[m.dataP]}); err != nil {
				return false, &PortError{InstP: m.instP, Port: "output", Err: err}
			}
		}

	case OpInput:
		b, err := m.readInput()
		if err != nil {
			return false, &PortError{InstP: m.instP, Port: "input", Err: err}
		}
		m.tape[m.dataP] = b

	case OpPush:
		if !m.cfg.unboundedStack && len(m.stack) == m.cfg.stackCapacity {
			return false, &StackOverflowError{InstP: m.instP, Capacity: m.cfg.stackCapacity}
		}
		m.stack = append(m.stack, m.tape[m.dataP])

	case OpPop:
		if len(m.stack) == 0 {
			return false, &StackUnderflowError{InstP: m.instP}
		}
		m.tape[m.dataP] = m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]

	case OpLoadAux:
		m.auxi = m.tape[m.dataP]

	case OpStoreAux:
		m.tape[m.dataP] = m.auxi

	case OpZeroAux:
		m.auxi = 0

	case OpNotAux:
		m.auxi = ^m.auxi

	case OpAndAux:
		m.auxi &= m.tape[m.dataP]

	case OpHalt:
		m.steps++
		return true, nil

	default:
		// Out-of-range values in a hand-built program execute as no-ops.
	}

	m.instP = next
	m.steps++
	return false, nil
}

// readInput reads one byte from the input port. A nil port or a port at
// end-of-stream reads 0.
func (m *Machine) readInput() (byte, error) {
	if m.input == nil {
		return 0, nil
	}
	var buf [1]byte
	n, err := m.input.Read(buf[:])
	if n > 0 {
		return buf[0], nil
	}
	if err == nil || err == io.EOF {
		return 0, nil
	}
	return 0, err
}

// ---------------------------------------------------------------------------
// Inspection
// ---------------------------------------------------------------------------

// Cell returns the value of the currently addressed tape cell.
func (m *Machine) Cell() byte {
	return m.tape[m.dataP]
}

// CellAt returns the value of the tape cell at the given address.
func (m *Machine) CellAt(addr int) byte {
	return m.tape[addr]
}

// Aux returns the auxiliary register.
func (m *Machine) Aux() byte {
	return m.auxi
}

// DataPointer returns data_p.
func (m *Machine) DataPointer() int {
	return m.dataP
}

// InstPointer returns inst_p.
func (m *Machine) InstPointer() int {
	return m.instP
}

// StackDepth returns the number of values on the data stack.
func (m *Machine) StackDepth() int {
	return len(m.stack)
}

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() uint64 {
	return m.steps
}

// TapeSize returns the addressable tape size.
func (m *Machine) TapeSize() int {
	return len(m.tape)
}

// Program returns a copy of the program store.
func (m *Machine) Program() []Opcode {
	p := make([]Opcode, len(m.program))
	copy(p, m.program)
	return p
}
