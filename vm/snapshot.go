package vm

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Snapshot: serializable machine state
// ---------------------------------------------------------------------------
// A snapshot captures everything a run owns, so a machine can be rebuilt in
// another process and continue exactly where it left off. The codec is
// canonical CBOR for deterministic bytes; where the bytes are stored is the
// host's concern.

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is the serializable state of one machine. The tape is stored with
// trailing zero cells trimmed; TapeSize preserves the addressable range.
type Snapshot struct {
	Program  []Opcode `cbor:"program"`
	Tape     []byte   `cbor:"tape"`
	TapeSize int      `cbor:"tape_size"`
	Stack    []byte   `cbor:"stack"`
	DataP    int      `cbor:"data_p"`
	InstP    int      `cbor:"inst_p"`
	Aux      byte     `cbor:"auxi_r"`
	Steps    uint64   `cbor:"steps"`
}

// Snapshot captures the machine's current state. It does not capture the
// I/O ports; a restored machine gets fresh ports from its options.
func (m *Machine) Snapshot() *Snapshot {
	end := len(m.tape)
	for end > 0 && m.tape[end-1] == 0 {
		end--
	}

	s := &Snapshot{
		Program:  make([]Opcode, len(m.program)),
		Tape:     make([]byte, end),
		TapeSize: len(m.tape),
		Stack:    make([]byte, len(m.stack)),
		DataP:    m.dataP,
		InstP:    m.instP,
		Aux:      m.auxi,
		Steps:    m.steps,
	}
	copy(s.Program, m.program)
	copy(s.Tape, m.tape[:end])
	copy(s.Stack, m.stack)
	return s
}

// Restore builds a machine from a snapshot. Ports and budgets come from the
// options; tape size and stack contents come from the snapshot. The bracket
// jump table is rebuilt, so a tampered program fails the same way it would
// in New.
func Restore(s *Snapshot, opts ...Option) (*Machine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if s.TapeSize < DefaultTapeSize {
		return nil, fmt.Errorf("snapshot tape size %d below minimum %d", s.TapeSize, DefaultTapeSize)
	}
	if len(s.Tape) > s.TapeSize {
		return nil, fmt.Errorf("snapshot tape has %d cells, exceeds tape size %d", len(s.Tape), s.TapeSize)
	}
	if s.DataP < 0 || s.DataP >= s.TapeSize {
		return nil, fmt.Errorf("snapshot data_p %d out of range [0,%d)", s.DataP, s.TapeSize)
	}
	if len(s.Program) > 0 && (s.InstP < 0 || s.InstP >= len(s.Program)) {
		return nil, fmt.Errorf("snapshot inst_p %d out of range [0,%d)", s.InstP, len(s.Program))
	}
	if !cfg.unboundedStack && len(s.Stack) > cfg.stackCapacity {
		return nil, fmt.Errorf("snapshot stack depth %d exceeds capacity %d", len(s.Stack), cfg.stackCapacity)
	}

	jumps, err := buildJumpTable(s.Program)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		program: make([]Opcode, len(s.Program)),
		jumps:   jumps,
		tape:    make([]byte, s.TapeSize),
		stack:   make([]byte, len(s.Stack), max(cfg.stackCapacity, len(s.Stack))),
		auxi:    s.Aux,
		dataP:   s.DataP,
		instP:   s.InstP,
		steps:   s.Steps,
		input:   cfg.input,
		output:  cfg.output,
		cfg:     cfg,
	}
	copy(m.program, s.Program)
	copy(m.tape, s.Tape)
	copy(m.stack, s.Stack)
	return m, nil
}

// MarshalSnapshot serializes a snapshot to canonical CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("vm: unmarshal snapshot: %w", err)
	}
	return &s, nil
}
