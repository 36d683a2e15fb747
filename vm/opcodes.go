package vm

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode represents a single SBrain instruction. Valid opcodes occupy the
// range [0,15]; a program is an immutable sequence of them.
type Opcode byte

// Tape pointer movement
const (
	OpTapeLeft  Opcode = 0 // < : decrement data_p (wraps to tape end)
	OpTapeRight Opcode = 1 // > : increment data_p (wraps to tape start)
)

// Cell arithmetic
const (
	OpCellDec Opcode = 2 // - : decrement cell, mod 256
	OpCellInc Opcode = 3 // + : increment cell, mod 256
)

// Control flow
const (
	OpLoopStart Opcode = 4 // [ : if cell == 0, jump past matching ]
	OpLoopEnd   Opcode = 5 // ] : if cell != 0, jump past matching [
)

// I/O ports
const (
	OpOutput Opcode = 6 // . : emit cell on the output port
	OpInput  Opcode = 7 // , : read cell from the input port (0 at EOF)
)

// Data stack
const (
	OpPush Opcode = 8 // { : push cell onto the data stack
	OpPop  Opcode = 9 // } : pop the data stack into cell
)

// Auxiliary register
const (
	OpLoadAux  Opcode = 10 // ( : auxi_r = cell
	OpStoreAux Opcode = 11 // ) : cell = auxi_r
	OpZeroAux  Opcode = 12 // ^ : auxi_r = 0
	OpNotAux   Opcode = 13 // ! : auxi_r = ^auxi_r
	OpAndAux   Opcode = 14 // & : auxi_r = auxi_r & cell
)

// Termination
const (
	OpHalt Opcode = 15 // @ : halt with exit code auxi_r
)

// NumOpcodes is the size of the instruction set.
const NumOpcodes = 16

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name   string // human-readable name
	Symbol rune   // source character in the default symbol table
}

// opcodeTable maps opcodes to their metadata.
var opcodeTable = [NumOpcodes]OpcodeInfo{
	OpTapeLeft:  {"TAPE_LEFT", '<'},
	OpTapeRight: {"TAPE_RIGHT", '>'},
	OpCellDec:   {"CELL_DEC", '-'},
	OpCellInc:   {"CELL_INC", '+'},
	OpLoopStart: {"LOOP_START", '['},
	OpLoopEnd:   {"LOOP_END", ']'},
	OpOutput:    {"OUTPUT", '.'},
	OpInput:     {"INPUT", ','},
	OpPush:      {"PUSH", '{'},
	OpPop:       {"POP", '}'},
	OpLoadAux:   {"LOAD_AUX", '('},
	OpStoreAux:  {"STORE_AUX", ')'},
	OpZeroAux:   {"ZERO_AUX", '^'},
	OpNotAux:    {"NOT_AUX", '!'},
	OpAndAux:    {"AND_AUX", '&'},
	OpHalt:      {"HALT", '@'},
}

// Valid reports whether op is one of the 16 defined opcodes.
func (op Opcode) Valid() bool {
	return op < NumOpcodes
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if !op.Valid() {
		return OpcodeInfo{Name: "INVALID"}
	}
	return opcodeTable[op]
}

// Symbol returns the source character for an opcode in the default table.
func (op Opcode) Symbol() rune {
	return op.Info().Symbol
}

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(%d)", byte(op))
	}
	return opcodeTable[op].Name
}
