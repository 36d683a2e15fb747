package vm

import "fmt"

// ---------------------------------------------------------------------------
// Transliterator: source text -> opcode sequence
// ---------------------------------------------------------------------------

// DefaultCommentDelimiter toggles comment-skip mode in the transliterator.
// Everything between a pair of delimiters, including the delimiters, is
// discarded.
const DefaultCommentDelimiter = '#'

// SymbolTable maps source characters one-to-one onto opcodes.
type SymbolTable map[rune]Opcode

// DefaultSymbols returns the standard 16-symbol table. The first eight
// symbols are the classic pointer-machine instructions; the rest cover the
// data stack, the auxiliary register, and halt.
func DefaultSymbols() SymbolTable {
	table := make(SymbolTable, NumOpcodes)
	for op := Opcode(0); op < NumOpcodes; op++ {
		table[opcodeTable[op].Symbol] = op
	}
	return table
}

// Transliterator converts raw source text into a program. It is a pure
// function of its configuration and the source; it keeps no state across
// calls.
type Transliterator struct {
	symbols   SymbolTable
	delimiter rune
}

// NewTransliterator returns a transliterator with the default symbol table
// and comment delimiter.
func NewTransliterator() *Transliterator {
	return &Transliterator{
		symbols:   DefaultSymbols(),
		delimiter: DefaultCommentDelimiter,
	}
}

// NewTransliteratorWith returns a transliterator with a custom symbol table
// and comment delimiter. The table must map exactly one character to each of
// the 16 opcodes, and the delimiter must not shadow a mapped character.
func NewTransliteratorWith(symbols SymbolTable, delimiter rune) (*Transliterator, error) {
	if len(symbols) != NumOpcodes {
		return nil, fmt.Errorf("symbol table has %d entries, want %d", len(symbols), NumOpcodes)
	}
	seen := make(map[Opcode]rune, NumOpcodes)
	for ch, op := range symbols {
		if !op.Valid() {
			return nil, fmt.Errorf("symbol %q maps to invalid opcode %d", ch, byte(op))
		}
		if prev, dup := seen[op]; dup {
			return nil, fmt.Errorf("symbols %q and %q both map to opcode %v", prev, ch, op)
		}
		seen[op] = ch
	}
	if _, ok := symbols[delimiter]; ok {
		return nil, fmt.Errorf("comment delimiter %q is also a mapped symbol", delimiter)
	}
	return &Transliterator{symbols: symbols, delimiter: delimiter}, nil
}

// Transliterate converts source text into a program. Characters inside
// comment regions and characters with no mapping are discarded; neither is
// an error. An unterminated trailing comment simply discards the rest of
// the source.
func (t *Transliterator) Transliterate(source string) []Opcode {
	program := make([]Opcode, 0, len(source))
	inComment := false

	for _, ch := range source {
		if ch == t.delimiter {
			inComment = !inComment
			continue
		}
		if inComment {
			continue
		}
		if op, ok := t.symbols[ch]; ok {
			program = append(program, op)
		}
	}
	return program
}

// Transliterate converts source text into a program using the default
// symbol table and comment delimiter.
func Transliterate(source string) []Opcode {
	return NewTransliterator().Transliterate(source)
}
