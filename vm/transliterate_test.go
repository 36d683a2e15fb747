package vm

import (
	"testing"
)

// ---------------------------------------------------------------------------
// Symbol mapping tests
// ---------------------------------------------------------------------------

func TestTransliterateDefaultSymbols(t *testing.T) {
	program := Transliterate("<>-+[].,{}()^!&@")

	if len(program) != NumOpcodes {
		t.Fatalf("program length = %d, want %d", len(program), NumOpcodes)
	}
	for i, op := range program {
		if op != Opcode(i) {
			t.Errorf("program[%d] = %v, want opcode %d", i, op, i)
		}
	}
}

func TestTransliterateIgnoresUnknownCharacters(t *testing.T) {
	program := Transliterate("+ hello\n\tworld +")

	want := []Opcode{OpCellInc, OpCellInc}
	if len(program) != len(want) {
		t.Fatalf("program = %v, want %v", program, want)
	}
	for i := range want {
		if program[i] != want[i] {
			t.Errorf("program[%d] = %v, want %v", i, program[i], want[i])
		}
	}
}

func TestTransliterateEmptySource(t *testing.T) {
	if program := Transliterate(""); len(program) != 0 {
		t.Errorf("program = %v, want empty", program)
	}
}

// ---------------------------------------------------------------------------
// Comment stripping tests
// ---------------------------------------------------------------------------

func TestTransliterateStripsComments(t *testing.T) {
	// Both '+' survive; the bracketed text vanishes with the delimiters.
	program := Transliterate("+#ignored[]#+.")

	want := []Opcode{OpCellInc, OpCellInc, OpOutput}
	if len(program) != len(want) {
		t.Fatalf("program = %v, want %v", program, want)
	}
	for i := range want {
		if program[i] != want[i] {
			t.Errorf("program[%d] = %v, want %v", i, program[i], want[i])
		}
	}
}

func TestTransliterateUnterminatedComment(t *testing.T) {
	// An odd delimiter leaves the rest of the source in-comment; not an error.
	program := Transliterate("++#the rest is discarded +++[]")

	if len(program) != 2 {
		t.Fatalf("program length = %d, want 2", len(program))
	}
}

func TestTransliterateAdjacentComments(t *testing.T) {
	program := Transliterate("#a#+#b#+")

	if len(program) != 2 {
		t.Fatalf("program length = %d, want 2", len(program))
	}
}

// ---------------------------------------------------------------------------
// Custom configuration tests
// ---------------------------------------------------------------------------

func TestTransliteratorCustomDelimiter(t *testing.T) {
	trans, err := NewTransliteratorWith(DefaultSymbols(), ';')
	if err != nil {
		t.Fatalf("NewTransliteratorWith failed: %v", err)
	}

	program := trans.Transliterate("+;comment;+")
	if len(program) != 2 {
		t.Fatalf("program length = %d, want 2", len(program))
	}

	// '#' is just an unknown character now.
	program = trans.Transliterate("+#+")
	if len(program) != 2 {
		t.Errorf("program length = %d, want 2", len(program))
	}
}

func TestTransliteratorCustomSymbols(t *testing.T) {
	symbols := DefaultSymbols()
	delete(symbols, '^')
	symbols['z'] = OpZeroAux

	trans, err := NewTransliteratorWith(symbols, '#')
	if err != nil {
		t.Fatalf("NewTransliteratorWith failed: %v", err)
	}

	program := trans.Transliterate("z@")
	if len(program) != 2 || program[0] != OpZeroAux || program[1] != OpHalt {
		t.Errorf("program = %v, want [ZERO_AUX HALT]", program)
	}

	// The replaced character is no longer mapped.
	if program := trans.Transliterate("^"); len(program) != 0 {
		t.Errorf("program = %v, want empty", program)
	}
}

func TestTransliteratorRejectsDuplicateOpcode(t *testing.T) {
	symbols := DefaultSymbols()
	delete(symbols, '^')
	symbols['+'] = OpZeroAux // '+' already maps OpCellInc... replaced here
	symbols['z'] = OpCellInc

	if _, err := NewTransliteratorWith(symbols, '#'); err != nil {
		t.Fatalf("NewTransliteratorWith failed: %v", err)
	}

	// A genuine duplicate: two characters for one opcode.
	symbols = DefaultSymbols()
	delete(symbols, '^')
	symbols['z'] = OpHalt
	if _, err := NewTransliteratorWith(symbols, '#'); err == nil {
		t.Error("expected error for two symbols mapping to HALT")
	}
}

func TestTransliteratorRejectsShortTable(t *testing.T) {
	symbols := DefaultSymbols()
	delete(symbols, '@')

	if _, err := NewTransliteratorWith(symbols, '#'); err == nil {
		t.Error("expected error for 15-entry table")
	}
}

func TestTransliteratorRejectsDelimiterCollision(t *testing.T) {
	if _, err := NewTransliteratorWith(DefaultSymbols(), '+'); err == nil {
		t.Error("expected error for delimiter shadowing a symbol")
	}
}
