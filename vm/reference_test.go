package vm

import (
	"bytes"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Equivalence with the unextended 8-symbol language
// ---------------------------------------------------------------------------
// Programs built only from opcodes 0-7 must behave exactly like a plain
// pointer-machine interpreter. The reference below runs the program once
// through, with no instruction wraparound; the machine under test is
// stepped until its instruction pointer wraps, which is the same single
// pass.

// referenceRun is a deliberately naive interpreter for the 8-symbol subset.
func referenceRun(t *testing.T, source string, input []byte) []byte {
	t.Helper()

	var program []byte
	for _, ch := range source {
		if strings.ContainsRune("<>-+[].,", ch) {
			program = append(program, byte(ch))
		}
	}

	tape := make([]byte, DefaultTapeSize)
	var output []byte
	dp, in := 0, 0

	for pc := 0; pc < len(program); pc++ {
		switch program[pc] {
		case '<':
			dp = (dp + DefaultTapeSize - 1) % DefaultTapeSize
		case '>':
			dp = (dp + 1) % DefaultTapeSize
		case '-':
			tape[dp]--
		case '+':
			tape[dp]++
		case '.':
			output = append(output, tape[dp])
		case ',':
			if in < len(input) {
				tape[dp] = input[in]
				in++
			} else {
				tape[dp] = 0
			}
		case '[':
			if tape[dp] == 0 {
				depth := 1
				for depth > 0 {
					pc++
					if pc >= len(program) {
						t.Fatal("reference: unbalanced brackets")
					}
					switch program[pc] {
					case '[':
						depth++
					case ']':
						depth--
					}
				}
			}
		case ']':
			if tape[dp] != 0 {
				depth := 1
				for depth > 0 {
					pc--
					if pc < 0 {
						t.Fatal("reference: unbalanced brackets")
					}
					switch program[pc] {
					case ']':
						depth++
					case '[':
						depth--
					}
				}
			}
		}
	}
	return output
}

// runOnePass steps the machine until the instruction pointer wraps back to
// the start, i.e. one full pass over the program.
func runOnePass(t *testing.T, source string, input []byte) []byte {
	t.Helper()

	var output bytes.Buffer
	m, err := New(Transliterate(source),
		WithInput(bytes.NewReader(input)),
		WithOutput(&output))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for {
		halted, err := m.Step()
		if err != nil {
			t.Fatalf("Step failed: %v", err)
		}
		if halted || m.InstPointer() == 0 {
			return output.Bytes()
		}
	}
}

func TestStandardSubsetEquivalence(t *testing.T) {
	tests := []struct {
		name   string
		source string
		input  []byte
	}{
		{"single output", "++++++++[>+++++++++<-]>.", nil},
		{"increment then output", "++++++++[>+++++++++<-]>.+.", nil},
		{"nested multiplication", "++[>++[>++<-]<-]>>.", nil},
		{"cat", ",[.,]", []byte("hey")},
		{"skip loop on zero cell", "[.+.]>+.", nil},
		{"underflow wraps", "-.", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := referenceRun(t, tt.source, tt.input)
			got := runOnePass(t, tt.source, tt.input)
			if !bytes.Equal(got, want) {
				t.Errorf("output = %v, reference = %v", got, want)
			}
		})
	}
}

func TestLoopStartSkipsOnZero(t *testing.T) {
	// The loop body never runs, so no output is produced.
	var output bytes.Buffer
	res, _ := runSource(t, "[.+.]@", WithOutput(&output))

	if !res.Halted {
		t.Fatal("machine did not halt")
	}
	if output.Len() != 0 {
		t.Errorf("output = %v, want none", output.Bytes())
	}
}
