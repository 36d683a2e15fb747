// Package manifest handles sbrain.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/sbrainlang/sbrain/vm"
)

// Manifest represents an sbrain.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Source  Source  `toml:"source"`
	Machine Machine `toml:"machine"`

	// Dir is the directory containing the sbrain.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures the program source and the transliterator.
type Source struct {
	Entry            string `toml:"entry"`
	CommentDelimiter string `toml:"comment-delimiter"`

	// Symbols remaps opcodes to source characters, e.g. `"z" = 12` to use
	// 'z' for ZERO_AUX. Unlisted opcodes keep their default symbol.
	Symbols map[string]int `toml:"symbols"`
}

// Machine configures the memory model and the step budget.
type Machine struct {
	TapeSize       int    `toml:"tape-size"`
	StackCapacity  int    `toml:"stack-capacity"`
	UnboundedStack bool   `toml:"unbounded-stack"`
	MaxSteps       uint64 `toml:"max-steps"`
}

// Load parses an sbrain.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "sbrain.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Machine.TapeSize == 0 {
		m.Machine.TapeSize = vm.DefaultTapeSize
	}
	if m.Machine.StackCapacity == 0 {
		m.Machine.StackCapacity = vm.DefaultStackCapacity
	}
	if m.Source.CommentDelimiter == "" {
		m.Source.CommentDelimiter = string(vm.DefaultCommentDelimiter)
	}

	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find an sbrain.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "sbrain.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) validate(path string) error {
	if m.Machine.TapeSize < vm.DefaultTapeSize {
		return fmt.Errorf("%s: machine.tape-size %d below minimum %d", path, m.Machine.TapeSize, vm.DefaultTapeSize)
	}
	if m.Machine.StackCapacity < vm.DefaultStackCapacity {
		return fmt.Errorf("%s: machine.stack-capacity %d below minimum %d", path, m.Machine.StackCapacity, vm.DefaultStackCapacity)
	}
	if utf8.RuneCountInString(m.Source.CommentDelimiter) != 1 {
		return fmt.Errorf("%s: source.comment-delimiter %q must be a single character", path, m.Source.CommentDelimiter)
	}
	for sym, op := range m.Source.Symbols {
		if utf8.RuneCountInString(sym) != 1 {
			return fmt.Errorf("%s: source.symbols key %q must be a single character", path, sym)
		}
		if op < 0 || op >= vm.NumOpcodes {
			return fmt.Errorf("%s: source.symbols %q maps to %d, want [0,%d]", path, sym, op, vm.NumOpcodes-1)
		}
	}
	return nil
}

// EntryPath returns the absolute path of the configured entry file, or ""
// if none is configured.
func (m *Manifest) EntryPath() string {
	if m.Source.Entry == "" {
		return ""
	}
	if filepath.IsAbs(m.Source.Entry) {
		return m.Source.Entry
	}
	return filepath.Join(m.Dir, m.Source.Entry)
}

// MachineOptions adapts the [machine] section into machine options.
func (m *Manifest) MachineOptions() []vm.Option {
	opts := []vm.Option{
		vm.WithTapeSize(m.Machine.TapeSize),
		vm.WithStackCapacity(m.Machine.StackCapacity),
	}
	if m.Machine.UnboundedStack {
		opts = append(opts, vm.WithUnboundedStack())
	}
	if m.Machine.MaxSteps > 0 {
		opts = append(opts, vm.WithMaxSteps(m.Machine.MaxSteps))
	}
	return opts
}

// Transliterator adapts the [source] section into a transliterator. Symbol
// overrides replace the default character for their opcode; the result must
// still be one-to-one.
func (m *Manifest) Transliterator() (*vm.Transliterator, error) {
	delimiter, _ := utf8.DecodeRuneInString(m.Source.CommentDelimiter)

	if len(m.Source.Symbols) == 0 && delimiter == vm.DefaultCommentDelimiter {
		return vm.NewTransliterator(), nil
	}

	// Build opcode -> symbol from the defaults, then apply overrides.
	bySymbol := vm.DefaultSymbols()
	byOpcode := make(map[vm.Opcode]rune, vm.NumOpcodes)
	for ch, op := range bySymbol {
		byOpcode[op] = ch
	}
	for sym, op := range m.Source.Symbols {
		ch, _ := utf8.DecodeRuneInString(sym)
		byOpcode[vm.Opcode(op)] = ch
	}

	table := make(vm.SymbolTable, vm.NumOpcodes)
	for op, ch := range byOpcode {
		if _, dup := table[ch]; dup {
			return nil, fmt.Errorf("symbol %q assigned to more than one opcode", ch)
		}
		table[ch] = op
	}

	t, err := vm.NewTransliteratorWith(table, delimiter)
	if err != nil {
		return nil, fmt.Errorf("invalid source configuration: %w", err)
	}
	return t, nil
}
