package vm

import (
	"bytes"
	"context"
	"io"
)

// ---------------------------------------------------------------------------
// Run results
// ---------------------------------------------------------------------------

// RunResult describes how a run ended. Halted distinguishes an explicit halt
// from a run that exhausted its step budget; ExitCode is meaningful only
// when Halted is true.
type RunResult struct {
	ExitCode byte   // auxi_r at the moment halt executed
	Halted   bool   // false when the step budget ran out first
	Steps    uint64 // instructions executed
}

// EvalResult is the outcome of a one-shot Evaluate call.
type EvalResult struct {
	Output   []byte // everything the program wrote to the output port
	ExitCode byte
	Halted   bool
	Steps    uint64
}

// Evaluate transliterates source and runs it on a fresh machine, capturing
// the output port. If an output port was configured via WithOutput, the
// bytes are also written there. Pass a step budget with WithMaxSteps when
// the source is untrusted; a bare loop never returns otherwise.
func Evaluate(ctx context.Context, source string, opts ...Option) (EvalResult, error) {
	program := Transliterate(source)

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var captured bytes.Buffer
	var sink io.Writer = &captured
	if cfg.output != nil {
		sink = io.MultiWriter(&captured, cfg.output)
	}

	m, err := New(program, append(opts, WithOutput(sink))...)
	if err != nil {
		return EvalResult{}, err
	}

	res, err := m.Run(ctx)
	if err != nil {
		return EvalResult{Output: captured.Bytes(), Steps: res.Steps}, err
	}
	return EvalResult{
		Output:   captured.Bytes(),
		ExitCode: res.ExitCode,
		Halted:   res.Halted,
		Steps:    res.Steps,
	}, nil
}
