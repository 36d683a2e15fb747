// Package vm implements the SBrain virtual machine.
//
// This package contains:
//   - The 16-opcode instruction set and its metadata
//   - The transliterator from source text to opcodes
//   - The machine: data tape, data stack, auxiliary register, I/O ports
//   - The fetch/execute loop with precomputed bracket jumps
//   - A CBOR snapshot codec for suspending and resuming machines
package vm
