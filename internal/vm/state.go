package vm

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"sync/atomic"

	"github.com/aluvm/alu/pkg/platform"
)

// BuiltinFunction is a host function callable from bytecode via PUSHDEF +
// CALL. It receives the shared State and operates through its stack API
// rather than taking explicit arguments, since the stack is the only
// calling convention the bytecode format has.
type BuiltinFunction func(*State) error

// State holds everything one VM run owns: the operand stack, garbage
// list, register bank, decoded program, and RNG seed, plus the
// output/trace sinks and host-platform boundary an embedding driver
// wires in.
type State struct {
	err         error
	output      io.Writer
	trace       io.Writer
	platform    platform.Platform
	builtins    map[string]BuiltinFunction
	rand        *rand.Rand
	program     Program
	stack       *Stack
	registers   *Registers
	garbage     []Value
	ip          int
	randSeed    int64
	interrupted atomic.Bool
	Verbose     bool
}

// NewState creates a fresh State with the default built-in table
// registered. output is the sink print writes to; p may be nil for a
// State that never calls StartFile or wait.
func NewState(p platform.Platform, output io.Writer) *State {
	seed := int64(1)
	s := &State{
		stack:     newStack(),
		registers: newRegisters(),
		garbage:   make([]Value, 0, 8),
		builtins:  make(map[string]BuiltinFunction),
		platform:  p,
		output:    output,
		rand:      rand.New(rand.NewSource(seed)),
		randSeed:  seed,
	}
	registerBuiltins(s)
	return s
}

// SetTrace wires w as the logging-sink boundary: when Verbose is true,
// Execute writes one line per dispatched instruction to w. A nil w (the
// default) makes tracing silent even if Verbose is set.
func (s *State) SetTrace(w io.Writer) { s.trace = w }

// Err returns the first error the VM encountered, or nil if none.
func (s *State) Err() error { return s.err }

// Interrupt requests cooperative cancellation; Execute checks this flag
// between every instruction and stops cleanly once it is set. Safe to
// call from a signal handler running on another goroutine.
func (s *State) Interrupt() { s.interrupted.Store(true) }

// Start decodes buf (which must begin with the Alu signature) and prepares
// the program for execution, but does not run it — call Execute.
func (s *State) Start(buf []byte) error {
	if len(buf) < len(Signature) || buf[0] != Signature[0] || buf[1] != Signature[1] || buf[2] != Signature[2] {
		return s.fail(newVMError(ErrUnknown, "missing or invalid Alu signature"))
	}
	prog, err := Feed(buf[len(Signature):])
	if err != nil {
		return s.fail(newVMError(ErrUnknown, "%s", err))
	}
	s.program = prog
	s.ip = 0
	return nil
}

// StartFile reads path via the configured platform and calls Start with
// its contents.
func (s *State) StartFile(path string) error {
	if s.platform == nil {
		return s.fail(newVMError(ErrUnknown, "no platform configured"))
	}
	if err := s.platform.FS().Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s.fail(newVMError(ErrNoFile, "no such file: %s", path))
		}
		return s.fail(newVMError(ErrStatFailed, "stat %s: %s", path, err))
	}
	buf, err := s.platform.FS().ReadFile(path)
	if err != nil {
		return s.fail(newVMError(ErrReadFailed, "reading %s: %s", path, err))
	}
	return s.Start(buf)
}

// fail records err as the state's terminal error (first one wins) and
// returns it.
func (s *State) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	return err
}

// Close tears the state down in a fixed order: stack -> garbage ->
// instructions -> registers -> state. It prints any recorded error to w
// and returns a non-zero status in that case. Close is idempotent.
func (s *State) Close(w io.Writer) int {
	if s == nil {
		return 0
	}
	if s.stack != nil {
		s.stack.Clear()
	}
	s.garbage = s.garbage[:0]
	s.program = nil
	if s.registers != nil {
		s.registers.Clear()
	}
	if s.err != nil {
		if w != nil {
			fmt.Fprintln(w, s.err.Error())
		}
		return 1
	}
	return 0
}
