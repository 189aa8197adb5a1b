package vm

import "fmt"

// registerBuiltins installs the fixed built-in table: print and wait.
// There is no registration API exposed beyond this; the table is closed,
// with no way for bytecode to add entries.
func registerBuiltins(s *State) {
	s.builtins["print"] = builtinPrint
	s.builtins["wait"] = builtinWait
}

// builtinPrint drains the entire stack, top to bottom, writing each
// value's canonical string form on its own line to the configured output
// sink. The stack is empty once print returns. Each drained value is
// parked on the garbage list like any other Pop, not freed immediately.
func builtinPrint(s *State) error {
	for s.stack.Len() > 0 {
		v, ok := s.stack.Pop()
		if !ok {
			break
		}
		s.garbage = append(s.garbage, v)
		fmt.Fprintln(s.output, v.String())
	}
	return nil
}

// builtinWait pops a single Number argument (milliseconds) and blocks via
// the configured platform clock. Like print, its argument travels the
// stack rather than the opcode operand: CALL's contract is only "pop the
// Abstract and invoke it", so any arguments a built-in needs must already
// be sitting below the Abstract pointer when CALL runs.
func builtinWait(s *State) error {
	v, ok := s.stack.Pop()
	if !ok {
		return newVMError(ErrStackLen, "wait requires 1 argument, got 0")
	}
	s.garbage = append(s.garbage, v)
	if !v.IsNumber() {
		return newVMError(ErrTypes, "wait: argument is %s, not Number", v.Type)
	}
	if s.platform == nil {
		return newVMError(ErrUnknown, "wait: no platform configured")
	}

	ms := v.AsNumber()
	if ms < 0 {
		ms = 0
	}
	s.platform.Clock().Sleep(uint32(ms))
	return nil
}
