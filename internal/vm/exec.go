package vm

import "fmt"

// Execute walks the decoded program from the current instruction pointer,
// dispatching each opcode to its handler. It stops when it reaches RET,
// when the cooperative interrupt flag is set, when the program runs off
// the end (an implicit clean stop), or when a handler raises an error.
func (s *State) Execute() error {
	for s.ip < len(s.program) {
		if s.interrupted.Load() {
			return nil
		}

		inst := s.program[s.ip]

		if s.Verbose && s.trace != nil {
			fmt.Fprintf(s.trace, "%04d %-10s depth=%d\n", s.ip, inst.Op, s.stack.Len())
		}

		if inst.Op == OpRet {
			return nil
		}

		if inst.Op.isJump() {
			if err := s.dispatchJump(inst); err != nil {
				return s.fail(err)
			}
			continue
		}

		if err := s.dispatch(inst); err != nil {
			return s.fail(err)
		}
		s.ip++
	}
	return nil
}

// dispatch runs the handler for every non-jump, non-RET opcode.
func (s *State) dispatch(inst Instruction) error {
	switch inst.Op {
	case OpPushNum:
		s.stack.Push(Number(inst.Num))
	case OpPushStr:
		s.stack.Push(String(inst.Str))
	case OpPushBool:
		s.stack.Push(Bool(inst.U8 != 0))
	case OpPushDef:
		if _, ok := s.builtins[inst.Str]; !ok {
			return newVMError(ErrNoFound, "unknown built-in %q", inst.Str)
		}
		s.stack.Push(Abstract(inst.Str))
	case OpSumStack:
		return s.sumStack()
	case OpStackClose:
		s.stack.Clear()
	case OpEval:
		return s.eval(inst.U8)
	case OpSuper:
		s.stack.Super()
	case OpCall:
		return s.call()
	case OpLoad:
		return s.load(inst.U32)
	case OpUnload:
		return s.unload(inst.U32)
	case OpDefUnload:
		return s.defUnload(inst.U32)
	default:
		// Unlisted opcodes are no-ops.
	}
	return nil
}

// dispatchJump evaluates the jump predicate and moves the instruction
// pointer.
func (s *State) dispatchJump(inst Instruction) error {
	taken, err := s.shouldJump(inst.Op)
	if err != nil {
		return err
	}

	if !taken {
		s.ip++
		s.stack.PopK()
		return nil
	}

	s.stack.PopK()

	target := s.ip + jumpDelta(inst.I32)
	if target < 0 || target > len(s.program) {
		return newVMError(ErrOutOfJump, "jump offset %d from %d leaves the instruction list", inst.I32, s.ip)
	}
	s.ip = target
	return nil
}

// jumpDelta converts a taken jump's signed operand into a displacement
// from the jump instruction's own index. The walk is counted from the
// natural fall-through position (one past the jump) in either direction:
// forward walks n+1 further links (net n+2 from the jump itself, which is
// exactly what makes a jump of 0 skip the next instruction), backward
// walks |n|+1 links from that same fall-through position (net n from the
// jump itself, since the two -1s cancel).
func jumpDelta(n int32) int {
	if n >= 0 {
		return int(n) + 2
	}
	return int(n)
}

// shouldJump evaluates the jump predicate for op against the current
// stack top. JMP is unconditionally true and requires no stack
// inspection; JEM and JNEM only test the stack depth; JTR and JFA peek
// the top and raise NOSTK on an empty stack.
func (s *State) shouldJump(op OpCode) (bool, error) {
	switch op {
	case OpJmp:
		return true, nil
	case OpJem:
		return s.stack.Len() == 0, nil
	case OpJnem:
		return s.stack.Len() != 0, nil
	case OpJtr:
		top, err := s.stack.Peek(0)
		if err != nil {
			return false, err
		}
		return top.IsBool() && top.AsBool(), nil
	case OpJfa:
		top, err := s.stack.Peek(0)
		if err != nil {
			return false, err
		}
		return top.IsBool() && !top.AsBool(), nil
	default:
		return true, nil
	}
}
