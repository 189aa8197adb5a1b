package vm

// sumStack implements SUMSTACK. It requires at least two items on the
// stack (else STKLN), reads a = peek(0), b = peek(1); their tags must
// match (else TYPES); the whole stack is cleared and the result pushed.
// This makes SUMSTACK destructive over more than just its two operands
// whenever the stack held extras.
func (s *State) sumStack() error {
	if s.stack.Len() < 2 {
		return newVMError(ErrStackLen, "SUMSTACK requires 2 stack items, got %d", s.stack.Len())
	}
	a, _ := s.stack.Peek(0)
	b, _ := s.stack.Peek(1)
	if a.Type != b.Type {
		return newVMError(ErrTypes, "SUMSTACK: mismatched tags %s and %s", a.Type, b.Type)
	}

	var result Value
	switch a.Type {
	case TypeNumber:
		result = Number(a.AsNumber() + b.AsNumber())
	case TypeBool:
		sum := boolToNumber(a.AsBool()) + boolToNumber(b.AsBool())
		result = Bool(sum != 0)
	case TypeString:
		result = String(a.AsString() + b.AsString())
	default:
		return newVMError(ErrTypes, "SUMSTACK: illegal tag %s", a.Type)
	}

	s.stack.Clear()
	s.stack.Push(result)
	return nil
}

// boolToNumber coerces a Bool's numeric value for SUMSTACK's bool+bool
// case: the result is a Bool whose numeric coercion equals a + b.
func boolToNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// eval implements EVAL. It requires at least one item on the stack
// (ideally two); the more recently pushed value (peek(0)) is the
// right-hand operand, the one pushed before it (peek(1)) the left-hand
// operand — the same order a compiler would push "x > 10" in (x first,
// then 10), so the sign is computed as left-minus-right. Differing tags
// clear the stack and push false. Otherwise a three-valued signum builds
// the comparison mask, ANDed against the operand. Both operands are
// cleared from the stack before the Bool result is pushed, regardless of
// outcome.
func (s *State) eval(mask byte) error {
	if s.stack.Len() < 1 {
		return newVMError(ErrStackLen, "EVAL requires at least 1 stack item, got 0")
	}
	right, _ := s.stack.Peek(0)

	var left Value
	haveLeft := s.stack.Len() >= 2
	if haveLeft {
		left, _ = s.stack.Peek(1)
	}

	var result bool
	if !haveLeft || left.Type != right.Type {
		result = false
	} else {
		sign, err := signum(left, right)
		if err != nil {
			return err
		}
		var bits byte
		switch {
		case sign == 0:
			bits = EvalEqual
		case sign < 0:
			bits = EvalLess
		default:
			bits = EvalGreater
		}
		result = bits&mask != 0
	}

	s.stack.Clear()
	s.stack.Push(Bool(result))
	return nil
}

// signum returns -1, 0 or 1 for left compared to right: byte-wise
// lexicographic for String, signed numeric comparison for Number/Bool.
// left and right are already known to share a tag.
func signum(left, right Value) (int, error) {
	switch left.Type {
	case TypeString:
		return compareStrings(left.AsString(), right.AsString()), nil
	case TypeNumber:
		return compareFloat(left.AsNumber(), right.AsNumber()), nil
	case TypeBool:
		return compareFloat(boolToNumber(left.AsBool()), boolToNumber(right.AsBool())), nil
	default:
		return 0, newVMError(ErrTypes, "EVAL: illegal tag %s", left.Type)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareStrings(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// call implements CALL: pop the top into garbage; if Abstract, invoke the
// resolved built-in against the shared State; otherwise TYPES.
func (s *State) call() error {
	top, ok := s.stack.Pop()
	if !ok {
		return newVMError(ErrStackLen, "CALL requires 1 stack item, got 0")
	}
	s.garbage = append(s.garbage, top)

	if !top.IsAbstract() {
		return newVMError(ErrTypes, "CALL: top is %s, not Abstract", top.Type)
	}
	fn, ok := s.builtins[top.AsAbstractName()]
	if !ok {
		return newVMError(ErrNoFound, "unknown built-in %q", top.AsAbstractName())
	}
	return fn(s)
}

// load implements LOAD k: replace register k with a copy of the current
// stack top, then clear the whole stack.
func (s *State) load(k uint32) error {
	top, err := s.stack.Peek(0)
	if err != nil {
		return newVMError(ErrStackLen, "LOAD requires 1 stack item, got 0")
	}
	s.registers.Load(k, top.Copy())
	s.stack.Clear()
	return nil
}

// unload implements UNLOAD k: push a copy of register k onto the stack;
// NOREG if absent.
func (s *State) unload(k uint32) error {
	v, err := s.registers.Unload(k)
	if err != nil {
		return err
	}
	s.stack.Push(v.Copy())
	return nil
}

// defUnload implements DEFUNLOAD k: move register k onto the stack and
// delete the slot; NOREG if absent.
func (s *State) defUnload(k uint32) error {
	v, err := s.registers.DefUnload(k)
	if err != nil {
		return err
	}
	s.stack.Push(v)
	return nil
}
