package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Signature is the 3-byte magic that prefixes every compiled Alu program.
var Signature = [3]byte{0x1B, 0xCA, 0xCA}

// ErrTruncated is returned when the decoder needs more bytes than the
// buffer has left — including the bounded NUL scan for PUSHSTR/PUSHDEF:
// an unterminated string yields a decode error instead of scanning past
// the buffer.
var ErrTruncated = fmt.Errorf("alu: truncated bytecode")

// Feed decodes a signature-stripped byte buffer into a Program. Decoding
// stops, without error, when it reaches HALT (0x00) or any opcode >= END;
// it fails on a truncated or malformed instruction.
func Feed(buf []byte) (Program, error) {
	r := bytes.NewReader(buf)
	var prog Program

	for {
		opByte, err := r.ReadByte()
		if err != nil {
			// Clean EOF with no terminating HALT is permitted: HALT is
			// the terminator, but optional if EOF is reached first.
			return prog, nil
		}
		op := OpCode(opByte)

		if op == OpHalt || op >= OpEnd {
			return prog, nil
		}

		inst, err := decodeOperand(op, r)
		if err != nil {
			return nil, err
		}
		prog = append(prog, inst)
	}
}

// decodeOperand reads op's inline operand (if any) from r and returns the
// fully decoded Instruction.
func decodeOperand(op OpCode, r *bytes.Reader) (Instruction, error) {
	if op.isJump() {
		var raw int32
		if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
			return Instruction{}, fmt.Errorf("%w: jump operand for %s", ErrTruncated, op)
		}
		return Instruction{Op: op, I32: raw}, nil
	}

	switch op {
	case OpRet:
		return Instruction{Op: op}, nil
	case OpPushNum:
		var raw uint64
		if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
			return Instruction{}, fmt.Errorf("%w: PUSHNUM operand", ErrTruncated)
		}
		return Instruction{Op: op, Num: math.Float64frombits(raw)}, nil
	case OpPushStr, OpPushDef:
		s, err := readCString(r)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Str: s}, nil
	case OpPushBool:
		b, err := r.ReadByte()
		if err != nil {
			return Instruction{}, fmt.Errorf("%w: PUSHBOOL operand", ErrTruncated)
		}
		return Instruction{Op: op, U8: b}, nil
	case OpSumStack, OpStackClose, OpSuper, OpCall:
		return Instruction{Op: op}, nil
	case OpEval:
		mask, err := r.ReadByte()
		if err != nil {
			return Instruction{}, fmt.Errorf("%w: EVAL operand", ErrTruncated)
		}
		return Instruction{Op: op, U8: mask}, nil
	case OpLoad, OpUnload, OpDefUnload:
		var raw uint32
		if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
			return Instruction{}, fmt.Errorf("%w: register operand for %s", ErrTruncated, op)
		}
		return Instruction{Op: op, U32: raw}, nil
	default:
		return Instruction{}, fmt.Errorf("alu: unknown opcode 0x%02X", byte(op))
	}
}

// readCString scans forward for the first NUL byte, bounded by the
// remaining buffer, and returns the bytes before it as a string. The NUL
// itself is consumed but not included.
func readCString(r *bytes.Reader) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("%w: unterminated string operand", ErrTruncated)
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
}
