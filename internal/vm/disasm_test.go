package vm

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestDisassembleToStringGolden(t *testing.T) {
	var buf []byte
	buf = append(buf, byte(OpPushNum))
	buf = appendF64(buf, 125.3)
	buf = append(buf, byte(OpPushDef))
	buf = appendCString(buf, "print")
	buf = append(buf, byte(OpCall))
	buf = append(buf, byte(OpPushBool))
	buf = append(buf, 1)
	buf = append(buf, byte(OpEval))
	buf = append(buf, EvalEqual|EvalLess)
	buf = append(buf, byte(OpLoad))
	buf = appendU32(buf, 3)
	buf = append(buf, byte(OpJfa))
	buf = appendI32(buf, -3)
	buf = append(buf, byte(OpRet))

	prog, err := Feed(buf)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}

	snaps.MatchSnapshot(t, "disassembly", DisassembleToString(prog))
}

func TestDisassembleInstructionForwardJumpTarget(t *testing.T) {
	prog := Program{
		{Op: OpJmp, I32: 0},
		{Op: OpRet},
		{Op: OpRet},
	}
	var sb strings.Builder
	NewDisassembler(prog, &sb).DisassembleInstruction(0)

	if !strings.Contains(sb.String(), "-> 0002") {
		t.Errorf("disassembly = %q, want it to show target 0002 (JMP 0 skips exactly one instruction)", sb.String())
	}
}

func TestDisassembleInstructionBackwardJumpTarget(t *testing.T) {
	prog := Program{
		{Op: OpUnload, U32: 0},
		{Op: OpPushNum, Num: 1},
		{Op: OpJmp, I32: -2},
	}
	var sb strings.Builder
	NewDisassembler(prog, &sb).DisassembleInstruction(2)

	if !strings.Contains(sb.String(), "-> 0000") {
		t.Errorf("disassembly = %q, want it to show target 0000", sb.String())
	}
}

func TestDisassembleInvalidOffset(t *testing.T) {
	var sb strings.Builder
	NewDisassembler(Program{{Op: OpRet}}, &sb).DisassembleInstruction(5)
	if !strings.Contains(sb.String(), "invalid offset") {
		t.Errorf("disassembly = %q, want it to report an invalid offset", sb.String())
	}
}
