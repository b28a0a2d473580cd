package core

import (
	"testing"

	"github.com/rvuser/rvemu/rvgo/riscv"
	"github.com/stretchr/testify/require"
)

func TestRecognizeNop(t *testing.T) {
	d := DecodedInst{Op: OpADDI, Rd: 0, Rs1: 0, Imm: 0}
	p, ok := RecognizePseudo(&d)
	require.True(t, ok)
	require.Equal(t, "nop", p.Name)
}

func TestRecognizeRet(t *testing.T) {
	d := DecodedInst{Op: OpJALR, Rd: riscv.RegZero, Rs1: riscv.RegRA, Imm: 0}
	p, ok := RecognizePseudo(&d)
	require.True(t, ok)
	require.Equal(t, "ret", p.Name)
}

func TestRecognizeLiBeforeMv(t *testing.T) {
	// li is rs1==x0 && rd!=x0; mv is imm==0 && rd!=x0. An addi with both
	// rs1==x0 and imm==0 (addi rd, x0, 0) must match li first since li's
	// rule is listed first and "mv" would also be a spurious reading.
	d := DecodedInst{Op: OpADDI, Rd: 5, Rs1: 0, Imm: 0}
	p, ok := RecognizePseudo(&d)
	require.True(t, ok)
	require.Equal(t, "li", p.Name)
}

func TestRecognizeMv(t *testing.T) {
	d := DecodedInst{Op: OpADDI, Rd: 5, Rs1: 6, Imm: 0}
	p, ok := RecognizePseudo(&d)
	require.True(t, ok)
	require.Equal(t, "mv", p.Name)
	require.EqualValues(t, 6, p.Rs1)
}

func TestRecognizeNoneForOrdinaryInstruction(t *testing.T) {
	d := DecodedInst{Op: OpADDI, Rd: 5, Rs1: 6, Imm: 42}
	_, ok := RecognizePseudo(&d)
	require.False(t, ok)
}

func TestRecognizeNeverObservedOutsideOp(t *testing.T) {
	// Pseudoinstruction recognition must never be consulted by the
	// executor -- it only changes what gets displayed. Confirm that a
	// nop-shaped instruction still carries the real op the executor runs.
	d := DecodedInst{Op: OpADDI, Rd: 0, Rs1: 0, Imm: 0}
	_, ok := RecognizePseudo(&d)
	require.True(t, ok)
	require.Equal(t, OpADDI, d.Op)
}

func TestRecognizeBeqz(t *testing.T) {
	d := DecodedInst{Op: OpBEQ, Rs1: 3, Rs2: riscv.RegZero, Imm: 16}
	p, ok := RecognizePseudo(&d)
	require.True(t, ok)
	require.Equal(t, "beqz", p.Name)
	require.EqualValues(t, 16, p.Imm)
}

func TestRecognizeRdcycle(t *testing.T) {
	d := DecodedInst{Op: OpCSRRS, Rd: 7, Rs1: riscv.RegZero, Imm: int32(riscv.CsrCycle)}
	p, ok := RecognizePseudo(&d)
	require.True(t, ok)
	require.Equal(t, "rdcycle", p.Name)
}
