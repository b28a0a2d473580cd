package disasm

import (
	"testing"

	"github.com/rvuser/rvemu/rvgo/core"
	"github.com/stretchr/testify/require"
)

func TestFormatIllegalNeverPanics(t *testing.T) {
	d := &core.DecodedInst{Op: core.OpIllegal}
	require.Equal(t, "<illegal>", Format(d, false))
	require.Equal(t, "<illegal>", Format(d, true))
}

func TestFormatPrefersPseudo(t *testing.T) {
	d := &core.DecodedInst{Op: core.OpADDI, Rd: 0, Rs1: 0, Imm: 0}
	require.Equal(t, "nop", Format(d, false))
}

func TestFormatNoPseudoShowsCanonicalMnemonic(t *testing.T) {
	d := &core.DecodedInst{Op: core.OpADDI, Codec: core.CodecOf(core.OpADDI), Rd: 0, Rs1: 0, Imm: 0}
	require.Equal(t, "addi zero, zero, 0", Format(d, true))
}

func TestFormatRTypeOperandOrder(t *testing.T) {
	d := &core.DecodedInst{Op: core.OpADD, Codec: core.CodecOf(core.OpADD), Rd: 1, Rs1: 2, Rs2: 3}
	require.Equal(t, "add ra, sp, gp", Format(d, true))
}

func TestFormatLoadShowsOffsetParen(t *testing.T) {
	d := &core.DecodedInst{Op: core.OpLW, Codec: core.CodecOf(core.OpLW), Rd: 10, Rs1: 2, Imm: -8}
	require.Equal(t, "lw a0, -8(sp)", Format(d, true))
}

func TestFormatUnknownMnemonicFallsBackToIllegal(t *testing.T) {
	// Op(9999) is never a real op; Format must not panic on a map miss.
	d := &core.DecodedInst{Op: core.Op(9999)}
	require.Equal(t, "<illegal>", Format(d, true))
}
