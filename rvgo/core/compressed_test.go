package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecompressCNOP(t *testing.T) {
	var d DecodedInst
	// c.nop: quadrant1, funct3=000, rd/rs1=0, imm=0 -> raw=0x0001
	Decompress(&d, 0x0001, isaRV64())
	require.Equal(t, OpADDI, d.Op)
	require.EqualValues(t, 0, d.Rd)
	require.EqualValues(t, 0, d.Imm)
}

func TestDecompressCADDI4SPN(t *testing.T) {
	var d DecodedInst
	// c.addi4spn x8, sp, 4: quadrant0 op=00, funct3=000, nzuimm[2] is raw bit 6
	raw := uint64(0x0040) // bit6 set
	Decompress(&d, raw, isaRV64())
	require.Equal(t, OpADDI, d.Op)
	require.EqualValues(t, 8, d.Rd) // rvcReg(0) = 8
	require.EqualValues(t, riscvRegSP(), d.Rs1)
	require.NotZero(t, d.Imm)
}

func TestDecompressCADDI4SPNZeroImmIsIllegal(t *testing.T) {
	var d DecodedInst
	Decompress(&d, 0x0000, isaRV64())
	require.Equal(t, OpIllegal, d.Op)
}

func TestDecompressCLI(t *testing.T) {
	var d DecodedInst
	// c.li x1, 5: quadrant1, funct3=010 (bits 15-13), rd=1 (bits 11-7), imm[4:0]=5 (bits 6-2)
	raw := uint64(0x2)<<13 | uint64(1)<<7 | uint64(5)<<2 | 0x1
	Decompress(&d, raw, isaRV64())
	require.Equal(t, OpADDI, d.Op)
	require.EqualValues(t, 1, d.Rd)
	require.EqualValues(t, 0, d.Rs1)
	require.EqualValues(t, 5, d.Imm)
}

func TestDecompressCJ(t *testing.T) {
	var d DecodedInst
	// c.j: quadrant1, funct3=101 (bits15-13), bits 12-2 hold the scrambled offset, op=01
	raw := uint64(0x5)<<13 | 0x1
	Decompress(&d, raw, isaRV64())
	require.Equal(t, OpJAL, d.Op)
	require.EqualValues(t, 0, d.Rd)
}

func TestDecompressIsReExpandedOp(t *testing.T) {
	// Whatever op a compressed form expands to, its codec must equal the
	// codec of that op under the normal 32-bit decode path -- compressed
	// and uncompressed forms of the same op are indistinguishable past
	// decode.
	var d DecodedInst
	Decompress(&d, 0x0001, isaRV64()) // c.nop -> addi
	require.Equal(t, CodecOf(OpADDI), d.Codec)
}

func riscvRegSP() uint8 { return 2 }
