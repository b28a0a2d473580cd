package core

import (
	"testing"

	"github.com/rvuser/rvemu/rvgo/riscv"
	"github.com/stretchr/testify/require"
)

func isaRV64() riscv.ISA {
	isa, err := riscv.ParseISA("IMAFDC", riscv.XLen64)
	if err != nil {
		panic(err)
	}
	return isa
}

func TestDecodeIsTotalAndDeterministic(t *testing.T) {
	isa := isaRV64()
	for _, w := range []uint64{0x00500093, 0x00000000, 0xFFFFFFFF, 0x00A28293} {
		var a, b DecodedInst
		Decode(&a, w, isa)
		Decode(&b, w, isa)
		require.Equal(t, a, b, "decode must be deterministic for word 0x%x", w)
	}
}

func TestDecodeADDI(t *testing.T) {
	var d DecodedInst
	// addi x1, x0, 5
	Decode(&d, 0x00500093, isaRV64())
	require.Equal(t, OpADDI, d.Op)
	require.Equal(t, CodecI, d.Codec)
	require.EqualValues(t, 1, d.Rd)
	require.EqualValues(t, 0, d.Rs1)
	require.EqualValues(t, 5, d.Imm)
}

func TestDecodeLW(t *testing.T) {
	var d DecodedInst
	// lw x2, 0(x3)
	Decode(&d, 0x0001A103|(2<<7), isaRV64())
	require.Equal(t, OpLW, d.Op)
	require.EqualValues(t, 0, d.Imm)
	require.EqualValues(t, 3, d.Rs1)
}

func TestDecodeBranch(t *testing.T) {
	var d DecodedInst
	// beq x0, x0, +8  -> imm[12|10:5]=0000000 rs2=0 rs1=0 funct3=000 imm[4:1|11]=0100 opcode=1100011
	raw := uint64(0x00000063) | (8&0x1E)<<7
	Decode(&d, raw, isaRV64())
	require.Equal(t, OpBEQ, d.Op)
	require.EqualValues(t, 8, d.Imm)
}

func TestDecodeIllegalOpcode(t *testing.T) {
	var d DecodedInst
	Decode(&d, 0x00000000, isaRV64())
	require.Equal(t, OpIllegal, d.Op)
}

func TestDecodeGatesExtensionByISA(t *testing.T) {
	isaNoM, err := riscv.ParseISA("IMA", riscv.XLen64) // A extension, base M only (no F/D)
	require.NoError(t, err)
	var d DecodedInst
	// fadd.s f0, f1, f2 -- requires F, which IMA does not have
	raw := uint64(0x00208053) | (1<<15) | (2<<20)
	Decode(&d, raw, isaNoM)
	require.Equal(t, OpIllegal, d.Op)
}

func TestDecodeMExtension(t *testing.T) {
	var d DecodedInst
	// mul x1, x2, x3: funct7=0000001 rs2=3 rs1=2 funct3=000 rd=1 opcode=0110011
	raw := uint64(0x33) | (1<<7) | (0<<12) | (2<<15) | (3<<20) | (1<<25)
	Decode(&d, raw, isaRV64())
	require.Equal(t, OpMUL, d.Op)
}

func TestDecodeSRLIWideShamtRV64(t *testing.T) {
	var d DecodedInst
	// srli x1, x2, 32: the 6th shamt bit lives at w bit 25, funct7>>1 still
	// selects SRLI (0x00) regardless of that bit.
	raw := uint64(0x13) | (1 << 7) | (5 << 12) | (2 << 15) | (0 << 20) | (1 << 25)
	Decode(&d, raw, isaRV64())
	require.Equal(t, OpSRLI, d.Op)
	require.EqualValues(t, 32, d.Imm)
}

func TestCodecDeterminedByOp(t *testing.T) {
	require.Equal(t, CodecI, CodecOf(OpADDI))
	require.Equal(t, CodecR, CodecOf(OpADD))
	require.Equal(t, CodecB, CodecOf(OpBEQ))
	require.Equal(t, CodecNone, CodecOf(OpIllegal))
}
