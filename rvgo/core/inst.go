package core

// Op is the flat enumeration over every instruction this core can execute,
// across the I/M/A/F/D/C extensions, plus the distinguished illegal
// sentinel (spec.md §3). Compressed mnemonics decode straight to the
// expanded Op of their 32-bit equivalent (C3); there is no separate
// "compressed op" space visible past the decompressor.
type Op uint16

const (
	OpIllegal Op = iota

	// RV32I base
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpFENCEI
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpECALL
	OpEBREAK
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI

	// RV64I additions
	OpLWU
	OpLD
	OpSD
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW

	// M extension
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
	OpMULW
	OpDIVW
	OpDIVUW
	OpREMW
	OpREMUW

	// A extension
	OpLRW
	OpSCW
	OpAMOSWAPW
	OpAMOADDW
	OpAMOXORW
	OpAMOANDW
	OpAMOORW
	OpAMOMINW
	OpAMOMAXW
	OpAMOMINUW
	OpAMOMAXUW
	OpLRD
	OpSCD
	OpAMOSWAPD
	OpAMOADDD
	OpAMOXORD
	OpAMOANDD
	OpAMOORD
	OpAMOMIND
	OpAMOMAXD
	OpAMOMINUD
	OpAMOMAXUD

	// F extension
	OpFLW
	OpFSW
	OpFMADD_S
	OpFMSUB_S
	OpFNMSUB_S
	OpFNMADD_S
	OpFADD_S
	OpFSUB_S
	OpFMUL_S
	OpFDIV_S
	OpFSQRT_S
	OpFSGNJ_S
	OpFSGNJN_S
	OpFSGNJX_S
	OpFMIN_S
	OpFMAX_S
	OpFCVT_W_S
	OpFCVT_WU_S
	OpFMV_X_W
	OpFEQ_S
	OpFLT_S
	OpFLE_S
	OpFCLASS_S
	OpFCVT_S_W
	OpFCVT_S_WU
	OpFMV_W_X
	OpFCVT_L_S
	OpFCVT_LU_S
	OpFCVT_S_L
	OpFCVT_S_LU

	// D extension
	OpFLD
	OpFSD
	OpFMADD_D
	OpFMSUB_D
	OpFNMSUB_D
	OpFNMADD_D
	OpFADD_D
	OpFSUB_D
	OpFMUL_D
	OpFDIV_D
	OpFSQRT_D
	OpFSGNJ_D
	OpFSGNJN_D
	OpFSGNJX_D
	OpFMIN_D
	OpFMAX_D
	OpFCVT_W_D
	OpFCVT_WU_D
	OpFEQ_D
	OpFLT_D
	OpFLE_D
	OpFCLASS_D
	OpFCVT_D_W
	OpFCVT_D_WU
	OpFCVT_S_D
	OpFCVT_D_S
	OpFCVT_L_D
	OpFCVT_LU_D
	OpFCVT_D_L
	OpFCVT_D_LU
	OpFMV_X_D
	OpFMV_D_X

	opCount
)

// Codec is the operand-encoding tag selecting which fields of a DecodedInst
// are meaningful and how its immediate was assembled. codec is determined
// entirely by op (spec.md §3 invariant): codecOf below is the lookup table.
type Codec uint8

const (
	CodecNone Codec = iota // no operands: EBREAK, FENCE.I
	CodecR                 // rd, rs1, rs2
	CodecR4                // rd, rs1, rs2, rs3, rm (fused multiply-add)
	CodecI                 // rd, rs1, imm
	CodecIShift            // rd, rs1, shamt (in imm)
	CodecS                 // rs1, rs2, imm
	CodecB                 // rs1, rs2, imm (branch)
	CodecU                 // rd, imm
	CodecJ                 // rd, imm
	CodecFence             // pred, succ
	CodecCSR               // rd, rs1, imm (csr number)
	CodecCSRImm            // rd, imm (csr number), rs1 holds the 5-bit zimm
	CodecAtomic            // rd, rs1, rs2, aq, rl
	CodecFR                // rd, rs1 (float unary: sqrt, fclass, fmv, fcvt)
	CodecFR2               // rd, rs1, rs2 (float binary + compare)
	CodecFI                // rd, rs1, imm (float load)
	CodecFS                // rs1, rs2, imm (float store)
)

// codecOf is the op -> codec lookup table. Populated by an init() below so
// each op's codec reads as a single assignment next to its mnemonic,
// instead of one giant literal array indexed by iota position (which would
// silently desync the moment an op is inserted in the middle).
var codecOf [opCount]Codec

func defCodec(c Codec, ops ...Op) {
	for _, op := range ops {
		codecOf[op] = c
	}
}

func init() {
	defCodec(CodecNone, OpIllegal, OpFENCEI, OpEBREAK)
	defCodec(CodecI, OpLB, OpLH, OpLW, OpLBU, OpLHU, OpLWU, OpLD,
		OpADDI, OpSLTI, OpSLTIU, OpXORI, OpORI, OpANDI, OpJALR,
		OpADDIW, OpECALL)
	defCodec(CodecIShift, OpSLLI, OpSRLI, OpSRAI, OpSLLIW, OpSRLIW, OpSRAIW)
	defCodec(CodecS, OpSB, OpSH, OpSW, OpSD)
	defCodec(CodecB, OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU)
	defCodec(CodecU, OpLUI, OpAUIPC)
	defCodec(CodecJ, OpJAL)
	defCodec(CodecFence, OpFENCE)
	defCodec(CodecCSR, OpCSRRW, OpCSRRS, OpCSRRC)
	defCodec(CodecCSRImm, OpCSRRWI, OpCSRRSI, OpCSRRCI)
	defCodec(CodecR, OpADD, OpSUB, OpSLL, OpSLT, OpSLTU, OpXOR, OpSRL, OpSRA, OpOR, OpAND,
		OpADDW, OpSUBW, OpSLLW, OpSRLW, OpSRAW,
		OpMUL, OpMULH, OpMULHSU, OpMULHU, OpDIV, OpDIVU, OpREM, OpREMU,
		OpMULW, OpDIVW, OpDIVUW, OpREMW, OpREMUW)
	defCodec(CodecAtomic, OpLRW, OpSCW, OpAMOSWAPW, OpAMOADDW, OpAMOXORW, OpAMOANDW,
		OpAMOORW, OpAMOMINW, OpAMOMAXW, OpAMOMINUW, OpAMOMAXUW,
		OpLRD, OpSCD, OpAMOSWAPD, OpAMOADDD, OpAMOXORD, OpAMOANDD,
		OpAMOORD, OpAMOMIND, OpAMOMAXD, OpAMOMINUD, OpAMOMAXUD)
	defCodec(CodecFI, OpFLW, OpFLD)
	defCodec(CodecFS, OpFSW, OpFSD)
	defCodec(CodecR4, OpFMADD_S, OpFMSUB_S, OpFNMSUB_S, OpFNMADD_S,
		OpFMADD_D, OpFMSUB_D, OpFNMSUB_D, OpFNMADD_D)
	defCodec(CodecFR, OpFSQRT_S, OpFMV_X_W, OpFCLASS_S, OpFCVT_W_S, OpFCVT_WU_S,
		OpFCVT_S_W, OpFCVT_S_WU, OpFMV_W_X, OpFCVT_L_S, OpFCVT_LU_S, OpFCVT_S_L, OpFCVT_S_LU,
		OpFSQRT_D, OpFCLASS_D, OpFCVT_W_D, OpFCVT_WU_D, OpFCVT_D_W, OpFCVT_D_WU,
		OpFCVT_S_D, OpFCVT_D_S, OpFCVT_L_D, OpFCVT_LU_D, OpFCVT_D_L, OpFCVT_D_LU,
		OpFMV_X_D, OpFMV_D_X)
	defCodec(CodecFR2, OpFADD_S, OpFSUB_S, OpFMUL_S, OpFDIV_S, OpFSGNJ_S, OpFSGNJN_S, OpFSGNJX_S,
		OpFMIN_S, OpFMAX_S, OpFEQ_S, OpFLT_S, OpFLE_S,
		OpFADD_D, OpFSUB_D, OpFMUL_D, OpFDIV_D, OpFSGNJ_D, OpFSGNJN_D, OpFSGNJX_D,
		OpFMIN_D, OpFMAX_D, OpFEQ_D, OpFLT_D, OpFLE_D)
}

// CodecOf looks up the codec for an op; it never depends on anything but op,
// per spec.md §3's invariant.
func CodecOf(op Op) Codec { return codecOf[op] }

// DecodedInst is the central value produced by the decoder (C2), mutated in
// place by the decompressor (C3) and pseudoinstruction recognizer (C4), and
// consumed by the decode cache (C5) and executor (C6).
type DecodedInst struct {
	Inst  uint64 // raw instruction word, retained for caching/logging
	Op    Op
	Codec Codec

	Rd, Rs1, Rs2, Rs3 uint8
	RM                uint8 // rounding mode (F/D)
	Imm               int32 // sign-extended; all immediate forms land here

	AQ, RL     bool  // atomic acquire/release
	Pred, Succ uint8 // fence predecessor/successor masks
}

// Reset clears a slot in place so the decoder can reuse caller-provided
// storage without allocating (spec.md §4.2: decode writes only the decoded
// slot, no hidden state).
func (d *DecodedInst) Reset() {
	*d = DecodedInst{}
}
