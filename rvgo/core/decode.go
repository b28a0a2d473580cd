package core

import "github.com/rvuser/rvemu/rvgo/riscv"

// field extraction, bit-for-bit identical to the layouts used by every RV32I
// decoder in the corpus (rd/rs1/rs2 at fixed offsets regardless of opcode).
func opcode(w uint64) uint64 { return w & 0x7F }
func rd(w uint64) uint8      { return uint8((w >> 7) & 0x1F) }
func funct3(w uint64) uint64 { return (w >> 12) & 0x7 }
func rs1(w uint64) uint8     { return uint8((w >> 15) & 0x1F) }
func rs2(w uint64) uint8     { return uint8((w >> 20) & 0x1F) }
func rs3(w uint64) uint8     { return uint8((w >> 27) & 0x1F) }
func funct7(w uint64) uint64 { return (w >> 25) & 0x7F }
func fmt2(w uint64) uint64   { return (w >> 25) & 0x3 } // float format bits within funct7

// Decode implements C2: a total, deterministic, side-effect-free mapping
// from a raw 32-bit instruction word to a decoded form, gated by the given
// ISA. d is overwritten; raw is not retained beyond d.Inst.
func Decode(d *DecodedInst, raw uint64, isa riscv.ISA) {
	d.Reset()
	d.Inst = raw

	op := recognizeOp(raw, isa)
	d.Op = op
	d.Codec = CodecOf(op)
	if op == OpIllegal {
		return
	}
	extractOperands(d, raw)
}

// recognizeOp is phase 1: a decision procedure over opcode/funct3/funct7
// that names the instruction, or returns OpIllegal if no rule matches or the
// matching rule belongs to a disabled extension.
func recognizeOp(w uint64, isa riscv.ISA) Op {
	switch opcode(w) {
	case 0x03: // LOAD
		switch funct3(w) {
		case 0x0:
			return OpLB
		case 0x1:
			return OpLH
		case 0x2:
			return OpLW
		case 0x3:
			if isa.XLen == riscv.XLen64 {
				return OpLD
			}
		case 0x4:
			return OpLBU
		case 0x5:
			return OpLHU
		case 0x6:
			if isa.XLen == riscv.XLen64 {
				return OpLWU
			}
		}
	case 0x23: // STORE
		switch funct3(w) {
		case 0x0:
			return OpSB
		case 0x1:
			return OpSH
		case 0x2:
			return OpSW
		case 0x3:
			if isa.XLen == riscv.XLen64 {
				return OpSD
			}
		}
	case 0x13: // OP-IMM
		switch funct3(w) {
		case 0x0:
			return OpADDI
		case 0x1:
			if funct7(w)>>1 == 0 {
				return OpSLLI
			}
		case 0x2:
			return OpSLTI
		case 0x3:
			return OpSLTIU
		case 0x4:
			return OpXORI
		case 0x5:
			switch funct7(w) >> 1 {
			case 0x00:
				return OpSRLI
			case 0x10:
				return OpSRAI
			}
		case 0x6:
			return OpORI
		case 0x7:
			return OpANDI
		}
	case 0x1B: // OP-IMM-32 (RV64)
		if isa.XLen != riscv.XLen64 {
			break
		}
		switch funct3(w) {
		case 0x0:
			return OpADDIW
		case 0x1:
			if funct7(w) == 0 {
				return OpSLLIW
			}
		case 0x5:
			switch funct7(w) {
			case 0x00:
				return OpSRLIW
			case 0x20:
				return OpSRAIW
			}
		}
	case 0x33: // OP
		if funct7(w) == 0x01 {
			if !isa.Ext.Has(riscv.ExtM) {
				return OpIllegal
			}
			switch funct3(w) {
			case 0x0:
				return OpMUL
			case 0x1:
				return OpMULH
			case 0x2:
				return OpMULHSU
			case 0x3:
				return OpMULHU
			case 0x4:
				return OpDIV
			case 0x5:
				return OpDIVU
			case 0x6:
				return OpREM
			case 0x7:
				return OpREMU
			}
			return OpIllegal
		}
		switch funct3(w) {
		case 0x0:
			switch funct7(w) {
			case 0x00:
				return OpADD
			case 0x20:
				return OpSUB
			}
		case 0x1:
			if funct7(w) == 0 {
				return OpSLL
			}
		case 0x2:
			if funct7(w) == 0 {
				return OpSLT
			}
		case 0x3:
			if funct7(w) == 0 {
				return OpSLTU
			}
		case 0x4:
			if funct7(w) == 0 {
				return OpXOR
			}
		case 0x5:
			switch funct7(w) {
			case 0x00:
				return OpSRL
			case 0x20:
				return OpSRA
			}
		case 0x6:
			if funct7(w) == 0 {
				return OpOR
			}
		case 0x7:
			if funct7(w) == 0 {
				return OpAND
			}
		}
	case 0x3B: // OP-32 (RV64)
		if isa.XLen != riscv.XLen64 {
			break
		}
		if funct7(w) == 0x01 {
			if !isa.Ext.Has(riscv.ExtM) {
				return OpIllegal
			}
			switch funct3(w) {
			case 0x0:
				return OpMULW
			case 0x4:
				return OpDIVW
			case 0x5:
				return OpDIVUW
			case 0x6:
				return OpREMW
			case 0x7:
				return OpREMUW
			}
			return OpIllegal
		}
		switch funct3(w) {
		case 0x0:
			switch funct7(w) {
			case 0x00:
				return OpADDW
			case 0x20:
				return OpSUBW
			}
		case 0x1:
			if funct7(w) == 0 {
				return OpSLLW
			}
		case 0x5:
			switch funct7(w) {
			case 0x00:
				return OpSRLW
			case 0x20:
				return OpSRAW
			}
		}
	case 0x37:
		return OpLUI
	case 0x17:
		return OpAUIPC
	case 0x6F:
		return OpJAL
	case 0x67:
		if funct3(w) == 0 {
			return OpJALR
		}
	case 0x63: // BRANCH
		switch funct3(w) {
		case 0x0:
			return OpBEQ
		case 0x1:
			return OpBNE
		case 0x4:
			return OpBLT
		case 0x5:
			return OpBGE
		case 0x6:
			return OpBLTU
		case 0x7:
			return OpBGEU
		}
	case 0x0F: // MISC-MEM
		switch funct3(w) {
		case 0x0:
			return OpFENCE
		case 0x1:
			return OpFENCEI
		}
	case 0x73: // SYSTEM
		switch funct3(w) {
		case 0x0:
			if w>>20 == 0 {
				return OpECALL
			} else if w>>20 == 1 {
				return OpEBREAK
			}
		case 0x1:
			return OpCSRRW
		case 0x2:
			return OpCSRRS
		case 0x3:
			return OpCSRRC
		case 0x5:
			return OpCSRRWI
		case 0x6:
			return OpCSRRSI
		case 0x7:
			return OpCSRRCI
		}
	case 0x2F: // AMO
		if !isa.Ext.Has(riscv.ExtA) {
			return OpIllegal
		}
		isD := funct3(w) == 0x3
		if funct3(w) != 0x2 && !isD {
			return OpIllegal
		}
		if isD && isa.XLen != riscv.XLen64 {
			return OpIllegal
		}
		switch funct7(w) >> 2 {
		case 0x02:
			if isD {
				return OpLRD
			}
			return OpLRW
		case 0x03:
			if isD {
				return OpSCD
			}
			return OpSCW
		case 0x01:
			if isD {
				return OpAMOSWAPD
			}
			return OpAMOSWAPW
		case 0x00:
			if isD {
				return OpAMOADDD
			}
			return OpAMOADDW
		case 0x04:
			if isD {
				return OpAMOXORD
			}
			return OpAMOXORW
		case 0x0C:
			if isD {
				return OpAMOANDD
			}
			return OpAMOANDW
		case 0x08:
			if isD {
				return OpAMOORD
			}
			return OpAMOORW
		case 0x10:
			if isD {
				return OpAMOMIND
			}
			return OpAMOMINW
		case 0x14:
			if isD {
				return OpAMOMAXD
			}
			return OpAMOMAXW
		case 0x18:
			if isD {
				return OpAMOMINUD
			}
			return OpAMOMINUW
		case 0x1C:
			if isD {
				return OpAMOMAXUD
			}
			return OpAMOMAXUW
		}
	case 0x07: // LOAD-FP
		if !isa.Ext.Has(riscv.ExtF) {
			return OpIllegal
		}
		switch funct3(w) {
		case 0x2:
			return OpFLW
		case 0x3:
			if isa.Ext.Has(riscv.ExtD) {
				return OpFLD
			}
		}
	case 0x27: // STORE-FP
		if !isa.Ext.Has(riscv.ExtF) {
			return OpIllegal
		}
		switch funct3(w) {
		case 0x2:
			return OpFSW
		case 0x3:
			if isa.Ext.Has(riscv.ExtD) {
				return OpFSD
			}
		}
	case 0x43, 0x47, 0x4B, 0x4F:
		return recognizeFusedFP(w, isa)
	case 0x53:
		return recognizeOpFP(w, isa)
	}
	return OpIllegal
}

func recognizeFusedFP(w uint64, isa riscv.ISA) Op {
	if !isa.Ext.Has(riscv.ExtF) {
		return OpIllegal
	}
	isD := fmt2(w) == 1
	if isD && !isa.Ext.Has(riscv.ExtD) {
		return OpIllegal
	}
	if fmt2(w) != 0 && !isD {
		return OpIllegal
	}
	switch opcode(w) {
	case 0x43:
		if isD {
			return OpFMADD_D
		}
		return OpFMADD_S
	case 0x47:
		if isD {
			return OpFMSUB_D
		}
		return OpFMSUB_S
	case 0x4B:
		if isD {
			return OpFNMSUB_D
		}
		return OpFNMSUB_S
	case 0x4F:
		if isD {
			return OpFNMADD_D
		}
		return OpFNMADD_S
	}
	return OpIllegal
}

func recognizeOpFP(w uint64, isa riscv.ISA) Op {
	if !isa.Ext.Has(riscv.ExtF) {
		return OpIllegal
	}
	isD := fmt2(w) == 1
	if isD && !isa.Ext.Has(riscv.ExtD) {
		return OpIllegal
	}
	if fmt2(w) != 0 && !isD {
		return OpIllegal
	}
	f5 := funct7(w) >> 2
	r2 := rs2(w)
	switch f5 {
	case 0x00:
		if isD {
			return OpFADD_D
		}
		return OpFADD_S
	case 0x01:
		if isD {
			return OpFSUB_D
		}
		return OpFSUB_S
	case 0x02:
		if isD {
			return OpFMUL_D
		}
		return OpFMUL_S
	case 0x03:
		if isD {
			return OpFDIV_D
		}
		return OpFDIV_S
	case 0x0B:
		if isD {
			return OpFSQRT_D
		}
		return OpFSQRT_S
	case 0x04:
		switch funct3(w) {
		case 0:
			if isD {
				return OpFSGNJ_D
			}
			return OpFSGNJ_S
		case 1:
			if isD {
				return OpFSGNJN_D
			}
			return OpFSGNJN_S
		case 2:
			if isD {
				return OpFSGNJX_D
			}
			return OpFSGNJX_S
		}
	case 0x05:
		switch funct3(w) {
		case 0:
			if isD {
				return OpFMIN_D
			}
			return OpFMIN_S
		case 1:
			if isD {
				return OpFMAX_D
			}
			return OpFMAX_S
		}
	case 0x08: // FCVT between float formats
		if isD { // dest=D, source must be S (rs2=0)
			if r2 == 0 {
				return OpFCVT_D_S
			}
		} else { // dest=S, source must be D (rs2=1)
			if r2 == 1 {
				return OpFCVT_S_D
			}
		}
	case 0x14:
		switch funct3(w) {
		case 2:
			if isD {
				return OpFEQ_D
			}
			return OpFEQ_S
		case 1:
			if isD {
				return OpFLT_D
			}
			return OpFLT_S
		case 0:
			if isD {
				return OpFLE_D
			}
			return OpFLE_S
		}
	case 0x18: // FCVT.W[U]/L[U].fmt (float -> int)
		switch r2 {
		case 0:
			if isD {
				return OpFCVT_W_D
			}
			return OpFCVT_W_S
		case 1:
			if isD {
				return OpFCVT_WU_D
			}
			return OpFCVT_WU_S
		case 2:
			if isa.XLen == riscv.XLen64 {
				if isD {
					return OpFCVT_L_D
				}
				return OpFCVT_L_S
			}
		case 3:
			if isa.XLen == riscv.XLen64 {
				if isD {
					return OpFCVT_LU_D
				}
				return OpFCVT_LU_S
			}
		}
	case 0x1A: // FCVT.fmt.W[U]/L[U] (int -> float)
		switch r2 {
		case 0:
			if isD {
				return OpFCVT_D_W
			}
			return OpFCVT_S_W
		case 1:
			if isD {
				return OpFCVT_D_WU
			}
			return OpFCVT_S_WU
		case 2:
			if isa.XLen == riscv.XLen64 {
				if isD {
					return OpFCVT_D_L
				}
				return OpFCVT_S_L
			}
		case 3:
			if isa.XLen == riscv.XLen64 {
				if isD {
					return OpFCVT_D_LU
				}
				return OpFCVT_S_LU
			}
		}
	case 0x1C: // FMV.X.fmt / FCLASS.fmt
		switch funct3(w) {
		case 0:
			if isD {
				if isa.XLen == riscv.XLen64 {
					return OpFMV_X_D
				}
				return OpIllegal
			}
			return OpFMV_X_W
		case 1:
			if isD {
				return OpFCLASS_D
			}
			return OpFCLASS_S
		}
	case 0x1E: // FMV.fmt.X
		if funct3(w) == 0 {
			if isD {
				if isa.XLen == riscv.XLen64 {
					return OpFMV_D_X
				}
				return OpIllegal
			}
			return OpFMV_W_X
		}
	}
	return OpIllegal
}

// extractOperands is phase 2: a switch on codec that pulls register
// indices, rounding mode, atomic flags, fence masks and assembles the
// immediate. It never re-examines op.
func extractOperands(d *DecodedInst, w uint64) {
	switch d.Codec {
	case CodecR:
		d.Rd, d.Rs1, d.Rs2 = rd(w), rs1(w), rs2(w)
	case CodecR4:
		d.Rd, d.Rs1, d.Rs2, d.Rs3 = rd(w), rs1(w), rs2(w), rs3(w)
		d.RM = uint8(funct3(w))
	case CodecI:
		d.Rd, d.Rs1 = rd(w), rs1(w)
		d.Imm = immI(w)
	case CodecIShift:
		d.Rd, d.Rs1 = rd(w), rs1(w)
		// shamt lives in the rs2 field, but RV64 needs a 6th bit (w bit 25,
		// the low bit of funct7) that recognizeOp already tolerates varying.
		d.Imm = int32(rs2(w)) | int32((w>>25&0x1)<<5)
	case CodecS:
		d.Rs1, d.Rs2 = rs1(w), rs2(w)
		d.Imm = immS(w)
	case CodecB:
		d.Rs1, d.Rs2 = rs1(w), rs2(w)
		d.Imm = immB(w)
	case CodecU:
		d.Rd = rd(w)
		d.Imm = immU(w)
	case CodecJ:
		d.Rd = rd(w)
		d.Imm = immJ(w)
	case CodecFence:
		d.Pred = uint8((w >> 24) & 0xF)
		d.Succ = uint8((w >> 20) & 0xF)
	case CodecCSR:
		d.Rd, d.Rs1 = rd(w), rs1(w)
		d.Imm = int32(w >> 20)
	case CodecCSRImm:
		d.Rd = rd(w)
		d.Rs1 = rs1(w) // holds the 5-bit zimm, not a register index
		d.Imm = int32(w >> 20)
	case CodecAtomic:
		d.Rd, d.Rs1, d.Rs2 = rd(w), rs1(w), rs2(w)
		d.AQ = (w>>26)&1 != 0
		d.RL = (w>>25)&1 != 0
	case CodecFI:
		d.Rd, d.Rs1 = rd(w), rs1(w)
		d.Imm = immI(w)
	case CodecFS:
		d.Rs1, d.Rs2 = rs1(w), rs2(w)
		d.Imm = immS(w)
	case CodecFR:
		d.Rd, d.Rs1 = rd(w), rs1(w)
		d.RM = uint8(funct3(w))
	case CodecFR2:
		d.Rd, d.Rs1, d.Rs2 = rd(w), rs1(w), rs2(w)
		d.RM = uint8(funct3(w))
	case CodecNone:
		// nothing to extract
	}
}

func sext(v uint64, bit uint) int32 {
	shift := 31 - bit
	return int32(v<<shift) >> shift
}

func immI(w uint64) int32 { return sext(w>>20, 11) }
func immS(w uint64) int32 {
	return sext((w>>25)<<5|((w>>7)&0x1F), 11)
}
func immB(w uint64) int32 {
	v := ((w >> 8) & 0xF) << 1
	v |= ((w >> 25) & 0x3F) << 5
	v |= ((w >> 7) & 0x1) << 11
	v |= (w >> 31) << 12
	return sext(v, 12)
}
func immU(w uint64) int32 { return int32(w & 0xFFFFF000) }
func immJ(w uint64) int32 {
	v := ((w >> 21) & 0x3FF) << 1
	v |= ((w >> 20) & 0x1) << 11
	v |= ((w >> 12) & 0xFF) << 12
	v |= (w >> 31) << 20
	return sext(v, 20)
}
