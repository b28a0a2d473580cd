package core

import "github.com/rvuser/rvemu/rvgo/riscv"

// rvcReg maps a compressed 3-bit register field to the full x8..x15 window
// the C extension's "popular register" forms are restricted to.
func rvcReg(bits uint64) uint8 { return uint8(bits&0x7) + 8 }

// Decompress implements C3: it expands a 16-bit compressed instruction into
// the DecodedInst of its 32-bit equivalent. It never itself produces an
// Op tied to a "compressed" identity — by the time extractOperands-equivalent
// work here is done, d looks exactly like what Decode would have produced
// for the expanded form (spec.md §4.3).
//
// raw is the low 16 bits of the fetched word, exactly as returned by Fetch
// for a 2-byte instruction.
func Decompress(d *DecodedInst, raw uint64, isa riscv.ISA) {
	d.Reset()
	d.Inst = raw

	op, quadrant := raw&0x3, (raw>>13)&0x7
	switch op {
	case 0x0:
		decompressQuadrant0(d, raw, quadrant, isa)
	case 0x1:
		decompressQuadrant1(d, raw, quadrant, isa)
	case 0x2:
		decompressQuadrant2(d, raw, quadrant, isa)
	default:
		d.Op = OpIllegal
	}
	if d.Op != OpIllegal {
		d.Codec = CodecOf(d.Op)
	}
}

func decompressQuadrant0(d *DecodedInst, raw, quadrant uint64, isa riscv.ISA) {
	switch quadrant {
	case 0x0: // C.ADDI4SPN
		imm := ((raw >> 7) & 0x30) | ((raw >> 1) & 0x3C0) | ((raw >> 4) & 0x4) | ((raw >> 2) & 0x8)
		if imm == 0 {
			d.Op = OpIllegal
			return
		}
		d.Op = OpADDI
		d.Rd = rvcReg(raw >> 2)
		d.Rs1 = riscv.RegSP
		d.Imm = int32(imm)
	case 0x2: // C.LW
		d.Op = OpLW
		d.Rd = rvcReg(raw >> 2)
		d.Rs1 = rvcReg(raw >> 7)
		d.Imm = int32(clwImm(raw))
	case 0x3: // C.FLW (RV32) / C.LD (RV64)
		d.Rd = rvcReg(raw >> 2)
		d.Rs1 = rvcReg(raw >> 7)
		switch {
		case isa.XLen == riscv.XLen64:
			d.Op, d.Imm = OpLD, int32(cldImm(raw))
		case isa.Ext.Has(riscv.ExtF):
			d.Op, d.Imm = OpFLW, int32(clwImm(raw))
		default:
			d.Op = OpIllegal
		}
	case 0x6: // C.SW
		d.Op = OpSW
		d.Rs1 = rvcReg(raw >> 7)
		d.Rs2 = rvcReg(raw >> 2)
		d.Imm = int32(clwImm(raw))
	case 0x7: // C.FSW (RV32) / C.SD (RV64)
		d.Rs1 = rvcReg(raw >> 7)
		d.Rs2 = rvcReg(raw >> 2)
		switch {
		case isa.XLen == riscv.XLen64:
			d.Op, d.Imm = OpSD, int32(cldImm(raw))
		case isa.Ext.Has(riscv.ExtF):
			d.Op, d.Imm = OpFSW, int32(clwImm(raw))
		default:
			d.Op = OpIllegal
		}
	default:
		d.Op = OpIllegal
	}
}

func clwImm(raw uint64) uint64 {
	return ((raw >> 7) & 0x38) | ((raw << 1) & 0x40) | ((raw >> 4) & 0x4)
}
func cldImm(raw uint64) uint64 {
	return ((raw >> 7) & 0x38) | ((raw << 1) & 0xC0)
}

func decompressQuadrant1(d *DecodedInst, raw, quadrant uint64, isa riscv.ISA) {
	rdRs1 := uint8((raw >> 7) & 0x1F)
	switch quadrant {
	case 0x0: // C.ADDI (rdRs1==0 => C.NOP)
		d.Op = OpADDI
		d.Rd, d.Rs1 = rdRs1, rdRs1
		d.Imm = ciImm(raw)
	case 0x1: // C.JAL (RV32) / C.ADDIW (RV64)
		if isa.XLen == riscv.XLen64 {
			if rdRs1 == 0 {
				d.Op = OpIllegal
				return
			}
			d.Op = OpADDIW
			d.Rd, d.Rs1 = rdRs1, rdRs1
			d.Imm = ciImm(raw)
		} else {
			d.Op = OpJAL
			d.Rd = riscv.RegRA
			d.Imm = cjImm(raw)
		}
	case 0x2: // C.LI
		d.Op = OpADDI
		d.Rd, d.Rs1 = rdRs1, riscv.RegZero
		d.Imm = ciImm(raw)
	case 0x3:
		if rdRs1 == 2 { // C.ADDI16SP
			imm := ((raw >> 3) & 0x200) | ((raw >> 2) & 0x10) | ((raw << 1) & 0x40) |
				((raw << 4) & 0x180) | ((raw << 3) & 0x20)
			d.Op = OpADDI
			d.Rd, d.Rs1 = riscv.RegSP, riscv.RegSP
			d.Imm = sext(imm, 9)
		} else { // C.LUI
			if rdRs1 == 0 {
				d.Op = OpIllegal
				return
			}
			imm := ((raw << 5) & 0x20000) | ((raw << 10) & 0x1F000)
			d.Op = OpLUI
			d.Rd = rdRs1
			d.Imm = int32(sext(imm, 17))
		}
	case 0x4:
		decompressQuadrant1Arith(d, raw, isa)
	case 0x5: // C.J
		d.Op = OpJAL
		d.Rd = riscv.RegZero
		d.Imm = cjImm(raw)
	case 0x6: // C.BEQZ
		d.Op = OpBEQ
		d.Rs1 = rvcReg(raw >> 7)
		d.Rs2 = riscv.RegZero
		d.Imm = cbImm(raw)
	case 0x7: // C.BNEZ
		d.Op = OpBNE
		d.Rs1 = rvcReg(raw >> 7)
		d.Rs2 = riscv.RegZero
		d.Imm = cbImm(raw)
	default:
		d.Op = OpIllegal
	}
}

func decompressQuadrant1Arith(d *DecodedInst, raw uint64, isa riscv.ISA) {
	rdRs1 := rvcReg(raw >> 7)
	switch (raw >> 10) & 0x3 {
	case 0x0: // C.SRLI
		d.Op = OpSRLI
		d.Rd, d.Rs1 = rdRs1, rdRs1
		d.Imm = int32(((raw >> 7) & 0x20) | ((raw >> 2) & 0x1F))
	case 0x1: // C.SRAI
		d.Op = OpSRAI
		d.Rd, d.Rs1 = rdRs1, rdRs1
		d.Imm = int32(((raw >> 7) & 0x20) | ((raw >> 2) & 0x1F))
	case 0x2: // C.ANDI
		d.Op = OpANDI
		d.Rd, d.Rs1 = rdRs1, rdRs1
		d.Imm = ciImm(raw)
	case 0x3:
		rs2 := rvcReg(raw >> 2)
		isW := (raw>>12)&0x1 != 0
		switch (raw >> 5) & 0x3 {
		case 0x0:
			if isW {
				if isa.XLen != riscv.XLen64 {
					d.Op = OpIllegal
					return
				}
				d.Op = OpSUBW
			} else {
				d.Op = OpSUB
			}
		case 0x1:
			if isW {
				d.Op = OpADDW
			} else {
				d.Op = OpXOR
			}
		case 0x2:
			if isW {
				d.Op = OpIllegal
				return
			}
			d.Op = OpOR
		case 0x3:
			if isW {
				d.Op = OpIllegal
				return
			}
			d.Op = OpAND
		}
		d.Rd, d.Rs1, d.Rs2 = rdRs1, rdRs1, rs2
	}
}

func decompressQuadrant2(d *DecodedInst, raw, quadrant uint64, isa riscv.ISA) {
	rdRs1 := uint8((raw >> 7) & 0x1F)
	switch quadrant {
	case 0x0: // C.SLLI
		if rdRs1 == 0 {
			d.Op = OpIllegal
			return
		}
		d.Op = OpSLLI
		d.Rd, d.Rs1 = rdRs1, rdRs1
		d.Imm = int32(((raw >> 7) & 0x20) | ((raw >> 2) & 0x1F))
	case 0x2: // C.LWSP
		if rdRs1 == 0 {
			d.Op = OpIllegal
			return
		}
		d.Op = OpLW
		d.Rd = rdRs1
		d.Rs1 = riscv.RegSP
		d.Imm = int32(((raw >> 7) & 0x20) | ((raw >> 2) & 0x1C) | ((raw << 4) & 0xC0))
	case 0x3: // C.LDSP
		if rdRs1 == 0 || isa.XLen != riscv.XLen64 {
			d.Op = OpIllegal
			return
		}
		d.Op = OpLD
		d.Rd = rdRs1
		d.Rs1 = riscv.RegSP
		d.Imm = int32(((raw >> 7) & 0x20) | ((raw >> 2) & 0x18) | ((raw << 4) & 0x1C0))
	case 0x4:
		b12 := (raw >> 12) & 0x1
		rs2 := uint8((raw >> 2) & 0x1F)
		switch {
		case b12 == 0 && rs2 == 0: // C.JR
			if rdRs1 == 0 {
				d.Op = OpIllegal
				return
			}
			d.Op = OpJALR
			d.Rd = riscv.RegZero
			d.Rs1 = rdRs1
			d.Imm = 0
		case b12 == 0: // C.MV
			d.Op = OpADD
			d.Rd, d.Rs1, d.Rs2 = rdRs1, riscv.RegZero, rs2
		case b12 == 1 && rdRs1 == 0 && rs2 == 0: // C.EBREAK
			d.Op = OpEBREAK
		case b12 == 1 && rs2 == 0: // C.JALR
			d.Op = OpJALR
			d.Rd = riscv.RegRA
			d.Rs1 = rdRs1
			d.Imm = 0
		default: // C.ADD
			d.Op = OpADD
			d.Rd, d.Rs1, d.Rs2 = rdRs1, rdRs1, rs2
		}
	case 0x6: // C.SWSP
		d.Op = OpSW
		d.Rs1 = riscv.RegSP
		d.Rs2 = uint8((raw >> 2) & 0x1F)
		d.Imm = int32(((raw >> 7) & 0x3C) | ((raw >> 1) & 0xC0))
	case 0x7: // C.SDSP
		if isa.XLen != riscv.XLen64 {
			d.Op = OpIllegal
			return
		}
		d.Op = OpSD
		d.Rs1 = riscv.RegSP
		d.Rs2 = uint8((raw >> 2) & 0x1F)
		d.Imm = int32(((raw >> 7) & 0x38) | ((raw >> 1) & 0x1C0))
	default:
		d.Op = OpIllegal
	}
}

func ciImm(raw uint64) int32 {
	v := ((raw >> 7) & 0x20) | ((raw >> 2) & 0x1F)
	return sext(v, 5)
}

func cjImm(raw uint64) int32 {
	v := ((raw >> 1) & 0x800) | ((raw >> 7) & 0x10) | ((raw >> 1) & 0x300) |
		((raw << 2) & 0x400) | ((raw >> 1) & 0x40) | ((raw << 1) & 0x80) |
		((raw >> 2) & 0xE) | ((raw << 3) & 0x20)
	return sext(v, 11)
}

func cbImm(raw uint64) int32 {
	v := ((raw >> 4) & 0x100) | ((raw >> 7) & 0x18) | ((raw << 1) & 0xC0) |
		((raw >> 2) & 0x6) | ((raw << 3) & 0x20)
	return sext(v, 8)
}
