// Package disasm is the logging-only instruction formatter spec.md §1 calls
// out as a non-goal beyond its interface: it turns a DecodedInst into the
// mnemonic text the -l/--log-instructions flag prints, and nothing else
// reads or depends on its output.
package disasm

import (
	"fmt"
	"strings"

	"github.com/rvuser/rvemu/rvgo/core"
)

var mnemonics = map[core.Op]string{
	core.OpLB: "lb", core.OpLH: "lh", core.OpLW: "lw", core.OpLBU: "lbu", core.OpLHU: "lhu",
	core.OpLWU: "lwu", core.OpLD: "ld",
	core.OpSB: "sb", core.OpSH: "sh", core.OpSW: "sw", core.OpSD: "sd",
	core.OpADDI: "addi", core.OpSLTI: "slti", core.OpSLTIU: "sltiu", core.OpXORI: "xori",
	core.OpORI: "ori", core.OpANDI: "andi", core.OpSLLI: "slli", core.OpSRLI: "srli", core.OpSRAI: "srai",
	core.OpADD: "add", core.OpSUB: "sub", core.OpSLL: "sll", core.OpSLT: "slt", core.OpSLTU: "sltu",
	core.OpXOR: "xor", core.OpSRL: "srl", core.OpSRA: "sra", core.OpOR: "or", core.OpAND: "and",
	core.OpADDIW: "addiw", core.OpSLLIW: "slliw", core.OpSRLIW: "srliw", core.OpSRAIW: "sraiw",
	core.OpADDW: "addw", core.OpSUBW: "subw", core.OpSLLW: "sllw", core.OpSRLW: "srlw", core.OpSRAW: "sraw",
	core.OpLUI: "lui", core.OpAUIPC: "auipc", core.OpJAL: "jal", core.OpJALR: "jalr",
	core.OpBEQ: "beq", core.OpBNE: "bne", core.OpBLT: "blt", core.OpBGE: "bge",
	core.OpBLTU: "bltu", core.OpBGEU: "bgeu",
	core.OpFENCE: "fence", core.OpFENCEI: "fence.i",
	core.OpECALL: "ecall", core.OpEBREAK: "ebreak",
	core.OpCSRRW: "csrrw", core.OpCSRRS: "csrrs", core.OpCSRRC: "csrrc",
	core.OpCSRRWI: "csrrwi", core.OpCSRRSI: "csrrsi", core.OpCSRRCI: "csrrci",
	core.OpMUL: "mul", core.OpMULH: "mulh", core.OpMULHSU: "mulhsu", core.OpMULHU: "mulhu",
	core.OpDIV: "div", core.OpDIVU: "divu", core.OpREM: "rem", core.OpREMU: "remu",
	core.OpMULW: "mulw", core.OpDIVW: "divw", core.OpDIVUW: "divuw", core.OpREMW: "remw", core.OpREMUW: "remuw",
	core.OpLRW: "lr.w", core.OpSCW: "sc.w", core.OpLRD: "lr.d", core.OpSCD: "sc.d",
	core.OpAMOSWAPW: "amoswap.w", core.OpAMOADDW: "amoadd.w", core.OpAMOXORW: "amoxor.w",
	core.OpAMOANDW: "amoand.w", core.OpAMOORW: "amoor.w", core.OpAMOMINW: "amomin.w",
	core.OpAMOMAXW: "amomax.w", core.OpAMOMINUW: "amominu.w", core.OpAMOMAXUW: "amomaxu.w",
	core.OpAMOSWAPD: "amoswap.d", core.OpAMOADDD: "amoadd.d", core.OpAMOXORD: "amoxor.d",
	core.OpAMOANDD: "amoand.d", core.OpAMOORD: "amoor.d", core.OpAMOMIND: "amomin.d",
	core.OpAMOMAXD: "amomax.d", core.OpAMOMINUD: "amominu.d", core.OpAMOMAXUD: "amomaxu.d",
	core.OpFLW: "flw", core.OpFSW: "fsw", core.OpFLD: "fld", core.OpFSD: "fsd",
	core.OpFADD_S: "fadd.s", core.OpFSUB_S: "fsub.s", core.OpFMUL_S: "fmul.s", core.OpFDIV_S: "fdiv.s",
	core.OpFSQRT_S: "fsqrt.s", core.OpFMIN_S: "fmin.s", core.OpFMAX_S: "fmax.s",
	core.OpFSGNJ_S: "fsgnj.s", core.OpFSGNJN_S: "fsgnjn.s", core.OpFSGNJX_S: "fsgnjx.s",
	core.OpFEQ_S: "feq.s", core.OpFLT_S: "flt.s", core.OpFLE_S: "fle.s", core.OpFCLASS_S: "fclass.s",
	core.OpFMV_X_W: "fmv.x.w", core.OpFMV_W_X: "fmv.w.x",
	core.OpFCVT_W_S: "fcvt.w.s", core.OpFCVT_WU_S: "fcvt.wu.s", core.OpFCVT_S_W: "fcvt.s.w", core.OpFCVT_S_WU: "fcvt.s.wu",
	core.OpFCVT_L_S: "fcvt.l.s", core.OpFCVT_LU_S: "fcvt.lu.s", core.OpFCVT_S_L: "fcvt.s.l", core.OpFCVT_S_LU: "fcvt.s.lu",
	core.OpFMADD_S: "fmadd.s", core.OpFMSUB_S: "fmsub.s", core.OpFNMSUB_S: "fnmsub.s", core.OpFNMADD_S: "fnmadd.s",
	core.OpFADD_D: "fadd.d", core.OpFSUB_D: "fsub.d", core.OpFMUL_D: "fmul.d", core.OpFDIV_D: "fdiv.d",
	core.OpFSQRT_D: "fsqrt.d", core.OpFMIN_D: "fmin.d", core.OpFMAX_D: "fmax.d",
	core.OpFSGNJ_D: "fsgnj.d", core.OpFSGNJN_D: "fsgnjn.d", core.OpFSGNJX_D: "fsgnjx.d",
	core.OpFEQ_D: "feq.d", core.OpFLT_D: "flt.d", core.OpFLE_D: "fle.d", core.OpFCLASS_D: "fclass.d",
	core.OpFMV_X_D: "fmv.x.d", core.OpFMV_D_X: "fmv.d.x",
	core.OpFCVT_W_D: "fcvt.w.d", core.OpFCVT_WU_D: "fcvt.wu.d", core.OpFCVT_D_W: "fcvt.d.w", core.OpFCVT_D_WU: "fcvt.d.wu",
	core.OpFCVT_L_D: "fcvt.l.d", core.OpFCVT_LU_D: "fcvt.lu.d", core.OpFCVT_D_L: "fcvt.d.l", core.OpFCVT_D_LU: "fcvt.d.lu",
	core.OpFCVT_S_D: "fcvt.s.d", core.OpFCVT_D_S: "fcvt.d.s",
	core.OpFMADD_D: "fmadd.d", core.OpFMSUB_D: "fmsub.d", core.OpFNMSUB_D: "fnmsub.d", core.OpFNMADD_D: "fnmadd.d",
}

var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func reg(r uint8) string { return regNames[r&0x1F] }

// Format renders a decoded instruction's mnemonic form, preferring its
// recognized pseudo form unless disabled, matching the "<mnemonic> <args>"
// half of the logging line spec.md §6 specifies. Illegal instructions
// render as "<illegal>" — the disassembler never panics on a bad op.
func Format(d *core.DecodedInst, noPseudo bool) string {
	if d.Op == core.OpIllegal {
		return "<illegal>"
	}
	if !noPseudo {
		if p, ok := core.RecognizePseudo(d); ok {
			return formatPseudo(p)
		}
	}
	name, ok := mnemonics[d.Op]
	if !ok {
		return "<illegal>"
	}
	return name + " " + formatOperands(d)
}

func formatPseudo(p core.Pseudo) string {
	var parts []string
	if p.HasRd {
		parts = append(parts, reg(p.Rd))
	}
	if p.HasRs1 {
		parts = append(parts, reg(p.Rs1))
	}
	if p.HasRs2 {
		parts = append(parts, reg(p.Rs2))
	}
	if p.HasImm {
		parts = append(parts, fmt.Sprintf("%d", p.Imm))
	}
	if len(parts) == 0 {
		return p.Name
	}
	return p.Name + " " + strings.Join(parts, ", ")
}

func formatOperands(d *core.DecodedInst) string {
	switch d.Codec {
	case core.CodecR, core.CodecAtomic:
		return fmt.Sprintf("%s, %s, %s", reg(d.Rd), reg(d.Rs1), reg(d.Rs2))
	case core.CodecR4:
		return fmt.Sprintf("%s, %s, %s, %s", reg(d.Rd), reg(d.Rs1), reg(d.Rs2), reg(d.Rs3))
	case core.CodecI, core.CodecIShift:
		switch d.Op {
		case core.OpLB, core.OpLH, core.OpLW, core.OpLBU, core.OpLHU, core.OpLWU, core.OpLD:
			return fmt.Sprintf("%s, %d(%s)", reg(d.Rd), d.Imm, reg(d.Rs1))
		}
		return fmt.Sprintf("%s, %s, %d", reg(d.Rd), reg(d.Rs1), d.Imm)
	case core.CodecFI:
		return fmt.Sprintf("%s, %d(%s)", reg(d.Rd), d.Imm, reg(d.Rs1))
	case core.CodecS, core.CodecFS:
		return fmt.Sprintf("%s, %d(%s)", reg(d.Rs2), d.Imm, reg(d.Rs1))
	case core.CodecB:
		return fmt.Sprintf("%s, %s, %d", reg(d.Rs1), reg(d.Rs2), d.Imm)
	case core.CodecU, core.CodecJ:
		return fmt.Sprintf("%s, %d", reg(d.Rd), d.Imm)
	case core.CodecFence:
		return fmt.Sprintf("%d, %d", d.Pred, d.Succ)
	case core.CodecCSR:
		return fmt.Sprintf("%s, 0x%x, %s", reg(d.Rd), uint32(d.Imm), reg(d.Rs1))
	case core.CodecCSRImm:
		return fmt.Sprintf("%s, 0x%x, %d", reg(d.Rd), uint32(d.Imm), d.Rs1)
	case core.CodecFR:
		return fmt.Sprintf("%s, %s", reg(d.Rd), reg(d.Rs1))
	case core.CodecFR2:
		return fmt.Sprintf("%s, %s, %s", reg(d.Rd), reg(d.Rs1), reg(d.Rs2))
	default:
		return ""
	}
}
