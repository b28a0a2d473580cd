package core

import "github.com/rvuser/rvemu/rvgo/riscv"

// Pseudo names a recognized pseudoinstruction. Recognition never changes
// execution: the DecodedInst produced by Decode/Decompress already carries
// the real Op (e.g. OpADDI) that the executor runs. C4 only attaches a
// friendlier name for logging and disassembly (spec.md §4.4), so disabling
// it with the "no-pseudo" flag changes what gets printed, never what runs.
type Pseudo struct {
	Name string
	// Rd/Rs1/Rs2/Imm hold the operands that matter for the pseudo form;
	// each counts only when its Has* flag is set (e.g. MV sets rd, rs1 but
	// not the omitted zero operand).
	Rd, Rs1, Rs2 uint8
	HasRd        bool
	HasRs1       bool
	HasRs2       bool
	Imm          int32
	HasImm       bool
}

// pseudoRule is one entry of the ordered constraint list: Match reports
// whether d is an instance of this pseudo form, Build assembles its display
// form. Rules are tried in order and the first match wins, mirroring how a
// human reads "is this a special case of ADDI" top to bottom.
type pseudoRule struct {
	op    Op
	match func(d *DecodedInst) bool
	build func(d *DecodedInst) Pseudo
}

var pseudoRules = []pseudoRule{
	{OpADDI, func(d *DecodedInst) bool { return d.Rd == 0 && d.Rs1 == 0 && d.Imm == 0 },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "nop"} }},
	{OpJALR, func(d *DecodedInst) bool { return d.Rd == riscv.RegZero && d.Rs1 == riscv.RegRA && d.Imm == 0 },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "ret"} }},
	{OpJALR, func(d *DecodedInst) bool { return d.Rd == riscv.RegZero && d.Imm == 0 },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "jr", Rs1: d.Rs1, HasRs1: true} }},
	{OpJALR, func(d *DecodedInst) bool { return d.Rd == riscv.RegRA && d.Imm == 0 },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "jalr", Rs1: d.Rs1, HasRs1: true} }},
	{OpJAL, func(d *DecodedInst) bool { return d.Rd == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "j", Imm: d.Imm, HasImm: true} }},
	{OpJAL, func(d *DecodedInst) bool { return d.Rd == riscv.RegRA },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "call", Imm: d.Imm, HasImm: true} }},
	{OpADDI, func(d *DecodedInst) bool { return d.Rs1 == riscv.RegZero && d.Rd != riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "li", Rd: d.Rd, HasRd: true, Imm: d.Imm, HasImm: true} }},
	{OpADDI, func(d *DecodedInst) bool { return d.Imm == 0 && d.Rd != riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "mv", Rd: d.Rd, HasRd: true, Rs1: d.Rs1, HasRs1: true} }},
	{OpXORI, func(d *DecodedInst) bool { return d.Imm == -1 },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "not", Rd: d.Rd, HasRd: true, Rs1: d.Rs1, HasRs1: true} }},
	{OpSUB, func(d *DecodedInst) bool { return d.Rs1 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "neg", Rd: d.Rd, HasRd: true, Rs2: d.Rs2, HasRs2: true} }},
	{OpSLTIU, func(d *DecodedInst) bool { return d.Imm == 1 },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "seqz", Rd: d.Rd, HasRd: true, Rs1: d.Rs1, HasRs1: true} }},
	{OpSLTU, func(d *DecodedInst) bool { return d.Rs1 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "snez", Rd: d.Rd, HasRd: true, Rs2: d.Rs2, HasRs2: true} }},
	{OpSLT, func(d *DecodedInst) bool { return d.Rs2 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "sltz", Rd: d.Rd, HasRd: true, Rs1: d.Rs1, HasRs1: true} }},
	{OpSLT, func(d *DecodedInst) bool { return d.Rs1 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "sgtz", Rd: d.Rd, HasRd: true, Rs2: d.Rs2, HasRs2: true} }},
	{OpBEQ, func(d *DecodedInst) bool { return d.Rs2 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "beqz", Rs1: d.Rs1, HasRs1: true, Imm: d.Imm, HasImm: true} }},
	{OpBNE, func(d *DecodedInst) bool { return d.Rs2 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "bnez", Rs1: d.Rs1, HasRs1: true, Imm: d.Imm, HasImm: true} }},
	{OpBGE, func(d *DecodedInst) bool { return d.Rs2 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "bgez", Rs1: d.Rs1, HasRs1: true, Imm: d.Imm, HasImm: true} }},
	{OpBGE, func(d *DecodedInst) bool { return d.Rs1 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "blez", Rs1: d.Rs2, HasRs1: true, Imm: d.Imm, HasImm: true} }},
	{OpBLT, func(d *DecodedInst) bool { return d.Rs2 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "bltz", Rs1: d.Rs1, HasRs1: true, Imm: d.Imm, HasImm: true} }},
	{OpBLT, func(d *DecodedInst) bool { return d.Rs1 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "bgtz", Rs1: d.Rs2, HasRs1: true, Imm: d.Imm, HasImm: true} }},
	{OpCSRRS, func(d *DecodedInst) bool { return d.Imm == int32(riscv.CsrCycle) && d.Rs1 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "rdcycle", Rd: d.Rd, HasRd: true} }},
	{OpCSRRS, func(d *DecodedInst) bool { return d.Imm == int32(riscv.CsrTime) && d.Rs1 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "rdtime", Rd: d.Rd, HasRd: true} }},
	{OpCSRRS, func(d *DecodedInst) bool { return d.Imm == int32(riscv.CsrInstret) && d.Rs1 == riscv.RegZero },
		func(d *DecodedInst) Pseudo { return Pseudo{Name: "rdinstret", Rd: d.Rd, HasRd: true} }},
}

// RecognizePseudo walks the ordered constraint list and returns the first
// matching pseudo form, or ok=false when d is an instance of no recognized
// pseudoinstruction (the common case — most decoded instructions display
// under their own mnemonic).
func RecognizePseudo(d *DecodedInst) (p Pseudo, ok bool) {
	for _, rule := range pseudoRules {
		if rule.op != d.Op {
			continue
		}
		if rule.match(d) {
			return rule.build(d), true
		}
	}
	return Pseudo{}, false
}
