package core

import "github.com/rvuser/rvemu/rvgo/riscv"

// Execute implements C6: dispatch on d.Op against h, mutating registers, PC
// and memory. It returns true when it handled the op (including traps it
// simulates internally, like CSR access), false on fallthrough — the
// stepper must then inspect d.Op itself: ecall routes to the syscall
// bridge (C7), anything else is an illegal-instruction event (spec.md
// §4.6).
//
// length is the instruction's byte length, used for the default
// not-a-control-transfer PC advance.
func Execute(h *Hart, d *DecodedInst, length int) bool {
	nextPC := h.PC + uint64(length)

	switch d.Op {
	case OpIllegal:
		return false

	case OpLUI:
		h.SetIreg(d.Rd, signExtWord(h, uint64(d.Imm)))
	case OpAUIPC:
		h.SetIreg(d.Rd, signExtWord(h, h.PC+uint64(int64(d.Imm))))

	case OpJAL:
		h.SetIreg(d.Rd, nextPC)
		nextPC = h.PC + uint64(int64(d.Imm))
	case OpJALR:
		target := (h.GetIreg(d.Rs1) + uint64(int64(d.Imm))) &^ 1
		h.SetIreg(d.Rd, nextPC)
		nextPC = target

	case OpBEQ:
		if h.GetIreg(d.Rs1) == h.GetIreg(d.Rs2) {
			nextPC = h.PC + uint64(int64(d.Imm))
		}
	case OpBNE:
		if h.GetIreg(d.Rs1) != h.GetIreg(d.Rs2) {
			nextPC = h.PC + uint64(int64(d.Imm))
		}
	case OpBLT:
		if asSigned(h, h.GetIreg(d.Rs1)) < asSigned(h, h.GetIreg(d.Rs2)) {
			nextPC = h.PC + uint64(int64(d.Imm))
		}
	case OpBGE:
		if asSigned(h, h.GetIreg(d.Rs1)) >= asSigned(h, h.GetIreg(d.Rs2)) {
			nextPC = h.PC + uint64(int64(d.Imm))
		}
	case OpBLTU:
		if h.GetIreg(d.Rs1) < h.GetIreg(d.Rs2) {
			nextPC = h.PC + uint64(int64(d.Imm))
		}
	case OpBGEU:
		if h.GetIreg(d.Rs1) >= h.GetIreg(d.Rs2) {
			nextPC = h.PC + uint64(int64(d.Imm))
		}

	case OpLB:
		h.SetIreg(d.Rd, signExtWord(h, uint64(int64(int8(loadAt(h, d))))))
	case OpLH:
		h.SetIreg(d.Rd, signExtWord(h, uint64(int64(int16(loadAt(h, d))))))
	case OpLW:
		h.SetIreg(d.Rd, signExtWord(h, uint64(int64(int32(loadAt(h, d))))))
	case OpLBU:
		h.SetIreg(d.Rd, loadAt(h, d)&0xFF)
	case OpLHU:
		h.SetIreg(d.Rd, loadAt(h, d)&0xFFFF)
	case OpLWU:
		h.SetIreg(d.Rd, loadAt(h, d)&0xFFFFFFFF)
	case OpLD:
		h.SetIreg(d.Rd, loadAt(h, d))

	case OpSB:
		addr := storeAddr(h, d)
		h.Mem.Store(addr, 1, h.GetIreg(d.Rs2))
		breakReservation(h, addr)
	case OpSH:
		addr := storeAddr(h, d)
		h.Mem.Store(addr, 2, h.GetIreg(d.Rs2))
		breakReservation(h, addr)
	case OpSW:
		addr := storeAddr(h, d)
		h.Mem.Store(addr, 4, h.GetIreg(d.Rs2))
		breakReservation(h, addr)
	case OpSD:
		addr := storeAddr(h, d)
		h.Mem.Store(addr, 8, h.GetIreg(d.Rs2))
		breakReservation(h, addr)

	case OpADDI:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)+uint64(int64(d.Imm))))
	case OpSLTI:
		h.SetIreg(d.Rd, boolU64(asSigned(h, h.GetIreg(d.Rs1)) < int64(d.Imm)))
	case OpSLTIU:
		h.SetIreg(d.Rd, boolU64(h.GetIreg(d.Rs1) < uint64(int64(d.Imm))))
	case OpXORI:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)^uint64(int64(d.Imm))))
	case OpORI:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)|uint64(int64(d.Imm))))
	case OpANDI:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)&uint64(int64(d.Imm))))
	case OpSLLI:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)<<shamt(h, d)))
	case OpSRLI:
		h.SetIreg(d.Rd, signExtWord(h, maskXLen(h, h.GetIreg(d.Rs1))>>shamt(h, d)))
	case OpSRAI:
		h.SetIreg(d.Rd, signExtWord(h, uint64(asSigned(h, h.GetIreg(d.Rs1))>>shamt(h, d))))

	case OpADD:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)+h.GetIreg(d.Rs2)))
	case OpSUB:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)-h.GetIreg(d.Rs2)))
	case OpSLL:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)<<(h.GetIreg(d.Rs2)&shiftMask(h))))
	case OpSLT:
		h.SetIreg(d.Rd, boolU64(asSigned(h, h.GetIreg(d.Rs1)) < asSigned(h, h.GetIreg(d.Rs2))))
	case OpSLTU:
		h.SetIreg(d.Rd, boolU64(h.GetIreg(d.Rs1) < h.GetIreg(d.Rs2)))
	case OpXOR:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)^h.GetIreg(d.Rs2)))
	case OpSRL:
		h.SetIreg(d.Rd, signExtWord(h, maskXLen(h, h.GetIreg(d.Rs1))>>(h.GetIreg(d.Rs2)&shiftMask(h))))
	case OpSRA:
		h.SetIreg(d.Rd, signExtWord(h, uint64(asSigned(h, h.GetIreg(d.Rs1))>>(h.GetIreg(d.Rs2)&shiftMask(h)))))
	case OpOR:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)|h.GetIreg(d.Rs2)))
	case OpAND:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)&h.GetIreg(d.Rs2)))

	case OpADDIW:
		h.SetIreg(d.Rd, signExt32(uint32(h.GetIreg(d.Rs1))+uint32(d.Imm)))
	case OpSLLIW:
		h.SetIreg(d.Rd, signExt32(uint32(h.GetIreg(d.Rs1))<<uint32(d.Imm&0x1F)))
	case OpSRLIW:
		h.SetIreg(d.Rd, signExt32(uint32(h.GetIreg(d.Rs1))>>uint32(d.Imm&0x1F)))
	case OpSRAIW:
		h.SetIreg(d.Rd, signExt32(uint32(int32(uint32(h.GetIreg(d.Rs1)))>>uint32(d.Imm&0x1F))))
	case OpADDW:
		h.SetIreg(d.Rd, signExt32(uint32(h.GetIreg(d.Rs1))+uint32(h.GetIreg(d.Rs2))))
	case OpSUBW:
		h.SetIreg(d.Rd, signExt32(uint32(h.GetIreg(d.Rs1))-uint32(h.GetIreg(d.Rs2))))
	case OpSLLW:
		h.SetIreg(d.Rd, signExt32(uint32(h.GetIreg(d.Rs1))<<(uint32(h.GetIreg(d.Rs2))&0x1F)))
	case OpSRLW:
		h.SetIreg(d.Rd, signExt32(uint32(h.GetIreg(d.Rs1))>>(uint32(h.GetIreg(d.Rs2))&0x1F)))
	case OpSRAW:
		h.SetIreg(d.Rd, signExt32(uint32(int32(uint32(h.GetIreg(d.Rs1)))>>(uint32(h.GetIreg(d.Rs2))&0x1F))))

	case OpFENCE, OpFENCEI:
		// no-op: single-hart, single-thread, no cache to invalidate.

	case OpEBREAK:
		return false // treated as a terminal signal by the stepper, same path as illegal

	case OpCSRRW, OpCSRRS, OpCSRRC, OpCSRRWI, OpCSRRSI, OpCSRRCI:
		execCSR(h, d)

	case OpECALL:
		return false // routed to the syscall bridge by the stepper

	default:
		if execM(h, d) {
			return true
		}
		if execA(h, d) {
			return true
		}
		if execF(h, d) {
			return true
		}
		return false
	}

	h.PC = nextPC
	h.instret++
	return true
}

func execCSR(h *Hart, d *DecodedInst) {
	addr := uint32(d.Imm)
	old := h.ReadCSR(addr)
	var val uint64
	switch d.Op {
	case OpCSRRW:
		val = h.GetIreg(d.Rs1)
	case OpCSRRS:
		val = old | h.GetIreg(d.Rs1)
	case OpCSRRC:
		val = old &^ h.GetIreg(d.Rs1)
	case OpCSRRWI:
		val = uint64(d.Rs1)
	case OpCSRRSI:
		val = old | uint64(d.Rs1)
	case OpCSRRCI:
		val = old &^ uint64(d.Rs1)
	}
	if d.Op != OpCSRRWI || d.Rd != 0 {
		h.SetIreg(d.Rd, old)
	}
	writes := d.Op == OpCSRRW || d.Op == OpCSRRWI ||
		(d.Rs1 != 0 && (d.Op == OpCSRRS || d.Op == OpCSRRC)) ||
		d.Op == OpCSRRSI || d.Op == OpCSRRCI
	if writes {
		h.WriteCSR(addr, val)
	}
}

func loadAt(h *Hart, d *DecodedInst) uint64 {
	addr := h.GetIreg(d.Rs1) + uint64(int64(d.Imm))
	var size int
	switch d.Op {
	case OpLB, OpLBU:
		size = 1
	case OpLH, OpLHU:
		size = 2
	case OpLW, OpLWU:
		size = 4
	case OpLD:
		size = 8
	}
	breakReservation(h, addr)
	return h.Mem.Load(addr, size)
}

func storeAddr(h *Hart, d *DecodedInst) uint64 {
	return h.GetIreg(d.Rs1) + uint64(int64(d.Imm))
}

// breakReservation invalidates an outstanding LR reservation hit by a plain
// integer load or store, matching the AMO/SC handling in exec_a.go: any of
// these to the reserved address breaks the reservation. The F/D loads and
// stores in exec_f.go do not call it.
func breakReservation(h *Hart, addr uint64) {
	if h.reservationValid && h.reservationAddr == addr {
		h.reservationValid = false
	}
}

func signExtWord(h *Hart, v uint64) uint64 {
	if h.ISA.XLen == riscv.XLen32 {
		return uint64(uint32(v))
	}
	return v
}
func signExt32(v uint32) uint64 { return uint64(int64(int32(v))) }

func maskXLen(h *Hart, v uint64) uint64 {
	if h.ISA.XLen == riscv.XLen32 {
		return v & 0xFFFFFFFF
	}
	return v
}
func asSigned(h *Hart, v uint64) int64 {
	if h.ISA.XLen == riscv.XLen32 {
		return int64(int32(uint32(v)))
	}
	return int64(v)
}
func shiftMask(h *Hart) uint64 {
	if h.ISA.XLen == riscv.XLen32 {
		return 0x1F
	}
	return 0x3F
}
func shamt(h *Hart, d *DecodedInst) uint64 {
	return uint64(d.Imm) & shiftMask(h)
}
func boolU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
