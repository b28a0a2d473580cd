package core

// execA implements the A extension: load-reserved/store-conditional and
// the AMO read-modify-write family, for both W (32-bit) and D (64-bit)
// widths. One reservation is tracked: SC stores and writes 0 to rd only
// when its address matches a live reservation from LR; otherwise it writes
// 1 to rd and stores nothing. Either way the SC ends the reservation.
func execA(h *Hart, d *DecodedInst) bool {
	size := 4
	isD := false
	switch d.Op {
	case OpLRD, OpSCD, OpAMOSWAPD, OpAMOADDD, OpAMOXORD, OpAMOANDD, OpAMOORD,
		OpAMOMIND, OpAMOMAXD, OpAMOMINUD, OpAMOMAXUD:
		size = 8
		isD = true
	case OpLRW, OpSCW, OpAMOSWAPW, OpAMOADDW, OpAMOXORW, OpAMOANDW, OpAMOORW,
		OpAMOMINW, OpAMOMAXW, OpAMOMINUW, OpAMOMAXUW:
	default:
		return false
	}

	addr := h.GetIreg(d.Rs1)

	switch d.Op {
	case OpLRW, OpLRD:
		v := h.Mem.Load(addr, size)
		if isD {
			h.SetIreg(d.Rd, v)
		} else {
			h.SetIreg(d.Rd, signExt32(uint32(v)))
		}
		h.reservationValid = true
		h.reservationAddr = addr
	case OpSCW, OpSCD:
		if h.reservationValid && h.reservationAddr == addr {
			h.Mem.Store(addr, size, h.GetIreg(d.Rs2))
			h.SetIreg(d.Rd, 0)
		} else {
			h.SetIreg(d.Rd, 1)
		}
		h.reservationValid = false
	default:
		old := h.Mem.Load(addr, size)
		rs2 := h.GetIreg(d.Rs2)
		result := amoCombine(d.Op, old, rs2, isD)
		h.Mem.Store(addr, size, result)
		if isD {
			h.SetIreg(d.Rd, old)
		} else {
			h.SetIreg(d.Rd, signExt32(uint32(old)))
		}
		if h.reservationValid && h.reservationAddr == addr {
			h.reservationValid = false
		}
	}

	h.PC += instLenOf(d)
	h.instret++
	return true
}

func amoCombine(op Op, old, val uint64, isD bool) uint64 {
	switch op {
	case OpAMOSWAPW, OpAMOSWAPD:
		return val
	case OpAMOADDW, OpAMOADDD:
		return old + val
	case OpAMOXORW, OpAMOXORD:
		return old ^ val
	case OpAMOANDW, OpAMOANDD:
		return old & val
	case OpAMOORW, OpAMOORD:
		return old | val
	case OpAMOMINW, OpAMOMIND:
		if signed(old, isD) < signed(val, isD) {
			return old
		}
		return val
	case OpAMOMAXW, OpAMOMAXD:
		if signed(old, isD) > signed(val, isD) {
			return old
		}
		return val
	case OpAMOMINUW, OpAMOMINUD:
		if unsigned(old, isD) < unsigned(val, isD) {
			return old
		}
		return val
	case OpAMOMAXUW, OpAMOMAXUD:
		if unsigned(old, isD) > unsigned(val, isD) {
			return old
		}
		return val
	}
	return val
}

func signed(v uint64, isD bool) int64 {
	if isD {
		return int64(v)
	}
	return int64(int32(uint32(v)))
}
func unsigned(v uint64, isD bool) uint64 {
	if isD {
		return v
	}
	return uint64(uint32(v))
}
