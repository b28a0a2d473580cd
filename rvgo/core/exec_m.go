package core

import "github.com/holiman/uint256"

// execM implements the M extension: multiply/divide, plus the RV64-only
// *W narrow variants. It returns false for any op it does not recognize so
// Execute's fallback chain can try the next extension.
func execM(h *Hart, d *DecodedInst) bool {
	switch d.Op {
	case OpMUL:
		h.SetIreg(d.Rd, signExtWord(h, h.GetIreg(d.Rs1)*h.GetIreg(d.Rs2)))
	case OpMULH:
		h.SetIreg(d.Rd, mulh(asSigned(h, h.GetIreg(d.Rs1)), asSigned(h, h.GetIreg(d.Rs2))))
	case OpMULHSU:
		h.SetIreg(d.Rd, mulhsu(asSigned(h, h.GetIreg(d.Rs1)), h.GetIreg(d.Rs2)))
	case OpMULHU:
		h.SetIreg(d.Rd, mulhu(h.GetIreg(d.Rs1), h.GetIreg(d.Rs2)))
	case OpDIV:
		a, b := asSigned(h, h.GetIreg(d.Rs1)), asSigned(h, h.GetIreg(d.Rs2))
		h.SetIreg(d.Rd, signExtWord(h, uint64(divSigned(a, b))))
	case OpDIVU:
		a, b := h.GetIreg(d.Rs1), h.GetIreg(d.Rs2)
		if b == 0 {
			h.SetIreg(d.Rd, ^uint64(0))
		} else {
			h.SetIreg(d.Rd, signExtWord(h, a/b))
		}
	case OpREM:
		a, b := asSigned(h, h.GetIreg(d.Rs1)), asSigned(h, h.GetIreg(d.Rs2))
		h.SetIreg(d.Rd, signExtWord(h, uint64(remSigned(a, b))))
	case OpREMU:
		a, b := h.GetIreg(d.Rs1), h.GetIreg(d.Rs2)
		if b == 0 {
			h.SetIreg(d.Rd, signExtWord(h, a))
		} else {
			h.SetIreg(d.Rd, signExtWord(h, a%b))
		}

	case OpMULW:
		h.SetIreg(d.Rd, signExt32(uint32(h.GetIreg(d.Rs1))*uint32(h.GetIreg(d.Rs2))))
	case OpDIVW:
		a, b := int32(uint32(h.GetIreg(d.Rs1))), int32(uint32(h.GetIreg(d.Rs2)))
		h.SetIreg(d.Rd, signExt32(uint32(divSigned32(a, b))))
	case OpDIVUW:
		a, b := uint32(h.GetIreg(d.Rs1)), uint32(h.GetIreg(d.Rs2))
		if b == 0 {
			h.SetIreg(d.Rd, signExt32(^uint32(0)))
		} else {
			h.SetIreg(d.Rd, signExt32(a/b))
		}
	case OpREMW:
		a, b := int32(uint32(h.GetIreg(d.Rs1))), int32(uint32(h.GetIreg(d.Rs2)))
		h.SetIreg(d.Rd, signExt32(uint32(remSigned32(a, b))))
	case OpREMUW:
		a, b := uint32(h.GetIreg(d.Rs1)), uint32(h.GetIreg(d.Rs2))
		if b == 0 {
			h.SetIreg(d.Rd, signExt32(a))
		} else {
			h.SetIreg(d.Rd, signExt32(a%b))
		}
	default:
		return false
	}
	h.PC += instLenOf(d)
	h.instret++
	return true
}

// mulhu computes the high 64 bits of an unsigned 64x64 multiply via a real
// 256-bit intermediate, rather than the usual four-partial-products trick.
func mulhu(a, b uint64) uint64 {
	x := new(uint256.Int).SetUint64(a)
	y := new(uint256.Int).SetUint64(b)
	x.Mul(x, y)
	x.Rsh(x, 64)
	return x.Uint64()
}

// mulh/mulhsu adjust the unsigned high-word result for operand sign, the
// standard software-multiply correction (subtract the other operand once
// per negative input).
func mulh(a, b int64) uint64 {
	hi := mulhu(uint64(a), uint64(b))
	if a < 0 {
		hi -= uint64(b)
	}
	if b < 0 {
		hi -= uint64(a)
	}
	return hi
}
func mulhsu(a int64, b uint64) uint64 {
	hi := mulhu(uint64(a), b)
	if a < 0 {
		hi -= b
	}
	return hi
}

func divSigned(a, b int64) int64 {
	if b == 0 {
		return -1
	}
	if a == -1<<63 && b == -1 {
		return a
	}
	return a / b
}
func remSigned(a, b int64) int64 {
	if b == 0 {
		return a
	}
	if a == -1<<63 && b == -1 {
		return 0
	}
	return a % b
}
func divSigned32(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	if a == -1<<31 && b == -1 {
		return a
	}
	return a / b
}
func remSigned32(a, b int32) int32 {
	if b == 0 {
		return a
	}
	if a == -1<<31 && b == -1 {
		return 0
	}
	return a % b
}

// instLenOf recovers the instruction's byte length from its raw word so the
// M/A/F fallback arms (which Execute dispatches to without the length
// parameter already in scope) can still advance PC correctly.
func instLenOf(d *DecodedInst) uint64 {
	return uint64(InstLength(d.Inst))
}
