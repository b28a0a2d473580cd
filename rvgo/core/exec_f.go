package core

import (
	"math"

	"github.com/rvuser/rvemu/rvgo/fpu"
	"github.com/rvuser/rvemu/rvgo/riscv"
)

// execF implements the F and D extensions by dispatching into the fpu
// package (spec.md §4.6: "dispatch to a floating unit..."). Every freg
// slot is stored as float64; a single-precision value simply lives in the
// low 32 bits' worth of precision, converted on the way in and out — this
// core does not NaN-box, since nothing outside the executor ever observes
// the raw bit pattern of an idle freg.
func execF(h *Hart, d *DecodedInst) bool {
	if !execFDispatch(h, d) {
		return false
	}
	h.PC += instLenOf(d)
	h.instret++
	return true
}

func (h *Hart) rm(field uint8) fpu.RoundingMode {
	if fpu.RoundingMode(field) == fpu.Dynamic {
		return fpu.RoundingMode(h.ReadCSR(riscv.CsrFRM))
	}
	return fpu.RoundingMode(field)
}

func (h *Hart) raiseFPFlags(f fpu.Flags) {
	if f != 0 {
		h.WriteCSR(riscv.CsrFFlags, h.ReadCSR(riscv.CsrFFlags)|uint64(f))
	}
}

func execFDispatch(h *Hart, d *DecodedInst) bool {
	switch d.Op {
	case OpFLW:
		bits := uint32(h.Mem.Load(h.GetIreg(d.Rs1)+uint64(int64(d.Imm)), 4))
		h.Freg[d.Rd] = float64(math.Float32frombits(bits))
		return true
	case OpFLD:
		bits := h.Mem.Load(h.GetIreg(d.Rs1)+uint64(int64(d.Imm)), 8)
		h.Freg[d.Rd] = math.Float64frombits(bits)
		return true
	case OpFSW:
		bits := math.Float32bits(float32(h.Freg[d.Rs2]))
		h.Mem.Store(h.GetIreg(d.Rs1)+uint64(int64(d.Imm)), 4, uint64(bits))
		return true
	case OpFSD:
		bits := math.Float64bits(h.Freg[d.Rs2])
		h.Mem.Store(h.GetIreg(d.Rs1)+uint64(int64(d.Imm)), 8, bits)
		return true

	case OpFADD_S:
		r, f := fpu.AddS(f32(h, d.Rs1), f32(h, d.Rs2), h.rm(d.RM))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)
	case OpFSUB_S:
		r, f := fpu.SubS(f32(h, d.Rs1), f32(h, d.Rs2), h.rm(d.RM))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)
	case OpFMUL_S:
		r, f := fpu.MulS(f32(h, d.Rs1), f32(h, d.Rs2), h.rm(d.RM))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)
	case OpFDIV_S:
		r, f := fpu.DivS(f32(h, d.Rs1), f32(h, d.Rs2), h.rm(d.RM))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)
	case OpFSQRT_S:
		r, f := fpu.SqrtS(f32(h, d.Rs1), h.rm(d.RM))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)
	case OpFMIN_S:
		r, f := fpu.MinS(f32(h, d.Rs1), f32(h, d.Rs2))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)
	case OpFMAX_S:
		r, f := fpu.MaxS(f32(h, d.Rs1), f32(h, d.Rs2))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)
	case OpFSGNJ_S:
		h.Freg[d.Rd] = float64(fpu.SgnjS(f32(h, d.Rs1), f32(h, d.Rs2), false, false))
	case OpFSGNJN_S:
		h.Freg[d.Rd] = float64(fpu.SgnjS(f32(h, d.Rs1), f32(h, d.Rs2), true, false))
	case OpFSGNJX_S:
		h.Freg[d.Rd] = float64(fpu.SgnjS(f32(h, d.Rs1), f32(h, d.Rs2), false, true))
	case OpFEQ_S:
		r, f := fpu.EqS(f32(h, d.Rs1), f32(h, d.Rs2))
		h.SetIreg(d.Rd, boolU64(r))
		h.raiseFPFlags(f)
	case OpFLT_S:
		r, f := fpu.LtS(f32(h, d.Rs1), f32(h, d.Rs2))
		h.SetIreg(d.Rd, boolU64(r))
		h.raiseFPFlags(f)
	case OpFLE_S:
		r, f := fpu.LeS(f32(h, d.Rs1), f32(h, d.Rs2))
		h.SetIreg(d.Rd, boolU64(r))
		h.raiseFPFlags(f)
	case OpFCLASS_S:
		h.SetIreg(d.Rd, fpu.ClassifyS(f32(h, d.Rs1)))
	case OpFMV_X_W:
		h.SetIreg(d.Rd, signExt32(math.Float32bits(f32(h, d.Rs1))))
	case OpFMV_W_X:
		h.Freg[d.Rd] = float64(math.Float32frombits(uint32(h.GetIreg(d.Rs1))))
	case OpFCVT_W_S:
		r, f := fpu.CvtFToS32(f32(h, d.Rs1), h.rm(d.RM))
		h.SetIreg(d.Rd, signExt32(uint32(r)))
		h.raiseFPFlags(f)
	case OpFCVT_WU_S:
		r, f := fpu.CvtFToU32(f32(h, d.Rs1), h.rm(d.RM))
		h.SetIreg(d.Rd, signExt32(r))
		h.raiseFPFlags(f)
	case OpFCVT_L_S:
		r, f := fpu.CvtFToS64(float64(f32(h, d.Rs1)), h.rm(d.RM))
		h.SetIreg(d.Rd, uint64(r))
		h.raiseFPFlags(f)
	case OpFCVT_LU_S:
		r, f := fpu.CvtFToU64(float64(f32(h, d.Rs1)), h.rm(d.RM))
		h.SetIreg(d.Rd, r)
		h.raiseFPFlags(f)
	case OpFCVT_S_W:
		h.Freg[d.Rd] = float64(fpu.CvtS32ToF(int32(h.GetIreg(d.Rs1))))
	case OpFCVT_S_WU:
		h.Freg[d.Rd] = float64(fpu.CvtU32ToF(uint32(h.GetIreg(d.Rs1))))
	case OpFCVT_S_L:
		h.Freg[d.Rd] = float64(fpu.CvtS64ToF(int64(h.GetIreg(d.Rs1))))
	case OpFCVT_S_LU:
		h.Freg[d.Rd] = float64(fpu.CvtU64ToF(h.GetIreg(d.Rs1)))

	case OpFMADD_S:
		r, f := fpu.MulAddS(f32(h, d.Rs1), f32(h, d.Rs2), f32(h, d.Rs3), h.rm(d.RM))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)
	case OpFMSUB_S:
		r, f := fpu.MulAddS(f32(h, d.Rs1), f32(h, d.Rs2), -f32(h, d.Rs3), h.rm(d.RM))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)
	case OpFNMSUB_S:
		r, f := fpu.MulAddS(-f32(h, d.Rs1), f32(h, d.Rs2), f32(h, d.Rs3), h.rm(d.RM))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)
	case OpFNMADD_S:
		r, f := fpu.MulAddS(-f32(h, d.Rs1), f32(h, d.Rs2), -f32(h, d.Rs3), h.rm(d.RM))
		h.Freg[d.Rd] = float64(r)
		h.raiseFPFlags(f)

	case OpFADD_D:
		r, f := fpu.AddD(h.Freg[d.Rs1], h.Freg[d.Rs2], h.rm(d.RM))
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)
	case OpFSUB_D:
		r, f := fpu.SubD(h.Freg[d.Rs1], h.Freg[d.Rs2], h.rm(d.RM))
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)
	case OpFMUL_D:
		r, f := fpu.MulD(h.Freg[d.Rs1], h.Freg[d.Rs2], h.rm(d.RM))
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)
	case OpFDIV_D:
		r, f := fpu.DivD(h.Freg[d.Rs1], h.Freg[d.Rs2], h.rm(d.RM))
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)
	case OpFSQRT_D:
		r, f := fpu.SqrtD(h.Freg[d.Rs1], h.rm(d.RM))
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)
	case OpFMIN_D:
		r, f := fpu.MinD(h.Freg[d.Rs1], h.Freg[d.Rs2])
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)
	case OpFMAX_D:
		r, f := fpu.MaxD(h.Freg[d.Rs1], h.Freg[d.Rs2])
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)
	case OpFSGNJ_D:
		h.Freg[d.Rd] = fpu.SgnjD(h.Freg[d.Rs1], h.Freg[d.Rs2], false, false)
	case OpFSGNJN_D:
		h.Freg[d.Rd] = fpu.SgnjD(h.Freg[d.Rs1], h.Freg[d.Rs2], true, false)
	case OpFSGNJX_D:
		h.Freg[d.Rd] = fpu.SgnjD(h.Freg[d.Rs1], h.Freg[d.Rs2], false, true)
	case OpFEQ_D:
		r, f := fpu.EqD(h.Freg[d.Rs1], h.Freg[d.Rs2])
		h.SetIreg(d.Rd, boolU64(r))
		h.raiseFPFlags(f)
	case OpFLT_D:
		r, f := fpu.LtD(h.Freg[d.Rs1], h.Freg[d.Rs2])
		h.SetIreg(d.Rd, boolU64(r))
		h.raiseFPFlags(f)
	case OpFLE_D:
		r, f := fpu.LeD(h.Freg[d.Rs1], h.Freg[d.Rs2])
		h.SetIreg(d.Rd, boolU64(r))
		h.raiseFPFlags(f)
	case OpFCLASS_D:
		h.SetIreg(d.Rd, fpu.ClassifyD(h.Freg[d.Rs1]))
	case OpFMV_X_D:
		h.SetIreg(d.Rd, math.Float64bits(h.Freg[d.Rs1]))
	case OpFMV_D_X:
		h.Freg[d.Rd] = math.Float64frombits(h.GetIreg(d.Rs1))
	case OpFCVT_W_D:
		r, f := fpu.CvtFToS32(float32(h.Freg[d.Rs1]), h.rm(d.RM))
		h.SetIreg(d.Rd, signExt32(uint32(r)))
		h.raiseFPFlags(f)
	case OpFCVT_WU_D:
		r, f := fpu.CvtFToU32(float32(h.Freg[d.Rs1]), h.rm(d.RM))
		h.SetIreg(d.Rd, signExt32(r))
		h.raiseFPFlags(f)
	case OpFCVT_L_D:
		r, f := fpu.CvtFToS64(h.Freg[d.Rs1], h.rm(d.RM))
		h.SetIreg(d.Rd, uint64(r))
		h.raiseFPFlags(f)
	case OpFCVT_LU_D:
		r, f := fpu.CvtFToU64(h.Freg[d.Rs1], h.rm(d.RM))
		h.SetIreg(d.Rd, r)
		h.raiseFPFlags(f)
	case OpFCVT_D_W:
		h.Freg[d.Rd] = fpu.CvtS32ToD(int32(h.GetIreg(d.Rs1)))
	case OpFCVT_D_WU:
		h.Freg[d.Rd] = fpu.CvtU32ToD(uint32(h.GetIreg(d.Rs1)))
	case OpFCVT_D_L:
		h.Freg[d.Rd] = fpu.CvtS64ToD(int64(h.GetIreg(d.Rs1)))
	case OpFCVT_D_LU:
		h.Freg[d.Rd] = fpu.CvtU64ToD(h.GetIreg(d.Rs1))
	case OpFCVT_S_D:
		h.Freg[d.Rd] = float64(float32(h.Freg[d.Rs1]))
	case OpFCVT_D_S:
		h.Freg[d.Rd] = float64(f32(h, d.Rs1))

	case OpFMADD_D:
		r, f := fpu.MulAddD(h.Freg[d.Rs1], h.Freg[d.Rs2], h.Freg[d.Rs3], h.rm(d.RM))
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)
	case OpFMSUB_D:
		r, f := fpu.MulAddD(h.Freg[d.Rs1], h.Freg[d.Rs2], -h.Freg[d.Rs3], h.rm(d.RM))
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)
	case OpFNMSUB_D:
		r, f := fpu.MulAddD(-h.Freg[d.Rs1], h.Freg[d.Rs2], h.Freg[d.Rs3], h.rm(d.RM))
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)
	case OpFNMADD_D:
		r, f := fpu.MulAddD(-h.Freg[d.Rs1], h.Freg[d.Rs2], -h.Freg[d.Rs3], h.rm(d.RM))
		h.Freg[d.Rd] = r
		h.raiseFPFlags(f)

	default:
		return false
	}
	return true
}

func f32(h *Hart, r uint8) float32 { return float32(h.Freg[r]) }
