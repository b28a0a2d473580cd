package core

import (
	"github.com/rvuser/rvemu/rvgo/memory"
	"github.com/rvuser/rvemu/rvgo/riscv"
)

// Flags is a bitset of logging/debug toggles (spec.md §3, §6). Neither the
// stepper nor the decoder reads it; the stepper's logging is driven by its
// LogInstruction/LogRegisters callbacks.
type Flags uint8

const (
	FlagLogRegisters Flags = 1 << iota
	FlagLogInstructions
	FlagNoPseudo
	FlagMemoryDebug
	FlagEmulatorDebug
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Hart is one emulated hardware thread of execution — the entire
// architectural state the core reasons about (spec.md §3). This
// specification covers exactly one.
type Hart struct {
	ISA riscv.ISA

	Ireg [32]uint64 // ireg[0] is wired to zero; see GetIreg/SetIreg accessors below
	Freg [32]float64
	PC   uint64

	HeapBegin, HeapEnd uint64

	Mem *memory.Memory

	Flags         Flags
	LogRegisters  bool
	LogInstructions bool

	// CSR backs the small set of control/status registers this core
	// actually implements: fflags/frm/fcsr for the floating-point
	// rounding/exception contract (§4.6). The read-only cycle/time/instret
	// counters the pseudoinstruction recognizer names are not stored here:
	// ReadCSR answers all three from instret.
	CSR [4096]uint64

	// Reservation tracks the single outstanding LR reservation granule
	// for the A extension's LR/SC pair (§4.6): the address last
	// reserved by LRW/LRD, and whether it is still live. An integer load
	// or store, an AMO or an SC by this hart to the reserved address breaks
	// it (any SC ends it); this core is single-hart, so no other agent can
	// break it concurrently.
	reservationValid bool
	reservationAddr  uint64

	HartID uint64

	Cache *DecodeCache

	// instret counts retired instructions, backing the rdinstret
	// pseudo-CSR.
	instret uint64
}

// NewHart constructs a hart with zero-initialized registers and an attached
// decode cache, per spec.md §3's lifecycle note.
func NewHart(isa riscv.ISA, mem *memory.Memory) *Hart {
	return &Hart{
		ISA:   isa,
		Mem:   mem,
		Cache: NewDecodeCache(),
	}
}

// GetIreg reads an integer register; x0 always reads as zero regardless of
// any prior write (spec.md §3 invariant).
func (h *Hart) GetIreg(r uint8) uint64 {
	if r == 0 {
		return 0
	}
	return h.Ireg[r]
}

// SetIreg writes an integer register; writes to x0 are silently discarded.
func (h *Hart) SetIreg(r uint8, v uint64) {
	if r == 0 {
		return
	}
	h.Ireg[r] = v
}

// ReadCSR satisfies the three read-only performance counters this core
// exposes (cycle/time/instret), falling back to the raw backing array for
// everything else (fflags/frm/fcsr, and any CSR a guest probes but this
// core does not model — reads as whatever was last written, defaulting to
// zero).
func (h *Hart) ReadCSR(addr uint32) uint64 {
	switch addr {
	case riscv.CsrCycle, riscv.CsrTime:
		return h.instret
	case riscv.CsrInstret:
		return h.instret
	default:
		return h.CSR[addr&0xFFF]
	}
}

func (h *Hart) WriteCSR(addr uint32, v uint64) {
	h.CSR[addr&0xFFF] = v
}
