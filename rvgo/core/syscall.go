package core

import (
	"io"

	"github.com/rvuser/rvemu/rvgo/riscv"
	"golang.org/x/sys/unix"
)

// StepResult is what a step (and, terminally, the syscall bridge) reports
// back to the stepper. Per spec.md §9's adopted redesign, a guest `exit`
// is surfaced here as data — Exited/ExitCode — rather than calling
// os.Exit or panicking from inside the core; the outer program decides
// what to do with it.
type StepResult struct {
	Illegal  bool
	Exited   bool
	ExitCode uint8
}

// Proxy is the environment-call bridge (C7): it forwards the minimal
// syscall set this core recognizes to the host OS and writes the result
// back into the guest's a0. Host fds 1/2 are redirected through Stdout/
// Stderr so the embedding program controls where guest output lands,
// matching the teacher's LoggingWriter indirection one layer up.
type Proxy struct {
	Stdout, Stderr io.Writer
}

// HandleEcall reads the syscall number from a7 and its arguments from
// a0..a6, performs it, and writes the return value to a0 (spec.md §4.7).
// It does not itself advance PC; the stepper does that once HandleEcall
// returns, same as every other successfully handled instruction.
func (p *Proxy) HandleEcall(h *Hart) (StepResult, error) {
	num := h.GetIreg(riscv.RegA7)
	a0 := h.GetIreg(riscv.RegA0)
	a1 := h.GetIreg(riscv.RegA1)
	a2 := h.GetIreg(riscv.RegA2)

	switch num {
	case riscv.SysExit:
		return StepResult{Exited: true, ExitCode: uint8(a0)}, nil

	case riscv.SysWrite:
		fd := int(a0)
		buf := h.Mem.Bytes(a1, int(a2))
		n, err := p.write(fd, buf)
		if err != nil {
			h.SetIreg(riscv.RegA0, negErrno(err))
		} else {
			h.SetIreg(riscv.RegA0, uint64(n))
		}
		return StepResult{}, nil

	case riscv.SysClose:
		fd := int(a0)
		if fd <= 2 {
			h.SetIreg(riscv.RegA0, 0) // never actually close the emulator's own std streams
			return StepResult{}, nil
		}
		err := unix.Close(fd)
		if err != nil {
			h.SetIreg(riscv.RegA0, negErrno(err))
		} else {
			h.SetIreg(riscv.RegA0, 0)
		}
		return StepResult{}, nil

	case riscv.SysFstat:
		fd := int(a0)
		statAddr := a1
		var st unix.Stat_t
		if err := unix.Fstat(fd, &st); err != nil {
			h.SetIreg(riscv.RegA0, negErrno(err))
			return StepResult{}, nil
		}
		writeGuestStat(h, statAddr, &st)
		h.SetIreg(riscv.RegA0, 0)
		return StepResult{}, nil

	case riscv.SysBrk:
		handleBrk(h, a0)
		return StepResult{}, nil

	default:
		return StepResult{}, &UnknownSyscallError{Number: num}
	}
}

func (p *Proxy) write(fd int, buf []byte) (int, error) {
	switch fd {
	case 1:
		if p.Stdout != nil {
			return p.Stdout.Write(buf)
		}
	case 2:
		if p.Stderr != nil {
			return p.Stderr.Write(buf)
		}
	}
	return unix.Write(fd, buf)
}

func negErrno(err error) uint64 {
	if errno, ok := err.(unix.Errno); ok {
		return uint64(int64(-int(errno)))
	}
	var neg1 int64 = -1
	return uint64(neg1)
}

// handleBrk extends the guest heap by mapping additional anonymous host
// pages rounded up to the page size, recording them for teardown; on
// mapping failure it returns -ENOMEM without moving heap_end (spec.md
// §4.7). requested == 0 is the standard "query current break" form.
func handleBrk(h *Hart, requested uint64) {
	if requested == 0 || requested <= h.HeapEnd {
		h.SetIreg(riscv.RegA0, h.HeapEnd)
		return
	}
	grow := alignUpPage(requested) - alignUpPage(h.HeapEnd)
	if grow == 0 {
		h.HeapEnd = requested
		h.SetIreg(riscv.RegA0, requested)
		return
	}
	base := alignUpPage(h.HeapEnd)
	if err := h.Mem.Map(base, grow, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		h.SetIreg(riscv.RegA0, negErrno(unix.ENOMEM))
		return
	}
	h.HeapEnd = requested
	h.SetIreg(riscv.RegA0, requested)
}

func alignUpPage(v uint64) uint64 {
	return (v + riscv.PageSize - 1) &^ (riscv.PageSize - 1)
}

// writeGuestStat copies a host unix.Stat_t into the guest's struct stat
// layout, field by field, per the riscv64 Linux ABI (spec.md §4.7: "a
// fixed field-by-field copy").
func writeGuestStat(h *Hart, addr uint64, st *unix.Stat_t) {
	store := func(off uint64, size int, v uint64) { h.Mem.Store(addr+off, size, v) }
	store(0, 8, uint64(st.Dev))
	store(8, 8, uint64(st.Ino))
	store(16, 4, uint64(st.Mode))
	store(20, 4, uint64(st.Nlink))
	store(24, 4, uint64(st.Uid))
	store(28, 4, uint64(st.Gid))
	store(32, 8, uint64(st.Rdev))
	store(48, 8, uint64(st.Size))
	store(56, 4, uint64(st.Blksize))
	store(64, 8, uint64(st.Blocks))
	store(72, 8, uint64(st.Atim.Sec))
	store(80, 8, uint64(st.Atim.Nsec))
	store(88, 8, uint64(st.Mtim.Sec))
	store(96, 8, uint64(st.Mtim.Nsec))
	store(104, 8, uint64(st.Ctim.Sec))
	store(112, 8, uint64(st.Ctim.Nsec))
}
