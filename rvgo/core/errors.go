package core

import "fmt"

// IllegalInstructionError is the decode-time/dispatch-fallthrough error the
// stepper surfaces when it hits an op it cannot execute (spec.md §7): the
// decoder produced OpIllegal, or the executor's dispatch fell through on
// something other than ecall.
type IllegalInstructionError struct {
	PC   uint64
	Raw  uint64
	Size int
}

func (e *IllegalInstructionError) Error() string {
	return fmt.Sprintf("illegal instruction at pc=0x%x: raw=0x%x (%d bytes)", e.PC, e.Raw, e.Size)
}

// UnknownSyscallError is fatal per spec.md §7. The proxy returns it as an
// ordinary error rather than panicking, and the stepper hands it back to
// its caller unchanged, so a caller embedding the core needs no recover.
type UnknownSyscallError struct {
	Number uint64
}

func (e *UnknownSyscallError) Error() string {
	return fmt.Sprintf("unknown syscall number: %d", e.Number)
}

// MappingError wraps a failure to establish a host mapping during setup
// (load segment or stack) — fatal per spec.md §7.
type MappingError struct {
	Addr, Length uint64
	Err          error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("failed to map guest region 0x%x+0x%x: %v", e.Addr, e.Length, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }
