// Package memory is the guest's flat address space: every guest address is
// a literal host pointer, backed by host anonymous mappings made with
// MAP_FIXED so the guest and host share one address space (spec.md §9,
// "guest pointers as host pointers"). This is the thin abstraction the core
// executor calls through, so a privileged-mode MMU stage could later be
// inserted here without touching the decoder or executor.
package memory

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Segment records one host mapping made on behalf of the guest: a load
// segment, the stack, or a brk extension. Segments accumulate for the
// lifetime of the hart and are released together by Close.
type Segment struct {
	Base   uint64
	Length uint64
}

// Memory owns every host mapping backing the guest address space.
type Memory struct {
	segments []Segment
	// Trace, when non-nil, is called for every Map/Unmap — the -d/--emulator-debug
	// mapping-trace hook described in spec.md §6.
	Trace func(format string, args ...any)
}

func New() *Memory {
	return &Memory{}
}

func (m *Memory) trace(format string, args ...any) {
	if m.Trace != nil {
		m.Trace(format, args...)
	}
}

// Map installs an anonymous mapping at the exact guest address addr,
// page-aligning length upward, with the given host protection bits.
// Segment flags (R/W/X) from the ELF program header map directly onto prot.
func (m *Memory) Map(addr, length uint64, prot int) error {
	if length == 0 {
		return nil
	}
	aligned := alignUp(length, PageSize)
	_, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		uintptr(addr),
		uintptr(aligned),
		uintptr(prot),
		uintptr(unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_FIXED),
		^uintptr(0), // fd -1
		0,
	)
	if errno != 0 {
		return fmt.Errorf("mmap at 0x%x (0x%x bytes): %w", addr, aligned, errno)
	}
	m.segments = append(m.segments, Segment{Base: addr, Length: aligned})
	m.trace("map base=0x%x length=0x%x prot=%d", addr, aligned, prot)
	return nil
}

// Unmap releases a single mapping previously returned by Map; it does not
// attempt to split partial mappings, since every mapping this core makes is
// Unmap'd as a whole unit (teardown, or a failed brk extension is simply
// never mapped).
func (m *Memory) Unmap(addr, length uint64) error {
	aligned := alignUp(length, PageSize)
	if err := unix.Munmap(unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), aligned)); err != nil {
		return fmt.Errorf("munmap at 0x%x (0x%x bytes): %w", addr, aligned, err)
	}
	m.trace("unmap base=0x%x length=0x%x", addr, aligned)
	for i, s := range m.segments {
		if s.Base == addr {
			m.segments = append(m.segments[:i], m.segments[i+1:]...)
			break
		}
	}
	return nil
}

// Protect changes the protection bits of an already-mapped range. Nothing
// in this module calls it.
func (m *Memory) Protect(addr, length uint64, prot int) error {
	aligned := alignUp(length, PageSize)
	return unix.Mprotect(unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), aligned), prot)
}

// Bytes returns a slice view directly over guest memory starting at addr,
// for passthrough syscalls like write(2) that hand a host io.Writer the raw
// bytes without a copy through the register file.
func (m *Memory) Bytes(addr uint64, n int) []byte {
	if n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n)
}

// Load reads a little-endian value of the given byte size (1, 2, 4, or 8)
// from guest memory. Misaligned reads are permitted; the host handles them
// (spec.md §4.6).
func (m *Memory) Load(addr uint64, size int) uint64 {
	switch size {
	case 1:
		return uint64(*(*uint8)(unsafe.Pointer(uintptr(addr))))
	case 2:
		return uint64(*(*uint16)(unsafe.Pointer(uintptr(addr))))
	case 4:
		return uint64(*(*uint32)(unsafe.Pointer(uintptr(addr))))
	case 8:
		return *(*uint64)(unsafe.Pointer(uintptr(addr)))
	default:
		panic(fmt.Errorf("unsupported load size: %d", size))
	}
}

// Store writes the low `size` bytes of v, little-endian, to guest memory.
func (m *Memory) Store(addr uint64, size int, v uint64) {
	switch size {
	case 1:
		*(*uint8)(unsafe.Pointer(uintptr(addr))) = uint8(v)
	case 2:
		*(*uint16)(unsafe.Pointer(uintptr(addr))) = uint16(v)
	case 4:
		*(*uint32)(unsafe.Pointer(uintptr(addr))) = uint32(v)
	case 8:
		*(*uint64)(unsafe.Pointer(uintptr(addr))) = v
	default:
		panic(fmt.Errorf("unsupported store size: %d", size))
	}
}

// Segments returns the live mapping list, for memory-debug reporting and
// teardown.
func (m *Memory) Segments() []Segment {
	return m.segments
}

// Close releases every mapping made on behalf of the guest. Called on every
// emulator exit path (normal exit, illegal instruction, setup failure).
func (m *Memory) Close() error {
	var firstErr error
	for _, s := range append([]Segment(nil), m.segments...) {
		if err := m.Unmap(s.Base, s.Length); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

const PageSize = 4096

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}
