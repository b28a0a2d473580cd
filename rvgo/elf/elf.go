// Package elf loads a statically linked RISC-V ELF32/ELF64 executable into
// a hart's guest address space (spec.md §6's external interface E1; parsing
// itself is a non-goal of the core (spec.md §1) — this package is the
// external collaborator the core is specified only at the boundary of).
// It is grounded on the teacher's debug/elf-based loader, adapted from a
// Merkleized memory model to real host mmap.
package elf

import (
	"debug/elf"
	"fmt"

	"github.com/rvuser/rvemu/rvgo/memory"
	"golang.org/x/sys/unix"
)

const (
	stackSize uint64 = 16 << 20
	stackTop  uint64 = 0x78000000

	// riscvAttributes is the program header type RISC-V toolchains reuse
	// from the MIPS ABI-flags slot to carry the .riscv.attributes
	// section; it has zero memsz and is never loaded.
	riscvAttributes = 0x70000003
)

// LoadResult is everything the core needs to start a hart after a
// successful load: the entry PC and the computed heap bounds (the stack is
// already mapped by the time LoadResult is returned).
type LoadResult struct {
	Entry              uint64
	HeapBegin, HeapEnd uint64
	StackTop, StackPtr uint64
}

// Load maps every PT_LOAD segment of f at its ELF-specified virtual
// address, then maps the fixed 16 MiB stack ending at 0x78000000 and
// pushes argc/argv/envp/auxv per the standard Linux user-mode ABI.
func Load(f *elf.File, mem *memory.Memory, argv, envp []string) (LoadResult, error) {
	var highestEnd uint64

	for i, prog := range f.Progs {
		if prog.Type == riscvAttributes {
			continue
		}
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if err := loadSegment(mem, prog); err != nil {
			return LoadResult{}, fmt.Errorf("segment %d: %w", i, err)
		}
		if end := prog.Vaddr + prog.Memsz; end > highestEnd {
			highestEnd = end
		}
	}

	heapBegin := alignUp(highestEnd, memory.PageSize)

	stackBase := stackTop - stackSize
	if err := mem.Map(stackBase, stackSize, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return LoadResult{}, fmt.Errorf("stack: %w", err)
	}

	sp := setupStack(mem, stackTop, argv, envp)

	return LoadResult{
		Entry:     f.Entry,
		HeapBegin: heapBegin,
		HeapEnd:   heapBegin,
		StackTop:  stackTop,
		StackPtr:  sp,
	}, nil
}

func loadSegment(mem *memory.Memory, prog *elf.Prog) error {
	prot := progProt(prog.Flags)
	length := prog.Memsz
	if err := mem.Map(prog.Vaddr, length, prot); err != nil {
		return err
	}
	buf := make([]byte, prog.Filesz)
	if _, err := prog.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("read segment data: %w", err)
	}
	dst := mem.Bytes(prog.Vaddr, len(buf))
	copy(dst, buf)
	return nil
}

func progProt(flags elf.ProgFlag) int {
	prot := 0
	if flags&elf.PF_R != 0 {
		prot |= unix.PROT_READ
	}
	if flags&elf.PF_W != 0 {
		prot |= unix.PROT_WRITE
	}
	if flags&elf.PF_X != 0 {
		prot |= unix.PROT_EXEC
	}
	return prot
}

// setupStack pushes argc, argv pointers, a NULL, envp pointers, a NULL, and
// a minimal auxv (AT_NULL only) below top, then returns the resulting SP,
// 16-byte aligned as the RISC-V calling convention requires at process
// entry.
func setupStack(mem *memory.Memory, top uint64, argv, envp []string) uint64 {
	sp := top

	push := func(s string) uint64 {
		b := append([]byte(s), 0)
		sp -= uint64(len(b))
		copy(mem.Bytes(sp, len(b)), b)
		return sp
	}

	argvPtrs := make([]uint64, len(argv))
	for i, a := range argv {
		argvPtrs[i] = push(a)
	}
	envpPtrs := make([]uint64, len(envp))
	for i, e := range envp {
		envpPtrs[i] = push(e)
	}

	sp &^= 0x7 // pointer-align before writing the arrays

	pushWord := func(v uint64) {
		sp -= 8
		mem.Store(sp, 8, v)
	}

	// argc, argv[], NULL, envp[], NULL, auxv (AT_NULL only): the SP the
	// guest entry point observes must be 16-byte aligned, so pad with one
	// extra word up front if the word count below is odd.
	wordCount := 1 + (len(argvPtrs) + 1) + (len(envpPtrs) + 1) + 2
	if (sp/8+uint64(wordCount))%2 != 0 {
		pushWord(0)
	}

	pushWord(0) // AT_NULL auxv terminator
	pushWord(0)

	pushWord(0) // envp terminator
	for i := len(envpPtrs) - 1; i >= 0; i-- {
		pushWord(envpPtrs[i])
	}

	pushWord(0) // argv terminator
	for i := len(argvPtrs) - 1; i >= 0; i-- {
		pushWord(argvPtrs[i])
	}

	pushWord(uint64(len(argv))) // argc

	return sp
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}
