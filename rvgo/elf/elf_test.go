package elf

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/rvuser/rvemu/rvgo/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// buildMinimalELF64 assembles a single-PT_LOAD-segment RV64 executable by
// hand: a 64-byte ELF header immediately followed by one 56-byte program
// header and the segment's raw bytes, with no section headers at all (this
// loader never looks at sections).
func buildMinimalELF64(t *testing.T, vaddr uint64, entry uint64, code []byte) []byte {
	t.Helper()
	const ehsize, phentsize = 64, 56
	phoff := uint64(ehsize)
	filesz := uint64(len(code))

	var buf bytes.Buffer
	ident := [16]byte{0x7f, 'E', 'L', 'F', 2 /*ELFCLASS64*/, 1 /*ELFDATA2LSB*/, 1, 0}
	buf.Write(ident[:])
	binary.Write(&buf, binary.LittleEndian, uint16(elf.ET_EXEC))
	binary.Write(&buf, binary.LittleEndian, uint16(243)) // EM_RISCV
	binary.Write(&buf, binary.LittleEndian, uint32(1))   // e_version
	binary.Write(&buf, binary.LittleEndian, entry)
	binary.Write(&buf, binary.LittleEndian, phoff)
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // e_shoff
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // e_flags
	binary.Write(&buf, binary.LittleEndian, uint16(ehsize))
	binary.Write(&buf, binary.LittleEndian, uint16(phentsize))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // e_phnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shentsize
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shstrndx
	require.EqualValues(t, ehsize, buf.Len())

	binary.Write(&buf, binary.LittleEndian, uint32(elf.PT_LOAD))
	binary.Write(&buf, binary.LittleEndian, uint32(elf.PF_R|elf.PF_X))
	binary.Write(&buf, binary.LittleEndian, phoff+phentsize) // p_offset: right after the single phdr
	binary.Write(&buf, binary.LittleEndian, vaddr)
	binary.Write(&buf, binary.LittleEndian, vaddr) // p_paddr
	binary.Write(&buf, binary.LittleEndian, filesz)
	binary.Write(&buf, binary.LittleEndian, filesz) // p_memsz
	binary.Write(&buf, binary.LittleEndian, uint64(0x1000))

	buf.Write(code)
	return buf.Bytes()
}

func TestLoadMapsSegmentAndEntry(t *testing.T) {
	const vaddr = 0x40000000
	code := []byte{0x13, 0x00, 0x50, 0x00} // addi x0, x0, 5 (arbitrary valid-looking word)
	raw := buildMinimalELF64(t, vaddr, vaddr, code)

	ef, err := elf.NewFile(bytes.NewReader(raw))
	require.NoError(t, err)

	mem := memory.New()
	defer mem.Close()

	res, err := Load(ef, mem, []string{"prog"}, []string{"HOME=/root"})
	require.NoError(t, err)
	require.EqualValues(t, vaddr, res.Entry)
	require.EqualValues(t, stackTop, res.StackTop)

	got := mem.Bytes(vaddr, len(code))
	require.Equal(t, code, got)
}

func TestLoadComputesHeapBeginAboveHighestSegment(t *testing.T) {
	const vaddr = 0x40100000
	code := make([]byte, 10)
	raw := buildMinimalELF64(t, vaddr, vaddr, code)
	ef, err := elf.NewFile(bytes.NewReader(raw))
	require.NoError(t, err)

	mem := memory.New()
	defer mem.Close()
	res, err := Load(ef, mem, nil, nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.HeapBegin, uint64(vaddr+10))
	require.Equal(t, res.HeapBegin, res.HeapEnd) // heap starts empty
}

func TestLoadStackPointerIs16ByteAligned(t *testing.T) {
	const vaddr = 0x40200000
	code := make([]byte, 4)
	raw := buildMinimalELF64(t, vaddr, vaddr, code)
	ef, err := elf.NewFile(bytes.NewReader(raw))
	require.NoError(t, err)

	mem := memory.New()
	defer mem.Close()
	res, err := Load(ef, mem, []string{"a", "bb", "ccc"}, []string{"X=1", "Y=22"})
	require.NoError(t, err)
	require.Zero(t, res.StackPtr%16)
}

func TestSetupStackArgcMatchesArgvCount(t *testing.T) {
	mem := memory.New()
	const top = stackTop
	require.NoError(t, mem.Map(top-stackSize, stackSize, unix.PROT_READ|unix.PROT_WRITE))
	defer mem.Close()

	sp := setupStack(mem, top, []string{"a", "b", "c"}, nil)
	require.Zero(t, sp%16)
	require.EqualValues(t, 3, mem.Load(sp, 8)) // argc is the first word at the final sp
}
