package core

import (
	"bytes"
	"testing"

	"github.com/rvuser/rvemu/rvgo/memory"
	"github.com/rvuser/rvemu/rvgo/riscv"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// scenario 1 of the end-to-end walkthroughs: addi x1, x0, 5 followed by an
// exit(5) ecall must retire the addi, then report Exited with ExitCode 5
// without the stepper itself ever calling os.Exit.
func TestStepperAddiThenExit(t *testing.T) {
	mem := memory.New()
	const base = 0x20000000
	require.NoError(t, mem.Map(base, 4096, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC))
	defer mem.Close()

	// addi x1, x0, 5
	mem.Store(base, 4, 0x00500093)
	// ecall
	mem.Store(base+4, 4, 0x00000073)

	isa := isaRV64()
	h := NewHart(isa, mem)
	h.PC = base
	h.SetIreg(riscv.RegA7, riscv.SysExit)
	h.SetIreg(riscv.RegA0, 5)

	s := &Stepper{Hart: h, Proxy: &Proxy{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}}
	res, err := s.Run(16)
	require.NoError(t, err)
	require.True(t, res.Exited)
	require.EqualValues(t, 5, res.ExitCode)
	require.EqualValues(t, 5, h.GetIreg(1))
}

func TestStepperIllegalInstructionStops(t *testing.T) {
	mem := memory.New()
	const base = 0x20001000
	require.NoError(t, mem.Map(base, 4096, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC))
	defer mem.Close()

	mem.Store(base, 4, 0x00000000) // opcode 0 is illegal

	isa := isaRV64()
	h := NewHart(isa, mem)
	h.PC = base

	s := &Stepper{Hart: h, Proxy: &Proxy{}}
	res, err := s.Run(16)
	require.Error(t, err)
	require.True(t, res.Illegal)

	var illegal *IllegalInstructionError
	require.ErrorAs(t, err, &illegal)
	require.EqualValues(t, base, illegal.PC)
}

func TestStepperLogInstructionCallbackFires(t *testing.T) {
	mem := memory.New()
	const base = 0x20002000
	require.NoError(t, mem.Map(base, 4096, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC))
	defer mem.Close()
	mem.Store(base, 4, 0x00500093) // addi x1, x0, 5
	mem.Store(base+4, 4, 0x00000073)

	isa := isaRV64()
	h := NewHart(isa, mem)
	h.PC = base
	h.SetIreg(riscv.RegA7, riscv.SysExit)

	var calls int
	s := &Stepper{
		Hart:  h,
		Proxy: &Proxy{},
		LogInstruction: func(pc, raw uint64, length int, p Pseudo, hasPseudo bool, d *DecodedInst) {
			calls++
		},
	}
	_, err := s.Run(16)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

// Decode caching must be transparent to execution: running the same loop
// body twice (forcing a cache hit on the second iteration) must produce the
// same architectural result as the cold, uncached first pass.
func TestStepperCacheHitMatchesCacheMiss(t *testing.T) {
	mem := memory.New()
	const base = 0x20003000
	require.NoError(t, mem.Map(base, 4096, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC))
	defer mem.Close()

	mem.Store(base, 4, 0x00100093)   // addi x1, x0, 1
	mem.Store(base+4, 4, 0x00100093) // addi x1, x0, 1 (identical word, re-fetched)
	mem.Store(base+8, 4, 0x00000073) // ecall

	isa := isaRV64()
	h := NewHart(isa, mem)
	h.PC = base
	h.SetIreg(riscv.RegA7, riscv.SysExit)

	s := &Stepper{Hart: h, Proxy: &Proxy{}}
	_, err := s.Run(16)
	require.NoError(t, err)
	require.EqualValues(t, 1, h.GetIreg(1))
}
