package core

import (
	"bytes"
	"testing"

	"github.com/rvuser/rvemu/rvgo/memory"
	"github.com/rvuser/rvemu/rvgo/riscv"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestHandleEcallExit(t *testing.T) {
	h := NewHart(isaRV64(), nil)
	h.SetIreg(riscv.RegA7, riscv.SysExit)
	h.SetIreg(riscv.RegA0, 42)

	p := &Proxy{}
	res, err := p.HandleEcall(h)
	require.NoError(t, err)
	require.True(t, res.Exited)
	require.EqualValues(t, 42, res.ExitCode)
}

func TestHandleEcallWriteGoesThroughProxyStdout(t *testing.T) {
	mem := memory.New()
	const base = 0x50000000
	require.NoError(t, mem.Map(base, 4096, unix.PROT_READ|unix.PROT_WRITE))
	defer mem.Close()

	msg := []byte("hello")
	copy(mem.Bytes(base, len(msg)), msg)

	h := NewHart(isaRV64(), mem)
	h.SetIreg(riscv.RegA7, riscv.SysWrite)
	h.SetIreg(riscv.RegA0, 1) // fd 1 (stdout)
	h.SetIreg(riscv.RegA1, base)
	h.SetIreg(riscv.RegA2, uint64(len(msg)))

	var out bytes.Buffer
	p := &Proxy{Stdout: &out}
	res, err := p.HandleEcall(h)
	require.NoError(t, err)
	require.False(t, res.Exited)
	require.Equal(t, "hello", out.String())
	require.EqualValues(t, len(msg), h.GetIreg(riscv.RegA0))
}

func TestHandleEcallCloseOfStdStreamsIsNoop(t *testing.T) {
	h := NewHart(isaRV64(), nil)
	h.SetIreg(riscv.RegA7, riscv.SysClose)
	h.SetIreg(riscv.RegA0, 1)

	p := &Proxy{}
	res, err := p.HandleEcall(h)
	require.NoError(t, err)
	require.False(t, res.Exited)
	require.EqualValues(t, 0, h.GetIreg(riscv.RegA0))
}

func TestHandleEcallUnknownSyscallIsFatal(t *testing.T) {
	h := NewHart(isaRV64(), nil)
	h.SetIreg(riscv.RegA7, 99999)

	p := &Proxy{}
	_, err := p.HandleEcall(h)
	require.Error(t, err)
	var unknown *UnknownSyscallError
	require.ErrorAs(t, err, &unknown)
	require.EqualValues(t, 99999, unknown.Number)
}

func TestBrkQueryReturnsCurrentHeapEnd(t *testing.T) {
	h := NewHart(isaRV64(), nil)
	h.HeapEnd = 0x60000000

	p := &Proxy{}
	h.SetIreg(riscv.RegA7, riscv.SysBrk)
	h.SetIreg(riscv.RegA0, 0)
	_, err := p.HandleEcall(h)
	require.NoError(t, err)
	require.EqualValues(t, 0x60000000, h.GetIreg(riscv.RegA0))
}

func TestBrkExtendsHeapAndMapsPages(t *testing.T) {
	mem := memory.New()
	defer mem.Close()

	h := NewHart(isaRV64(), mem)
	h.HeapBegin = 0x61000000
	h.HeapEnd = 0x61000000

	p := &Proxy{}
	h.SetIreg(riscv.RegA7, riscv.SysBrk)
	h.SetIreg(riscv.RegA0, 0x61000000+4096)
	_, err := p.HandleEcall(h)
	require.NoError(t, err)
	require.EqualValues(t, 0x61000000+4096, h.HeapEnd)
	require.EqualValues(t, 0x61000000+4096, h.GetIreg(riscv.RegA0))

	// The new heap region must actually be writable now.
	h.Mem.Store(0x61000000, 8, 0xAA)
	require.EqualValues(t, 0xAA, h.Mem.Load(0x61000000, 8))
}
