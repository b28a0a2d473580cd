package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstLengthTable(t *testing.T) {
	require.Equal(t, 2, InstLength(0xFFFC)) // low bits != 0b11 -> 16-bit
	require.Equal(t, 4, InstLength(0x00000013))
	require.Equal(t, 6, InstLength(0x1F))
	require.Equal(t, 8, InstLength(0x3F))
	require.Equal(t, 0, InstLength(0x7F)) // unrecognized pattern -> 0, caller treats as illegal
}

type fakeFetcher struct {
	mem map[uint64]uint64
}

func (f fakeFetcher) Load(addr uint64, size int) uint64 {
	v, ok := f.mem[addr]
	if !ok {
		return 0
	}
	mask := uint64(1)<<(uint(size)*8) - 1
	if size == 8 {
		mask = ^uint64(0)
	}
	return v & mask
}

func TestFetch32Bit(t *testing.T) {
	f := fakeFetcher{mem: map[uint64]uint64{0x1000: 0x00500093}}
	raw, length := Fetch(f, 0x1000)
	require.Equal(t, 4, length)
	require.EqualValues(t, 0x00500093, raw)
}

func TestFetch16Bit(t *testing.T) {
	f := fakeFetcher{mem: map[uint64]uint64{0x1000: 0x0001}} // c.nop
	raw, length := Fetch(f, 0x1000)
	require.Equal(t, 2, length)
	require.EqualValues(t, 0x0001, raw)
}
