package core

// InstLength returns the byte length of the instruction whose low bits
// (little-endian) are packed into w, per spec.md §4.1's table. It never
// faults: an unrecognized low-bit pattern returns length 0, which the
// caller treats as illegal.
func InstLength(w uint64) int {
	switch {
	case w&0x3 != 0x3:
		return 2
	case w&0x1f != 0x1f:
		return 4
	case w&0x3f == 0x1f:
		return 6
	case w&0x7f == 0x3f:
		return 8
	default:
		return 0
	}
}

// Fetcher reads raw little-endian bytes from guest memory. The core depends
// only on this interface, not on any concrete memory implementation
// (spec.md §9's "thin abstraction" design note).
type Fetcher interface {
	Load(addr uint64, size int) uint64
}

// Fetch reads the variable-length instruction encoding at pc and returns its
// canonical little-endian-integer form plus its byte length. It reads
// optimistically: a 32-bit word first, then extends to 48/64 bits only if
// the low bits demand it (spec.md §4.1).
//
// A 4/6/8-byte fetch that straddles an unmapped page faults in host terms;
// this core does not intercept that fault (spec.md §4.1).
func Fetch(mem Fetcher, pc uint64) (raw uint64, length int) {
	word := mem.Load(pc, 4)
	length = InstLength(word)
	switch length {
	case 0:
		return 0, 8
	case 2:
		return word & 0xFFFF, 2
	case 4:
		return word, 4
	case 6:
		hi := mem.Load(pc+4, 2)
		return word | hi<<32, 6
	case 8:
		hi := mem.Load(pc+4, 4)
		return word | hi<<32, 8
	default:
		return 0, 8
	}
}
