package core

// cacheSlots is the fixed slot count of the decode cache: 8191, a prime
// chosen so that sequential instruction words (which cluster on small
// strides through a hot loop) spread across slots instead of aliasing on a
// power-of-two stride (spec.md §4.5).
const cacheSlots = 8191

// DecodeCache is a fixed-size, directly-indexed, non-associative cache from
// raw instruction word to its decoded form. There is no chaining: a
// collision unconditionally evicts whatever occupied the slot. This trades
// a (rare, harmless) repeated decode for O(1) lookup with no allocation and
// no probing (spec.md §4.5).
type DecodeCache struct {
	slots [cacheSlots]cacheEntry
}

type cacheEntry struct {
	valid bool
	raw   uint64
	inst  DecodedInst
}

func NewDecodeCache() *DecodeCache {
	return &DecodeCache{}
}

// Lookup returns the cached decode for raw, if the occupying slot's raw word
// still matches. A returned ok=false covers both an empty slot and a
// collision with a different instruction word.
func (c *DecodeCache) Lookup(raw uint64) (DecodedInst, bool) {
	slot := &c.slots[raw%cacheSlots]
	if slot.valid && slot.raw == raw {
		return slot.inst, true
	}
	return DecodedInst{}, false
}

// Insert stores d under raw's slot, evicting whatever was there. Callers
// only insert after a full decode, so every insert is a cache-worthy result
// (decode never produces a slot-keyed placeholder for illegal words — C2
// decodes those deterministically too, and re-decoding an illegal word is as
// cheap as looking it up).
func (c *DecodeCache) Insert(raw uint64, d DecodedInst) {
	c.slots[raw%cacheSlots] = cacheEntry{valid: true, raw: raw, inst: d}
}
