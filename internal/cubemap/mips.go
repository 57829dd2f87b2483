package cubemap

// MipChain is a cubemap with a full chain of mip levels, from the base
// resolution at level 0 down to a 1x1 face at the last level.
type MipChain struct {
	Levels []*Cubemap
}

// MipCount returns the number of mip levels for the given base size,
// down to and including 1x1.
func MipCount(size int) int {
	n := 1
	for size > 1 {
		size >>= 1
		n++
	}
	return n
}

// NewMipChain allocates an empty mip chain for the given base size.
func NewMipChain(size int) *MipChain {
	mc := &MipChain{}
	for s := size; ; s >>= 1 {
		mc.Levels = append(mc.Levels, New(s))
		if s <= 1 {
			break
		}
	}
	return mc
}

// Base returns the level-0 cubemap.
func (mc *MipChain) Base() *Cubemap {
	return mc.Levels[0]
}
