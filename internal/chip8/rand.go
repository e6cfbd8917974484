package chip8

// randMultiplier is the odd multiplier of the linear congruential generator.
const randMultiplier = 0x3243f6a8885a308d

// Rand is a deterministic linear congruential byte generator.
// The zero value is a valid generator seeded with 0.
type Rand struct {
	state uint64
}

// NewRand returns a generator seeded with the given value.
func NewRand(seed uint64) Rand {
	return Rand{state: seed}
}

// Byte advances the generator and returns the next random byte.
func (r *Rand) Byte() uint8 {
	return RandomByte(&r.state)
}

// State returns the current generator state.
func (r *Rand) State() uint64 {
	return r.state
}

// RandomByte advances the generator state and returns the top 8 bits of the
// new state.
func RandomByte(state *uint64) uint8 {
	*state = *state*randMultiplier + 1
	return uint8(*state >> 56)
}
