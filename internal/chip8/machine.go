// Package chip8 implements the CHIP-8 virtual machine interpreter.
//
// A Machine holds the complete state of the virtual machine: memory, registers,
// stack, timers, keypad and video buffer. It is driven one execution cycle at a
// time by calling Step. The surrounding program is responsible for loading the
// ROM, updating the keypad, presenting the video buffer and calling Step at a
// fixed cadence.
package chip8

// CHIP-8 memory layout and machine dimensions.
//
//	0x000-0x1FF: reserved for the interpreter, font sprites at 0x050-0x09F
//	0x200-0xFFF: program space
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000
	// ProgramStart is the address the ROM is loaded to and execution starts at.
	ProgramStart = 0x200
	// MaxROMSize is the largest ROM that fits into program space.
	MaxROMSize = MemorySize - ProgramStart

	RegisterCount = 16
	StackLevels   = 16
	KeyCount      = 16

	VideoWidth  = 64
	VideoHeight = 32
	VideoSize   = VideoWidth * VideoHeight

	// PixelOn is the value of a lit pixel in the video buffer.
	PixelOn uint32 = 0xFFFFFFFF
	// PixelOff is the value of an unlit pixel in the video buffer.
	PixelOff uint32 = 0

	flagRegister = 0xF
	opcodeSize   = 2
)

// Machine is the state of a CHIP-8 virtual machine.
// The exported fields are meant to be accessed directly by the collaborators
// of the interpreter: the ROM loader writes Memory, the input handler writes
// Keypad and the renderer reads Video.
type Machine struct {
	Registers [RegisterCount]uint8
	Memory    [MemorySize]uint8
	Index     uint16
	PC        uint16
	Stack     [StackLevels]uint16
	SP        uint8

	DelayTimer uint8
	SoundTimer uint8

	Keypad [KeyCount]bool
	Video  [VideoSize]uint32

	// Opcode is the instruction fetched in the current cycle.
	Opcode uint16

	Rand Rand

	seed  uint64
	fault *Fault
}

// New returns a new machine with the font installed, the program counter set
// to ProgramStart and the random generator seeded with the given seed.
func New(seed uint64) *Machine {
	m := &Machine{}
	m.seed = seed
	m.Reset()
	return m
}

// Reset restores the power-on state of the machine. The random generator is
// reseeded with the seed passed to New and any fault is cleared.
func (m *Machine) Reset() {
	seed := m.seed
	*m = Machine{}
	m.seed = seed
	m.Rand = NewRand(seed)
	m.PC = ProgramStart
	copy(m.Memory[FontStart:], fontSet[:])
}

// LoadROM copies the ROM verbatim into memory starting at ProgramStart.
// ROMs that do not fit into the program space are rejected and leave
// memory untouched.
func (m *Machine) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return &ROMSizeError{Size: len(rom)}
	}
	copy(m.Memory[ProgramStart:], rom)
	return nil
}

// SoundActive returns whether the sound timer is running, which means a tone
// should be playing.
func (m *Machine) SoundActive() bool {
	return m.SoundTimer > 0
}

// Halted returns whether the machine stopped on a fault.
func (m *Machine) Halted() bool {
	return m.fault != nil
}

// Fault returns the fault that halted the machine or nil.
func (m *Machine) Fault() *Fault {
	return m.fault
}

// PixelLit returns whether the pixel at the given screen position is lit.
// Positions outside the screen are reported as unlit.
func (m *Machine) PixelLit(x, y int) bool {
	if x < 0 || x >= VideoWidth || y < 0 || y >= VideoHeight {
		return false
	}
	return m.Video[y*VideoWidth+x] == PixelOn
}
