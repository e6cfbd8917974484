package chip8

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestLoadByte(t *testing.T) {
	for x := range uint16(RegisterCount) {
		for _, kk := range []uint16{0x00, 0x01, 0x7F, 0x80, 0xFF} {
			m := newTestMachine(t, 0x6000|x<<8|kk)
			stepN(t, m, 1)
			assert.Equal(t, uint8(kk), m.Registers[x])
		}
	}
}

func TestAddByte(t *testing.T) {
	tests := []struct {
		name  string
		a, b  uint16
		want  uint8
		flags uint8
	}{
		{"no overflow", 0x10, 0x20, 0x30, 0x55},
		{"sum of 255", 0xF0, 0x0F, 0xFF, 0x55},
		{"overflow truncates", 0xFF, 0x02, 0x01, 0x55},
		{"overflow to zero", 0x80, 0x80, 0x00, 0x55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, 0x7300|tt.a, 0x7300|tt.b)
			m.Registers[0xF] = tt.flags
			stepN(t, m, 2)

			assert.Equal(t, tt.want, m.Registers[3])
			assert.Equal(t, tt.flags, m.Registers[0xF])
		})
	}
}

func TestRegisterArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy uint8
		want   uint8
		flag   uint8
	}{
		{"LD Vx, Vy", 0x8120, 0x11, 0x22, 0x22, 0x00},
		{"OR", 0x8121, 0xF0, 0x0F, 0xFF, 0x00},
		{"AND", 0x8122, 0xF3, 0x3F, 0x33, 0x00},
		{"XOR", 0x8123, 0xFF, 0x0F, 0xF0, 0x00},
		{"ADD without carry", 0x8124, 0x10, 0x20, 0x30, 0},
		{"ADD with carry", 0x8124, 0xFF, 0x01, 0x00, 1},
		{"ADD with carry and remainder", 0x8124, 0xC8, 0x64, 0x2C, 1},
		{"SUB equal operands", 0x8125, 0x05, 0x05, 0x00, 1},
		{"SUB without borrow", 0x8125, 0x0A, 0x03, 0x07, 1},
		{"SUB with borrow", 0x8125, 0x03, 0x0A, 0xF9, 0},
		{"SHR even", 0x8126, 0x84, 0x00, 0x42, 0},
		{"SHR odd", 0x8126, 0x85, 0x00, 0x42, 1},
		{"SUBN without borrow", 0x8127, 0x03, 0x0A, 0x07, 1},
		{"SUBN equal operands", 0x8127, 0x07, 0x07, 0x00, 1},
		{"SUBN with borrow", 0x8127, 0x0A, 0x03, 0xF9, 0},
		{"SHL high bit clear", 0x812E, 0x41, 0x00, 0x82, 0},
		{"SHL high bit set", 0x812E, 0xC1, 0x00, 0x82, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.Registers[1] = tt.vx
			m.Registers[2] = tt.vy
			stepN(t, m, 1)

			assert.Equal(t, tt.want, m.Registers[1])
			assert.Equal(t, tt.vy, m.Registers[2])
			if tt.opcode&0x000F >= 4 {
				assert.Equal(t, tt.flag, m.Registers[0xF])
			}
		})
	}
}

func TestBitwiseOpsKeepFlag(t *testing.T) {
	for _, op := range []uint16{0x8120, 0x8121, 0x8122, 0x8123} {
		m := newTestMachine(t, op)
		m.Registers[0xF] = 0xAA
		stepN(t, m, 1)
		assert.Equal(t, uint8(0xAA), m.Registers[0xF])
	}
}

func TestAddRegister_SameRegister(t *testing.T) {
	m := newTestMachine(t, 0x8334) // ADD V3, V3
	m.Registers[3] = 0x90
	stepN(t, m, 1)

	assert.Equal(t, uint8(0x20), m.Registers[3])
	assert.Equal(t, uint8(1), m.Registers[0xF])
}

func TestFlagRegisterAsDestination(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vf, vy uint8
		want   uint8
	}{
		{"ADD VF, Vy result replaces carry", 0x8F14, 0xFF, 0x02, 0x01},
		{"SUB VF, Vy result replaces flag", 0x8F15, 0x05, 0x02, 0x03},
		{"SHR VF result replaces shifted bit", 0x8F06, 0x03, 0x00, 0x01},
		{"SHL VF result replaces shifted bit", 0x8F0E, 0x81, 0x00, 0x02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.Registers[0xF] = tt.vf
			m.Registers[1] = tt.vy
			m.Registers[0] = tt.vy
			stepN(t, m, 1)

			assert.Equal(t, tt.want, m.Registers[0xF])
		})
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		v1, v2 uint8
		skip   bool
	}{
		{"SE byte equal", 0x3142, 0x42, 0, true},
		{"SE byte not equal", 0x3142, 0x41, 0, false},
		{"SNE byte equal", 0x4142, 0x42, 0, false},
		{"SNE byte not equal", 0x4142, 0x41, 0, true},
		{"SE register equal", 0x5120, 0x10, 0x10, true},
		{"SE register not equal", 0x5120, 0x10, 0x11, false},
		{"SNE register equal", 0x9120, 0x10, 0x10, false},
		{"SNE register not equal", 0x9120, 0x10, 0x11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.Registers[1] = tt.v1
			m.Registers[2] = tt.v2
			stepN(t, m, 1)

			want := uint16(ProgramStart + 2)
			if tt.skip {
				want += 2
			}
			assert.Equal(t, want, m.PC)
		})
	}
}

func TestJumps(t *testing.T) {
	t.Run("JP addr", func(t *testing.T) {
		m := newTestMachine(t, 0x1ABC)
		stepN(t, m, 1)
		assert.Equal(t, uint16(0xABC), m.PC)
	})

	t.Run("JP V0, addr", func(t *testing.T) {
		m := newTestMachine(t, 0xB300)
		m.Registers[0] = 0x24
		stepN(t, m, 1)
		assert.Equal(t, uint16(0x324), m.PC)
	})
}

func TestCallReturn(t *testing.T) {
	// 0x200: CALL 0x206
	// 0x202: LD V0, 0x01
	// 0x204: JP 0x204
	// 0x206: RET
	m := newTestMachine(t, 0x2206, 0x6001, 0x1204, 0x00EE)

	stepN(t, m, 1)
	assert.Equal(t, uint16(0x206), m.PC)
	assert.Equal(t, uint8(1), m.SP)
	assert.Equal(t, uint16(0x202), m.Stack[0])

	stepN(t, m, 1)
	assert.Equal(t, uint16(0x202), m.PC)
	assert.Equal(t, uint8(0), m.SP)

	stepN(t, m, 1)
	assert.Equal(t, uint8(1), m.Registers[0])
}

func TestStackOverflow(t *testing.T) {
	m := newTestMachine(t, 0x2200) // CALL 0x200 recursively

	stepN(t, m, StackLevels)
	assert.Equal(t, uint8(StackLevels), m.SP)

	err := m.Step()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.True(t, m.Halted())
	assert.Equal(t, uint8(StackLevels), m.SP)

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(ProgramStart), fault.PC)
	assert.Equal(t, uint16(0x2200), fault.Opcode)
}

func TestStackUnderflow(t *testing.T) {
	m := newTestMachine(t, 0x00EE)

	err := m.Step()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, uint8(0), m.SP)
	assert.Equal(t, uint16(ProgramStart+2), m.PC)
}

func TestLoadIndex(t *testing.T) {
	m := newTestMachine(t, 0xA123, 0x6510, 0xF51E)
	stepN(t, m, 1)
	assert.Equal(t, uint16(0x123), m.Index)

	stepN(t, m, 2)
	assert.Equal(t, uint16(0x133), m.Index)
}

func TestRandom(t *testing.T) {
	m := newTestMachine(t, 0xC40F, 0xC400)

	state := m.Rand.State()
	want := RandomByte(&state) & 0x0F

	stepN(t, m, 1)
	assert.Equal(t, want, m.Registers[4])
	assert.Equal(t, state, m.Rand.State())

	stepN(t, m, 1)
	assert.Equal(t, uint8(0), m.Registers[4])
}

func TestClearScreen(t *testing.T) {
	m := newTestMachine(t, 0x00E0)
	for i := range m.Video {
		if i%3 == 0 {
			m.Video[i] = PixelOn
		}
	}
	stepN(t, m, 1)

	for _, pixel := range m.Video {
		assert.Equal(t, PixelOff, pixel)
	}
}

// glyphZero is the expected screen pattern of the font sprite for digit 0.
var glyphZero = []string{
	"####....",
	"#..#....",
	"#..#....",
	"#..#....",
	"####....",
}

func TestDrawFontGlyph(t *testing.T) {
	// LD F, V0 ; DRW V1, V2, 5 ; DRW V1, V2, 5
	m := newTestMachine(t, 0xF029, 0xD125, 0xD125)
	m.Registers[0xF] = 1

	stepN(t, m, 2)
	assert.Equal(t, uint16(FontStart), m.Index)
	assert.Equal(t, uint8(0), m.Registers[0xF])

	for y, line := range glyphZero {
		for x, c := range line {
			assert.Equal(t, c == '#', m.PixelLit(x, y), "pixel mismatch")
		}
	}

	stepN(t, m, 1)
	assert.Equal(t, uint8(1), m.Registers[0xF])
	for _, pixel := range m.Video {
		assert.Equal(t, PixelOff, pixel)
	}
}

func TestDrawAnchorWraps(t *testing.T) {
	m := newTestMachine(t, 0xA300, 0xD011)
	m.Memory[0x300] = 0x80
	m.Registers[0] = VideoWidth + 3
	m.Registers[1] = VideoHeight*2 + 5
	stepN(t, m, 2)

	assert.True(t, m.PixelLit(3, 5))
}

func TestDrawClipsAtEdges(t *testing.T) {
	m := newTestMachine(t, 0xA300, 0xD012)
	m.Memory[0x300] = 0xFF
	m.Memory[0x301] = 0xFF
	m.Registers[0] = VideoWidth - 2
	m.Registers[1] = VideoHeight - 1
	stepN(t, m, 2)

	lit := 0
	for _, pixel := range m.Video {
		if pixel == PixelOn {
			lit++
		}
	}
	assert.Equal(t, 2, lit)
	assert.True(t, m.PixelLit(VideoWidth-2, VideoHeight-1))
	assert.True(t, m.PixelLit(VideoWidth-1, VideoHeight-1))
	assert.False(t, m.PixelLit(0, 0))
	assert.False(t, m.PixelLit(0, VideoHeight-1))
	assert.Equal(t, uint8(0), m.Registers[0xF])
}

func TestDrawCollisionPartialOverlap(t *testing.T) {
	m := newTestMachine(t, 0xA300, 0xD011, 0xD201)
	m.Memory[0x300] = 0xC0 // two pixels
	m.Registers[2] = 1
	stepN(t, m, 2)
	assert.Equal(t, uint8(0), m.Registers[0xF])

	stepN(t, m, 1)
	assert.Equal(t, uint8(1), m.Registers[0xF])
	assert.True(t, m.PixelLit(0, 0))
	assert.False(t, m.PixelLit(1, 0))
	assert.True(t, m.PixelLit(2, 0))
}

func TestDrawSpriteOutOfMemory(t *testing.T) {
	m := newTestMachine(t, 0xAFFE, 0xD003)
	stepN(t, m, 1)

	err := m.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
	for _, pixel := range m.Video {
		assert.Equal(t, PixelOff, pixel)
	}
}

func TestKeySkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		key    uint8
		down   bool
		skip   bool
	}{
		{"SKP pressed", 0xE59E, 0x7, true, true},
		{"SKP released", 0xE59E, 0x7, false, false},
		{"SKNP pressed", 0xE5A1, 0x7, true, false},
		{"SKNP released", 0xE5A1, 0x7, false, true},
		{"SKP uses low nibble", 0xE59E, 0x17, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.Registers[5] = tt.key
			m.Keypad[tt.key&0x0F] = tt.down
			stepN(t, m, 1)

			want := uint16(ProgramStart + 2)
			if tt.skip {
				want += 2
			}
			assert.Equal(t, want, m.PC)
		})
	}
}

func TestWaitForKey(t *testing.T) {
	m := newTestMachine(t, 0xF30A)

	stepN(t, m, 3)
	assert.Equal(t, uint16(ProgramStart), m.PC)

	m.Keypad[0xC] = true
	m.Keypad[0xE] = true
	stepN(t, m, 1)
	assert.Equal(t, uint16(ProgramStart+2), m.PC)
	assert.Equal(t, uint8(0xC), m.Registers[3])
}

func TestTimerInstructions(t *testing.T) {
	// LD V1, 0x10 ; LD DT, V1 ; LD ST, V1 ; LD V2, DT
	m := newTestMachine(t, 0x6110, 0xF115, 0xF118, 0xF207)

	// timers tick at the end of the cycle that set them
	stepN(t, m, 2)
	assert.Equal(t, uint8(0x0F), m.DelayTimer)

	stepN(t, m, 1)
	assert.Equal(t, uint8(0x0E), m.DelayTimer)
	assert.Equal(t, uint8(0x0F), m.SoundTimer)

	stepN(t, m, 1)
	assert.Equal(t, uint8(0x0E), m.Registers[2])
}

func TestStoreBCD(t *testing.T) {
	tests := []struct {
		value uint8
		want  []byte
	}{
		{0, []byte{0, 0, 0}},
		{7, []byte{0, 0, 7}},
		{42, []byte{0, 4, 2}},
		{255, []byte{2, 5, 5}},
	}

	for _, tt := range tests {
		m := newTestMachine(t, 0xA400, 0xF633)
		m.Registers[6] = tt.value
		stepN(t, m, 2)

		assert.True(t, bytes.Equal(tt.want, m.Memory[0x400:0x403]))
		assert.Equal(t, uint16(0x400), m.Index)
	}
}

func TestStoreLoadRegisters(t *testing.T) {
	t.Run("store inclusive range", func(t *testing.T) {
		m := newTestMachine(t, 0xA400, 0xF355)
		for i := range m.Registers {
			m.Registers[i] = uint8(i + 1)
		}
		stepN(t, m, 2)

		assert.True(t, bytes.Equal([]byte{1, 2, 3, 4, 0}, m.Memory[0x400:0x405]))
		assert.Equal(t, uint16(0x400), m.Index)
	})

	t.Run("load inclusive range", func(t *testing.T) {
		m := newTestMachine(t, 0xA400, 0xF265)
		copy(m.Memory[0x400:], []byte{9, 8, 7, 6})
		m.Registers[3] = 0x55
		stepN(t, m, 2)

		assert.Equal(t, uint8(9), m.Registers[0])
		assert.Equal(t, uint8(8), m.Registers[1])
		assert.Equal(t, uint8(7), m.Registers[2])
		assert.Equal(t, uint8(0x55), m.Registers[3])
	})

	t.Run("store beyond memory faults", func(t *testing.T) {
		m := newTestMachine(t, 0xAFFE, 0xF255)
		m.Registers[0] = 0x11
		stepN(t, m, 1)

		err := m.Step()
		assert.True(t, errors.Is(err, ErrAddressOutOfRange))
		assert.Equal(t, uint8(0), m.Memory[0xFFE])
	})

	t.Run("load beyond memory faults", func(t *testing.T) {
		m := newTestMachine(t, 0xAFFF, 0xF165)
		stepN(t, m, 1)

		err := m.Step()
		assert.True(t, errors.Is(err, ErrAddressOutOfRange))
	})
}
