package chip8

// Operand fields of the current opcode.

func (m *Machine) x() uint8 {
	return uint8((m.Opcode & 0x0F00) >> 8)
}

func (m *Machine) y() uint8 {
	return uint8((m.Opcode & 0x00F0) >> 4)
}

func (m *Machine) kk() uint8 {
	return uint8(m.Opcode & 0x00FF)
}

func (m *Machine) nnn() uint16 {
	return m.Opcode & 0x0FFF
}

func (m *Machine) n() uint8 {
	return uint8(m.Opcode & 0x000F)
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += opcodeSize
	}
}

// halt stops the machine on a fault caused by the instruction just fetched.
func (m *Machine) halt(err error) error {
	m.fault = &Fault{
		PC:     m.PC - opcodeSize,
		Opcode: m.Opcode,
		Err:    err,
	}
	return m.fault
}

// checkRange verifies that length bytes starting at address are addressable.
func (m *Machine) checkRange(address uint16, length int) error {
	if int(address)+length > MemorySize {
		return m.halt(ErrAddressOutOfRange)
	}
	return nil
}

// 00E0 - CLS
func (m *Machine) opCLS() error {
	m.Video = [VideoSize]uint32{}
	return nil
}

// 00EE - RET
func (m *Machine) opRET() error {
	if m.SP == 0 {
		return m.halt(ErrStackUnderflow)
	}
	m.SP--
	m.PC = m.Stack[m.SP]
	return nil
}

// 1nnn - JP addr
func (m *Machine) opJP() error {
	m.PC = m.nnn()
	return nil
}

// 2nnn - CALL addr
func (m *Machine) opCALL() error {
	if m.SP >= StackLevels {
		return m.halt(ErrStackOverflow)
	}
	m.Stack[m.SP] = m.PC
	m.SP++
	m.PC = m.nnn()
	return nil
}

// 3xkk - SE Vx, byte
func (m *Machine) opSEByte() error {
	m.skipIf(m.Registers[m.x()] == m.kk())
	return nil
}

// 4xkk - SNE Vx, byte
func (m *Machine) opSNEByte() error {
	m.skipIf(m.Registers[m.x()] != m.kk())
	return nil
}

// 5xy0 - SE Vx, Vy
func (m *Machine) opSERegister() error {
	m.skipIf(m.Registers[m.x()] == m.Registers[m.y()])
	return nil
}

// 6xkk - LD Vx, byte
func (m *Machine) opLDByte() error {
	m.Registers[m.x()] = m.kk()
	return nil
}

// 7xkk - ADD Vx, byte
func (m *Machine) opADDByte() error {
	m.Registers[m.x()] += m.kk()
	return nil
}

// 8xy0 - LD Vx, Vy
func (m *Machine) opLDRegister() error {
	m.Registers[m.x()] = m.Registers[m.y()]
	return nil
}

// 8xy1 - OR Vx, Vy
func (m *Machine) opOR() error {
	m.Registers[m.x()] |= m.Registers[m.y()]
	return nil
}

// 8xy2 - AND Vx, Vy
func (m *Machine) opAND() error {
	m.Registers[m.x()] &= m.Registers[m.y()]
	return nil
}

// 8xy3 - XOR Vx, Vy
func (m *Machine) opXOR() error {
	m.Registers[m.x()] ^= m.Registers[m.y()]
	return nil
}

// setFlagged writes the flag register first and the result second, so a
// result targeting VF replaces the flag.
func (m *Machine) setFlagged(x, result uint8, flag bool) {
	if flag {
		m.Registers[flagRegister] = 1
	} else {
		m.Registers[flagRegister] = 0
	}
	m.Registers[x] = result
}

// 8xy4 - ADD Vx, Vy
func (m *Machine) opADDRegister() error {
	x := m.x()
	sum := uint16(m.Registers[x]) + uint16(m.Registers[m.y()])
	m.setFlagged(x, uint8(sum), sum > 0xFF)
	return nil
}

// 8xy5 - SUB Vx, Vy
func (m *Machine) opSUB() error {
	x := m.x()
	vx, vy := m.Registers[x], m.Registers[m.y()]
	m.setFlagged(x, vx-vy, vx >= vy)
	return nil
}

// 8xy6 - SHR Vx
func (m *Machine) opSHR() error {
	x := m.x()
	vx := m.Registers[x]
	m.setFlagged(x, vx>>1, vx&0x01 != 0)
	return nil
}

// 8xy7 - SUBN Vx, Vy
func (m *Machine) opSUBN() error {
	x := m.x()
	vx, vy := m.Registers[x], m.Registers[m.y()]
	m.setFlagged(x, vy-vx, vy >= vx)
	return nil
}

// 8xyE - SHL Vx
func (m *Machine) opSHL() error {
	x := m.x()
	vx := m.Registers[x]
	m.setFlagged(x, vx<<1, vx&0x80 != 0)
	return nil
}

// 9xy0 - SNE Vx, Vy
func (m *Machine) opSNERegister() error {
	m.skipIf(m.Registers[m.x()] != m.Registers[m.y()])
	return nil
}

// Annn - LD I, addr
func (m *Machine) opLDIndex() error {
	m.Index = m.nnn()
	return nil
}

// Bnnn - JP V0, addr
func (m *Machine) opJPOffset() error {
	m.PC = uint16(m.Registers[0]) + m.nnn()
	return nil
}

// Cxkk - RND Vx, byte
func (m *Machine) opRND() error {
	m.Registers[m.x()] = m.Rand.Byte() & m.kk()
	return nil
}

// Dxyn - DRW Vx, Vy, nibble
//
// The sprite anchor wraps around the screen, the sprite pixels do not:
// pixels beyond the right or bottom edge are clipped.
func (m *Machine) opDRW() error {
	height := int(m.n())
	if err := m.checkRange(m.Index, height); err != nil {
		return err
	}

	xPos := int(m.Registers[m.x()]) % VideoWidth
	yPos := int(m.Registers[m.y()]) % VideoHeight

	var collision bool
	for row := 0; row < height && yPos+row < VideoHeight; row++ {
		spriteByte := m.Memory[int(m.Index)+row]
		line := (yPos + row) * VideoWidth

		for col := 0; col < 8 && xPos+col < VideoWidth; col++ {
			if spriteByte&(0x80>>col) == 0 {
				continue
			}
			pixel := &m.Video[line+xPos+col]
			if *pixel == PixelOn {
				collision = true
			}
			*pixel ^= PixelOn
		}
	}

	if collision {
		m.Registers[flagRegister] = 1
	} else {
		m.Registers[flagRegister] = 0
	}
	return nil
}

// keyDown returns the state of the key selected by the low nibble of Vx.
func (m *Machine) keyDown() bool {
	key := m.Registers[m.x()] & 0x0F
	return m.Keypad[key]
}

// Ex9E - SKP Vx
func (m *Machine) opSKP() error {
	m.skipIf(m.keyDown())
	return nil
}

// ExA1 - SKNP Vx
func (m *Machine) opSKNP() error {
	m.skipIf(!m.keyDown())
	return nil
}

// Fx07 - LD Vx, DT
func (m *Machine) opLDDelay() error {
	m.Registers[m.x()] = m.DelayTimer
	return nil
}

// Fx0A - LD Vx, K
//
// Without a pressed key the program counter is rewound so that the
// instruction executes again in the next cycle.
func (m *Machine) opLDKey() error {
	for key, down := range m.Keypad {
		if down {
			m.Registers[m.x()] = uint8(key)
			return nil
		}
	}
	m.PC -= opcodeSize
	return nil
}

// Fx15 - LD DT, Vx
func (m *Machine) opSetDelay() error {
	m.DelayTimer = m.Registers[m.x()]
	return nil
}

// Fx18 - LD ST, Vx
func (m *Machine) opSetSound() error {
	m.SoundTimer = m.Registers[m.x()]
	return nil
}

// Fx1E - ADD I, Vx
func (m *Machine) opADDIndex() error {
	m.Index += uint16(m.Registers[m.x()])
	return nil
}

// Fx29 - LD F, Vx
func (m *Machine) opLDFont() error {
	m.Index = FontStart + FontGlyphSize*uint16(m.Registers[m.x()])
	return nil
}

// Fx33 - LD B, Vx
func (m *Machine) opLDBCD() error {
	if err := m.checkRange(m.Index, 3); err != nil {
		return err
	}

	value := m.Registers[m.x()]
	m.Memory[m.Index] = value / 100
	m.Memory[m.Index+1] = value / 10 % 10
	m.Memory[m.Index+2] = value % 10
	return nil
}

// Fx55 - LD [I], Vx
func (m *Machine) opStoreRegisters() error {
	count := int(m.x()) + 1
	if err := m.checkRange(m.Index, count); err != nil {
		return err
	}
	copy(m.Memory[m.Index:], m.Registers[:count])
	return nil
}

// Fx65 - LD Vx, [I]
func (m *Machine) opLoadRegisters() error {
	count := int(m.x()) + 1
	if err := m.checkRange(m.Index, count); err != nil {
		return err
	}
	copy(m.Registers[:count], m.Memory[m.Index:])
	return nil
}
