package chip8

// Step executes one execution cycle: fetch the opcode at the program counter,
// advance the program counter, execute the instruction and decrement the
// timers.
//
// A machine that faulted is halted: Step does not execute anything and
// returns the fault until Reset is called. The cycle that faults does not
// decrement the timers.
func (m *Machine) Step() error {
	if m.fault != nil {
		return m.fault
	}

	if int(m.PC) > MemorySize-opcodeSize {
		m.fault = &Fault{
			PC:  m.PC,
			Err: ErrAddressOutOfRange,
		}
		return m.fault
	}

	m.Opcode = uint16(m.Memory[m.PC])<<8 | uint16(m.Memory[m.PC+1])
	m.PC += opcodeSize

	if err := m.execute(); err != nil {
		return err
	}

	if m.DelayTimer > 0 {
		m.DelayTimer--
	}
	if m.SoundTimer > 0 {
		m.SoundTimer--
	}
	return nil
}
