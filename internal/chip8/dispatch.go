package chip8

// handler executes the instruction stored in Machine.Opcode.
type handler func(*Machine) error

// tableFSize covers the low bytes of all Fx instructions, the highest being Fx65.
const tableFSize = 0x65 + 1

var (
	// mainTable is indexed by the highest nibble of the opcode.
	mainTable = [16]handler{
		0x0: (*Machine).dispatch0,
		0x1: (*Machine).opJP,
		0x2: (*Machine).opCALL,
		0x3: (*Machine).opSEByte,
		0x4: (*Machine).opSNEByte,
		0x5: (*Machine).opSERegister,
		0x6: (*Machine).opLDByte,
		0x7: (*Machine).opADDByte,
		0x8: (*Machine).dispatch8,
		0x9: (*Machine).opSNERegister,
		0xA: (*Machine).opLDIndex,
		0xB: (*Machine).opJPOffset,
		0xC: (*Machine).opRND,
		0xD: (*Machine).opDRW,
		0xE: (*Machine).dispatchE,
		0xF: (*Machine).dispatchF,
	}

	// table0, table8 and tableE are indexed by the lowest nibble of the opcode.
	table0 = newNibbleTable(map[int]handler{
		0x0: (*Machine).opCLS,
		0xE: (*Machine).opRET,
	})
	table8 = newNibbleTable(map[int]handler{
		0x0: (*Machine).opLDRegister,
		0x1: (*Machine).opOR,
		0x2: (*Machine).opAND,
		0x3: (*Machine).opXOR,
		0x4: (*Machine).opADDRegister,
		0x5: (*Machine).opSUB,
		0x6: (*Machine).opSHR,
		0x7: (*Machine).opSUBN,
		0xE: (*Machine).opSHL,
	})
	tableE = newNibbleTable(map[int]handler{
		0x1: (*Machine).opSKNP,
		0xE: (*Machine).opSKP,
	})

	// tableF is indexed by the low byte of the opcode.
	tableF = newByteTable(map[int]handler{
		0x07: (*Machine).opLDDelay,
		0x0A: (*Machine).opLDKey,
		0x15: (*Machine).opSetDelay,
		0x18: (*Machine).opSetSound,
		0x1E: (*Machine).opADDIndex,
		0x29: (*Machine).opLDFont,
		0x33: (*Machine).opLDBCD,
		0x55: (*Machine).opStoreRegisters,
		0x65: (*Machine).opLoadRegisters,
	})
)

func newNibbleTable(handlers map[int]handler) [16]handler {
	var table [16]handler
	for i := range table {
		table[i] = (*Machine).opNOP
	}
	for i, h := range handlers {
		table[i] = h
	}
	return table
}

func newByteTable(handlers map[int]handler) [tableFSize]handler {
	var table [tableFSize]handler
	for i := range table {
		table[i] = (*Machine).opNOP
	}
	for i, h := range handlers {
		table[i] = h
	}
	return table
}

// execute resolves the current opcode to its handler and runs it.
func (m *Machine) execute() error {
	return mainTable[m.Opcode>>12](m)
}

func (m *Machine) dispatch0() error {
	return table0[m.Opcode&0x000F](m)
}

func (m *Machine) dispatch8() error {
	return table8[m.Opcode&0x000F](m)
}

func (m *Machine) dispatchE() error {
	return tableE[m.Opcode&0x000F](m)
}

func (m *Machine) dispatchF() error {
	low := m.Opcode & 0x00FF
	if low >= tableFSize {
		return nil
	}
	return tableF[low](m)
}

// opNOP is the handler for opcodes without a defined instruction.
func (m *Machine) opNOP() error {
	return nil
}
