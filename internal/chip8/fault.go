package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow is the cause of a fault when a call exceeds the stack depth.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is the cause of a fault when returning with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrAddressOutOfRange is the cause of a fault when an instruction accesses
	// memory beyond the 4KB address space.
	ErrAddressOutOfRange = errors.New("address out of range")
	// ErrROMTooLarge is returned when a ROM does not fit into program space.
	ErrROMTooLarge = errors.New("rom too large")
)

// Fault describes a condition that halted the machine.
type Fault struct {
	PC     uint16 // address of the faulting instruction
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at $%03X (opcode %04X): %s", f.PC, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// ROMSizeError is returned when a ROM is larger than MaxROMSize.
type ROMSizeError struct {
	Size int
}

func (e *ROMSizeError) Error() string {
	return fmt.Sprintf("%s: %d bytes, maximum is %d", ErrROMTooLarge, e.Size, MaxROMSize)
}

func (e *ROMSizeError) Unwrap() error {
	return ErrROMTooLarge
}
