// Package cpu implements the 8-bit teaching computer and its assembler.
//
// The machine has 256 bytes of memory, a program counter (PC), two
// general registers (A, B), an output latch (O), a carry flag (C) and a
// zero flag (Z). Every register and memory write wraps modulo 256.
//
// Instructions are one opcode byte, optionally followed by one operand
// byte that is either an address or an immediate value. The engine fetches
// the opcode at PC, advances PC, consumes the operand (if any), then applies
// the instruction. Execution stops at HLT; a halted machine stays halted.
//
// The assembler turns a line oriented source into a Program listing whose
// Binary() is loaded into memory at address 0.
package cpu
