package assembler

// opcode prefixes
const (
	PREFIX_CB = 0xCB
	PREFIX_ED = 0xED
)

func makeRegisterInstruction(base, src byte) []byte {
	return []byte{base | src}
}

func makeLoadInstruction(dst, src byte) []byte {
	return []byte{0x40 | (dst << 3) | src}
}

func makeImmediateInstruction(opcode, imm byte) []byte {
	return []byte{opcode, imm}
}

func makeLoadImmediateInstruction(dst, imm byte) []byte {
	return []byte{0x06 | (dst << 3), imm}
}

func makePairInstruction(base, pair byte) []byte {
	return []byte{base | (pair << 4)}
}

// makeAbsoluteInstruction stores the address little-endian after the opcode.
func makeAbsoluteInstruction(opcode byte, address uint16) []byte {
	return []byte{opcode, byte(address), byte(address >> 8)}
}

func makeBitInstruction(base, bit, reg byte) []byte {
	return []byte{PREFIX_CB, base | (bit << 3) | reg}
}

func makeRelativeInstruction(opcode byte, displacement int8) []byte {
	return []byte{opcode, byte(displacement)}
}

// relativeDisplacement is the signed offset from the byte after a two-byte branch at address.
func relativeDisplacement(address uint32, target uint16) int {
	return int(target) - int(address+2)
}

func DecodeRelativeTarget(address uint16, displacement byte) uint16 {
	return address + 2 + uint16(int8(displacement))
}

func DecodeAbsoluteTarget(bytes []byte) (uint16, bool) {
	if len(bytes) != 3 {
		return 0, false
	}
	return uint16(bytes[1]) | uint16(bytes[2])<<8, true
}

// IsRelativeBranch reports whether an encoded instruction is jr, jr cc or djnz.
func IsRelativeBranch(bytes []byte) bool {
	if len(bytes) != 2 {
		return false
	}
	switch bytes[0] {
	case 0x10, 0x18, 0x20, 0x28, 0x30, 0x38:
		return true
	}
	return false
}
