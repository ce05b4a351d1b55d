package assembler

type hoverInfoFormatsType struct {
	labelDefinition string
	labelReference  string
	integerLiteral  string
	encoding        string
	branchTarget    string

	// registers
	accumulator   string
	register      string
	registerPair  string
	stackPointer  string
	accumulatorAF string
	condition     string

	// instructions, by mnemonic
	instructions map[string]string
}

var conditionDescriptions = map[string]string{
	"nz": "Not Zero, the zero flag is clear",
	"z":  "Zero, the zero flag is set",
	"nc": "No Carry, the carry flag is clear",
	"c":  "Carry, the carry flag is set",
	"po": "Parity Odd, the parity/overflow flag is clear",
	"pe": "Parity Even, the parity/overflow flag is set",
	"p":  "Plus, the sign flag is clear",
	"m":  "Minus, the sign flag is set",
}

var hoverInfoFormats = hoverInfoFormatsType{
	labelDefinition: "Definition of label `%s`.\n\nAddress `$%04X`",
	labelReference:  "Reference to label `%s`\n\nEvaluates to `$%04X`",
	integerLiteral:  "Integer Literal `%d` (`$%X`)",
	encoding:        "\n\nEncodes to `%s` at `$%04X`",
	branchTarget:    ", branching to `$%04X`",

	accumulator:   "Accumulator `a`\n\n8-Bit register that is the implicit destination of arithmetic and logic instructions",
	register:      "Register `%s`. 8-Bit General Purpose Register",
	registerPair:  "Register Pair `%s`. 16-Bit register formed from `%c` (high) and `%c` (low)",
	stackPointer:  "Stack Pointer `sp`\n\nContains the address of the top of the stack",
	accumulatorAF: "Register Pair `af`\n\nThe accumulator and the flags register, only usable with `push` and `pop`",
	condition:     "Condition `%s`\n\n%s",

	instructions: map[string]string{
		"nop":  "No Operation Instruction.\n\nFormat: `nop`",
		"halt": "Halt Instruction.\n\nFormat: `halt`\n\nSuspends the CPU until an interrupt or reset arrives.",
		"di":   "Disable Interrupts Instruction.\n\nFormat: `di`",
		"ei":   "Enable Interrupts Instruction.\n\nFormat: `ei`",
		"daa":  "Decimal Adjust Accumulator Instruction.\n\nFormat: `daa`\n\nCorrects `a` to packed BCD after an addition or subtraction.",
		"cpl":  "Complement Accumulator Instruction.\n\nFormat: `cpl`\n\nExample: `cpl` is the same as `a = ^a`",
		"neg":  "Negate Accumulator Instruction.\n\nFormat: `neg`\n\nExample: `neg` is the same as `a = 0 - a`",
		"ccf":  "Complement Carry Flag Instruction.\n\nFormat: `ccf`",
		"scf":  "Set Carry Flag Instruction.\n\nFormat: `scf`",
		"exx":  "Exchange Instruction.\n\nFormat: `exx`\n\nSwaps `bc`, `de` and `hl` with their shadow registers.",
		"rlca": "Rotate Left Circular Accumulator Instruction.\n\nFormat: `rlca`",
		"rrca": "Rotate Right Circular Accumulator Instruction.\n\nFormat: `rrca`",
		"rla":  "Rotate Left Accumulator Instruction.\n\nFormat: `rla`\n\nRotates `a` left through the carry flag.",
		"rra":  "Rotate Right Accumulator Instruction.\n\nFormat: `rra`\n\nRotates `a` right through the carry flag.",
		"reti": "Return from Interrupt Instruction.\n\nFormat: `reti`",
		"retn": "Return from Non-Maskable Interrupt Instruction.\n\nFormat: `retn`",

		"ld":  "Load Instruction.\n\nFormat: `ld <reg>, <reg|imm8>` or `ld <pair>, <imm16|label>`\n\nExample: `ld b, 10` is the same as `b = 10`",
		"add": "Addition Instruction.\n\nFormat: `add a, <reg|imm8>` or `add hl, <pair>`\n\nExample: `add a, b` is the same as `a = a + b`",
		"adc": "Addition with Carry Instruction.\n\nFormat: `adc a, <reg|imm8>`\n\nExample: `adc a, b` is the same as `a = a + b + carry`",
		"sbc": "Subtraction with Carry Instruction.\n\nFormat: `sbc a, <reg|imm8>`\n\nExample: `sbc a, b` is the same as `a = a - b - carry`",
		"sub": "Subtraction Instruction.\n\nFormat: `sub <reg|imm8>`\n\nExample: `sub b` is the same as `a = a - b`",
		"and": "AND Instruction.\n\nFormat: `and <reg|imm8>`\n\nExample: `and b` is the same as `a = a & b`",
		"xor": "XOR Instruction.\n\nFormat: `xor <reg|imm8>`\n\nExample: `xor a` is the same as `a = 0`",
		"or":  "OR Instruction.\n\nFormat: `or <reg|imm8>`\n\nExample: `or b` is the same as `a = a | b`",
		"cp":  "Compare Instruction.\n\nFormat: `cp <reg|imm8>`\n\nSubtracts the operand from `a` and sets the flags, discarding the result.",
		"inc": "Increment Instruction.\n\nFormat: `inc <reg|pair>`\n\nExample: `inc hl` is the same as `hl = hl + 1`",
		"dec": "Decrement Instruction.\n\nFormat: `dec <reg|pair>`\n\nExample: `dec b` is the same as `b = b - 1`",

		"bit": "Bit Test Instruction.\n\nFormat: `bit <0-7>, <reg>`\n\nSets the zero flag when the selected bit is clear.",
		"set": "Set Bit Instruction.\n\nFormat: `set <0-7>, <reg>`\n\nExample: `set 3, b` is the same as `b = b | (1 << 3)`",
		"res": "Reset Bit Instruction.\n\nFormat: `res <0-7>, <reg>`\n\nExample: `res 3, b` is the same as `b = b & ^(1 << 3)`",

		"push": "Push Instruction.\n\nFormat: `push <bc|de|hl|af>`\n\nExample: `push bc` is the same as `sp = sp - 2; mem[sp] = bc`",
		"pop":  "Pop Instruction.\n\nFormat: `pop <bc|de|hl|af>`\n\nExample: `pop bc` is the same as `bc = mem[sp]; sp = sp + 2`",

		"jp":   "Jump Instruction.\n\nFormat: `jp <imm16|label>` or `jp <cond>, <imm16|label>`\n\nThe target address is stored little-endian after the opcode.",
		"call": "Call Instruction.\n\nFormat: `call <imm16|label>` or `call <cond>, <imm16|label>`\n\nPushes the return address and jumps to the target.",
		"ret":  "Return Instruction.\n\nFormat: `ret` or `ret <cond>`",
		"rst":  "Restart Instruction.\n\nFormat: `rst <vector>`\n\nCalls one of the fixed addresses 0, 8, 16, 24, 32, 40, 48 or 56.",
		"jr":   "Jump Relative Instruction.\n\nFormat: `jr <label>` or `jr <nz|z|nc|c>, <label>`\n\nThe target must be within -128 to +127 bytes of the instruction that follows.",
		"djnz": "Decrement and Jump if Not Zero Instruction.\n\nFormat: `djnz <label>`\n\nExample: `djnz loop` is the same as `b = b - 1; if b != 0 { goto loop }`\n\nThe target must be within -128 to +127 bytes of the instruction that follows.",
	},
}
