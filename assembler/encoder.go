package assembler

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

type encodeFunc func(ctx *encodeContext) (EncodedInstruction, error)

// encoders is the mnemonic dispatch table, filled once in init.
var encoders map[string]encodeFunc

// operand formats, used in error messages and hover text
var operandFormats = map[string]string{
	"ld":   "ld <reg>, <reg|imm8> or ld <pair>, <imm16|label>",
	"add":  "add a, <reg|imm8> or add hl, <pair>",
	"adc":  "adc a, <reg|imm8>",
	"sbc":  "sbc a, <reg|imm8>",
	"sub":  "sub <reg|imm8>",
	"and":  "and <reg|imm8>",
	"xor":  "xor <reg|imm8>",
	"or":   "or <reg|imm8>",
	"cp":   "cp <reg|imm8>",
	"inc":  "inc <reg|pair>",
	"dec":  "dec <reg|pair>",
	"bit":  "bit <0-7>, <reg>",
	"set":  "set <0-7>, <reg>",
	"res":  "res <0-7>, <reg>",
	"push": "push <bc|de|hl|af>",
	"pop":  "pop <bc|de|hl|af>",
	"jp":   "jp <imm16|label> or jp <cond>, <imm16|label>",
	"call": "call <imm16|label> or call <cond>, <imm16|label>",
	"ret":  "ret or ret <cond>",
	"rst":  "rst <0|8|16|24|32|40|48|56>",
	"jr":   "jr <label> or jr <nz|z|nc|c>, <label>",
	"djnz": "djnz <label>",
}

// instructions without operands
var fixedOpcodes = map[string][]byte{
	"nop":  {0x00},
	"daa":  {0x27},
	"cpl":  {0x2F},
	"ccf":  {0x3F},
	"scf":  {0x37},
	"halt": {0x76},
	"di":   {0xF3},
	"ei":   {0xFB},
	"exx":  {0xD9},
	"rlca": {0x07},
	"rrca": {0x0F},
	"rla":  {0x17},
	"rra":  {0x1F},
	"neg":  {PREFIX_ED, 0x44},
	"reti": {PREFIX_ED, 0x4D},
	"retn": {PREFIX_ED, 0x45},
}

type aluOpcodes struct {
	register  byte
	immediate byte
}

// single operand accumulator arithmetic
var accumulatorOps = map[string]aluOpcodes{
	"sub": {0x90, 0xD6},
	"and": {0xA0, 0xE6},
	"xor": {0xA8, 0xEE},
	"or":  {0xB0, 0xF6},
	"cp":  {0xB8, 0xFE},
}

// arithmetic written with an explicit "a," destination
var explicitAccumulatorOps = map[string]aluOpcodes{
	"add": {0x80, 0xC6},
	"adc": {0x88, 0xCE},
	"sbc": {0x98, 0xDE},
}

var bitOpcodes = map[string]byte{
	"bit": 0x40,
	"res": 0x80,
	"set": 0xC0,
}

func init() {
	encoders = map[string]encodeFunc{
		"ld":   encodeLoad,
		"add":  encodeAdd,
		"inc":  encodeIncDec(0x04, 0x03),
		"dec":  encodeIncDec(0x05, 0x0B),
		"push": encodeStack(0xC5),
		"pop":  encodeStack(0xC1),
		"jp":   encodeAbsoluteBranch(0xC3, 0xC2),
		"call": encodeAbsoluteBranch(0xCD, 0xC4),
		"ret":  encodeReturn,
		"rst":  encodeRestart,
		"jr":   encodeJumpRelative,
		"djnz": encodeDecrementJump,
	}

	for name, opcode := range fixedOpcodes {
		encoders[name] = encodeFixed(opcode)
	}
	for name, ops := range accumulatorOps {
		encoders[name] = encodeAccumulator(ops)
	}
	for name, ops := range explicitAccumulatorOps {
		if _, ok := encoders[name]; !ok {
			encoders[name] = encodeExplicitAccumulator(ops)
		}
	}
	for name, base := range bitOpcodes {
		encoders[name] = encodeBit(base)
	}
}

// IsMnemonic reports whether the assembler knows the mnemonic.
func IsMnemonic(mnemonic string) bool {
	_, ok := encoders[strings.ToLower(mnemonic)]
	return ok
}

type encodeContext struct {
	state   *AssemblyState
	symbols SymbolView
	line    ParsedLine
}

func (ctx *encodeContext) invalid() error {
	return Errors.InvalidOperands(ctx.line.Mnemonic, operandFormats[ctx.line.Mnemonic])
}

// operands classifies both operand slots, failing when surplus tokens are present.
func (ctx *encodeContext) operands() (OperandKind, OperandKind, error) {
	if len(ctx.line.Extra) > 0 || ctx.line.MissingOperand {
		return Empty, Empty, ctx.invalid()
	}
	return Classify(ctx.line.Operand1), Classify(ctx.line.Operand2), nil
}

// emit advances the address counter. Bytes are only kept in pass 2.
func (ctx *encodeContext) emit(code []byte) (EncodedInstruction, error) {
	start := ctx.state.Address
	ctx.state.Address += uint32(len(code))
	if ctx.state.Pass != SecondPass {
		return EncodedInstruction{Size: len(code)}, nil
	}
	glog.V(2).Infof("emit %X at $%04X", code, start)
	return EncodedInstruction{Size: len(code), Bytes: code}, nil
}

func (ctx *encodeContext) immediate(token string, max uint64) (uint64, error) {
	value, ok := parseNumber(strings.TrimSpace(token))
	if !ok {
		return 0, ctx.invalid()
	}
	if value > max {
		return 0, Errors.ImmediateOutOfRange(token, 0, int(max))
	}
	return value, nil
}

func (ctx *encodeContext) immediate8(token string) (byte, error) {
	value, err := ctx.immediate(token, 0xFF)
	return byte(value), err
}

// address resolves an immediate or label to a 16-bit address. Labels resolve to 0 in pass 1,
// because forward references are not known yet and only the size matters.
func (ctx *encodeContext) address(token string) (uint16, error) {
	token = strings.TrimSpace(token)
	switch Classify(token) {
	case Immediate:
		value, err := ctx.immediate(token, 0xFFFF)
		return uint16(value), err
	case LabelRef:
		if !checkValidSymbolName(token) {
			return 0, ctx.invalid()
		}
		if ctx.state.Pass != SecondPass {
			return 0, nil
		}
		return ctx.symbols.Resolve(token)
	}
	return 0, ctx.invalid()
}

func (ctx *encodeContext) displacement(token string) (int8, error) {
	target, err := ctx.address(token)
	if err != nil {
		return 0, err
	}
	if Classify(token) == LabelRef && ctx.state.Pass != SecondPass {
		return 0, nil
	}

	d := relativeDisplacement(ctx.state.Address, target)
	if d < -128 || d > 127 {
		return 0, Errors.BranchTooFar(strings.TrimSpace(token), d)
	}
	return int8(d), nil
}

func encodeFixed(opcode []byte) encodeFunc {
	return func(ctx *encodeContext) (EncodedInstruction, error) {
		first, second, err := ctx.operands()
		if err != nil {
			return EncodedInstruction{}, err
		}
		if !first.IsEmpty() || !second.IsEmpty() {
			return EncodedInstruction{}, Errors.UnexpectedOperands(ctx.line.Mnemonic)
		}
		return ctx.emit(append([]byte(nil), opcode...))
	}
}

func encodeLoad(ctx *encodeContext) (EncodedInstruction, error) {
	dst, src, err := ctx.operands()
	if err != nil {
		return EncodedInstruction{}, err
	}

	switch {
	case dst.IsRegister() && src.IsRegister():
		return ctx.emit(makeLoadInstruction(registerIndex(ctx.line.Operand1), registerIndex(ctx.line.Operand2)))
	case dst.IsRegister() && src == Immediate:
		imm, err := ctx.immediate8(ctx.line.Operand2)
		if err != nil {
			return EncodedInstruction{}, err
		}
		return ctx.emit(makeLoadImmediateInstruction(registerIndex(ctx.line.Operand1), imm))
	case dst == RegisterPair && !isPair(ctx.line.Operand1, "af") && src.IsAddress():
		addr, err := ctx.address(ctx.line.Operand2)
		if err != nil {
			return EncodedInstruction{}, err
		}
		return ctx.emit(makeAbsoluteInstruction(0x01|(pairIndex(ctx.line.Operand1)<<4), addr))
	}
	return EncodedInstruction{}, ctx.invalid()
}

func encodeAdd(ctx *encodeContext) (EncodedInstruction, error) {
	dst, src, err := ctx.operands()
	if err != nil {
		return EncodedInstruction{}, err
	}

	if dst == RegisterPair && isPair(ctx.line.Operand1, "hl") {
		if src != RegisterPair || isPair(ctx.line.Operand2, "af") {
			return EncodedInstruction{}, ctx.invalid()
		}
		return ctx.emit(makePairInstruction(0x09, pairIndex(ctx.line.Operand2)))
	}
	return encodeExplicitAccumulator(explicitAccumulatorOps["add"])(ctx)
}

func encodeExplicitAccumulator(ops aluOpcodes) encodeFunc {
	return func(ctx *encodeContext) (EncodedInstruction, error) {
		dst, src, err := ctx.operands()
		if err != nil {
			return EncodedInstruction{}, err
		}
		if dst != Accumulator || !src.IsValue() {
			return EncodedInstruction{}, ctx.invalid()
		}
		return emitAccumulatorSource(ctx, ops, ctx.line.Operand2, src)
	}
}

func encodeAccumulator(ops aluOpcodes) encodeFunc {
	return func(ctx *encodeContext) (EncodedInstruction, error) {
		src, second, err := ctx.operands()
		if err != nil {
			return EncodedInstruction{}, err
		}
		if !src.IsValue() || !second.IsEmpty() {
			return EncodedInstruction{}, ctx.invalid()
		}
		return emitAccumulatorSource(ctx, ops, ctx.line.Operand1, src)
	}
}

func emitAccumulatorSource(ctx *encodeContext, ops aluOpcodes, token string, kind OperandKind) (EncodedInstruction, error) {
	if kind.IsRegister() {
		return ctx.emit(makeRegisterInstruction(ops.register, registerIndex(token)))
	}
	imm, err := ctx.immediate8(token)
	if err != nil {
		return EncodedInstruction{}, err
	}
	return ctx.emit(makeImmediateInstruction(ops.immediate, imm))
}

func encodeIncDec(registerBase, pairBase byte) encodeFunc {
	return func(ctx *encodeContext) (EncodedInstruction, error) {
		target, second, err := ctx.operands()
		if err != nil {
			return EncodedInstruction{}, err
		}
		if !second.IsEmpty() {
			return EncodedInstruction{}, ctx.invalid()
		}

		switch {
		case target.IsRegister():
			return ctx.emit([]byte{registerBase | (registerIndex(ctx.line.Operand1) << 3)})
		case target == RegisterPair && !isPair(ctx.line.Operand1, "af"):
			return ctx.emit(makePairInstruction(pairBase, pairIndex(ctx.line.Operand1)))
		}
		return EncodedInstruction{}, ctx.invalid()
	}
}

func encodeBit(base byte) encodeFunc {
	return func(ctx *encodeContext) (EncodedInstruction, error) {
		bit, reg, err := ctx.operands()
		if err != nil {
			return EncodedInstruction{}, err
		}
		if bit != Immediate || !reg.IsRegister() {
			return EncodedInstruction{}, ctx.invalid()
		}

		index, err := ctx.immediate(ctx.line.Operand1, 7)
		if err != nil {
			return EncodedInstruction{}, err
		}
		return ctx.emit(makeBitInstruction(base, byte(index), registerIndex(ctx.line.Operand2)))
	}
}

func encodeStack(base byte) encodeFunc {
	return func(ctx *encodeContext) (EncodedInstruction, error) {
		pair, second, err := ctx.operands()
		if err != nil {
			return EncodedInstruction{}, err
		}
		if pair != RegisterPair || isPair(ctx.line.Operand1, "sp") || !second.IsEmpty() {
			return EncodedInstruction{}, ctx.invalid()
		}
		return ctx.emit(makePairInstruction(base, pairIndex(ctx.line.Operand1)))
	}
}

func encodeAbsoluteBranch(unconditional, conditional byte) encodeFunc {
	return func(ctx *encodeContext) (EncodedInstruction, error) {
		if len(ctx.line.Extra) > 0 || ctx.line.MissingOperand {
			return EncodedInstruction{}, ctx.invalid()
		}

		if ctx.line.Operand2 == "" {
			if !Classify(ctx.line.Operand1).IsAddress() {
				return EncodedInstruction{}, ctx.invalid()
			}
			addr, err := ctx.address(ctx.line.Operand1)
			if err != nil {
				return EncodedInstruction{}, err
			}
			return ctx.emit(makeAbsoluteInstruction(unconditional, addr))
		}

		if ClassifyCondition(ctx.line.Operand1) != Condition || !Classify(ctx.line.Operand2).IsAddress() {
			return EncodedInstruction{}, ctx.invalid()
		}
		addr, err := ctx.address(ctx.line.Operand2)
		if err != nil {
			return EncodedInstruction{}, err
		}
		return ctx.emit(makeAbsoluteInstruction(conditional|(conditionIndex(ctx.line.Operand1)<<3), addr))
	}
}

func encodeReturn(ctx *encodeContext) (EncodedInstruction, error) {
	if len(ctx.line.Extra) > 0 || ctx.line.MissingOperand || ctx.line.Operand2 != "" {
		return EncodedInstruction{}, ctx.invalid()
	}
	if ctx.line.Operand1 == "" {
		return ctx.emit([]byte{0xC9})
	}
	if ClassifyCondition(ctx.line.Operand1) != Condition {
		return EncodedInstruction{}, ctx.invalid()
	}
	return ctx.emit([]byte{0xC0 | (conditionIndex(ctx.line.Operand1) << 3)})
}

func encodeRestart(ctx *encodeContext) (EncodedInstruction, error) {
	vector, second, err := ctx.operands()
	if err != nil {
		return EncodedInstruction{}, err
	}
	if vector != Immediate || !second.IsEmpty() {
		return EncodedInstruction{}, ctx.invalid()
	}

	value, _ := parseNumber(strings.TrimSpace(ctx.line.Operand1))
	if value > 0x38 || value%8 != 0 {
		return EncodedInstruction{}, Errors.InvalidRestart(ctx.line.Operand1)
	}
	return ctx.emit([]byte{0xC7 | byte(value)})
}

// jr only accepts the first four conditions
var relativeConditionOpcodes = map[string]byte{
	"nz": 0x20,
	"z":  0x28,
	"nc": 0x30,
	"c":  0x38,
}

func encodeJumpRelative(ctx *encodeContext) (EncodedInstruction, error) {
	if len(ctx.line.Extra) > 0 || ctx.line.MissingOperand {
		return EncodedInstruction{}, ctx.invalid()
	}

	opcode := byte(0x18)
	target := ctx.line.Operand1
	if ctx.line.Operand2 != "" {
		cond, ok := relativeConditionOpcodes[strings.ToLower(strings.TrimSpace(ctx.line.Operand1))]
		if !ok {
			return EncodedInstruction{}, ctx.invalid()
		}
		opcode = cond
		target = ctx.line.Operand2
	}

	if !Classify(target).IsAddress() {
		return EncodedInstruction{}, ctx.invalid()
	}
	d, err := ctx.displacement(target)
	if err != nil {
		return EncodedInstruction{}, err
	}
	return ctx.emit(makeRelativeInstruction(opcode, d))
}

func encodeDecrementJump(ctx *encodeContext) (EncodedInstruction, error) {
	target, second, err := ctx.operands()
	if err != nil {
		return EncodedInstruction{}, err
	}
	if !target.IsAddress() || !second.IsEmpty() {
		return EncodedInstruction{}, ctx.invalid()
	}
	d, err := ctx.displacement(ctx.line.Operand1)
	if err != nil {
		return EncodedInstruction{}, err
	}
	return ctx.emit(makeRelativeInstruction(0x10, d))
}

func isPair(token, name string) bool {
	return strings.EqualFold(strings.TrimSpace(token), name)
}

// formatDirective renders one instruction as "dc\t$XX,$XX".
func formatDirective(code []byte) string {
	parts := make([]string, len(code))
	for i, b := range code {
		parts[i] = fmt.Sprintf("$%02X", b)
	}
	return "dc\t" + strings.Join(parts, ",")
}
