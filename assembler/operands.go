package assembler

import (
	"strconv"
	"strings"
)

type OperandKind int

const (
	Empty OperandKind = iota
	Accumulator
	Register
	RegisterPair
	Condition
	Immediate
	LabelRef
)

func (k OperandKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Accumulator:
		return "accumulator"
	case Register:
		return "register"
	case RegisterPair:
		return "register pair"
	case Condition:
		return "condition"
	case Immediate:
		return "immediate"
	case LabelRef:
		return "label"
	}
	return "unknown"
}

func (k OperandKind) IsEmpty() bool { return k == Empty }

// IsRegister is true for any 8-bit register, the accumulator included.
func (k OperandKind) IsRegister() bool { return k == Accumulator || k == Register }

// IsValue is true for operands that produce an 8-bit value: a register or an immediate.
func (k OperandKind) IsValue() bool { return k.IsRegister() || k == Immediate }

// IsAddress is true for operands that can name a 16-bit address.
func (k OperandKind) IsAddress() bool { return k == Immediate || k == LabelRef }

var RegisterNameMap = map[string]byte{
	"b": 0,
	"c": 1,
	"d": 2,
	"e": 3,
	"h": 4,
	"l": 5,
	"a": 7,
}

var PairNameMap = map[string]byte{
	"bc": 0,
	"de": 1,
	"hl": 2,
	"sp": 3,
	"af": 3,
}

var ConditionNameMap = map[string]byte{
	"nz": 0,
	"z":  1,
	"nc": 2,
	"c":  3,
	"po": 4,
	"pe": 5,
	"p":  6,
	"m":  7,
}

// Classify maps an operand token to its kind. Register spellings win over condition spellings,
// so "c" is a register here; encoders with a condition slot use ClassifyCondition instead.
func Classify(token string) OperandKind {
	token = strings.TrimSpace(token)
	if token == "" {
		return Empty
	}

	if _, ok := parseNumber(token); ok {
		return Immediate
	}

	lower := strings.ToLower(token)
	if _, ok := RegisterNameMap[lower]; ok {
		if lower == "a" {
			return Accumulator
		}
		return Register
	}

	if _, ok := PairNameMap[lower]; ok {
		return RegisterPair
	}

	if _, ok := ConditionNameMap[lower]; ok {
		return Condition
	}

	return LabelRef
}

// ClassifyCondition classifies a token sitting in a condition slot, where "c" means carry.
func ClassifyCondition(token string) OperandKind {
	if _, ok := ConditionNameMap[strings.ToLower(strings.TrimSpace(token))]; ok {
		return Condition
	}
	return Classify(token)
}

func registerIndex(token string) byte {
	return RegisterNameMap[strings.ToLower(strings.TrimSpace(token))]
}

func pairIndex(token string) byte {
	return PairNameMap[strings.ToLower(strings.TrimSpace(token))]
}

func conditionIndex(token string) byte {
	return ConditionNameMap[strings.ToLower(strings.TrimSpace(token))]
}

// parseNumber accepts decimal digits, $FF / 0xFF / 0FFh hexadecimal and %1010 binary.
func parseNumber(token string) (uint64, bool) {
	if token == "" {
		return 0, false
	}

	digits, base := token, 10
	switch {
	case strings.HasPrefix(token, "$"):
		digits, base = token[1:], 16
	case len(token) > 2 && token[0] == '0' && (token[1] == 'x' || token[1] == 'X'):
		digits, base = token[2:], 16
	case strings.HasPrefix(token, "%"):
		digits, base = token[1:], 2
	case len(token) > 1 && (token[len(token)-1] == 'h' || token[len(token)-1] == 'H') && token[0] >= '0' && token[0] <= '9':
		digits, base = token[:len(token)-1], 16
	}

	if digits == "" {
		return 0, false
	}
	for _, char := range digits {
		if !isDigitInBase(char, base) {
			return 0, false
		}
	}

	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		// digits were valid, so the only failure left is overflow
		return ^uint64(0), true
	}
	return value, true
}

func isDigitInBase(char rune, base int) bool {
	switch base {
	case 2:
		return char == '0' || char == '1'
	case 16:
		return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'f') || (char >= 'A' && char <= 'F')
	}
	return char >= '0' && char <= '9'
}
