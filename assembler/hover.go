package assembler

import (
	"fmt"
	"strings"
)

func isHoverDelimiter(char byte) bool {
	return char == ' ' || char == '\t' || char == ',' || char == ':'
}

// tokenAt finds the bounds of the token covering char, if any.
func tokenAt(line string, char int) (int, int, bool) {
	if char < 0 || char >= len(line) || isHoverDelimiter(line[char]) {
		return 0, 0, false
	}

	start := char
	for start > 0 && !isHoverDelimiter(line[start-1]) {
		start--
	}
	end := char
	for end < len(line) && !isHoverDelimiter(line[end]) {
		end++
	}
	return start, end, true
}

func (a *AssembledResult) instructionOnLine(line int) (EncodedLine, bool) {
	for _, inst := range a.Instructions {
		if inst.Line == line {
			return inst, true
		}
	}
	return EncodedLine{}, false
}

// EvaluateHover returns markdown for the token under position, and false when there is nothing
// to show. position is 0-based, as sent by the editor.
func (a *AssembledResult) EvaluateHover(position TextPosition) (string, bool) {
	if position.Line < 0 || position.Line >= len(a.fileContents) {
		return "", false
	}

	line := a.fileContents[position.Line]

	// removing comments
	if commentIndex := strings.Index(line, ";"); commentIndex != -1 {
		line = line[:commentIndex]
	}

	start, end, ok := tokenAt(line, position.Char)
	if !ok {
		return "", false
	}
	token := line[start:end]
	p := ParseLine(line)

	codeStart := len(line) - len(strings.TrimLeft(line, " \t"))
	if p.Label != "" && start == codeStart && end < len(line) && line[end] == ':' {
		// the hover is over a label definition
		address, ok := a.Labels[p.Label]
		if !ok {
			return "", false
		}
		return fmt.Sprintf(hoverInfoFormats.labelDefinition, p.Label, address), true
	}

	if p.Mnemonic == "" {
		return "", false
	}

	mnemonicStart := codeStart
	if p.Label != "" {
		rest := line[strings.Index(line, ":")+1:]
		mnemonicStart = len(line) - len(strings.TrimLeft(rest, " \t"))
	}
	if start == mnemonicStart {
		info, ok := hoverInfoFormats.instructions[p.Mnemonic]
		if !ok {
			return "", false
		}
		if inst, ok := a.instructionOnLine(position.Line + 1); ok {
			info += fmt.Sprintf(hoverInfoFormats.encoding, strings.TrimPrefix(formatDirective(inst.Bytes), "dc\t"), inst.Address)
			if IsRelativeBranch(inst.Bytes) {
				info += fmt.Sprintf(hoverInfoFormats.branchTarget, DecodeRelativeTarget(inst.Address, inst.Bytes[1]))
			} else if target, ok := DecodeAbsoluteTarget(inst.Bytes); ok && (p.Mnemonic == "jp" || p.Mnemonic == "call") {
				info += fmt.Sprintf(hoverInfoFormats.branchTarget, target)
			}
		}
		return info, true
	}

	conditionSlot := token == p.Operand1 && (p.Operand2 != "" || p.Mnemonic == "ret")
	switch p.Mnemonic {
	case "jp", "call", "jr", "ret":
	default:
		conditionSlot = false
	}
	if conditionSlot && ClassifyCondition(token) == Condition {
		lower := strings.ToLower(token)
		return fmt.Sprintf(hoverInfoFormats.condition, lower, conditionDescriptions[lower]), true
	}

	return a.operandHover(token)
}

func (a *AssembledResult) operandHover(token string) (string, bool) {
	lower := strings.ToLower(token)
	switch Classify(token) {
	case Immediate:
		value, _ := parseNumber(token)
		return fmt.Sprintf(hoverInfoFormats.integerLiteral, value, value), true
	case Accumulator:
		return hoverInfoFormats.accumulator, true
	case Register:
		return fmt.Sprintf(hoverInfoFormats.register, lower), true
	case RegisterPair:
		switch lower {
		case "sp":
			return hoverInfoFormats.stackPointer, true
		case "af":
			return hoverInfoFormats.accumulatorAF, true
		}
		return fmt.Sprintf(hoverInfoFormats.registerPair, lower, lower[0], lower[1]), true
	case Condition:
		return fmt.Sprintf(hoverInfoFormats.condition, lower, conditionDescriptions[lower]), true
	case LabelRef:
		address, ok := a.Labels[token]
		if !ok {
			return "", false
		}
		return fmt.Sprintf(hoverInfoFormats.labelReference, token, address), true
	}
	return "", false
}
