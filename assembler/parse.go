package assembler

import (
	"strings"
)

// ParseLine splits one source line into its label, mnemonic and operands. It never fails;
// shapes that make no sense are rejected later by the encoder's operand checks.
func ParseLine(raw string) ParsedLine {
	p := ParsedLine{}

	line := strings.TrimLeft(raw, " \t")
	if i := strings.Index(line, ";"); i != -1 {
		line = line[:i]
	}
	line = strings.TrimRight(line, " \t\r")
	if line == "" {
		return p
	}

	parts := strings.Split(line, ",")
	if len(parts) == 2 {
		p.Operand2 = strings.TrimSpace(parts[1])
		p.MissingOperand = p.Operand2 == ""
	} else if len(parts) > 2 {
		for _, extra := range parts[1:] {
			p.Extra = append(p.Extra, strings.TrimSpace(extra))
		}
	}

	tokens := strings.FieldsFunc(parts[0], func(r rune) bool {
		return r == ' ' || r == '\t'
	})
	if len(tokens) == 0 {
		p.MissingOperand = len(parts) > 1
		return p
	}

	if colon := strings.Index(tokens[0], ":"); colon != -1 {
		p.Label = tokens[0][:colon]
		p.MissingLabel = p.Label == ""
		rest := tokens[0][colon+1:]
		if rest != "" {
			tokens[0] = rest
		} else {
			tokens = tokens[1:]
		}
	}

	if len(tokens) == 0 {
		return p
	}

	p.Mnemonic = strings.ToLower(tokens[0])
	operands := tokens[1:]
	if len(operands) == 0 && len(parts) > 1 {
		p.MissingOperand = true
	}
	if len(operands) > 0 {
		// the final token is the first operand, anything between it and the mnemonic is surplus
		p.Operand1 = operands[len(operands)-1]
		if len(operands) > 1 {
			p.Extra = append(operands[:len(operands)-1:len(operands)-1], p.Extra...)
		}
	}

	return p
}

// checkValidLabelName is checkValidSymbolName, also rejecting names that read as registers,
// register pairs or conditions, since a reference to them could never resolve.
func checkValidLabelName(str string) bool {
	return checkValidSymbolName(str) && Classify(str) == LabelRef
}

func checkValidSymbolName(str string) bool {
	if len(str) == 0 {
		return false
	}

	// must only contain alphanumeric characters and underscores, and not start with a digit
	for i, char := range str {
		if i == 0 && char >= '0' && char <= '9' {
			return false
		}
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return false
		}
	}

	return true
}

// splitSourceLines breaks a source text into numbered lines, dropping carriage returns.
func splitSourceLines(source string) []SourceLine {
	raw := strings.Split(source, "\n")
	lines := make([]SourceLine, len(raw))
	for i, text := range raw {
		lines[i] = SourceLine{Text: strings.TrimRight(text, "\r"), Number: i + 1}
	}
	return lines
}
