package assembler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type ErrorKind int

const (
	InvalidOperands ErrorKind = iota + 1
	OutOfRange
	DuplicateLabel
	UnknownLabel
	MalformedLine
	PassMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidOperands:
		return "invalid operands"
	case OutOfRange:
		return "out of range"
	case DuplicateLabel:
		return "duplicate label"
	case UnknownLabel:
		return "unknown label"
	case MalformedLine:
		return "malformed line"
	case PassMismatch:
		return "pass mismatch"
	}
	return "error " + strconv.Itoa(int(k))
}

// AssemblyError is a line-scoped failure. Line is 1-based and is zero until the driver
// attaches the error to a line.
type AssemblyError struct {
	Kind    ErrorKind
	Line    int
	Message string
	Token   string // offending token, used to narrow the diagnostic range
}

func (e *AssemblyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// IsKind reports whether err is an *AssemblyError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var asmErr *AssemblyError
	return errors.As(err, &asmErr) && asmErr.Kind == kind
}

// Errors
type assemblyError struct{}

var Errors assemblyError

func (assemblyError) InvalidOperands(mnemonic string, format string) *AssemblyError {
	msg := "Not the operands for " + mnemonic
	if format != "" {
		msg += ", expected: " + format
	}
	return &AssemblyError{Kind: InvalidOperands, Message: msg}
}

func (assemblyError) ImmediateOutOfRange(value string, min, max int) *AssemblyError {
	return &AssemblyError{
		Kind:    OutOfRange,
		Message: "Immediate value \"" + value + "\" is out of range [" + strconv.Itoa(min) + ", " + strconv.Itoa(max) + "]",
		Token:   value,
	}
}

func (assemblyError) InvalidRestart(value string) *AssemblyError {
	return &AssemblyError{
		Kind:    OutOfRange,
		Message: "Restart vector \"" + value + "\" must be one of 0, 8, 16, 24, 32, 40, 48, 56",
		Token:   value,
	}
}

func (assemblyError) BranchTooFar(target string, displacement int) *AssemblyError {
	return &AssemblyError{
		Kind:    OutOfRange,
		Message: "Branch target \"" + target + "\" is too far away (displacement " + strconv.Itoa(displacement) + " outside [-128, 127])",
		Token:   target,
	}
}

func (assemblyError) ProgramTooLarge(address uint32) *AssemblyError {
	return &AssemblyError{
		Kind:    OutOfRange,
		Message: fmt.Sprintf("Program exceeds the 64K address space at $%X", address),
	}
}

func (assemblyError) DuplicateLabel(label string) *AssemblyError {
	return &AssemblyError{Kind: DuplicateLabel, Message: "Label: " + label + " already exists", Token: label}
}

func (assemblyError) UnknownLabel(label string) *AssemblyError {
	return &AssemblyError{Kind: UnknownLabel, Message: "Unknown label: \"" + label + "\"", Token: label}
}

func (assemblyError) InvalidLabelName(label string) *AssemblyError {
	return &AssemblyError{
		Kind:    MalformedLine,
		Message: "Invalid label name: \"" + label + "\", label names must only contain alphanumeric characters and underscores and cannot be a register or condition",
		Token:   label,
	}
}

func (assemblyError) MissingLabel() *AssemblyError {
	return &AssemblyError{Kind: MalformedLine, Message: "Missing label name before \":\"", Token: ":"}
}

func (assemblyError) UnexpectedOperands(mnemonic string) *AssemblyError {
	return &AssemblyError{Kind: InvalidOperands, Message: "Instruction " + mnemonic + " takes no operands", Token: mnemonic}
}

func (assemblyError) MissingMnemonic() *AssemblyError {
	return &AssemblyError{Kind: MalformedLine, Message: "Could not find an instruction on this line"}
}

func (assemblyError) UnknownMnemonic(mnemonic string) *AssemblyError {
	return &AssemblyError{Kind: MalformedLine, Message: "Invalid instruction: \"" + mnemonic + "\"", Token: mnemonic}
}

func (assemblyError) PassMismatch(pass1, pass2 uint32) *AssemblyError {
	return &AssemblyError{
		Kind:    PassMismatch,
		Message: fmt.Sprintf("Address diverged between passes: $%04X in pass 1, $%04X in pass 2", pass1, pass2),
	}
}

func AdjustRange(r TextRange, errorText string) (TextRange, string) {
	// Removes the leading and training whitespace from the error text, and adjusts the range accordingly
	text := errorText
	for len(text) > 0 && text[0] == ' ' {
		text = text[1:]
		r.Start.Char += 1
	}

	for len(text) > 0 && text[len(text)-1] == ' ' {
		text = text[:len(text)-1]
		r.End.Char -= 1
	}

	return r, text
}

// Diagnostic converts the error into an editor diagnostic spanning the offending token when it
// can be found on the line, and the whole statement otherwise.
func (e *AssemblyError) Diagnostic(lineText string) Diagnostic {
	lineIdx := e.Line - 1
	if lineIdx < 0 {
		lineIdx = 0
	}

	code := lineText
	if i := strings.Index(code, ";"); i != -1 {
		code = code[:i]
	}

	r := TextRange{
		Start: TextPosition{Line: lineIdx, Char: 0},
		End:   TextPosition{Line: lineIdx, Char: len(code)},
	}
	r, _ = AdjustRange(r, strings.ReplaceAll(code, "\t", " "))

	if e.Token != "" {
		if i := strings.Index(code, e.Token); i != -1 {
			r = TextRange{
				Start: TextPosition{Line: lineIdx, Char: i},
				End:   TextPosition{Line: lineIdx, Char: i + len(e.Token)},
			}
		}
	}

	return Diagnostic{
		Range:    r,
		Message:  e.Message,
		Source:   "Assembler",
		Severity: Error,
	}
}
