package assembler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"
)

const addressSpace = 0x10000

func encodeLine(state *AssemblyState, symbols SymbolView, p ParsedLine) (EncodedInstruction, error) {
	encode, ok := encoders[p.Mnemonic]
	if !ok {
		return EncodedInstruction{}, Errors.UnknownMnemonic(p.Mnemonic)
	}
	return encode(&encodeContext{state: state, symbols: symbols, line: p})
}

// lineError attaches a line number to err, wrapping foreign errors as malformed lines.
func lineError(err error, line int) *AssemblyError {
	var asmErr *AssemblyError
	if !errors.As(err, &asmErr) {
		asmErr = &AssemblyError{Kind: MalformedLine, Message: err.Error()}
	}
	asmErr.Line = line
	return asmErr
}

func (a *AssembledResult) firstPass(state *AssemblyState, lines []SourceLine) {
	state.Pass = FirstPass
	state.Address = 0
	glog.V(1).Infof("Beginning %s over %d lines", state.Pass, len(lines))

	record := func(err error, line int) {
		state.Errors = append(state.Errors, lineError(err, line))
	}

	for i, line := range lines {
		a.lineAddresses[i] = state.Address
		p := ParseLine(line.Text)
		if p.IsEmpty() {
			continue
		}

		if p.MissingLabel {
			record(Errors.MissingLabel(), line.Number)
		} else if p.Label != "" {
			if !checkValidLabelName(p.Label) {
				record(Errors.InvalidLabelName(p.Label), line.Number)
			} else if state.Address >= addressSpace {
				record(Errors.ProgramTooLarge(state.Address), line.Number)
			} else if err := state.Symbols.Define(p.Label, uint16(state.Address)); err != nil {
				record(err, line.Number)
			} else {
				a.LabelToLineNumber[p.Label] = line.Number
				glog.V(1).Infof("Defining %q at $%04X", p.Label, state.Address)
			}
		}

		if p.Mnemonic == "" {
			if p.Operand2 != "" || len(p.Extra) > 0 || p.MissingOperand {
				record(Errors.MissingMnemonic(), line.Number)
			}
			continue
		}

		if _, err := encodeLine(state, nil, p); err != nil {
			record(err, line.Number)
			continue
		}

		if state.Address > addressSpace {
			record(Errors.ProgramTooLarge(state.Address), line.Number)
		}
	}

	glog.V(1).Infof("Finished %s: %d bytes, %d labels, %d errors", state.Pass, state.Address, state.Symbols.Len(), len(state.Errors))
}

// secondPass replays every line against the completed symbol table. The first error is fatal.
func (a *AssembledResult) secondPass(state *AssemblyState, lines []SourceLine) *AssemblyError {
	state.Pass = SecondPass
	state.Address = 0
	symbols := state.Symbols.View()
	glog.V(1).Infof("Beginning %s", state.Pass)

	for i, line := range lines {
		p := ParseLine(line.Text)
		if p.IsEmpty() {
			continue
		}

		if state.Address != a.lineAddresses[i] {
			return lineError(Errors.PassMismatch(a.lineAddresses[i], state.Address), line.Number)
		}
		if p.Label != "" {
			if addr, ok := symbols.Lookup(p.Label); !ok || uint32(addr) != state.Address {
				return lineError(Errors.PassMismatch(uint32(addr), state.Address), line.Number)
			}
		}
		if p.Mnemonic == "" {
			continue
		}

		start := state.Address
		encoded, err := encodeLine(state, symbols, p)
		if err != nil {
			return lineError(err, line.Number)
		}

		a.AddressToLine[uint16(start)] = line.Number
		a.Instructions = append(a.Instructions, EncodedLine{
			Line:    line.Number,
			Address: uint16(start),
			Bytes:   encoded.Bytes,
			Source:  strings.TrimSpace(line.Text),
		})
	}

	glog.V(1).Infof("Finished %s: %d instructions", state.Pass, len(a.Instructions))
	return nil
}

func (a *AssembledResult) fail(errs []*AssemblyError) {
	a.Errors = errs
	a.Instructions = nil
	a.AddressToLine = make(map[uint16]int)
	for _, err := range errs {
		lineText := ""
		if err.Line > 0 && err.Line <= len(a.fileContents) {
			lineText = a.fileContents[err.Line-1]
		}
		a.Diagnostics = append(a.Diagnostics, err.Diagnostic(lineText))
	}
}

// Assemble runs both passes over input. Pass 2 only runs when pass 1 reported no errors; on any
// failure the result carries the errors and no instructions.
func Assemble(input string) (res *AssembledResult) {
	res = new(AssembledResult)
	res.Labels = make(map[string]uint16)
	res.LabelToLineNumber = make(map[string]int)
	res.AddressToLine = make(map[uint16]int)

	lines := splitSourceLines(input)
	res.fileContents = make([]string, len(lines))
	for i, line := range lines {
		res.fileContents[i] = line.Text
	}
	res.lineAddresses = make([]uint32, len(lines))

	state := &AssemblyState{Symbols: NewSymbolTable()}

	res.Stage = StagePass1Running
	res.firstPass(state, lines)
	res.Labels = state.Symbols.Map()
	if len(state.Errors) > 0 {
		res.Stage = StagePass1Failed
		res.fail(state.Errors)
		return
	}
	res.Stage = StagePass1Succeeded

	res.Stage = StagePass2Running
	if err := res.secondPass(state, lines); err != nil {
		res.Stage = StagePass2Failed
		res.fail([]*AssemblyError{err})
		return
	}
	res.Stage = StagePass2Succeeded
	return
}

func (a *AssembledResult) Failed() bool {
	return len(a.Errors) > 0
}

// Directives renders the program as one "dc" directive per instruction.
func (a *AssembledResult) Directives() string {
	if a.Failed() {
		return ""
	}
	var sb strings.Builder
	for _, inst := range a.Instructions {
		sb.WriteString(formatDirective(inst.Bytes))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Bytes returns the flat program image.
func (a *AssembledResult) Bytes() []byte {
	if a.Failed() {
		return nil
	}
	out := make([]byte, 0, len(a.Instructions)*2)
	for _, inst := range a.Instructions {
		out = append(out, inst.Bytes...)
	}
	return out
}

// Listing renders address, bytes and source for every emitted instruction.
func (a *AssembledResult) Listing() []string {
	listing := make([]string, 0, len(a.Instructions))
	for _, inst := range a.Instructions {
		hexParts := make([]string, len(inst.Bytes))
		for i, b := range inst.Bytes {
			hexParts[i] = fmt.Sprintf("%02X", b)
		}
		listing = append(listing, fmt.Sprintf("%04X  %-9s %s", inst.Address, strings.Join(hexParts, " "), inst.Source))
	}
	return listing
}

// FileLine returns the source text of a 1-based line number.
func (a *AssembledResult) FileLine(line int) string {
	if line < 1 || line > len(a.fileContents) {
		return ""
	}
	return a.fileContents[line-1]
}
