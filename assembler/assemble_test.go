package assembler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/assembler"
)

func TestRoundTripVectors(t *testing.T) {
	cases := []struct {
		line     string
		expected []byte
	}{
		{"nop", []byte{0x00}},
		{"ld b, 5", []byte{0x06, 0x05}},
		{"add a, c", []byte{0x81}},
		{"push hl", []byte{0xE5}},
		{"bit 3, a", []byte{0xCB, 0x5F}},
		{"ret c", []byte{0xD8}},
		{"rst 8", []byte{0xCF}},
		{"call nc, 0x1234", []byte{0xD4, 0x34, 0x12}},
		{"jp m, 0", []byte{0xFA, 0x00, 0x00}},
		{"ld de, 65535", []byte{0x11, 0xFF, 0xFF}},
		{"dec de", []byte{0x1B}},
		{"sbc a, e", []byte{0x9B}},
	}

	for _, c := range cases {
		program := assembler.Assemble("\t" + c.line + "\n")
		if program.Failed() {
			t.Errorf("Expected %q to assemble, got %v", c.line, program.Errors)
			continue
		}
		if !bytes.Equal(program.Bytes(), c.expected) {
			t.Errorf("Expected %q to encode as % X, got % X", c.line, c.expected, program.Bytes())
		}
	}
}

func TestProgramLoads(t *testing.T) {
	source := `
	ld a, 5
	ld b, a
	ld hl, $1234
	ld sp, 0
	`
	expected := []byte{
		0x3E, 0x05,
		0x47,
		0x21, 0x34, 0x12,
		0x31, 0x00, 0x00,
	}

	program := assembler.Assemble(source)
	validateResult(t, program, expected, nil)
}

func TestProgramArithmetic(t *testing.T) {
	source := `
	add a, b
	add a, 10
	add hl, de
	adc a, c
	sbc a, 1
	sub d
	and $0F
	xor a
	or e
	cp 0x20
	inc b
	dec a
	inc hl
	dec sp
	`
	expected := []byte{
		0x80,
		0xC6, 0x0A,
		0x19,
		0x89,
		0xDE, 0x01,
		0x92,
		0xE6, 0x0F,
		0xAF,
		0xB3,
		0xFE, 0x20,
		0x04,
		0x3D,
		0x23,
		0x3B,
	}

	program := assembler.Assemble(source)
	validateResult(t, program, expected, nil)
}

func TestProgramBitOperations(t *testing.T) {
	source := `
	bit 7, a
	set 0, b
	res 3, h
	`
	expected := []byte{
		0xCB, 0x7F,
		0xCB, 0xC0,
		0xCB, 0x9C,
	}

	program := assembler.Assemble(source)
	validateResult(t, program, expected, nil)
}

func TestProgramFixedOpcodes(t *testing.T) {
	source := `
	nop
	halt
	di
	ei
	exx
	cpl
	neg
	reti
	`
	expected := []byte{0x00, 0x76, 0xF3, 0xFB, 0xD9, 0x2F, 0xED, 0x44, 0xED, 0x4D}

	program := assembler.Assemble(source)
	validateResult(t, program, expected, nil)
}

func TestProgramJumpsAndCalls(t *testing.T) {
	source := `
start:	nop
	jp start
	jp nz, end
	call sub1
	ret z
	rst $38
	push bc
	pop af
end:	ret
sub1:	ret
	`
	expected := []byte{
		0x00,
		0xC3, 0x00, 0x00,
		0xC2, 0x0E, 0x00,
		0xCD, 0x0F, 0x00,
		0xC8,
		0xFF,
		0xC5,
		0xF1,
		0xC9,
		0xC9,
	}

	program := assembler.Assemble(source)
	validateResult(t, program, expected, nil)

	if program.Labels["end"] != 0x0E {
		t.Errorf("Expected label end to be at 0x0E, got 0x%X", program.Labels["end"])
	}
	if program.Labels["sub1"] != 0x0F {
		t.Errorf("Expected label sub1 to be at 0x0F, got 0x%X", program.Labels["sub1"])
	}
}

func TestForwardRelativeJump(t *testing.T) {
	source := "\tjr skip\n\tnop\nskip:\tnop\n"
	expected := []byte{0x18, 0x01, 0x00, 0x00}

	program := assembler.Assemble(source)
	validateResult(t, program, expected, nil)
}

func TestBackwardRelativeJumps(t *testing.T) {
	source := `
loop:	dec b
	djnz loop
	jr c, loop
	`
	expected := []byte{
		0x05,
		0x10, 0xFD,
		0x38, 0xFB,
	}

	program := assembler.Assemble(source)
	validateResult(t, program, expected, nil)
}

func TestRelativeJumpLimits(t *testing.T) {
	// 127 bytes of padding puts the target exactly +127 past the jr
	forward := "\tjr far\n" + strings.Repeat("\tnop\n", 127) + "far:\tnop\n"
	program := assembler.Assemble(forward)
	if program.Failed() {
		t.Fatalf("Expected +127 to assemble, got %v", program.Errors)
	}
	if got := program.Bytes()[:2]; !bytes.Equal(got, []byte{0x18, 0x7F}) {
		t.Errorf("Expected 18 7F, got % X", got)
	}

	tooFarForward := "\tjr far\n" + strings.Repeat("\tnop\n", 128) + "far:\tnop\n"
	program = assembler.Assemble(tooFarForward)
	expectFailure(t, program, assembler.OutOfRange, 1, assembler.StagePass2Failed)

	backward := "back:\n" + strings.Repeat("\tnop\n", 126) + "\tjr back\n"
	program = assembler.Assemble(backward)
	if program.Failed() {
		t.Fatalf("Expected -128 to assemble, got %v", program.Errors)
	}
	image := program.Bytes()
	if got := image[len(image)-2:]; !bytes.Equal(got, []byte{0x18, 0x80}) {
		t.Errorf("Expected 18 80, got % X", got)
	}

	tooFarBackward := "back:\n" + strings.Repeat("\tnop\n", 127) + "\tdjnz back\n"
	program = assembler.Assemble(tooFarBackward)
	expectFailure(t, program, assembler.OutOfRange, 129, assembler.StagePass2Failed)
}

func TestUnknownLabel(t *testing.T) {
	program := assembler.Assemble("\tnop\n\tjp nowhere\n")
	expectFailure(t, program, assembler.UnknownLabel, 2, assembler.StagePass2Failed)

	if len(program.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(program.Diagnostics))
	}
	d := program.Diagnostics[0]
	if d.Range.Start.Line != 1 || d.Range.Start.Char != 4 || d.Range.End.Char != 11 {
		t.Errorf("Expected diagnostic over \"nowhere\", got %+v", d.Range)
	}
}

func TestLabelsAreCaseSensitive(t *testing.T) {
	program := assembler.Assemble("Loop:\tnop\n\tjp loop\n")
	expectFailure(t, program, assembler.UnknownLabel, 2, assembler.StagePass2Failed)
}

func TestDuplicateLabel(t *testing.T) {
	source := "a1:\tnop\na1:\tnop\n"

	program := assembler.Assemble(source)
	validateResult(t, program, nil, []assembler.Diagnostic{
		{
			Range: assembler.TextRange{
				Start: assembler.TextPosition{Line: 1, Char: 0},
				End:   assembler.TextPosition{Line: 1, Char: 2},
			},
			Message:  "Label: a1 already exists",
			Severity: assembler.Error,
		},
	})
	expectFailure(t, program, assembler.DuplicateLabel, 2, assembler.StagePass1Failed)
}

func TestBitIndexRange(t *testing.T) {
	program := assembler.Assemble("\tbit 8, a\n")
	expectFailure(t, program, assembler.OutOfRange, 1, assembler.StagePass1Failed)

	program = assembler.Assemble("\tbit 7, a\n")
	validateResult(t, program, []byte{0xCB, 0x7F}, nil)
}

func TestRejectedLines(t *testing.T) {
	cases := []struct {
		line string
		kind assembler.ErrorKind
	}{
		{"ld a, hl", assembler.InvalidOperands},
		{"add b, c", assembler.InvalidOperands},
		{"sub a, b", assembler.InvalidOperands},
		{"push sp", assembler.InvalidOperands},
		{"inc af", assembler.InvalidOperands},
		{"jr po, somewhere", assembler.InvalidOperands},
		{"nop a", assembler.InvalidOperands},
		{"ld b c d", assembler.InvalidOperands},
		{"pop af, bc", assembler.InvalidOperands},
		{"ld a, 1, 2", assembler.InvalidOperands},
		{"rst 9", assembler.OutOfRange},
		{"ld a, 256", assembler.OutOfRange},
		{"ld hl, $10000", assembler.OutOfRange},
		{"frob a", assembler.MalformedLine},
		{"lbl: , a", assembler.MalformedLine},
		{"9lbl: nop", assembler.MalformedLine},
		{": nop", assembler.MalformedLine},
		{"c: nop", assembler.MalformedLine},
		{"HL: nop", assembler.MalformedLine},
		{"nz:", assembler.MalformedLine},
		{"nop ,", assembler.InvalidOperands},
		{"ld a,", assembler.InvalidOperands},
		{"jp nz,", assembler.InvalidOperands},
		{"ret z,", assembler.InvalidOperands},
		{"jp (hl)", assembler.InvalidOperands},
		{"call $", assembler.InvalidOperands},
	}

	for _, c := range cases {
		program := assembler.Assemble(c.line)
		if !program.Failed() {
			t.Errorf("Expected %q to fail", c.line)
			continue
		}
		if program.Errors[0].Kind != c.kind {
			t.Errorf("Expected %q to fail with %s, got %s (%s)", c.line, c.kind, program.Errors[0].Kind, program.Errors[0].Message)
		}
		if program.Stage != assembler.StagePass1Failed {
			t.Errorf("Expected %q to fail in pass 1, got stage %s", c.line, program.Stage)
		}
	}
}

func TestInvalidLabelReferencesAreReportedPerLine(t *testing.T) {
	program := assembler.Assemble("\tjp (hl)\n\tjp (de)\n\tjr lo-op\n")
	if !program.Failed() {
		t.Fatalf("Expected assembly to fail")
	}
	if len(program.Errors) != 3 {
		t.Fatalf("Expected 3 errors, got %v", program.Errors)
	}
	for i, err := range program.Errors {
		if err.Line != i+1 || err.Kind != assembler.InvalidOperands {
			t.Errorf("Expected an invalid operands error on line %d, got %s on line %d", i+1, err.Kind, err.Line)
		}
	}
	if program.Stage != assembler.StagePass1Failed {
		t.Errorf("Expected stage %s, got %s", assembler.StagePass1Failed, program.Stage)
	}
}

func TestRegisterNamedLabel(t *testing.T) {
	program := assembler.Assemble("c:\tnop\n\tjp c\n")
	expectFailure(t, program, assembler.MalformedLine, 1, assembler.StagePass1Failed)
	if !strings.Contains(program.Errors[0].Message, "\"c\"") {
		t.Errorf("Expected the message to name the label, got %q", program.Errors[0].Message)
	}
}

func TestFixedInstructionWithOperands(t *testing.T) {
	program := assembler.Assemble("\tnop b\n")
	expectFailure(t, program, assembler.InvalidOperands, 1, assembler.StagePass1Failed)
	if program.Errors[0].Message != "Instruction nop takes no operands" {
		t.Errorf("Unexpected message %q", program.Errors[0].Message)
	}
}

func TestPassOneCollectsAllErrors(t *testing.T) {
	source := "\tld a, 256\n\tnop\n\tfrob\n\tbit 9, b\n"

	program := assembler.Assemble(source)
	if len(program.Errors) != 3 {
		t.Fatalf("Expected 3 errors, got %d (%v)", len(program.Errors), program.Errors)
	}

	lines := []int{1, 3, 4}
	for i, err := range program.Errors {
		if err.Line != lines[i] {
			t.Errorf("Expected error %d on line %d, got %d", i, lines[i], err.Line)
		}
	}
}

func TestLabelOnlyLine(t *testing.T) {
	program := assembler.Assemble("\tnop\nhere:\n\tjp here\n")
	validateResult(t, program, []byte{0x00, 0xC3, 0x01, 0x00}, nil)

	if program.LabelToLineNumber["here"] != 2 {
		t.Errorf("Expected label here on line 2, got %d", program.LabelToLineNumber["here"])
	}
}

func TestCaseAndNumberFormats(t *testing.T) {
	source := `
	LD A, $ff
	ld B, %1010
	Ld c, 0FFh
	ld d, 0x1f
	ADD HL, BC
	`
	expected := []byte{
		0x3E, 0xFF,
		0x06, 0x0A,
		0x0E, 0xFF,
		0x16, 0x1F,
		0x09,
	}

	program := assembler.Assemble(source)
	validateResult(t, program, expected, nil)
}

func TestCommentsAndBlankLines(t *testing.T) {
	source := "; header comment\n\n   \n\tnop ; trailing comment\n;\n"

	program := assembler.Assemble(source)
	validateResult(t, program, []byte{0x00}, nil)

	if program.AddressToLine[0] != 4 {
		t.Errorf("Expected address 0 to map to line 4, got %d", program.AddressToLine[0])
	}
}

func TestDirectives(t *testing.T) {
	program := assembler.Assemble("\tld hl, $1234\n\tnop\n")

	expected := "dc\t$21,$34,$12\ndc\t$00\n"
	if program.Directives() != expected {
		t.Errorf("Expected directives %q, got %q", expected, program.Directives())
	}
}

func TestListing(t *testing.T) {
	program := assembler.Assemble("\tld a, 5\n\tnop\n")

	listing := program.Listing()
	expected := []string{
		"0000  3E 05     ld a, 5",
		"0002  00        nop",
	}
	if len(listing) != len(expected) {
		t.Fatalf("Expected %d listing lines, got %d", len(expected), len(listing))
	}
	for i := range expected {
		if listing[i] != expected[i] {
			t.Errorf("Expected listing line %d to be %q, got %q", i, expected[i], listing[i])
		}
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	source := "loop:\tinc a\n\tcp 10\n\tjr nz, loop\n\tcall done\ndone:\thalt\n"

	first := assembler.Assemble(source)
	second := assembler.Assemble(source)
	if first.Failed() || second.Failed() {
		t.Fatalf("Expected both runs to succeed, got %v / %v", first.Errors, second.Errors)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("Expected identical images, got % X and % X", first.Bytes(), second.Bytes())
	}
	if first.Directives() != second.Directives() {
		t.Errorf("Expected identical directives")
	}
}

func TestProgramTooLarge(t *testing.T) {
	program := assembler.Assemble(strings.Repeat("nop\n", 0x10000))
	if program.Failed() {
		t.Fatalf("Expected a full 64K program to assemble, got %v", program.Errors[0])
	}

	program = assembler.Assemble(strings.Repeat("nop\n", 0x10001))
	expectFailure(t, program, assembler.OutOfRange, 0x10001, assembler.StagePass1Failed)
}

func expectFailure(t *testing.T, program *assembler.AssembledResult, kind assembler.ErrorKind, line int, stage assembler.Stage) {
	t.Helper()

	if !program.Failed() {
		t.Fatalf("Expected assembly to fail")
	}
	if !assembler.IsKind(program.Errors[0], kind) {
		t.Errorf("Expected a %s error, got %s (%s)", kind, program.Errors[0].Kind, program.Errors[0].Message)
	}
	if program.Errors[0].Line != line {
		t.Errorf("Expected error on line %d, got %d", line, program.Errors[0].Line)
	}
	if program.Stage != stage {
		t.Errorf("Expected stage %s, got %s", stage, program.Stage)
	}
	if len(program.Instructions) != 0 || program.Bytes() != nil || program.Directives() != "" {
		t.Errorf("Expected no output from a failed assembly")
	}
}

func validateResult(t *testing.T, program *assembler.AssembledResult, expected []byte, expectedDiagnostics []assembler.Diagnostic) {
	t.Helper()

	if len(program.Diagnostics) != len(expectedDiagnostics) {
		t.Fatalf("Expected %d diagnostics, got %d (%v)", len(expectedDiagnostics), len(program.Diagnostics), program.Diagnostics)
	}

	for i, diagnostic := range program.Diagnostics {
		if diagnostic.Severity != expectedDiagnostics[i].Severity {
			t.Errorf("Expected diagnostic %d to have severity %d, got %d", i, expectedDiagnostics[i].Severity, diagnostic.Severity)
		}

		if diagnostic.Range.Start.Line != expectedDiagnostics[i].Range.Start.Line {
			t.Errorf("Expected diagnostic %d to start on line %d, got %d", i, expectedDiagnostics[i].Range.Start.Line, diagnostic.Range.Start.Line)
		}

		if diagnostic.Range.Start.Char != expectedDiagnostics[i].Range.Start.Char {
			t.Errorf("Expected diagnostic %d to start on char %d, got %d", i, expectedDiagnostics[i].Range.Start.Char, diagnostic.Range.Start.Char)
		}

		if diagnostic.Range.End.Char != expectedDiagnostics[i].Range.End.Char {
			t.Errorf("Expected diagnostic %d to end on char %d, got %d", i, expectedDiagnostics[i].Range.End.Char, diagnostic.Range.End.Char)
		}

		if diagnostic.Message != expectedDiagnostics[i].Message {
			t.Errorf("Expected diagnostic %d to be \"%s\", got \"%s\"", i, expectedDiagnostics[i].Message, diagnostic.Message)
		}
	}

	image := program.Bytes()
	if len(image) != len(expected) {
		t.Fatalf("Expected %d bytes, got %d (% X)", len(expected), len(image), image)
	}

	for i, b := range image {
		if b != expected[i] {
			t.Errorf("Expected byte %d to be 0x%02X, got 0x%02X", i, expected[i], b)
		}
	}
}
