package assembler

// SourceLine is one raw line of input together with its 1-based line number.
type SourceLine struct {
	Text   string
	Number int
}

// ParsedLine is the token tuple produced by ParseLine. Empty strings mean the slot is absent.
type ParsedLine struct {
	Label    string
	Mnemonic string
	Operand1 string
	Operand2 string
	Extra    []string // tokens that fit in neither operand slot

	MissingLabel   bool // a colon with no name before it
	MissingOperand bool // a comma with nothing on one side
}

func (p ParsedLine) IsEmpty() bool {
	return p.Label == "" && p.Mnemonic == "" && p.Operand1 == "" && p.Operand2 == "" && len(p.Extra) == 0 &&
		!p.MissingLabel && !p.MissingOperand
}

type Pass int

const (
	FirstPass Pass = iota + 1
	SecondPass
)

func (p Pass) String() string {
	switch p {
	case FirstPass:
		return "pass 1"
	case SecondPass:
		return "pass 2"
	}
	return "idle"
}

// Stage tracks where a run is in the two-pass protocol.
type Stage int

const (
	StageIdle Stage = iota
	StagePass1Running
	StagePass1Failed
	StagePass1Succeeded
	StagePass2Running
	StagePass2Succeeded
	StagePass2Failed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StagePass1Running:
		return "pass 1 running"
	case StagePass1Failed:
		return "pass 1 failed"
	case StagePass1Succeeded:
		return "pass 1 succeeded"
	case StagePass2Running:
		return "pass 2 running"
	case StagePass2Succeeded:
		return "pass 2 succeeded"
	case StagePass2Failed:
		return "pass 2 failed"
	}
	return "unknown"
}

// AssemblyState is the per-run mutable state. Exactly one exists per Assemble call.
type AssemblyState struct {
	Address uint32
	Pass    Pass
	Symbols *SymbolTable
	Errors  []*AssemblyError
}

type EncodedInstruction struct {
	Size  int
	Bytes []byte // nil during pass 1
}

// EncodedLine is an instruction emitted in pass 2, kept in source order.
type EncodedLine struct {
	Line    int
	Address uint16
	Bytes   []byte
	Source  string
}

type AssembledResult struct {
	Labels            map[string]uint16 // label name to address
	LabelToLineNumber map[string]int    // label name to line number (1-based)
	AddressToLine     map[uint16]int    // instruction address to line number (1-based)
	Instructions      []EncodedLine
	Errors            []*AssemblyError
	Diagnostics       []Diagnostic
	Stage             Stage
	fileContents      []string
	lineAddresses     []uint32 // pass 1 starting address of every line
}

type TextPosition struct {
	Line int `json:"line"`
	Char int `json:"character"`
}

type TextRange struct {
	Start TextPosition `json:"start"`
	End   TextPosition `json:"end"`
}

type CodeDescription struct {
	URL string `json:"href"`
}

type DiagnosticSeverity int

const (
	Error       DiagnosticSeverity = 1
	Warning     DiagnosticSeverity = 2
	Information DiagnosticSeverity = 3
	Hint        DiagnosticSeverity = 4
)

type Diagnostic struct {
	Range           TextRange          `json:"range"`
	Message         string             `json:"message"`
	Source          string             `json:"source,omitempty"`
	CodeDescription *CodeDescription   `json:"codeDescription,omitempty"`
	Severity        DiagnosticSeverity `json:"severity,omitempty"`
}
