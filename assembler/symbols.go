package assembler

import "sort"

// SymbolView is the read-only face of the symbol table handed to pass 2.
type SymbolView interface {
	Resolve(name string) (uint16, error)
	Lookup(name string) (uint16, bool)
}

// SymbolTable maps case-sensitive label names to addresses. It only grows during pass 1.
type SymbolTable struct {
	labels map[string]uint16
	order  []string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{labels: make(map[string]uint16)}
}

func (s *SymbolTable) Define(name string, address uint16) error {
	if _, exists := s.labels[name]; exists {
		return Errors.DuplicateLabel(name)
	}
	s.labels[name] = address
	s.order = append(s.order, name)
	return nil
}

func (s *SymbolTable) Resolve(name string) (uint16, error) {
	address, ok := s.labels[name]
	if !ok {
		return 0, Errors.UnknownLabel(name)
	}
	return address, nil
}

func (s *SymbolTable) Lookup(name string) (uint16, bool) {
	address, ok := s.labels[name]
	return address, ok
}

func (s *SymbolTable) Len() int {
	return len(s.labels)
}

// Names returns the labels in definition order.
func (s *SymbolTable) Names() []string {
	return append([]string(nil), s.order...)
}

// View returns a read-only view of the table.
func (s *SymbolTable) View() SymbolView {
	return readOnlySymbols{table: s}
}

// Map copies the table into a plain map.
func (s *SymbolTable) Map() map[string]uint16 {
	m := make(map[string]uint16, len(s.labels))
	for k, v := range s.labels {
		m[k] = v
	}
	return m
}

type readOnlySymbols struct {
	table *SymbolTable
}

func (r readOnlySymbols) Resolve(name string) (uint16, error) { return r.table.Resolve(name) }

func (r readOnlySymbols) Lookup(name string) (uint16, bool) { return r.table.Lookup(name) }

// Symbol is a label with its address, used for sorted dumps.
type Symbol struct {
	Name    string
	Address uint16
}

// SortedSymbols lists labels ordered by address, then name.
func SortedSymbols(labels map[string]uint16) []Symbol {
	symbols := make([]Symbol, 0, len(labels))
	for name, addr := range labels {
		symbols = append(symbols, Symbol{Name: name, Address: addr})
	}
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].Address != symbols[j].Address {
			return symbols[i].Address < symbols[j].Address
		}
		return symbols[i].Name < symbols[j].Name
	})
	return symbols
}
