package tex

import "github.com/aretw0/qtex/pkg/core"

// RawMatch is a question block found by the Scanner.
type RawMatch struct {
	ID       string
	Spelling string
	Title    string // optional bracket argument
	HasTitle bool
	Body     string // obligatory argument: the question text
	Tail     string // everything up to the next block or end of input
}

// Scanner segments prepared text into question blocks.
type Scanner struct {
	blocks   *Pattern
	openings *Pattern
}

// NewScanner builds a scanner for the environments of table.
func NewScanner(table *core.AliasTable) *Scanner {
	envs := table.Environments()
	return &Scanner{
		blocks:   Compile(table, envs, ModeEnvironment, 1, true),
		openings: Compile(table, envs, ModeMacro, NoArgs, false),
	}
}

// Scan returns the blocks of text in document order. Openings whose
// argument is not balanced are skipped.
func (s *Scanner) Scan(text string) []RawMatch {
	var out []RawMatch
	for _, m := range s.blocks.FindAll(text) {
		out = append(out, RawMatch{
			ID:       m.ID,
			Spelling: m.Spelling,
			Title:    m.Optional,
			HasTitle: m.HasOptional,
			Body:     m.Arg(1),
			Tail:     m.Body,
		})
	}
	return out
}

// Openings counts block openings regardless of their arguments.
func (s *Scanner) Openings(text string) int {
	return len(s.openings.FindAll(text))
}
