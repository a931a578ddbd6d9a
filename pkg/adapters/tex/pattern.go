// Package tex reads and writes the QuestionTeX markup.
package tex

import (
	"sort"
	"strings"

	"github.com/aretw0/qtex/pkg/core"
)

// Mode selects how a Pattern delimits a match.
type Mode int

const (
	// ModeMacro matches an invocation and its arguments only.
	ModeMacro Mode = iota
	// ModeEnvironment also captures a body running to the next block opening or end of input.
	ModeEnvironment
)

// Argument counts with special meaning.
const (
	NoArgs       = -1 // not even an optional argument
	OptionalOnly = 0
)

type alternative struct {
	id       string
	spelling string
}

// Pattern recognizes invocations of a set of identifiers.
type Pattern struct {
	alts    []alternative
	mode    Mode
	args    int
	capture bool
	stop    *Pattern
}

// Match is one recognized invocation.
type Match struct {
	ID          string // canonical identifier, empty unless the pattern captures it
	Spelling    string
	Start, End  int // byte offsets of the whole match, body included
	Optional    string
	HasOptional bool
	Args        []string
	Body        string
}

// Arg returns the n-th obligatory argument, counting from 1.
func (m Match) Arg(n int) string {
	if n < 1 || n > len(m.Args) {
		return ""
	}
	return m.Args[n-1]
}

// Compile builds a Pattern for ids. Identifiers missing from the table are
// treated as literal spellings.
func Compile(table *core.AliasTable, ids []string, mode Mode, args int, capture bool) *Pattern {
	p := &Pattern{mode: mode, args: args, capture: capture}
	for _, id := range ids {
		for _, s := range table.Spellings(id) {
			p.alts = append(p.alts, alternative{id: id, spelling: s})
		}
	}
	// Longer spellings first so the reported spelling is the most specific one.
	sort.SliceStable(p.alts, func(i, j int) bool {
		return len(p.alts[i].spelling) > len(p.alts[j].spelling)
	})
	if mode == ModeEnvironment {
		p.stop = Compile(table, table.Environments(), ModeMacro, NoArgs, false)
	}
	return p
}

// MatchAt matches an invocation starting exactly at pos.
func (p *Pattern) MatchAt(s string, pos int) (Match, bool) {
	if pos < 0 || pos >= len(s) || s[pos] != '\\' || escaped(s, pos) {
		return Match{}, false
	}
	for _, alt := range p.alts {
		end := pos + 1 + len(alt.spelling)
		if end > len(s) || s[pos+1:end] != alt.spelling {
			continue
		}
		if end < len(s) && isLetter(s[end]) {
			continue
		}
		m, ok := p.arguments(s, pos, end)
		if !ok {
			continue
		}
		m.Spelling = alt.spelling
		if p.capture {
			m.ID = alt.id
		}
		return m, true
	}
	return Match{}, false
}

// Find returns the first match at or after from.
func (p *Pattern) Find(s string, from int) (Match, bool) {
	for pos := max(from, 0); pos < len(s); pos++ {
		i := strings.IndexByte(s[pos:], '\\')
		if i < 0 {
			break
		}
		pos += i
		if m, ok := p.MatchAt(s, pos); ok {
			return m, true
		}
	}
	return Match{}, false
}

// FindAll returns all non-overlapping matches in document order.
func (p *Pattern) FindAll(s string) []Match {
	var out []Match
	for pos := 0; pos < len(s); {
		m, ok := p.Find(s, pos)
		if !ok {
			break
		}
		out = append(out, m)
		pos = max(m.End, m.Start+1)
	}
	return out
}

// Contains reports whether s holds at least one match.
func (p *Pattern) Contains(s string) bool {
	_, ok := p.Find(s, 0)
	return ok
}

func (p *Pattern) arguments(s string, start, pos int) (Match, bool) {
	m := Match{Start: start}
	if p.args != NoArgs {
		// Optional argument: [ ... ] without nesting.
		j := skipSpace(s, pos)
		if j < len(s) && s[j] == '[' {
			if k := strings.IndexByte(s[j+1:], ']'); k >= 0 {
				m.Optional = s[j+1 : j+1+k]
				m.HasOptional = true
				pos = j + 1 + k + 1
			}
		}
		for n := 0; n < p.args; n++ {
			j := skipSpace(s, pos)
			arg, end, ok := balanced(s, j)
			if !ok {
				return Match{}, false
			}
			m.Args = append(m.Args, arg)
			pos = end
		}
	}
	m.End = pos
	if p.mode == ModeEnvironment {
		stop := len(s)
		if next, ok := p.stop.Find(s, pos); ok {
			stop = next.Start
		}
		m.Body = s[pos:stop]
		m.End = stop
	}
	return m, true
}

// balanced reads a brace group opening at pos. It returns the inner content
// and the offset after the closing brace. Backslash pairs are literal.
func balanced(s string, pos int) (string, int, bool) {
	if pos >= len(s) || s[pos] != '{' {
		return "", pos, false
	}
	depth := 0
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[pos+1 : i], i + 1, true
			}
		}
	}
	return "", pos, false
}

// escaped reports whether the backslash at pos is itself preceded by an odd
// run of backslashes.
func escaped(s string, pos int) bool {
	n := 0
	for i := pos - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func skipSpace(s string, pos int) int {
	for pos < len(s) {
		switch s[pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			pos++
		default:
			return pos
		}
	}
	return pos
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
