package core

import "sort"

// Canonical identifiers of the default vocabulary.
const (
	IDMultichoice    = "multichoice"
	IDSinglechoice   = "singlechoice"
	IDDescription    = "description"
	IDTitle          = "title"
	IDTrue           = "true"
	IDFalse          = "false"
	IDExplanation    = "explanation"
	IDFeedback       = "feedback"
	IDShuffleAnswers = "shuffleanswers"
	IDMultianswer    = "multianswer"
	IDImage          = "image"
)

// AliasTable maps canonical identifiers to their surface spellings.
// Index 0 of every list is the spelling used on export.
// A table is never mutated after construction and may be shared.
type AliasTable struct {
	macros       map[string][]string
	environments map[string][]string
	envOrder     []string
}

// NewAliasTable copies the given maps. Identifiers with no spellings are dropped.
func NewAliasTable(macros, environments map[string][]string) *AliasTable {
	t := &AliasTable{
		macros:       copySpellings(macros),
		environments: copySpellings(environments),
	}
	for id := range t.environments {
		t.envOrder = append(t.envOrder, id)
	}
	sort.Strings(t.envOrder)
	return t
}

// DefaultAliases returns the stock vocabulary.
func DefaultAliases() *AliasTable {
	return NewAliasTable(
		map[string][]string{
			IDTitle:          {"quiztitle", "section*", "category"},
			IDTrue:           {"true", "correctanswer"},
			IDFalse:          {"false", "incorrectanswer"},
			IDExplanation:    {"explanation", "generalfeedback"},
			IDFeedback:       {"feedback"},
			IDShuffleAnswers: {"shuffleanswers"},
			IDMultianswer:    {"multianswer", "singleanswer{false}"},
			IDImage:          {"includegraphics", "image"},
		},
		map[string][]string{
			IDMultichoice:  {"question", "begin{multichoice}", "begin{question}"},
			IDSinglechoice: {"questionSc"},
			IDDescription:  {"intro", "keepme", "remark"},
		},
	)
}

func copySpellings(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for id, spellings := range in {
		if len(spellings) == 0 {
			continue
		}
		out[id] = append([]string(nil), spellings...)
	}
	return out
}

// Spellings returns the spellings of id. An unknown id is its own single spelling.
func (t *AliasTable) Spellings(id string) []string {
	if s, ok := t.environments[id]; ok {
		return append([]string(nil), s...)
	}
	if s, ok := t.macros[id]; ok {
		return append([]string(nil), s...)
	}
	return []string{id}
}

// Canonical returns the export spelling of id.
func (t *AliasTable) Canonical(id string) string {
	return t.Spellings(id)[0]
}

// Environments lists the block identifiers in a stable order.
func (t *AliasTable) Environments() []string {
	return append([]string(nil), t.envOrder...)
}

// IsEnvironment reports whether id names a block.
func (t *AliasTable) IsEnvironment(id string) bool {
	_, ok := t.environments[id]
	return ok
}

// Len is the number of identifiers known to the table.
func (t *AliasTable) Len() int {
	return len(t.macros) + len(t.environments)
}

// Override returns a new table where the given identifiers replace their
// spellings in t. Identifiers not mentioned keep their current spellings.
func (t *AliasTable) Override(macros, environments map[string][]string) *AliasTable {
	m := copySpellings(t.macros)
	e := copySpellings(t.environments)
	for id, s := range macros {
		m[id] = s
	}
	for id, s := range environments {
		e[id] = s
	}
	return NewAliasTable(m, e)
}
