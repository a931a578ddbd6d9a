package tex

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/aretw0/qtex/pkg/core"
)

var (
	reFullLineComment = regexp.MustCompile(`(?m)^%.*\r?\n`)
	reComment         = regexp2.MustCompile(`(?<!\\)%.*`, regexp2.None)
	reDocument        = regexp.MustCompile(`(?s)^(.*?)\\begin\{document\}(.*?)\\end\{document\}`)
	reDisplayMath     = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)
	reEqnarray        = regexp.MustCompile(`(?s)(\\begin\{eqnarray\*?\}.*?\\end\{eqnarray\*?\})`)

	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	// literal resolves every identifier to its own spelling.
	literal = core.NewAliasTable(nil, nil)

	userMacros = Compile(literal, []string{"newcommand", "renewcommand"}, ModeMacro, 2, false)
)

// Prepare runs the pre-pass over a raw document: comments are stripped, the
// document environment is extracted, macros defined in the head are
// substituted, HTML special characters are escaped and display math is
// normalized to $$ delimiters.
func Prepare(doc string) string {
	doc = reFullLineComment.ReplaceAllString(doc, "")
	if stripped, err := reComment.Replace(doc, "", -1, -1); err == nil {
		doc = stripped
	}

	head, body := "", doc
	if m := reDocument.FindStringSubmatch(doc); m != nil {
		head, body = m[1], m[2]
	}
	body = substituteUserMacros(head, body)

	body = htmlEscaper.Replace(body)
	body = reDisplayMath.ReplaceAllString(body, "$$$$${1}$$$$")
	body = reEqnarray.ReplaceAllString(body, "$$$$${1}$$$$")
	return body
}

func substituteUserMacros(head, body string) string {
	for _, def := range userMacros.FindAll(head) {
		name := strings.TrimPrefix(strings.TrimSpace(def.Arg(1)), `\`)
		if name == "" {
			continue
		}
		use := Compile(literal, []string{name}, ModeMacro, NoArgs, false)
		body = replaceMatches(body, use.FindAll(body), func(Match) string { return def.Arg(2) })
	}
	return body
}

// replaceMatches rebuilds s with every match replaced by repl(match).
func replaceMatches(s string, matches []Match, repl func(Match) string) string {
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m.Start])
		b.WriteString(repl(m))
		last = m.End
	}
	b.WriteString(s[last:])
	return b.String()
}
