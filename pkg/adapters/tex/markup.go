package tex

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/aretw0/qtex/pkg/core"
)

// FormulaParagraph opens the container wrapped around block formulas.
const FormulaParagraph = `<p style='text-align: center' class='formula'>`

const paragraphClose = `</p>`

type spanKind int

const (
	spanProse spanKind = iota
	spanInline
	spanBlock
	spanRendered // a block already wrapped in FormulaParagraph
)

type span struct {
	kind spanKind
	text string // content without delimiters
	raw  string // content as found in the source
}

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Prose rewrites. Order matters: blank lines become \\ before \\ becomes <br/>.
var proseRules = []rule{
	{regexp.MustCompile(`(?m)^\r?\n(?:^\r?\n)+`), `\\`},
	{regexp.MustCompile(`\r?\n`), " "},
	{regexp.MustCompile(`\\\\`), "<br/>"},
	{regexp.MustCompile(`~`), " "},
	{regexp.MustCompile(`-{2,}`), "-"},
	{regexp.MustCompile(`\\,`), ""},
	{regexp.MustCompile(`\\ `), ""},
	{regexp.MustCompile(`\\bf\b`), ""},
	{regexp.MustCompile(`\\vskip\S*`), ""},
	{regexp.MustCompile(`\\"o|"o`), "ö"},
	{regexp.MustCompile(`\\"O|"O`), "Ö"},
	{regexp.MustCompile(`\\"a|"a`), "ä"},
	{regexp.MustCompile(`\\"A|"A`), "Ä"},
	{regexp.MustCompile(`\\"u|"u`), "ü"},
	{regexp.MustCompile(`\\"U|"U`), "Ü"},
	{regexp.MustCompile(`\\"s|"s`), "ß"},
	{regexp.MustCompile(`\\Big(\W)`), "<font size='+1'>${1}</font> "},
	{regexp.MustCompile(`\\textbackslash`), "&#92;"},
	{regexp.MustCompile(`\\l?dots`), "..."},
}

// Formula rewrites keep emoticon filters away from formula text.
var formulaRules = []rule{
	{regexp.MustCompile(`\(y\)`), "({}y)"},
	{regexp.MustCompile(`\(h\)`), "({}h)"},
	{regexp.MustCompile(`\(n\)`), "({}n)"},
	{regexp.MustCompile(`\( \)`), "({} )"},
	{regexp.MustCompile(`:\(`), ":{}("},
	{regexp.MustCompile(`\^-\)`), "^{}-)"},
	{regexp.MustCompile(`\\enspace`), `\ `},
}

var reBareQuote = regexp2.MustCompile(`(?<!\\)"`, regexp2.None)

var reEscapedBrace = regexp.MustCompile(`\\([{}])`)

// Transform splits text into prose and formula spans, rewrites each span and
// renders formulas for target.
func Transform(text string, target core.RenderTarget) string {
	spans := split(text)
	for i := range spans {
		switch spans[i].kind {
		case spanProse:
			spans[i].text = rewriteProse(spans[i].text)
		case spanInline, spanBlock:
			spans[i].text = rewriteFormula(spans[i].text)
		}
	}
	return emit(spans, target)
}

// Render rewrites formula delimiters for target. It is idempotent: blocks
// already wrapped in a formula paragraph are left alone.
func Render(text string, target core.RenderTarget) string {
	return emit(split(text), target)
}

// UnescapeBraces turns \{ and \} into plain braces outside formulas.
func UnescapeBraces(text string) string {
	spans := split(text)
	changed := false
	for i := range spans {
		if spans[i].kind == spanProse && strings.Contains(spans[i].text, `\`) {
			spans[i].text = reEscapedBrace.ReplaceAllString(spans[i].text, "${1}")
			changed = true
		}
	}
	if !changed {
		return text
	}
	var b strings.Builder
	for _, s := range spans {
		if s.kind == spanProse {
			b.WriteString(s.text)
		} else {
			b.WriteString(s.raw)
		}
	}
	return b.String()
}

func rewriteProse(text string) string {
	for _, r := range proseRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return rewriteStyles(text)
}

type styleTag struct {
	macro, open, close string
}

var styleTags = []styleTag{
	{`\emph`, "<i>", "</i>"},
	{`\textit`, "<i>", "</i>"},
	{`\textbf`, "<b>", "</b>"},
	{`\underline`, "<u>", "</u>"},
}

// rewriteStyles turns emphasis macros into HTML tags. Arguments are read with
// the balanced-brace scanner, so nested macros become nested tags and an
// unbalanced argument is left as written.
func rewriteStyles(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		if text[i] != '\\' {
			b.WriteByte(text[i])
			i++
			continue
		}
		if tag, arg, next, ok := styleAt(text, i); ok {
			b.WriteString(tag.open + rewriteStyles(arg) + tag.close)
			i = next
			continue
		}
		end := min(i+2, len(text))
		b.WriteString(text[i:end])
		i = end
	}
	return b.String()
}

func styleAt(text string, pos int) (styleTag, string, int, bool) {
	for _, tag := range styleTags {
		if !strings.HasPrefix(text[pos:], tag.macro) {
			continue
		}
		after := pos + len(tag.macro)
		if after < len(text) && isLetter(text[after]) {
			continue
		}
		arg, next, ok := balanced(text, after)
		if !ok {
			break
		}
		return tag, arg, next, true
	}
	return styleTag{}, "", pos, false
}

func rewriteFormula(text string) string {
	for _, r := range formulaRules {
		text = r.re.ReplaceAllLiteralString(text, r.repl)
	}
	if out, err := reBareQuote.Replace(text, `\"`, -1, -1); err == nil {
		text = out
	}
	return text
}

// split partitions text into prose and formula spans. $$..$$ is a block,
// $..$ and \(..\) are inline. An unclosed delimiter leaves the rest as prose.
func split(text string) []span {
	var spans []span
	proseStart := 0
	flush := func(end int) {
		if end > proseStart {
			spans = append(spans, span{kind: spanProse, text: text[proseStart:end], raw: text[proseStart:end]})
		}
	}

	i := 0
	for i < len(text) {
		if strings.HasPrefix(text[i:], FormulaParagraph) {
			if end := strings.Index(text[i:], paragraphClose); end >= 0 {
				flush(i)
				end += i + len(paragraphClose)
				spans = append(spans, span{kind: spanRendered, text: text[i:end], raw: text[i:end]})
				i, proseStart = end, end
				continue
			}
		}

		switch text[i] {
		case '\\':
			if i+1 < len(text) && text[i+1] == '(' {
				if end := strings.Index(text[i+2:], `\)`); end >= 0 {
					flush(i)
					end += i + 2
					spans = append(spans, span{kind: spanInline, text: text[i+2 : end], raw: text[i : end+2]})
					i = end + 2
					proseStart = i
					continue
				}
			}
			i += 2
			continue

		case '$':
			if strings.HasPrefix(text[i:], "$$") {
				end := strings.Index(text[i+2:], "$$")
				if end < 0 {
					i = len(text)
					continue
				}
				flush(i)
				end += i + 2
				spans = append(spans, span{kind: spanBlock, text: text[i+2 : end], raw: text[i : end+2]})
				i = end + 2
				proseStart = i
				continue
			}
			end := closingDollar(text, i+1)
			if end < 0 {
				i = len(text)
				continue
			}
			flush(i)
			spans = append(spans, span{kind: spanInline, text: text[i+1 : end], raw: text[i : end+1]})
			i = end + 1
			proseStart = i
			continue
		}
		i++
	}
	flush(len(text))
	return spans
}

// closingDollar finds the next unescaped single $ at or after from.
func closingDollar(text string, from int) int {
	for j := from; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '$':
			return j
		}
	}
	return -1
}

func emit(spans []span, target core.RenderTarget) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.kind {
		case spanProse, spanRendered:
			b.WriteString(s.text)
		case spanBlock:
			switch target {
			case core.TargetJSMath:
				b.WriteString(FormulaParagraph + `\(` + s.text + `\)` + paragraphClose)
			case core.TargetMathJax:
				b.WriteString("$$" + s.text + "$$")
			default:
				b.WriteString(FormulaParagraph + "$$" + s.text + "$$" + paragraphClose)
			}
		case spanInline:
			switch target {
			case core.TargetJSMath, core.TargetMathJax:
				b.WriteString(`\(` + s.text + `\)`)
			default:
				b.WriteString("$" + s.text + "$")
			}
		}
	}
	return b.String()
}
