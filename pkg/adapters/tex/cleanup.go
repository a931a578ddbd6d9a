package tex

import (
	"html"
	"regexp"
	"strings"
)

var (
	reAmp      = regexp.MustCompile(`(?i)&amp;`)
	reSqrt     = regexp.MustCompile(`(?i)&#8730;`)
	reGamma    = regexp.MustCompile(`(?i)&gamma;`)
	reBackslsh = regexp.MustCompile(`(?i)&#92;`)

	markupRules = []rule{
		{regexp.MustCompile(`(?i)<br[\s/]*?>`), `\\`},
		{regexp.MustCompile(`(?is)<i>(.*?)</i>`), `\emph{${1}}`},
		{regexp.MustCompile(`(?is)<span\s*?style=(?:"|')\s*?font-style\s*?:\s*?italic\s*?;(?:"|')>(.*?)</span>`), `\emph{${1}}`},
		{regexp.MustCompile(`(?is)<b>(.*?)</b>`), `\textbf{${1}}`},
		{regexp.MustCompile(`(?is)<span\s*?style=(?:"|')\s*?font-weight\s*?:\s*?bold\s*?;(?:"|')>(.*?)</span>`), `\textbf{${1}}`},
		{regexp.MustCompile(`(?is)<u>(.*?)</u>`), `\underline{${1}}`},
		{regexp.MustCompile(`(?is)<font size='\+1'>(.*?)</font> ?`), `\Big${1}`},
		{regexp.MustCompile(`(?is)<a[^>]*?href=(?:"|')(.*?)(?:"|')[^>]*?>.*?</a>`), `\emph{${1}}`},
	}

	umlauts = strings.NewReplacer(
		"ö", `\"o`, "Ö", `\"O`,
		"ä", `\"a`, "Ä", `\"A`,
		"ü", `\"u`, "Ü", `\"U`,
		"ß", `\"s`,
	)

	reFormulaParagraph = regexp.MustCompile(`(?s)<p[^>]*?class='formula'>(.*?)</p>`)
	reInlineParen      = regexp.MustCompile(`(?s)\\\((.*?)\\\)`)
	reParagraph        = regexp.MustCompile(`(?s)<p.*?>(.*?)</p>`)
)

// cleanup turns the HTML produced on import back into TeX. Block formulas
// come out as $$..$$ and inline formulas as $..$ whatever the render target.
func cleanup(text string) string {
	text = reAmp.ReplaceAllLiteralString(text, "&")
	text = reSqrt.ReplaceAllLiteralString(text, `$\sqrt{}$`)
	text = reGamma.ReplaceAllLiteralString(text, `$\gamma$`)
	text = reBackslsh.ReplaceAllLiteralString(text, `\textbackslash `)
	text = html.UnescapeString(text)

	for _, r := range markupRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	text = umlauts.Replace(text)

	text = reFormulaParagraph.ReplaceAllStringFunc(text, func(p string) string {
		inner := reFormulaParagraph.FindStringSubmatch(p)[1]
		return "$$" + unwrapFormula(inner) + "$$"
	})
	text = reInlineParen.ReplaceAllString(text, "$$${1}$$")
	return reParagraph.ReplaceAllString(text, "${1}")
}

// unwrapFormula strips one level of formula delimiters.
func unwrapFormula(s string) string {
	s = strings.TrimSpace(s)
	for _, d := range [][2]string{{"$$", "$$"}, {`\(`, `\)`}, {`\[`, `\]`}, {"$", "$"}} {
		if len(s) >= len(d[0])+len(d[1]) && strings.HasPrefix(s, d[0]) && strings.HasSuffix(s, d[1]) {
			return s[len(d[0]) : len(s)-len(d[1])]
		}
	}
	return s
}
