// Package normalize implements the Normalizer interface.
// It rewrites loosely authored math markup into one canonical form by
// applying an ordered list of total string rules. Running it twice gives
// the same result as running it once.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/gaurav-prasanna/texpipe/core/delim"
)

// Rule is one named rewrite step.
type Rule struct {
	Name  string
	Apply func(string) string
}

// Rules is the normalization order. Later rules assume earlier ones ran.
var Rules = []Rule{
	{Name: "unicode-nfc", Apply: ComposeUnicode},
	{Name: "newline-idioms", Apply: CollapseNewlineIdioms},
	{Name: "backslash-space", Apply: FixBackslashSpace},
	{Name: "plain-text-command", Apply: RewritePlainText},
	{Name: "alignment-spacing", Apply: SpaceAlignment},
	{Name: "whitespace", Apply: CompressWhitespace},
}

// TextNormalizer applies Rules in order.
type TextNormalizer struct {
	rules []Rule
}

// New creates a TextNormalizer using the default Rules.
func New() *TextNormalizer {
	return &TextNormalizer{rules: Rules}
}

// Normalize rewrites raw into canonical form.
func (n *TextNormalizer) Normalize(raw string) string {
	s := raw
	for _, r := range n.rules {
		s = r.Apply(s)
	}
	return s
}

// Normalize runs the default rule set.
func Normalize(raw string) string {
	return New().Normalize(raw)
}

// ComposeUnicode puts text in Unicode NFC.
func ComposeUnicode(s string) string {
	return norm.NFC.String(s)
}

// CollapseNewlineIdioms turns every explicit newline idiom into delim.LineBreak:
// a math span holding only \newline, \\ or a lone backslash, and the bare
// \newline command.
func CollapseNewlineIdioms(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, seg := range delim.Split(s) {
		if seg.Math && isNewlineIdiom(strings.TrimSpace(seg.Text)) {
			b.WriteString(delim.LineBreak)
			continue
		}
		b.WriteString(seg.Raw())
	}
	return replaceCommand(b.String(), "newline", func(rest string) (string, int) {
		return delim.LineBreak, 0
	})
}

func isNewlineIdiom(body string) bool {
	return body == `\newline` || body == delim.LineBreak || body == `\`
}

// FixBackslashSpace replaces a backslash followed by whitespace with the
// line-break marker. Backslashes that are half of a "\\" pair are kept.
func FixBackslashSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		if s[i+1] == '\\' {
			b.WriteString(`\\`)
			i += 2
			continue
		}
		j := skipSpace(s, i+1)
		if j == i+1 {
			b.WriteByte('\\')
			i++
			continue
		}
		b.WriteString(delim.LineBreak + " ")
		i = j
	}
	return b.String()
}

// RewritePlainText turns \textnormal into \text. A brace argument is kept
// as is; a bare word argument gets braced.
func RewritePlainText(s string) string {
	return replaceCommand(s, "textnormal", func(rest string) (string, int) {
		j := skipSpace(rest, 0)
		if j < len(rest) && rest[j] == '{' {
			return `\text`, j
		}
		if j == len(rest) || strings.IndexByte(bareStop, rest[j]) >= 0 {
			return `\textnormal`, 0
		}
		k := j
		for k < len(rest) {
			r, size := utf8.DecodeRuneInString(rest[k:])
			if unicode.IsSpace(r) || strings.IndexByte(bareStop, rest[k]) >= 0 {
				break
			}
			k += size
		}
		return `\text{` + rest[j:k] + `}`, k
	})
}

// bareStop ends a bare command argument.
const bareStop = `\{}$&^_`

// SpaceAlignment pads every unescaped alignment marker with spaces. The
// whitespace rule later squeezes them to exactly one on each side.
func SpaceAlignment(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
			i++
		case s[i] == '&':
			b.WriteString(" & ")
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// CompressWhitespace collapses whitespace runs to one space and trims.
func CompressWhitespace(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// replaceCommand calls fn for each control word named name. fn sees the
// text after the command and returns the replacement plus how many bytes
// of that text it consumed. "\\" pairs are never read as a command start.
func replaceCommand(s, name string, fn func(rest string) (string, int)) string {
	cmd := `\` + name
	if !strings.Contains(s, cmd) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		word := controlWord(s, i+1)
		if word != name {
			n := 2
			if word != "" {
				n = 1 + len(word)
			}
			b.WriteString(s[i : i+n])
			i += n
			continue
		}
		rest := s[i+len(cmd):]
		out, used := fn(rest)
		b.WriteString(out)
		i += len(cmd) + used
	}
	return b.String()
}

// controlWord returns the ASCII letters starting at i.
func controlWord(s string, i int) string {
	j := i
	for j < len(s) && (s[j] >= 'a' && s[j] <= 'z' || s[j] >= 'A' && s[j] <= 'Z') {
		j++
	}
	return s[i:j]
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}
