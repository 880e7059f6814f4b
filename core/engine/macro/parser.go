// Package macro reads user macro files written with \newcommand or \def.
package macro

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/gaurav-prasanna/texpipe/core/engine"
)

var (
	texLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `%[^\n]*`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "Space", Pattern: `[ \t\r]+`},
		{Name: "NewCommand", Pattern: `\\(?:(?:re)?newcommand|providecommand)\*?`},
		{Name: "DefKeyword", Pattern: `\\def\b`},
		{Name: "Command", Pattern: `\\(?:[A-Za-z]+|.)`},
		{Name: "Param", Pattern: `#[1-9]`},
		{Name: "Hash", Pattern: `#`},
		{Name: "Number", Pattern: `[0-9]+`},
		{Name: "LBrace", Pattern: `\{`},
		{Name: "RBrace", Pattern: `\}`},
		{Name: "LBracket", Pattern: `\[`},
		{Name: "RBracket", Pattern: `\]`},
		{Name: "Text", Pattern: `[^\\{}\[\]#%\s0-9]+`},
	})

	lbraceType  = texLexer.Symbols()["LBrace"]
	rbraceType  = texLexer.Symbols()["RBrace"]
	newlineType = texLexer.Symbols()["Newline"]

	fileParser = participle.MustBuild[File](
		participle.Lexer(texLexer),
		participle.Elide("Space", "Comment"),
	)
)

// File is a parsed macro file.
type File struct {
	Definitions []*Definition `parser:"Newline* ( @@ Newline* )*"`
}

// Definition is one macro definition in either syntax.
type Definition struct {
	NewCommand *NewCommand `parser:"  @@"`
	Def        *Def        `parser:"| @@"`
}

// NewCommand is \newcommand{\name}[n]{body} and its re/provide variants.
type NewCommand struct {
	Pos     lexer.Position `parser:""`
	Keyword string         `parser:"@NewCommand"`
	Name    string         `parser:"( '{' @Command '}' | @Command )"`
	Args    int            `parser:"( '[' @Number ']' )?"`
	Body    *Body          `parser:"@@"`
}

// Def is \def\name#1#2{body}.
type Def struct {
	Pos    lexer.Position `parser:""`
	Name   string         `parser:"DefKeyword @Command"`
	Params []string       `parser:"@Param*"`
	Body   *Body          `parser:"@@"`
}

// Body is a brace-balanced group. Text keeps the group's content without
// the outer braces; comments and whitespace runs become single spaces.
type Body struct {
	Text string
}

// Parse implements participle.Parseable.
func (b *Body) Parse(lex *lexer.PeekingLexer) error {
	open := lex.Peek()
	if open.EOF() || open.Type != lbraceType {
		return participle.NextMatch
	}
	lex.Next()

	var sb strings.Builder
	end := open.Pos.Offset + len(open.Value)
	depth := 1
	for {
		tok := lex.Next()
		if tok.EOF() {
			return fmt.Errorf("%s: unclosed macro body", open.Pos)
		}
		if tok.Pos.Offset > end && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		end = tok.Pos.Offset + len(tok.Value)

		switch tok.Type {
		case lbraceType:
			depth++
		case rbraceType:
			depth--
			if depth == 0 {
				b.Text = strings.TrimSpace(sb.String())
				return nil
			}
		case newlineType:
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(tok.Value)
	}
}

// Macros converts the parsed definitions.
func (f *File) Macros() ([]engine.Macro, error) {
	out := make([]engine.Macro, 0, len(f.Definitions))
	for _, d := range f.Definitions {
		switch {
		case d.NewCommand != nil:
			nc := d.NewCommand
			if nc.Args < 0 || nc.Args > 9 {
				return nil, fmt.Errorf("%s: %s takes at most 9 arguments", nc.Pos, nc.Name)
			}
			out = append(out, engine.Macro{
				Name: strings.TrimPrefix(nc.Name, `\`),
				Args: nc.Args,
				Body: nc.Body.Text,
			})
		case d.Def != nil:
			for i, p := range d.Def.Params {
				if p != fmt.Sprintf("#%d", i+1) {
					return nil, fmt.Errorf("%s: %s parameters must be numbered in order", d.Def.Pos, d.Def.Name)
				}
			}
			out = append(out, engine.Macro{
				Name: strings.TrimPrefix(d.Def.Name, `\`),
				Args: len(d.Def.Params),
				Body: d.Def.Body.Text,
			})
		}
	}
	return out, nil
}

// Parse reads macro definitions from r.
func Parse(r io.Reader) ([]engine.Macro, error) {
	f, err := fileParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parsing macros: %w", err)
	}
	return f.Macros()
}

// ParseString reads macro definitions from s.
func ParseString(s string) ([]engine.Macro, error) {
	f, err := fileParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parsing macros: %w", err)
	}
	return f.Macros()
}

// ParseFile reads macro definitions from the file at path.
func ParseFile(path string) ([]engine.Macro, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening macro file: %w", err)
	}
	defer fh.Close()

	f, err := fileParser.Parse(path, fh)
	if err != nil {
		return nil, fmt.Errorf("parsing macros: %w", err)
	}
	return f.Macros()
}
