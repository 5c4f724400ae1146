package template

import (
	"strconv"
	"strings"
)

// Kind identifies what a Token renders.
type Kind int

const (
	Literal Kind = iota // Verbatim text
	Series              // Series name
	Season              // Season number, zero padded
	Episode             // Episode number, zero padded
	Title               // Episode title from the metadata service
)

// DefaultTemplate is used when the user supplies no template of their own.
const DefaultTemplate = "{series} {season}x{episode} {title}"

// Token is one element of a parsed template. Text is only set for literals and
// Pad only for numeric placeholders that declared an explicit width.
type Token struct {
	Kind Kind
	Text string
	Pad  int
}

// Template is an ordered sequence of tokens built once and rendered per episode.
type Template []Token

// Context carries the values substituted into a template.
type Context struct {
	Series    string
	Season    int
	Episode   int
	Title     string
	PadLength int
}

var placeholderNames = map[string]Kind{
	"series":        Series,
	"show":          Series,
	"season":        Season,
	"episode":       Episode,
	"title":         Title,
	"episode_title": Title,
}

// Default returns the tokenized DefaultTemplate.
func Default() Template {
	return Tokenize(DefaultTemplate)
}

// Tokenize parses s into literal runs and placeholders. Placeholders use the
// form {name} or {name:width}; the older ${Name} form is accepted as well.
// Anything that does not parse as a known placeholder stays literal text.
func Tokenize(s string) Template {
	var tokens Template
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, Token{Kind: Literal, Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); {
		start := i
		if s[i] == '$' && i+1 < len(s) && s[i+1] == '{' {
			i++
		}
		if s[i] != '{' {
			lit.WriteByte(s[start])
			i = start + 1
			continue
		}

		end := strings.IndexByte(s[i+1:], '}')
		if end < 0 {
			lit.WriteString(s[start:])
			break
		}
		body := s[i+1 : i+1+end]
		next := i + 1 + end + 1

		tok, ok := parsePlaceholder(body)
		if !ok {
			lit.WriteString(s[start:next])
			i = next
			continue
		}
		flush()
		tokens = append(tokens, tok)
		i = next
	}
	flush()

	return tokens
}

func parsePlaceholder(body string) (Token, bool) {
	name, width, hasWidth := strings.Cut(body, ":")
	kind, ok := placeholderNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Token{}, false
	}

	tok := Token{Kind: kind}
	if hasWidth {
		if kind != Season && kind != Episode {
			return Token{}, false
		}
		pad, err := strconv.Atoi(strings.TrimSpace(width))
		if err != nil || pad < 0 {
			return Token{}, false
		}
		tok.Pad = pad
	}
	return tok, true
}

// Render substitutes every placeholder with its value from ctx. It never fails.
func (t Template) Render(ctx Context) string {
	var b strings.Builder
	for _, tok := range t {
		switch tok.Kind {
		case Literal:
			b.WriteString(tok.Text)
		case Series:
			b.WriteString(ctx.Series)
		case Season:
			b.WriteString(Pad(ctx.Season, max(tok.Pad, ctx.PadLength)))
		case Episode:
			b.WriteString(Pad(ctx.Episode, max(tok.Pad, ctx.PadLength)))
		case Title:
			b.WriteString(ctx.Title)
		}
	}
	return b.String()
}

// HasTitle reports whether the template contains a title placeholder.
func (t Template) HasTitle() bool {
	for _, tok := range t {
		if tok.Kind == Title {
			return true
		}
	}
	return false
}

// String returns the canonical template text.
func (t Template) String() string {
	var b strings.Builder
	for _, tok := range t {
		switch tok.Kind {
		case Literal:
			b.WriteString(tok.Text)
		case Series:
			b.WriteString("{series}")
		case Season, Episode:
			name := "season"
			if tok.Kind == Episode {
				name = "episode"
			}
			b.WriteString("{" + name)
			if tok.Pad > 0 {
				b.WriteString(":" + strconv.Itoa(tok.Pad))
			}
			b.WriteString("}")
		case Title:
			b.WriteString("{title}")
		}
	}
	return b.String()
}

// Pad formats n with at least width digits. Wider values are never truncated.
func Pad(n, width int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.Itoa(n)
	if len(digits) < width {
		digits = strings.Repeat("0", width-len(digits)) + digits
	}
	if neg {
		return "-" + digits
	}
	return digits
}
