package report

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/schemadiff/internal/theme"
)

var jsonLexer = newJSONLexer()

func newJSONLexer() chroma.Lexer {
	l := lexers.Get("JSON")
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

// JSON writes v as indented JSON. A non-plain theme colours the output.
func JSON(w io.Writer, v any, th *theme.Theme) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	if th.IsPlain() {
		_, err := w.Write(buf.Bytes())
		return err
	}
	_, err := io.WriteString(w, Highlight(buf.String(), th))
	return err
}

// Highlight tokenises a JSON document and styles each token with th.
// Newlines are emitted unstyled so line structure survives.
func Highlight(src string, th *theme.Theme) string {
	if th.IsPlain() {
		return src
	}
	iter, err := jsonLexer.Tokenise(nil, src)
	if err != nil {
		return src
	}

	var b strings.Builder
	b.Grow(len(src) * 2)
	for _, tok := range iter.Tokens() {
		value := tok.Value
		if value == "" {
			continue
		}
		style, ok := styleFor(tok.Type, th)
		if !ok {
			b.WriteString(value)
			continue
		}
		lines := strings.Split(value, "\n")
		for i, line := range lines {
			if line != "" {
				b.WriteString(style.Render(line))
			}
			if i < len(lines)-1 {
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

// styleFor maps a chroma token type to a theme style. The second return value
// is false when the token passes through unstyled.
func styleFor(tt chroma.TokenType, th *theme.Theme) (lipgloss.Style, bool) {
	switch {
	case tt == chroma.NameTag:
		return th.JSONKey, true
	case tt == chroma.KeywordConstant:
		return th.JSONLiteral, true
	case tt.InSubCategory(chroma.LiteralString):
		return th.JSONString, true
	case tt.InSubCategory(chroma.LiteralNumber):
		return th.JSONNumber, true
	case tt == chroma.Punctuation:
		return th.JSONPunct, true
	default:
		return lipgloss.Style{}, false
	}
}
