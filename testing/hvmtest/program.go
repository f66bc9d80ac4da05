package hvmtest

import (
	"fmt"
	"strings"
)

// parseBook does the minimum a parser needs for the fake to be useful: it
// finds "@name = body" definitions and rejects unbalanced brackets and text
// outside a definition.
func parseBook(code string) (*fakeBook, error) {
	book := &fakeBook{source: code}
	depth := 0
	inDef := false

	for i, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "@") {
			name, _, found := strings.Cut(trimmed[1:], "=")
			name = strings.TrimSpace(name)
			if !found || name == "" {
				return nil, fmt.Errorf("PARSE_ERROR (%d:1): expected '@name = <net>'", i+1)
			}
			if depth != 0 {
				return nil, fmt.Errorf("PARSE_ERROR (%d:1): unbalanced brackets before @%s", i+1, name)
			}
			book.defs = append(book.defs, name)
			inDef = true
		} else if !inDef {
			return nil, fmt.Errorf("PARSE_ERROR (%d:1): expected definition, found %q", i+1, trimmed)
		}

		for _, r := range trimmed {
			switch r {
			case '(', '{', '[':
				depth++
			case ')', '}', ']':
				depth--
			}
			if depth < 0 {
				return nil, fmt.Errorf("PARSE_ERROR (%d:1): unexpected closing bracket", i+1)
			}
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("PARSE_ERROR: unbalanced brackets at end of input")
	}
	if len(book.defs) == 0 {
		return nil, fmt.Errorf("PARSE_ERROR: empty book")
	}
	return book, nil
}

func (b *fakeBook) hasDef(name string) bool {
	for _, d := range b.defs {
		if d == name {
			return true
		}
	}
	return false
}

// iterations is a deterministic stand-in for the interaction count.
func (b *fakeBook) iterations() uint64 {
	return uint64(len(b.defs))*1000 + uint64(len(b.source))
}

func (b *fakeBook) memDump() string {
	var sb strings.Builder
	sb.WriteString("DEFS:\n")
	for i, d := range b.defs {
		fmt.Fprintf(&sb, "%04d: @%s\n", i, d)
	}
	return sb.String()
}

// encode produces the fake's binary form of the book: a length-prefixed list
// of definition names.
func (b *fakeBook) encode() []byte {
	out := []byte{byte(len(b.defs))}
	for _, d := range b.defs {
		out = append(out, byte(len(d)))
		out = append(out, d...)
	}
	return out
}
