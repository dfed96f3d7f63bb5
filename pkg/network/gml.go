package network

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// gmlValue is either a scalar or a nested key/value list
type gmlValue struct {
	scalar string
	list   []gmlPair
	isList bool
	line   int
}

type gmlPair struct {
	key   string
	value gmlValue
}

// ReadGML parses a GML document. Nodes are identified by their id
// attribute and indexed in declaration order; other attributes are ignored.
func ReadGML(r io.Reader) (*Graph, error) {
	tokens, err := tokenizeGML(r)
	if err != nil {
		return nil, err
	}

	p := &gmlParser{tokens: tokens}
	root, err := p.parseList(false)
	if err != nil {
		return nil, err
	}

	var body []gmlPair
	found := false
	for _, pair := range root {
		if pair.key == "graph" && pair.value.isList {
			body = pair.value.list
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: no graph block", ErrMalformedInput)
	}

	b := newLabelBuilder()
	for _, pair := range body {
		if pair.key != "node" || !pair.value.isList {
			continue
		}
		id, ok := gmlAttr(pair.value.list, "id")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: node without id", ErrMalformedInput, pair.value.line)
		}
		if _, dup := b.index[id]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate node id %s", ErrMalformedInput, pair.value.line, id)
		}
		b.node(id)
	}

	for _, pair := range body {
		if pair.key != "edge" || !pair.value.isList {
			continue
		}
		source, okS := gmlAttr(pair.value.list, "source")
		target, okT := gmlAttr(pair.value.list, "target")
		if !okS || !okT {
			return nil, fmt.Errorf("%w: line %d: edge without source or target", ErrMalformedInput, pair.value.line)
		}
		if _, ok := b.index[source]; !ok {
			return nil, fmt.Errorf("%w: line %d: edge references unknown node %s", ErrMalformedInput, pair.value.line, source)
		}
		if _, ok := b.index[target]; !ok {
			return nil, fmt.Errorf("%w: line %d: edge references unknown node %s", ErrMalformedInput, pair.value.line, target)
		}
		b.edge(source, target)
	}

	return b.build(), nil
}

func gmlAttr(list []gmlPair, key string) (string, bool) {
	for _, pair := range list {
		if pair.key == key && !pair.value.isList {
			return pair.value.scalar, true
		}
	}
	return "", false
}

type gmlToken struct {
	text   string
	quoted bool
	line   int
}

func tokenizeGML(r io.Reader) ([]gmlToken, error) {
	var tokens []gmlToken
	br := bufio.NewReader(r)
	line := 1

	for {
		c, _, err := br.ReadRune()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return nil, fmt.Errorf("error reading GML: %w", err)
		}

		switch {
		case c == '\n':
			line++
		case unicode.IsSpace(c):
		case c == '#':
			// comment runs to end of line
			if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
				return nil, fmt.Errorf("error reading GML: %w", err)
			}
			line++
		case c == '[' || c == ']':
			tokens = append(tokens, gmlToken{text: string(c), line: line})
		case c == '"':
			var sb strings.Builder
			start := line
			for {
				q, _, err := br.ReadRune()
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: unterminated string", ErrMalformedInput, start)
				}
				if q == '"' {
					break
				}
				if q == '\n' {
					line++
				}
				sb.WriteRune(q)
			}
			tokens = append(tokens, gmlToken{text: sb.String(), quoted: true, line: start})
		default:
			var sb strings.Builder
			sb.WriteRune(c)
			for {
				n, _, err := br.ReadRune()
				if err != nil {
					break
				}
				if unicode.IsSpace(n) || n == '[' || n == ']' || n == '"' {
					br.UnreadRune()
					break
				}
				sb.WriteRune(n)
			}
			tokens = append(tokens, gmlToken{text: sb.String(), line: line})
		}
	}
}

type gmlParser struct {
	tokens []gmlToken
	pos    int
}

// parseList reads key/value pairs until a closing bracket (nested) or the
// end of input (top level)
func (p *gmlParser) parseList(nested bool) ([]gmlPair, error) {
	var pairs []gmlPair
	for p.pos < len(p.tokens) {
		key := p.tokens[p.pos]
		if key.text == "]" && !key.quoted {
			if !nested {
				return nil, fmt.Errorf("%w: line %d: unexpected ]", ErrMalformedInput, key.line)
			}
			p.pos++
			return pairs, nil
		}
		if key.quoted || key.text == "[" {
			return nil, fmt.Errorf("%w: line %d: expected key, got %q", ErrMalformedInput, key.line, key.text)
		}
		p.pos++

		if p.pos >= len(p.tokens) {
			return nil, fmt.Errorf("%w: line %d: key %s has no value", ErrMalformedInput, key.line, key.text)
		}
		val := p.tokens[p.pos]
		p.pos++

		if val.text == "[" && !val.quoted {
			list, err := p.parseList(true)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, gmlPair{key: key.text, value: gmlValue{list: list, isList: true, line: val.line}})
			continue
		}
		if val.text == "]" && !val.quoted {
			return nil, fmt.Errorf("%w: line %d: key %s has no value", ErrMalformedInput, key.line, key.text)
		}
		pairs = append(pairs, gmlPair{key: key.text, value: gmlValue{scalar: val.text, line: val.line}})
	}

	if nested {
		return nil, fmt.Errorf("%w: unterminated list", ErrMalformedInput)
	}
	return pairs, nil
}
