package maincmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/mna/nymphaea/lang/types"
)

// ParseLiteral parses the value literal src. Supported literals are ints,
// floats, double-quoted strings, true, false, nil, tuples (a, b), arrays
// [a, b], sets {a, b} and set(), and Name() which creates an instance of a
// new class Name.
func ParseLiteral(src string) (types.Value, error) {
	var p literalParser
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = fmt.Errorf("%s: %s", s.Position, msg)
		}
	}

	p.next()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.tok != scanner.EOF {
		return nil, p.errorf("unexpected %s after value", scanner.TokenString(p.tok))
	}
	return v, p.err
}

type literalParser struct {
	s   scanner.Scanner
	tok rune
	err error
}

func (p *literalParser) next() { p.tok = p.s.Scan() }

func (p *literalParser) errorf(format string, args ...any) error {
	if p.err != nil {
		return p.err
	}
	return fmt.Errorf("%s: %s", p.s.Position, fmt.Sprintf(format, args...))
}

func (p *literalParser) expect(tok rune) error {
	if p.tok != tok {
		return p.errorf("expected %s, found %s", scanner.TokenString(tok), scanner.TokenString(p.tok))
	}
	p.next()
	return nil
}

func (p *literalParser) parseValue() (types.Value, error) {
	switch p.tok {
	case '-':
		p.next()
		v, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		if i, ok := v.(types.Int); ok {
			return -i, nil
		}
		return -v.(types.Float), nil

	case scanner.Int, scanner.Float:
		return p.parseNumber()

	case scanner.String:
		s, err := strconv.Unquote(p.s.TokenText())
		if err != nil {
			return nil, p.errorf("invalid string %s: %v", p.s.TokenText(), err)
		}
		p.next()
		return types.String(s), nil

	case scanner.Ident:
		return p.parseIdent()

	case '(':
		p.next()
		vals, trailing, err := p.parseList(')')
		if err != nil {
			return nil, err
		}
		if len(vals) == 1 && !trailing {
			return vals[0], nil
		}
		return types.Tuple(vals), nil

	case '[':
		p.next()
		vals, _, err := p.parseList(']')
		if err != nil {
			return nil, err
		}
		return types.NewArray(vals), nil

	case '{':
		p.next()
		vals, _, err := p.parseList('}')
		if err != nil {
			return nil, err
		}
		set := types.NewSet(len(vals))
		for _, v := range vals {
			if err := set.Add(v); err != nil {
				return nil, err
			}
		}
		return set, nil
	}
	return nil, p.errorf("unexpected %s", scanner.TokenString(p.tok))
}

func (p *literalParser) parseNumber() (types.Value, error) {
	text := p.s.TokenText()
	switch p.tok {
	case scanner.Int:
		p.next()
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil, p.errorf("invalid int %s: %v", text, err)
		}
		return types.Int(n), nil
	case scanner.Float:
		p.next()
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("invalid float %s: %v", text, err)
		}
		return types.Float(f), nil
	}
	return nil, p.errorf("expected number, found %s", scanner.TokenString(p.tok))
}

func (p *literalParser) parseIdent() (types.Value, error) {
	name := p.s.TokenText()
	p.next()
	switch name {
	case "true":
		return types.True, nil
	case "false":
		return types.False, nil
	case "nil":
		return types.Nil, nil
	}

	if err := p.expect('('); err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	if name == "set" {
		return types.NewSet(0), nil
	}
	return types.NewClass(name, nil).New(), nil
}

// parseList parses the comma-separated values up to the closing token. It
// reports whether the list ends with a trailing comma.
func (p *literalParser) parseList(closing rune) (vals []types.Value, trailing bool, err error) {
	for p.tok != closing {
		v, err := p.parseValue()
		if err != nil {
			return nil, false, err
		}
		vals = append(vals, v)

		trailing = false
		if p.tok != ',' {
			break
		}
		trailing = true
		p.next()
	}
	if err := p.expect(closing); err != nil {
		return nil, false, err
	}
	return vals, trailing, nil
}
