package qasm

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Parameter expressions accept numbers, pi (or π), + - * / ^, unary signs,
// parentheses, a numeric coefficient written directly before a factor
// ("3pi/4") and the functions below.
var paramFuncs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"exp":  math.Exp,
	"ln":   math.Log,
	"sqrt": math.Sqrt,
}

var errDivByZero = errors.New("division by zero")

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
)

type token struct {
	kind tokKind
	text string
	num  float64
}

func lexParam(s string) ([]token, error) {
	var toks []token
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			// exponent: 1e-3, 2.5E+4
			if j < len(runes) && (runes[j] == 'e' || runes[j] == 'E') {
				k := j + 1
				if k < len(runes) && (runes[k] == '+' || runes[k] == '-') {
					k++
				}
				if k < len(runes) && unicode.IsDigit(runes[k]) {
					for k < len(runes) && unicode.IsDigit(runes[k]) {
						k++
					}
					j = k
				}
			}
			v, err := strconv.ParseFloat(string(runes[i:j]), 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q", string(runes[i:j]))
			}
			toks = append(toks, token{kind: tokNum, text: string(runes[i:j]), num: v})
			i = j
		case r == 'π':
			toks = append(toks, token{kind: tokIdent, text: "pi"})
			i++
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: strings.ToLower(string(runes[i:j]))})
			i = j
		case strings.ContainsRune("+-*/^()", r):
			toks = append(toks, token{kind: tokOp, text: string(r)})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

type exprParser struct {
	toks []token
	pos  int
}

func (p *exprParser) peek() token { return p.toks[p.pos] }

func (p *exprParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *exprParser) isOp(op string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == op
}

func (p *exprParser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		rhs, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

func (p *exprParser) term() (float64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	for p.isOp("*") || p.isOp("/") {
		op := p.next().text
		rhs, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			v *= rhs
			continue
		}
		if rhs == 0 {
			return 0, errDivByZero
		}
		v /= rhs
	}
	return v, nil
}

func (p *exprParser) unary() (float64, error) {
	if p.isOp("-") {
		p.next()
		v, err := p.unary()
		return -v, err
	}
	if p.isOp("+") {
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *exprParser) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *exprParser) primary() (float64, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		// coefficient juxtaposed with a factor: 2pi, 3(pi/4)
		if nt := p.peek(); nt.kind == tokIdent || (nt.kind == tokOp && nt.text == "(") {
			f, err := p.power()
			if err != nil {
				return 0, err
			}
			return t.num * f, nil
		}
		return t.num, nil
	case tokIdent:
		if t.text == "pi" {
			return math.Pi, nil
		}
		fn, ok := paramFuncs[t.text]
		if !ok {
			return 0, fmt.Errorf("unknown identifier %q", t.text)
		}
		if !p.isOp("(") {
			return 0, fmt.Errorf("%s needs an argument", t.text)
		}
		p.next()
		arg, err := p.expr()
		if err != nil {
			return 0, err
		}
		if !p.isOp(")") {
			return 0, errors.New("missing )")
		}
		p.next()
		return fn(arg), nil
	case tokOp:
		if t.text == "(" {
			v, err := p.expr()
			if err != nil {
				return 0, err
			}
			if !p.isOp(")") {
				return 0, errors.New("missing )")
			}
			p.next()
			return v, nil
		}
		return 0, fmt.Errorf("unexpected %q", t.text)
	}
	return 0, errors.New("unexpected end of expression")
}

// EvalParam evaluates a single parameter expression.
func EvalParam(s string) (float64, error) {
	toks, err := lexParam(s)
	if err != nil {
		return 0, err
	}
	p := &exprParser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return 0, fmt.Errorf("unexpected %q after expression", t.text)
	}
	return v, nil
}

// splitParams splits a parameter list on commas that are not nested in
// parentheses.
func splitParams(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// evalParams evaluates a comma-separated parameter list.
func evalParams(s string) ([]float64, error) {
	var params []float64
	for _, part := range splitParams(s) {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, errors.New("empty parameter")
		}
		v, err := EvalParam(part)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", part, err)
		}
		params = append(params, v)
	}
	return params, nil
}

// formatParam formats a parameter, using pi notation for common fractions.
func formatParam(val float64) string {
	type piForm struct {
		value   float64
		display string
	}
	piForms := []piForm{
		{2 * math.Pi, "2*pi"},
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 3, "pi/3"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 6, "pi/6"},
		{math.Pi / 8, "pi/8"},
		{3 * math.Pi / 4, "3*pi/4"},
		{3 * math.Pi / 2, "3*pi/2"},
		{2 * math.Pi / 3, "2*pi/3"},
	}

	for _, pf := range piForms {
		if math.Abs(val-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(val+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}

	return strconv.FormatFloat(val, 'g', -1, 64)
}
