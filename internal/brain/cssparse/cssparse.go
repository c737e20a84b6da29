// File: internal/brain/cssparse/cssparse.go
package cssparse

import (
	"fmt"
	"strings"
)

// Declaration is a single property/value pair (e.g., position: sticky).
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule is one selector list with its declarations.
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

// StyleSheet is the result of parsing a block of CSS text.
type StyleSheet struct {
	Rules []Rule
	// Issues collects recoverable syntax problems found while parsing.
	Issues []error
}

// OK reports whether the sheet produced at least one rule and no issues.
func (s StyleSheet) OK() bool {
	return len(s.Rules) > 0 && len(s.Issues) == 0
}

// Parse is a convenience wrapper around NewParser(input).Parse().
func Parse(input string) StyleSheet {
	return NewParser(input).Parse()
}

// Parser is a lenient, single-pass CSS rule parser. At-rules are skipped.
type Parser struct {
	input  string
	pos    int
	issues []error
}

func NewParser(input string) *Parser {
	return &Parser{input: input}
}

// Parse consumes the whole input and returns every well-formed rule.
func (p *Parser) Parse() StyleSheet {
	var rules []Rule
	for {
		p.consumeWhitespace()
		if p.eof() {
			break
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}
		if p.currentChar() == '@' {
			p.skipAtRule()
			continue
		}

		start := p.pos
		selectors := p.parseSelectors()
		if p.eof() {
			p.issue(start, "selector without a declaration block")
			break
		}
		if len(selectors) == 0 {
			p.issue(start, "declaration block without a selector")
			p.consumeChar()
			p.skipBlock('{', '}')
			continue
		}

		decls, closed := p.parseDeclarations()
		if !closed {
			p.issue(start, "unterminated declaration block")
		}
		if len(decls) > 0 {
			rules = append(rules, Rule{Selectors: selectors, Declarations: decls})
		}
	}
	return StyleSheet{Rules: rules, Issues: p.issues}
}

func (p *Parser) issue(at int, msg string) {
	p.issues = append(p.issues, fmt.Errorf("offset %d: %s", at, msg))
}

// parseSelectors reads the comma-separated selector list up to '{'.
func (p *Parser) parseSelectors() []string {
	start := p.pos
	for !p.eof() && p.currentChar() != '{' {
		ch := p.currentChar()
		if ch == '"' || ch == '\'' {
			p.skipQuotedString(ch)
			continue
		}
		if ch == '[' {
			p.consumeChar()
			p.skipBlock('[', ']')
			continue
		}
		p.pos++
	}

	var selectors []string
	for _, s := range strings.Split(p.input[start:p.pos], ",") {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations parses the content within { ... }. closed is false when
// input ends before the matching '}'.
func (p *Parser) parseDeclarations() (decls []Declaration, closed bool) {
	p.consumeChar() // '{'
	for {
		p.consumeWhitespace()
		if p.eof() {
			return decls, false
		}
		if p.currentChar() == '}' {
			p.consumeChar()
			return decls, true
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}

		prop, val, important := p.parseDeclaration()
		if prop != "" && val != "" {
			decls = append(decls, Declaration{
				Property:  strings.ToLower(prop),
				Value:     val,
				Important: important,
			})
		}
	}
}

// parseDeclaration parses a single 'property: value;' pair.
func (p *Parser) parseDeclaration() (prop, val string, important bool) {
	if !isIdentStart(p.currentChar()) {
		p.skipTo(';', '}')
		p.consumeIf(';')
		return
	}
	prop = p.parseIdentifier()
	p.consumeWhitespace()

	if p.eof() || p.currentChar() != ':' {
		p.skipTo(';', '}')
		p.consumeIf(';')
		return "", "", false
	}
	p.consumeChar()
	p.consumeWhitespace()

	val = p.parseValue()
	if strings.HasSuffix(strings.ToLower(val), "!important") {
		important = true
		val = strings.TrimSpace(val[:len(val)-len("!important")])
	}

	p.consumeWhitespace()
	p.consumeIf(';')
	return
}

func (p *Parser) parseValue() string {
	start := p.pos
	for !p.eof() {
		ch := p.currentChar()
		if ch == ';' || ch == '}' {
			break
		}
		if ch == '"' || ch == '\'' {
			p.skipQuotedString(ch)
			continue
		}
		if ch == '(' {
			p.consumeChar()
			p.skipBlock('(', ')')
			continue
		}
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos])
}

// -- lexer helpers --

func (p *Parser) eof() bool { return p.pos >= len(p.input) }

func (p *Parser) currentChar() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) consumeChar() byte {
	ch := p.currentChar()
	if !p.eof() {
		p.pos++
	}
	return ch
}

func (p *Parser) consumeIf(ch byte) {
	if !p.eof() && p.currentChar() == ch {
		p.pos++
	}
}

func (p *Parser) consumeWhitespace() {
	for !p.eof() && isWhitespace(p.currentChar()) {
		p.pos++
	}
}

func (p *Parser) startsWith(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *Parser) skipComment() {
	p.pos += 2
	if end := strings.Index(p.input[p.pos:], "*/"); end == -1 {
		p.pos = len(p.input)
	} else {
		p.pos += end + 2
	}
}

func (p *Parser) skipTo(targets ...byte) {
	for !p.eof() {
		ch := p.currentChar()
		for _, t := range targets {
			if ch == t {
				return
			}
		}
		p.pos++
	}
}

// skipBlock assumes the opening delimiter was already consumed.
func (p *Parser) skipBlock(open, close byte) {
	depth := 1
	for !p.eof() {
		switch p.consumeChar() {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) skipQuotedString(quote byte) {
	p.consumeChar()
	for !p.eof() {
		ch := p.consumeChar()
		if ch == '\\' {
			p.consumeChar()
		} else if ch == quote {
			return
		}
	}
}

func (p *Parser) skipAtRule() {
	p.consumeChar() // '@'
	_ = p.parseIdentifier()
	for !p.eof() {
		switch p.currentChar() {
		case '{':
			p.consumeChar()
			p.skipBlock('{', '}')
			return
		case ';':
			p.consumeChar()
			return
		}
		p.pos++
	}
}

func (p *Parser) parseIdentifier() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.currentChar()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '-'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
