// Package lexer turns source text into tokens.
package lexer

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/strager/minipas/report"
)

type scanner struct {
	input  []byte
	pos    int
	r      *report.Reporter
	tokens []Token
}

// Tokenize scans src from start to end. Illegal characters and unterminated
// comments are reported to r and skipped. The result always ends with a
// single EOF token whose Pos is len(src).
func Tokenize(src []byte, r *report.Reporter) []Token {
	s := &scanner{input: src, r: r}
	for s.next() {
	}
	s.tokens = append(s.tokens, Token{Type: EOF, Pos: len(src)})
	return s.tokens
}

func (s *scanner) emit(typ TokenType, start int) {
	s.tokens = append(s.tokens, Token{Type: typ, Text: string(s.input[start:s.pos]), Pos: start})
}

// next scans one token or skips one comment or illegal character. It
// returns false at end of input.
func (s *scanner) next() bool {
	s.skipWhitespace()
	if s.pos >= len(s.input) {
		return false
	}

	start := s.pos
	c := s.input[s.pos]
	switch {
	case isWordByte(c):
		s.readWord()
		return true
	case c == '{':
		s.skipBraceComment()
		return true
	case c == '/' && s.peekByte(1) == '/':
		s.skipLineComment()
		return true
	case c == ':' && s.peekByte(1) == '=':
		s.pos += 2
		s.emit(ASSIGN, start)
		return true
	}

	typ, ok := singleChar(c)
	if !ok {
		_, size := utf8.DecodeRune(s.input[s.pos:])
		s.pos += size
		s.r.Error(start, report.ErrIllegalLetter)
		return true
	}
	s.pos++
	s.emit(typ, start)
	return true
}

func singleChar(c byte) (TokenType, bool) {
	switch c {
	case ';':
		return SEMICOLON, true
	case '.':
		return DOT, true
	case ',':
		return COMMA, true
	case ':':
		return COLON, true
	case '=':
		return EQUAL, true
	case '+':
		return PLUS, true
	case '-':
		return MINUS, true
	case '*':
		return STAR, true
	case '/':
		return SLASH, true
	case '%':
		return MOD, true
	case '(':
		return LPAREN, true
	case ')':
		return RPAREN, true
	}
	return ILLEGAL, false
}

func (s *scanner) peekByte(offset int) byte {
	if s.pos+offset < len(s.input) {
		return s.input[s.pos+offset]
	}
	return 0
}

func (s *scanner) skipWhitespace() {
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return
		}
		s.pos++
	}
}

func (s *scanner) skipLineComment() {
	for s.pos < len(s.input) && s.input[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) skipBraceComment() {
	start := s.pos
	end := bytes.IndexByte(s.input[s.pos:], '}')
	if end < 0 {
		s.r.Error(start, report.ErrExpected, "'}' closing the comment")
		s.pos = len(s.input)
		return
	}
	s.pos += end + 1
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isWordByte(c byte) bool {
	return isLetter(c) || isDigit(c)
}

// readWord scans an identifier, keyword or number. A '.' directly after a
// digit continues a run that started with a digit.
func (s *scanner) readWord() {
	start := s.pos
	numeric := isDigit(s.input[start])
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		if isWordByte(c) || (numeric && c == '.' && isDigit(s.input[s.pos-1])) {
			s.pos++
			continue
		}
		break
	}

	text := strings.ToLower(string(s.input[start:s.pos]))
	typ := IDENT
	if numeric {
		typ = NUMBER
	} else if kw, ok := keywords[text]; ok {
		typ = kw
	}
	s.tokens = append(s.tokens, Token{Type: typ, Text: text, Pos: start})
}
