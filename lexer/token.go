package lexer

// TokenType is the type of token (keyword, identifier, operator, ...).
type TokenType int

// Definition of token types
const (
	ILLEGAL TokenType = iota
	EOF

	// Keywords
	PROGRAM
	BEGIN
	END
	VAR
	PROCEDURE

	IDENT  // x, my_var
	NUMBER // 42, 3.14

	// Operators
	ASSIGN // :=
	EQUAL
	PLUS
	MINUS
	STAR
	SLASH
	MOD // mod, %

	// Punctuation
	DOT
	COMMA
	COLON
	SEMICOLON
	LPAREN
	RPAREN
)

var tokenNames = [...]string{
	ILLEGAL:   "illegal token",
	EOF:       "end of file",
	PROGRAM:   "'program'",
	BEGIN:     "'begin'",
	END:       "'end'",
	VAR:       "'var'",
	PROCEDURE: "'procedure'",
	IDENT:     "identifier",
	NUMBER:    "number",
	ASSIGN:    "':='",
	EQUAL:     "'='",
	PLUS:      "'+'",
	MINUS:     "'-'",
	STAR:      "'*'",
	SLASH:     "'/'",
	MOD:       "'mod'",
	DOT:       "'.'",
	COMMA:     "','",
	COLON:     "':'",
	SEMICOLON: "';'",
	LPAREN:    "'('",
	RPAREN:    "')'",
}

// String is the form used in "expected ..." diagnostics.
func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "unknown token"
}

// keywords is the reserved-word set. Words are matched after folding to
// lower case.
var keywords = map[string]TokenType{
	"program":   PROGRAM,
	"begin":     BEGIN,
	"end":       END,
	"var":       VAR,
	"procedure": PROCEDURE,
	"mod":       MOD,
}

// Class is the coarse, closed classification of a token.
type Class int

const (
	ClassKeyword Class = iota
	ClassIdentifier
	ClassLiteral
	ClassOperator
	ClassPunctuation
	ClassEOF
)

func (c Class) String() string {
	switch c {
	case ClassKeyword:
		return "keyword"
	case ClassIdentifier:
		return "identifier"
	case ClassLiteral:
		return "literal"
	case ClassOperator:
		return "operator"
	case ClassPunctuation:
		return "punctuation"
	case ClassEOF:
		return "end-of-file"
	default:
		return "unknown"
	}
}

// Class reports which class t belongs to. The word operator "mod" is an
// operator, not a keyword.
func (t TokenType) Class() Class {
	switch t {
	case PROGRAM, BEGIN, END, VAR, PROCEDURE:
		return ClassKeyword
	case IDENT:
		return ClassIdentifier
	case NUMBER:
		return ClassLiteral
	case ASSIGN, EQUAL, PLUS, MINUS, STAR, SLASH, MOD:
		return ClassOperator
	case EOF:
		return ClassEOF
	default:
		return ClassPunctuation
	}
}

// Token is an immutable lexeme with the byte offset where it starts.
type Token struct {
	Type TokenType
	Text string
	Pos  int
}
