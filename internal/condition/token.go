package condition

// TokenType represents the type of a token
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	IDENT  // deploy_env, $deploy_env
	STRING // 'prod', "prod"
	NUMBER // 42, -1.5
	TRUE   // true
	FALSE  // false

	IN       // in
	CONTAINS // contains

	EQ  // ==
	NE  // !=
	LT  // <
	GT  // >
	LTE // <=
	GTE // >=

	AND // && or "and"
	OR  // || or "or"

	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,
)

// Token represents a single token
type Token struct {
	Type     TokenType
	Literal  string
	Position int // byte offset in the expression
}

var keywords = map[string]TokenType{
	"true":     TRUE,
	"false":    FALSE,
	"in":       IN,
	"contains": CONTAINS,
	"and":      AND,
	"or":       OR,
}

// LookupIdent returns the keyword token type for ident, or IDENT
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "end of expression"
	case IDENT:
		return "parameter name"
	case STRING:
		return "string"
	case NUMBER:
		return "number"
	case TRUE:
		return "true"
	case FALSE:
		return "false"
	case IN:
		return "in"
	case CONTAINS:
		return "contains"
	case EQ:
		return "=="
	case NE:
		return "!="
	case LT:
		return "<"
	case GT:
		return ">"
	case LTE:
		return "<="
	case GTE:
		return ">="
	case AND:
		return "&&"
	case OR:
		return "||"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACKET:
		return "["
	case RBRACKET:
		return "]"
	case COMMA:
		return ","
	default:
		return "UNKNOWN"
	}
}

func (t TokenType) isComparison() bool {
	switch t {
	case EQ, NE, LT, GT, LTE, GTE:
		return true
	}
	return false
}
