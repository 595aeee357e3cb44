package formatter

import "strings"

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenKeyword
	tokenString
	tokenQuotedIdent
	tokenNumber
	tokenComment
	tokenLineComment
	tokenPunct
	tokenOperator
)

type token struct {
	kind  tokenKind
	value string
}

var keywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "JOIN": true, "INNER": true,
	"LEFT": true, "RIGHT": true, "FULL": true, "OUTER": true, "CROSS": true,
	"NATURAL": true, "STRAIGHT_JOIN": true, "ON": true, "USING": true,
	"GROUP": true, "BY": true, "HAVING": true, "ORDER": true, "LIMIT": true,
	"OFFSET": true, "INSERT": true, "INTO": true, "VALUES": true, "UPDATE": true,
	"SET": true, "DELETE": true, "REPLACE": true, "CREATE": true, "TABLE": true,
	"ALTER": true, "DROP": true, "INDEX": true, "VIEW": true, "UNION": true,
	"EXCEPT": true, "INTERSECT": true, "ALL": true, "DISTINCT": true, "AS": true,
	"AND": true, "OR": true, "NOT": true, "XOR": true, "NULL": true, "IS": true,
	"IN": true, "EXISTS": true, "BETWEEN": true, "LIKE": true, "REGEXP": true,
	"CASE": true, "WHEN": true, "THEN": true, "ELSE": true, "END": true,
	"ASC": true, "DESC": true, "WITH": true, "RECURSIVE": true, "OVER": true,
	"PARTITION": true, "WINDOW": true, "RETURNING": true, "FOR": true,
	"TRUE": true, "FALSE": true, "INTERVAL": true, "DUPLICATE": true, "KEY": true,
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
}

func tokenize(sql string) []token {
	var tokens []token

	pos := 0
	for pos < len(sql) {
		c := sql[pos]

		switch {
		case isSpace(c):
			pos++

		case strings.HasPrefix(sql[pos:], "--") || c == '#':
			end := strings.IndexByte(sql[pos:], '\n')
			if end < 0 {
				end = len(sql) - pos
			}
			tokens = append(tokens, token{kind: tokenLineComment, value: strings.TrimRight(sql[pos:pos+end], " \t\r")})
			pos += end

		case strings.HasPrefix(sql[pos:], "/*"):
			end := strings.Index(sql[pos+2:], "*/")
			if end < 0 {
				end = len(sql) - pos
			} else {
				end += 4
			}
			tokens = append(tokens, token{kind: tokenComment, value: sql[pos : pos+end]})
			pos += end

		case c == '\'' || c == '"':
			end := scanQuoted(sql, pos, c)
			tokens = append(tokens, token{kind: tokenString, value: sql[pos:end]})
			pos = end

		case c == '`':
			end := scanQuoted(sql, pos, c)
			tokens = append(tokens, token{kind: tokenQuotedIdent, value: sql[pos:end]})
			pos = end

		case isDigit(c):
			end := pos
			for end < len(sql) && (isDigit(sql[end]) || sql[end] == '.') {
				end++
			}
			tokens = append(tokens, token{kind: tokenNumber, value: sql[pos:end]})
			pos = end

		case isWordStart(c):
			end := pos
			for end < len(sql) && isWordPart(sql[end]) {
				end++
			}
			word := sql[pos:end]
			if upper := strings.ToUpper(word); keywords[upper] {
				tokens = append(tokens, token{kind: tokenKeyword, value: upper})
			} else {
				tokens = append(tokens, token{kind: tokenWord, value: word})
			}
			pos = end

		case c == ',' || c == '(' || c == ')' || c == ';' || c == '.':
			tokens = append(tokens, token{kind: tokenPunct, value: string(c)})
			pos++

		case isOperator(c):
			op := scanOperator(sql[pos:])
			tokens = append(tokens, token{kind: tokenOperator, value: op})
			pos += len(op)

		default:
			tokens = append(tokens, token{kind: tokenWord, value: string(c)})
			pos++
		}
	}

	return tokens
}

// scanQuoted returns the index just past the closing quote. Doubled quotes
// and backslash escapes stay inside the literal. An unterminated literal runs
// to the end of input.
func scanQuoted(sql string, start int, quote byte) int {
	pos := start + 1
	for pos < len(sql) {
		switch sql[pos] {
		case '\\':
			pos += 2
			continue
		case quote:
			if pos+1 < len(sql) && sql[pos+1] == quote {
				pos += 2
				continue
			}
			return pos + 1
		}
		pos++
	}
	return len(sql)
}

var compoundOperators = []string{"<=>", "->>", "<=", ">=", "<>", "!=", "||", "&&", "::", ":=", "->", "<<", ">>"}

func scanOperator(s string) string {
	for _, op := range compoundOperators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return s[:1]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '@' || c == '$' || c >= 0x80
}

func isWordPart(c byte) bool {
	return isWordStart(c) || isDigit(c)
}

func isOperator(c byte) bool {
	return strings.IndexByte("=<>!+-*/%|&^~:?", c) >= 0
}
